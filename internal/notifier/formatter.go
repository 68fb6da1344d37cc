package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"MetalTracker/internal/model"
	"MetalTracker/internal/portfolio"
)

var metalNames = map[model.Metal]string{
	model.Gold:     "黄金",
	model.Silver:   "白银",
	model.Platinum: "铂金",
}

func metalName(m model.Metal) string {
	if n, ok := metalNames[m]; ok {
		return n
	}
	return string(m)
}

// Money renders a currency amount with two decimals, e.g. ¥1234.50.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-¥" + d.Neg().StringFixed(2)
	}
	return "¥" + d.StringFixed(2)
}

// Grams renders a quantity in grams with up to three decimals.
func Grams(v float64) string {
	return decimal.NewFromFloat(v).Round(3).String() + "g"
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2) + "%"
}

// FormatPrice formats a collected price point.
func FormatPrice(p model.PricePoint) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💹 <b>今日行情</b> | %s\n\n", p.Date.Format("2006-01-02")))
	for _, m := range model.Metals {
		b.WriteString(fmt.Sprintf("%s: %s/g | RSI %.1f\n", metalName(m), Money(p.Price(m)), p.RSI(m)))
	}
	if p.SilverPrice > 0 {
		b.WriteString(fmt.Sprintf("金银比: %.2f\n", p.GoldPrice/p.SilverPrice))
	}
	return b.String()
}

// FormatPlan formats the monthly investment and its tiered limit orders.
func FormatPlan(plan portfolio.Plan) string {
	inv := plan.Investment
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>月度定投计划</b> | %s\n\n", inv.Month))
	b.WriteString(fmt.Sprintf("目标价值: %s\n", Money(inv.TargetValue)))
	b.WriteString(fmt.Sprintf("当前价值: %s\n", Money(inv.CurrentValue)))
	b.WriteString(fmt.Sprintf("本月需投入: %s\n", Money(inv.RequiredInvestment)))
	b.WriteString(fmt.Sprintf("金银比: %.2f\n", inv.GSR))
	if inv.GSRRebalancing.Needed {
		b.WriteString(fmt.Sprintf("⚖️ 金银比调整: %s → %s %s\n",
			metalName(inv.GSRRebalancing.FromMetal), metalName(inv.GSRRebalancing.ToMetal), Money(inv.GSRRebalancing.Amount)))
	}

	if inv.RequiredInvestment <= 0 {
		b.WriteString("\n进度超前，本月无需投入 ✅")
		return b.String()
	}

	b.WriteString("\n💰 <b>分配:</b>\n")
	for _, m := range model.Metals {
		amount := inv.FinalAllocation[m]
		b.WriteString(fmt.Sprintf("  %s: %s (RSI系数 ×%.1f)\n", metalName(m), Money(amount), inv.RSIAdjustments[m]))
		if amount <= 0 {
			continue
		}
		for _, t := range plan.Tiers[m] {
			b.WriteString(fmt.Sprintf("    T%d %s @ %s → %s\n", t.Tier, Money(t.Amount), Money(t.TargetPrice), Grams(t.Quantity)))
		}
	}
	return b.String()
}

// FormatHoldings formats the dashboard positions.
func FormatHoldings(d portfolio.Dashboard) string {
	var b strings.Builder
	b.WriteString("📦 <b>持仓概览</b>\n\n")
	for _, m := range model.Metals {
		h := d.Holdings[m]
		if h.Quantity <= 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s 均价 %s (%s)\n", metalName(m), Grams(h.Quantity), Money(h.AverageCost), percent(d.Allocation[m])))
	}
	b.WriteString(fmt.Sprintf("\n总市值: %s\n", Money(d.TotalValue)))
	b.WriteString(fmt.Sprintf("累计投入: %s\n", Money(d.TotalInvested)))
	b.WriteString(fmt.Sprintf("盈亏: %s (%s)\n", Money(d.Profit), percent(d.ReturnPercent)))
	if d.GSR > 0 {
		b.WriteString(fmt.Sprintf("金银比: %.2f (%s)\n", d.GSR, d.GSRZone))
	}
	if d.PendingOrders > 0 {
		b.WriteString(fmt.Sprintf("待成交挂单: %d\n", d.PendingOrders))
	}
	return b.String()
}

var stopIcons = map[model.StopLossState]string{
	model.StopSafe:    "🟢",
	model.StopWarning: "🟡",
	model.StopDanger:  "🔴",
}

// FormatStopLosses formats the stop-loss levels of held metals.
func FormatStopLosses(stops []model.StopLossStatus) string {
	if len(stops) == 0 {
		return "🛡 暂无持仓，无止损位"
	}
	var b strings.Builder
	b.WriteString("🛡 <b>止损监控</b>\n")
	for _, s := range stops {
		b.WriteString(fmt.Sprintf("\n%s %s 现价 %s\n", stopIcons[s.Status], metalName(s.Metal), Money(s.CurrentPrice)))
		b.WriteString(fmt.Sprintf("  动态止损: %s | 硬止损: %s\n", Money(s.DynamicStopLoss), Money(s.HardStopLoss)))
		if s.TrailingStopLoss > 0 {
			b.WriteString(fmt.Sprintf("  移动止损: %s\n", Money(s.TrailingStopLoss)))
		}
		b.WriteString(fmt.Sprintf("  距止损: %s\n", percent(s.DistanceFromStop)))
	}
	return b.String()
}

// FormatRebalancing formats an allocation rebalancing recommendation.
func FormatRebalancing(r model.RebalancingRecommendation) string {
	var b strings.Builder
	b.WriteString("⚖️ <b>再平衡检查</b>\n\n")
	for _, m := range model.Metals {
		b.WriteString(fmt.Sprintf("%s: %s / 目标 %s (偏离 %+.1f)\n",
			metalName(m), percent(r.CurrentAllocation[m]), percent(r.TargetAllocation[m]), r.Deviations[m]))
	}
	if !r.Needed {
		b.WriteString("\n配置在阈值内，无需操作 ✅")
		return b.String()
	}
	if r.Sell != nil {
		b.WriteString(fmt.Sprintf("\n卖出 %s %s (%s)", metalName(r.Sell.Metal), Money(r.Sell.Amount), Grams(r.Sell.Quantity)))
	}
	if r.Buy != nil {
		b.WriteString(fmt.Sprintf("\n买入 %s %s (%s)", metalName(r.Buy.Metal), Money(r.Buy.Amount), Grams(r.Buy.Quantity)))
	}
	return b.String()
}

// FormatAlerts formats alerts as a single message. Returns "" when there is nothing to say.
func FormatAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🔔 <b>提醒</b>\n")
	for _, a := range alerts {
		b.WriteString("\n• " + a.Message)
	}
	return b.String()
}

// FormatMonthlyReport formats a monthly performance report.
func FormatMonthlyReport(r model.MonthlyReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>月度报告</b> | %s\n\n", r.Month))
	b.WriteString(fmt.Sprintf("本月投入: %s\n", Money(r.Invested)))
	b.WriteString(fmt.Sprintf("期初价值: %s\n", Money(r.PortfolioValueStart)))
	b.WriteString(fmt.Sprintf("期末价值: %s\n", Money(r.PortfolioValueEnd)))
	b.WriteString(fmt.Sprintf("月收益率: %s\n", percent(r.MonthlyReturn)))
	b.WriteString(fmt.Sprintf("挂单成交: %d/%d (%s)\n", r.OrdersFilled, r.OrdersPlaced, percent(r.FillRate)))
	b.WriteString(fmt.Sprintf("成本优势: %s\n", percent(r.AvgCostVsMarket)))
	b.WriteString(fmt.Sprintf("\n评分: %d | 等级: <b>%s</b>", r.Score, r.Grade))
	if r.Notes != "" {
		b.WriteString("\n" + r.Notes)
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "可用命令:\n• /price 今日行情\n• /plan 月度计划\n• /holdings 持仓\n• /stops 止损\n• /rebalance 再平衡\n• /report 月报\n• /alerts 未读提醒"
}
