package performance

import (
	"fmt"
	"math"
	"time"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// MonthStart truncates t to the first day of its month, UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterStart truncates t to the first day of its calendar quarter, UTC.
func QuarterStart(t time.Time) time.Time {
	q := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterLabel formats t as YYYY-Q#.
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}

// ParseQuarter parses a YYYY-Q# label into the first day of that quarter.
func ParseQuarter(s string) (time.Time, error) {
	var year, q int
	if _, err := fmt.Sscanf(s, "%d-Q%d", &year, &q); err != nil || q < 1 || q > 4 {
		return time.Time{}, fmt.Errorf("invalid quarter %q", s)
	}
	return time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
}

// valueAt prices the holdings in place before t at the last known point before t.
// Falls back to the first point on or after t when nothing earlier exists.
func valueAt(data *model.AppData, t time.Time) float64 {
	p, ok := pointBefore(data.PriceData, t)
	if !ok {
		for _, candidate := range data.PriceData {
			if !candidate.Date.Before(t) {
				p, ok = candidate, true
				break
			}
		}
	}
	if !ok {
		return 0
	}
	return calculator.PortfolioValueAt(holdingsBefore(data.Transactions, t), p)
}

// BuildMonthlyReport summarises the calendar month containing month.
func BuildMonthlyReport(data *model.AppData, month time.Time) model.MonthlyReport {
	start := MonthStart(month)
	end := start.AddDate(0, 1, 0)

	invested := 0.0
	flow := 0.0
	for _, tx := range data.Transactions {
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		if tx.Type == model.Buy {
			invested += tx.Amount
			flow += tx.Amount
		} else {
			flow -= tx.Amount
		}
	}

	valueStart := valueAt(data, start)
	valueEnd := valueAt(data, end)
	monthlyReturn := 0.0
	if base := valueStart + flow; base > 0 {
		monthlyReturn = (valueEnd - valueStart - flow) / base * 100
	}

	placed, filled := 0, 0
	for _, o := range data.LimitOrders {
		if o.CreatedDate.Before(start) || !o.CreatedDate.Before(end) {
			continue
		}
		placed++
		if o.Status == model.OrderFilled {
			filled++
		}
	}
	fillRate := FillRate(placed, filled)
	costVsMarket := avgCostVsMarket(data, start, end)
	score, grade := Grade(fillRate, monthlyReturn, costVsMarket)

	return model.MonthlyReport{
		Month:               start.Format("2006-01"),
		Invested:            invested,
		PortfolioValueStart: valueStart,
		PortfolioValueEnd:   valueEnd,
		MonthlyReturn:       monthlyReturn,
		FillRate:            fillRate,
		AvgCostVsMarket:     costVsMarket,
		OrdersPlaced:        placed,
		OrdersFilled:        filled,
		Score:               score,
		Grade:               grade,
	}
}

// avgCostVsMarket is the amount-weighted percent by which buys in [start, end)
// paid above (positive) or below (negative) the period's mean market price.
func avgCostVsMarket(data *model.AppData, start, end time.Time) float64 {
	points := pointsIn(data.PriceData, start, end)
	if len(points) == 0 {
		return 0
	}
	market := make(model.PerMetal, len(model.Metals))
	for _, m := range model.Metals {
		market[m] = calculator.Mean(model.Prices(points, m))
	}

	weighted, total := 0.0, 0.0
	for _, tx := range data.Transactions {
		if tx.Type != model.Buy || tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		ref := market[tx.Metal]
		if ref <= 0 {
			continue
		}
		weighted += tx.Amount * (tx.Price/ref - 1)
		total += tx.Amount
	}
	if total == 0 {
		return 0
	}
	return weighted / total * 100
}

// BuildQuarterlyReport computes risk statistics over the quarter containing t.
func BuildQuarterlyReport(data *model.AppData, t time.Time) model.QuarterlyReport {
	start := QuarterStart(t)
	h := periodHistory(data, start, start.AddDate(0, 3, 0))
	return model.QuarterlyReport{
		Quarter:      QuarterLabel(start),
		SharpeRatio:  SharpeRatio(h.returns, DailyRiskFreeRate),
		SortinoRatio: SortinoRatio(h.returns, DailyRiskFreeRate),
		MaxDrawdown:  MaxDrawdown(h.values),
		Volatility:   annualized(h.returns),
		TotalReturn:  compound(h.returns),
	}
}

// BuildAnnualReport computes yearly statistics and picks the best and worst months.
func BuildAnnualReport(data *model.AppData, year int) model.AnnualReport {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	h := periodHistory(data, start, end)

	invested := 0.0
	for _, tx := range data.Transactions {
		if tx.Type == model.Buy && !tx.Date.Before(start) && tx.Date.Before(end) {
			invested += tx.Amount
		}
	}

	report := model.AnnualReport{
		Year:          fmt.Sprintf("%d", year),
		TotalReturn:   compound(h.returns),
		SharpeRatio:   SharpeRatio(h.returns, DailyRiskFreeRate),
		MaxDrawdown:   MaxDrawdown(h.values),
		Volatility:    annualized(h.returns),
		TotalInvested: invested,
		EndingValue:   valueAt(data, end),
	}

	best, worst := math.Inf(-1), math.Inf(1)
	for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
		if len(pointsIn(data.PriceData, m, m.AddDate(0, 1, 0))) == 0 {
			continue
		}
		r := BuildMonthlyReport(data, m)
		if r.MonthlyReturn > best {
			best, report.BestMonth = r.MonthlyReturn, r.Month
		}
		if r.MonthlyReturn < worst {
			worst, report.WorstMonth = r.MonthlyReturn, r.Month
		}
	}
	return report
}

func annualized(returns []float64) float64 {
	return calculator.PopStdDev(returns) * math.Sqrt(calculator.TradingDaysPerYear)
}

// Snapshot values holdings at one price point.
func Snapshot(date time.Time, holdings model.Holdings, point model.PricePoint, invested float64) model.PortfolioSnapshot {
	return model.PortfolioSnapshot{
		Date:             date,
		TotalValue:       calculator.PortfolioValueAt(holdings, point),
		TotalInvested:    invested,
		GoldHoldings:     holdings[model.Gold].Quantity,
		SilverHoldings:   holdings[model.Silver].Quantity,
		PlatinumHoldings: holdings[model.Platinum].Quantity,
		GoldValue:        holdings[model.Gold].Quantity * point.GoldPrice,
		SilverValue:      holdings[model.Silver].Quantity * point.SilverPrice,
		PlatinumValue:    holdings[model.Platinum].Quantity * point.PlatinumPrice,
	}
}
