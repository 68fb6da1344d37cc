package portfolio

import (
	"time"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
	"MetalTracker/internal/performance"
	"MetalTracker/internal/strategy"
)

// Dashboard is the headline view of the portfolio.
type Dashboard struct {
	Latest        *model.PricePoint `json:"latest,omitempty"`
	Holdings      model.Holdings    `json:"holdings"`
	TotalValue    float64           `json:"totalValue"`
	TotalInvested float64           `json:"totalInvested"`
	CostBasis     float64           `json:"costBasis"`
	Profit        float64           `json:"profit"`
	ReturnPercent float64           `json:"returnPercent"`
	Allocation    model.PerMetal    `json:"allocation"`
	GSR           float64           `json:"gsr"`
	GSRZone       strategy.GSRZone  `json:"gsrZone"`
	ActiveCapital float64           `json:"activeCapital"`
	Opportunity   float64           `json:"opportunityCapital"`
	PendingOrders int               `json:"pendingOrders"`
	UnreadAlerts  int               `json:"unreadAlerts"`
}

// Plan is the monthly investment together with the tier schedule per metal.
type Plan struct {
	Investment model.MonthlyInvestment               `json:"investment"`
	Tiers      map[model.Metal][4]model.TierProposal `json:"tiers"`
}

// Holdings returns the current positions.
func (m *Manager) Holdings() model.Holdings {
	d := m.Snapshot()
	return calculator.HoldingsByDate(d.Transactions)
}

// Dashboard values the portfolio at the latest price point.
func (m *Manager) Dashboard() Dashboard {
	d := m.Snapshot()
	holdings := calculator.HoldingsByDate(d.Transactions)
	active, opportunity := strategy.CapitalSplit(d.Config)
	out := Dashboard{
		Holdings:      holdings,
		TotalInvested: calculator.TotalInvested(d.Transactions),
		Allocation:    make(model.PerMetal, len(model.Metals)),
		ActiveCapital: active,
		Opportunity:   opportunity,
	}
	for _, metal := range model.Metals {
		out.CostBasis += holdings[metal].TotalCost
	}
	if latest, ok := d.Latest(); ok {
		out.Latest = &latest
		out.TotalValue = calculator.PortfolioValueAt(holdings, latest)
		out.Allocation = calculator.Allocation(holdings, latest.GoldPrice, latest.SilverPrice, latest.PlatinumPrice)
		out.GSR = calculator.GoldSilverRatio(latest.GoldPrice, latest.SilverPrice)
		out.GSRZone = strategy.ClassifyGSR(out.GSR, d.Config.GSRParameters)
	}
	out.Profit = out.TotalValue - out.CostBasis
	if out.CostBasis > 0 {
		out.ReturnPercent = out.Profit / out.CostBasis * 100
	}
	for _, o := range d.LimitOrders {
		if o.Status == model.OrderPending {
			out.PendingOrders++
		}
	}
	for _, a := range d.Alerts {
		if !a.Read {
			out.UnreadAlerts++
		}
	}
	return out
}

// Plan previews the monthly investment for date without placing orders.
func (m *Manager) Plan(date time.Time) (Plan, error) {
	d := m.Snapshot()
	latest, ok := d.Latest()
	if !ok {
		return Plan{}, ErrNoPriceData
	}
	inv := strategy.PlanMonthlyInvestment(date, d.Config, calculator.HoldingsByDate(d.Transactions), latest)
	tiers := make(map[model.Metal][4]model.TierProposal, len(model.Metals))
	for _, metal := range model.Metals {
		if inv.FinalAllocation[metal] <= 0 {
			continue
		}
		tiers[metal] = strategy.GenerateLimitOrders(metal, inv.FinalAllocation[metal], latest.Price(metal), d.Config.LimitOrderSpreads[metal])
	}
	return Plan{Investment: inv, Tiers: tiers}, nil
}

// StopLosses evaluates every held metal against the price history.
func (m *Manager) StopLosses() []model.StopLossStatus {
	d := m.Snapshot()
	holdings := calculator.HoldingsByDate(d.Transactions)
	var out []model.StopLossStatus
	for _, metal := range model.Metals {
		if holdings[metal].Quantity <= 0 {
			continue
		}
		out = append(out, strategy.StopLossFromSeries(metal, holdings, d.PriceData, d.Config))
	}
	return out
}

// Rebalancing compares current allocation with the target at the latest prices.
func (m *Manager) Rebalancing() (model.RebalancingRecommendation, error) {
	d := m.Snapshot()
	latest, ok := d.Latest()
	if !ok {
		return model.RebalancingRecommendation{}, ErrNoPriceData
	}
	holdings := calculator.HoldingsByDate(d.Transactions)
	return strategy.Rebalance(holdings, latest.GoldPrice, latest.SilverPrice, latest.PlatinumPrice, d.Config), nil
}

// Performance summarises the whole history.
func (m *Manager) Performance() performance.Summary {
	return performance.Summarize(m.Snapshot())
}

// Orders returns limit orders, optionally filtered by status.
func (m *Manager) Orders(status model.OrderStatus) []model.LimitOrder {
	d := m.Snapshot()
	if status == "" {
		return d.LimitOrders
	}
	var out []model.LimitOrder
	for _, o := range d.LimitOrders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
