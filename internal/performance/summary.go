package performance

import (
	"time"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// Summary is the whole-history performance view.
type Summary struct {
	TotalValue    float64 `json:"totalValue"`
	TotalInvested float64 `json:"totalInvested"`
	CostBasis     float64 `json:"costBasis"`
	UnrealizedPnL float64 `json:"unrealizedPnL"`
	ReturnPercent float64 `json:"returnPercent"`
	TimeWeighted  float64 `json:"timeWeightedReturn"`
	SharpeRatio   float64 `json:"sharpeRatio"`
	SortinoRatio  float64 `json:"sortinoRatio"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	Volatility    float64 `json:"volatility"`
	OrdersPlaced  int     `json:"ordersPlaced"`
	OrdersFilled  int     `json:"ordersFilled"`
	FillRate      float64 `json:"fillRate"`
}

// Summarize computes performance over the full price history.
func Summarize(data *model.AppData) Summary {
	var s Summary
	holdings := calculator.HoldingsByDate(data.Transactions)
	if latest, ok := data.Latest(); ok {
		s.TotalValue = calculator.PortfolioValueAt(holdings, latest)
	}
	s.TotalInvested = calculator.TotalInvested(data.Transactions)
	for _, m := range model.Metals {
		s.CostBasis += holdings[m].TotalCost
	}
	s.UnrealizedPnL = s.TotalValue - s.CostBasis
	if s.CostBasis > 0 {
		s.ReturnPercent = s.UnrealizedPnL / s.CostBasis * 100
	}

	// zero start and far-future end cover every point
	h := periodHistory(data, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
	s.TimeWeighted = compound(h.returns)
	s.SharpeRatio = SharpeRatio(h.returns, DailyRiskFreeRate)
	s.SortinoRatio = SortinoRatio(h.returns, DailyRiskFreeRate)
	s.MaxDrawdown = MaxDrawdown(h.values)
	s.Volatility = annualized(h.returns)

	for _, o := range data.LimitOrders {
		if o.Status == model.OrderCancelled {
			continue
		}
		s.OrdersPlaced++
		if o.Status == model.OrderFilled {
			s.OrdersFilled++
		}
	}
	s.FillRate = FillRate(s.OrdersPlaced, s.OrdersFilled)
	return s
}
