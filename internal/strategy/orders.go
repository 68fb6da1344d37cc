package strategy

import (
	"time"

	"github.com/google/uuid"

	"MetalTracker/internal/model"
)

// TierPercentages splits an allocation across the four limit-order tiers.
// Tier count and split are one versioned unit with model.Spreads; change both together.
var TierPercentages = [4]float64{0.4, 0.3, 0.2, 0.1}

// GenerateLimitOrders splits allocation into four tiers, each priced at
// currentPrice × (1 + spread/100).
func GenerateLimitOrders(metal model.Metal, allocation, currentPrice float64, spreads model.Spreads) [4]model.TierProposal {
	var out [4]model.TierProposal
	for i, spread := range spreads {
		pct := TierPercentages[i]
		amount := allocation * pct
		targetPrice := currentPrice * (1 + spread/100)
		quantity := 0.0
		if targetPrice != 0 {
			quantity = amount / targetPrice
		}
		out[i] = model.TierProposal{
			Tier:        i + 1,
			Amount:      amount,
			TargetPrice: targetPrice,
			Quantity:    quantity,
			Percentage:  pct * 100,
		}
	}
	return out
}

// ProposeOrders turns tier proposals into pending limit orders.
func ProposeOrders(metal model.Metal, tiers [4]model.TierProposal, created time.Time) []model.LimitOrder {
	orders := make([]model.LimitOrder, 0, len(tiers))
	for _, t := range tiers {
		orders = append(orders, model.LimitOrder{
			ID:          uuid.NewString(),
			Metal:       metal,
			Tier:        t.Tier,
			Amount:      t.Amount,
			TargetPrice: t.TargetPrice,
			Quantity:    t.Quantity,
			Status:      model.OrderPending,
			CreatedDate: created,
		})
	}
	return orders
}

// PlanLimitOrders builds pending orders for every metal with a positive monthly allocation.
func PlanLimitOrders(plan model.MonthlyInvestment, latest model.PricePoint, cfg model.StrategyConfig, created time.Time) []model.LimitOrder {
	var orders []model.LimitOrder
	for _, m := range model.Metals {
		amount := plan.FinalAllocation[m]
		if amount <= 0 {
			continue
		}
		tiers := GenerateLimitOrders(m, amount, latest.Price(m), cfg.LimitOrderSpreads[m])
		orders = append(orders, ProposeOrders(m, tiers, created)...)
	}
	return orders
}
