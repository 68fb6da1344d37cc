package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetalTracker/internal/model"
)

func TestGenerateLimitOrders_GoldDefaults(t *testing.T) {
	tiers := GenerateLimitOrders(model.Gold, 10000, 500, model.Spreads{-1, -2.5, -4, -6})

	want := []struct {
		amount, price, qty, pct float64
	}{
		{4000, 495, 8.0808, 40},
		{3000, 487.5, 6.1538, 30},
		{2000, 480, 4.1667, 20},
		{1000, 470, 2.1277, 10},
	}
	for i, w := range want {
		assert.Equal(t, i+1, tiers[i].Tier)
		assert.InDelta(t, w.amount, tiers[i].Amount, 1e-9)
		assert.InDelta(t, w.price, tiers[i].TargetPrice, 1e-9)
		assert.InDelta(t, w.qty, tiers[i].Quantity, 1e-4)
		assert.InDelta(t, w.pct, tiers[i].Percentage, 1e-9)
	}
}

func TestGenerateLimitOrders_TierAmountsSumToAllocation(t *testing.T) {
	for _, alloc := range []float64{0, 1, 333.33, 10000, 98765.4321} {
		tiers := GenerateLimitOrders(model.Silver, alloc, 6.2, model.Spreads{-2, -4, -6.5, -9})
		sum := 0.0
		for _, tr := range tiers {
			sum += tr.Amount
		}
		assert.InDelta(t, alloc, sum, 1e-9, "allocation %.4f", alloc)
	}
}

func TestGenerateLimitOrders_ZeroPrice(t *testing.T) {
	tiers := GenerateLimitOrders(model.Gold, 1000, 0, model.Spreads{-1, -2.5, -4, -6})
	for _, tr := range tiers {
		assert.Equal(t, 0.0, tr.Quantity)
	}
}

func TestPlanLimitOrders(t *testing.T) {
	cfg := model.DefaultStrategyConfig(date(2024, 1, 1))
	plan := model.MonthlyInvestment{FinalAllocation: model.PerMetal{model.Gold: 10000, model.Silver: 0, model.Platinum: 2000}}
	latest := model.PricePoint{GoldPrice: 500, SilverPrice: 6, PlatinumPrice: 200}
	created := date(2024, 3, 1)

	orders := PlanLimitOrders(plan, latest, cfg, created)
	require.Len(t, orders, 8)

	ids := map[string]bool{}
	for _, o := range orders {
		assert.NotEqual(t, model.Silver, o.Metal)
		assert.Equal(t, model.OrderPending, o.Status)
		assert.Equal(t, created, o.CreatedDate)
		assert.NotEmpty(t, o.ID)
		ids[o.ID] = true
	}
	assert.Len(t, ids, 8)
	assert.InDelta(t, 495, orders[0].TargetPrice, 1e-9)
	assert.InDelta(t, 200*0.985, orders[4].TargetPrice, 1e-9)
}
