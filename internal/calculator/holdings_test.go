package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"MetalTracker/internal/model"
)

var day = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func buy(m model.Metal, qty, price float64) model.Transaction {
	return model.NewTransaction(day, m, model.Buy, qty, price)
}

func sell(m model.Metal, qty, price float64) model.Transaction {
	return model.NewTransaction(day, m, model.Sell, qty, price)
}

func TestComputeHoldings_Empty(t *testing.T) {
	h := ComputeHoldings(nil)
	assert.Len(t, h, 3)
	for _, m := range model.Metals {
		assert.Equal(t, model.Holding{}, h[m], m)
	}
}

func TestComputeHoldings_TwoBuys(t *testing.T) {
	h := ComputeHoldings([]model.Transaction{buy(model.Gold, 10, 500)})
	assert.InDelta(t, 10, h[model.Gold].Quantity, 1e-9)
	assert.InDelta(t, 500, h[model.Gold].AverageCost, 1e-9)
	assert.InDelta(t, 5000, h[model.Gold].TotalCost, 1e-9)

	h = ComputeHoldings([]model.Transaction{buy(model.Gold, 10, 500), buy(model.Gold, 10, 600)})
	assert.InDelta(t, 20, h[model.Gold].Quantity, 1e-9)
	assert.InDelta(t, 550, h[model.Gold].AverageCost, 1e-9)
	assert.InDelta(t, 11000, h[model.Gold].TotalCost, 1e-9)
}

func TestComputeHoldings_PartialSellKeepsAverageCost(t *testing.T) {
	txs := []model.Transaction{
		buy(model.Silver, 100, 6),
		buy(model.Silver, 100, 8),
		sell(model.Silver, 50, 10),
	}
	h := ComputeHoldings(txs)
	assert.InDelta(t, 150, h[model.Silver].Quantity, 1e-9)
	assert.InDelta(t, 7, h[model.Silver].AverageCost, 1e-9)
	assert.InDelta(t, 1050, h[model.Silver].TotalCost, 1e-9)
}

func TestComputeHoldings_FullSell(t *testing.T) {
	h := ComputeHoldings([]model.Transaction{buy(model.Platinum, 5, 200), sell(model.Platinum, 5, 250)})
	assert.Equal(t, model.Holding{}, h[model.Platinum])
}

func TestComputeHoldings_OversellClampsToZero(t *testing.T) {
	tests := []struct {
		name string
		txs  []model.Transaction
	}{
		{"sell more than held", []model.Transaction{buy(model.Gold, 10, 500), sell(model.Gold, 15, 520)}},
		{"sell with nothing held", []model.Transaction{sell(model.Gold, 3, 500)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ComputeHoldings(tt.txs)
			assert.Equal(t, 0.0, h[model.Gold].Quantity)
			assert.Equal(t, 0.0, h[model.Gold].TotalCost)
			assert.Equal(t, 0.0, h[model.Gold].AverageCost)
		})
	}

	// A later buy starts a fresh cost basis.
	h := ComputeHoldings([]model.Transaction{
		buy(model.Gold, 10, 500), sell(model.Gold, 15, 520), buy(model.Gold, 2, 600),
	})
	assert.InDelta(t, 2, h[model.Gold].Quantity, 1e-9)
	assert.InDelta(t, 600, h[model.Gold].AverageCost, 1e-9)
}

func TestComputeHoldings_Idempotent(t *testing.T) {
	txs := []model.Transaction{
		buy(model.Gold, 3, 480), buy(model.Silver, 40, 5.9), sell(model.Gold, 1, 510), buy(model.Platinum, 2, 220),
	}
	assert.Equal(t, ComputeHoldings(txs), ComputeHoldings(txs))
}

func TestComputeHoldings_BuyOnlyWeightedAverage(t *testing.T) {
	txs := []model.Transaction{buy(model.Gold, 1, 450), buy(model.Gold, 3, 470), buy(model.Gold, 2, 520)}
	prevQty := 0.0
	for i := range txs {
		h := ComputeHoldings(txs[:i+1])
		assert.GreaterOrEqual(t, h[model.Gold].Quantity, prevQty)
		prevQty = h[model.Gold].Quantity
	}
	h := ComputeHoldings(txs)
	assert.InDelta(t, (450+3*470+2*520)/6.0, h[model.Gold].AverageCost, 1e-9)
}

func TestTotalInvested(t *testing.T) {
	txs := []model.Transaction{buy(model.Gold, 10, 500), sell(model.Gold, 2, 550), buy(model.Silver, 100, 6)}
	assert.InDelta(t, 5000-1100+600, TotalInvested(txs), 1e-9)
	assert.Equal(t, 0.0, TotalInvested(nil))
}

func TestHoldingsByDate_ReplaysBackdatedBuy(t *testing.T) {
	jan := model.NewTransaction(day, model.Gold, model.Buy, 10, 500)
	mar := model.NewTransaction(day.AddDate(0, 2, 0), model.Gold, model.Sell, 10, 550)
	feb := model.NewTransaction(day.AddDate(0, 1, 0), model.Gold, model.Buy, 5, 600)
	txs := []model.Transaction{jan, mar, feb}

	h := HoldingsByDate(txs)[model.Gold]
	assert.InDelta(t, 5.0, h.Quantity, 1e-9)
	assert.InDelta(t, 8000.0/15, h.AverageCost, 1e-6)
	assert.InDelta(t, 8000.0/3, h.TotalCost, 1e-6)

	// input order is left untouched
	assert.Equal(t, mar, txs[1])
	assert.Equal(t, []model.Transaction{jan, feb, mar}, Chronological(txs))
}

func TestChronological_KeepsSameDayOrder(t *testing.T) {
	a := buy(model.Gold, 1, 500)
	b := sell(model.Gold, 1, 510)
	assert.Equal(t, []model.Transaction{a, b}, Chronological([]model.Transaction{a, b}))
	assert.Empty(t, Chronological(nil))
}
