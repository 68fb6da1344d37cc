package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"MetalTracker/internal/model"
)

func sampleHoldings() model.Holdings {
	return ComputeHoldings([]model.Transaction{
		buy(model.Gold, 10, 500),
		buy(model.Silver, 500, 6),
		buy(model.Platinum, 4, 220),
	})
}

func TestPortfolioValue(t *testing.T) {
	h := sampleHoldings()
	assert.InDelta(t, 10*520+500*6.5+4*230, PortfolioValue(h, 520, 6.5, 230), 1e-9)
	assert.Equal(t, 0.0, PortfolioValue(model.EmptyHoldings(), 520, 6.5, 230))
}

func TestAllocation_SumsTo100(t *testing.T) {
	tests := []struct {
		name                   string
		gold, silver, platinum float64
	}{
		{"base prices", 500, 6, 220},
		{"gold rally", 700, 6, 220},
		{"silver squeeze", 500, 15, 220},
	}
	h := sampleHoldings()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := Allocation(h, tt.gold, tt.silver, tt.platinum)
			assert.InDelta(t, 100, alloc.Sum(), 1e-9)
		})
	}
}

func TestAllocation_ZeroValue(t *testing.T) {
	alloc := Allocation(model.EmptyHoldings(), 500, 6, 220)
	for _, m := range model.Metals {
		assert.Equal(t, 0.0, alloc[m])
	}
}

func TestGoldSilverRatio(t *testing.T) {
	assert.InDelta(t, 90, GoldSilverRatio(540, 6), 1e-9)
	assert.Equal(t, 0.0, GoldSilverRatio(540, 0))
}

func TestValueSeries(t *testing.T) {
	h := ComputeHoldings([]model.Transaction{buy(model.Gold, 2, 500)})
	series := []model.PricePoint{{GoldPrice: 500}, {GoldPrice: 510}, {GoldPrice: 490}}
	assert.Equal(t, []float64{1000, 1020, 980}, ValueSeries(h, series))
}
