package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetalTracker/internal/model"
)

func TestDailyReturns(t *testing.T) {
	r := DailyReturns([]float64{100, 110, 99})
	require.Len(t, r, 2)
	assert.InDelta(t, 0.10, r[0], 1e-12)
	assert.InDelta(t, -0.10, r[1], 1e-12)
	assert.Empty(t, DailyReturns([]float64{100}))
}

func TestVolatility(t *testing.T) {
	assert.Equal(t, 0.0, Volatility(nil))
	assert.Equal(t, 0.0, Volatility([]float64{500}))
	assert.Equal(t, 0.0, Volatility([]float64{500, 500, 500}))

	// returns +10% and -10%: population stddev 0.10
	vol := Volatility([]float64{100, 110, 99})
	assert.InDelta(t, 0.10*math.Sqrt(252), vol, 1e-9)
}

func TestVolatility30Day_UsesLastThirtyPoints(t *testing.T) {
	series := make([]model.PricePoint, 0, 40)
	// ten noisy points followed by thirty flat ones
	for i := 0; i < 10; i++ {
		series = append(series, model.PricePoint{GoldPrice: 400 + float64(i%2)*50})
	}
	for i := 0; i < 30; i++ {
		series = append(series, model.PricePoint{GoldPrice: 500})
	}
	assert.Equal(t, 0.0, Volatility30Day(series, model.Gold))
	assert.Greater(t, Volatility30Day(series[:12], model.Gold), 0.0)
}

func TestMeanAndPopStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, PopStdDev(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), PopStdDev([]float64{1, 2, 3, 4}), 1e-12)
}
