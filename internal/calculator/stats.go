package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"MetalTracker/internal/model"
)

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

// VolatilityWindow is the lookback used by the 30-day volatility variant.
const VolatilityWindow = 30

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopStdDev returns the population (biased) standard deviation, 0 for an empty slice.
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// DailyReturns converts a price series into simple returns.
// A zero previous price yields a zero return for that step.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// Volatility is the annualized standard deviation of daily returns.
// Returns 0 when fewer than two prices are available.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	return PopStdDev(DailyReturns(prices)) * math.Sqrt(TradingDaysPerYear)
}

// Volatility30Day computes Volatility over the last 30 points of one metal's series.
func Volatility30Day(series []model.PricePoint, m model.Metal) float64 {
	if len(series) > VolatilityWindow {
		series = series[len(series)-VolatilityWindow:]
	}
	return Volatility(model.Prices(series, m))
}
