package performance

import (
	"math"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// DefaultRiskFreeRate is the annual risk-free rate used when none is configured.
const DefaultRiskFreeRate = 0.02

// DailyRiskFreeRate spreads DefaultRiskFreeRate over one trading day, for daily return series.
const DailyRiskFreeRate = DefaultRiskFreeRate / calculator.TradingDaysPerYear

// SharpeRatio is (mean(returns) - riskFree) / popStdDev(returns).
// Returns 0 for an empty series or zero dispersion.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sd := calculator.PopStdDev(returns)
	if sd == 0 {
		return 0
	}
	return (calculator.Mean(returns) - riskFree) / sd
}

// SortinoRatio is (mean(returns) - riskFree) / downside deviation, where the
// deviation is the RMS shortfall of the returns that fall below riskFree.
// Returns 0 for fewer than two returns or when nothing falls below riskFree.
func SortinoRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	meanReturn := calculator.Mean(returns)

	var downsideSquaredSum float64
	downsideCount := 0
	for _, r := range returns {
		if r < riskFree {
			deviation := r - riskFree
			downsideSquaredSum += deviation * deviation
			downsideCount++
		}
	}
	if downsideCount == 0 {
		return 0
	}

	downsideDeviation := math.Sqrt(downsideSquaredSum / float64(downsideCount))
	if downsideDeviation == 0 {
		return 0
	}
	return (meanReturn - riskFree) / downsideDeviation
}

// MaxDrawdown is the largest peak-to-trough decline of a value series, in percent.
// Points before the first positive peak are skipped so the result stays within [0, 100].
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	maxDD := 0.0
	peak := values[0]
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - math.Max(v, 0)) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

// FillRate is filled/total in percent, 0 when no orders were placed.
func FillRate(total, filled int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(filled) / float64(total) * 100
}

// Grade scores a month out of 100 and maps it to a letter.
// Fill rate and return rate contribute up to 40 points each, cost efficiency up to 20.
func Grade(fillRate, returnRate, costVsMarket float64) (int, model.Grade) {
	score := 0
	switch {
	case fillRate >= 80:
		score += 40
	case fillRate >= 60:
		score += 30
	case fillRate >= 40:
		score += 20
	default:
		score += 10
	}

	switch {
	case returnRate >= 10:
		score += 40
	case returnRate >= 5:
		score += 30
	case returnRate >= 0:
		score += 20
	default:
		score += 10
	}

	// negative means bought below the period's average market price
	switch {
	case costVsMarket <= -5:
		score += 20
	case costVsMarket <= -2:
		score += 15
	case costVsMarket <= 0:
		score += 10
	default:
		score += 5
	}

	switch {
	case score >= 80:
		return score, model.GradeA
	case score >= 60:
		return score, model.GradeB
	default:
		return score, model.GradeC
	}
}
