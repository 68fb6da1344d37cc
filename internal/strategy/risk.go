package strategy

import (
	"math"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// stopLossScale converts annualized volatility into a per-gram price cushion.
const stopLossScale = 20

// Distance-from-stop thresholds, in percent of the current price.
const (
	DangerDistance  = 5.0
	WarningDistance = 10.0
)

// RebalanceThreshold is the allocation drift, in percentage points, that triggers rebalancing.
const RebalanceThreshold = 15.0

// DynamicStopLoss lowers the stop as volatility rises.
func DynamicStopLoss(averageCost, volatility float64, cfg model.StrategyConfig) float64 {
	return averageCost - volatility*cfg.StopLossParameters.VolatilityMultiplier*stopLossScale
}

// HardStopLoss is a fixed percentage floor under the average cost.
func HardStopLoss(averageCost float64, cfg model.StrategyConfig) float64 {
	return averageCost * (1 + cfg.StopLossParameters.HardStopPercent/100)
}

// TrailingStopLoss trails the highest observed price by the configured percent.
func TrailingStopLoss(peak float64, cfg model.StrategyConfig) float64 {
	return peak * (1 + cfg.StopLossParameters.TrailingStopPercent/100)
}

func distanceToStop(price, stop float64) float64 {
	if price == 0 {
		return 0
	}
	return (price - stop) / price * 100
}

// StopLoss evaluates both stops for one metal and classifies by the one closer to breach.
func StopLoss(metal model.Metal, holdings model.Holdings, currentPrice, volatility float64, cfg model.StrategyConfig) model.StopLossStatus {
	avg := holdings[metal].AverageCost
	dynamic := DynamicStopLoss(avg, volatility, cfg)
	hard := HardStopLoss(avg, cfg)
	distance := math.Min(distanceToStop(currentPrice, dynamic), distanceToStop(currentPrice, hard))

	status := model.StopSafe
	switch {
	case distance < DangerDistance:
		status = model.StopDanger
	case distance < WarningDistance:
		status = model.StopWarning
	}

	return model.StopLossStatus{
		Metal:            metal,
		CurrentPrice:     currentPrice,
		AverageCost:      avg,
		Volatility:       volatility,
		DynamicStopLoss:  dynamic,
		HardStopLoss:     hard,
		DistanceFromStop: distance,
		Status:           status,
	}
}

// StopLossFromSeries evaluates a metal against the latest point of a series using
// 30-day volatility, and fills in the trailing stop from the series peak.
func StopLossFromSeries(metal model.Metal, holdings model.Holdings, series []model.PricePoint, cfg model.StrategyConfig) model.StopLossStatus {
	if len(series) == 0 {
		return StopLoss(metal, holdings, 0, 0, cfg)
	}
	prices := model.Prices(series, metal)
	status := StopLoss(metal, holdings, prices[len(prices)-1], calculator.Volatility30Day(series, metal), cfg)

	peak := prices[0]
	for _, p := range prices {
		if p > peak {
			peak = p
		}
	}
	status.TrailingStopLoss = TrailingStopLoss(peak, cfg)
	return status
}

// Rebalance compares current and target allocations and, when drift exceeds
// RebalanceThreshold, proposes a single sell of the most overweight metal and a
// buy of the most underweight one for the same currency amount.
func Rebalance(holdings model.Holdings, goldPrice, silverPrice, platinumPrice float64, cfg model.StrategyConfig) model.RebalancingRecommendation {
	current := calculator.Allocation(holdings, goldPrice, silverPrice, platinumPrice)
	target := make(model.PerMetal, len(model.Metals))
	deviations := make(model.PerMetal, len(model.Metals))
	maxDeviation := 0.0
	for _, m := range model.Metals {
		target[m] = cfg.TargetAllocation[m]
		deviations[m] = current[m] - target[m]
		maxDeviation = math.Max(maxDeviation, math.Abs(deviations[m]))
	}

	rec := model.RebalancingRecommendation{
		Needed:            maxDeviation > RebalanceThreshold,
		CurrentAllocation: current,
		TargetAllocation:  target,
		Deviations:        deviations,
	}
	if !rec.Needed {
		return rec
	}

	overweight, underweight := model.Gold, model.Silver
	maxPositive, maxNegative := deviations[model.Gold], deviations[model.Silver]
	for _, m := range model.Metals {
		if deviations[m] > maxPositive {
			maxPositive = deviations[m]
			overweight = m
		}
		if deviations[m] < maxNegative {
			maxNegative = deviations[m]
			underweight = m
		}
	}

	prices := model.PerMetal{model.Gold: goldPrice, model.Silver: silverPrice, model.Platinum: platinumPrice}
	amount := math.Abs(maxPositive) / 100 * calculator.PortfolioValue(holdings, goldPrice, silverPrice, platinumPrice)

	rec.Sell = &model.Trade{Metal: overweight, Amount: amount, Quantity: safeDiv(amount, prices[overweight])}
	rec.Buy = &model.Trade{Metal: underweight, Amount: amount, Quantity: safeDiv(amount, prices[underweight])}
	return rec
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
