package strategy

import (
	"math"
	"time"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// AccumulationMonths is the length of the linear value-averaging schedule.
const AccumulationMonths = 6

// MonthsElapsed is the whole-calendar-month difference between two dates.
// Days are ignored: Jan 31 to Feb 1 counts as one month.
func MonthsElapsed(start, current time.Time) int {
	return (current.Year()-start.Year())*12 + int(current.Month()) - int(start.Month())
}

// TargetValue is where the portfolio should be on the linear schedule, capped at totalCapital.
func TargetValue(start, current time.Time, totalCapital float64) float64 {
	months := float64(MonthsElapsed(start, current))
	return math.Min(months/AccumulationMonths*totalCapital, totalCapital)
}

// ValueAveragingInvestment is the contribution needed to reach target; never negative.
func ValueAveragingInvestment(targetValue, currentValue float64) float64 {
	return math.Max(0, targetValue-currentValue)
}

// CapitalSplit divides total capital into active and opportunity pools.
func CapitalSplit(cfg model.StrategyConfig) (active, opportunity float64) {
	active = cfg.TotalCapital * cfg.ActiveCapitalPercent / 100
	opportunity = cfg.TotalCapital * cfg.OpportunityCapitalPercent / 100
	return active, opportunity
}

// PlanMonthlyInvestment computes the value-averaging contribution for the month of
// current and splits it across metals.
//
// Each metal gets requiredInvestment × targetAllocation%, scaled by its RSI multiplier.
// When the gold-silver ratio flags a nudge, the capital left over after RSI scaling
// goes entirely to the metal the nudge points at.
func PlanMonthlyInvestment(current time.Time, cfg model.StrategyConfig, holdings model.Holdings, latest model.PricePoint) model.MonthlyInvestment {
	target := TargetValue(cfg.AccumulationStartDate, current, cfg.TotalCapital)
	currentValue := calculator.PortfolioValueAt(holdings, latest)
	required := ValueAveragingInvestment(target, currentValue)

	adjustments := make(model.PerMetal, len(model.Metals))
	allocation := make(model.PerMetal, len(model.Metals))
	for _, m := range model.Metals {
		adjustments[m] = RSIMultiplier(latest.RSI(m), cfg.RSIThresholds)
		allocation[m] = required * (cfg.TargetAllocation[m] / 100) * adjustments[m]
	}

	gsr := calculator.GoldSilverRatio(latest.GoldPrice, latest.SilverPrice)
	nudge := GSRSignal(gsr, cfg.GSRParameters)
	if nudge.Needed {
		unused := required - allocation.Sum()
		allocation[nudge.ToMetal] += unused
		nudge.Amount = unused
	}

	return model.MonthlyInvestment{
		Month:              current.Format("2006-01"),
		TargetValue:        target,
		CurrentValue:       currentValue,
		RequiredInvestment: required,
		RSIAdjustments:     adjustments,
		GSR:                gsr,
		GSRRebalancing:     nudge,
		FinalAllocation:    allocation,
	}
}
