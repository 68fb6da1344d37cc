package strategy

import "MetalTracker/internal/model"

// RSI regime multipliers applied to a metal's base allocation.
const (
	MultiplierPause      = 0.0
	MultiplierReduce     = 0.5
	MultiplierNormal     = 1.0
	MultiplierAggressive = 1.5
)

// RSIMultiplier maps an RSI reading to a buying multiplier.
// Boundaries: strictly above pause pauses, strictly above reduce halves,
// at or above normal buys normally, below normal buys aggressively.
func RSIMultiplier(rsi float64, th model.RSIThresholds) float64 {
	switch {
	case rsi > th.Pause:
		return MultiplierPause
	case rsi > th.Reduce:
		return MultiplierReduce
	case rsi >= th.Normal:
		return MultiplierNormal
	default:
		return MultiplierAggressive
	}
}

// GSRSignal returns the rebalancing nudge implied by the gold-silver ratio.
// A ratio above silverCheap moves capital toward silver, below goldCheap toward gold.
func GSRSignal(gsr float64, p model.GSRParameters) model.GSRRebalancing {
	switch {
	case gsr > p.SilverCheap:
		return model.GSRRebalancing{Needed: true, FromMetal: model.Gold, ToMetal: model.Silver}
	case gsr < p.GoldCheap:
		return model.GSRRebalancing{Needed: true, FromMetal: model.Silver, ToMetal: model.Gold}
	default:
		return model.GSRRebalancing{}
	}
}

// GSRZone labels where a ratio sits relative to the configured bands.
type GSRZone string

const (
	ZoneSilverCheap GSRZone = "silver_cheap"
	ZoneSilverSide  GSRZone = "silver_rich_side" // above the normal band, not yet extreme
	ZoneNormal      GSRZone = "normal"
	ZoneGoldSide    GSRZone = "gold_rich_side" // below the normal band, not yet extreme
	ZoneGoldCheap   GSRZone = "gold_cheap"
)

// ClassifyGSR places a ratio into one of five zones.
func ClassifyGSR(gsr float64, p model.GSRParameters) GSRZone {
	switch {
	case gsr > p.SilverCheap:
		return ZoneSilverCheap
	case gsr > p.NormalMax:
		return ZoneSilverSide
	case gsr >= p.NormalMin:
		return ZoneNormal
	case gsr >= p.GoldCheap:
		return ZoneGoldSide
	default:
		return ZoneGoldCheap
	}
}
