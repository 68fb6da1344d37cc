package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// RSIThresholds drive the per-metal buying multiplier.
type RSIThresholds struct {
	Pause  float64 `json:"pause" yaml:"pause"`
	Reduce float64 `json:"reduce" yaml:"reduce"`
	Normal float64 `json:"normal" yaml:"normal"`
}

// GSRParameters drive the gold-silver-ratio nudge.
type GSRParameters struct {
	NormalMin   float64 `json:"normalMin" yaml:"normal_min"`
	NormalMax   float64 `json:"normalMax" yaml:"normal_max"`
	SilverCheap float64 `json:"silverCheap" yaml:"silver_cheap"`
	GoldCheap   float64 `json:"goldCheap" yaml:"gold_cheap"`
}

// StopLossParameters drive the dynamic, hard and trailing stops.
type StopLossParameters struct {
	VolatilityMultiplier float64 `json:"volatilityMultiplier" yaml:"volatility_multiplier"`
	HardStopPercent      float64 `json:"hardStopPercent" yaml:"hard_stop_percent"`
	TrailingStopPercent  float64 `json:"trailingStopPercent" yaml:"trailing_stop_percent"`
}

// Spreads are the four limit-order discount levels, in percent (negative values buy below market).
type Spreads [4]float64

// StrategyConfig is the parameter snapshot behind every planning decision.
type StrategyConfig struct {
	TotalCapital              float64            `json:"totalCapital" yaml:"total_capital"`
	AccumulationStartDate     time.Time          `json:"accumulationStartDate" yaml:"accumulation_start_date"`
	AccumulationEndDate       time.Time          `json:"accumulationEndDate" yaml:"accumulation_end_date"`
	HoldingPeriodEndDate      time.Time          `json:"holdingPeriodEndDate" yaml:"holding_period_end_date"`
	ActiveCapitalPercent      float64            `json:"activeCapitalPercent" yaml:"active_capital_percent"`
	OpportunityCapitalPercent float64            `json:"opportunityCapitalPercent" yaml:"opportunity_capital_percent"`
	TargetAllocation          PerMetal           `json:"targetAllocation" yaml:"target_allocation"`
	LimitOrderSpreads         map[Metal]Spreads  `json:"limitOrderSpreads" yaml:"limit_order_spreads"`
	RSIThresholds             RSIThresholds      `json:"rsiThresholds" yaml:"rsi_thresholds"`
	GSRParameters             GSRParameters      `json:"gsrParameters" yaml:"gsr_parameters"`
	StopLossParameters        StopLossParameters `json:"stopLossParameters" yaml:"stop_loss_parameters"`
}

// DefaultStrategyConfig returns the stock strategy starting on the day of now.
func DefaultStrategyConfig(now time.Time) StrategyConfig {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return StrategyConfig{
		TotalCapital:              100000,
		AccumulationStartDate:     start,
		AccumulationEndDate:       start.AddDate(0, 6, 0),
		HoldingPeriodEndDate:      start.AddDate(3, 0, 0),
		ActiveCapitalPercent:      85,
		OpportunityCapitalPercent: 15,
		TargetAllocation: PerMetal{
			Gold:     50,
			Silver:   35,
			Platinum: 15,
		},
		LimitOrderSpreads: map[Metal]Spreads{
			Gold:     {-1, -2.5, -4, -6},
			Silver:   {-2, -4, -6.5, -9},
			Platinum: {-1.5, -3.5, -5.5, -8},
		},
		RSIThresholds: RSIThresholds{Pause: 70, Reduce: 50, Normal: 30},
		GSRParameters: GSRParameters{NormalMin: 65, NormalMax: 75, SilverCheap: 85, GoldCheap: 55},
		StopLossParameters: StopLossParameters{
			VolatilityMultiplier: 2.5,
			HardStopPercent:      -25,
			TrailingStopPercent:  -15,
		},
	}
}

// Clone returns a deep copy so callers can edit maps without touching the original.
func (c StrategyConfig) Clone() StrategyConfig {
	out := c
	out.TargetAllocation = make(PerMetal, len(c.TargetAllocation))
	for k, v := range c.TargetAllocation {
		out.TargetAllocation[k] = v
	}
	out.LimitOrderSpreads = make(map[Metal]Spreads, len(c.LimitOrderSpreads))
	for k, v := range c.LimitOrderSpreads {
		out.LimitOrderSpreads[k] = v
	}
	return out
}

// Validate checks the invariants every planner call relies on.
func (c StrategyConfig) Validate() error {
	if c.TotalCapital <= 0 {
		return errors.New("totalCapital must be positive")
	}
	if c.AccumulationStartDate.IsZero() {
		return errors.New("accumulationStartDate is required")
	}
	if math.Abs(c.ActiveCapitalPercent+c.OpportunityCapitalPercent-100) > 0.01 {
		return fmt.Errorf("active and opportunity capital must sum to 100, got %.2f", c.ActiveCapitalPercent+c.OpportunityCapitalPercent)
	}
	sum := 0.0
	for _, m := range Metals {
		v, ok := c.TargetAllocation[m]
		if !ok || v < 0 {
			return fmt.Errorf("targetAllocation.%s must be set and non-negative", m)
		}
		sum += v
		if _, ok := c.LimitOrderSpreads[m]; !ok {
			return fmt.Errorf("limitOrderSpreads.%s is required", m)
		}
	}
	if math.Abs(sum-100) > 0.01 {
		return fmt.Errorf("targetAllocation must sum to 100, got %.2f", sum)
	}
	th := c.RSIThresholds
	if !(th.Normal < th.Reduce && th.Reduce < th.Pause) {
		return errors.New("rsiThresholds must satisfy normal < reduce < pause")
	}
	g := c.GSRParameters
	if !(g.GoldCheap <= g.NormalMin && g.NormalMin <= g.NormalMax && g.NormalMax <= g.SilverCheap) {
		return errors.New("gsrParameters must satisfy goldCheap <= normalMin <= normalMax <= silverCheap")
	}
	return nil
}
