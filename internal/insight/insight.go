// Package insight defines the entry-prediction boundary and a rule-based implementation.
// The planner never calls a Predictor; its outputs are advisory only.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// ErrInsufficientHistory is returned when history is too short to judge an entry.
var ErrInsufficientHistory = errors.New("insufficient price history")

// EntrySignal is an advisory buy/wait call for one metal.
type EntrySignal struct {
	Metal       model.Metal `json:"metal"`
	ShouldBuy   bool        `json:"shouldBuy"`
	TargetPrice float64     `json:"targetPrice"`
	Confidence  float64     `json:"confidence"` // 0..1
	Reasoning   string      `json:"reasoning"`
	Timeframe   string      `json:"timeframe"`
}

// Predictor suggests an entry price for a metal from its price history.
type Predictor interface {
	PredictEntry(ctx context.Context, metal model.Metal, history []model.PricePoint) (EntrySignal, error)
}

// TechnicalPredictor scores RSI and the position within the 30-day range.
type TechnicalPredictor struct {
	RSIPeriod int
	Window    int
}

func NewTechnicalPredictor() *TechnicalPredictor {
	return &TechnicalPredictor{RSIPeriod: calculator.DefaultRSIPeriod, Window: calculator.VolatilityWindow}
}

// PredictEntry buys when momentum is weak or price sits in the lower third of its range,
// targeting the midpoint between the current price and the range low.
func (p *TechnicalPredictor) PredictEntry(ctx context.Context, metal model.Metal, history []model.PricePoint) (EntrySignal, error) {
	if err := ctx.Err(); err != nil {
		return EntrySignal{}, err
	}
	if !metal.Valid() {
		return EntrySignal{}, fmt.Errorf("unknown metal %q", metal)
	}
	prices := model.Prices(history, metal)
	if len(prices) <= p.RSIPeriod {
		return EntrySignal{}, fmt.Errorf("%w: have %d points, need %d", ErrInsufficientHistory, len(prices), p.RSIPeriod+1)
	}

	rsi, err := calculator.CalculateRSI(prices, p.RSIPeriod)
	if err != nil {
		return EntrySignal{}, err
	}
	high, low, err := calculator.TrailingRange(prices, p.Window)
	if err != nil {
		return EntrySignal{}, err
	}
	current := prices[len(prices)-1]
	position := 0.5
	if high > low {
		position = (current - low) / (high - low)
	}

	var reasons []string
	score := 0.0
	switch {
	case rsi < 30:
		score += 0.5
		reasons = append(reasons, fmt.Sprintf("RSI %.1f oversold", rsi))
	case rsi < 50:
		score += 0.25
		reasons = append(reasons, fmt.Sprintf("RSI %.1f soft", rsi))
	case rsi > 70:
		score -= 0.5
		reasons = append(reasons, fmt.Sprintf("RSI %.1f overbought", rsi))
	}
	switch {
	case position <= 1.0/3:
		score += 0.5
		reasons = append(reasons, fmt.Sprintf("price in lower third of %d-day range", p.Window))
	case position >= 2.0/3:
		score -= 0.25
		reasons = append(reasons, fmt.Sprintf("price in upper third of %d-day range", p.Window))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no clear edge")
	}

	confidence := score
	if confidence < 0 {
		confidence = -confidence
	}
	if confidence > 1 {
		confidence = 1
	}
	return EntrySignal{
		Metal:       metal,
		ShouldBuy:   score >= 0.5,
		TargetPrice: (current + low) / 2,
		Confidence:  confidence,
		Reasoning:   strings.Join(reasons, "; "),
		Timeframe:   "1-2 weeks",
	}, nil
}
