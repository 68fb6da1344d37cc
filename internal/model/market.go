package model

import "time"

// PricePoint is one day's observation of metal prices (currency per gram) and RSI values.
type PricePoint struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	GoldPrice     float64   `json:"goldPrice"`
	SilverPrice   float64   `json:"silverPrice"`
	PlatinumPrice float64   `json:"platinumPrice"`
	GoldRSI       float64   `json:"goldRSI"`
	SilverRSI     float64   `json:"silverRSI"`
	PlatinumRSI   float64   `json:"platinumRSI"`
	VIX           *float64  `json:"vix,omitempty"`
}

// Price returns the per-gram price of the given metal.
func (p PricePoint) Price(m Metal) float64 {
	switch m {
	case Gold:
		return p.GoldPrice
	case Silver:
		return p.SilverPrice
	case Platinum:
		return p.PlatinumPrice
	}
	return 0
}

// RSI returns the momentum oscillator value of the given metal.
func (p PricePoint) RSI(m Metal) float64 {
	switch m {
	case Gold:
		return p.GoldRSI
	case Silver:
		return p.SilverRSI
	case Platinum:
		return p.PlatinumRSI
	}
	return 0
}

// SetPrice updates the price of the given metal.
func (p *PricePoint) SetPrice(m Metal, v float64) {
	switch m {
	case Gold:
		p.GoldPrice = v
	case Silver:
		p.SilverPrice = v
	case Platinum:
		p.PlatinumPrice = v
	}
}

// SetRSI updates the RSI of the given metal.
func (p *PricePoint) SetRSI(m Metal, v float64) {
	switch m {
	case Gold:
		p.GoldRSI = v
	case Silver:
		p.SilverRSI = v
	case Platinum:
		p.PlatinumRSI = v
	}
}

// OHLCV represents a single candlestick bar from a quote provider.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Prices extracts one metal's price column from a series.
func Prices(series []PricePoint, m Metal) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Price(m)
	}
	return out
}
