package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// historyDays is the daily lookback requested for RSI computation.
const historyDays = 60

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Prices    model.PerMetal
	DailyData map[model.Metal][]model.OHLCV
	NoHistory bool
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context) (Quote, error) {
	if m.Err != nil {
		return Quote{}, m.Err
	}
	prices := make(model.PerMetal, len(m.Prices))
	for k, v := range m.Prices {
		prices[k] = v
	}
	return Quote{Time: time.Now().UTC(), Prices: prices, Source: m.Name()}, nil
}

func (m *MockFetcher) FetchDailyBars(_ context.Context, metal model.Metal, days int) ([]model.OHLCV, error) {
	if m.NoHistory {
		return nil, ErrHistoryUnsupported
	}
	if bars, ok := m.DailyData[metal]; ok {
		return bars, nil
	}
	return generateMockBars(m.Prices[metal], days), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		// gentle oscillation keeps RSI away from the extremes
		p := basePrice * (1 + 0.01*math.Sin(float64(i)/3))
		bars[i] = model.OHLCV{
			Time:   time.Now().UTC().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector turns a fetcher quote into a price point with per-metal RSI.
type Collector struct {
	fetcher Fetcher
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{fetcher: fetcher, log: log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger()}
}

// Collect fetches the latest quote and computes RSI(14) for each metal from the
// fetcher's daily bars. When bars are unavailable the stored series plus the new
// quote is used instead.
func (c *Collector) Collect(ctx context.Context, stored []model.PricePoint) (model.PricePoint, error) {
	q, err := c.fetcher.FetchQuote(ctx)
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("fetch quote: %w", err)
	}
	t := q.Time
	if t.IsZero() {
		t = time.Now().UTC()
	}
	point := model.PricePoint{Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}

	for _, m := range model.Metals {
		price := q.Prices[m]
		if price <= 0 {
			return model.PricePoint{}, fmt.Errorf("fetch quote: no %s price", m)
		}
		point.SetPrice(m, round2(price))

		closes := c.closes(ctx, m, stored, price)
		rsi, err := calculator.CalculateRSI(closes, calculator.DefaultRSIPeriod)
		if err != nil {
			c.log.Warn().Err(err).Str("metal", string(m)).Msg("RSI calculation failed, defaulting to 50")
			rsi = calculator.NeutralRSI
		}
		point.SetRSI(m, round2(rsi))
	}

	c.log.Info().
		Time("date", point.Date).
		Float64("gold", point.GoldPrice).
		Float64("silver", point.SilverPrice).
		Float64("platinum", point.PlatinumPrice).
		Msg("prices collected")
	return point, nil
}

func (c *Collector) closes(ctx context.Context, m model.Metal, stored []model.PricePoint, current float64) []float64 {
	bars, err := c.fetcher.FetchDailyBars(ctx, m, historyDays)
	if err == nil && len(bars) > calculator.DefaultRSIPeriod {
		closes := make([]float64, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
		}
		return closes
	}
	if err != nil {
		c.log.Warn().Err(err).Str("metal", string(m)).Msg("daily bars unavailable, using stored prices")
	}
	return append(model.Prices(stored, m), current)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
