package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"MetalTracker/internal/model"
)

// TroyOunceGrams converts quotes per troy ounce into per-gram prices.
const TroyOunceGrams = 31.1035

// ErrHistoryUnsupported is returned by fetchers that cannot serve daily history.
var ErrHistoryUnsupported = errors.New("history not supported by fetcher")

// Quote holds per-gram prices of every metal in the configured currency.
type Quote struct {
	Time   time.Time
	Prices model.PerMetal
	Source string
}

// Fetcher defines the interface for fetching metal prices.
// Bars and quotes are returned per gram in the configured currency.
type Fetcher interface {
	FetchQuote(ctx context.Context) (Quote, error)
	FetchDailyBars(ctx context.Context, metal model.Metal, days int) ([]model.OHLCV, error)
	Name() string
}

// PerGram converts a per-ounce quote to a per-gram price using fx units of currency per quote unit.
func PerGram(pricePerOunce, fx float64) float64 {
	return pricePerOunce * fx / TroyOunceGrams
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
