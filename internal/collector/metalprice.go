package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"MetalTracker/internal/model"
)

// metalpriceCodes are the ISO 4217 metal codes requested against a gold base.
var metalpriceCodes = map[model.Metal]string{
	model.Silver:   "XAG",
	model.Platinum: "XPT",
}

// MetalpriceFetcher implements Fetcher using the MetalpriceAPI REST API.
// Rates are requested with base=XAU, so the currency rate is the gold price per ounce
// and each metal rate is ounces of that metal per ounce of gold.
type MetalpriceFetcher struct {
	BaseURL  string
	APIKey   string
	Currency string
	Client   *http.Client
}

// NewMetalpriceFetcher creates a new fetcher with optional proxy support.
func NewMetalpriceFetcher(apiKey, currency, proxyURL string) *MetalpriceFetcher {
	if currency == "" {
		currency = "CNY"
	}
	return &MetalpriceFetcher{
		BaseURL:  "https://api.metalpriceapi.com",
		APIKey:   apiKey,
		Currency: currency,
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *MetalpriceFetcher) Name() string { return "metalprice" }

type metalpriceLatest struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
	Error     *struct {
		Info string `json:"info"`
	} `json:"error"`
	Message string `json:"message"`
}

type metalpriceTimeframe struct {
	Success bool                          `json:"success"`
	Rates   map[string]map[string]float64 `json:"rates"`
	Message string                        `json:"message"`
}

func (f *MetalpriceFetcher) currencies() string {
	return "XAG,XPT," + f.Currency
}

func (f *MetalpriceFetcher) get(ctx context.Context, path string, q url.Values, dst any) error {
	q.Set("api_key", f.APIKey)
	q.Set("base", "XAU")
	q.Set("currencies", f.currencies())
	endpoint := fmt.Sprintf("%s%s?%s", f.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("metalprice fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("metalprice: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("metalprice decode: %w", err)
	}
	return nil
}

// pricesFromRates converts XAU-based rates into per-gram prices.
func (f *MetalpriceFetcher) pricesFromRates(rates map[string]float64) (model.PerMetal, error) {
	goldPerOunce := rates[f.Currency]
	if goldPerOunce <= 0 {
		return nil, fmt.Errorf("metalprice: missing %s rate", f.Currency)
	}
	prices := model.PerMetal{model.Gold: goldPerOunce / TroyOunceGrams}
	for m, code := range metalpriceCodes {
		ratio := rates[code]
		if ratio <= 0 {
			return nil, fmt.Errorf("metalprice: missing %s rate", code)
		}
		prices[m] = goldPerOunce / ratio / TroyOunceGrams
	}
	return prices, nil
}

func (f *MetalpriceFetcher) FetchQuote(ctx context.Context) (Quote, error) {
	var resp metalpriceLatest
	if err := f.get(ctx, "/v1/latest", url.Values{}, &resp); err != nil {
		return Quote{}, err
	}
	if !resp.Success {
		msg := resp.Message
		if resp.Error != nil && resp.Error.Info != "" {
			msg = resp.Error.Info
		}
		return Quote{}, fmt.Errorf("metalprice api error: %s", msg)
	}
	prices, err := f.pricesFromRates(resp.Rates)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Time: time.Unix(resp.Timestamp, 0).UTC(), Prices: prices, Source: f.Name()}, nil
}

// FetchDailyBars builds close-only bars from the timeframe endpoint.
func (f *MetalpriceFetcher) FetchDailyBars(ctx context.Context, metal model.Metal, days int) ([]model.OHLCV, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	q := url.Values{}
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))

	var resp metalpriceTimeframe
	if err := f.get(ctx, "/v1/timeframe", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("metalprice api error: %s", resp.Message)
	}

	bars := make([]model.OHLCV, 0, len(resp.Rates))
	for day, rates := range resp.Rates {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		prices, err := f.pricesFromRates(rates)
		if err != nil {
			continue
		}
		p := prices[metal]
		bars = append(bars, model.OHLCV{Time: t, Open: p, High: p, Low: p, Close: p})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
