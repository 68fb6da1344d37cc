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

// DefaultYahooSymbols maps metals to COMEX/NYMEX front-month futures quoted in USD per troy ounce.
var DefaultYahooSymbols = map[model.Metal]string{
	model.Gold:     "GC=F",
	model.Silver:   "SI=F",
	model.Platinum: "PL=F",
}

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[model.Metal]string
	FXSymbol  string // e.g. CNY=X; empty keeps USD
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(fxSymbol, proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL:   "https://query1.finance.yahoo.com",
		Client:    newHTTPClient(proxyURL),
		SymbolMap: DefaultYahooSymbols,
		FXSymbol:  fxSymbol,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(vals []interface{}, i int) float64 {
	if i >= len(vals) {
		return 0
	}
	return toFloat(vals[i])
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(symbol), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func dailyRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

// fxByDay returns the FX close per calendar day plus the latest rate. Without an FX symbol the rate is 1.
func (f *YahooFetcher) fxByDay(ctx context.Context, rng string) (map[string]float64, float64, error) {
	if f.FXSymbol == "" {
		return nil, 1, nil
	}
	bars, err := f.fetchChart(ctx, f.FXSymbol, "1d", rng)
	if err != nil {
		return nil, 0, fmt.Errorf("fx %s: %w", f.FXSymbol, err)
	}
	if len(bars) == 0 {
		return nil, 0, fmt.Errorf("fx %s: no data", f.FXSymbol)
	}
	byDay := make(map[string]float64, len(bars))
	for _, b := range bars {
		byDay[b.Time.Format("2006-01-02")] = b.Close
	}
	return byDay, bars[len(bars)-1].Close, nil
}

// FetchDailyBars returns per-gram daily bars in the FX currency.
// Days without an FX observation use the latest rate.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, metal model.Metal, days int) ([]model.OHLCV, error) {
	symbol, ok := f.SymbolMap[metal]
	if !ok {
		return nil, fmt.Errorf("yahoo: no symbol for %s", metal)
	}
	rng := dailyRange(days)
	bars, err := f.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}
	fxDays, fxLatest, err := f.fxByDay(ctx, rng)
	if err != nil {
		return nil, err
	}
	for i := range bars {
		fx := fxLatest
		if v, ok := fxDays[bars[i].Time.Format("2006-01-02")]; ok {
			fx = v
		}
		bars[i].Open = PerGram(bars[i].Open, fx)
		bars[i].High = PerGram(bars[i].High, fx)
		bars[i].Low = PerGram(bars[i].Low, fx)
		bars[i].Close = PerGram(bars[i].Close, fx)
	}
	// Trim to requested count
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// FetchQuote returns the latest per-gram price of every metal.
func (f *YahooFetcher) FetchQuote(ctx context.Context) (Quote, error) {
	_, fx, err := f.fxByDay(ctx, "5d")
	if err != nil {
		return Quote{}, err
	}
	q := Quote{Prices: make(model.PerMetal, len(model.Metals)), Source: f.Name()}
	for _, m := range model.Metals {
		symbol, ok := f.SymbolMap[m]
		if !ok {
			return Quote{}, fmt.Errorf("yahoo: no symbol for %s", m)
		}
		bars, err := f.fetchChart(ctx, symbol, "1d", "5d")
		if err != nil {
			return Quote{}, err
		}
		last := bars[len(bars)-1]
		q.Prices[m] = PerGram(last.Close, fx)
		if last.Time.After(q.Time) {
			q.Time = last.Time
		}
	}
	return q, nil
}
