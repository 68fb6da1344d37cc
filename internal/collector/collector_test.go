package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetalTracker/internal/model"
)

func TestPerGram(t *testing.T) {
	assert.InDelta(t, 2000*7.2/31.1035, PerGram(2000, 7.2), 1e-9)
	assert.InDelta(t, 1, PerGram(TroyOunceGrams, 1), 1e-12)
}

func TestCollect_WithBars(t *testing.T) {
	rising := make([]model.OHLCV, 30)
	for i := range rising {
		rising[i] = model.OHLCV{Close: 400 + float64(i)}
	}
	f := &MockFetcher{
		Prices:    model.PerMetal{model.Gold: 500.123, model.Silver: 6.2, model.Platinum: 210},
		DailyData: map[model.Metal][]model.OHLCV{model.Gold: rising},
	}
	p, err := NewCollector(f, zerolog.Nop()).Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 500.12, p.GoldPrice)
	assert.Equal(t, 6.2, p.SilverPrice)
	assert.Equal(t, 100.0, p.GoldRSI)
	assert.Greater(t, p.SilverRSI, 0.0)
	assert.Less(t, p.SilverRSI, 100.0)
	assert.Equal(t, 0, p.Date.Hour())
}

func TestCollect_FallsBackToStoredSeries(t *testing.T) {
	f := &MockFetcher{Prices: model.PerMetal{model.Gold: 400, model.Silver: 5, model.Platinum: 150}, NoHistory: true}
	var stored []model.PricePoint
	for i := 0; i < 20; i++ {
		stored = append(stored, model.PricePoint{GoldPrice: 500 - float64(i), SilverPrice: 6, PlatinumPrice: 200})
	}
	p, err := NewCollector(f, zerolog.Nop()).Collect(context.Background(), stored)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.GoldRSI)

	short, err := NewCollector(f, zerolog.Nop()).Collect(context.Background(), stored[:3])
	require.NoError(t, err)
	assert.Equal(t, 50.0, short.GoldRSI)
}

func TestCollect_Errors(t *testing.T) {
	_, err := NewCollector(&MockFetcher{Err: errors.New("down")}, zerolog.Nop()).Collect(context.Background(), nil)
	assert.ErrorContains(t, err, "down")

	_, err = NewCollector(&MockFetcher{Prices: model.PerMetal{model.Gold: 500}}, zerolog.Nop()).Collect(context.Background(), nil)
	assert.ErrorContains(t, err, "no silver price")
}

func yahooBody(closes ...float64) string {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	ts := make([]string, len(closes))
	cs := make([]string, len(closes))
	for i, c := range closes {
		ts[i] = fmt.Sprint(start + int64(i)*86400)
		cs[i] = fmt.Sprint(c)
	}
	series := "[" + strings.Join(cs, ",") + "]"
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"open":%s,"high":%s,"low":%s,"close":%s,"volume":%s}]}}],"error":null}}`,
		strings.Join(ts, ","), series, series, series, series, series)
}

func TestYahooFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "GC=F"):
			fmt.Fprint(w, yahooBody(2300, 2311.07))
		case strings.Contains(r.URL.Path, "SI=F"):
			fmt.Fprint(w, yahooBody(25, 26))
		case strings.Contains(r.URL.Path, "PL=F"):
			fmt.Fprint(w, yahooBody(900, 950))
		case strings.Contains(r.URL.Path, "CNY=X"):
			fmt.Fprint(w, yahooBody(7.1, 7.2))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewYahooFetcher("CNY=X", "")
	f.BaseURL = srv.URL

	q, err := f.FetchQuote(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2311.07*7.2/TroyOunceGrams, q.Prices[model.Gold], 1e-9)
	assert.InDelta(t, 26*7.2/TroyOunceGrams, q.Prices[model.Silver], 1e-9)
	assert.Equal(t, "yahoo", q.Source)

	bars, err := f.FetchDailyBars(context.Background(), model.Platinum, 30)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 900*7.1/TroyOunceGrams, bars[0].Close, 1e-9)
	assert.InDelta(t, 950*7.2/TroyOunceGrams, bars[1].Close, 1e-9)
}

func TestYahooFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", "")
	f.BaseURL = srv.URL
	_, err := f.FetchQuote(context.Background())
	assert.ErrorContains(t, err, "status 429")
}

func TestMetalpriceFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "XAU", r.URL.Query().Get("base"))
		switch r.URL.Path {
		case "/v1/latest":
			fmt.Fprint(w, `{"success":true,"timestamp":1709251200,"rates":{"CNY":16000,"XAG":80,"XPT":2.5}}`)
		case "/v1/timeframe":
			fmt.Fprint(w, `{"success":true,"rates":{"2024-03-02":{"CNY":16100,"XAG":81,"XPT":2.5},"2024-03-01":{"CNY":16000,"XAG":80,"XPT":2.5}}}`)
		}
	}))
	defer srv.Close()

	f := NewMetalpriceFetcher("secret", "", "")
	f.BaseURL = srv.URL

	q, err := f.FetchQuote(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 16000/TroyOunceGrams, q.Prices[model.Gold], 1e-9)
	assert.InDelta(t, 200/TroyOunceGrams, q.Prices[model.Silver], 1e-9)
	assert.InDelta(t, 6400/TroyOunceGrams, q.Prices[model.Platinum], 1e-9)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), q.Time)

	bars, err := f.FetchDailyBars(context.Background(), model.Gold, 5)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.InDelta(t, 16100/TroyOunceGrams, bars[1].Close, 1e-9)
}

func TestMetalpriceFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":{"info":"invalid key"}}`)
	}))
	defer srv.Close()

	f := NewMetalpriceFetcher("bad", "CNY", "")
	f.BaseURL = srv.URL
	_, err := f.FetchQuote(context.Background())
	assert.ErrorContains(t, err, "invalid key")
}
