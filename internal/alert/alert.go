// Package alert derives monitoring alerts from market and portfolio state.
package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
	"MetalTracker/internal/strategy"
)

// PriceDropThreshold is the decline from the 30-day high, in percent, that raises a price_drop alert.
const PriceDropThreshold = 5.0

// PriceDropWindow is the trailing window for the price_drop high.
const PriceDropWindow = 30

// Evaluate inspects the latest price point and current holdings and returns fresh alerts dated now.
func Evaluate(data *model.AppData, now time.Time) []model.Alert {
	latest, ok := data.Latest()
	if !ok {
		return nil
	}
	cfg := data.Config
	var out []model.Alert
	add := func(typ model.AlertType, metal model.Metal, format string, args ...any) {
		out = append(out, model.Alert{
			ID:      uuid.NewString(),
			Date:    now,
			Type:    typ,
			Metal:   metal,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for _, m := range model.Metals {
		rsi := latest.RSI(m)
		switch {
		case rsi > cfg.RSIThresholds.Pause:
			add(model.AlertRSIHigh, m, "%s RSI %.1f above %.0f, buying paused", title(m), rsi, cfg.RSIThresholds.Pause)
		case rsi > 0 && rsi < cfg.RSIThresholds.Normal:
			add(model.AlertRSILow, m, "%s RSI %.1f below %.0f, buying accelerated", title(m), rsi, cfg.RSIThresholds.Normal)
		}

		prices := model.Prices(data.PriceData, m)
		if high, _, err := calculator.TrailingRange(prices, PriceDropWindow); err == nil {
			if drop := calculator.DrawdownFromHigh(latest.Price(m), high); drop >= PriceDropThreshold {
				add(model.AlertPriceDrop, m, "%s is %.1f%% below its %d-day high", title(m), drop, PriceDropWindow)
			}
		}
	}

	gsr := calculator.GoldSilverRatio(latest.GoldPrice, latest.SilverPrice)
	if nudge := strategy.GSRSignal(gsr, cfg.GSRParameters); nudge.Needed {
		add(model.AlertGSRExtreme, "", "Gold/silver ratio %.1f favours %s over %s", gsr, nudge.ToMetal, nudge.FromMetal)
	}

	holdings := calculator.HoldingsByDate(data.Transactions)
	for _, m := range model.Metals {
		if holdings[m].Quantity <= 0 {
			continue
		}
		stop := strategy.StopLossFromSeries(m, holdings, data.PriceData, cfg)
		if stop.Status != model.StopSafe {
			add(model.AlertStopLossWarning, m, "%s is %.1f%% from its stop loss (%s)", title(m), stop.DistanceFromStop, stop.Status)
		}
	}

	if calculator.PortfolioValueAt(holdings, latest) > 0 {
		rec := strategy.Rebalance(holdings, latest.GoldPrice, latest.SilverPrice, latest.PlatinumPrice, cfg)
		if rec.Needed {
			add(model.AlertRebalanceDue, "", "Rebalance: sell %.2f of %s, buy %s", rec.Sell.Amount, rec.Sell.Metal, rec.Buy.Metal)
		}
	}

	if !cfg.AccumulationEndDate.IsZero() && !now.Before(cfg.AccumulationEndDate) {
		add(model.AlertReviewDue, "", "Accumulation period ended %s, review the strategy", cfg.AccumulationEndDate.Format("2006-01-02"))
	}
	return out
}

// OrderFilled builds the alert recorded when a limit order fills.
func OrderFilled(o model.LimitOrder, price float64, now time.Time) model.Alert {
	return model.Alert{
		ID:      uuid.NewString(),
		Date:    now,
		Type:    model.AlertOrderFilled,
		Metal:   o.Metal,
		Message: fmt.Sprintf("%s tier %d filled: %.4fg at %.2f", title(o.Metal), o.Tier, o.Quantity, price),
	}
}

// Dedupe drops fresh alerts already represented in existing: same type and metal
// either still unread or raised on the same calendar day.
func Dedupe(existing, fresh []model.Alert) []model.Alert {
	type key struct {
		typ   model.AlertType
		metal model.Metal
	}
	type dayKey struct {
		key
		day string
	}
	unread := map[key]bool{}
	seen := map[dayKey]bool{}
	for _, a := range existing {
		k := key{a.Type, a.Metal}
		if !a.Read {
			unread[k] = true
		}
		seen[dayKey{k, a.Date.Format("2006-01-02")}] = true
	}

	var out []model.Alert
	for _, a := range fresh {
		k := key{a.Type, a.Metal}
		if unread[k] || seen[dayKey{k, a.Date.Format("2006-01-02")}] {
			continue
		}
		unread[k] = true
		out = append(out, a)
	}
	return out
}

func title(m model.Metal) string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}
