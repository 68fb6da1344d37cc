package performance

import (
	"time"

	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
)

// HoldingsAsOf replays every transaction dated on or before t.
func HoldingsAsOf(txs []model.Transaction, t time.Time) model.Holdings {
	return calculator.ComputeHoldings(filterTx(txs, func(tx model.Transaction) bool { return !tx.Date.After(t) }))
}

func holdingsBefore(txs []model.Transaction, t time.Time) model.Holdings {
	return calculator.ComputeHoldings(filterTx(txs, func(tx model.Transaction) bool { return tx.Date.Before(t) }))
}

func filterTx(txs []model.Transaction, keep func(model.Transaction) bool) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return calculator.Chronological(out)
}

// netFlow is buys minus sells for transactions in (from, to].
func netFlow(txs []model.Transaction, from, to time.Time) float64 {
	flow := 0.0
	for _, tx := range txs {
		if !tx.Date.After(from) || tx.Date.After(to) {
			continue
		}
		if tx.Type == model.Buy {
			flow += tx.Amount
		} else {
			flow -= tx.Amount
		}
	}
	return flow
}

// pointsIn returns price points with start <= date < end.
func pointsIn(series []model.PricePoint, start, end time.Time) []model.PricePoint {
	var out []model.PricePoint
	for _, p := range series {
		if !p.Date.Before(start) && p.Date.Before(end) {
			out = append(out, p)
		}
	}
	return out
}

// pointBefore returns the latest price point dated strictly before t.
func pointBefore(series []model.PricePoint, t time.Time) (model.PricePoint, bool) {
	var best model.PricePoint
	found := false
	for _, p := range series {
		if p.Date.Before(t) && (!found || p.Date.After(best.Date)) {
			best, found = p, true
		}
	}
	return best, found
}

// history is the valued portfolio over one period together with flow-adjusted returns.
type history struct {
	values  []float64
	returns []float64
}

// periodHistory values the portfolio at every point in [start, end), anchored on the
// last point before start when one exists. Each return strips the net cash flow that
// arrived between the two observations.
func periodHistory(data *model.AppData, start, end time.Time) history {
	points := pointsIn(data.PriceData, start, end)
	if anchor, ok := pointBefore(data.PriceData, start); ok {
		points = append([]model.PricePoint{anchor}, points...)
	}

	var h history
	for i, p := range points {
		v := calculator.PortfolioValueAt(HoldingsAsOf(data.Transactions, p.Date), p)
		h.values = append(h.values, v)
		if i == 0 {
			continue
		}
		prev := h.values[i-1]
		if prev <= 0 {
			continue
		}
		flow := netFlow(data.Transactions, points[i-1].Date, p.Date)
		h.returns = append(h.returns, (v-prev-flow)/prev)
	}
	return h
}

// compound chains period returns into a total return in percent.
func compound(returns []float64) float64 {
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	return (growth - 1) * 100
}
