package calculator

import (
	"sort"

	"MetalTracker/internal/model"
)

// ComputeHoldings folds a transaction history into per-metal positions using
// average-cost accounting. Transactions are applied in slice order.
//
// A sell larger than the current position liquidates it to zero rather than
// producing a negative quantity; a sell against an empty position is ignored.
func ComputeHoldings(txs []model.Transaction) model.Holdings {
	holdings := model.EmptyHoldings()

	for _, tx := range txs {
		h, ok := holdings[tx.Metal]
		if !ok {
			continue
		}

		switch tx.Type {
		case model.Buy:
			h.TotalCost += tx.Amount
			h.Quantity += tx.Quantity
		case model.Sell:
			if h.Quantity <= 0 {
				break
			}
			sellRatio := tx.Quantity / h.Quantity
			if sellRatio >= 1 {
				h.TotalCost = 0
				h.Quantity = 0
				break
			}
			h.TotalCost -= h.TotalCost * sellRatio
			h.Quantity -= tx.Quantity
		}

		if h.Quantity > 0 {
			h.AverageCost = h.TotalCost / h.Quantity
		} else {
			h.AverageCost = 0
		}
		holdings[tx.Metal] = h
	}

	return holdings
}

// Chronological returns a copy of txs ordered by date. Same-day trades keep their relative order.
func Chronological(txs []model.Transaction) []model.Transaction {
	out := append([]model.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// HoldingsByDate replays txs in date order regardless of how they are stored.
func HoldingsByDate(txs []model.Transaction) model.Holdings {
	return ComputeHoldings(Chronological(txs))
}

// TotalInvested returns net capital put in: buy amounts minus sell proceeds.
func TotalInvested(txs []model.Transaction) float64 {
	sum := 0.0
	for _, tx := range txs {
		if tx.Type == model.Buy {
			sum += tx.Amount
		} else {
			sum -= tx.Amount
		}
	}
	return sum
}
