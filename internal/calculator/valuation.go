package calculator

import "MetalTracker/internal/model"

// PortfolioValue is the market value of all holdings at the given per-gram prices.
func PortfolioValue(h model.Holdings, goldPrice, silverPrice, platinumPrice float64) float64 {
	return h[model.Gold].Quantity*goldPrice +
		h[model.Silver].Quantity*silverPrice +
		h[model.Platinum].Quantity*platinumPrice
}

// PortfolioValueAt values the holdings at one price observation.
func PortfolioValueAt(h model.Holdings, p model.PricePoint) float64 {
	return PortfolioValue(h, p.GoldPrice, p.SilverPrice, p.PlatinumPrice)
}

// Allocation returns each metal's share of portfolio value in percent.
// All shares are zero when the portfolio has no value.
func Allocation(h model.Holdings, goldPrice, silverPrice, platinumPrice float64) model.PerMetal {
	total := PortfolioValue(h, goldPrice, silverPrice, platinumPrice)
	if total == 0 {
		return model.PerMetal{model.Gold: 0, model.Silver: 0, model.Platinum: 0}
	}
	return model.PerMetal{
		model.Gold:     h[model.Gold].Quantity * goldPrice / total * 100,
		model.Silver:   h[model.Silver].Quantity * silverPrice / total * 100,
		model.Platinum: h[model.Platinum].Quantity * platinumPrice / total * 100,
	}
}

// GoldSilverRatio returns gold/silver, or 0 when the silver price is zero.
func GoldSilverRatio(goldPrice, silverPrice float64) float64 {
	if silverPrice == 0 {
		return 0
	}
	return goldPrice / silverPrice
}

// ValueSeries values fixed holdings at every point of a price series.
func ValueSeries(h model.Holdings, series []model.PricePoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = PortfolioValueAt(h, p)
	}
	return values
}
