package model

import "slices"

// AppData is the complete persisted state of one user's tracker.
type AppData struct {
	Version            string              `json:"version"`
	Config             StrategyConfig      `json:"config"`
	PriceData          []PricePoint        `json:"priceData"`
	Transactions       []Transaction       `json:"transactions"`
	LimitOrders        []LimitOrder        `json:"limitOrders"`
	PortfolioSnapshots []PortfolioSnapshot `json:"portfolioSnapshots"`
	MonthlyReports     []MonthlyReport     `json:"monthlyReports"`
	QuarterlyReports   []QuarterlyReport   `json:"quarterlyReports"`
	AnnualReports      []AnnualReport      `json:"annualReports"`
	Alerts             []Alert             `json:"alerts"`
}

// DataVersion is the schema version written by this build.
const DataVersion = "1.0"

// Latest returns the most recent price point, or false when the series is empty.
func (d *AppData) Latest() (PricePoint, bool) {
	if len(d.PriceData) == 0 {
		return PricePoint{}, false
	}
	return d.PriceData[len(d.PriceData)-1], true
}

// Clone returns a deep copy of the data set.
func (d *AppData) Clone() *AppData {
	out := &AppData{
		Version:            d.Version,
		Config:             d.Config.Clone(),
		PriceData:          slices.Clone(d.PriceData),
		Transactions:       slices.Clone(d.Transactions),
		LimitOrders:        slices.Clone(d.LimitOrders),
		PortfolioSnapshots: slices.Clone(d.PortfolioSnapshots),
		MonthlyReports:     slices.Clone(d.MonthlyReports),
		QuarterlyReports:   slices.Clone(d.QuarterlyReports),
		AnnualReports:      slices.Clone(d.AnnualReports),
		Alerts:             slices.Clone(d.Alerts),
	}
	return out
}
