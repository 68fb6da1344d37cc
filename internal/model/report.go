package model

import "time"

// Grade is the letter score of a monthly report.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// PortfolioSnapshot is the valued state of the portfolio on one day.
type PortfolioSnapshot struct {
	Date             time.Time `json:"date"`
	TotalValue       float64   `json:"totalValue"`
	TotalInvested    float64   `json:"totalInvested"`
	GoldHoldings     float64   `json:"goldHoldings"`
	SilverHoldings   float64   `json:"silverHoldings"`
	PlatinumHoldings float64   `json:"platinumHoldings"`
	GoldValue        float64   `json:"goldValue"`
	SilverValue      float64   `json:"silverValue"`
	PlatinumValue    float64   `json:"platinumValue"`
}

// MonthlyReport summarises one month of activity.
type MonthlyReport struct {
	Month               string  `json:"month"` // YYYY-MM
	Invested            float64 `json:"invested"`
	PortfolioValueStart float64 `json:"portfolioValueStart"`
	PortfolioValueEnd   float64 `json:"portfolioValueEnd"`
	MonthlyReturn       float64 `json:"monthlyReturn"`
	FillRate            float64 `json:"fillRate"`
	AvgCostVsMarket     float64 `json:"avgCostVsMarket"`
	OrdersPlaced        int     `json:"ordersPlaced"`
	OrdersFilled        int     `json:"ordersFilled"`
	Score               int     `json:"score"`
	Notes               string  `json:"notes"`
	Grade               Grade   `json:"grade"`
}

// QuarterlyReport holds risk statistics for one quarter.
type QuarterlyReport struct {
	Quarter      string  `json:"quarter"` // e.g. 2024-Q1
	SharpeRatio  float64 `json:"sharpeRatio"`
	SortinoRatio float64 `json:"sortinoRatio"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	Volatility   float64 `json:"volatility"`
	TotalReturn  float64 `json:"totalReturn"`
}

// AnnualReport holds yearly performance statistics.
type AnnualReport struct {
	Year          string  `json:"year"`
	TotalReturn   float64 `json:"totalReturn"`
	SharpeRatio   float64 `json:"sharpeRatio"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	Volatility    float64 `json:"volatility"`
	TotalInvested float64 `json:"totalInvested"`
	EndingValue   float64 `json:"endingValue"`
	BestMonth     string  `json:"bestMonth"`
	WorstMonth    string  `json:"worstMonth"`
	Notes         string  `json:"notes"`
}
