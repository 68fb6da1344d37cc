// Package storage persists the tracker's AppData and handles import/export.
package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"MetalTracker/internal/model"
)

// ErrUnsupportedVersion is returned when imported data carries an unknown schema version.
var ErrUnsupportedVersion = errors.New("unsupported data version")

// Repository loads and saves the complete data set.
type Repository interface {
	Load(ctx context.Context) (*model.AppData, error)
	Save(ctx context.Context, data *model.AppData) error
	Reset(ctx context.Context) error
	Close() error
}

// NewAppData returns an empty data set with the default strategy starting on now.
func NewAppData(now time.Time) *model.AppData {
	return &model.AppData{
		Version:            model.DataVersion,
		Config:             model.DefaultStrategyConfig(now),
		PriceData:          []model.PricePoint{},
		Transactions:       []model.Transaction{},
		LimitOrders:        []model.LimitOrder{},
		PortfolioSnapshots: []model.PortfolioSnapshot{},
		MonthlyReports:     []model.MonthlyReport{},
		QuarterlyReports:   []model.QuarterlyReport{},
		AnnualReports:      []model.AnnualReport{},
		Alerts:             []model.Alert{},
	}
}

// ErrUserExists is returned when registering a username that is already taken.
var ErrUserExists = errors.New("user already exists")

// normalize fills collections left nil, assigns missing IDs and stamps the current version.
func normalize(d *model.AppData) {
	if d.Version == "" {
		d.Version = model.DataVersion
	}
	if d.PriceData == nil {
		d.PriceData = []model.PricePoint{}
	}
	if d.Transactions == nil {
		d.Transactions = []model.Transaction{}
	}
	if d.LimitOrders == nil {
		d.LimitOrders = []model.LimitOrder{}
	}
	if d.PortfolioSnapshots == nil {
		d.PortfolioSnapshots = []model.PortfolioSnapshot{}
	}
	if d.MonthlyReports == nil {
		d.MonthlyReports = []model.MonthlyReport{}
	}
	if d.QuarterlyReports == nil {
		d.QuarterlyReports = []model.QuarterlyReport{}
	}
	if d.AnnualReports == nil {
		d.AnnualReports = []model.AnnualReport{}
	}
	if d.Alerts == nil {
		d.Alerts = []model.Alert{}
	}
	for i := range d.PriceData {
		if d.PriceData[i].ID == "" {
			d.PriceData[i].ID = uuid.NewString()
		}
	}
	for i := range d.Transactions {
		if d.Transactions[i].ID == "" {
			d.Transactions[i].ID = uuid.NewString()
		}
	}
	for i := range d.LimitOrders {
		if d.LimitOrders[i].ID == "" {
			d.LimitOrders[i].ID = uuid.NewString()
		}
	}
	for i := range d.Alerts {
		if d.Alerts[i].ID == "" {
			d.Alerts[i].ID = uuid.NewString()
		}
	}
	sort.SliceStable(d.PriceData, func(i, j int) bool { return d.PriceData[i].Date.Before(d.PriceData[j].Date) })
	sort.SliceStable(d.Transactions, func(i, j int) bool { return d.Transactions[i].Date.Before(d.Transactions[j].Date) })
}
