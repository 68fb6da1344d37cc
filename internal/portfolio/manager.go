// Package portfolio owns the tracker's mutable state and persists every change.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"MetalTracker/internal/alert"
	"MetalTracker/internal/calculator"
	"MetalTracker/internal/model"
	"MetalTracker/internal/performance"
	"MetalTracker/internal/storage"
	"MetalTracker/internal/strategy"
)

// quantityEpsilon absorbs float noise when checking sells against holdings.
const quantityEpsilon = 1e-9

// Manager serializes all mutations of the data set. Each mutation is applied to a
// copy, saved, and only then made visible.
type Manager struct {
	mu   sync.Mutex
	data *model.AppData
	repo storage.Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewManager loads the data set from repo.
func NewManager(ctx context.Context, repo storage.Repository, log zerolog.Logger) (*Manager, error) {
	data, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	m := &Manager{
		data: data,
		repo: repo,
		log:  log.With().Str("component", "portfolio").Logger(),
		now:  time.Now,
	}
	m.log.Info().
		Int("transactions", len(data.Transactions)).
		Int("prices", len(data.PriceData)).
		Int("orders", len(data.LimitOrders)).
		Msg("portfolio loaded")
	return m, nil
}

// Snapshot returns a copy of the current data set.
func (m *Manager) Snapshot() *model.AppData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone()
}

// update runs fn on a copy of the data and commits it when fn and the save both succeed.
func (m *Manager) update(ctx context.Context, fn func(d *model.AppData) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.data.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := m.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save data: %w", err)
	}
	m.data = next
	return nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validatePrice(p model.PricePoint) error {
	for _, metal := range model.Metals {
		if v := p.Price(metal); v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s price %v", ErrInvalidPrice, metal, v)
		}
		if r := p.RSI(metal); r < 0 || r > 100 || math.IsNaN(r) {
			return fmt.Errorf("%w: %s RSI %v", ErrInvalidPrice, metal, r)
		}
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidPrice)
	}
	return nil
}

func sortPrices(pts []model.PricePoint) {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
}

// sortTransactions orders txs by date. Same-day trades keep their insertion order.
func sortTransactions(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
}

// AddPrice validates and stores a price point, replacing any point on the same day.
func (m *Manager) AddPrice(ctx context.Context, p model.PricePoint) (model.PricePoint, error) {
	if err := validatePrice(p); err != nil {
		return p, err
	}
	p.Date = dayOf(p.Date)

	err := m.update(ctx, func(d *model.AppData) error {
		for i, existing := range d.PriceData {
			if existing.Date.Equal(p.Date) {
				p.ID = existing.ID
				d.PriceData[i] = p
				return nil
			}
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		d.PriceData = append(d.PriceData, p)
		sortPrices(d.PriceData)
		return nil
	})
	if err != nil {
		return p, err
	}
	m.log.Debug().Time("date", p.Date).Float64("gold", p.GoldPrice).Msg("price recorded")
	return p, nil
}

// DeletePrice removes a price point by ID.
func (m *Manager) DeletePrice(ctx context.Context, id string) error {
	return m.update(ctx, func(d *model.AppData) error {
		for i, p := range d.PriceData {
			if p.ID == id {
				d.PriceData = append(d.PriceData[:i], d.PriceData[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("price %s: %w", id, ErrNotFound)
	})
}

func validateTransaction(tx model.Transaction) error {
	switch {
	case !tx.Metal.Valid():
		return fmt.Errorf("%w: unknown metal %q", ErrInvalidTransaction, tx.Metal)
	case tx.Type != model.Buy && tx.Type != model.Sell:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Type)
	case !(tx.Quantity > 0) || math.IsInf(tx.Quantity, 0):
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidTransaction)
	case !(tx.Price > 0) || math.IsInf(tx.Price, 0):
		return fmt.Errorf("%w: price must be positive", ErrInvalidTransaction)
	case tx.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}
	return nil
}

// checkOversell replays txs in date order and fails if any sell exceeds the running position.
func checkOversell(txs []model.Transaction) error {
	ordered := calculator.Chronological(txs)
	position := model.PerMetal{}
	for _, tx := range ordered {
		if tx.Type == model.Buy {
			position[tx.Metal] += tx.Quantity
			continue
		}
		if tx.Quantity > position[tx.Metal]+quantityEpsilon {
			return fmt.Errorf("%w: %s sell of %.4fg on %s with %.4fg held",
				ErrOversell, tx.Metal, tx.Quantity, tx.Date.Format("2006-01-02"), position[tx.Metal])
		}
		position[tx.Metal] -= tx.Quantity
	}
	return nil
}

// AddTransaction validates and records a trade. Amount is always quantity × price.
func (m *Manager) AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	if err := validateTransaction(tx); err != nil {
		return tx, err
	}
	tx.Date = dayOf(tx.Date)
	tx.Amount = tx.Quantity * tx.Price
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	err := m.update(ctx, func(d *model.AppData) error {
		enrichTransaction(&tx, d)
		next := append(d.Transactions, tx)
		if err := checkOversell(next); err != nil {
			return err
		}
		sortTransactions(next)
		d.Transactions = next
		return nil
	})
	if err != nil {
		return tx, err
	}
	m.log.Info().Str("metal", string(tx.Metal)).Str("type", string(tx.Type)).
		Float64("quantity", tx.Quantity).Float64("price", tx.Price).Msg("transaction recorded")
	return tx, nil
}

// enrichTransaction fills RSI and GSR from the latest price point when the caller left them empty.
func enrichTransaction(tx *model.Transaction, d *model.AppData) {
	latest, ok := d.Latest()
	if !ok {
		return
	}
	if tx.RSI == 0 {
		tx.RSI = latest.RSI(tx.Metal)
	}
	if tx.GSR == 0 {
		tx.GSR = calculator.GoldSilverRatio(latest.GoldPrice, latest.SilverPrice)
	}
}

// UpdateTransaction replaces the transaction with the same ID.
func (m *Manager) UpdateTransaction(ctx context.Context, tx model.Transaction) error {
	if err := validateTransaction(tx); err != nil {
		return err
	}
	tx.Date = dayOf(tx.Date)
	tx.Amount = tx.Quantity * tx.Price

	return m.update(ctx, func(d *model.AppData) error {
		for i, existing := range d.Transactions {
			if existing.ID != tx.ID {
				continue
			}
			d.Transactions[i] = tx
			if err := checkOversell(d.Transactions); err != nil {
				return err
			}
			sortTransactions(d.Transactions)
			return nil
		}
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
	})
}

// DeleteTransaction removes a trade. Deleting a buy that later sells depend on is rejected.
func (m *Manager) DeleteTransaction(ctx context.Context, id string) error {
	return m.update(ctx, func(d *model.AppData) error {
		for i, tx := range d.Transactions {
			if tx.ID != id {
				continue
			}
			next := append(append([]model.Transaction(nil), d.Transactions[:i]...), d.Transactions[i+1:]...)
			if err := checkOversell(next); err != nil {
				return err
			}
			d.Transactions = next
			return nil
		}
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	})
}

// PlaceOrders runs the monthly planner for date and stores the resulting pending orders.
func (m *Manager) PlaceOrders(ctx context.Context, date time.Time) (model.MonthlyInvestment, []model.LimitOrder, error) {
	var plan model.MonthlyInvestment
	var orders []model.LimitOrder
	err := m.update(ctx, func(d *model.AppData) error {
		latest, ok := d.Latest()
		if !ok {
			return ErrNoPriceData
		}
		holdings := calculator.HoldingsByDate(d.Transactions)
		plan = strategy.PlanMonthlyInvestment(date, d.Config, holdings, latest)
		orders = strategy.PlanLimitOrders(plan, latest, d.Config, dayOf(date))
		d.LimitOrders = append(d.LimitOrders, orders...)
		return nil
	})
	if err != nil {
		return plan, nil, err
	}
	m.log.Info().Str("month", plan.Month).Float64("required", plan.RequiredInvestment).
		Int("orders", len(orders)).Msg("limit orders placed")
	return plan, orders, nil
}

// FillOrder marks a pending order filled at price (its target price when price <= 0),
// records the matching buy transaction and raises an order_filled alert.
func (m *Manager) FillOrder(ctx context.Context, id string, price float64, date time.Time) (model.Transaction, error) {
	var tx model.Transaction
	err := m.update(ctx, func(d *model.AppData) error {
		idx := -1
		for i, o := range d.LimitOrders {
			if o.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		o := d.LimitOrders[idx]
		if o.Status != model.OrderPending {
			return fmt.Errorf("order %s is %s: %w", id, o.Status, ErrOrderClosed)
		}
		if price <= 0 {
			price = o.TargetPrice
		}
		filledAt, filledPrice := dayOf(date), price
		o.Status = model.OrderFilled
		o.FilledDate = &filledAt
		o.FilledPrice = &filledPrice
		d.LimitOrders[idx] = o

		tx = model.NewTransaction(filledAt, o.Metal, model.Buy, o.Quantity, price)
		tx.ID = uuid.NewString()
		tx.Platform = "limit_order"
		tx.Notes = fmt.Sprintf("tier %d order %s", o.Tier, o.ID)
		if err := validateTransaction(tx); err != nil {
			return err
		}
		enrichTransaction(&tx, d)
		d.Transactions = append(d.Transactions, tx)
		sortTransactions(d.Transactions)
		d.Alerts = append(d.Alerts, alert.OrderFilled(o, price, m.now()))
		return nil
	})
	if err != nil {
		return tx, err
	}
	m.log.Info().Str("order", id).Str("metal", string(tx.Metal)).Float64("price", price).Msg("order filled")
	return tx, nil
}

// CancelOrder moves a pending order to cancelled.
func (m *Manager) CancelOrder(ctx context.Context, id string) error {
	return m.update(ctx, func(d *model.AppData) error {
		for i, o := range d.LimitOrders {
			if o.ID != id {
				continue
			}
			if o.Status != model.OrderPending {
				return fmt.Errorf("order %s is %s: %w", id, o.Status, ErrOrderClosed)
			}
			d.LimitOrders[i].Status = model.OrderCancelled
			return nil
		}
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	})
}

// AddAlerts stores the alerts not already represented and returns them.
func (m *Manager) AddAlerts(ctx context.Context, fresh []model.Alert) ([]model.Alert, error) {
	var added []model.Alert
	err := m.update(ctx, func(d *model.AppData) error {
		added = alert.Dedupe(d.Alerts, fresh)
		d.Alerts = append(d.Alerts, added...)
		return nil
	})
	return added, err
}

// EvaluateAlerts derives alerts from the current state and stores the new ones.
func (m *Manager) EvaluateAlerts(ctx context.Context) ([]model.Alert, error) {
	fresh := alert.Evaluate(m.Snapshot(), m.now())
	if len(fresh) == 0 {
		return nil, nil
	}
	added, err := m.AddAlerts(ctx, fresh)
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		m.log.Info().Int("count", len(added)).Msg("alerts raised")
	}
	return added, nil
}

// MarkAlertRead flags one alert as read.
func (m *Manager) MarkAlertRead(ctx context.Context, id string) error {
	return m.update(ctx, func(d *model.AppData) error {
		for i := range d.Alerts {
			if d.Alerts[i].ID == id {
				d.Alerts[i].Read = true
				return nil
			}
		}
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	})
}

// DeleteAlert removes one alert.
func (m *Manager) DeleteAlert(ctx context.Context, id string) error {
	return m.update(ctx, func(d *model.AppData) error {
		for i, a := range d.Alerts {
			if a.ID == id {
				d.Alerts = append(d.Alerts[:i], d.Alerts[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	})
}

// UpdateConfig validates and replaces the strategy configuration.
func (m *Manager) UpdateConfig(ctx context.Context, cfg model.StrategyConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return m.update(ctx, func(d *model.AppData) error {
		d.Config = cfg.Clone()
		return nil
	})
}

// RecordSnapshot values the portfolio at the latest price and stores it, one per day.
func (m *Manager) RecordSnapshot(ctx context.Context) (model.PortfolioSnapshot, error) {
	var snap model.PortfolioSnapshot
	err := m.update(ctx, func(d *model.AppData) error {
		latest, ok := d.Latest()
		if !ok {
			return ErrNoPriceData
		}
		snap = performance.Snapshot(latest.Date, calculator.HoldingsByDate(d.Transactions), latest, calculator.TotalInvested(d.Transactions))
		for i, s := range d.PortfolioSnapshots {
			if s.Date.Equal(snap.Date) {
				d.PortfolioSnapshots[i] = snap
				return nil
			}
		}
		d.PortfolioSnapshots = append(d.PortfolioSnapshots, snap)
		return nil
	})
	return snap, err
}

// RecordMonthlyReport builds and stores the report for the month containing t.
func (m *Manager) RecordMonthlyReport(ctx context.Context, t time.Time) (model.MonthlyReport, error) {
	var report model.MonthlyReport
	err := m.update(ctx, func(d *model.AppData) error {
		report = performance.BuildMonthlyReport(d, t)
		for i, r := range d.MonthlyReports {
			if r.Month == report.Month {
				report.Notes = r.Notes
				d.MonthlyReports[i] = report
				return nil
			}
		}
		d.MonthlyReports = append(d.MonthlyReports, report)
		return nil
	})
	return report, err
}

// RecordQuarterlyReport builds and stores the report for the quarter containing t.
func (m *Manager) RecordQuarterlyReport(ctx context.Context, t time.Time) (model.QuarterlyReport, error) {
	var report model.QuarterlyReport
	err := m.update(ctx, func(d *model.AppData) error {
		report = performance.BuildQuarterlyReport(d, t)
		for i, r := range d.QuarterlyReports {
			if r.Quarter == report.Quarter {
				d.QuarterlyReports[i] = report
				return nil
			}
		}
		d.QuarterlyReports = append(d.QuarterlyReports, report)
		return nil
	})
	return report, err
}

// RecordAnnualReport builds and stores the report for year.
func (m *Manager) RecordAnnualReport(ctx context.Context, year int) (model.AnnualReport, error) {
	var report model.AnnualReport
	err := m.update(ctx, func(d *model.AppData) error {
		report = performance.BuildAnnualReport(d, year)
		for i, r := range d.AnnualReports {
			if r.Year == report.Year {
				report.Notes = r.Notes
				d.AnnualReports[i] = report
				return nil
			}
		}
		d.AnnualReports = append(d.AnnualReports, report)
		return nil
	})
	return report, err
}

// Replace swaps in an imported data set. Every trade, price point and the config
// pass the same checks as the single-record mutations before anything is saved.
func (m *Manager) Replace(ctx context.Context, data *model.AppData) error {
	next, err := sanitizeImport(data)
	if err != nil {
		return err
	}
	err = m.update(ctx, func(d *model.AppData) error {
		*d = *next
		return nil
	})
	if err == nil {
		m.log.Info().Int("transactions", len(next.Transactions)).Int("prices", len(next.PriceData)).Msg("data imported")
	}
	return err
}

// sanitizeImport returns a validated copy of data with normalized dates, recomputed
// amounts and both histories in date order.
func sanitizeImport(data *model.AppData) (*model.AppData, error) {
	next := data.Clone()
	for i := range next.Transactions {
		tx := &next.Transactions[i]
		if err := validateTransaction(*tx); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		tx.Date = dayOf(tx.Date)
		tx.Amount = tx.Quantity * tx.Price
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
	}
	sortTransactions(next.Transactions)
	if err := checkOversell(next.Transactions); err != nil {
		return nil, err
	}

	for i := range next.PriceData {
		p := &next.PriceData[i]
		if err := validatePrice(*p); err != nil {
			return nil, fmt.Errorf("price %d: %w", i+1, err)
		}
		p.Date = dayOf(p.Date)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
	}
	sortPrices(next.PriceData)

	if err := next.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return next, nil
}

// Reset clears the stored data and starts over with defaults.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.repo.Reset(ctx); err != nil {
		return fmt.Errorf("reset data: %w", err)
	}
	m.data = storage.NewAppData(m.now())
	m.log.Warn().Msg("data reset")
	return nil
}
