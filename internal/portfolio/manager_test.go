package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetalTracker/internal/model"
	"MetalTracker/internal/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newManager(t *testing.T) (*Manager, *storage.MemoryStore) {
	t.Helper()
	repo := storage.NewMemoryStore()
	data := storage.NewAppData(date(2024, 1, 15))
	require.NoError(t, repo.Save(context.Background(), data))
	m, err := NewManager(context.Background(), repo, zerolog.Nop())
	require.NoError(t, err)
	m.now = func() time.Time { return date(2024, 3, 1) }
	return m, repo
}

func point(d time.Time, gold, silver, platinum float64) model.PricePoint {
	return model.PricePoint{Date: d, GoldPrice: gold, SilverPrice: silver, PlatinumPrice: platinum, GoldRSI: 45, SilverRSI: 45, PlatinumRSI: 45}
}

func TestAddPrice_SortsAndReplacesSameDay(t *testing.T) {
	m, repo := newManager(t)
	ctx := context.Background()

	_, err := m.AddPrice(ctx, point(date(2024, 2, 2), 502, 6.1, 210))
	require.NoError(t, err)
	first, err := m.AddPrice(ctx, point(date(2024, 2, 1), 500, 6.0, 209))
	require.NoError(t, err)
	replaced, err := m.AddPrice(ctx, point(time.Date(2024, 2, 1, 15, 30, 0, 0, time.UTC), 505, 6.0, 209))
	require.NoError(t, err)
	assert.Equal(t, first.ID, replaced.ID)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored.PriceData, 2)
	assert.Equal(t, date(2024, 2, 1), stored.PriceData[0].Date)
	assert.Equal(t, 505.0, stored.PriceData[0].GoldPrice)

	require.NoError(t, m.DeletePrice(ctx, first.ID))
	assert.ErrorIs(t, m.DeletePrice(ctx, first.ID), ErrNotFound)
}

func TestAddPrice_Validation(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, err := m.AddPrice(ctx, point(date(2024, 2, 1), 0, 6, 200))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	p := point(date(2024, 2, 1), 500, 6, 200)
	p.SilverRSI = 120
	_, err = m.AddPrice(ctx, p)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = m.AddPrice(ctx, point(time.Time{}, 500, 6, 200))
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestAddTransaction(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	_, err := m.AddPrice(ctx, point(date(2024, 2, 1), 500, 6.25, 200))
	require.NoError(t, err)

	tx, err := m.AddTransaction(ctx, model.Transaction{Date: date(2024, 2, 1), Metal: model.Gold, Type: model.Buy, Quantity: 10, Price: 500, Amount: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, 5000.0, tx.Amount)
	assert.Equal(t, 45.0, tx.RSI)
	assert.Equal(t, 80.0, tx.GSR)

	h := m.Holdings()
	assert.Equal(t, 10.0, h[model.Gold].Quantity)
	assert.Equal(t, 500.0, h[model.Gold].AverageCost)
}

func TestAddTransaction_Rejects(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	tests := []struct {
		name string
		tx   model.Transaction
		err  error
	}{
		{"unknown metal", model.Transaction{Date: date(2024, 2, 1), Metal: "copper", Type: model.Buy, Quantity: 1, Price: 1}, ErrInvalidTransaction},
		{"zero quantity", model.Transaction{Date: date(2024, 2, 1), Metal: model.Gold, Type: model.Buy, Price: 1}, ErrInvalidTransaction},
		{"negative price", model.Transaction{Date: date(2024, 2, 1), Metal: model.Gold, Type: model.Buy, Quantity: 1, Price: -1}, ErrInvalidTransaction},
		{"bad type", model.Transaction{Date: date(2024, 2, 1), Metal: model.Gold, Type: "hold", Quantity: 1, Price: 1}, ErrInvalidTransaction},
		{"sell with no holdings", model.Transaction{Date: date(2024, 2, 1), Metal: model.Gold, Type: model.Sell, Quantity: 1, Price: 1}, ErrOversell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddTransaction(ctx, tt.tx)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Empty(t, m.Snapshot().Transactions)
}

func TestOversellChecksChronology(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	buy, err := m.AddTransaction(ctx, model.NewTransaction(date(2024, 2, 10), model.Silver, model.Buy, 100, 6))
	require.NoError(t, err)
	// a sell dated before the buy has nothing to sell
	_, err = m.AddTransaction(ctx, model.NewTransaction(date(2024, 2, 1), model.Silver, model.Sell, 50, 6))
	assert.ErrorIs(t, err, ErrOversell)

	_, err = m.AddTransaction(ctx, model.NewTransaction(date(2024, 2, 20), model.Silver, model.Sell, 100, 6.5))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Holdings()[model.Silver].Quantity)

	assert.ErrorIs(t, m.DeleteTransaction(ctx, buy.ID), ErrOversell)

	buy.Quantity = 60
	assert.ErrorIs(t, m.UpdateTransaction(ctx, buy), ErrOversell)
	buy.Quantity = 150
	require.NoError(t, m.UpdateTransaction(ctx, buy))
	assert.Equal(t, 50.0, m.Holdings()[model.Silver].Quantity)
	assert.Equal(t, 900.0, m.Snapshot().Transactions[0].Amount)

	assert.ErrorIs(t, m.DeleteTransaction(ctx, "missing"), ErrNotFound)
}

func TestPlaceFillCancelOrders(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, _, err := m.PlaceOrders(ctx, date(2024, 3, 1))
	assert.ErrorIs(t, err, ErrNoPriceData)

	_, err = m.AddPrice(ctx, point(date(2024, 2, 28), 500, 7, 200))
	require.NoError(t, err)
	plan, orders, err := m.PlaceOrders(ctx, date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, "2024-03", plan.Month)
	require.Len(t, orders, 12)
	assert.Len(t, m.Orders(model.OrderPending), 12)

	tx, err := m.FillOrder(ctx, orders[0].ID, 0, date(2024, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, model.Gold, tx.Metal)
	assert.Equal(t, orders[0].TargetPrice, tx.Price)
	assert.InDelta(t, orders[0].Quantity, m.Holdings()[model.Gold].Quantity, 1e-9)

	snap := m.Snapshot()
	assert.Equal(t, model.OrderFilled, snap.LimitOrders[0].Status)
	require.NotNil(t, snap.LimitOrders[0].FilledPrice)
	assert.Equal(t, orders[0].TargetPrice, *snap.LimitOrders[0].FilledPrice)
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, model.AlertOrderFilled, snap.Alerts[0].Type)

	_, err = m.FillOrder(ctx, orders[0].ID, 0, date(2024, 3, 2))
	assert.ErrorIs(t, err, ErrOrderClosed)

	require.NoError(t, m.CancelOrder(ctx, orders[1].ID))
	assert.ErrorIs(t, m.CancelOrder(ctx, orders[1].ID), ErrOrderClosed)
	assert.ErrorIs(t, m.CancelOrder(ctx, "missing"), ErrNotFound)
	assert.Len(t, m.Orders(model.OrderPending), 10)
	assert.Len(t, m.Orders(""), 12)
}

func TestAlerts(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	p := point(date(2024, 2, 28), 500, 5.5, 200)
	p.GoldRSI = 80
	_, err := m.AddPrice(ctx, p)
	require.NoError(t, err)

	added, err := m.EvaluateAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, added, 2)

	again, err := m.EvaluateAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, m.MarkAlertRead(ctx, added[0].ID))
	assert.True(t, m.Snapshot().Alerts[0].Read)
	require.NoError(t, m.DeleteAlert(ctx, added[1].ID))
	assert.Len(t, m.Snapshot().Alerts, 1)
	assert.ErrorIs(t, m.MarkAlertRead(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, m.DeleteAlert(ctx, "missing"), ErrNotFound)
}

func TestUpdateConfig(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	cfg := m.Snapshot().Config
	cfg.TargetAllocation[model.Gold] = 70
	assert.Error(t, m.UpdateConfig(ctx, cfg))

	cfg.TargetAllocation[model.Silver] = 15
	require.NoError(t, m.UpdateConfig(ctx, cfg))
	assert.Equal(t, 70.0, m.Snapshot().Config.TargetAllocation[model.Gold])
}

type failingRepo struct{ *storage.MemoryStore }

func (failingRepo) Save(context.Context, *model.AppData) error { return errors.New("disk full") }

func TestUpdate_SaveFailureLeavesStateUntouched(t *testing.T) {
	m, err := NewManager(context.Background(), failingRepo{storage.NewMemoryStore()}, zerolog.Nop())
	require.NoError(t, err)

	_, err = m.AddPrice(context.Background(), point(date(2024, 2, 1), 500, 6, 200))
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, m.Snapshot().PriceData)
}

func TestReports(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, err := m.RecordSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoPriceData)

	_, err = m.AddPrice(ctx, point(date(2024, 2, 1), 500, 6, 200))
	require.NoError(t, err)
	_, err = m.AddTransaction(ctx, model.NewTransaction(date(2024, 2, 1), model.Gold, model.Buy, 2, 500))
	require.NoError(t, err)

	snap, err := m.RecordSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, snap.TotalValue)
	_, err = m.RecordSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, m.Snapshot().PortfolioSnapshots, 1)

	monthly, err := m.RecordMonthlyReport(ctx, date(2024, 2, 15))
	require.NoError(t, err)
	assert.Equal(t, "2024-02", monthly.Month)
	_, err = m.RecordMonthlyReport(ctx, date(2024, 2, 20))
	require.NoError(t, err)
	assert.Len(t, m.Snapshot().MonthlyReports, 1)

	q, err := m.RecordQuarterlyReport(ctx, date(2024, 2, 15))
	require.NoError(t, err)
	assert.Equal(t, "2024-Q1", q.Quarter)

	y, err := m.RecordAnnualReport(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, "2024", y.Year)
	assert.Len(t, m.Snapshot().AnnualReports, 1)
}

func TestReplaceAndReset(t *testing.T) {
	m, repo := newManager(t)
	ctx := context.Background()

	bad := storage.NewAppData(date(2024, 1, 1))
	bad.Transactions = []model.Transaction{model.NewTransaction(date(2024, 2, 1), model.Gold, model.Sell, 1, 500)}
	assert.ErrorIs(t, m.Replace(ctx, bad), ErrOversell)

	good := storage.NewAppData(date(2024, 1, 1))
	good.Transactions = []model.Transaction{model.NewTransaction(date(2024, 2, 1), model.Gold, model.Buy, 1, 500)}
	require.NoError(t, m.Replace(ctx, good))
	assert.Len(t, m.Snapshot().Transactions, 1)

	require.NoError(t, m.Reset(ctx))
	assert.Empty(t, m.Snapshot().Transactions)
	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored.Transactions)
}

func TestAddTransaction_BackdatedBuyStoredInDateOrder(t *testing.T) {
	m, repo := newManager(t)
	ctx := context.Background()

	_, err := m.AddTransaction(ctx, model.NewTransaction(date(2024, 1, 20), model.Gold, model.Buy, 10, 500))
	require.NoError(t, err)
	_, err = m.AddTransaction(ctx, model.NewTransaction(date(2024, 3, 20), model.Gold, model.Sell, 10, 550))
	require.NoError(t, err)
	_, err = m.AddTransaction(ctx, model.NewTransaction(date(2024, 2, 20), model.Gold, model.Buy, 5, 600))
	require.NoError(t, err)

	h := m.Holdings()[model.Gold]
	assert.InDelta(t, 5.0, h.Quantity, 1e-9)
	assert.InDelta(t, 8000.0/15, h.AverageCost, 1e-6)
	assert.InDelta(t, 8000.0/3, h.TotalCost, 1e-6)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored.Transactions, 3)
	assert.Equal(t, date(2024, 2, 20), stored.Transactions[1].Date)
	assert.Equal(t, model.Sell, stored.Transactions[2].Type)
}

func TestReplace_ValidatesAndNormalizes(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	data := storage.NewAppData(date(2024, 1, 1))
	sellTx := model.NewTransaction(date(2024, 3, 1), model.Gold, model.Sell, 2, 520)
	buyTx := model.NewTransaction(time.Date(2024, 2, 1, 14, 0, 0, 0, time.UTC), model.Gold, model.Buy, 4, 500)
	buyTx.Amount = 1
	data.Transactions = []model.Transaction{sellTx, buyTx}
	data.PriceData = []model.PricePoint{
		point(date(2024, 2, 3), 510, 6.2, 211),
		point(date(2024, 2, 1), 500, 6.0, 209),
	}
	require.NoError(t, m.Replace(ctx, data))

	got := m.Snapshot()
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, model.Buy, got.Transactions[0].Type)
	assert.Equal(t, date(2024, 2, 1), got.Transactions[0].Date)
	assert.Equal(t, 2000.0, got.Transactions[0].Amount)
	assert.NotEmpty(t, got.Transactions[0].ID)
	latest, ok := got.Latest()
	require.True(t, ok)
	assert.Equal(t, date(2024, 2, 3), latest.Date)
	// caller's copy is not mutated
	assert.Equal(t, 1.0, data.Transactions[1].Amount)

	badTx := storage.NewAppData(date(2024, 1, 1))
	badTx.Transactions = []model.Transaction{model.NewTransaction(date(2024, 2, 1), model.Gold, model.Buy, -5, 500)}
	assert.ErrorIs(t, m.Replace(ctx, badTx), ErrInvalidTransaction)

	badPrice := storage.NewAppData(date(2024, 1, 1))
	badPrice.PriceData = []model.PricePoint{point(date(2024, 2, 1), -1, 6.0, 209)}
	assert.ErrorIs(t, m.Replace(ctx, badPrice), ErrInvalidPrice)

	badCfg := storage.NewAppData(date(2024, 1, 1))
	badCfg.Config.TotalCapital = 0
	assert.ErrorIs(t, m.Replace(ctx, badCfg), ErrInvalidConfig)

	assert.Len(t, m.Snapshot().Transactions, 2, "rejected imports leave state unchanged")
}
