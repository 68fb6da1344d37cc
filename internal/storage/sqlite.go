package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"MetalTracker/internal/model"
)

// SQLiteStore persists the data set to a SQLite database.
// Prices, transactions, orders and alerts get typed tables; config and reports are JSON documents.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "sqlite_store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			kind    TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS prices (
			id             TEXT PRIMARY KEY,
			date           INTEGER NOT NULL,
			gold_price     REAL,
			silver_price   REAL,
			platinum_price REAL,
			gold_rsi       REAL,
			silver_rsi     REAL,
			platinum_rsi   REAL,
			vix            REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id       TEXT PRIMARY KEY,
			seq      INTEGER NOT NULL,
			date     INTEGER NOT NULL,
			metal    TEXT NOT NULL,
			type     TEXT NOT NULL,
			quantity REAL,
			price    REAL,
			amount   REAL,
			platform TEXT,
			rsi      REAL,
			gsr      REAL,
			notes    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_seq ON transactions(seq)`,

		`CREATE TABLE IF NOT EXISTS limit_orders (
			id           TEXT PRIMARY KEY,
			seq          INTEGER NOT NULL,
			metal        TEXT NOT NULL,
			tier         INTEGER,
			amount       REAL,
			target_price REAL,
			quantity     REAL,
			status       TEXT,
			created_date INTEGER,
			filled_date  INTEGER,
			filled_price REAL
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id      TEXT PRIMARY KEY,
			seq     INTEGER NOT NULL,
			date    INTEGER NOT NULL,
			type    TEXT NOT NULL,
			metal   TEXT,
			message TEXT,
			read    INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			username   TEXT PRIMARY KEY,
			hash       TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// document kinds stored as JSON payloads
const (
	docConfig    = "config"
	docVersion   = "version"
	docSnapshots = "portfolio_snapshots"
	docMonthly   = "monthly_reports"
	docQuarterly = "quarterly_reports"
	docAnnual    = "annual_reports"
)

func (s *SQLiteStore) Load(ctx context.Context) (*model.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := NewAppData(time.Now())
	found, err := s.loadDoc(ctx, docConfig, &data.Config)
	if err != nil {
		return nil, err
	}
	if !found {
		return data, nil
	}
	docs := []struct {
		kind string
		dst  any
	}{
		{docVersion, &data.Version},
		{docSnapshots, &data.PortfolioSnapshots},
		{docMonthly, &data.MonthlyReports},
		{docQuarterly, &data.QuarterlyReports},
		{docAnnual, &data.AnnualReports},
	}
	for _, d := range docs {
		if _, err := s.loadDoc(ctx, d.kind, d.dst); err != nil {
			return nil, err
		}
	}

	if data.PriceData, err = s.loadPrices(ctx); err != nil {
		return nil, err
	}
	if data.Transactions, err = s.loadTransactions(ctx); err != nil {
		return nil, err
	}
	if data.LimitOrders, err = s.loadOrders(ctx); err != nil {
		return nil, err
	}
	if data.Alerts, err = s.loadAlerts(ctx); err != nil {
		return nil, err
	}
	normalize(data)
	return data, nil
}

func (s *SQLiteStore) loadDoc(ctx context.Context, kind string, dst any) (bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE kind = ?`, kind).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", kind, err)
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", kind, err)
	}
	return true, nil
}

func (s *SQLiteStore) loadPrices(ctx context.Context) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, gold_price, silver_price, platinum_price,
		gold_rsi, silver_rsi, platinum_rsi, vix FROM prices ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	var out []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		var date int64
		var vix sql.NullFloat64
		if err := rows.Scan(&p.ID, &date, &p.GoldPrice, &p.SilverPrice, &p.PlatinumPrice,
			&p.GoldRSI, &p.SilverRSI, &p.PlatinumRSI, &vix); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		p.Date = time.Unix(date, 0).UTC()
		if vix.Valid {
			v := vix.Float64
			p.VIX = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, metal, type, quantity, price, amount,
		platform, rsi, gsr, notes FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date int64
		if err := rows.Scan(&t.ID, &date, &t.Metal, &t.Type, &t.Quantity, &t.Price, &t.Amount,
			&t.Platform, &t.RSI, &t.GSR, &t.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = time.Unix(date, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadOrders(ctx context.Context) ([]model.LimitOrder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, metal, tier, amount, target_price, quantity,
		status, created_date, filled_date, filled_price FROM limit_orders ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []model.LimitOrder
	for rows.Next() {
		var o model.LimitOrder
		var created int64
		var filledDate sql.NullInt64
		var filledPrice sql.NullFloat64
		if err := rows.Scan(&o.ID, &o.Metal, &o.Tier, &o.Amount, &o.TargetPrice, &o.Quantity,
			&o.Status, &created, &filledDate, &filledPrice); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.CreatedDate = time.Unix(created, 0).UTC()
		if filledDate.Valid {
			d := time.Unix(filledDate.Int64, 0).UTC()
			o.FilledDate = &d
		}
		if filledPrice.Valid {
			v := filledPrice.Float64
			o.FilledPrice = &v
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadAlerts(ctx context.Context) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, type, metal, message, read FROM alerts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		var date int64
		if err := rows.Scan(&a.ID, &date, &a.Type, &a.Metal, &a.Message, &a.Read); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Date = time.Unix(date, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// Save replaces the stored data set inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, data *model.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := clearData(ctx, tx); err != nil {
		return err
	}

	docs := map[string]any{
		docConfig:    data.Config,
		docVersion:   data.Version,
		docSnapshots: data.PortfolioSnapshots,
		docMonthly:   data.MonthlyReports,
		docQuarterly: data.QuarterlyReports,
		docAnnual:    data.AnnualReports,
	}
	for kind, v := range docs {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", kind, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO documents (kind, payload) VALUES (?, ?)`, kind, string(payload)); err != nil {
			return fmt.Errorf("insert %s: %w", kind, err)
		}
	}

	for _, p := range data.PriceData {
		if _, err := tx.ExecContext(ctx, `INSERT INTO prices
			(id, date, gold_price, silver_price, platinum_price, gold_rsi, silver_rsi, platinum_rsi, vix)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			p.ID, p.Date.Unix(), p.GoldPrice, p.SilverPrice, p.PlatinumPrice,
			p.GoldRSI, p.SilverRSI, p.PlatinumRSI, p.VIX,
		); err != nil {
			return fmt.Errorf("insert price %s: %w", p.ID, err)
		}
	}

	for i, t := range data.Transactions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO transactions
			(id, seq, date, metal, type, quantity, price, amount, platform, rsi, gsr, notes)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			t.ID, i, t.Date.Unix(), string(t.Metal), string(t.Type), t.Quantity, t.Price, t.Amount,
			t.Platform, t.RSI, t.GSR, t.Notes,
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	for i, o := range data.LimitOrders {
		var filledDate *int64
		if o.FilledDate != nil {
			d := o.FilledDate.Unix()
			filledDate = &d
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO limit_orders
			(id, seq, metal, tier, amount, target_price, quantity, status, created_date, filled_date, filled_price)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			o.ID, i, string(o.Metal), o.Tier, o.Amount, o.TargetPrice, o.Quantity, string(o.Status),
			o.CreatedDate.Unix(), filledDate, o.FilledPrice,
		); err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}

	for i, a := range data.Alerts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO alerts (id, seq, date, type, metal, message, read)
			VALUES (?,?,?,?,?,?,?)`,
			a.ID, i, a.Date.Unix(), string(a.Type), string(a.Metal), a.Message, a.Read,
		); err != nil {
			return fmt.Errorf("insert alert %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug().Int("prices", len(data.PriceData)).Int("transactions", len(data.Transactions)).Msg("data saved")
	return nil
}

func clearData(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"documents", "prices", "transactions", "limit_orders", "alerts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Reset deletes the stored data set. User accounts are kept.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if err := clearData(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Info().Msg("data reset")
	return nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
