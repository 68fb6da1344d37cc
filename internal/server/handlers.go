package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"MetalTracker/internal/auth"
	"MetalTracker/internal/model"
	"MetalTracker/internal/portfolio"
	"MetalTracker/internal/storage"
)

// maxBodyBytes bounds JSON request bodies, imports included.
const maxBodyBytes = 10 << 20

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// fail maps domain errors onto HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, portfolio.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, portfolio.ErrOversell),
		errors.Is(err, portfolio.ErrInvalidTransaction),
		errors.Is(err, portfolio.ErrInvalidPrice),
		errors.Is(err, portfolio.ErrInvalidConfig),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, storage.ErrUnsupportedVersion):
		status = http.StatusBadRequest
	case errors.Is(err, portfolio.ErrOrderClosed),
		errors.Is(err, portfolio.ErrNoPriceData),
		errors.Is(err, auth.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// dateParam parses a YYYY-MM-DD or RFC3339 query value, defaulting to now.
func (s *Server) dateParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return s.now().UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q", name, v)
	}
	return t, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "metal-tracker",
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		s.writeError(w, http.StatusNotImplemented, "authentication disabled")
		return
	}
	var c credentials
	if !s.decode(w, r, &c) {
		return
	}
	if err := s.auth.Register(r.Context(), c.Username, c.Password); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"username": c.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		s.writeError(w, http.StatusNotImplemented, "authentication disabled")
		return
	}
	var c credentials
	if !s.decode(w, r, &c) {
		return
	}
	token, err := s.auth.Login(r.Context(), c.Username, c.Password)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		s.auth.Logout(bearerToken(r))
	}
	if user, ok := r.Context().Value(userKey{}).(string); ok {
		s.log.Info().Str("user", user).Msg("logged out")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.manager.Dashboard())
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.manager.Holdings())
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r, "date")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := s.manager.Plan(date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleStopLoss(w http.ResponseWriter, r *http.Request) {
	stops := s.manager.StopLosses()
	if stops == nil {
		stops = []model.StopLossStatus{}
	}
	s.writeJSON(w, http.StatusOK, stops)
}

func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	rec, err := s.manager.Rebalancing()
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.manager.Performance())
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	metal, ok := model.ParseMetal(chi.URLParam(r, "metal"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown metal")
		return
	}
	signal, err := s.predictor.PredictEntry(r.Context(), metal, s.manager.Snapshot().PriceData)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, signal)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.manager.Snapshot().Config)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.manager.Snapshot().Config
	if !s.decode(w, r, &cfg) {
		return
	}
	if err := s.manager.UpdateConfig(r.Context(), cfg); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleListPrices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.manager.Snapshot().PriceData)
}

func (s *Server) handleAddPrice(w http.ResponseWriter, r *http.Request) {
	var p model.PricePoint
	if !s.decode(w, r, &p) {
		return
	}
	stored, err := s.manager.AddPrice(r.Context(), p)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleDeletePrice(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeletePrice(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.manager.Snapshot().Transactions)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var tx model.Transaction
	if !s.decode(w, r, &tx) {
		return
	}
	stored, err := s.manager.AddTransaction(r.Context(), tx)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx model.Transaction
	if !s.decode(w, r, &tx) {
		return
	}
	tx.ID = chi.URLParam(r, "id")
	if err := s.manager.UpdateTransaction(r.Context(), tx); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders := s.manager.Orders(model.OrderStatus(r.URL.Query().Get("status")))
	if orders == nil {
		orders = []model.LimitOrder{}
	}
	s.writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handlePlaceOrders(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r, "date")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, orders, err := s.manager.PlaceOrders(r.Context(), date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"investment": plan,
		"orders":     orders,
	})
}

type fillRequest struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

func (s *Server) handleFillOrder(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		req.Date = s.now().UTC()
	}
	tx, err := s.manager.FillOrder(r.Context(), chi.URLParam(r, "id"), req.Price, req.Date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.manager.Snapshot().Alerts
	if r.URL.Query().Get("unread") == "true" {
		unread := []model.Alert{}
		for _, a := range alerts {
			if !a.Read {
				unread = append(unread, a)
			}
		}
		alerts = unread
	}
	s.writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleEvaluateAlerts(w http.ResponseWriter, r *http.Request) {
	added, err := s.manager.EvaluateAlerts(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if added == nil {
		added = []model.Alert{}
	}
	s.writeJSON(w, http.StatusOK, added)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.MarkAlertRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.DeleteAlert(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	d := s.manager.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": d.PortfolioSnapshots,
		"monthly":   d.MonthlyReports,
		"quarterly": d.QuarterlyReports,
		"annual":    d.AnnualReports,
	})
}

func (s *Server) handleRecordMonthly(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r, "month")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.manager.RecordMonthlyReport(r.Context(), date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRecordQuarterly(w http.ResponseWriter, r *http.Request) {
	date, err := s.dateParam(r, "date")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.manager.RecordQuarterlyReport(r.Context(), date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRecordAnnual(w http.ResponseWriter, r *http.Request) {
	year := s.now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	report, err := s.manager.RecordAnnualReport(r.Context(), year)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	d := s.manager.Snapshot()
	stamp := s.now().Format("20060102")
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="metal-tracker-%s.json"`, stamp))
		if err := storage.ExportJSON(w, d); err != nil {
			s.log.Error().Err(err).Msg("export json")
		}
	case "csv":
		kind := r.URL.Query().Get("kind")
		if kind == "" {
			kind = storage.KindTransactions
		}
		switch kind {
		case storage.KindTransactions, storage.KindPrices, storage.KindLimitOrders:
		default:
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export kind %q", kind))
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.csv"`, kind, stamp))
		if err := storage.ExportCSV(w, d, kind); err != nil {
			s.log.Error().Err(err).Msg("export csv")
		}
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := storage.ImportJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.manager.Replace(r.Context(), data); err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{
		"transactions": len(data.Transactions),
		"prices":       len(data.PriceData),
		"orders":       len(data.LimitOrders),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Reset(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
