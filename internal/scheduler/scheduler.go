package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MetalTracker/internal/collector"
	"MetalTracker/internal/model"
	"MetalTracker/internal/notifier"
	"MetalTracker/internal/performance"
	"MetalTracker/internal/portfolio"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron      *cron.Cron
	collector *collector.Collector
	manager   *portfolio.Manager
	notifier  notifier.Notifier
	log       zerolog.Logger
	ctx       context.Context
	now       func() time.Time
}

// NewScheduler creates a new Scheduler. Jobs run with ctx.
func NewScheduler(ctx context.Context, col *collector.Collector, mgr *portfolio.Manager, n notifier.Notifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		collector: col,
		manager:   mgr,
		notifier:  n,
		log:       log.With().Str("component", "scheduler").Logger(),
		ctx:       ctx,
		now:       time.Now,
	}
}

// RegisterAll registers the daily collection and monthly planning tasks.
func (s *Scheduler) RegisterAll(dailyCron, monthlyCron string) error {
	if _, err := s.cron.AddFunc(dailyCron, func() {
		if err := s.RunDaily(s.ctx); err != nil {
			s.log.Error().Err(err).Msg("daily task failed")
		}
	}); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.cron.AddFunc(monthlyCron, func() {
		if err := s.RunMonthly(s.ctx); err != nil {
			s.log.Error().Err(err).Msg("monthly task failed")
		}
	}); err != nil {
		return fmt.Errorf("register monthly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunDaily collects today's prices, records a portfolio snapshot and raises alerts.
func (s *Scheduler) RunDaily(ctx context.Context) error {
	s.log.Info().Msg("running daily task")
	point, err := s.collector.Collect(ctx, s.manager.Snapshot().PriceData)
	if err != nil {
		s.trySend(ctx, fmt.Sprintf("❌ 行情采集失败: %v", err))
		return fmt.Errorf("collect: %w", err)
	}
	point, err = s.manager.AddPrice(ctx, point)
	if err != nil {
		return fmt.Errorf("store price: %w", err)
	}
	if _, err := s.manager.RecordSnapshot(ctx); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	alerts, err := s.manager.EvaluateAlerts(ctx)
	if err != nil {
		return fmt.Errorf("evaluate alerts: %w", err)
	}

	msg := notifier.FormatPrice(point)
	if a := notifier.FormatAlerts(alerts); a != "" {
		msg += "\n" + a
	}
	s.trySend(ctx, msg)
	return nil
}

// RunMonthly closes out the previous period's reports and places this month's limit orders.
func (s *Scheduler) RunMonthly(ctx context.Context) error {
	now := s.now().UTC()
	s.log.Info().Time("now", now).Msg("running monthly task")
	if err := s.closePeriods(ctx, now); err != nil {
		return err
	}

	if s.ordersPlacedIn(now) {
		s.log.Info().Str("month", now.Format("2006-01")).Msg("orders already placed this month")
		return nil
	}
	if _, _, err := s.manager.PlaceOrders(ctx, now); err != nil {
		if errors.Is(err, portfolio.ErrNoPriceData) {
			s.trySend(ctx, "⚠️ 暂无行情数据，本月未生成挂单")
			return nil
		}
		return fmt.Errorf("place orders: %w", err)
	}
	plan, err := s.manager.Plan(now)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	s.trySend(ctx, notifier.FormatPlan(plan))
	return nil
}

// closePeriods records the report of the month before now, plus the quarter and year
// when now opens a new one.
func (s *Scheduler) closePeriods(ctx context.Context, now time.Time) error {
	prev := performance.MonthStart(now).AddDate(0, -1, 0)
	report, err := s.manager.RecordMonthlyReport(ctx, prev)
	if err != nil {
		return fmt.Errorf("monthly report: %w", err)
	}
	s.trySend(ctx, notifier.FormatMonthlyReport(report))

	if (now.Month()-1)%3 == 0 {
		if _, err := s.manager.RecordQuarterlyReport(ctx, prev); err != nil {
			return fmt.Errorf("quarterly report: %w", err)
		}
	}
	if now.Month() == time.January {
		if _, err := s.manager.RecordAnnualReport(ctx, prev.Year()); err != nil {
			return fmt.Errorf("annual report: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) ordersPlacedIn(month time.Time) bool {
	for _, o := range s.manager.Orders("") {
		if o.CreatedDate.Year() == month.Year() && o.CreatedDate.Month() == month.Month() {
			return true
		}
	}
	return false
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var name string
	if fields := strings.Fields(command); len(fields) > 0 {
		name = strings.ToLower(fields[0])
	}
	switch name {
	case "/price", "行情":
		latest, ok := s.manager.Snapshot().Latest()
		if !ok {
			return "暂无行情数据"
		}
		return notifier.FormatPrice(latest)
	case "/plan", "计划":
		plan, err := s.manager.Plan(s.now())
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatPlan(plan)
	case "/holdings", "持仓":
		return notifier.FormatHoldings(s.manager.Dashboard())
	case "/stops", "止损":
		return notifier.FormatStopLosses(s.manager.StopLosses())
	case "/rebalance", "再平衡":
		r, err := s.manager.Rebalancing()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRebalancing(r)
	case "/report", "月报":
		return notifier.FormatMonthlyReport(performance.BuildMonthlyReport(s.manager.Snapshot(), s.now()))
	case "/alerts", "提醒":
		var unread []model.Alert
		for _, a := range s.manager.Snapshot().Alerts {
			if !a.Read {
				unread = append(unread, a)
			}
		}
		if len(unread) == 0 {
			return "暂无未读提醒"
		}
		return notifier.FormatAlerts(unread)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := notifier.SendWithRetry(ctx, s.notifier, text, 3, s.log); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
