// Package scheduler triggers shadow analyses on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanqian/shadowcast/internal/domain/analysis"
	"github.com/yanqian/shadowcast/pkg/metrics"
)

// Daylight reports whether the sun is up at an instant.
type Daylight interface {
	IsDaylight(at time.Time) (bool, error)
}

// Config controls the schedule. Cron is a standard five-field cron expression
// evaluated in the site's local zone.
type Config struct {
	Cron         string
	DaylightOnly bool
	Location     *time.Location
	RunTimeout   time.Duration
}

// Scheduler runs analysis.Service.RunNow on every cron tick.
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	analysis analysis.Service
	daylight Daylight
	metrics  *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

// New validates the schedule and registers the analysis job. daylight may be
// nil when DaylightOnly is false.
func New(cfg Config, svc analysis.Service, daylight Daylight, recorder *metrics.Recorder, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	if cfg.DaylightOnly && daylight == nil {
		return nil, fmt.Errorf("daylight-only schedule needs a daylight calculator")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location)),
		cfg:      cfg,
		analysis: svc,
		daylight: daylight,
		metrics:  recorder,
		logger:   logger.With("component", "scheduler"),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
	if _, err := s.cron.AddFunc(cfg.Cron, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Cron, err)
	}
	return s, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	if s == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("analysis schedule started", "cron", s.cfg.Cron, "daylight_only", s.cfg.DaylightOnly)
}

// Stop halts the schedule and waits for a running job or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := s.cron.Stop()
	defer s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tick() {
	now := s.now()
	if s.cfg.DaylightOnly {
		up, err := s.daylight.IsDaylight(now)
		if err != nil {
			s.logger.Warn("daylight check failed, running anyway", "error", err)
		} else if !up {
			s.metrics.ScheduledSkip()
			s.logger.Debug("scheduled analysis skipped after dark", "at", now)
			return
		}
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.RunTimeout)
	defer cancel()
	res, err := s.analysis.RunNow(ctx)
	if err != nil {
		s.logger.Error("scheduled analysis failed", "error", err)
		return
	}
	s.logger.Info("scheduled analysis stored", "record_id", res.RecordID, "time", res.Time)
}
