package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yanqian/shadowcast/internal/domain/record"
	apperrors "github.com/yanqian/shadowcast/pkg/errors"
	"github.com/yanqian/shadowcast/pkg/metrics"
	"github.com/yanqian/shadowcast/pkg/raster"
	"github.com/yanqian/shadowcast/pkg/util"
)

// Service runs shadow analyses and persists their rasters.
type Service interface {
	Run(ctx context.Context, timestamp time.Time) (Result, error)
	RunNow(ctx context.Context) (Result, error)
}

type service struct {
	cfg     Config
	surface SurfaceLoader
	solar   SolarProvider
	engine  ShadowEngine
	stores  record.Opener
	metrics *metrics.Recorder
	logger  *slog.Logger
	zone    *time.Location
	now     func() time.Time
}

// NewService wires up the analysis domain.
func NewService(cfg Config, surface SurfaceLoader, solar SolarProvider, engine ShadowEngine, stores record.Opener, recorder *metrics.Recorder, logger *slog.Logger) Service {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	return &service{
		cfg:     cfg,
		surface: surface,
		solar:   solar,
		engine:  engine,
		stores:  stores,
		metrics: recorder,
		logger:  logger.With("component", "analysis.service"),
		zone:    util.FixedZone(cfg.UTCOffset),
		now:     time.Now,
	}
}

// RunNow analyzes the current site-local wall clock time.
func (s *service) RunNow(ctx context.Context) (Result, error) {
	return s.Run(ctx, s.now().In(s.zone))
}

func (s *service) Run(ctx context.Context, timestamp time.Time) (Result, error) {
	start := time.Now()
	res, err := s.run(ctx, timestamp)
	s.metrics.ObserveAnalysis(err, time.Since(start))
	if err != nil {
		s.logger.Error("shadow analysis failed", "timestamp", timestamp, "error", err)
		return Result{}, err
	}
	s.logger.Info("shadow analysis stored", "record_id", res.RecordID, "time", res.Time, "elevation", res.Elevation, "azimuth", res.Azimuth, "latency_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (s *service) run(ctx context.Context, timestamp time.Time) (Result, error) {
	surface, err := s.surface.Load(ctx)
	if err != nil {
		return Result{}, wrapUnlessCoded(apperrors.CodeComputationFailed, "load surface model", err)
	}
	if replaced := surface.ReplaceNonFinite(0); replaced > 0 {
		s.logger.Debug("surface model sanitized", "cells", replaced)
	}

	sample, local, err := s.sample(ctx, timestamp)
	if err != nil {
		return Result{}, err
	}

	// flat-terrain deployment: no explicit building walls
	walls := raster.New(surface.Rows, surface.Cols)
	aspect := raster.New(surface.Rows, surface.Cols)

	cast, err := s.engine.Cast(ctx, CastInput{
		Surface:    surface,
		Azimuth:    sample.Azimuth,
		Altitude:   sample.Elevation,
		Scale:      s.cfg.Scale,
		WallHeight: walls,
		WallAspect: aspect.Scaled(math.Pi / 180),
	})
	if err != nil {
		return Result{}, wrapUnlessCoded(apperrors.CodeComputationFailed, "cast shadows", err)
	}
	if !cast.Shadow.SameShape(surface) {
		return Result{}, apperrors.Wrap(apperrors.CodeComputationFailed, fmt.Sprintf("shadow raster is %dx%d, surface is %dx%d", cast.Shadow.Rows, cast.Shadow.Cols, surface.Rows, surface.Cols), nil)
	}

	data, err := raster.Encode(cast.Shadow)
	if err != nil {
		return Result{}, err
	}

	rec := record.Record{
		Timestamp: timestamp,
		Time:      FormatClock(local),
		Data:      data,
	}

	var id string
	err = record.Use(ctx, s.stores, s.logger, func(store record.Store) error {
		var insertErr error
		id, insertErr = store.Insert(ctx, rec)
		return insertErr
	})
	if err != nil {
		return Result{}, wrapUnlessCoded(apperrors.CodeStoreUnavailable, "store shadow record", err)
	}

	return Result{
		RecordID:  id,
		Timestamp: timestamp,
		Time:      rec.Time,
		Elevation: sample.Elevation,
		Azimuth:   sample.Azimuth,
	}, nil
}

// sample queries the solar provider in UTC and returns the sample together with
// the provider's instant shifted back to site-local time. The input's wall clock
// is taken as site-local regardless of its zone.
func (s *service) sample(ctx context.Context, timestamp time.Time) (SolarSample, time.Time, error) {
	query := util.WallClockUTC(timestamp).Add(-s.cfg.UTCOffset)
	sample, err := s.solar.Position(ctx, query, s.cfg.Latitude, s.cfg.Longitude)
	if err != nil {
		return SolarSample{}, time.Time{}, wrapUnlessCoded(apperrors.CodeComputationFailed, "solar position", err)
	}
	return sample, sample.Timestamp.Add(s.cfg.UTCOffset), nil
}

// FormatClock renders the 24-hour zero-padded "HH:MM" label stored with a record.
func FormatClock(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func wrapUnlessCoded(code, message string, err error) error {
	if apperrors.CodeOf(err) != "" {
		return err
	}
	return apperrors.Wrap(code, message, err)
}
