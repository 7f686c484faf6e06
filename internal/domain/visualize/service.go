package visualize

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/shadowcast/internal/domain/record"
	apperrors "github.com/yanqian/shadowcast/pkg/errors"
	"github.com/yanqian/shadowcast/pkg/metrics"
	"github.com/yanqian/shadowcast/pkg/raster"
)

// Service renders stored shadow records as images.
type Service interface {
	Render(ctx context.Context, recordID string) ([]byte, error)
}

type service struct {
	stores   record.Opener
	renderer Renderer
	cache    ImageCache
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewService wires up the visualization domain. cache may be nil.
func NewService(stores record.Opener, renderer Renderer, cache ImageCache, recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		stores:   stores,
		renderer: renderer,
		cache:    cache,
		metrics:  recorder,
		logger:   logger.With("component", "visualize.service"),
	}
}

func (s *service) Render(ctx context.Context, recordID string) ([]byte, error) {
	start := time.Now()
	img, err := s.render(ctx, strings.TrimSpace(recordID))
	s.metrics.ObserveRender(err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *service) render(ctx context.Context, recordID string) ([]byte, error) {
	if recordID == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "record_id is required", nil)
	}
	if err := record.ValidateID(s.stores, recordID); err != nil {
		return nil, err
	}

	if cached, ok := s.cached(ctx, recordID); ok {
		s.metrics.CacheHit()
		return cached, nil
	}

	var rec record.Record
	err := record.Use(ctx, s.stores, s.logger, func(store record.Store) error {
		var getErr error
		rec, getErr = store.Get(ctx, recordID)
		return getErr
	})
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			err = apperrors.Wrap(apperrors.CodeStoreUnavailable, "fetch shadow record", err)
		}
		return nil, err
	}

	grid, err := raster.Decode(rec.Data)
	if err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(grid, rec.Time)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRenderFailed, "render shadow raster", err)
	}
	s.logger.Info("shadow record rendered", "record_id", recordID, "rows", grid.Rows, "cols", grid.Cols, "bytes", len(img))

	if s.cache != nil {
		if err := s.cache.Put(ctx, recordID, img); err != nil {
			s.logger.Warn("image cache put failed", "record_id", recordID, "error", err)
		}
	}
	return img, nil
}

func (s *service) cached(ctx context.Context, recordID string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	img, ok, err := s.cache.Get(ctx, recordID)
	if err != nil {
		s.logger.Warn("image cache get failed", "record_id", recordID, "error", err)
		return nil, false
	}
	return img, ok && len(img) > 0
}
