package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/shadowcast/internal/domain/analysis"
	"github.com/yanqian/shadowcast/internal/domain/record"
	"github.com/yanqian/shadowcast/internal/domain/visualize"
	"github.com/yanqian/shadowcast/internal/infra/config"
	"github.com/yanqian/shadowcast/internal/infra/imagecache"
	"github.com/yanqian/shadowcast/internal/infra/recordstore"
	"github.com/yanqian/shadowcast/internal/infra/scheduler"
	"github.com/yanqian/shadowcast/internal/infra/solar"
	"github.com/yanqian/shadowcast/internal/infra/surface"
	"github.com/yanqian/shadowcast/pkg/metrics"
	"github.com/yanqian/shadowcast/pkg/util"
)

func provideAnalysisConfig(cfg *config.Config) analysis.Config {
	return analysis.Config{
		Latitude:  cfg.Site.Latitude,
		Longitude: cfg.Site.Longitude,
		UTCOffset: cfg.Site.UTCOffset(),
		Scale:     cfg.Site.Scale,
	}
}

func provideRecordOpener(cfg *config.Config, logger *slog.Logger) (record.Opener, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		logger.Info("mongo record store enabled", "database", cfg.Store.Database, "collection", cfg.Store.Collection)
		return recordstore.NewMongoOpener(recordstore.MongoConfig{
			ConnectionString: cfg.Store.ConnectionString,
			Database:         cfg.Store.Database,
			Collection:       cfg.Store.Collection,
			ConnectTimeout:   cfg.Store.ConnectTimeout,
		}, logger), nil
	case config.DriverPostgres:
		logger.Info("postgres record store enabled", "table", cfg.Store.Table)
		return recordstore.NewPostgresOpener(recordstore.PostgresConfig{
			DSN:            cfg.Store.DSN,
			Table:          cfg.Store.Table,
			ConnectTimeout: cfg.Store.ConnectTimeout,
		}, logger), nil
	case config.DriverMemory:
		logger.Warn("memory record store enabled, records are lost on restart")
		return recordstore.NewMemoryBackend().Opener(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func provideSurfaceLoader(cfg *config.Config, logger *slog.Logger) (analysis.SurfaceLoader, error) {
	if strings.TrimSpace(cfg.Surface.Bucket) == "" {
		logger.Info("surface model read from disk", "path", cfg.Surface.Path)
		return surface.NewFileLoader(cfg.Surface.Path), nil
	}
	loader, err := surface.NewObjectLoader(surface.ObjectConfig{
		Endpoint:  cfg.Surface.Endpoint,
		AccessKey: cfg.Surface.AccessKey,
		SecretKey: cfg.Surface.SecretKey,
		Region:    cfg.Surface.Region,
		Bucket:    cfg.Surface.Bucket,
		Key:       cfg.Surface.ObjectKey,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("surface model read from object storage", "bucket", cfg.Surface.Bucket, "key", cfg.Surface.ObjectKey)
	return loader, nil
}

// provideImageCache returns nil when caching is disabled or Valkey is unreachable;
// the visualization service then renders every request.
func provideImageCache(cfg *config.Config, logger *slog.Logger) visualize.ImageCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, image cache disabled", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, image cache disabled", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, image cache disabled", "error", err)
		client.Close()
		return nil
	}
	logger.Info("valkey image cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
	return imagecache.NewValkeyCache(client, cfg.Cache.Prefix, cfg.Cache.TTL)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideScheduler(cfg *config.Config, svc analysis.Service, recorder *metrics.Recorder, logger *slog.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Schedule.Enabled {
		return nil, nil
	}
	var daylight scheduler.Daylight
	if cfg.Schedule.DaylightOnly {
		daylight = solar.NewDaylight(cfg.Site.Latitude, cfg.Site.Longitude)
	}
	return scheduler.New(scheduler.Config{
		Cron:         cfg.Schedule.Cron,
		DaylightOnly: cfg.Schedule.DaylightOnly,
		Location:     util.FixedZone(cfg.Site.UTCOffset()),
		RunTimeout:   cfg.Schedule.RunTimeout,
	}, svc, daylight, recorder, logger)
}
