//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/shadowcast/internal/bootstrap"
	"github.com/yanqian/shadowcast/internal/domain/analysis"
	"github.com/yanqian/shadowcast/internal/domain/visualize"
	"github.com/yanqian/shadowcast/internal/infra/config"
	"github.com/yanqian/shadowcast/internal/infra/render"
	"github.com/yanqian/shadowcast/internal/infra/shadow"
	"github.com/yanqian/shadowcast/internal/infra/solar"
	httpiface "github.com/yanqian/shadowcast/internal/interface/http"
	"github.com/yanqian/shadowcast/pkg/logger"
	"github.com/yanqian/shadowcast/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideAnalysisConfig,
		provideRecordOpener,
		provideSurfaceLoader,
		provideImageCache,
		provideScheduler,
		solar.NewAstral,
		shadow.NewEngine,
		render.NewPNGRenderer,
		wire.Bind(new(analysis.SolarProvider), new(*solar.Astral)),
		wire.Bind(new(analysis.ShadowEngine), new(*shadow.Engine)),
		wire.Bind(new(visualize.Renderer), new(*render.PNGRenderer)),
		analysis.NewService,
		visualize.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
