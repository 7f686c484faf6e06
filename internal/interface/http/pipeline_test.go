package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/shadowcast/internal/domain/analysis"
	"github.com/yanqian/shadowcast/internal/domain/record"
	"github.com/yanqian/shadowcast/internal/domain/visualize"
	"github.com/yanqian/shadowcast/internal/infra/imagecache"
	"github.com/yanqian/shadowcast/internal/infra/recordstore"
	"github.com/yanqian/shadowcast/internal/infra/render"
	"github.com/yanqian/shadowcast/internal/infra/shadow"
	"github.com/yanqian/shadowcast/internal/infra/solar"
	"github.com/yanqian/shadowcast/pkg/metrics"
	"github.com/yanqian/shadowcast/pkg/raster"
)

type fixedSurface struct {
	grid raster.Grid
}

func (f fixedSurface) Load(context.Context) (raster.Grid, error) {
	return f.grid.Clone(), nil
}

type pipeline struct {
	server  *http.Server
	backend *recordstore.MemoryBackend
}

func newPipeline(t *testing.T, surface raster.Grid) pipeline {
	t.Helper()
	logger := newTestLogger()
	recorder := metrics.NewRecorder()
	backend := recordstore.NewMemoryBackend()

	analysisSvc := analysis.NewService(analysis.Config{
		Latitude:  29.73463,
		Longitude: -95.30052,
		UTCOffset: -6 * time.Hour,
		Scale:     1,
	}, fixedSurface{grid: surface}, solar.NewAstral(), shadow.NewEngine(), backend.Opener(), recorder, logger)
	visualizeSvc := visualize.NewService(backend.Opener(), render.NewPNGRenderer(), imagecache.NewMemoryCache(time.Hour), recorder, logger)

	handler := NewHandler(analysisSvc, visualizeSvc, logger)
	return pipeline{server: NewRouter(testConfig(), handler, recorder), backend: backend}
}

func (p pipeline) analyze(t *testing.T, timestamp string) string {
	t.Helper()
	recorder := performRequest(http.MethodGet, "/analyze?timestamp="+timestamp, p.server)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.NotEmpty(t, body["record_id"])
	return body["record_id"]
}

func (p pipeline) stored(t *testing.T, id string) record.Record {
	t.Helper()
	store := p.backend.Opener().Open()
	require.NoError(t, store.Connect(context.Background()))
	defer store.Close(context.Background())
	rec, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return rec
}

func TestPipeline_FlatSurfaceByDay(t *testing.T) {
	p := newPipeline(t, raster.New(10, 10))

	id := p.analyze(t, "2024-06-21T12:00:00")
	rec := p.stored(t, id)
	require.Equal(t, "12:00", rec.Time)

	grid, err := raster.Decode(rec.Data)
	require.NoError(t, err)
	require.Equal(t, 10, grid.Rows)
	require.Equal(t, 10, grid.Cols)
	for _, v := range grid.Data {
		require.Equal(t, 1.0, v)
	}

	// re-encoding the fetched raster reproduces the stored payload
	again, err := raster.Encode(grid)
	require.NoError(t, err)
	require.Equal(t, rec.Data, again)

	recorder := performRequest(http.MethodGet, "/visualize?record_id="+id, p.server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(recorder.Body.Bytes()))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 640, 480), img.Bounds())

	// second render is served from the cache and is identical
	cached := performRequest(http.MethodGet, "/visualize?record_id="+id, p.server)
	require.Equal(t, recorder.Body.Bytes(), cached.Body.Bytes())
}

func TestPipeline_SunBelowHorizon(t *testing.T) {
	surface := raster.New(6, 4)
	surface.Set(2, 2, 8)
	p := newPipeline(t, surface)

	id := p.analyze(t, "2024-06-21T00:30:00")
	rec := p.stored(t, id)
	require.Equal(t, "00:30", rec.Time)

	grid, err := raster.Decode(rec.Data)
	require.NoError(t, err)
	require.True(t, grid.SameShape(surface))
	for _, v := range grid.Data {
		require.Equal(t, 0.0, v)
	}
}

func TestPipeline_AnalysisIsDeterministic(t *testing.T) {
	surface := raster.New(8, 8)
	surface.Set(4, 4, 3)
	p := newPipeline(t, surface)

	first := p.stored(t, p.analyze(t, "2024-03-20T15:10:00"))
	second := p.stored(t, p.analyze(t, "2024-03-20T15:10:00"))
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, first.Data, second.Data)
	require.Equal(t, first.Time, second.Time)
	require.Equal(t, 2, p.backend.Len())
}

func TestPipeline_VisualizeFailures(t *testing.T) {
	p := newPipeline(t, raster.New(2, 2))

	recorder := performRequest(http.MethodGet, "/visualize", p.server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = performRequest(http.MethodGet, "/visualize?record_id=not-an-id", p.server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.NotEmpty(t, decodeErrorBody(t, recorder.Body.Bytes()))

	recorder = performRequest(http.MethodGet, "/visualize?record_id=6b1f5a2e-8c1d-4f7a-9d3e-2a4b6c8d0e1f", p.server)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "record not found", decodeErrorBody(t, recorder.Body.Bytes()))
}

func TestPipeline_RaggedPayloadIsCodecError(t *testing.T) {
	p := newPipeline(t, raster.New(2, 2))

	store := p.backend.Opener().Open()
	require.NoError(t, store.Connect(context.Background()))
	id, err := store.Insert(context.Background(), record.Record{
		Timestamp: time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC),
		Time:      "12:00",
		Data:      `[{"0":1,"1":2,"2":3},{"0":1,"1":2,"2":3,"3":4,"4":5}]`,
	})
	require.NoError(t, err)
	require.NoError(t, store.Close(context.Background()))

	recorder := performRequest(http.MethodGet, "/visualize?record_id="+id, p.server)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.NotEqual(t, "image/png", recorder.Header().Get("Content-Type"))
}
