package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/shadowcast/internal/domain/analysis"
	"github.com/yanqian/shadowcast/internal/domain/visualize"
)

// timestampLayouts are accepted by the optional timestamp parameter of /analyze.
// Zone information is ignored: the wall clock is read as site-local time.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	analysisSvc  analysis.Service
	visualizeSvc visualize.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(analysisSvc analysis.Service, visualizeSvc visualize.Service, logger *slog.Logger) *Handler {
	return &Handler{
		analysisSvc:  analysisSvc,
		visualizeSvc: visualizeSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Analyze runs a shadow analysis for the current site time, or for the site
// wall clock given in the optional timestamp query parameter.
func (h *Handler) Analyze(c *gin.Context) {
	var (
		res analysis.Result
		err error
	)
	if raw := strings.TrimSpace(c.Query("timestamp")); raw != "" {
		ts, parseErr := parseTimestamp(raw)
		if parseErr != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "timestamp must look like 2006-01-02T15:04:05", parseErr))
			return
		}
		res, err = h.analysisSvc.Run(c.Request.Context(), ts)
	} else {
		res, err = h.analysisSvc.RunNow(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"record_id": res.RecordID})
}

// Visualize renders the stored raster of record_id as a PNG.
func (h *Handler) Visualize(c *gin.Context) {
	img, err := h.visualizeSvc.Render(c.Request.Context(), c.Query("record_id"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
