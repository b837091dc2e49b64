package handler

import (
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/worklog/api/transport"
	"github.com/fastygo/worklog/internal/infrastructure/monitor"
	"github.com/fastygo/worklog/pkg/httpcontext"
)

var errNoMonitor = errors.New("health monitor not configured")

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /api/health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	if h.monitor == nil {
		h.respondError(ctx, errNoMonitor)
		return
	}
	status := h.monitor.GetStatus()
	body := transport.HealthBody{
		OK:        status.Healthy(),
		DB:        status.Store,
		Uploads:   status.Uploads,
		CheckedAt: status.LastCheck.UTC(),
	}
	if status.CacheEnabled {
		cache := status.Cache
		body.Cache = &cache
	}

	if body.OK {
		h.respondJSON(ctx, http.StatusOK, body)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, body)
}
