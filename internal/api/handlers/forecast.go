package handlers

import (
	"net/http"

	"github.com/wonny/quantedge/internal/analytics"
	"github.com/wonny/quantedge/pkg/logger"
)

// ForecastHandler serves ensemble forecasts
type ForecastHandler struct {
	svc    *analytics.Service
	logger *logger.Logger
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(svc *analytics.Service, log *logger.Logger) *ForecastHandler {
	return &ForecastHandler{
		svc:    svc,
		logger: log,
	}
}

// GetForecast computes a forecast from the latest quote
// GET /api/forecast/{symbol}
func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.ComputeForecast(r.Context(), symbolVar(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"forecast":  f,
		"direction": f.Direction(),
	})
}
