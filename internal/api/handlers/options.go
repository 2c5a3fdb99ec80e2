package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/quantedge/internal/analytics"
	"github.com/wonny/quantedge/pkg/logger"
)

const defaultExpiryDays = 30

// OptionsHandler prices options on demand
type OptionsHandler struct {
	svc    *analytics.Service
	logger *logger.Logger
}

// NewOptionsHandler creates a new options handler
func NewOptionsHandler(svc *analytics.Service, log *logger.Logger) *OptionsHandler {
	return &OptionsHandler{
		svc:    svc,
		logger: log,
	}
}

// GetOption prices one strike (ATM when strike is omitted)
// GET /api/options/{symbol}?strike=1300&expiry=30
func (h *OptionsHandler) GetOption(w http.ResponseWriter, r *http.Request) {
	expiry, ok := queryInt(r, "expiry", defaultExpiryDays)
	if !ok {
		respondError(w, http.StatusBadRequest, "expiry must be a positive number of days")
		return
	}

	var strike float64
	if raw := r.URL.Query().Get("strike"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "strike must be a positive number")
			return
		}
		strike = v
	}

	quote, err := h.svc.ComputeOptionsChain(symbolVar(r), strike, expiry)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"option":    quote,
		"moneyness": quote.Moneyness(),
		"expiries":  h.svc.ExpiryPresets(),
	})
}

// GetLadder prices the strikes around ATM
// GET /api/options/{symbol}/ladder?expiry=30
func (h *OptionsHandler) GetLadder(w http.ResponseWriter, r *http.Request) {
	expiry, ok := queryInt(r, "expiry", defaultExpiryDays)
	if !ok {
		respondError(w, http.StatusBadRequest, "expiry must be a positive number of days")
		return
	}

	ladder, err := h.svc.StrikeLadder(symbolVar(r), expiry)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, ladder)
}
