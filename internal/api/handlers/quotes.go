package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/quantedge/internal/analytics"
	"github.com/wonny/quantedge/pkg/logger"
)

// QuoteHandler serves the quote board and feed status
// ⭐ SSOT: 시세 API 핸들러는 이 구조체에서만
type QuoteHandler struct {
	svc    *analytics.Service
	logger *logger.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(svc *analytics.Service, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		svc:    svc,
		logger: log,
	}
}

// GetStatus returns the feed connectivity
// GET /api/status
func (h *QuoteHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Status())
}

// ListQuotes returns the board, optionally filtered
// GET /api/quotes?q=tata&sector=Auto
func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows := h.svc.Board(q.Get("q"), q.Get("sector"))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": h.svc.Status(),
		"count":  len(rows),
		"rows":   rows,
	})
}

// GetQuote returns one symbol's latest quote
// GET /api/quotes/{symbol}
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := symbolVar(r)

	inst, err := h.svc.Instrument(symbol)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	quote, ok := h.svc.CurrentQuote(symbol)
	if !ok {
		respondError(w, http.StatusNotFound, "no quote yet for "+symbol)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"instrument": inst,
		"quote":      quote,
	})
}

// Refresh triggers an out-of-cycle refresh and waits for it
// POST /api/quotes/refresh
func (h *QuoteHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.svc.Refresh(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Manual refresh abandoned")
		respondError(w, http.StatusGatewayTimeout, "refresh still running")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"cycle":     result.ID,
		"coalesced": result.Coalesced,
	}).Info("Manual refresh completed")

	respondJSON(w, http.StatusOK, result)
}

// GetSectors returns the sector filters
// GET /api/sectors
func (h *QuoteHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sectors": h.svc.Sectors(),
	})
}
