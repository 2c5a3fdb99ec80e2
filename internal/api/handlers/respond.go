package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps facade errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, contracts.ErrUnknownSymbol):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contracts.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contracts.ErrQuoteUnavailable), errors.Is(err, contracts.ErrNoHistory):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// symbolVar reads {symbol} from the route, upper-cased
func symbolVar(r *http.Request) string {
	return strings.ToUpper(mux.Vars(r)["symbol"])
}

// queryInt parses an optional positive integer query parameter
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
