package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/quantedge/internal/api/handlers"
	"github.com/wonny/quantedge/pkg/logger"
)

// Handlers groups the route handlers
type Handlers struct {
	Quotes   *handlers.QuoteHandler
	Options  *handlers.OptionsHandler
	Forecast *handlers.ForecastHandler
	Stream   *handlers.StreamHub
	Metrics  http.Handler // nil = /metrics disabled
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods("GET")
	}
	if h.Stream != nil {
		r.HandleFunc("/ws/quotes", h.Stream.ServeWS).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Quote endpoints
	api.HandleFunc("/status", h.Quotes.GetStatus).Methods("GET")
	api.HandleFunc("/sectors", h.Quotes.GetSectors).Methods("GET")
	api.HandleFunc("/quotes", h.Quotes.ListQuotes).Methods("GET")
	api.HandleFunc("/quotes/refresh", h.Quotes.Refresh).Methods("POST")
	api.HandleFunc("/quotes/{symbol}", h.Quotes.GetQuote).Methods("GET")

	// Analytics endpoints
	api.HandleFunc("/options/{symbol}", h.Options.GetOption).Methods("GET")
	api.HandleFunc("/options/{symbol}/ladder", h.Options.GetLadder).Methods("GET")
	api.HandleFunc("/forecast/{symbol}", h.Forecast.GetForecast).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "quantedge-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
