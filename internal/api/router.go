package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/freshness/internal/api/handlers"
	"github.com/wonny/freshness/internal/scheduler"
	"github.com/wonny/freshness/pkg/logger"
)

// NewRouter creates and configures the HTTP router. The scheduler may be
// nil when the sweep is disabled.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(freshnessHandler *handlers.FreshnessHandler, stream *CurrencyStream, sched *scheduler.Scheduler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(sched)).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Checkpoint recording
	api.HandleFunc("/events", freshnessHandler.RecordEvent).Methods("POST")

	// Contract-level queries
	api.HandleFunc("/contracts/{id}/stamps", freshnessHandler.GetStamps).Methods("GET")
	api.HandleFunc("/contracts/{id}/stale", freshnessHandler.GetStaleEvents).Methods("GET")
	api.HandleFunc("/contracts/{id}/current", freshnessHandler.GetIsCurrent).Methods("GET")

	// Product-group queries
	api.HandleFunc("/groups/{group}/staleness", freshnessHandler.GetGroupStaleness).Methods("GET")
	api.HandleFunc("/groups/{group}/current", freshnessHandler.GetGroupIsCurrent).Methods("GET")
	api.HandleFunc("/groups/{group}/report", freshnessHandler.GetCurrencyReport).Methods("GET")

	// Live currency stream
	r.Handle("/ws/currency", stream).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status, including the last
// sweep results when a scheduler is running
func healthCheckHandler(sched *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "freshness-api",
		}
		if sched != nil {
			body["jobs"] = sched.LastResults()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
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
