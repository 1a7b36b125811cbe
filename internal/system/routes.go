package system

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avrhub/avr-hub-go/internal/api"
	"github.com/avrhub/avr-hub-go/internal/apperrors"
)

// RegisterRoutes wires system routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		ok, status := service.Healthy()
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		return api.WriteJSON(w, code, map[string]any{
			"status":    status,
			"service":   "avr-hub",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}))

	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))

	router.Method(http.MethodGet, "/v1/system/info", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		info, err := service.GetSystemInfo()
		if err != nil {
			return apperrors.NewInternalError("Failed to get system info")
		}
		return api.WriteResource(w, http.StatusOK, info)
	}))
}
