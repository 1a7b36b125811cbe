package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avrhub/avr-hub-go/internal/api"
	"github.com/avrhub/avr-hub-go/internal/apperrors"
	"github.com/avrhub/avr-hub-go/internal/config"
)

type tokenRequest struct {
	PairingKey string `json:"pairing_key"`
	DeviceName string `json:"device_name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterRoutes wires auth routes to the router.
func RegisterRoutes(router chi.Router, cfg config.Config) {
	router.Method(http.MethodPost, "/v1/auth/token", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("Invalid JSON body", nil)
		}
		if req.DeviceName == "" {
			return apperrors.NewValidationError("device_name is required", nil)
		}
		if cfg.PairingKey == "" {
			return apperrors.NewForbiddenError("Pairing is not configured on this hub")
		}
		if subtle.ConstantTimeCompare([]byte(req.PairingKey), []byte(cfg.PairingKey)) != 1 {
			return apperrors.NewUnauthorizedError("Invalid pairing key")
		}

		pair, err := GenerateTokenPair(cfg, TokenPayload{
			Sub:        uuid.NewString(),
			DeviceName: req.DeviceName,
		})
		if err != nil {
			return apperrors.NewInternalError("Failed to issue tokens")
		}

		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
			"expires_in":    pair.ExpiresInSec,
			"token_type":    "Bearer",
		})
	}))

	router.Method(http.MethodPost, "/v1/auth/refresh", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("Invalid JSON body", nil)
		}
		if req.RefreshToken == "" {
			return apperrors.NewValidationError("refresh_token is required", nil)
		}

		accessToken, expiresIn, err := RefreshAccessToken(cfg, req.RefreshToken)
		if err != nil {
			if err == ErrTokenExpired {
				return apperrors.NewUnauthorizedError("Refresh token has expired", apperrors.ErrorCodeAuthTokenExpired)
			}
			return apperrors.NewUnauthorizedError("Invalid refresh token", apperrors.ErrorCodeAuthTokenInvalid)
		}

		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"access_token": accessToken,
			"expires_in":   expiresIn,
			"token_type":   "Bearer",
		})
	}))
}
