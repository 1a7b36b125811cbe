package avr

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avrhub/avr-hub-go/internal/api"
	"github.com/avrhub/avr-hub-go/internal/apperrors"
)

// ZoneResource is the API representation of one zone.
type ZoneResource struct {
	Object            string   `json:"object"` // Always "zone"
	ID                string   `json:"id"`
	Available         bool     `json:"available"`
	StrictlyAvailable bool     `json:"strictly_available"`
	Power             *bool    `json:"power"`
	VolumeRaw         *int     `json:"volume_raw"`
	VolumeMax         *int     `json:"volume_max"`
	VolumeLevel       float64  `json:"volume_level"`
	VolumeDB          *float64 `json:"volume_db"`
	Muted             *bool    `json:"muted"`
	SourceID          *string  `json:"source_id"`
	SourceName        *string  `json:"source_name"`
	ListeningMode     *string  `json:"listening_mode"`
	Capabilities      []string `json:"capabilities"`
	UpdatedAt         *string  `json:"updated_at"`
}

// CommandRequest is the POST body for the command endpoint.
type CommandRequest struct {
	Kind   CommandKind   `json:"kind"`
	Params CommandParams `json:"params"`
}

// CommandResult is the response for the command endpoint.
type CommandResult struct {
	Object  string      `json:"object"` // Always "command_result"
	Zone    ZoneID      `json:"zone"`
	Kind    CommandKind `json:"kind"`
	Outcome Outcome     `json:"outcome"`
}

// RegisterRoutes wires the zone control surface to the router.
func RegisterRoutes(router chi.Router, ctrl *Controller, sources *SourceTable) {
	router.Method(http.MethodGet, "/v1/zones", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		zones := ctrl.Zones()
		resources := make([]ZoneResource, 0, len(zones))
		for _, zone := range zones {
			resource, err := BuildZoneResource(ctrl, sources, zone)
			if err != nil {
				return apperrors.NewInternalError("Failed to read zone state")
			}
			resources = append(resources, resource)
		}
		return api.WriteList(w, "/v1/zones", resources, false)
	}))

	router.Method(http.MethodGet, "/v1/zones/{zone}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		zone := ZoneID(chi.URLParam(r, "zone"))

		resource, err := BuildZoneResource(ctrl, sources, zone)
		if err != nil {
			if errors.Is(err, ErrZoneNotFound) {
				return apperrors.NewNotFoundResource("Zone", string(zone))
			}
			return apperrors.NewInternalError("Failed to read zone state")
		}
		return api.WriteResource(w, http.StatusOK, resource)
	}))

	router.Method(http.MethodPost, "/v1/zones/{zone}/commands", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		zone := ZoneID(chi.URLParam(r, "zone"))

		var req CommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("Invalid request body", nil)
		}
		if req.Kind == "" {
			return apperrors.NewValidationError("kind is required", nil)
		}

		cmd := Command{Zone: zone, Kind: req.Kind, Params: req.Params}
		outcome, err := ctrl.ExecuteCommand(r.Context(), cmd)
		if err != nil {
			return commandError(cmd, outcome, err)
		}

		return api.WriteAction(w, http.StatusOK, CommandResult{
			Object:  "command_result",
			Zone:    zone,
			Kind:    req.Kind,
			Outcome: outcome,
		})
	}))

	router.Method(http.MethodPost, "/v1/zones/refresh", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		if err := ctrl.Refresh(r.Context()); err != nil {
			return apperrors.NewDeviceUnavailableError("Refresh failed: device did not respond")
		}
		return api.WriteAction(w, http.StatusOK, map[string]any{
			"object":    "refresh_result",
			"refreshed": true,
		})
	}))
}

// commandError maps an execution failure to the API error envelope. The
// outcome decides the class; for rejections the wrapped cause picks the
// status.
func commandError(cmd Command, outcome Outcome, err error) error {
	if outcome == OutcomeExhausted {
		return apperrors.NewCommandExhaustedError(err.Error())
	}

	switch {
	case errors.Is(err, ErrZoneNotFound):
		return apperrors.NewNotFoundResource("Zone", string(cmd.Zone))
	case errors.Is(err, ErrDeviceUnavailable):
		return apperrors.NewDeviceUnavailableError("Device is unavailable")
	default:
		return apperrors.NewCommandRejectedError(err.Error(), map[string]any{
			"zone": string(cmd.Zone),
			"kind": string(cmd.Kind),
		})
	}
}

// BuildZoneResource assembles the API view of a zone from the current
// snapshot. The websocket stream reuses it for state pushes.
func BuildZoneResource(ctrl *Controller, sources *SourceTable, zone ZoneID) (ZoneResource, error) {
	state, err := ctrl.State(zone)
	if err != nil {
		return ZoneResource{}, err
	}
	caps, err := ctrl.Capabilities(zone)
	if err != nil {
		return ZoneResource{}, err
	}

	resource := ZoneResource{
		Object:            "zone",
		ID:                string(zone),
		Available:         ctrl.ZoneAvailable(zone),
		StrictlyAvailable: ctrl.ZoneStrictlyAvailable(zone),
		Power:             state.Power,
		VolumeRaw:         state.VolumeRaw,
		VolumeMax:         state.VolumeMax,
		VolumeLevel:       state.VolumeLevel(),
		Muted:             state.Muted,
		SourceID:          state.SourceID,
		ListeningMode:     state.ListeningMode,
		Capabilities:      caps.Names(),
	}

	if db, ok := VolumeDB(zone, state); ok {
		resource.VolumeDB = &db
	}
	if sources != nil && state.SourceID != nil {
		if name, lookupErr := sources.Name(*state.SourceID); lookupErr == nil {
			resource.SourceName = &name
		}
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt.Format(time.RFC3339)
		resource.UpdatedAt = &updated
	}

	return resource, nil
}
