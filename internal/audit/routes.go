package audit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avrhub/avr-hub-go/internal/api"
	"github.com/avrhub/avr-hub-go/internal/apperrors"
)

// RegisterRoutes wires audit routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/audit/events", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		filters := parseFilters(r)

		events, _, hasMore, err := service.QueryEvents(filters)
		if err != nil {
			return apperrors.NewInternalError("Failed to query audit events")
		}

		return api.WriteList(w, "/v1/audit/events", events, hasMore)
	}))

	router.Method(http.MethodGet, "/v1/audit/events/{event_id}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		eventID := chi.URLParam(r, "event_id")

		event, err := service.GetEvent(eventID)
		if err != nil {
			var notFound *EventNotFoundError
			if errors.As(err, &notFound) {
				return apperrors.NewNotFoundResource("Audit event", eventID)
			}
			return apperrors.NewInternalError("Failed to get audit event")
		}

		return api.WriteResource(w, http.StatusOK, event)
	}))
}

func parseFilters(r *http.Request) EventQueryFilters {
	filters := EventQueryFilters{}
	query := r.URL.Query()

	if v := query.Get("type"); v != "" {
		filters.Type = &v
	}
	if v := query.Get("level"); v != "" {
		level := EventLevel(v)
		filters.Level = &level
	}
	if v := query.Get("zone"); v != "" {
		filters.ZoneID = &v
	}
	if v := query.Get("command"); v != "" {
		filters.Command = &v
	}
	if v := query.Get("request_id"); v != "" {
		filters.RequestID = &v
	}
	if v := query.Get("start_date"); v != "" {
		filters.StartDate = &v
	}
	if v := query.Get("end_date"); v != "" {
		filters.EndDate = &v
	}
	if v := query.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filters.Limit = parsed
		}
	}
	if v := query.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			filters.Offset = parsed
		}
	}

	return filters
}
