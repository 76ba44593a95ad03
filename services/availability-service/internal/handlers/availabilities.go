package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/meetslots/libs/httpx"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Instants are rendered in UTC with millisecond precision.
const instantLayout = "2006-01-02T15:04:05.000Z"

type RosterReader interface {
	UsersByIDs(ctx context.Context, ids []int) ([]model.User, error)
}

type AvailabilityHandler struct {
	roster RosterReader
	logger *slog.Logger
	limits QueryLimits
}

func NewAvailabilityHandler(roster RosterReader, logger *slog.Logger, limits QueryLimits) *AvailabilityHandler {
	return &AvailabilityHandler{roster: roster, logger: logger, limits: limits}
}

type windowItem struct {
	Attendees []int  `json:"attendees"`
	StartedAt string `json:"startedAt"`
	EndedAt   string `json:"endedAt"`
}

type availabilitiesResponse struct {
	Availabilities []windowItem `json:"availabilities"`
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := ParseAvailabilityQuery(r.URL.Query(), h.limits)
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	stored, err := h.roster.UsersByIDs(ctx, q.UserIDs)
	if err != nil {
		h.logger.Error("load roster failed", "err", err, "request_id", httpx.RequestIDFromContext(ctx))
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	users, err := model.ToAvailability(stored)
	if err != nil {
		h.logger.Error("roster conversion failed", "err", err, "request_id", httpx.RequestIDFromContext(ctx))
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if missing := missingIDs(q.UserIDs, users); len(missing) > 0 {
		h.logger.Info("requested users not found", "user_ids", missing, "request_id", httpx.RequestIDFromContext(ctx))
	}

	windows := compute(ctx, q, users)

	items := make([]windowItem, 0, len(windows))
	for _, win := range windows {
		items = append(items, windowItem{
			Attendees: win.Attendees,
			StartedAt: win.Start.UTC().Format(instantLayout),
			EndedAt:   win.End.UTC().Format(instantLayout),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, availabilitiesResponse{Availabilities: items})
}

func compute(ctx context.Context, q availability.Query, users []availability.User) []availability.Window {
	_, span := otel.Tracer("availability").Start(ctx, "availability.compute")
	defer span.End()

	started := time.Now()
	windows := availability.Compute(q, users)
	span.SetAttributes(
		attribute.Int("availability.slices", q.Slices()),
		attribute.Int("availability.users.requested", len(q.UserIDs)),
		attribute.Int("availability.users.found", len(users)),
		attribute.Int("availability.windows", len(windows)),
		attribute.Int64("availability.duration_us", time.Since(started).Microseconds()),
	)
	return windows
}

func missingIDs(requested []int, users []availability.User) []int {
	found := make(map[int]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}
	var missing []int
	for _, id := range requested {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
