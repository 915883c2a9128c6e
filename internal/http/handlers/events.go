package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/dicoevent/dicoevent/internal/cache"
	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/domain/event"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/dicoevent/dicoevent/internal/observability"
	"github.com/dicoevent/dicoevent/internal/repo/postgres"
	"github.com/dicoevent/dicoevent/internal/utils"
	"github.com/gin-gonic/gin"
)

// sourceHeader tells the client whether a detail representation came from the
// cache or straight from the store.
const sourceHeader = "X-Source"

type EventsStore interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	List(ctx context.Context, filter postgres.ListEventsFilter) ([]event.Event, int, error)
	Update(ctx context.Context, e event.Event) (event.Event, error)
	Delete(ctx context.Context, id string) error
	OrganizerOf(ctx context.Context, id string) (string, error)
}

type EventsHandler struct {
	events EventsStore
	cache  *cache.DetailCache
	prom   *observability.Prom
}

func NewEventsHandler(events EventsStore) *EventsHandler {
	return &EventsHandler{events: events}
}

func NewEventsHandlerWithCache(events EventsStore, c *cache.DetailCache, prom *observability.Prom) *EventsHandler {
	return &EventsHandler{events: events, cache: c, prom: prom}
}

func respondEventError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, event.ErrNotFound):
		RespondNotFound(ctx, "Event not found")
	case errors.Is(err, event.ErrTimeOrder):
		RespondBadRequest(ctx, "Start time must be before end time", nil)
	case errors.Is(err, user.ErrNotFound):
		RespondBadRequest(ctx, "Organizer does not exist", nil)
	default:
		RespondInternal(ctx, "Could not process event")
	}
}

func (h *EventsHandler) countCache(outcome string) {
	if h.prom != nil {
		h.prom.CacheRequests.WithLabelValues("event", outcome).Inc()
	}
}

// POST /events

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		respondEventError(ctx, err)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.events.Create(cctx, event.NewFromCreateRequest(req))

	if err != nil {
		respondEventError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// GET /events

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	filter := postgres.ListEventsFilter{Limit: limit, Offset: offset}

	if v := ctx.Query("status"); v != "" {
		if !event.Status(v).IsValid() {
			RespondBadRequest(ctx, "Invalid status filter", nil)
			return
		}
		filter.Status = &v
	}
	if v := ctx.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := ctx.Query("location"); v != "" {
		filter.Location = &v
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	events, total, err := h.events.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "events", total, page, events))
}

// GET /events/:id
//
// Detail reads go through the TTL cache; mutations below invalidate
// synchronously, so a retrieve after an update never serves the stale body.

func (h *EventsHandler) GetEventById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid event id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if h.cache != nil {
		if b, ok := h.cache.Get(cctx, string(authz.KindEvent), id); ok {
			h.countCache("hit")
			ctx.Header(sourceHeader, string(cache.SourceCache))
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
		h.countCache("miss")
	}

	e, err := h.events.GetByID(cctx, id)

	if err != nil {
		respondEventError(ctx, err)
		return
	}

	if h.cache != nil {
		if b, merr := json.Marshal(e); merr == nil {
			h.cache.Put(cctx, string(authz.KindEvent), id, b)
		}
	}

	ctx.Header(sourceHeader, string(cache.SourceStore))
	ctx.JSON(http.StatusOK, e)
}

// PUT /events/:id

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid event id", nil)
		return
	}

	var patch event.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.events.GetByID(cctx, id)

	if err != nil {
		respondEventError(ctx, err)
		return
	}

	if !h.permitObject(ctx, authz.ActionUpdate, current.OrganizerID) {
		return
	}

	if err := patch.Apply(&current); err != nil {
		respondEventError(ctx, err)
		return
	}

	updated, err := h.events.Update(cctx, current)

	if err != nil {
		respondEventError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, string(authz.KindEvent), id)
	}

	ctx.JSON(http.StatusOK, updated)
}

// DELETE /events/:id

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid event id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	organizerID, err := h.events.OrganizerOf(cctx, id)

	if err != nil {
		respondEventError(ctx, err)
		return
	}

	if !h.permitObject(ctx, authz.ActionDelete, organizerID) {
		return
	}

	if err := h.events.Delete(cctx, id); err != nil {
		respondEventError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, string(authz.KindEvent), id)
	}

	ctx.Status(http.StatusNoContent)
}

// permitObject runs the ownership rule for mutations: an organizer-only
// actor may touch only events they organize.
func (h *EventsHandler) permitObject(ctx *gin.Context, action authz.Action, organizerID string) bool {
	actor := middlewares.ActorFromContext(ctx)

	if err := authz.DecideObject(actor, action, authz.KindEvent, organizerID); err != nil {
		if errors.Is(err, authz.ErrUnauthorized) {
			RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
			return false
		}

		RespondForbidden(ctx, "You may only modify events you organize")
		return false
	}

	return true
}
