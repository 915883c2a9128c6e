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
	"github.com/dicoevent/dicoevent/internal/domain/ticket"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/dicoevent/dicoevent/internal/observability"
	"github.com/gin-gonic/gin"

	"github.com/dicoevent/dicoevent/internal/utils"
)

type TicketsStore interface {
	Create(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error)
	GetByID(ctx context.Context, id string) (ticket.Ticket, error)
	List(ctx context.Context, limit, offset int) ([]ticket.Ticket, int, error)
	Update(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error)
	Delete(ctx context.Context, id string) error
	EventOf(ctx context.Context, id string) (string, error)
}

// OrganizerResolver answers who organizes an event; ticket ownership is
// inherited through the parent event.
type OrganizerResolver interface {
	OrganizerOf(ctx context.Context, eventID string) (string, error)
}

type TicketsHandler struct {
	tickets    TicketsStore
	organizers OrganizerResolver
	cache      *cache.DetailCache
	prom       *observability.Prom
}

func NewTicketsHandler(tickets TicketsStore, organizers OrganizerResolver) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, organizers: organizers}
}

func NewTicketsHandlerWithCache(tickets TicketsStore, organizers OrganizerResolver, c *cache.DetailCache, prom *observability.Prom) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, organizers: organizers, cache: c, prom: prom}
}

func respondTicketError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		RespondNotFound(ctx, "Ticket not found")
	case errors.Is(err, ticket.ErrSalesOrder):
		RespondBadRequest(ctx, "Sales start must be before sales end", nil)
	case errors.Is(err, event.ErrNotFound):
		RespondBadRequest(ctx, "Event does not exist", nil)
	default:
		RespondInternal(ctx, "Could not process ticket")
	}
}

func (h *TicketsHandler) countCache(outcome string) {
	if h.prom != nil {
		h.prom.CacheRequests.WithLabelValues("ticket", outcome).Inc()
	}
}

// POST /tickets

func (h *TicketsHandler) CreateTicket(ctx *gin.Context) {
	var req ticket.CreateTicketRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		respondTicketError(ctx, err)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.tickets.Create(cctx, ticket.NewFromCreateRequest(req))

	if err != nil {
		respondTicketError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// GET /tickets

func (h *TicketsHandler) ListTickets(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tickets, total, err := h.tickets.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list tickets")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "tickets", total, page, tickets))
}

// GET /tickets/:id

func (h *TicketsHandler) GetTicketById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid ticket id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if h.cache != nil {
		if b, ok := h.cache.Get(cctx, string(authz.KindTicket), id); ok {
			h.countCache("hit")
			ctx.Header(sourceHeader, string(cache.SourceCache))
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
		h.countCache("miss")
	}

	t, err := h.tickets.GetByID(cctx, id)

	if err != nil {
		respondTicketError(ctx, err)
		return
	}

	if h.cache != nil {
		if b, merr := json.Marshal(t); merr == nil {
			h.cache.Put(cctx, string(authz.KindTicket), id, b)
		}
	}

	ctx.Header(sourceHeader, string(cache.SourceStore))
	ctx.JSON(http.StatusOK, t)
}

// PUT /tickets/:id

func (h *TicketsHandler) UpdateTicket(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid ticket id", nil)
		return
	}

	var patch ticket.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.tickets.GetByID(cctx, id)

	if err != nil {
		respondTicketError(ctx, err)
		return
	}

	if !h.permitObject(ctx, cctx, authz.ActionUpdate, current.EventID) {
		return
	}

	if err := patch.Apply(&current); err != nil {
		respondTicketError(ctx, err)
		return
	}

	updated, err := h.tickets.Update(cctx, current)

	if err != nil {
		respondTicketError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, string(authz.KindTicket), id)
	}

	ctx.JSON(http.StatusOK, updated)
}

// DELETE /tickets/:id

func (h *TicketsHandler) DeleteTicket(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid ticket id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	eventID, err := h.tickets.EventOf(cctx, id)

	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			RespondNotFound(ctx, "Ticket not found")
			return
		}
		RespondInternal(ctx, "Could not process ticket")
		return
	}

	if !h.permitObject(ctx, cctx, authz.ActionDelete, eventID) {
		return
	}

	if err := h.tickets.Delete(cctx, id); err != nil {
		respondTicketError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, string(authz.KindTicket), id)
	}

	ctx.Status(http.StatusNoContent)
}

func (h *TicketsHandler) permitObject(ctx *gin.Context, cctx context.Context, action authz.Action, eventID string) bool {
	actor := middlewares.ActorFromContext(ctx)

	// super and admin skip the lookup; only organizer-scoped actors need it
	organizerID := ""

	if actor.IsOrganizer() && !actor.IsSuper() && !actor.IsAdmin() {
		var err error
		organizerID, err = h.organizers.OrganizerOf(cctx, eventID)

		if err != nil {
			RespondInternal(ctx, "Could not process ticket")
			return false
		}
	}

	if err := authz.DecideObject(actor, action, authz.KindTicket, organizerID); err != nil {
		if errors.Is(err, authz.ErrUnauthorized) {
			RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
			return false
		}

		RespondForbidden(ctx, "You may only modify tickets of events you organize")
		return false
	}

	return true
}
