package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/domain/job"
	"github.com/dicoevent/dicoevent/internal/domain/registration"
	"github.com/dicoevent/dicoevent/internal/domain/ticket"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/dicoevent/dicoevent/internal/jobs"
	"github.com/dicoevent/dicoevent/internal/repo/postgres"
	"github.com/dicoevent/dicoevent/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// JobsCreator lets the registration flow enqueue the confirmation email in
// the same transaction as the registration row.
type JobsCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
	CreateTx(ctx context.Context, tx pgx.Tx, req job.CreateRequest) (job.Job, error)
	GetByIdempotencyKey(ctx context.Context, key string) (job.Job, error)
}

type RegistrationsHandler struct {
	regs *postgres.RegistrationsRepo
	jobs JobsCreator
}

func NewRegistrationsHandler(regs *postgres.RegistrationsRepo, jobsRepo JobsCreator) *RegistrationsHandler {
	return &RegistrationsHandler{regs: regs, jobs: jobsRepo}
}

func respondRegistrationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		RespondNotFound(ctx, "Registration not found")
	case errors.Is(err, ticket.ErrNotFound):
		RespondBadRequest(ctx, "Ticket does not exist", nil)
	case errors.Is(err, user.ErrNotFound):
		RespondBadRequest(ctx, "User does not exist", nil)
	case errors.Is(err, registration.ErrSalesNotStarted):
		RespondBadRequest(ctx, "Ticket sales have not started yet", nil)
	case errors.Is(err, registration.ErrSalesEnded):
		RespondBadRequest(ctx, "Ticket sales have ended", nil)
	case errors.Is(err, registration.ErrQuotaFull):
		RespondConflict(ctx, "quota_full", "Ticket quota is full.")
	case errors.Is(err, registration.ErrAlreadyRegistered):
		RespondConflict(ctx, "already_registered", "User already registered for this ticket.")
	default:
		RespondInternal(ctx, "Could not process registration")
	}
}

// POST /registrations
//
// Admission and the confirmation job commit in one transaction: the ticket
// row is locked, the chain of checks runs against the locked state, and the
// email job becomes visible to the worker only if the registration lands.

func (h *RegistrationsHandler) Register(ctx *gin.Context) {
	var req registration.CreateRegistrationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// end users register themselves, never on behalf of someone else
	actorID, _ := middlewares.UserIDFromContext(ctx)

	if req.UserID != actorID {
		RespondForbidden(ctx, "You may only register yourself")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	tx, err := h.regs.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not process registration")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	reg, err := h.regs.CreateTx(cctx, tx, req)

	if err != nil {
		respondRegistrationError(ctx, err)
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobTicketConfirmation, jobs.TicketConfirmationPayload{
		RegistrationID: reg.ID,
		Email:          reg.User.Email,
		Username:       reg.User.Username,
		RequestedAt:    time.Now().UTC(),
	})

	if err != nil {
		RespondInternal(ctx, "Could not process registration")
		return
	}

	key := "registration:confirm:" + reg.ID

	_, err = h.jobs.CreateTx(cctx, tx, job.CreateRequest{
		Type:           string(jobs.JobTicketConfirmation),
		Payload:        json.RawMessage(payload),
		MaxAttempts:    10,
		IdempotencyKey: &key,
		UserID:         &reg.User.ID,
	})

	if err != nil && !postgres.IsUniqueViolation(err) {
		RespondInternal(ctx, "Could not process registration")
		return
	}

	if err := tx.Commit(cctx); err != nil {
		RespondInternal(ctx, "Could not process registration")
		return
	}

	ctx.JSON(http.StatusCreated, reg)
}

// GET /registrations

func (h *RegistrationsHandler) ListRegistrations(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	regs, total, err := h.regs.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list registrations")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "registrations", total, page, regs))
}

// GET /registrations/:id

func (h *RegistrationsHandler) GetRegistrationById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid registration id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	reg, err := h.regs.GetByID(cctx, id)

	if err != nil {
		respondRegistrationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, reg)
}

// DELETE /registrations/:id

func (h *RegistrationsHandler) DeleteRegistration(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid registration id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.regs.Delete(cctx, id); err != nil {
		respondRegistrationError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
