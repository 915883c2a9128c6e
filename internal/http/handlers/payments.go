package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/domain/payment"
	"github.com/dicoevent/dicoevent/internal/domain/registration"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/dicoevent/dicoevent/internal/utils"
	"github.com/gin-gonic/gin"
)

type PaymentsStore interface {
	Create(ctx context.Context, p payment.Payment) (payment.Payment, error)
	GetByID(ctx context.Context, id string) (payment.Payment, error)
	List(ctx context.Context, limit, offset int) ([]payment.Payment, int, error)
	Update(ctx context.Context, p payment.Payment) (payment.Payment, error)
	Delete(ctx context.Context, id string) error
}

// RegistrationReader resolves the registration a payment is being made for.
type RegistrationReader interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
}

type PaymentsHandler struct {
	payments PaymentsStore
	regs     RegistrationReader
}

func NewPaymentsHandler(payments PaymentsStore, regs RegistrationReader) *PaymentsHandler {
	return &PaymentsHandler{payments: payments, regs: regs}
}

func respondPaymentError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrNotFound):
		RespondNotFound(ctx, "Payment not found")
	case errors.Is(err, registration.ErrNotFound):
		RespondBadRequest(ctx, "Registration does not exist", nil)
	case errors.Is(err, payment.ErrInvalidMethod):
		RespondBadRequest(ctx, "Invalid payment method", nil)
	case errors.Is(err, payment.ErrInvalidStatus):
		RespondBadRequest(ctx, "Invalid payment status", nil)
	default:
		RespondInternal(ctx, "Could not process payment")
	}
}

// POST /payments

func (h *PaymentsHandler) CreatePayment(ctx *gin.Context) {
	var req payment.CreatePaymentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// a user pays for their own registration only
	reg, err := h.regs.GetByID(cctx, req.RegistrationID)

	if err != nil {
		respondPaymentError(ctx, err)
		return
	}

	actorID, _ := middlewares.UserIDFromContext(ctx)

	if reg.User.ID != actorID {
		RespondForbidden(ctx, "You may only pay for your own registrations")
		return
	}

	created, err := h.payments.Create(cctx, payment.NewFromCreateRequest(req))

	if err != nil {
		respondPaymentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// GET /payments

func (h *PaymentsHandler) ListPayments(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	payments, total, err := h.payments.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list payments")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "payments", total, page, payments))
}

// GET /payments/:id

func (h *PaymentsHandler) GetPaymentById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid payment id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.payments.GetByID(cctx, id)

	if err != nil {
		respondPaymentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// PUT /payments/:id

func (h *PaymentsHandler) UpdatePayment(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid payment id", nil)
		return
	}

	var patch payment.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.payments.GetByID(cctx, id)

	if err != nil {
		respondPaymentError(ctx, err)
		return
	}

	if err := patch.Apply(&current); err != nil {
		respondPaymentError(ctx, err)
		return
	}

	updated, err := h.payments.Update(cctx, current)

	if err != nil {
		respondPaymentError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// DELETE /payments/:id

func (h *PaymentsHandler) DeletePayment(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid payment id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.payments.Delete(cctx, id); err != nil {
		respondPaymentError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
