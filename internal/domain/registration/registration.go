package registration

import (
	"errors"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/ticket"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/google/uuid"
)

type Registration struct {
	ID           string         `json:"id"`
	TicketID     string         `json:"-"`
	UserID       string         `json:"-"`
	User         user.Summary   `json:"user"`
	Ticket       ticket.Summary `json:"ticket"`
	RegisteredAt time.Time      `json:"registeredAt"`
}

var (
	ErrNotFound          = errors.New("registration not found")
	ErrSalesNotStarted   = errors.New("ticket sales have not started yet")
	ErrSalesEnded        = errors.New("ticket sales have ended")
	ErrQuotaFull         = errors.New("ticket quota is full")
	ErrAlreadyRegistered = errors.New("user already registered for this ticket")
)

type CreateRegistrationRequest struct {
	TicketID string `json:"ticketId" binding:"required,uuid"`
	UserID   string `json:"userId" binding:"required,uuid"`
}

func NewFromCreateRequest(req CreateRegistrationRequest) Registration {
	return Registration{
		ID:           uuid.NewString(),
		TicketID:     req.TicketID,
		UserID:       req.UserID,
		RegisteredAt: time.Now().UTC(),
	}
}
