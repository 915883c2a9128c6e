package ticket

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	ID         string    `json:"id"`
	EventID    string    `json:"-"`
	EventName  string    `json:"event"`
	Name       string    `json:"name"`
	Price      int       `json:"price"` // smallest currency unit
	SalesStart time.Time `json:"salesStart"`
	SalesEnd   time.Time `json:"salesEnd"`
	Quota      int       `json:"quota"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Price      int       `json:"price"`
	SalesStart time.Time `json:"salesStart"`
	SalesEnd   time.Time `json:"salesEnd"`
	Quota      int       `json:"quota"`
}

func (t Ticket) Summary() Summary {
	return Summary{
		ID:         t.ID,
		Name:       t.Name,
		Price:      t.Price,
		SalesStart: t.SalesStart,
		SalesEnd:   t.SalesEnd,
		Quota:      t.Quota,
	}
}

var (
	ErrNotFound   = errors.New("ticket not found")
	ErrSalesOrder = errors.New("sales start must be before sales end")
)

type CreateTicketRequest struct {
	EventID    string    `json:"eventId" binding:"required,uuid"`
	Name       string    `json:"name" binding:"required,max=255"`
	Price      int       `json:"price" binding:"min=0"`
	SalesStart time.Time `json:"salesStart" binding:"required"`
	SalesEnd   time.Time `json:"salesEnd" binding:"required"`
	Quota      int       `json:"quota" binding:"required,min=1"`
}

func (r CreateTicketRequest) Validate() error {
	if !r.SalesStart.Before(r.SalesEnd) {
		return ErrSalesOrder
	}
	return nil
}

type Patch struct {
	EventID    *string    `json:"eventId" binding:"omitempty,uuid"`
	Name       *string    `json:"name" binding:"omitempty,max=255"`
	Price      *int       `json:"price" binding:"omitempty,min=0"`
	SalesStart *time.Time `json:"salesStart"`
	SalesEnd   *time.Time `json:"salesEnd"`
	Quota      *int       `json:"quota" binding:"omitempty,min=1"`
}

func (p Patch) Apply(t *Ticket) error {
	if p.EventID != nil {
		t.EventID = *p.EventID
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.SalesStart != nil {
		t.SalesStart = *p.SalesStart
	}
	if p.SalesEnd != nil {
		t.SalesEnd = *p.SalesEnd
	}
	if p.Quota != nil {
		t.Quota = *p.Quota
	}

	if !t.SalesStart.Before(t.SalesEnd) {
		return ErrSalesOrder
	}
	return nil
}

func NewFromCreateRequest(req CreateTicketRequest) Ticket {
	now := time.Now().UTC()

	return Ticket{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		Name:       req.Name,
		Price:      req.Price,
		SalesStart: req.SalesStart,
		SalesEnd:   req.SalesEnd,
		Quota:      req.Quota,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
