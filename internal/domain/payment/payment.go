package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Method string

const (
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodDebitCard    Method = "DEBIT_CARD"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCash         Method = "CASH"
	MethodQRIS         Method = "QRIS"
	MethodOther        Method = "OTHER"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCash, MethodQRIS, MethodOther:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

type Payment struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registrationId"`
	Method         Method    `json:"paymentMethod"`
	Status         Status    `json:"paymentStatus"`
	AmountPaid     int       `json:"amountPaid"` // smallest currency unit
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("payment not found")
	ErrInvalidMethod = errors.New("invalid payment method")
	ErrInvalidStatus = errors.New("invalid payment status")
)

type CreatePaymentRequest struct {
	RegistrationID string `json:"registrationId" binding:"required,uuid"`
	Method         Method `json:"paymentMethod" binding:"required,oneof=CREDIT_CARD DEBIT_CARD BANK_TRANSFER CASH QRIS OTHER"`
	Status         Status `json:"paymentStatus" binding:"required,oneof=pending completed failed cancelled"`
	AmountPaid     int    `json:"amountPaid" binding:"min=0"`
}

type Patch struct {
	Method     *Method `json:"paymentMethod" binding:"omitempty,oneof=CREDIT_CARD DEBIT_CARD BANK_TRANSFER CASH QRIS OTHER"`
	Status     *Status `json:"paymentStatus" binding:"omitempty,oneof=pending completed failed cancelled"`
	AmountPaid *int    `json:"amountPaid" binding:"omitempty,min=0"`
}

func (p Patch) Apply(pay *Payment) error {
	if p.Method != nil {
		if !p.Method.IsValid() {
			return ErrInvalidMethod
		}
		pay.Method = *p.Method
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return ErrInvalidStatus
		}
		pay.Status = *p.Status
	}
	if p.AmountPaid != nil {
		pay.AmountPaid = *p.AmountPaid
	}
	return nil
}

func NewFromCreateRequest(req CreatePaymentRequest) Payment {
	now := time.Now().UTC()

	return Payment{
		ID:             uuid.NewString(),
		RegistrationID: req.RegistrationID,
		Method:         req.Method,
		Status:         req.Status,
		AmountPaid:     req.AmountPaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
