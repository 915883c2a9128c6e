package jobs

import (
	"testing"
	"time"
)

func TestEncodeDecode_EventReminder(t *testing.T) {
	payload := EventReminderPayload{
		RegistrationID: "r-1",
		EventID:        "e-1",
		EventName:      "GopherCon",
		Email:          "alice@example.com",
		Username:       "alice",
		StartTime:      time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}

	b, err := EncodePayload(JobEventReminder, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	decoded, err := DecodePayload(JobEventReminder, b)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(EventReminderPayload)
	if !ok {
		t.Fatalf("expected EventReminderPayload, got %T", decoded)
	}

	if p.Email != payload.Email || p.StartTime != payload.StartTime {
		t.Fatalf("round trip mismatch: %+v", p)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobEventReminder, TicketConfirmationPayload{
		RegistrationID: "r-1",
		Email:          "a@b.c",
	})
	if err != ErrPayloadTypeMismatch {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestValidatePayload_RequiredFields(t *testing.T) {
	err := ValidatePayload(JobTicketConfirmation, TicketConfirmationPayload{Email: "a@b.c"})
	if err == nil {
		t.Fatalf("expected error for missing registration id")
	}

	err = ValidatePayload(JobEventReminder, EventReminderPayload{EventID: "e", Email: "a@b.c"})
	if err == nil {
		t.Fatalf("expected error for missing start time")
	}
}

func TestDecodePayload_UnknownType(t *testing.T) {
	if _, err := DecodePayload(JobType("mystery"), []byte("{}")); err != ErrInvalidJobType {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}
