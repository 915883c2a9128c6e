package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobTicketConfirmation:
		if _, ok := payload.(TicketConfirmationPayload); !ok {
			if _, ok2 := payload.(*TicketConfirmationPayload); !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}

	case JobEventReminder:
		if _, ok := payload.(EventReminderPayload); !ok {
			if _, ok2 := payload.(*EventReminderPayload); !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals raw payload bytes into the typed payload struct
// for the given job type.
func DecodePayload(t JobType, raw []byte) (any, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(raw) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch t {
	case JobTicketConfirmation:
		var p TicketConfirmationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	case JobEventReminder:
		var p EventReminderPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

// ValidatePayload performs minimal shape validation on decoded payloads.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := strings.TrimSpace

	switch t {
	case JobTicketConfirmation:
		var p TicketConfirmationPayload
		switch v := payload.(type) {
		case TicketConfirmationPayload:
			p = v
		case *TicketConfirmationPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.RegistrationID) == "" || trim(p.Email) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobEventReminder:
		var p EventReminderPayload
		switch v := payload.(type) {
		case EventReminderPayload:
			p = v
		case *EventReminderPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.EventID) == "" || trim(p.Email) == "" || trim(p.StartTime) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
