package event

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateEventRequest) Event {
	now := time.Now().UTC()

	return Event{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      req.Status,
		Quota:       req.Quota,
		Category:    req.Category,
		OrganizerID: req.OrganizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
