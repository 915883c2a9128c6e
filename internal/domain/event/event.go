package event

import (
	"errors"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/user"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Event struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     time.Time    `json:"endTime"`
	Status      Status       `json:"status"`
	Quota       int          `json:"quota"`
	Category    string       `json:"category"`
	OrganizerID string       `json:"-"`
	Organizer   user.Summary `json:"organizer"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

var (
	ErrNotFound  = errors.New("event not found")
	ErrTimeOrder = errors.New("start time must be before end time")
)

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=3,max=255"`
	Description string    `json:"description" binding:"required"`
	Location    string    `json:"location" binding:"required,max=255"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	Status      Status    `json:"status" binding:"required,oneof=scheduled completed cancelled"`
	Quota       int       `json:"quota" binding:"required,min=1"`
	Category    string    `json:"category" binding:"required,max=50"`
	OrganizerID string    `json:"organizerId" binding:"required,uuid"`
}

func (r CreateEventRequest) Validate() error {
	if !r.StartTime.Before(r.EndTime) {
		return ErrTimeOrder
	}
	return nil
}

// Patch is a partial update; nil fields are left untouched. Changing the
// organizer re-validates that the user exists (repo concern).
type Patch struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string    `json:"description"`
	Location    *string    `json:"location" binding:"omitempty,max=255"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Status      *Status    `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Quota       *int       `json:"quota" binding:"omitempty,min=1"`
	Category    *string    `json:"category" binding:"omitempty,max=50"`
	OrganizerID *string    `json:"organizerId" binding:"omitempty,uuid"`
}

// Apply copies the set fields onto e and re-checks the time ordering
// invariant over the merged result.
func (p Patch) Apply(e *Event) error {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Quota != nil {
		e.Quota = *p.Quota
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.OrganizerID != nil {
		e.OrganizerID = *p.OrganizerID
	}

	if !e.StartTime.Before(e.EndTime) {
		return ErrTimeOrder
	}
	return nil
}
