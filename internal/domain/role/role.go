package role

import (
	"errors"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/group"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/google/uuid"
)

// Assignment links one user to one group. A (user, group) pair is unique;
// assigning the same role twice is rejected.
type Assignment struct {
	ID        string        `json:"id"`
	UserID    string        `json:"-"`
	GroupID   string        `json:"-"`
	User      user.Summary  `json:"user"`
	Group     group.Summary `json:"group"`
	CreatedAt time.Time     `json:"createdAt"`
}

var (
	ErrNotFound        = errors.New("role assignment not found")
	ErrAlreadyAssigned = errors.New("user already has that role")
)

type CreateAssignmentRequest struct {
	UserID  string `json:"userId" binding:"required,uuid"`
	GroupID string `json:"groupId" binding:"required,uuid"`
}

func NewFromCreateRequest(req CreateAssignmentRequest) Assignment {
	return Assignment{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		GroupID:   req.GroupID,
		CreatedAt: time.Now().UTC(),
	}
}
