package group

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Groups are near-static reference data ("admin", "organizer", ...).
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (g Group) Summary() Summary {
	return Summary{ID: g.ID, Name: g.Name}
}

var (
	ErrNotFound  = errors.New("group not found")
	ErrNameTaken = errors.New("group name already exists")
)

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type Patch struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
}

func (p Patch) Apply(g *Group) {
	if p.Name != nil {
		g.Name = *p.Name
	}
}

func NewFromCreateRequest(req CreateGroupRequest) Group {
	return Group{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}
}
