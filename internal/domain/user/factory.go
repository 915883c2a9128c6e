package user

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: passwordHash,
		Roles:        []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
