package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	PasswordHash string    `json:"-"` // empty hash means the password is unusable
	Superuser    bool      `json:"superuser"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the nested shape embedded in other resources (role assignments,
// events, registrations).
type Summary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Email: u.Email}
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already in use")
	ErrUsernameTaken = errors.New("username already in use")
)

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=2,max=150"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"omitempty,max=150"`
	LastName  string `json:"lastName" binding:"omitempty,max=150"`
	// optional; absent means the account gets an unusable password
	Password string `json:"password" binding:"omitempty,min=8"`
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Username  *string `json:"username" binding:"omitempty,min=2,max=150"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"firstName" binding:"omitempty,max=150"`
	LastName  *string `json:"lastName" binding:"omitempty,max=150"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

// Apply copies the set fields onto u. Password is handled by the caller since
// it needs hashing.
func (p Patch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
}
