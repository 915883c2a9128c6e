package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/dicoevent/dicoevent/internal/security"
	"github.com/dicoevent/dicoevent/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context, limit, offset int) ([]user.User, int, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	users UsersStore
}

func NewUsersHandler(users UsersStore) *UsersHandler {
	return &UsersHandler{users: users}
}

func respondUserError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email is already in use.")
	case errors.Is(err, user.ErrUsernameTaken):
		RespondConflict(ctx, "username_taken", "Username is already in use.")
	default:
		RespondInternal(ctx, "Could not process user")
	}
}

// POST /users
//
// Open to unauthenticated callers: this is self sign-up. A request without a
// password creates an account that cannot log in until one is set.

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash := ""

	if req.Password != "" {
		var err error
		hash, err = security.HashPassword(req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not create user")
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.users.Create(cctx, user.NewFromCreateRequest(req, hash))

	if err != nil {
		respondUserError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// GET /users

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, total, err := h.users.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "users", total, page, users))
}

// GET /users/:id

func (h *UsersHandler) GetUserById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		respondUserError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// PUT /users/:id

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return
	}

	var patch user.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	current, err := h.users.GetByID(cctx, id)

	if err != nil {
		respondUserError(ctx, err)
		return
	}

	patch.Apply(&current)

	if patch.Password != nil {
		hash, herr := security.HashPassword(*patch.Password)

		if herr != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}

		current.PasswordHash = hash
	}

	updated, err := h.users.Update(cctx, current)

	if err != nil {
		respondUserError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// DELETE /users/:id

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, id); err != nil {
		respondUserError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
