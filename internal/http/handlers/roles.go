package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/domain/group"
	"github.com/dicoevent/dicoevent/internal/domain/role"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/dicoevent/dicoevent/internal/utils"
	"github.com/gin-gonic/gin"
)

type RolesStore interface {
	Create(ctx context.Context, a role.Assignment) (role.Assignment, error)
	GetByID(ctx context.Context, id string) (role.Assignment, error)
	List(ctx context.Context, limit, offset int) ([]role.Assignment, int, error)
	Delete(ctx context.Context, id string) error
}

// RolesHandler manages user-to-group assignments. There is no update: a role
// is granted or revoked, never edited.
type RolesHandler struct {
	roles RolesStore
}

func NewRolesHandler(roles RolesStore) *RolesHandler {
	return &RolesHandler{roles: roles}
}

func respondRoleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, role.ErrNotFound):
		RespondNotFound(ctx, "Role assignment not found")
	case errors.Is(err, role.ErrAlreadyAssigned):
		RespondConflict(ctx, "already_assigned", "User already has that role.")
	case errors.Is(err, user.ErrNotFound):
		RespondBadRequest(ctx, "User does not exist", nil)
	case errors.Is(err, group.ErrNotFound):
		RespondBadRequest(ctx, "Group does not exist", nil)
	default:
		RespondInternal(ctx, "Could not process role assignment")
	}
}

// POST /assign-roles

func (h *RolesHandler) AssignRole(ctx *gin.Context) {
	var req role.CreateAssignmentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	created, err := h.roles.Create(cctx, role.NewFromCreateRequest(req))

	if err != nil {
		respondRoleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// GET /assign-roles

func (h *RolesHandler) ListRoles(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	assignments, total, err := h.roles.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list role assignments")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "roles", total, page, assignments))
}

// GET /assign-roles/:id

func (h *RolesHandler) GetRoleById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid role assignment id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	a, err := h.roles.GetByID(cctx, id)

	if err != nil {
		respondRoleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, a)
}

// DELETE /assign-roles/:id

func (h *RolesHandler) RevokeRole(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid role assignment id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.roles.Delete(cctx, id); err != nil {
		respondRoleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
