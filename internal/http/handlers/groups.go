package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/domain/group"
	"github.com/dicoevent/dicoevent/internal/utils"
	"github.com/gin-gonic/gin"
)

type GroupsStore interface {
	Create(ctx context.Context, g group.Group) (group.Group, error)
	GetByID(ctx context.Context, id string) (group.Group, error)
	List(ctx context.Context, limit, offset int) ([]group.Group, int, error)
	Update(ctx context.Context, g group.Group) (group.Group, error)
	Delete(ctx context.Context, id string) error
}

type GroupsHandler struct {
	groups GroupsStore
}

func NewGroupsHandler(groups GroupsStore) *GroupsHandler {
	return &GroupsHandler{groups: groups}
}

func respondGroupError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, group.ErrNotFound):
		RespondNotFound(ctx, "Group not found")
	case errors.Is(err, group.ErrNameTaken):
		RespondConflict(ctx, "name_taken", "A group with that name already exists.")
	default:
		RespondInternal(ctx, "Could not process group")
	}
}

// POST /groups

func (h *GroupsHandler) CreateGroup(ctx *gin.Context) {
	var req group.CreateGroupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	created, err := h.groups.Create(cctx, group.NewFromCreateRequest(req))

	if err != nil {
		respondGroupError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// GET /groups

func (h *GroupsHandler) ListGroups(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	groups, total, err := h.groups.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list groups")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "groups", total, page, groups))
}

// GET /groups/:id

func (h *GroupsHandler) GetGroupById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid group id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	g, err := h.groups.GetByID(cctx, id)

	if err != nil {
		respondGroupError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, g)
}

// PUT /groups/:id

func (h *GroupsHandler) UpdateGroup(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid group id", nil)
		return
	}

	var patch group.Patch

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	current, err := h.groups.GetByID(cctx, id)

	if err != nil {
		respondGroupError(ctx, err)
		return
	}

	patch.Apply(&current)

	updated, err := h.groups.Update(cctx, current)

	if err != nil {
		respondGroupError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// DELETE /groups/:id

func (h *GroupsHandler) DeleteGroup(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid group id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.groups.Delete(cctx, id); err != nil {
		respondGroupError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
