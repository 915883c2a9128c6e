package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/domain/event"
	"github.com/dicoevent/dicoevent/internal/domain/poster"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/dicoevent/dicoevent/internal/storage"
	"github.com/dicoevent/dicoevent/internal/utils"
	"github.com/gin-gonic/gin"
)

type PostersStore interface {
	Create(ctx context.Context, p poster.Poster) (poster.Poster, error)
	GetByID(ctx context.Context, id string) (poster.Poster, error)
	List(ctx context.Context, limit, offset int) ([]poster.Poster, int, error)
	Delete(ctx context.Context, id string) error
	EventOf(ctx context.Context, id string) (string, error)
}

// PosterObjects is the object-store side: bytes in, signed URL out.
type PosterObjects interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	SignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type PostersHandler struct {
	posters    PostersStore
	objects    PosterObjects
	organizers OrganizerResolver
}

func NewPostersHandler(posters PostersStore, objects PosterObjects, organizers OrganizerResolver) *PostersHandler {
	return &PostersHandler{posters: posters, objects: objects, organizers: organizers}
}

func respondPosterError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, poster.ErrNotFound):
		RespondNotFound(ctx, "Event poster not found")
	case errors.Is(err, event.ErrNotFound):
		RespondBadRequest(ctx, "Event does not exist", nil)
	case errors.Is(err, poster.ErrTooLarge):
		RespondError(ctx, http.StatusRequestEntityTooLarge, "poster_too_large", "Poster image exceeds the 500KB limit", nil)
	case errors.Is(err, poster.ErrInvalidType):
		RespondBadRequest(ctx, "Poster image must be jpeg or png", nil)
	default:
		RespondInternal(ctx, "Could not process event poster")
	}
}

// POST /events/:id/poster
//
// Multipart upload, field name "image". The image lands in the object store
// first; the metadata row commits after, so a failed upload leaves no
// dangling row.

func (h *PostersHandler) UploadPoster(ctx *gin.Context) {
	eventID := ctx.Param("id")

	if !utils.IsUUID(eventID) {
		RespondBadRequest(ctx, "Invalid event id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if !h.permitObject(ctx, cctx, authz.ActionCreate, eventID) {
		return
	}

	fileHeader, err := ctx.FormFile("image")

	if err != nil {
		RespondBadRequest(ctx, "Multipart field 'image' is required", nil)
		return
	}

	if fileHeader.Size > poster.MaxBytes {
		respondPosterError(ctx, poster.ErrTooLarge)
		return
	}

	f, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}
	defer f.Close()

	// sniff the real content type rather than trusting the part header
	data, err := io.ReadAll(io.LimitReader(f, poster.MaxBytes+1))

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}

	if int64(len(data)) > poster.MaxBytes {
		respondPosterError(ctx, poster.ErrTooLarge)
		return
	}

	contentType := http.DetectContentType(data)

	if _, ok := poster.AllowedTypes[contentType]; !ok {
		respondPosterError(ctx, poster.ErrInvalidType)
		return
	}

	p := poster.New(eventID, "", contentType, int64(len(data)))
	p.ObjectKey = storage.PosterKey(eventID, p.ID, contentType)

	if err := h.objects.Upload(cctx, p.ObjectKey, contentType, bytes.NewReader(data), p.SizeBytes); err != nil {
		RespondInternal(ctx, "Could not store poster image")
		return
	}

	created, err := h.posters.Create(cctx, p)

	if err != nil {
		// roll the object back so the bucket does not collect orphans
		_ = h.objects.Delete(cctx, p.ObjectKey)
		respondPosterError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// GET /posters

func (h *PostersHandler) ListPosters(ctx *gin.Context) {
	page := pageFromQuery(ctx)
	limit, offset := pageWindow(page)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	posters, total, err := h.posters.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list event posters")
		return
	}

	ctx.JSON(http.StatusOK, listEnvelope(ctx, "posters", total, page, posters))
}

// GET /posters/:id
//
// The response carries a time-limited signed URL; the bucket itself is
// private.

func (h *PostersHandler) GetPosterById(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid poster id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.posters.GetByID(cctx, id)

	if err != nil {
		respondPosterError(ctx, err)
		return
	}

	url, err := h.objects.SignedURL(cctx, p.ObjectKey)

	if err != nil {
		RespondInternal(ctx, "Could not sign poster URL")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"poster": p,
		"url":    url,
	})
}

// DELETE /posters/:id

func (h *PostersHandler) DeletePoster(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "Invalid poster id", nil)
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	p, err := h.posters.GetByID(cctx, id)

	if err != nil {
		respondPosterError(ctx, err)
		return
	}

	if !h.permitObject(ctx, cctx, authz.ActionDelete, p.EventID) {
		return
	}

	if err := h.objects.Delete(cctx, p.ObjectKey); err != nil {
		RespondInternal(ctx, "Could not delete poster image")
		return
	}

	if err := h.posters.Delete(cctx, id); err != nil {
		respondPosterError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *PostersHandler) permitObject(ctx *gin.Context, cctx context.Context, action authz.Action, eventID string) bool {
	actor := middlewares.ActorFromContext(ctx)

	organizerID := ""

	if actor.IsOrganizer() && !actor.IsSuper() && !actor.IsAdmin() {
		var err error
		organizerID, err = h.organizers.OrganizerOf(cctx, eventID)

		if err != nil {
			if errors.Is(err, event.ErrNotFound) {
				RespondNotFound(ctx, "Event not found")
				return false
			}
			RespondInternal(ctx, "Could not process event poster")
			return false
		}
	}

	if err := authz.DecideObject(actor, action, authz.KindPoster, organizerID); err != nil {
		if errors.Is(err, authz.ErrUnauthorized) {
			RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
			return false
		}

		RespondForbidden(ctx, "You may only manage posters of events you organize")
		return false
	}

	return true
}
