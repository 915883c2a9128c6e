package poster

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxBytes is the upload size cap for poster images.
const MaxBytes = 500 * 1024

// AllowedTypes maps accepted MIME types to their canonical extension.
var AllowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

type Poster struct {
	ID          string    `json:"id"`
	EventID     string    `json:"eventId"`
	ObjectKey   string    `json:"objectKey"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

var (
	ErrNotFound    = errors.New("event poster not found")
	ErrTooLarge    = errors.New("poster image exceeds the size limit")
	ErrInvalidType = errors.New("poster image must be jpeg or png")
)

func New(eventID, objectKey, contentType string, size int64) Poster {
	return Poster{
		ID:          uuid.NewString(),
		EventID:     eventID,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   size,
		CreatedAt:   time.Now().UTC(),
	}
}
