package photohost

import (
	"io"
	"time"
)

// Request DTOs

// UploadPhotoRequest contains parameters for uploading a new photo. Title
// and Rating, when set, override whatever the metadata extractor finds.
type UploadPhotoRequest struct {
	FileName  string
	Data      io.Reader
	Title     *string
	Rating    *int
	SortOrder int
}

// UpdatePhotoRequest contains parameters for editing a photo. Nil fields are
// left untouched. A Name change renames every stored object key.
type UpdatePhotoRequest struct {
	Title     *string
	Name      *string
	SortOrder *int
}

// PublishPhotoRequest marks a photo as published for the feed. A nil
// PostedAt means "now".
type PublishPhotoRequest struct {
	PostTitle   *string
	PostSummary *string
	PostedAt    *time.Time
}
