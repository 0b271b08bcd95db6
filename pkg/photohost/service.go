package photohost

import (
	"context"

	"github.com/google/uuid"
)

// Service is the main interface for photo operations.
type Service interface {
	// UploadPhoto stores the original and derived variants, extracts
	// metadata, and persists the record. Variant failures are non-fatal:
	// the photo is created with the URLs that succeeded.
	UploadPhoto(ctx context.Context, req UploadPhotoRequest) (*Photo, error)

	// GetPhoto retrieves a photo by ID.
	GetPhoto(ctx context.Context, id uuid.UUID) (*Photo, error)

	// ListPhotos returns all photos ordered by sort order, newest first
	// within the same sort order.
	ListPhotos(ctx context.Context) ([]*Photo, error)

	// PublishedPhotos returns published photos, most recent first,
	// capped at limit.
	PublishedPhotos(ctx context.Context, limit int) ([]*Photo, error)

	// UpdatePhoto edits title, sort order, or name. Renames remap every
	// stored object key and rewrite the URLs.
	UpdatePhoto(ctx context.Context, id uuid.UUID, req UpdatePhotoRequest) (*Photo, error)

	// PublishPhoto marks a photo as published for the feed.
	PublishPhoto(ctx context.Context, id uuid.UUID, req PublishPhotoRequest) (*Photo, error)

	// DeletePhoto removes the stored objects and the record.
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}
