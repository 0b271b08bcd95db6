package photohost

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ceephoto/photohost/pkg/photohost/metadata"
	"github.com/ceephoto/photohost/pkg/photohost/variant"
)

// BlobStore is the object-storage collaborator contract. Calls are opaque
// and retry-free; a failure surfaces to the caller as a single error.
type BlobStore interface {
	// Put stores an object and returns its public URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// Copy duplicates an object under a new key.
	Copy(ctx context.Context, oldKey, newKey string) error

	// PublicURL returns the public URL for a key without touching storage.
	PublicURL(key string) string
}

// Repository is the persistence collaborator contract: an upsert-by-unique-
// name record store. A duplicate name surfaces as ErrDuplicateName, a
// missing record as ErrPhotoNotFound.
type Repository interface {
	CreatePhoto(ctx context.Context, photo *Photo) error
	GetPhoto(ctx context.Context, id uuid.UUID) (*Photo, error)
	GetPhotoByName(ctx context.Context, name string) (*Photo, error)
	ListPhotos(ctx context.Context) ([]*Photo, error)
	ListPublishedPhotos(ctx context.Context, limit int) ([]*Photo, error)
	UpdatePhoto(ctx context.Context, photo *Photo) error
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

// Extractor produces a normalized metadata record from raw image bytes. It
// never fails; absent fields are the only signal of a parse problem.
type Extractor interface {
	Extract(data []byte) metadata.Metadata
}

// Deriver produces cached, resized variant files from a source image.
type Deriver interface {
	EnsureVariant(sourcePath string, spec variant.Spec) (string, error)
}
