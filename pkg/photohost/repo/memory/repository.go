package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ceephoto/photohost/pkg/photohost"
)

// Repository implements photohost.Repository using in-memory storage
type Repository struct {
	mu     sync.RWMutex
	photos map[uuid.UUID]*photohost.Photo
	byName map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		photos: make(map[uuid.UUID]*photohost.Photo),
		byName: make(map[string]uuid.UUID),
	}
}

func (r *Repository) CreatePhoto(ctx context.Context, photo *photohost.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[photo.Name]; exists {
		return photohost.ErrDuplicateName
	}

	// Store a copy to avoid external modifications
	photoCopy := *photo
	r.photos[photo.ID] = &photoCopy
	r.byName[photo.Name] = photo.ID
	return nil
}

func (r *Repository) GetPhoto(ctx context.Context, id uuid.UUID) (*photohost.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, exists := r.photos[id]
	if !exists {
		return nil, photohost.ErrPhotoNotFound
	}
	photoCopy := *photo
	return &photoCopy, nil
}

func (r *Repository) GetPhotoByName(ctx context.Context, name string) (*photohost.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byName[name]
	if !exists {
		return nil, photohost.ErrPhotoNotFound
	}
	photoCopy := *r.photos[id]
	return &photoCopy, nil
}

func (r *Repository) UpdatePhoto(ctx context.Context, photo *photohost.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.photos[photo.ID]
	if !exists {
		return photohost.ErrPhotoNotFound
	}
	if other, taken := r.byName[photo.Name]; taken && other != photo.ID {
		return photohost.ErrDuplicateName
	}

	if existing.Name != photo.Name {
		delete(r.byName, existing.Name)
		r.byName[photo.Name] = photo.ID
	}

	photoCopy := *photo
	r.photos[photo.ID] = &photoCopy
	return nil
}

func (r *Repository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	photo, exists := r.photos[id]
	if !exists {
		return photohost.ErrPhotoNotFound
	}
	delete(r.byName, photo.Name)
	delete(r.photos, id)
	return nil
}

func (r *Repository) ListPhotos(ctx context.Context) ([]*photohost.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*photohost.Photo, 0, len(r.photos))
	for _, photo := range r.photos {
		photoCopy := *photo
		result = append(result, &photoCopy)
	}
	sortPhotos(result)
	return result, nil
}

func (r *Repository) ListPublishedPhotos(ctx context.Context, limit int) ([]*photohost.Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*photohost.Photo
	for _, photo := range r.photos {
		if photo.PostedAt == nil {
			continue
		}
		photoCopy := *photo
		result = append(result, &photoCopy)
	}

	// Newest posts first.
	sort.Slice(result, func(i, j int) bool {
		return result[i].PostedAt.After(*result[j].PostedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortPhotos orders by sort order ascending, then created_at descending.
func sortPhotos(photos []*photohost.Photo) {
	sort.Slice(photos, func(i, j int) bool {
		if photos[i].SortOrder != photos[j].SortOrder {
			return photos[i].SortOrder < photos[j].SortOrder
		}
		return photos[i].CreatedAt.After(photos[j].CreatedAt)
	})
}
