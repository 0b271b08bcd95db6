package photohost

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ceephoto/photohost/pkg/photohost/metadata"
	"github.com/ceephoto/photohost/pkg/photohost/variant"
)

// originalPrefix is the object-key prefix for full-size uploads; variants
// use their own name as prefix.
const originalPrefix = "full"

// DefaultVariants is the variant table used when no configuration is
// supplied: bounded thumbnail, small, and medium renditions.
var DefaultVariants = []variant.Spec{
	{Name: VariantThumbnail, MaxDim: 400},
	{Name: VariantSmall, MaxDim: 1600},
	{Name: VariantMedium, MaxDim: 2400},
}

// service implements the Service interface
type service struct {
	repository Repository
	store      BlobStore
	extractor  Extractor
	deriver    Deriver
	variants   []variant.Spec
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the photo record repository.
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the object storage backend.
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithExtractor overrides the metadata extractor.
func WithExtractor(e Extractor) Option {
	return func(s *service) {
		s.extractor = e
	}
}

// WithDeriver sets the variant deriver.
func WithDeriver(d Deriver) Option {
	return func(s *service) {
		s.deriver = d
	}
}

// WithVariants replaces the configured variant table.
func WithVariants(specs ...variant.Spec) Option {
	return func(s *service) {
		s.variants = specs
	}
}

// New creates a new service instance with the given options. A repository
// and a blob store are required; the extractor and variant table default to
// the standard implementations.
func New(options ...Option) (Service, error) {
	s := &service{
		extractor: metadata.NewExtractor(),
		variants:  DefaultVariants,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

func (s *service) UploadPhoto(ctx context.Context, req UploadPhotoRequest) (*Photo, error) {
	if req.FileName == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if req.Data == nil {
		return nil, fmt.Errorf("file data is required")
	}
	name := filepath.Base(req.FileName)

	// Spool the upload to a temp file: the deriver works from a path, and
	// the mtime-based variant cache needs a real file.
	tmpDir, err := os.MkdirTemp("", "photo_upload_")
	if err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	srcPath := filepath.Join(tmpDir, name)
	size, sum, err := spoolFile(srcPath, req.Data)
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	meta := s.extractor.Extract(data)
	if req.Title != nil {
		meta.Title = *req.Title
	}
	if req.Rating != nil {
		meta.Rating = req.Rating
	}

	originalURL, err := s.putFile(ctx, srcPath, originalPrefix+"/"+name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	createdAt := now
	if meta.TakenAt != nil {
		createdAt = *meta.TakenAt
	}

	photo := &Photo{
		ID:           uuid.New(),
		Name:         name,
		SHA1:         sum,
		Size:         size,
		OriginalURL:  originalURL,
		SortOrder:    req.SortOrder,
		Title:        meta.Title,
		Camera:       meta.Camera,
		Lens:         meta.Lens,
		ISO:          meta.ISO,
		Aperture:     meta.Aperture,
		ShutterSpeed: meta.ShutterSpeed,
		FocalLength:  meta.FocalLength,
		Rating:       meta.Rating,
		TakenAt:      meta.TakenAt,
		CreatedAt:    createdAt,
	}

	// Each variant is best-effort: a failed derivation or upload leaves
	// that URL empty and the rest of the batch continues.
	for _, spec := range s.variants {
		url, err := s.uploadVariant(ctx, srcPath, name, spec)
		if err != nil {
			slog.Warn("variant generation failed",
				"variant", spec.Name, "photo", name, "error", err)
			continue
		}
		photo.SetVariantURL(spec.Name, url)
	}

	if err := s.repository.CreatePhoto(ctx, photo); err != nil {
		return nil, err
	}

	slog.Info("stored photo", "id", photo.ID, "name", photo.Name, "size", size)
	return photo, nil
}

func (s *service) uploadVariant(ctx context.Context, srcPath, name string, spec variant.Spec) (string, error) {
	if s.deriver == nil {
		return "", &VariantError{Variant: spec.Name, Source: name, Err: fmt.Errorf("no deriver configured")}
	}
	derivedPath, err := s.deriver.EnsureVariant(srcPath, spec)
	if err != nil {
		return "", &VariantError{Variant: spec.Name, Source: name, Err: err}
	}
	url, err := s.putFile(ctx, derivedPath, spec.Name+"/"+name)
	if err != nil {
		return "", &VariantError{Variant: spec.Name, Source: name, Err: err}
	}
	return url, nil
}

// putFile uploads a local file under the given key and returns the public
// URL. Content type is guessed from the file extension.
func (s *service) putFile(ctx context.Context, path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.store.Put(ctx, key, f, ContentTypeFor(path))
}

func (s *service) GetPhoto(ctx context.Context, id uuid.UUID) (*Photo, error) {
	return s.repository.GetPhoto(ctx, id)
}

func (s *service) ListPhotos(ctx context.Context) ([]*Photo, error) {
	return s.repository.ListPhotos(ctx)
}

func (s *service) PublishedPhotos(ctx context.Context, limit int) ([]*Photo, error) {
	return s.repository.ListPublishedPhotos(ctx, limit)
}

func (s *service) UpdatePhoto(ctx context.Context, id uuid.UUID, req UpdatePhotoRequest) (*Photo, error) {
	photo, err := s.repository.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		photo.Title = *req.Title
	}
	if req.SortOrder != nil {
		photo.SortOrder = *req.SortOrder
	}
	if req.Name != nil {
		if err := s.renamePhoto(ctx, photo, *req.Name); err != nil {
			return nil, err
		}
	}

	if err := s.repository.UpdatePhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// renamePhoto remaps every stored object key to the new name and rewrites
// the URLs. The extension is preserved when the caller omits one.
func (s *service) renamePhoto(ctx context.Context, photo *Photo, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	oldName := photo.Name
	if newName == oldName {
		return nil
	}
	if !strings.Contains(newName, ".") && strings.Contains(oldName, ".") {
		newName += filepath.Ext(oldName)
	}

	for _, prefix := range s.keyPrefixes(photo) {
		oldKey := prefix + "/" + oldName
		newKey := prefix + "/" + newName
		if err := s.store.Copy(ctx, oldKey, newKey); err != nil {
			return fmt.Errorf("renaming %s to %s: %w", oldKey, newKey, err)
		}
		if err := s.store.Delete(ctx, oldKey); err != nil {
			return fmt.Errorf("renaming %s to %s: %w", oldKey, newKey, err)
		}
		if prefix == originalPrefix {
			photo.OriginalURL = s.store.PublicURL(newKey)
		} else {
			photo.SetVariantURL(prefix, s.store.PublicURL(newKey))
		}
	}

	photo.Name = newName
	return nil
}

// keyPrefixes lists the object-key prefixes that actually hold data for
// this photo: the original plus every generated variant.
func (s *service) keyPrefixes(photo *Photo) []string {
	prefixes := []string{originalPrefix}
	for _, name := range []string{VariantMedium, VariantSmall, VariantThumbnail} {
		if photo.VariantURL(name) != "" {
			prefixes = append(prefixes, name)
		}
	}
	return prefixes
}

func (s *service) PublishPhoto(ctx context.Context, id uuid.UUID, req PublishPhotoRequest) (*Photo, error) {
	photo, err := s.repository.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}

	postedAt := time.Now().UTC()
	if req.PostedAt != nil {
		postedAt = req.PostedAt.UTC()
	}
	photo.PostedAt = &postedAt
	if req.PostTitle != nil {
		photo.PostTitle = *req.PostTitle
	}
	if req.PostSummary != nil {
		photo.PostSummary = *req.PostSummary
	}

	if err := s.repository.UpdatePhoto(ctx, photo); err != nil {
		return nil, err
	}
	slog.Info("published photo", "id", photo.ID, "name", photo.Name, "posted_at", postedAt)
	return photo, nil
}

func (s *service) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	photo, err := s.repository.GetPhoto(ctx, id)
	if err != nil {
		return err
	}

	for _, prefix := range s.keyPrefixes(photo) {
		key := prefix + "/" + photo.Name
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}

	if err := s.repository.DeletePhoto(ctx, id); err != nil {
		return err
	}
	slog.Info("removed photo", "id", photo.ID, "name", photo.Name)
	return nil
}

// spoolFile writes the reader to path, returning the byte count and SHA-1.
func spoolFile(path string, r io.Reader) (int64, string, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha1.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

// ContentTypeFor guesses a content type from the file extension, defaulting
// to application/octet-stream.
func ContentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
