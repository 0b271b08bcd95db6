// Package api exposes the photo service over HTTP with chi.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/ceephoto/photohost/pkg/photohost"
	"github.com/ceephoto/photohost/pkg/photohost/feed"
)

// maxUploadBytes bounds the multipart form held in memory before spilling
// to disk.
const maxUploadBytes = 32 << 20

// feedItemLimit caps how many published photos the RSS document carries.
const feedItemLimit = 50

// PhotoResponse is the response body for a photo
type PhotoResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SHA1         string     `json:"sha1"`
	Size         int64      `json:"size"`
	OriginalURL  string     `json:"original_url"`
	MediumURL    string     `json:"medium_url,omitempty"`
	SmallURL     string     `json:"small_url,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	SortOrder    int        `json:"sort_order"`
	Title        string     `json:"title,omitempty"`
	Camera       string     `json:"camera,omitempty"`
	Lens         string     `json:"lens,omitempty"`
	ISO          *int       `json:"iso,omitempty"`
	Aperture     string     `json:"aperture,omitempty"`
	ShutterSpeed string     `json:"shutter_speed,omitempty"`
	FocalLength  string     `json:"focal_length,omitempty"`
	Rating       *int       `json:"rating,omitempty"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	PostedAt     *time.Time `json:"posted_at,omitempty"`
	PostTitle    string     `json:"post_title,omitempty"`
	PostSummary  string     `json:"post_summary,omitempty"`
}

// UpdatePhotoRequest is the request body for updating a photo
type UpdatePhotoRequest struct {
	Title     *string `json:"title,omitempty"`
	Name      *string `json:"name,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

// PublishPhotoRequest is the request body for publishing a photo
type PublishPhotoRequest struct {
	PostTitle   *string    `json:"post_title,omitempty"`
	PostSummary *string    `json:"post_summary,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// PhotoHandler handles HTTP requests for photos
type PhotoHandler struct {
	service photohost.Service
	feedCfg feed.Config
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(service photohost.Service, feedCfg feed.Config) *PhotoHandler {
	return &PhotoHandler{service: service, feedCfg: feedCfg}
}

// Routes returns the routes for photos
func (h *PhotoHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPhotos)
	r.Post("/", h.UploadPhoto)
	r.Get("/{id}", h.GetPhoto)
	r.Patch("/{id}", h.UpdatePhoto)
	r.Delete("/{id}", h.DeletePhoto)
	r.Post("/{id}/publish", h.PublishPhoto)

	return r
}

// UploadPhoto accepts a multipart upload with an optional title, rating and
// sort order.
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req := photohost.UploadPhotoRequest{
		FileName: header.Filename,
		Data:     file,
	}
	if v := r.FormValue("title"); v != "" {
		req.Title = &v
	}
	if v := r.FormValue("rating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid rating", http.StatusBadRequest)
			return
		}
		req.Rating = &rating
	}
	if v := r.FormValue("sort_order"); v != "" {
		sortOrder, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid sort_order", http.StatusBadRequest)
			return
		}
		req.SortOrder = sortOrder
	}

	photo, err := h.service.UploadPhoto(r.Context(), req)
	if err != nil {
		slog.Error("Failed to upload photo", "name", header.Filename, "error", err)
		writeServiceError(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toPhotoResponse(photo))
}

// GetPhoto returns a single photo by ID.
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	photo, err := h.service.GetPhoto(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	render.JSON(w, r, toPhotoResponse(photo))
}

// ListPhotos returns all photos in display order.
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.service.ListPhotos(r.Context())
	if err != nil {
		slog.Error("Failed to list photos", "error", err)
		writeServiceError(w, err)
		return
	}

	resp := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, toPhotoResponse(p))
	}
	render.JSON(w, r, resp)
}

// UpdatePhoto applies a partial update: title, name, sort order.
func (h *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	photo, err := h.service.UpdatePhoto(r.Context(), id, photohost.UpdatePhotoRequest{
		Title:     req.Title,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		slog.Error("Failed to update photo", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	render.JSON(w, r, toPhotoResponse(photo))
}

// PublishPhoto marks a photo as posted, stamping posted_at when absent.
func (h *PhotoHandler) PublishPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req PublishPhotoRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	photo, err := h.service.PublishPhoto(r.Context(), id, photohost.PublishPhotoRequest{
		PostTitle:   req.PostTitle,
		PostSummary: req.PostSummary,
		PostedAt:    req.PostedAt,
	})
	if err != nil {
		slog.Error("Failed to publish photo", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	render.JSON(w, r, toPhotoResponse(photo))
}

// DeletePhoto removes the photo record and every stored object.
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePhoto(r.Context(), id); err != nil {
		slog.Error("Failed to delete photo", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Feed serves the RSS document for the most recent published photos.
func (h *PhotoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	photos, err := h.service.PublishedPhotos(r.Context(), feedItemLimit)
	if err != nil {
		slog.Error("Failed to load published photos", "error", err)
		writeServiceError(w, err)
		return
	}

	doc, err := feed.Build(h.feedCfg, photos, time.Now())
	if err != nil {
		slog.Error("Failed to build feed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(doc)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid photo ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var storageErr *photohost.StorageError
	switch {
	case errors.Is(err, photohost.ErrPhotoNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, photohost.ErrDuplicateName):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, photohost.ErrEmptyName):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &storageErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toPhotoResponse(p *photohost.Photo) PhotoResponse {
	return PhotoResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		SHA1:         p.SHA1,
		Size:         p.Size,
		OriginalURL:  p.OriginalURL,
		MediumURL:    p.MediumURL,
		SmallURL:     p.SmallURL,
		ThumbnailURL: p.ThumbnailURL,
		SortOrder:    p.SortOrder,
		Title:        p.Title,
		Camera:       p.Camera,
		Lens:         p.Lens,
		ISO:          p.ISO,
		Aperture:     p.Aperture,
		ShutterSpeed: p.ShutterSpeed,
		FocalLength:  p.FocalLength,
		Rating:       p.Rating,
		TakenAt:      p.TakenAt,
		CreatedAt:    p.CreatedAt,
		PostedAt:     p.PostedAt,
		PostTitle:    p.PostTitle,
		PostSummary:  p.PostSummary,
	}
}
