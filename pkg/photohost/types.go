package photohost

import (
	"time"

	"github.com/google/uuid"
)

// Well-known variant names. Variants are configuration, but the photo record
// exposes a fixed URL column per variant, matching the persistence schema.
const (
	VariantThumbnail = "thumbnail"
	VariantSmall     = "small"
	VariantMedium    = "medium"
)

// Photo is a stored photo record: the original object plus derived variant
// URLs and normalized capture metadata.
type Photo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	SHA1 string    `json:"sha1"`
	Size int64     `json:"size"`

	OriginalURL  string `json:"original_url"`
	MediumURL    string `json:"medium_url,omitempty"`
	SmallURL     string `json:"small_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	SortOrder int `json:"sort_order"`

	// Normalized EXIF/XMP metadata. Absent fields serialize as omitted,
	// never as null.
	Title        string     `json:"title,omitempty"`
	Camera       string     `json:"camera,omitempty"`
	Lens         string     `json:"lens,omitempty"`
	ISO          *int       `json:"iso,omitempty"`
	Aperture     string     `json:"aperture,omitempty"`
	ShutterSpeed string     `json:"shutter_speed,omitempty"`
	FocalLength  string     `json:"focal_length,omitempty"`
	Rating       *int       `json:"rating,omitempty"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Publication fields; a nil PostedAt means the photo is unpublished
	// and excluded from the feed.
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	PostTitle   string     `json:"post_title,omitempty"`
	PostSummary string     `json:"post_summary,omitempty"`
}

// VariantURL returns the stored URL for a well-known variant name, or ""
// when that variant has not been generated.
func (p *Photo) VariantURL(name string) string {
	switch name {
	case VariantThumbnail:
		return p.ThumbnailURL
	case VariantSmall:
		return p.SmallURL
	case VariantMedium:
		return p.MediumURL
	}
	return ""
}

// SetVariantURL stores the URL for a well-known variant name. Unknown names
// are ignored; the record has no column for them.
func (p *Photo) SetVariantURL(name, url string) {
	switch name {
	case VariantThumbnail:
		p.ThumbnailURL = url
	case VariantSmall:
		p.SmallURL = url
	case VariantMedium:
		p.MediumURL = url
	}
}
