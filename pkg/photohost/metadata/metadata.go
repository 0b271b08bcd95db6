// Package metadata normalizes EXIF and XMP metadata embedded in image files.
//
// Extraction runs up to three independent passes over the raw bytes: a
// low-level tag-table read (github.com/dsoprea/go-exif, handles a superset of
// formats including vendor RAW), a high-level EXIF read
// (github.com/rwcarlsen/goexif) as a supplement, and an XMP packet scan for
// rating, title and capture date. Each pass is a pure function returning a
// partial Metadata; the results are combined by an explicit left-biased merge
// so a field set by a higher-priority source is never overwritten.
//
// Extract never returns an error. A pass that cannot parse its source
// contributes nothing; the only observable effect is an absent field.
package metadata

import "time"

// Metadata is a normalized subset of the metadata embedded in an image.
// String fields use "" for absent; ISO, Rating and TakenAt use nil.
type Metadata struct {
	Camera       string     `json:"camera,omitempty"`
	Lens         string     `json:"lens,omitempty"`
	ISO          *int       `json:"iso,omitempty"`
	Aperture     string     `json:"aperture,omitempty"`
	ShutterSpeed string     `json:"shutter_speed,omitempty"`
	FocalLength  string     `json:"focal_length,omitempty"`
	Title        string     `json:"title,omitempty"`
	Rating       *int       `json:"rating,omitempty"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
}

// Extractor extracts normalized metadata from raw image bytes.
type Extractor struct{}

// NewExtractor returns a ready-to-use Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// xmpScanLimit caps how much of the file the XMP pass inspects.
const xmpScanLimit = 8 << 20

// Extract produces a normalized metadata record from raw image bytes. It
// never fails: on any parse error for an individual source that source is
// simply omitted, and the result may be empty.
func (e *Extractor) Extract(data []byte) Metadata {
	m := merge(
		safePass(lowLevelPass, data),
		safePass(imagePass, data),
	)

	// The XMP scan only runs for fields the EXIF passes left unset.
	if m.Rating == nil || m.Title == "" || m.TakenAt == nil {
		scan := data
		if len(scan) > xmpScanLimit {
			scan = scan[:xmpScanLimit]
		}
		m = merge(m, safePass(xmpPass, scan))
	}

	return m
}

// safePass runs a pass and converts a panic inside a parser into an empty
// contribution. Some third-party tag readers panic on truncated input.
func safePass(pass func([]byte) Metadata, data []byte) (m Metadata) {
	defer func() {
		if r := recover(); r != nil {
			m = Metadata{}
		}
	}()
	return pass(data)
}

// merge combines partial records left-biased: the first non-empty value for
// each field wins. Precedence is therefore fully determined by argument
// order, never by mutation inside a pass.
func merge(records ...Metadata) Metadata {
	var out Metadata
	for _, r := range records {
		if out.Camera == "" {
			out.Camera = r.Camera
		}
		if out.Lens == "" {
			out.Lens = r.Lens
		}
		if out.ISO == nil {
			out.ISO = r.ISO
		}
		if out.Aperture == "" {
			out.Aperture = r.Aperture
		}
		if out.ShutterSpeed == "" {
			out.ShutterSpeed = r.ShutterSpeed
		}
		if out.FocalLength == "" {
			out.FocalLength = r.FocalLength
		}
		if out.Title == "" {
			out.Title = r.Title
		}
		if out.Rating == nil {
			out.Rating = r.Rating
		}
		if out.TakenAt == nil {
			out.TakenAt = r.TakenAt
		}
	}
	return out
}
