package metadata

// Tag names shared by both EXIF passes. Both readers surface standard TIFF
// and EXIF IFD tags under these names.
const (
	tagMake              = "Make"
	tagModel             = "Model"
	tagLensModel         = "LensModel"
	tagISOSpeedRatings   = "ISOSpeedRatings"
	tagPhotographicSens  = "PhotographicSensitivity"
	tagFNumber           = "FNumber"
	tagExposureTime      = "ExposureTime"
	tagFocalLength       = "FocalLength"
	tagRating            = "Rating"
	tagRatingPercent     = "RatingPercent"
	tagDateTimeOriginal  = "DateTimeOriginal"
	tagDateTimeDigitized = "DateTimeDigitized"
	tagDateTime          = "DateTime"
)

// titleTags is the fixed priority order for title sources; the first tag
// with a non-empty decoded value wins.
var titleTags = []string{
	"XPTitle",
	"ImageDescription",
	"XPSubject",
	"Subject",
	"Caption",
	"Caption-Abstract",
}

// interpretTags maps a raw tag table onto a partial Metadata record. Both
// EXIF passes collect tags into the same shape so the field rules live in
// exactly one place.
func interpretTags(tags map[string]interface{}) Metadata {
	var m Metadata

	make := decodeText(tags[tagMake])
	model := decodeText(tags[tagModel])
	m.Camera = normalizeCamera(make, model)

	m.Lens = decodeText(tags[tagLensModel])

	if iso, ok := intValue(tags[tagISOSpeedRatings]); ok {
		m.ISO = &iso
	} else if iso, ok := intValue(tags[tagPhotographicSens]); ok {
		m.ISO = &iso
	}

	if v, ok := tags[tagFNumber]; ok {
		m.Aperture = formatAperture(v)
	}
	if v, ok := tags[tagExposureTime]; ok {
		m.ShutterSpeed = formatShutter(v)
	}
	if v, ok := tags[tagFocalLength]; ok {
		m.FocalLength = formatFocalLength(v)
	}

	for _, name := range titleTags {
		if s := decodeText(tags[name]); s != "" {
			m.Title = s
			break
		}
	}

	if v, ok := tags[tagRating]; ok {
		if f, ok := numericValue(v); ok {
			m.Rating = normalizeRating(f)
		}
	}
	if m.Rating == nil {
		if v, ok := tags[tagRatingPercent]; ok {
			if f, ok := numericValue(v); ok {
				m.Rating = normalizeRating(f)
			}
		}
	}

	for _, name := range []string{tagDateTimeOriginal, tagDateTimeDigitized, tagDateTime} {
		if s := decodeText(tags[name]); s != "" {
			if t, ok := parseExifTime(s); ok {
				m.TakenAt = &t
				break
			}
		}
	}

	return m
}
