package metadata

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

func init() {
	// Register manufacturer-specific note parsers so vendor fields decode.
	exif.RegisterParsers(mknote.All...)
}

// imageFields maps the goexif field names onto the shared tag-table names
// used by interpretTags.
var imageFields = map[exif.FieldName]string{
	exif.Make:              tagMake,
	exif.Model:             tagModel,
	exif.LensModel:         tagLensModel,
	exif.ISOSpeedRatings:   tagISOSpeedRatings,
	exif.FNumber:           tagFNumber,
	exif.ExposureTime:      tagExposureTime,
	exif.FocalLength:       tagFocalLength,
	exif.ImageDescription:  "ImageDescription",
	exif.XPTitle:           "XPTitle",
	exif.XPSubject:         "XPSubject",
	exif.DateTimeOriginal:  tagDateTimeOriginal,
	exif.DateTimeDigitized: tagDateTimeDigitized,
	exif.DateTime:          tagDateTime,
}

// imagePass reads EXIF through the high-level goexif decoder. It supplements
// the low-level pass: JPEG/TIFF only, but tolerant of tag tables the raw
// walk rejects.
func imagePass(data []byte) Metadata {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return Metadata{}
	}

	tags := make(map[string]interface{})
	for field, name := range imageFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if v := tagValue(tag); v != nil {
			tags[name] = v
		}
	}

	return interpretTags(tags)
}

// tagValue converts a decoded TIFF tag into the value shapes interpretTags
// understands. Undefined and byte tags pass through raw for the defensive
// text decoder.
func tagValue(t *tiff.Tag) interface{} {
	switch t.Format() {
	case tiff.StringVal:
		s, err := t.StringVal()
		if err != nil {
			return nil
		}
		return s
	case tiff.RatVal:
		num, den, err := t.Rat2(0)
		if err != nil {
			return nil
		}
		return ratio{num, den}
	case tiff.IntVal:
		n, err := t.Int(0)
		if err != nil {
			return nil
		}
		return n
	case tiff.FloatVal:
		f, err := t.Float(0)
		if err != nil {
			return nil
		}
		return f
	default:
		if len(t.Val) > 0 {
			return t.Val
		}
	}
	return nil
}
