package metadata

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	exifcommon "github.com/dsoprea/go-exif/v3/common"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// rationalToFloat converts the rational encodings the EXIF readers produce
// into a float. A zero denominator or an unconvertible value yields ok=false
// and the field stays unset.
func rationalToFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case exifcommon.Rational:
		if t.Denominator == 0 {
			return 0, false
		}
		return float64(t.Numerator) / float64(t.Denominator), true
	case exifcommon.SignedRational:
		if t.Denominator == 0 {
			return 0, false
		}
		return float64(t.Numerator) / float64(t.Denominator), true
	case []exifcommon.Rational:
		if len(t) == 0 {
			return 0, false
		}
		return rationalToFloat(t[0])
	case []exifcommon.SignedRational:
		if len(t) == 0 {
			return 0, false
		}
		return rationalToFloat(t[0])
	case ratio:
		if t.den == 0 {
			return 0, false
		}
		return float64(t.num) / float64(t.den), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	}
	return 0, false
}

// ratio is the pass-internal numerator/denominator pair used when a reader
// exposes rationals as distinct integers rather than a library type.
type ratio struct {
	num int64
	den int64
}

// asRatio extracts a numerator/denominator pair when the value carries one.
func asRatio(v interface{}) (ratio, bool) {
	switch t := v.(type) {
	case ratio:
		return t, true
	case exifcommon.Rational:
		return ratio{int64(t.Numerator), int64(t.Denominator)}, true
	case exifcommon.SignedRational:
		return ratio{int64(t.Numerator), int64(t.Denominator)}, true
	case []exifcommon.Rational:
		if len(t) > 0 {
			return asRatio(t[0])
		}
	case []exifcommon.SignedRational:
		if len(t) > 0 {
			return asRatio(t[0])
		}
	}
	return ratio{}, false
}

// formatAperture renders an FNumber value as "f/2.8". Exact-output contract.
func formatAperture(v interface{}) string {
	f, ok := rationalToFloat(v)
	if !ok || f == 0 {
		return ""
	}
	return fmt.Sprintf("f/%.1f", f)
}

// formatShutter renders an ExposureTime as "1/200 s" when the raw value is a
// rational, or the literal string form otherwise.
func formatShutter(v interface{}) string {
	if r, ok := asRatio(v); ok {
		if r.den == 0 {
			return ""
		}
		return fmt.Sprintf("%d/%d s", r.num, r.den)
	}
	if s := decodeText(v); s != "" {
		return s
	}
	return ""
}

// formatFocalLength renders a FocalLength value as "50 mm".
func formatFocalLength(v interface{}) string {
	f, ok := rationalToFloat(v)
	if !ok || f == 0 {
		return ""
	}
	return fmt.Sprintf("%.0f mm", f)
}

// normalizeCamera combines Make and Model, stripping a redundant maker prefix
// from the model (case-insensitive) along with any separating dash,
// underscore or space.
func normalizeCamera(make, model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return ""
	}
	make = strings.TrimSpace(make)
	if make != "" && strings.HasPrefix(strings.ToLower(model), strings.ToLower(make)) {
		model = strings.TrimSpace(strings.TrimLeft(model[len(make):], " -_"))
	}
	return model
}

// normalizeRating maps a raw rating value to the 0-5 scale. Values above 5
// are treated as Windows rating percentages (0-100) and divided by 20, with
// halves rounding to even (50% is 2 stars, 90% is 4). The >5 heuristic is
// deliberate: a direct rating and a percent value of 5 are indistinguishable,
// and the direct reading wins.
func normalizeRating(v float64) *int {
	r := int(math.Round(v))
	if v > 5 {
		r = int(math.RoundToEven(v / 20))
	}
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}
	return &r
}

// numericValue accepts either integer shapes or rational encodings, the two
// forms rating tags arrive in.
func numericValue(v interface{}) (float64, bool) {
	if n, ok := intValue(v); ok {
		return float64(n), true
	}
	return rationalToFloat(v)
}

// intValue extracts an integer from a scalar or the first element of a
// sequence, the shapes ISO and rating tags arrive in.
func intValue(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int16:
		return int(t), true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case uint16:
		return int(t), true
	case uint32:
		return int(t), true
	case []uint16:
		if len(t) > 0 {
			return int(t[0]), true
		}
	case []uint32:
		if len(t) > 0 {
			return int(t[0]), true
		}
	case []int:
		if len(t) > 0 {
			return t[0], true
		}
	case float64:
		return int(t), true
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// decodeText converts a tag value into a clean string. Byte payloads are
// decoded defensively as UTF-16LE, then UTF-8, then Latin-1, with trailing
// NUL padding stripped. Windows XP* tags store UTF-16LE byte arrays.
func decodeText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(strings.TrimRight(t, "\x00"))
	case []byte:
		return decodeBytes(t)
	case []uint16:
		// Some readers surface XP* payloads as uint16 code units.
		b := make([]byte, 0, len(t)*2)
		for _, u := range t {
			b = append(b, byte(u), byte(u>>8))
		}
		return decodeBytes(b)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	}
	return ""
}

func decodeBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if len(b)%2 == 0 {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		if out, err := dec.Bytes(b); err == nil && !strings.ContainsRune(string(out), utf8.RuneError) {
			return strings.TrimSpace(strings.TrimRight(string(out), "\x00"))
		}
	}
	if utf8.Valid(b) {
		return strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
	}
	if out, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
		return strings.TrimSpace(strings.TrimRight(string(out), "\x00"))
	}
	return ""
}

// exif timestamps are "YYYY:MM:DD HH:MM:SS"; some writers use dashes.
var exifTimeLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
}

// parseExifTime parses an EXIF timestamp string. Values are time-zone naive.
func parseExifTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range exifTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// xmp timestamps are ISO-8601, possibly offset-aware. Offset-aware values
// are converted to UTC before the offset is dropped.
var xmpTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseXMPTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range xmpTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
