package metadata

import (
	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// lowLevelPass walks the raw EXIF tag table directly. This reader locates
// the TIFF structure anywhere in the byte stream, which covers JPEG, TIFF
// and most vendor RAW containers, and it surfaces the Windows XP* and
// Rating tags the higher-level reader skips.
func lowLevelPass(data []byte) Metadata {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return Metadata{}
	}

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return Metadata{}
	}

	ti := exif.NewTagIndex()
	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return Metadata{}
	}

	tags := make(map[string]interface{})
	visitor := func(ifd *exif.Ifd, ite *exif.IfdTagEntry) error {
		name := ite.TagName()
		if _, seen := tags[name]; seen {
			return nil
		}
		value, err := ite.Value()
		if err != nil {
			// Undecodable tag; skip it, the rest of the table is fine.
			return nil
		}
		tags[name] = value
		return nil
	}

	if err := index.RootIfd.EnumerateTagsRecursively(visitor); err != nil {
		// Keep whatever was collected before the walk failed.
	}

	return interpretTags(tags)
}
