// Package photohost provides a small photo-hosting library with pluggable
// repository and blob storage backends.
//
// It exposes a single Service interface that orchestrates image upload,
// EXIF/XMP metadata extraction, resized-variant derivation, object storage,
// and record persistence. Implementations of repositories (memory, Postgres)
// and blob stores (memory, filesystem, S3) are provided under subpackages.
//
// Metadata extracted from an image never blocks an upload: a photo with no
// readable EXIF simply carries fewer fields. Variant generation is likewise
// best-effort per variant; a failed encode leaves that variant's URL empty
// while the original and the remaining variants proceed.
package photohost
