package convert

import (
	"fmt"
	"strings"

	"github.com/sfomuseum/go-photos-kmz/index"
)

// Outcome is the final classification of a single image in a batch.
type Outcome string

const (
	Processed Outcome = "Processed"
	Skipped   Outcome = "Skipped"
)

// SkipReason describes why an image was skipped.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipNoLocation
	SkipFormatError
)

func (r SkipReason) String() string {

	switch r {
	case SkipNoLocation:
		return "no GPS metadata"
	case SkipFormatError:
		return "could not read metadata"
	default:
		return ""
	}
}

// Status is the per-image record of a batch conversion.
type Status struct {
	// The (base) name of the image.
	Name string `json:"name"`
	// Processed or Skipped.
	Outcome Outcome `json:"outcome"`
	// For processed images the formatted coordinates, otherwise the reason the image was skipped.
	Detail string `json:"detail"`
	// The name of the image's entry in the archive, for processed images.
	EntryName string `json:"entry,omitempty"`
}

// BatchResult is the output of a Converter.Convert operation. It is owned by the caller.
type BatchResult struct {
	// A unique identifier for the conversion run.
	ID string
	// The bytes of the KMZ archive. This is nil if no images were processed.
	Archive []byte
	// The located images, in input order.
	Features *index.Index
	// Per-image statuses, in input order.
	Statuses []*Status
	// The number of images that produced both a placemark and a feature.
	Processed int
	// The number of images that were skipped.
	Skipped int
}

// HasArchive reports whether the result contains an archive.
func (r *BatchResult) HasArchive() bool {
	return r.Processed > 0 && len(r.Archive) > 0
}

// Summary returns a one-line description of the result, for example "2 photos converted · 1 photo skipped".
func (r *BatchResult) Summary() string {

	parts := make([]string, 0, 2)

	if r.Processed > 0 {
		parts = append(parts, fmt.Sprintf("%d %s converted", r.Processed, plural(r.Processed)))
	}

	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d %s skipped", r.Skipped, plural(r.Skipped)))
	}

	if len(parts) == 0 {
		return "Nothing to convert."
	}

	return strings.Join(parts, " · ")
}

func plural(n int) string {

	if n == 1 {
		return "photo"
	}

	return "photos"
}
