package kmz

import (
	"path/filepath"
	"regexp"

	"github.com/sfomuseum/go-photos-kmz/common"
)

var re_jpeg = regexp.MustCompile(`(?i)\.jpe?g$`)

// type Image stores the body of a single image file and the name it was declared with.
type Image struct {
	// The declared filename of the image. This is used for display purposes and to derive archive entry names.
	Filename string
	// The raw bytes of the image.
	Body []byte
	// An optional SHA-1 fingerprint of Body.
	Fingerprint string
	// An optional list of perceptual hashes for the image.
	ImageHashes []*common.ImageHashRsp
}

// Name returns the base name of the image's filename.
func (im *Image) Name() string {
	return filepath.Base(im.Filename)
}

// IsJPEG reports whether 'name' ends in a (case-insensitive) JPEG extension.
func IsJPEG(name string) bool {
	return re_jpeg.MatchString(name)
}
