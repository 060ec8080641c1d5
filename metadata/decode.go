package metadata

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

// FormatError is returned when the bytes of an image can not be decoded as EXIF metadata. This includes
// input that is not an image at all, images without an EXIF segment and corrupt TIFF structures.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Failed to read metadata, %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

var register_once sync.Once

func registerParsers() {

	register_once.Do(func() {
		// the extra fields parser needs to run before the maker note parsers since
		// a failing parser prevents the ones after it from running
		exif.RegisterParsers(extraFieldsParser{})
		exif.RegisterParsers(mknote.All...)
	})
}

// DecodeBytes is a convenience wrapper around Decode for in-memory images.
func DecodeBytes(body []byte) (*Metadata, error) {
	return Decode(bytes.NewReader(body))
}

// Decode reads EXIF data from 'r' and returns the tags in the container directory, EXIF
// (capture time) and GPS groups that this package recognizes. An image with EXIF data
// but no GPS tags is not an error.
func Decode(r io.Reader) (*Metadata, error) {

	registerParsers()

	x, err := exif.Decode(r)

	if err != nil {

		if x == nil {
			return nil, &FormatError{Err: err}
		}

		// partial results, typically a maker note that couldn't be parsed
		slog.Debug("Non-fatal error decoding EXIF data", "error", err)
	}

	return newMetadata(x), nil
}

func newMetadata(x *exif.Exif) *Metadata {

	md := &Metadata{
		GPSLatitude:        rationals(x, exif.GPSLatitude),
		GPSLatitudeRef:     stringValue(x, exif.GPSLatitudeRef),
		GPSLongitude:       rationals(x, exif.GPSLongitude),
		GPSLongitudeRef:    stringValue(x, exif.GPSLongitudeRef),
		GPSAltitude:        number(x, exif.GPSAltitude),
		GPSAltitudeRef:     integer(x, exif.GPSAltitudeRef),
		GPSImgDirection:    number(x, exif.GPSImgDirection),
		GPSImgDirectionRef: stringValue(x, exif.GPSImgDirectionRef),
		GPSDateStamp:       stringValue(x, exif.GPSDateStamp),
		GPSTimeStamp:       rationals(x, exif.GPSTimeStamp),
		Make:               stringValue(x, exif.Make),
		Model:              stringValue(x, exif.Model),
		DateTimeOriginal:   stringValue(x, exif.DateTimeOriginal),
		CreateDate:         stringValue(x, exif.DateTimeDigitized),
	}

	md.GPSHPositioningError = number(x, gpsHPositioningError)
	md.LensModel = stringValue(x, lensModel)

	return md
}
