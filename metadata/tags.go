package metadata

import (
	"bytes"
	"io"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Tags that goexif's own field maps don't (reliably) know about.
const (
	gpsHPositioningError exif.FieldName = "GPSHPositioningError"
	lensModel            exif.FieldName = "LensModel"
)

var exifExtraFields = map[uint16]exif.FieldName{
	0xA434: lensModel,
}

var gpsExtraFields = map[uint16]exif.FieldName{
	0x001F: gpsHPositioningError,
}

// extraFieldsParser implements the exif.Parser interface, loading exifExtraFields and gpsExtraFields
// from their respective sub-IFDs.
type extraFieldsParser struct{}

func (p extraFieldsParser) Parse(x *exif.Exif) error {
	loadSubDir(x, exif.ExifIFDPointer, exifExtraFields)
	loadSubDir(x, exif.GPSInfoIFDPointer, gpsExtraFields)
	return nil
}

func loadSubDir(x *exif.Exif, ptr exif.FieldName, fields map[uint16]exif.FieldName) {

	tag, err := x.Get(ptr)

	if err != nil {
		return
	}

	offset, err := tag.Int64(0)

	if err != nil {
		return
	}

	r := bytes.NewReader(x.Raw)

	_, err = r.Seek(offset, io.SeekStart)

	if err != nil {
		return
	}

	dir, _, err := tiff.DecodeDir(r, x.Tiff.Order)

	if err != nil {
		return
	}

	x.LoadTags(dir, fields, false)
}

func stringValue(x *exif.Exif, name exif.FieldName) string {

	tag, err := x.Get(name)

	if err != nil || tag.Format() != tiff.StringVal {
		return ""
	}

	str, err := tag.StringVal()

	if err != nil {
		return ""
	}

	return strings.TrimSpace(strings.Trim(str, "\x00"))
}

func integer(x *exif.Exif, name exif.FieldName) *int {

	tag, err := x.Get(name)

	if err != nil || tag.Count == 0 {
		return nil
	}

	var v int

	switch tag.Format() {
	case tiff.IntVal:

		i, err := tag.Int(0)

		if err != nil {
			return nil
		}

		v = i

	case tiff.UndefVal:

		if len(tag.Val) == 0 {
			return nil
		}

		v = int(tag.Val[0])

	default:
		return nil
	}

	return &v
}

func number(x *exif.Exif, name exif.FieldName) *float64 {

	tag, err := x.Get(name)

	if err != nil || tag.Count == 0 {
		return nil
	}

	v, ok := tagFloat(tag, 0)

	if !ok {
		return nil
	}

	return &v
}

// rationals returns all the components of a (rational) tag. If any one component can not be
// read the tag is treated as absent.
func rationals(x *exif.Exif, name exif.FieldName) []float64 {

	tag, err := x.Get(name)

	if err != nil || tag.Count == 0 {
		return nil
	}

	values := make([]float64, int(tag.Count))

	for i := range values {

		v, ok := tagFloat(tag, i)

		if !ok {
			return nil
		}

		values[i] = v
	}

	return values
}

func tagFloat(tag *tiff.Tag, i int) (float64, bool) {

	switch tag.Format() {
	case tiff.RatVal:

		num, den, err := tag.Rat2(i)

		if err != nil || den == 0 {
			return 0, false
		}

		return float64(num) / float64(den), true

	case tiff.IntVal:

		v, err := tag.Int64(i)

		if err != nil {
			return 0, false
		}

		return float64(v), true

	case tiff.FloatVal:

		v, err := tag.Float(i)

		if err != nil {
			return 0, false
		}

		return v, true

	default:
		return 0, false
	}
}
