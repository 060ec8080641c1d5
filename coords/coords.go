// Package coords derives decimal-degree coordinates, altitude and heading from photo metadata.
package coords

import (
	"math"
	"strconv"

	"github.com/sfomuseum/go-photos-kmz/metadata"
)

// Point is a normalized location derived from a photo's metadata.
type Point struct {
	Latitude  float64
	Longitude float64
	// Metres above (or, when negative, below) sea level.
	Altitude *float64
	// Degrees clockwise from north, in [0, 360).
	Heading *float64
}

// Resolve returns the Point for 'md'. The second return value is false unless both a latitude and a longitude
// can be derived and both are within range.
func Resolve(md *metadata.Metadata) (Point, bool) {

	lat, ok_lat := Latitude(md)
	lon, ok_lon := Longitude(md)

	if !ok_lat || !ok_lon {
		return Point{}, false
	}

	if !valid(lat, 90) || !valid(lon, 180) {
		return Point{}, false
	}

	pt := Point{
		Latitude:  lat,
		Longitude: lon,
	}

	if alt, ok := Altitude(md); ok {
		pt.Altitude = &alt
	}

	if dir, ok := Direction(md); ok {
		pt.Heading = &dir
	}

	return pt, true
}

func valid(v float64, max float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -max && v <= max
}

// Latitude returns the decimal latitude for 'md', preferring a pre-normalized value over GPSLatitude.
func Latitude(md *metadata.Metadata) (float64, bool) {

	if md == nil {
		return 0, false
	}

	if md.Latitude != nil {
		return *md.Latitude, true
	}

	return DMSToDecimal(md.GPSLatitude, md.GPSLatitudeRef)
}

// Longitude returns the decimal longitude for 'md', preferring a pre-normalized value over GPSLongitude.
func Longitude(md *metadata.Metadata) (float64, bool) {

	if md == nil {
		return 0, false
	}

	if md.Longitude != nil {
		return *md.Longitude, true
	}

	return DMSToDecimal(md.GPSLongitude, md.GPSLongitudeRef)
}

// Altitude returns the altitude for 'md' in metres. GPSAltitude is negated when GPSAltitudeRef
// is metadata.AltitudeBelowSeaLevel.
func Altitude(md *metadata.Metadata) (float64, bool) {

	if md == nil {
		return 0, false
	}

	if md.Altitude != nil {
		return *md.Altitude, true
	}

	if md.GPSAltitude == nil {
		return 0, false
	}

	alt := *md.GPSAltitude

	if md.GPSAltitudeRef != nil && *md.GPSAltitudeRef == metadata.AltitudeBelowSeaLevel {
		return -alt, true
	}

	return alt, true
}

// Direction returns the heading the photo was taken in, in degrees. GPSImgDirection is preferred over
// a pre-normalized heading. The result is wrapped in to [0, 360).
func Direction(md *metadata.Metadata) (float64, bool) {

	if md == nil {
		return 0, false
	}

	var v *float64

	switch {
	case md.GPSImgDirection != nil:
		v = md.GPSImgDirection
	case md.Heading != nil:
		v = md.Heading
	default:
		return 0, false
	}

	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}

	return NormalizeHeading(*v), true
}

// NormalizeHeading wraps 'v' degrees in to [0, 360).
func NormalizeHeading(v float64) float64 {

	v = math.Mod(v, 360)

	if v < 0 {
		v += 360
	}

	// -0 and values like -1e-14 + 360 rounding up
	if v == 0 || v >= 360 {
		return 0
	}

	return v
}

// DMSToDecimal converts a degrees, minutes, seconds triple to decimal degrees. References of "S" or "W"
// yield negative values. Fewer than three components yields false.
func DMSToDecimal(dms []float64, ref string) (float64, bool) {

	if len(dms) < 3 {
		return 0, false
	}

	decimal := dms[0] + dms[1]/60 + dms[2]/3600

	switch ref {
	case "S", "W":
		return -decimal, true
	default:
		return decimal, true
	}
}

// FormatCoordinate renders a latitude or longitude with six decimal places.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FormatMeasure renders an altitude, heading or accuracy with two decimal places.
func FormatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
