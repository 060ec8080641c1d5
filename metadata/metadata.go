package metadata

// Metadata is the subset of an image's EXIF (and GPS) tags that this package understands. Any other
// tags present in an image are ignored. Optional values are nil (or empty strings) when absent.
type Metadata struct {
	// Pre-normalized decimal values. These are not populated by Decode but are honoured, in preference
	// to their EXIF equivalents, by the coords package when present.
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	Altitude           *float64 `json:"altitude,omitempty"`
	Heading            *float64 `json:"heading,omitempty"`
	HorizontalAccuracy *float64 `json:"horizontal_accuracy,omitempty"`

	// GPS tag group
	GPSLatitude          []float64 `json:"GPSLatitude,omitempty"`
	GPSLatitudeRef       string    `json:"GPSLatitudeRef,omitempty"`
	GPSLongitude         []float64 `json:"GPSLongitude,omitempty"`
	GPSLongitudeRef      string    `json:"GPSLongitudeRef,omitempty"`
	GPSAltitude          *float64  `json:"GPSAltitude,omitempty"`
	GPSAltitudeRef       *int      `json:"GPSAltitudeRef,omitempty"`
	GPSImgDirection      *float64  `json:"GPSImgDirection,omitempty"`
	GPSImgDirectionRef   string    `json:"GPSImgDirectionRef,omitempty"`
	GPSHPositioningError *float64  `json:"GPSHPositioningError,omitempty"`
	GPSDateStamp         string    `json:"GPSDateStamp,omitempty"`
	GPSTimeStamp         []float64 `json:"GPSTimeStamp,omitempty"`

	// Camera and capture time
	Make             string `json:"Make,omitempty"`
	Model            string `json:"Model,omitempty"`
	LensModel        string `json:"LensModel,omitempty"`
	DateTimeOriginal string `json:"DateTimeOriginal,omitempty"`
	CreateDate       string `json:"CreateDate,omitempty"`
}

// AltitudeBelowSeaLevel is the GPSAltitudeRef value indicating that GPSAltitude is a depth.
const AltitudeBelowSeaLevel = 1

// HasGPS reports whether 'md' carries any of the tags used to derive a location.
func (md *Metadata) HasGPS() bool {

	if md == nil {
		return false
	}

	return md.Latitude != nil || md.Longitude != nil || len(md.GPSLatitude) > 0 || len(md.GPSLongitude) > 0
}
