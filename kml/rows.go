package kml

import (
	"strings"

	"github.com/sfomuseum/go-photos-kmz/coords"
	"github.com/sfomuseum/go-photos-kmz/metadata"
)

// Row is a single label, value pair in a placemark's metadata table. Value is ready to be
// interpolated in to HTML.
type Row struct {
	Label string
	Value string
}

// Rows returns the metadata table for a photo, in display order. Latitude and Longitude are always
// present; every other row is omitted when the underlying value is absent.
func Rows(md *metadata.Metadata, pt coords.Point) []Row {

	if md == nil {
		md = &metadata.Metadata{}
	}

	rows := []Row{
		{Label: "Latitude", Value: coords.FormatCoordinate(pt.Latitude)},
		{Label: "Longitude", Value: coords.FormatCoordinate(pt.Longitude)},
	}

	if alt, ok := coords.Altitude(md); ok {
		rows = append(rows, Row{Label: "Altitude", Value: coords.FormatMeasure(alt) + " m"})
	}

	if dir, ok := coords.Direction(md); ok {
		rows = append(rows, Row{Label: "Direction", Value: coords.FormatMeasure(dir) + "°"})
	}

	if md.GPSImgDirectionRef != "" {
		rows = append(rows, Row{Label: "Direction Reference", Value: EscapeHTML(md.GPSImgDirectionRef)})
	}

	if md.HorizontalAccuracy != nil {
		rows = append(rows, Row{Label: "Horizontal Accuracy", Value: coords.FormatMeasure(*md.HorizontalAccuracy) + " m"})
	} else if md.GPSHPositioningError != nil {
		rows = append(rows, Row{Label: "Horizontal Accuracy", Value: coords.FormatMeasure(*md.GPSHPositioningError) + " m"})
	}

	if md.Make != "" || md.Model != "" {

		parts := make([]string, 0, 2)

		for _, p := range []string{md.Make, md.Model} {
			if p != "" {
				parts = append(parts, p)
			}
		}

		rows = append(rows, Row{Label: "Camera", Value: EscapeHTML(strings.Join(parts, " "))})
	}

	if md.LensModel != "" {
		rows = append(rows, Row{Label: "Lens", Value: EscapeHTML(md.LensModel)})
	}

	if md.DateTimeOriginal != "" {
		rows = append(rows, Row{Label: "Captured", Value: EscapeHTML(FormatDate(md.DateTimeOriginal))})
	} else if md.CreateDate != "" {
		rows = append(rows, Row{Label: "Captured", Value: EscapeHTML(FormatDate(md.CreateDate))})
	}

	if md.GPSDateStamp != "" && len(md.GPSTimeStamp) > 0 {
		rows = append(rows, Row{Label: "GPS Timestamp", Value: EscapeHTML(FormatGPSTimestamp(md))})
	}

	return rows
}
