package kml

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sfomuseum/go-photos-kmz/metadata"
)

// remember these datetime formats are Go's internal cray-cray for working with time...

var capture_layouts = []string{
	"2006:01:02 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05-07:00",
}

const iso_layout = "2006-01-02T15:04:05Z"

// FormatDate renders an EXIF date string as an ISO-8601 timestamp in UTC. Timestamps without a zone are
// assumed to be UTC. Values that can't be parsed are returned unchanged.
func FormatDate(v string) string {

	str_dt := strings.TrimSpace(v)

	for _, layout := range capture_layouts {

		t, err := time.Parse(layout, str_dt)

		if err == nil {
			return t.UTC().Format(iso_layout)
		}
	}

	return v
}

// FormatGPSTimestamp renders GPSDateStamp and GPSTimeStamp as "<date> HH:MM:SS".
func FormatGPSTimestamp(md *metadata.Metadata) string {

	parts := make([]string, len(md.GPSTimeStamp))

	for i, v := range md.GPSTimeStamp {
		parts[i] = padComponent(v)
	}

	return md.GPSDateStamp + " " + strings.Join(parts, ":")
}

func padComponent(v float64) string {

	var str string

	if v == math.Trunc(v) {
		str = strconv.FormatInt(int64(v), 10)
	} else {
		str = strconv.FormatFloat(v, 'f', -1, 64)
	}

	if len(str) < 2 {
		str = "0" + str
	}

	return str
}
