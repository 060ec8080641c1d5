package convert

import (
	"github.com/sfomuseum/go-photos-kmz/coords"
	"github.com/sfomuseum/go-photos-kmz/metadata"
)

// Classify decodes the metadata in 'body' and resolves its location. If the image can not be located
// the returned SkipReason says why; otherwise it is SkipNone.
func Classify(body []byte) (coords.Point, *metadata.Metadata, SkipReason) {
	pt, md, reason, _ := classify(body)
	return pt, md, reason
}

func classify(body []byte) (coords.Point, *metadata.Metadata, SkipReason, error) {

	md, err := metadata.DecodeBytes(body)

	if err != nil {
		return coords.Point{}, nil, SkipFormatError, err
	}

	pt, ok := coords.Resolve(md)

	if !ok {
		return coords.Point{}, md, SkipNoLocation, nil
	}

	return pt, md, SkipNone, nil
}
