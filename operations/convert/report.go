package convert

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// Report returns a JSON-encoded summary of 'result': its counts, per-image statuses and, if any images were
// located, their bounding box.
func Report(result *BatchResult) ([]byte, error) {

	body := []byte(`{}`)

	type update struct {
		path  string
		value interface{}
	}

	statuses := result.Statuses

	if statuses == nil {
		statuses = make([]*Status, 0)
	}

	updates := []update{
		{"id", result.ID},
		{"summary", result.Summary()},
		{"processed", result.Processed},
		{"skipped", result.Skipped},
		{"archive.size", len(result.Archive)},
		{"statuses", statuses},
	}

	if result.Features != nil {

		if b, ok := result.Features.Bound(); ok {
			updates = append(updates, update{"bbox", []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()}})
		}
	}

	var err error

	for _, u := range updates {

		body, err = sjson.SetBytes(body, u.path, u.value)

		if err != nil {
			return nil, fmt.Errorf("Failed to assign %s property, %w", u.path, err)
		}
	}

	return body, nil
}
