// Package index accumulates located photos in to a GeoJSON FeatureCollection for map visualization.
package index

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sfomuseum/go-photos-kmz/coords"
)

// Index is an ordered collection of named points. Features are stored in the order they are appended.
type Index struct {
	fc    *geojson.FeatureCollection
	bound orb.Bound
}

// New returns an empty Index.
func New() *Index {

	idx := &Index{
		fc: geojson.NewFeatureCollection(),
	}

	return idx
}

// Append adds a Point feature for 'pt', with a "name" property and any additional properties in 'props'.
func (idx *Index) Append(name string, pt coords.Point, props map[string]interface{}) {

	p := orb.Point{pt.Longitude, pt.Latitude}

	f := geojson.NewFeature(p)

	for k, v := range props {
		f.Properties[k] = v
	}

	f.Properties["name"] = name

	if len(idx.fc.Features) == 0 {
		idx.bound = p.Bound()
	} else {
		idx.bound = idx.bound.Extend(p)
	}

	idx.fc.Append(f)
}

// Len returns the number of features in the index.
func (idx *Index) Len() int {
	return len(idx.fc.Features)
}

// Bound returns the bounding envelope of every point in the index. The second return value is false if
// the index is empty.
func (idx *Index) Bound() (orb.Bound, bool) {

	if idx.Len() == 0 {
		return orb.Bound{}, false
	}

	return idx.bound, true
}

// FeatureCollection returns the underlying geojson.FeatureCollection. The bbox member is assigned
// if the index is not empty.
func (idx *Index) FeatureCollection() *geojson.FeatureCollection {

	idx.fc.BBox = nil

	if b, ok := idx.Bound(); ok {
		idx.fc.BBox = geojson.NewBBox(b)
	}

	return idx.fc
}

// MarshalJSON encodes the index as a GeoJSON FeatureCollection.
func (idx *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(idx.FeatureCollection())
}
