package kmz

// This package defines common types for converting batches of geotagged photos in to KMZ-style archives of KML placemarks, one per photo, along with a GeoJSON FeatureCollection of the photos that could be located. Operations include: Gathering images, converting images and publishing the results.
