package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sfomuseum/go-photos-kmz"
	"github.com/sfomuseum/go-photos-kmz/metadata/metadatatest"
	"github.com/sfomuseum/go-photos-kmz/operations/convert"
	"github.com/tidwall/gjson"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

func located() []byte {

	return metadatatest.JPEG(&metadatatest.Fixture{
		GPS: &metadatatest.GPS{
			Latitude:     []float64{48, 51, 29.6},
			LatitudeRef:  "N",
			Longitude:    []float64{2, 17, 40.2},
			LongitudeRef: "E",
		},
	})
}

func convertImages(t *testing.T, ctx context.Context, images ...*kmz.Image) *convert.BatchResult {

	rsp, err := convert.NewConverter().Convert(ctx, images)

	if err != nil {
		t.Fatalf("Failed to convert images, %v", err)
	}

	return rsp
}

func listKeys(t *testing.T, ctx context.Context, bucket *blob.Bucket) []string {

	keys := make([]string, 0)

	iter := bucket.List(nil)

	for {

		obj, err := iter.Next(ctx)

		if err == io.EOF {
			break
		}

		if err != nil {
			t.Fatalf("Failed to list bucket, %v", err)
		}

		keys = append(keys, obj.Key)
	}

	return keys
}

func TestPublish(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	root := t.TempDir()

	p, err := NewPublisher(bucket, "kmz/{id}.kmz")

	if err != nil {
		t.Fatalf("Failed to create publisher, %v", err)
	}

	p.FeaturesWriterURI = "fs://" + root
	p.ReportWriterURI = "fs://" + root

	first := convertImages(t, ctx, &kmz.Image{Filename: "a.jpg", Body: located()})

	key, err := p.Publish(ctx, first)

	if err != nil {
		t.Fatalf("Failed to publish, %v", err)
	}

	if key != "kmz/"+first.ID+".kmz" || p.Current() != key {
		t.Fatalf("Unexpected key %s (current %s)", key, p.Current())
	}

	attrs, err := bucket.Attributes(ctx, key)

	if err != nil {
		t.Fatalf("Failed to read attributes for %s, %v", key, err)
	}

	if attrs.ContentType != ContentType || attrs.Size != int64(len(first.Archive)) {
		t.Fatalf("Unexpected attributes: %s %d", attrs.ContentType, attrs.Size)
	}

	features, err := os.ReadFile(filepath.Join(root, p.FeaturesPath))

	if err != nil {
		t.Fatalf("Failed to read features, %v", err)
	}

	if gjson.GetBytes(features, "type").String() != "FeatureCollection" || gjson.GetBytes(features, "features.#").Int() != 1 {
		t.Fatalf("Unexpected features: %s", features)
	}

	report, err := os.ReadFile(filepath.Join(root, p.ReportPath))

	if err != nil {
		t.Fatalf("Failed to read report, %v", err)
	}

	if gjson.GetBytes(report, "id").String() != first.ID {
		t.Fatalf("Unexpected report: %s", report)
	}

	second := convertImages(t, ctx, &kmz.Image{Filename: "b.jpg", Body: located()})

	key2, err := p.Publish(ctx, second)

	if err != nil {
		t.Fatalf("Failed to publish, %v", err)
	}

	keys := listKeys(t, ctx, bucket)

	if len(keys) != 1 || keys[0] != key2 {
		t.Fatalf("Expected only %s to remain, got %v", key2, keys)
	}

	err = p.Release(ctx)

	if err != nil {
		t.Fatalf("Failed to release archive, %v", err)
	}

	if len(listKeys(t, ctx, bucket)) != 0 || p.Current() != "" {
		t.Fatalf("Expected bucket to be empty after release")
	}

	err = p.Release(ctx)

	if err != nil {
		t.Fatalf("Expected a second release to be a no-op, %v", err)
	}
}

func TestPublishNothingConverted(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	p, err := NewPublisher(bucket, "photos.kmz")

	if err != nil {
		t.Fatalf("Failed to create publisher, %v", err)
	}

	_, err = p.Publish(ctx, convertImages(t, ctx, &kmz.Image{Filename: "a.jpg", Body: located()}))

	if err != nil {
		t.Fatalf("Failed to publish, %v", err)
	}

	empty := convertImages(t, ctx, &kmz.Image{Filename: "b.jpg", Body: metadatatest.JPEG(&metadatatest.Fixture{Make: "Canon"})})

	key, err := p.Publish(ctx, empty)

	if err != nil {
		t.Fatalf("Failed to publish, %v", err)
	}

	if key != "" || p.Current() != "" {
		t.Fatalf("Did not expect an archive to be published")
	}

	if keys := listKeys(t, ctx, bucket); len(keys) != 0 {
		t.Fatalf("Expected the previous archive to be released, got %v", keys)
	}
}

func TestPublishReleasedExternally(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	p, err := NewPublisher(bucket, "photos.kmz")

	if err != nil {
		t.Fatalf("Failed to create publisher, %v", err)
	}

	p.Public = true

	result := convertImages(t, ctx, &kmz.Image{Filename: "a.jpg", Body: located()})

	key, err := p.Publish(ctx, result)

	if err != nil {
		t.Fatalf("Failed to publish, %v", err)
	}

	err = bucket.Delete(ctx, key)

	if err != nil {
		t.Fatalf("Failed to delete %s, %v", key, err)
	}

	err = p.Release(ctx)

	if err != nil {
		t.Fatalf("Expected a missing archive to be tolerated, %v", err)
	}
}

func TestNewPublisher(t *testing.T) {

	_, err := NewPublisher(nil, "photos.kmz")

	if err == nil {
		t.Fatalf("Expected an error for a missing bucket")
	}

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	_, err = NewPublisher(bucket, " ")

	if err == nil {
		t.Fatalf("Expected an error for a missing key")
	}
}

func TestPublishNilResult(t *testing.T) {

	ctx := context.Background()

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	p, err := NewPublisher(bucket, "photos.kmz")

	if err != nil {
		t.Fatalf("Failed to create publisher, %v", err)
	}

	_, err = p.Publish(ctx, convertImages(t, ctx, &kmz.Image{Filename: "a.jpg", Body: located()}))

	if err != nil {
		t.Fatalf("Failed to publish, %v", err)
	}

	_, err = p.Publish(ctx, nil)

	if err == nil {
		t.Fatalf("Expected an error for a nil result")
	}

	if p.Current() == "" {
		t.Fatalf("Expected the current archive to be left in place")
	}
}
