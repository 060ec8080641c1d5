package gather

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sfomuseum/go-photos-kmz/metadata/metadatatest"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

func seedBucket(t *testing.T, ctx context.Context, files map[string][]byte) *blob.Bucket {

	bucket := memblob.OpenBucket(nil)

	for k, body := range files {

		err := bucket.WriteAll(ctx, k, body, nil)

		if err != nil {
			t.Fatalf("Failed to write %s, %v", k, err)
		}
	}

	return bucket
}

func TestGatherImages(t *testing.T) {

	ctx := context.Background()

	plain := metadatatest.Plain()

	bucket := seedBucket(t, ctx, map[string][]byte{
		"b.jpg":            plain,
		"a.JPG":            plain,
		"notes.txt":        []byte("hello"),
		"trip/day2/c.jpeg": plain,
		"trip/day1/d.jpg":  plain,
		"trip/readme.md":   []byte("# trip"),
		"trip/day1/e.png":  plain,
	})

	defer bucket.Close()

	opts := DefaultGatherImagesOptions()
	opts.Workers = 3

	images, err := GatherImages(ctx, bucket, opts)

	if err != nil {
		t.Fatalf("Failed to gather images, %v", err)
	}

	expected := []string{
		"a.JPG",
		"b.jpg",
		"trip/day1/d.jpg",
		"trip/day1/e.png",
		"trip/day2/c.jpeg",
	}

	if len(images) != len(expected) {
		t.Fatalf("Expected %d images, got %d", len(expected), len(images))
	}

	for i, im := range images {

		if im.Filename != expected[i] {
			t.Fatalf("Unexpected image at %d: %s (expected %s)", i, im.Filename, expected[i])
		}

		if len(im.Fingerprint) != 40 {
			t.Fatalf("Expected a SHA-1 fingerprint for %s, got %q", im.Filename, im.Fingerprint)
		}

		if len(im.ImageHashes) != 0 {
			t.Fatalf("Did not expect image hashes for %s", im.Filename)
		}
	}

	if images[0].Fingerprint != images[1].Fingerprint {
		t.Fatalf("Expected identical bodies to have identical fingerprints")
	}
}

func TestGatherImagesWithHashes(t *testing.T) {

	ctx := context.Background()

	bucket := seedBucket(t, ctx, map[string][]byte{
		"plain.jpg": metadatatest.Plain(),
		"exif.jpg":  metadatatest.JPEG(&metadatatest.Fixture{Make: "Apple"}),
	})

	defer bucket.Close()

	opts := DefaultGatherImagesOptions()
	opts.HashImages = true

	images, err := GatherImages(ctx, bucket, opts)

	if err != nil {
		t.Fatalf("Failed to gather images, %v", err)
	}

	if len(images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(images))
	}

	// exif.jpg carries no pixel data so it can't be hashed but it is still gathered

	if images[0].Filename != "exif.jpg" || len(images[0].ImageHashes) != 0 {
		t.Fatalf("Unexpected hashes for exif.jpg: %v", images[0].ImageHashes)
	}

	if images[1].Filename != "plain.jpg" || len(images[1].ImageHashes) != 2 {
		t.Fatalf("Expected 2 hashes for plain.jpg, got %v", images[1].ImageHashes)
	}

	if images[1].ImageHashes[0].Approach != "avg" || images[1].ImageHashes[1].Approach != "diff" {
		t.Fatalf("Unexpected hash order")
	}
}

func TestGatherImagesCancelled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())

	bucket := seedBucket(t, ctx, map[string][]byte{
		"a.jpg": metadatatest.Plain(),
	})

	defer bucket.Close()

	cancel()

	_, err := GatherImages(ctx, bucket, nil)

	if err == nil {
		t.Fatalf("Expected an error for a cancelled context")
	}
}

func TestReadImages(t *testing.T) {

	ctx := context.Background()

	root := t.TempDir()

	err := os.MkdirAll(filepath.Join(root, "sub"), 0755)

	if err != nil {
		t.Fatalf("Failed to create directory, %v", err)
	}

	body := metadatatest.Plain()

	for _, rel := range []string{"one.jpg", "sub/two.jpg"} {

		err := os.WriteFile(filepath.Join(root, rel), body, 0644)

		if err != nil {
			t.Fatalf("Failed to write %s, %v", rel, err)
		}
	}

	reader_uri := "fs://" + root

	images, err := ReadImages(ctx, reader_uri, []string{"sub/two.jpg", "one.jpg"}, nil)

	if err != nil {
		t.Fatalf("Failed to read images, %v", err)
	}

	if len(images) != 2 || images[0].Filename != "sub/two.jpg" || images[1].Filename != "one.jpg" {
		t.Fatalf("Unexpected images: %v", images)
	}

	if len(images[0].Body) != len(body) {
		t.Fatalf("Unexpected body length %d", len(images[0].Body))
	}

	_, err = ReadImages(ctx, reader_uri, []string{"missing.jpg"}, nil)

	if err == nil {
		t.Fatalf("Expected an error for a missing file")
	}
}

func TestIsImage(t *testing.T) {

	tests := map[string]bool{
		"a.jpg":     true,
		"a.JPEG":    true,
		"a.png":     true,
		"a.txt":     false,
		"noext":     false,
		"dir/a.gif": true,
	}

	for path, expected := range tests {

		if IsImage(path) != expected {
			t.Fatalf("Unexpected result for %s, expected %t", path, expected)
		}
	}
}

func TestReadImagesInvalidURI(t *testing.T) {

	ctx := context.Background()

	_, err := ReadImages(ctx, t.TempDir(), []string{"a.jpg"}, nil)

	if err == nil {
		t.Fatalf("Expected an error for a reader URI without a scheme")
	}
}
