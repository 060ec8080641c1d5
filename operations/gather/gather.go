// Package gather collects images from a gocloud.dev/blob bucket, or a whosonfirst/go-reader source, for conversion.
package gather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/sfomuseum/go-photos-kmz"
	"github.com/sfomuseum/go-photos-kmz/common"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"
)

// GatherImageCallbackFunc is invoked, in key order, for each image found by CrawlImages.
type GatherImageCallbackFunc func(context.Context, string) error

type GatherImagesOptions struct {
	// If true derive perceptual hashes for each image. Images that can not be hashed are still gathered.
	HashImages bool
	// The maximum number of images read concurrently. Values less than 1 are treated as 1.
	Workers int
}

// DefaultGatherImagesOptions returns a GatherImagesOptions instance that reads images one at a time and does not hash them.
func DefaultGatherImagesOptions() *GatherImagesOptions {

	opts := &GatherImagesOptions{
		HashImages: false,
		Workers:    1,
	}

	return opts
}

// GatherImages returns every image stored in 'bucket', ordered by key.
func GatherImages(ctx context.Context, bucket *blob.Bucket, opts *GatherImagesOptions) ([]*kmz.Image, error) {

	paths := make([]string, 0)

	cb := func(ctx context.Context, path string) error {
		paths = append(paths, path)
		return nil
	}

	err := CrawlImages(ctx, bucket, cb)

	if err != nil {
		return nil, fmt.Errorf("Failed to crawl bucket, %w", err)
	}

	read := func(ctx context.Context, path string) ([]byte, error) {
		return bucket.ReadAll(ctx, path)
	}

	return gatherImages(ctx, paths, read, opts)
}

// ReadImages returns the images at 'paths' read from the whosonfirst/go-reader source defined by 'reader_uri', in the
// order they were specified.
func ReadImages(ctx context.Context, reader_uri string, paths []string, opts *GatherImagesOptions) ([]*kmz.Image, error) {

	_, err := common.NewReader(ctx, reader_uri)

	if err != nil {
		return nil, err
	}

	read := func(ctx context.Context, path string) ([]byte, error) {
		return common.ReadAll(ctx, reader_uri, path)
	}

	return gatherImages(ctx, paths, read, opts)
}

type readFunc func(context.Context, string) ([]byte, error)

func gatherImages(ctx context.Context, paths []string, read readFunc, opts *GatherImagesOptions) ([]*kmz.Image, error) {

	if opts == nil {
		opts = DefaultGatherImagesOptions()
	}

	workers := opts.Workers

	if workers < 1 {
		workers = 1
	}

	images := make([]*kmz.Image, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {

		g.Go(func() error {

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
				// pass
			}

			im, err := gatherImage(gctx, path, read, opts)

			if err != nil {
				return err
			}

			images[i] = im
			return nil
		})
	}

	err := g.Wait()

	if err != nil {
		return nil, err
	}

	return images, nil
}

func gatherImage(ctx context.Context, path string, read readFunc, opts *GatherImagesOptions) (*kmz.Image, error) {

	logger := slog.Default().With("image", path)

	body, err := read(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", path, err)
	}

	fp, err := common.Fingerprint(body)

	if err != nil {
		return nil, fmt.Errorf("Failed to fingerprint %s, %w", path, err)
	}

	im := &kmz.Image{
		Filename:    path,
		Body:        body,
		Fingerprint: fp,
	}

	if opts.HashImages {

		hashes, err := common.ImageHashes(ctx, body)

		if err != nil {
			logger.Warn("Failed to hash image", "error", err)
		} else {
			im.ImageHashes = hashes
		}
	}

	logger.Debug("Gathered image", "fingerprint", fp, "size", len(body))
	return im, nil
}

// CrawlImages iterates, recursively, through all the items stored in 'bucket' in key order and dispatches
// the key of every item whose extension maps to an "image/" mime type to 'cb'.
func CrawlImages(ctx context.Context, bucket *blob.Bucket, cb GatherImageCallbackFunc) error {

	var list func(context.Context, *blob.Bucket, string) error

	list = func(ctx context.Context, b *blob.Bucket, prefix string) error {

		iter := b.List(&blob.ListOptions{
			Delimiter: "/",
			Prefix:    prefix,
		})

		for {

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				// pass
			}

			obj, err := iter.Next(ctx)

			if err == io.EOF {
				break
			}

			if err != nil {
				return err
			}

			if obj.IsDir {

				err := list(ctx, b, obj.Key)

				if err != nil {
					return err
				}

				continue
			}

			if !IsImage(obj.Key) {
				continue
			}

			err = cb(ctx, obj.Key)

			if err != nil {
				return err
			}
		}

		return nil
	}

	return list(ctx, bucket, "")
}

// IsImage reports whether the extension of 'path' maps to an "image/" mime type.
func IsImage(path string) bool {

	ext := filepath.Ext(path)

	t := mime.TypeByExtension(ext)

	if t == "" {
		return false
	}

	return strings.HasPrefix(t, "image/")
}
