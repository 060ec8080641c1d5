// Package convert converts batches of images in to a KMZ archive of placemarks and a GeoJSON index of located images.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sfomuseum/go-photos-kmz"
	"github.com/sfomuseum/go-photos-kmz/archive"
	"github.com/sfomuseum/go-photos-kmz/coords"
	"github.com/sfomuseum/go-photos-kmz/index"
	"github.com/sfomuseum/go-photos-kmz/kml"
	"golang.org/x/sync/errgroup"
)

// ErrNoImages is returned by Convert when none of its inputs have a JPEG extension.
var ErrNoImages = errors.New("No JPG files found in the selection")

// Converter drives the conversion of a batch of images. Its fields are read-only once Convert has been called.
type Converter struct {
	// The maximum number of images decoded and rendered concurrently. Values less than 1 are treated as 1.
	Workers int
	// Options for assembling the final archive. If nil archive.DefaultAssembleOptions is used.
	Archive *archive.AssembleOptions
	// Optional metrics.
	Metrics *Metrics
	// Optional logger. If nil slog.Default is used.
	Logger *slog.Logger
}

// NewConverter returns a Converter that processes images one at a time.
func NewConverter() *Converter {

	c := &Converter{
		Workers: 1,
		Archive: archive.DefaultAssembleOptions(),
	}

	return c
}

// item is the result of processing a single image, before it is merged in to a BatchResult.
type item struct {
	point  coords.Point
	doc    []byte
	reason SkipReason
	err    error
}

// Convert processes every JPEG image in 'images'. Non-JPEG images are ignored. Images without a location, or whose
// metadata can't be read, are skipped without failing the batch. Statuses, features and archive entries are all
// in input order regardless of the number of workers.
func (c *Converter) Convert(ctx context.Context, images []*kmz.Image) (*BatchResult, error) {

	t1 := time.Now()
	defer c.Metrics.observe(t1)

	run_id := uuid.NewString()

	logger := c.Logger

	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("run", run_id)

	candidates := make([]*kmz.Image, 0, len(images))

	for _, im := range images {

		if !kmz.IsJPEG(im.Filename) {
			logger.Debug("Ignoring non-JPEG file", "image", im.Filename)
			continue
		}

		candidates = append(candidates, im)
	}

	if len(candidates) == 0 {
		return nil, ErrNoImages
	}

	logger.Debug("Convert images", "count", len(candidates))

	workers := c.Workers

	if workers < 1 {
		workers = 1
	}

	items := make([]*item, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, im := range candidates {

		g.Go(func() error {

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
				// pass
			}

			items[i] = c.process(im)
			return nil
		})
	}

	err := g.Wait()

	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		ID:       run_id,
		Features: index.New(),
		Statuses: make([]*Status, 0, len(candidates)),
	}

	namer := new(archive.Namer)
	docs := make([]*archive.Document, 0)

	for i, it := range items {

		im := candidates[i]
		name := im.Name()

		if it.reason != SkipNone {

			if it.err != nil {
				logger.Warn("Failed to read metadata", "image", name, "error", it.err)
			} else {
				logger.Debug("Skipping image", "image", name, "reason", it.reason.String())
			}

			result.Statuses = append(result.Statuses, &Status{
				Name:    name,
				Outcome: Skipped,
				Detail:  it.reason.String(),
			})

			result.Skipped += 1
			c.Metrics.skip(it.reason)
			continue
		}

		entry_name := namer.Name(im.Filename)

		docs = append(docs, &archive.Document{
			EntryName: entry_name,
			Content:   it.doc,
		})

		result.Features.Append(name, it.point, featureProperties(im))

		result.Statuses = append(result.Statuses, &Status{
			Name:      name,
			Outcome:   Processed,
			Detail:    fmt.Sprintf("GPS: %s, %s", coords.FormatCoordinate(it.point.Latitude), coords.FormatCoordinate(it.point.Longitude)),
			EntryName: entry_name,
		})

		result.Processed += 1
		c.Metrics.processed()
	}

	if result.Processed == 0 {
		logger.Info("No images were converted", "skipped", result.Skipped)
		return result, nil
	}

	opts := c.Archive

	if opts == nil {
		opts = archive.DefaultAssembleOptions()
	}

	body, err := archive.Assemble(ctx, docs, opts)

	if err != nil {
		return nil, fmt.Errorf("Failed to assemble archive, %w", err)
	}

	result.Archive = body

	logger.Info("Finished converting images", "processed", result.Processed, "skipped", result.Skipped, "bytes", len(body))
	return result, nil
}

func (c *Converter) process(im *kmz.Image) *item {

	pt, md, reason, err := classify(im.Body)

	if reason != SkipNone {
		return &item{reason: reason, err: err}
	}

	name := im.Name()
	doc := kml.Document(name, md, pt, kml.DataURI(name, im.Body))

	return &item{point: pt, doc: doc}
}

func featureProperties(im *kmz.Image) map[string]interface{} {

	props := make(map[string]interface{})

	if im.Fingerprint != "" {
		props["media:fingerprint"] = im.Fingerprint
	}

	for _, h := range im.ImageHashes {
		k := fmt.Sprintf("media:imagehash_%s", h.Approach)
		props[k] = h.Hash
	}

	return props
}
