// gather prints a JSON record for every image found in one or more gocloud.dev/blob buckets.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sfomuseum/go-photos-kmz/common"
	"github.com/sfomuseum/go-photos-kmz/operations/convert"
	"github.com/sfomuseum/go-photos-kmz/operations/gather"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

type record struct {
	Path        string                 `json:"path"`
	Fingerprint string                 `json:"fingerprint"`
	Size        int                    `json:"size"`
	Located     bool                   `json:"located"`
	Latitude    float64                `json:"latitude,omitempty"`
	Longitude   float64                `json:"longitude,omitempty"`
	Skipped     string                 `json:"skipped,omitempty"`
	ImageHashes []*common.ImageHashRsp `json:"imagehashes,omitempty"`
}

func main() {

	hash_images := flag.Bool("hash-images", false, "Derive perceptual hashes for each image.")
	workers := flag.Int("workers", 1, "The maximum number of images to read concurrently.")
	log_level := flag.String("log-level", "info", "The log level: debug, info, warn or error.")

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: gather [options] bucket-uri [bucket-uri ...]")
		os.Exit(1)
	}

	ctx := context.Background()

	common.SetupLogger(os.Stderr, *log_level, "text")

	opts := &gather.GatherImagesOptions{
		HashImages: *hash_images,
		Workers:    *workers,
	}

	enc := json.NewEncoder(os.Stdout)

	for _, uri := range flag.Args() {

		bucket, err := blob.OpenBucket(ctx, uri)

		if err != nil {
			log.Fatalf("Failed to open %s, %v", uri, err)
		}

		images, err := gather.GatherImages(ctx, bucket, opts)

		bucket.Close()

		if err != nil {
			log.Fatalf("Failed to gather images from %s, %v", uri, err)
		}

		for _, im := range images {

			r := record{
				Path:        im.Filename,
				Fingerprint: im.Fingerprint,
				Size:        len(im.Body),
				ImageHashes: im.ImageHashes,
			}

			pt, _, reason := convert.Classify(im.Body)

			if reason == convert.SkipNone {
				r.Located = true
				r.Latitude = pt.Latitude
				r.Longitude = pt.Longitude
			} else {
				r.Skipped = reason.String()
			}

			err := enc.Encode(r)

			if err != nil {
				log.Fatalf("Failed to encode %s, %v", im.Filename, err)
			}
		}
	}
}
