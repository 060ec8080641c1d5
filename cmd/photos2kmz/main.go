// photos2kmz converts geotagged JPEG images in to a KMZ archive of KML placemarks and a GeoJSON index of their locations.
//
// Usage:
//
//	photos2kmz -source-bucket-uri file:///photos -output-bucket-uri file:///maps
//	photos2kmz -source-reader-uri fs:///photos -output-bucket-uri file:///maps a.jpg b.jpg
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sfomuseum/go-photos-kmz"
	"github.com/sfomuseum/go-photos-kmz/common"
	"github.com/sfomuseum/go-photos-kmz/config"
	"github.com/sfomuseum/go-photos-kmz/operations/convert"
	"github.com/sfomuseum/go-photos-kmz/operations/gather"
	"github.com/sfomuseum/go-photos-kmz/operations/publish"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// flag name -> config key
var settings = map[string]string{
	"source-bucket-uri":   "source.bucket_uri",
	"source-reader-uri":   "source.reader_uri",
	"output-bucket-uri":   "output.bucket_uri",
	"archive-key":         "output.archive_key",
	"public":              "output.public",
	"features-writer-uri": "output.features_writer_uri",
	"features-path":       "output.features_path",
	"report-writer-uri":   "output.report_writer_uri",
	"report-path":         "output.report_path",
	"workers":             "convert.workers",
	"hash-images":         "convert.hash_images",
	"compression":         "convert.compression",
	"level":               "convert.level",
	"log-level":           "log.level",
	"log-format":          "log.format",
	"metrics-textfile":    "metrics.textfile",
}

func main() {

	config_path := flag.String("config", "", "The path to an optional YAML config file.")

	flag.String("source-bucket-uri", "", "A valid gocloud.dev/blob URI whose images will be converted.")
	flag.String("source-reader-uri", "", "A valid whosonfirst/go-reader URI that the paths passed as arguments are read from.")
	flag.String("output-bucket-uri", "", "A valid gocloud.dev/blob URI where the KMZ archive is published.")
	flag.String("archive-key", "photos.kmz", "The key of the published archive. \"{id}\" is replaced by the run ID.")
	flag.Bool("public", false, "Make the published archive publicly readable (S3 buckets only).")
	flag.String("features-writer-uri", "", "An optional whosonfirst/go-writer URI for the GeoJSON index of located images.")
	flag.String("features-path", "photos.geojson", "The path of the GeoJSON index, relative to -features-writer-uri.")
	flag.String("report-writer-uri", "", "An optional whosonfirst/go-writer URI for the JSON batch report.")
	flag.String("report-path", "report.json", "The path of the batch report, relative to -report-writer-uri.")
	flag.Int("workers", 1, "The maximum number of images to process concurrently.")
	flag.Bool("hash-images", false, "Derive perceptual hashes for each image and include them in the GeoJSON index.")
	flag.String("compression", "deflate", "The archive compression method: 'store' or 'deflate'.")
	flag.Int("level", -1, "The deflate compression level.")
	flag.String("log-level", "info", "The log level: debug, info, warn or error.")
	flag.String("log-format", "text", "The log format: text or json.")
	flag.String("metrics-textfile", "", "An optional path to write conversion metrics to, in the Prometheus text format.")

	flag.Parse()

	ctx := context.Background()

	overrides := make(map[string]interface{})

	flag.Visit(func(fl *flag.Flag) {

		k, ok := settings[fl.Name]

		if !ok {
			return
		}

		overrides[k] = fl.Value.(flag.Getter).Get()
	})

	cfg, err := config.Load(*config_path, overrides)

	if err != nil {
		log.Fatalf("Failed to load config, %v", err)
	}

	err = cfg.Validate()

	if err != nil {
		log.Fatal(err)
	}

	logger := common.SetupLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	err = run(ctx, cfg, flag.Args(), logger)

	if err != nil {
		logger.Error("Failed to convert photos", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, paths []string, logger *slog.Logger) error {

	defer common.ResetReaders()

	defer func() {

		err := common.CloseWriters(ctx)

		if err != nil {
			logger.Warn("Failed to close writers", "error", err)
		}
	}()

	gather_opts := &gather.GatherImagesOptions{
		HashImages: cfg.Convert.HashImages,
		Workers:    cfg.Convert.Workers,
	}

	var images []*kmz.Image

	if cfg.Source.BucketURI != "" {

		source, err := blob.OpenBucket(ctx, cfg.Source.BucketURI)

		if err != nil {
			return fmt.Errorf("Failed to open source bucket, %w", err)
		}

		defer source.Close()

		images, err = gather.GatherImages(ctx, source, gather_opts)

		if err != nil {
			return err
		}

	} else {

		v, err := gather.ReadImages(ctx, cfg.Source.ReaderURI, paths, gather_opts)

		if err != nil {
			return err
		}

		images = v
	}

	archive_opts, err := cfg.Convert.AssembleOptions()

	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()

	c := convert.NewConverter()
	c.Workers = cfg.Convert.Workers
	c.Archive = archive_opts
	c.Metrics = convert.NewMetrics(reg)
	c.Logger = logger

	result, err := c.Convert(ctx, images)

	if errors.Is(err, convert.ErrNoImages) {
		fmt.Println(err.Error())
		return nil
	}

	if err != nil {
		return err
	}

	output, err := blob.OpenBucket(ctx, cfg.Output.BucketURI)

	if err != nil {
		return fmt.Errorf("Failed to open output bucket, %w", err)
	}

	defer output.Close()

	p, err := publish.NewPublisher(output, cfg.Output.ArchiveKey)

	if err != nil {
		return err
	}

	p.Public = cfg.Output.Public
	p.FeaturesWriterURI = cfg.Output.FeaturesWriterURI
	p.FeaturesPath = cfg.Output.FeaturesPath
	p.ReportWriterURI = cfg.Output.ReportWriterURI
	p.ReportPath = cfg.Output.ReportPath

	key, err := p.Publish(ctx, result)

	if err != nil {
		return err
	}

	if key != "" {
		logger.Info("Archive ready", "key", key)
	}

	fmt.Println(result.Summary())

	if cfg.Metrics.Textfile != "" {

		err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg)

		if err != nil {
			return fmt.Errorf("Failed to write metrics, %w", err)
		}
	}

	return nil
}
