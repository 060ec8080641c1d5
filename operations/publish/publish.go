// Package publish writes the output of a conversion to its final destinations: the KMZ archive to a gocloud.dev/blob
// bucket and the GeoJSON index and JSON report to whosonfirst/go-writer targets.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sfomuseum/go-photos-kmz/common"
	"github.com/sfomuseum/go-photos-kmz/operations/convert"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// The content type assigned to published archives.
const ContentType = "application/vnd.google-earth.kmz"

// The placeholder in Publisher.Key that is replaced by a batch's run ID.
const IdPlaceholder = "{id}"

// Publisher owns a single "current" archive in a bucket. Publishing a new archive releases the previous one.
type Publisher struct {
	// The bucket archives are written to.
	Bucket *blob.Bucket
	// The key archives are written to. It may contain IdPlaceholder.
	Key string
	// If true ask the underlying storage (S3) to make archives publicly readable.
	Public bool
	// An optional whosonfirst/go-writer URI that the GeoJSON index of located images is written to.
	FeaturesWriterURI string
	// The path, relative to FeaturesWriterURI, of the GeoJSON index.
	FeaturesPath string
	// An optional whosonfirst/go-writer URI that the batch report is written to.
	ReportWriterURI string
	// The path, relative to ReportWriterURI, of the batch report.
	ReportPath string
	current    string
	mu         *sync.RWMutex
}

// NewPublisher returns a Publisher that writes archives to 'key' in 'bucket'.
func NewPublisher(bucket *blob.Bucket, key string) (*Publisher, error) {

	if bucket == nil {
		return nil, errors.New("Missing bucket")
	}

	if strings.TrimSpace(key) == "" {
		return nil, errors.New("Missing archive key")
	}

	p := &Publisher{
		Bucket:       bucket,
		Key:          key,
		FeaturesPath: "photos.geojson",
		ReportPath:   "report.json",
		mu:           new(sync.RWMutex),
	}

	return p, nil
}

// Current returns the key of the currently published archive, or "" if there isn't one.
func (p *Publisher) Current() string {

	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.current
}

// Publish releases the previously published archive and then writes the archive in 'result', if present, returning
// its key. The GeoJSON index is written alongside the archive and the report is always written, if their writer URIs
// are defined.
func (p *Publisher) Publish(ctx context.Context, result *convert.BatchResult) (string, error) {

	if result == nil {
		return "", errors.New("Missing batch result")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	logger := slog.Default().With("run", result.ID)

	err := p.release(ctx)

	if err != nil {
		return "", err
	}

	key := ""

	if result.HasArchive() {

		key = strings.ReplaceAll(p.Key, IdPlaceholder, result.ID)

		err = p.writeArchive(ctx, key, result.Archive)

		if err != nil {
			logger.Error("Failed to publish archive", "key", key, "error", err)
			return "", err
		}

		p.current = key
		logger.Info("Published archive", "key", key, "bytes", len(result.Archive))

		if p.FeaturesWriterURI != "" {

			enc_features, err := json.Marshal(result.Features)

			if err != nil {
				return "", fmt.Errorf("Failed to marshal features, %w", err)
			}

			err = p.write(ctx, p.FeaturesWriterURI, p.FeaturesPath, enc_features)

			if err != nil {
				logger.Error("Failed to publish features", "path", p.FeaturesPath, "error", err)
				return "", err
			}
		}
	}

	if p.ReportWriterURI != "" {

		enc_report, err := convert.Report(result)

		if err != nil {
			return "", fmt.Errorf("Failed to create report, %w", err)
		}

		err = p.write(ctx, p.ReportWriterURI, p.ReportPath, enc_report)

		if err != nil {
			logger.Error("Failed to publish report", "path", p.ReportPath, "error", err)
			return "", err
		}
	}

	return key, nil
}

// Release deletes the currently published archive, if there is one.
func (p *Publisher) Release(ctx context.Context) error {

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.release(ctx)
}

func (p *Publisher) release(ctx context.Context) error {

	if p.current == "" {
		return nil
	}

	err := p.Bucket.Delete(ctx, p.current)

	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("Failed to release %s, %w", p.current, err)
	}

	slog.Debug("Released archive", "key", p.current)

	p.current = ""
	return nil
}

func (p *Publisher) writeArchive(ctx context.Context, key string, body []byte) error {

	wr_opts := &blob.WriterOptions{
		ContentType: ContentType,
	}

	if p.Public {

		before := func(asFunc func(interface{}) bool) error {

			s3_req := &s3manager.UploadInput{}
			ok := asFunc(&s3_req)

			if ok {
				s3_req.ACL = aws.String("public-read")
			}

			return nil
		}

		wr_opts.BeforeWrite = before
	}

	wr, err := p.Bucket.NewWriter(ctx, key, wr_opts)

	if err != nil {
		return fmt.Errorf("Failed to create writer for %s, %w", key, err)
	}

	_, err = wr.Write(body)

	if err != nil {
		wr.Close()
		return fmt.Errorf("Failed to write %s, %w", key, err)
	}

	err = wr.Close()

	if err != nil {
		return fmt.Errorf("Failed to close %s, %w", key, err)
	}

	return nil
}

func (p *Publisher) write(ctx context.Context, writer_uri string, path string, body []byte) error {
	return common.WriteBytes(ctx, writer_uri, path, body)
}
