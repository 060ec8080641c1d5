package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/whosonfirst/go-ioutil"
	"github.com/whosonfirst/go-writer/v3"
)

var writers = make(map[string]writer.Writer)
var writers_mu = new(sync.RWMutex)

// NewWriter returns the whosonfirst/go-writer.Writer for the output target 'uri'. 'uri' must have a scheme,
// for example "fs:///maps" or "stdout://". Instances are cached until CloseWriters is called.
func NewWriter(ctx context.Context, uri string) (writer.Writer, error) {

	err := validateURI("writer", uri)

	if err != nil {
		return nil, err
	}

	writers_mu.Lock()
	defer writers_mu.Unlock()

	wr, ok := writers[uri]

	if ok {
		return wr, nil
	}

	wr, err = writer.NewWriter(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create writer for '%s', %w", uri, err)
	}

	writers[uri] = wr
	return wr, nil
}

// WriteBytes writes 'body' to 'path' in the output target defined by 'uri'.
func WriteBytes(ctx context.Context, uri string, path string, body []byte) error {

	wr, err := NewWriter(ctx, uri)

	if err != nil {
		return err
	}

	fh, err := ioutil.NewReadSeekCloser(bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("Failed to create reader for %s, %w", path, err)
	}

	_, err = wr.Write(ctx, path, fh)

	if err != nil {
		return fmt.Errorf("Failed to write %s, %w", path, err)
	}

	return nil
}

// CloseWriters closes and discards every cached writer. Errors from individual writers are joined.
func CloseWriters(ctx context.Context) error {

	writers_mu.Lock()
	defer writers_mu.Unlock()

	var errs []error

	for uri, wr := range writers {

		err := wr.Close(ctx)

		if err != nil {
			errs = append(errs, fmt.Errorf("Failed to close writer for '%s', %w", uri, err))
		}
	}

	writers = make(map[string]writer.Writer)

	return errors.Join(errs...)
}
