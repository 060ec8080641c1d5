package common

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/whosonfirst/go-reader/v2"
)

var readers = make(map[string]reader.Reader)
var readers_mu = new(sync.RWMutex)

// NewReader returns the whosonfirst/go-reader.Reader for the image source 'uri'. 'uri' must have a scheme,
// for example "fs:///photos". Instances are cached until ResetReaders is called.
func NewReader(ctx context.Context, uri string) (reader.Reader, error) {

	err := validateURI("reader", uri)

	if err != nil {
		return nil, err
	}

	readers_mu.RLock()
	r, ok := readers[uri]
	readers_mu.RUnlock()

	if ok {
		return r, nil
	}

	readers_mu.Lock()
	defer readers_mu.Unlock()

	r, ok = readers[uri]

	if ok {
		return r, nil
	}

	r, err = reader.NewReader(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for '%s', %w", uri, err)
	}

	readers[uri] = r
	return r, nil
}

// ReadAll returns the body of the image at 'path' in the source defined by 'uri'.
func ReadAll(ctx context.Context, uri string, path string) ([]byte, error) {

	r, err := NewReader(ctx, uri)

	if err != nil {
		return nil, err
	}

	fh, err := r.Read(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	body, err := io.ReadAll(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", path, err)
	}

	return body, nil
}

// ResetReaders discards every cached reader so that the next conversion run starts from scratch.
func ResetReaders() {

	readers_mu.Lock()
	defer readers_mu.Unlock()

	readers = make(map[string]reader.Reader)
}

func validateURI(kind string, uri string) error {

	u, err := url.Parse(uri)

	if err != nil {
		return fmt.Errorf("Invalid %s URI '%s', %w", kind, uri, err)
	}

	if u.Scheme == "" {
		return fmt.Errorf("Invalid %s URI '%s', missing scheme", kind, uri)
	}

	return nil
}
