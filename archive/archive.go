// Package archive assembles KML placemark documents in to a single (KMZ) zip archive.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Document is a named KML document to be stored in an archive.
type Document struct {
	EntryName string
	Content   []byte
}

// Compression methods supported by Assemble.
const (
	Store   = zip.Store
	Deflate = zip.Deflate
)

// AssembleOptions defines options for the Assemble method.
type AssembleOptions struct {
	// The compression method, Store or Deflate. The default is Deflate.
	Method uint16
	// The flate compression level used when Method is Deflate. The default is flate.DefaultCompression.
	Level int
}

// DefaultAssembleOptions returns an AssembleOptions instance that deflates entries using the default compression level.
func DefaultAssembleOptions() *AssembleOptions {

	opts := &AssembleOptions{
		Method: Deflate,
		Level:  flate.DefaultCompression,
	}

	return opts
}

// Assemble returns the bytes of a zip archive containing 'docs', in order. Entry modification times are left
// unset so identical inputs produce identical archives. Duplicate entry names are an error.
func Assemble(ctx context.Context, docs []*Document, opts *AssembleOptions) ([]byte, error) {

	if opts == nil {
		opts = DefaultAssembleOptions()
	}

	method := opts.Method
	level := opts.Level

	switch method {
	case Store, Deflate:
		// pass
	default:
		return nil, fmt.Errorf("Unsupported compression method %d", method)
	}

	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, fmt.Errorf("Invalid compression level %d", level)
	}

	buf := new(bytes.Buffer)
	wr := zip.NewWriter(buf)

	wr.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	seen := make(map[string]bool)

	for _, doc := range docs {

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			// pass
		}

		if doc.EntryName == "" {
			return nil, fmt.Errorf("Document is missing an entry name")
		}

		if seen[doc.EntryName] {
			return nil, fmt.Errorf("Duplicate entry name '%s'", doc.EntryName)
		}

		seen[doc.EntryName] = true

		hdr := &zip.FileHeader{
			Name:   doc.EntryName,
			Method: method,
		}

		entry_wr, err := wr.CreateHeader(hdr)

		if err != nil {
			return nil, fmt.Errorf("Failed to create entry for %s, %w", doc.EntryName, err)
		}

		_, err = entry_wr.Write(doc.Content)

		if err != nil {
			return nil, fmt.Errorf("Failed to write entry for %s, %w", doc.EntryName, err)
		}
	}

	err := wr.Close()

	if err != nil {
		return nil, fmt.Errorf("Failed to close archive, %w", err)
	}

	return buf.Bytes(), nil
}
