package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"log/slog"

	"github.com/corona10/goimagehash"
)

// ImageHashRsp is a struct representing the results of an image hashing operation.
type ImageHashRsp struct {
	// String label describing the image hashing procedure used.
	Approach string `json:"approach"`
	// The hexidecimal hash of an image.
	Hash string `json:"hash"`
}

// The default set of hashing approaches applied by ImageHashes.
var ImageHashApproaches = []string{
	"avg",
	"diff",
	// don't bother with this for now since it appears to return the same string hash as "avg" : "ext",
}

// Generate a list of ImageHashRsp instances for an encoded image using the corona10/goimagehash
// package. Hashes are returned in the same order as ImageHashApproaches.
func ImageHashes(ctx context.Context, body []byte) ([]*ImageHashRsp, error) {

	im, _, err := image.Decode(bytes.NewReader(body))

	if err != nil {
		return nil, fmt.Errorf("Failed to decode image, %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	approaches := ImageHashApproaches

	type hashResult struct {
		idx int
		rsp *ImageHashRsp
	}

	done_ch := make(chan bool)
	err_ch := make(chan error)
	rsp_ch := make(chan hashResult)

	for i, a := range approaches {

		go func(ctx context.Context, im image.Image, idx int, a string) {

			defer func() {
				done_ch <- true
			}()

			rsp, err := imageHash(ctx, im, a)

			if err != nil {
				err_ch <- err
				return
			}

			if rsp == nil {
				return
			}

			rsp_ch <- hashResult{idx: idx, rsp: rsp}

		}(ctx, im, i, a)

	}

	remaining := len(approaches)
	slots := make([]*ImageHashRsp, len(approaches))

	for remaining > 0 {

		select {

		case <-done_ch:
			remaining -= 1
		case err := <-err_ch:
			slog.Error("Image hash channel received error", "error", err)
		case r := <-rsp_ch:
			slots[r.idx] = r.rsp
		}
	}

	hashes := make([]*ImageHashRsp, 0, len(slots))

	for _, h := range slots {
		if h != nil {
			hashes = append(hashes, h)
		}
	}

	return hashes, nil
}

func imageHash(ctx context.Context, im image.Image, approach string) (*ImageHashRsp, error) {

	select {
	case <-ctx.Done():
		return nil, nil
	default:
		// pass
	}

	var i interface{}
	var err error

	switch approach {
	case "avg":
		i, err = goimagehash.AverageHash(im)
	case "diff":
		i, err = goimagehash.DifferenceHash(im)
	case "ext":
		i, err = goimagehash.ExtAverageHash(im, 8, 8)
	default:
		err = errors.New("Unknown approach")
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to process image hash appoach '%s', %w", approach, err)
	}

	switch h := i.(type) {
	case *goimagehash.ImageHash:
		return &ImageHashRsp{Approach: approach, Hash: h.ToString()}, nil
	case *goimagehash.ExtImageHash:
		return &ImageHashRsp{Approach: approach, Hash: h.ToString()}, nil
	default:
		// pass
	}

	return nil, fmt.Errorf("Impossible condition")
}
