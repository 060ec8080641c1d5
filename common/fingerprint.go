package common

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"io"
)

// Fingerprint returns the hex-encoded SHA-1 hash of an image body.
func Fingerprint(body []byte) (string, error) {
	return FingerprintReader(bytes.NewReader(body))
}

// FingerprintReader returns the hex-encoded SHA-1 hash of the contents of 'r'.
func FingerprintReader(r io.Reader) (string, error) {

	h := sha1.New()

	_, err := io.Copy(h, r)

	if err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
