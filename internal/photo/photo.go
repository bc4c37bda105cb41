// Package photo turns raw uploaded image bytes into stable string references
// the collection store keeps verbatim. References are data URIs, so the demo
// stays self-contained with no file or object storage.
package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrNotAnImage is returned for payloads that do not sniff as images.
	ErrNotAnImage = errors.New("payload is not an image")

	// ErrTooLarge is returned for payloads over the ingestor's size cap.
	ErrTooLarge = errors.New("image too large")
)

// Ingestor validates and encodes photo uploads.
type Ingestor struct {
	maxBytes int
}

func NewIngestor(maxBytes int) *Ingestor {
	return &Ingestor{maxBytes: maxBytes}
}

// Ingest sniffs the payload's content type and returns a data-URI reference.
// Only image payloads are accepted; the bytes are never interpreted beyond
// type detection.
func (i *Ingestor) Ingest(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotAnImage
	}

	if i.maxBytes > 0 && len(data) > i.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotAnImage, mt.String())
	}

	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
