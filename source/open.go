package source

import (
	"bytes"
	"context"
	"errors"
	"image"

	"github.com/duskview/duskview/render"
)

var errUnknownFormat = errors.New("unrecognized document format")

// Document is an opened document: a render source plus the fingerprint
// that keys its persisted session.
type Document struct {
	Source      render.Source
	Fingerprint string
}

// Factory turns non-image payloads (typically PDF bytes) into a render
// source. The decoding library itself lives behind this seam.
type Factory func(data []byte) (render.Source, error)

// FromImage wraps already-decoded raster frames.
func FromImage(frames ...image.Image) (*ImageSource, error) {
	return NewImageSource(frames...)
}

// FromImageBytes decodes encoded raster bytes (PNG, JPEG, or animated
// GIF, one page per frame).
func FromImageBytes(data []byte) (*ImageSource, error) {
	return DecodeImage(data)
}

// FromBytes opens a document of either content type. Raster payloads
// decode directly; anything else is handed to factory. With no factory
// an undecodable payload reports a corrupt-load error.
func FromBytes(data []byte, factory Factory) (*Document, error) {
	doc := &Document{Fingerprint: Fingerprint(data)}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		src, err := DecodeImage(data)
		if err != nil {
			return nil, err
		}
		doc.Source = src
		return doc, nil
	}
	if factory == nil {
		return nil, &LoadError{Kind: LoadCorrupt, Err: errUnknownFormat}
	}
	src, err := factory(data)
	if err != nil {
		return nil, &LoadError{Kind: LoadCorrupt, Err: err}
	}
	doc.Source = src
	return doc, nil
}

// FromURL fetches and opens a remote document. The fingerprint is
// derived from the URL so the session survives representation changes
// on the server.
func FromURL(ctx context.Context, fetcher *Fetcher, url string, factory Factory) (*Document, error) {
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	data, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := FromBytes(data, factory)
	if err != nil {
		return nil, err
	}
	doc.Fingerprint = FingerprintURL(url)
	return doc, nil
}
