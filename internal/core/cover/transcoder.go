// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cover owns book cover images from upload to storage.

It normalises every uploaded image into one canonical encoding and persists the
result through an [AssetStore].

# Pipeline

  - Stage: The multipart file is spooled to a staging file ([Stage]).
  - Transcode: The bytes are sniffed, decoded, fitted and encoded as WebP ([Transcoder]).
  - Store: The canonical bytes are written under a fresh name ([AssetStore.Put]).

Sequencing against the book record (store before persist, delete after
replace) is the caller's job; this package never touches records.
*/
package cover

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/webp"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/metrics"
)

// # Canonical Policy

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeWebP = "image/webp"

	// maxSourcePixels rejects decompression bombs before any pixel is decoded.
	maxSourcePixels = 50_000_000
)

// Options configures the canonical encoding.
type Options struct {
	// MaxWidth and MaxHeight bound the output box. Images are fitted inside it,
	// never cropped and never enlarged.
	MaxWidth  int
	MaxHeight int

	// Quality is the lossy WebP quality (1-100).
	Quality int
}

// DefaultOptions returns the canonical policy used when nothing is configured.
func DefaultOptions() Options {
	return Options{MaxWidth: 1200, MaxHeight: 1800, Quality: constants.DefaultImageQuality}
}

// Asset is a canonical cover ready to be stored.
type Asset struct {
	Name        string
	ContentType string
	Body        []byte
	Width       int
	Height      int

	// Passthrough is true when the input was already canonical and copied as is.
	Passthrough bool
}

// # Transcoder

// Transcoder converts staged uploads into canonical assets. It is stateless
// and safe for concurrent use.
type Transcoder struct {
	opts Options
	now  func() time.Time
}

// NewTranscoder constructs a [Transcoder]. Zero option fields fall back to [DefaultOptions].
func NewTranscoder(opts Options) *Transcoder {
	defaults := DefaultOptions()
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = defaults.MaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = defaults.MaxHeight
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = defaults.Quality
	}
	return &Transcoder{opts: opts, now: time.Now}
}

type transcodeResult struct {
	asset *Asset
	err   error
}

/*
Transcode produces the canonical asset for a staged upload.

The content type is sniffed from the bytes; the client's header is ignored.
WebP input is copied unchanged, so transcoding a canonical asset again is a
no-op. JPEG and PNG input is decoded with EXIF orientation applied, fitted
inside the configured box and encoded as WebP.

Returns:
  - *Asset: Canonical bytes and a freshly generated name
  - error: TRANSCODE_ERROR for unsupported, corrupt or timed-out input;
    STORAGE_ERROR when the staging file cannot be read
*/
func (t *Transcoder) Transcode(ctx context.Context, upload *Upload) (asset *Asset, err error) {
	start := time.Now()
	defer func() { metrics.ObserveTranscode(start, err) }()

	if ctx.Err() != nil {
		return nil, apperr.TranscodeFailed("Image processing timed out", ctx.Err())
	}

	file, err := upload.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("cover: read staging file: %w", err))
	}

	// Decoding is CPU bound and not cancellable, so the deadline is enforced
	// around it. A late result is dropped.
	done := make(chan transcodeResult, 1)
	go func() {
		asset, err := t.transcodeBytes(data)
		done <- transcodeResult{asset: asset, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, apperr.TranscodeFailed("Image processing timed out", ctx.Err())
	case result := <-done:
		if result.err != nil {
			return nil, result.err
		}
		result.asset.Name = NewName(upload.OriginalName, t.now())
		return result.asset, nil
	}
}

func (t *Transcoder) transcodeBytes(data []byte) (*Asset, error) {
	detected := mimetype.Detect(data)

	switch {
	case detected.Is(mimeWebP):
		return t.passthrough(data)
	case detected.Is(mimeJPEG), detected.Is(mimePNG):
		return t.encode(data)
	default:
		return nil, apperr.TranscodeFailed(
			fmt.Sprintf("Unsupported image type %q (accepted: jpeg, png, webp)", detected.String()), nil)
	}
}

// passthrough validates a WebP header and keeps the bytes as they are.
func (t *Transcoder) passthrough(data []byte) (*Asset, error) {
	config, err := webp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.TranscodeFailed("Image could not be decoded", err)
	}

	return &Asset{
		ContentType: constants.CanonicalContentType,
		Body:        data,
		Width:       config.Width,
		Height:      config.Height,
		Passthrough: true,
	}, nil
}

func (t *Transcoder) encode(data []byte) (*Asset, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.TranscodeFailed("Image could not be decoded", err)
	}
	if config.Width*config.Height > maxSourcePixels {
		return nil, apperr.TranscodeFailed("Image dimensions are too large", nil)
	}

	source, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.TranscodeFailed("Image could not be decoded", err)
	}

	// Fit returns an unscaled clone when the source already fits.
	fitted := imaging.Fit(source, t.opts.MaxWidth, t.opts.MaxHeight, imaging.Lanczos)

	var buffer bytes.Buffer
	if err := webp.Encode(&buffer, fitted, webp.Options{Quality: t.opts.Quality}); err != nil {
		return nil, apperr.TranscodeFailed("Image could not be encoded", err)
	}

	bounds := fitted.Bounds()
	return &Asset{
		ContentType: constants.CanonicalContentType,
		Body:        buffer.Bytes(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}
