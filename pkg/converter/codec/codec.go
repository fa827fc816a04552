// Package codec decodes source images and encodes converted images for each supported
// output format.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	// Source decoders. webp registers itself on import.
	_ "image/gif"

	"github.com/chai2010/webp"
)

const (
	// MinQuality and MaxQuality bound the quality accepted by the lossy encoders.
	MinQuality = 1
	MaxQuality = 100
)

var (
	// ErrUnsupportedFormat is returned by For for a format name without an encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrQualityOutOfRange is returned by Encode when the quality is outside what the format accepts.
	ErrQualityOutOfRange = errors.New("quality out of range for format")
)

// Encoder writes an image in one output format.
type Encoder interface {
	// Format returns the format name ("webp", "jpeg", "png").
	Format() string
	// Encode writes img to w. quality is a 1-100 percentage; encoders for lossless
	// formats ignore it.
	Encode(w io.Writer, img image.Image, quality int) error
}

// For returns the encoder registered for format.
func For(format string) (Encoder, error) {
	switch format {
	case "jpeg":
		return jpegEncoder{}, nil
	case "png":
		return pngEncoder{}, nil
	case "webp":
		return webpEncoder{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Decode decodes any registered source format (jpeg, png, gif, webp) and returns the
// image along with the detected format name.
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(bufio.NewReader(r))
}

// DecodeConfig reads only the header of r.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	return image.DecodeConfig(bufio.NewReader(r))
}

func checkQuality(format string, quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return fmt.Errorf("%w: %s accepts %d-%d, got %d", ErrQualityOutOfRange, format, MinQuality, MaxQuality, quality)
	}
	return nil
}

type jpegEncoder struct{}

func (jpegEncoder) Format() string { return "jpeg" }

func (e jpegEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	if err := checkQuality(e.Format(), quality); err != nil {
		return err
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

type pngEncoder struct{}

func (pngEncoder) Format() string { return "png" }

// Encode ignores quality: PNG is lossless.
func (pngEncoder) Encode(w io.Writer, img image.Image, _ int) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	return enc.Encode(w, img)
}

type webpEncoder struct{}

func (webpEncoder) Format() string { return "webp" }

func (e webpEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	if err := checkQuality(e.Format(), quality); err != nil {
		return err
	}
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: float32(quality)})
}
