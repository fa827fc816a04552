package converter

import (
	"fmt"
	"strconv"
	"strings"
)

// ConversionRequest is an immutable snapshot of the user's selections taken at the moment
// a conversion is triggered. It is passed by value into the pipeline.
type ConversionRequest struct {
	SourcePath    string       `json:"sourcePath" yaml:"sourcePath" toml:"sourcePath"`
	Format        Format       `json:"format" yaml:"format" toml:"format"`
	ResizePercent int          `json:"resizePercent" yaml:"resizePercent" toml:"resizePercent"`
	Quality       int          `json:"quality" yaml:"quality" toml:"quality"`
	Naming        NamingMethod `json:"naming" yaml:"naming" toml:"naming"`
}

// RequestBuilder collects raw selections, as the shells hold them, and validates them
// into a ConversionRequest. The zero value is not usable; use NewRequestBuilder.
type RequestBuilder struct {
	source  string
	format  string
	resize  string
	quality string
	naming  string
}

// NewRequestBuilder returns a builder seeded with the default selections.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		format:  string(DefaultFormat),
		resize:  DefaultResizePercentage,
		quality: DefaultQualityPercentage,
		naming:  string(DefaultNamingMethod),
	}
}

// Source sets the image path. An empty path is accepted here and rejected by the
// pipeline as ErrSourceUnreadable.
func (b *RequestBuilder) Source(path string) *RequestBuilder { b.source = path; return b }

// Format sets the output format name.
func (b *RequestBuilder) Format(format string) *RequestBuilder { b.format = format; return b }

// Resize sets the resize percentage string.
func (b *RequestBuilder) Resize(percent string) *RequestBuilder { b.resize = percent; return b }

// Quality sets the quality percentage string.
func (b *RequestBuilder) Quality(percent string) *RequestBuilder { b.quality = percent; return b }

// Naming sets the naming method name.
func (b *RequestBuilder) Naming(method string) *RequestBuilder { b.naming = method; return b }

// Build validates the collected selections. Every failure wraps ErrInvalidConfiguration.
func (b *RequestBuilder) Build() (ConversionRequest, error) {
	format, err := ParseFormat(b.format)
	if err != nil {
		return ConversionRequest{}, err
	}
	naming, err := ParseNamingMethod(b.naming)
	if err != nil {
		return ConversionRequest{}, err
	}
	resize, err := parsePercentage("resize", b.resize)
	if err != nil {
		return ConversionRequest{}, err
	}
	quality, err := parsePercentage("quality", b.quality)
	if err != nil {
		return ConversionRequest{}, err
	}
	return ConversionRequest{
		SourcePath:    strings.TrimSpace(b.source),
		Format:        format,
		ResizePercent: resize,
		Quality:       quality,
		Naming:        naming,
	}, nil
}

// parsePercentage accepts a positive integer string. The upper bound is left to the
// consumer: resize has none, quality is checked by the encoder of the chosen format.
func parsePercentage(field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s percentage %q is not an integer", ErrInvalidConfiguration, field, raw)
	}
	if v < 1 {
		return 0, fmt.Errorf("%w: %s percentage must be at least 1, got %d", ErrInvalidConfiguration, field, v)
	}
	return v, nil
}
