package converter

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/derhami/Converterz/pkg/converter/codec"
	"github.com/derhami/Converterz/pkg/util"
)

// ImageAsset is a decoded bitmap owned by a single pipeline run.
type ImageAsset struct {
	Image        image.Image
	Width        int
	Height       int
	SourceFormat string
}

func newImageAsset(img image.Image, format string) ImageAsset {
	b := img.Bounds()
	return ImageAsset{Image: img, Width: b.Dx(), Height: b.Dy(), SourceFormat: format}
}

// Converter runs one conversion synchronously.
type Converter interface {
	Convert(ctx context.Context, req ConversionRequest) (OutputFile, error)
}

// Pipeline loads, resizes, re-encodes and writes one image into a fixed output directory.
// It is stateless between calls.
type Pipeline struct {
	outputDir string
	logger    *slog.Logger
	hooks     Hooks
}

// NewPipeline creates a pipeline writing into outputDir. A nil hooks uses NoOpHooks.
func NewPipeline(outputDir string, logger *slog.Logger, hooks Hooks) *Pipeline {
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		outputDir: outputDir,
		logger:    logger.With(slog.String("component", "pipeline")),
		hooks:     hooks,
	}
}

// OutputDir returns the directory outputs are written to.
func (p *Pipeline) OutputDir() string { return p.outputDir }

// Convert implements Converter. Failures wrap ErrInvalidConfiguration, ErrSourceUnreadable
// or ErrEncodeOrWrite.
func (p *Pipeline) Convert(ctx context.Context, req ConversionRequest) (OutputFile, error) {
	logger := p.logger.With(slog.String("id", TaskIDFromContext(ctx)), slog.String("source", req.SourcePath))

	if req.ResizePercent < 1 {
		return OutputFile{}, fmt.Errorf("%w: resize percentage must be at least 1, got %d", ErrInvalidConfiguration, req.ResizePercent)
	}
	enc, err := codec.For(string(req.Format))
	if err != nil {
		return OutputFile{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	p.status(ctx, StatusLoading, req.SourcePath)
	info, data, err := InspectSource(req.SourcePath)
	if err != nil {
		return OutputFile{}, err
	}
	name, err := info.OutputName(req.Naming, req.Format)
	if err != nil {
		return OutputFile{}, err
	}
	asset, err := decodeAsset(data)
	if err != nil {
		return OutputFile{}, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, req.SourcePath, err)
	}
	logger.Debug("Source loaded", "hash", info.Hash, "width", asset.Width, "height", asset.Height, "format", asset.SourceFormat)

	if req.ResizePercent != NoResizePercentage {
		p.status(ctx, StatusResizing, fmt.Sprintf("%d%%", req.ResizePercent))
		before := [2]int{asset.Width, asset.Height}
		asset = ResizeAsset(asset, req.ResizePercent)
		logger.Debug("Resized", "from", before, "to", [2]int{asset.Width, asset.Height})
	}

	p.status(ctx, StatusEncoding, name)
	out, err := p.write(asset, enc, req, name)
	if err != nil {
		return OutputFile{}, err
	}
	logger.Info("Image converted", "output", out.Path, "bytes", out.SizeBytes)
	return out, nil
}

// ResizeAsset scales asset so that it fits in a box of floor(dim*percent/100) on each axis,
// at least one pixel. The aspect ratio is preserved and the image is never enlarged, so
// percentages of 100 and above return the asset unchanged.
func ResizeAsset(asset ImageAsset, percent int) ImageAsset {
	if percent >= NoResizePercentage {
		return asset
	}
	boxW := max(1, asset.Width*percent/100)
	boxH := max(1, asset.Height*percent/100)
	return newImageAsset(imaging.Fit(asset.Image, boxW, boxH, imaging.Lanczos), asset.SourceFormat)
}

func decodeAsset(data []byte) (ImageAsset, error) {
	img, format, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return ImageAsset{}, err
	}
	return newImageAsset(img, format), nil
}

func (p *Pipeline) write(asset ImageAsset, enc codec.Encoder, req ConversionRequest, name string) (OutputFile, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return OutputFile{}, fmt.Errorf("%w: %w", ErrEncodeOrWrite, err)
	}
	path := filepath.Join(p.outputDir, name)
	err := util.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return enc.Encode(w, asset.Image, req.Quality)
	})
	if err != nil {
		return OutputFile{}, fmt.Errorf("%w: %s: %w", ErrEncodeOrWrite, path, err)
	}
	st, err := os.Stat(path)
	if err != nil {
		return OutputFile{}, fmt.Errorf("%w: %w", ErrEncodeOrWrite, err)
	}
	return OutputFile{
		Path:      path,
		Name:      name,
		Format:    req.Format,
		Width:     asset.Width,
		Height:    asset.Height,
		SizeBytes: st.Size(),
	}, nil
}

func (p *Pipeline) status(ctx context.Context, status Status, message string) {
	id := TaskIDFromContext(ctx)
	if err := p.hooks.OnStatusUpdate(id, status, message); err != nil {
		p.logger.Warn("OnStatusUpdate hook returned an error", slog.String("id", id), slog.String("error", err.Error()))
	}
}

type taskIDKey struct{}

// WithTaskID returns a context carrying the conversion ID used in hooks and log lines.
func WithTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, taskIDKey{}, id)
}

// TaskIDFromContext returns the conversion ID stored by WithTaskID, or "".
func TaskIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(taskIDKey{}).(string)
	return id
}
