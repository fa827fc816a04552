package converter_test

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/derhami/Converterz/internal/testutil"
	"github.com/derhami/Converterz/pkg/converter"
)

func newTestPipeline(t *testing.T) (*converter.Pipeline, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "Converterz")
	return converter.NewPipeline(out, nil, nil), out
}

func request(src string, format converter.Format, resize, quality int, naming converter.NamingMethod) converter.ConversionRequest {
	return converter.ConversionRequest{SourcePath: src, Format: format, ResizePercent: resize, Quality: quality, Naming: naming}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPipeline_ConvertsToEveryFormat(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "photo.png"), "png", 64, 48)

	for _, format := range converter.SupportedFormats {
		t.Run(string(format), func(t *testing.T) {
			p, outDir := newTestPipeline(t)
			out, err := p.Convert(context.Background(), request(src, format, 100, 90, converter.NamingHashOnly))
			require.NoError(t, err)

			assert.Equal(t, outDir, filepath.Dir(out.Path))
			assert.True(t, strings.HasSuffix(out.Name, "."+format.Extension()))
			assert.Equal(t, format, out.Format)
			assert.Equal(t, 64, out.Width)
			assert.Equal(t, 48, out.Height)
			assert.Positive(t, out.SizeBytes)

			img, detected := testutil.DecodeFile(t, out.Path)
			assert.Equal(t, string(format), detected)
			assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
			assert.Equal(t, []string{out.Name}, listDir(t, outDir), "only the output file should exist")
		})
	}
}

func TestPipeline_NamingMethods(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "holiday.jpeg"), "jpeg", 16, 16)
	info, _, err := converter.InspectSource(src)
	require.NoError(t, err)

	testCases := []struct {
		method   converter.NamingMethod
		format   converter.Format
		expected string
	}{
		{converter.NamingHashOnly, converter.FormatPNG, info.Hash + ".png"},
		{converter.NamingHashTimestamp, converter.FormatWebP, info.Hash + "_" + info.Timestamp + ".webp"},
		{converter.NamingOriginalFilename, converter.FormatWebP, "holiday.jpeg.webp"},
	}
	for _, tc := range testCases {
		t.Run(string(tc.method), func(t *testing.T) {
			p, outDir := newTestPipeline(t)
			out, err := p.Convert(context.Background(), request(src, tc.format, 100, 80, tc.method))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.Name)
			assert.FileExists(t, filepath.Join(outDir, tc.expected))
		})
	}
}

func TestPipeline_HashOnlyIsIdempotent(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "a.png"), "png", 32, 32)
	p, outDir := newTestPipeline(t)
	req := request(src, converter.FormatJPEG, 100, 75, converter.NamingHashOnly)

	first, err := p.Convert(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Convert(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
	assert.Len(t, listDir(t, outDir), 1, "the second run overwrites the first")
}

func TestPipeline_ResizeHundredIsNoOp(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "a.png"), "png", 123, 77)
	hooks := new(testutil.MockHooks)
	hooks.On("OnStatusUpdate", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	p := converter.NewPipeline(t.TempDir(), nil, hooks)

	out, err := p.Convert(context.Background(), request(src, converter.FormatPNG, 100, 100, converter.NamingHashOnly))
	require.NoError(t, err)
	assert.Equal(t, 123, out.Width)
	assert.Equal(t, 77, out.Height)
	hooks.AssertNotCalled(t, "OnStatusUpdate", mock.Anything, converter.StatusResizing, mock.Anything)
	hooks.AssertCalled(t, "OnStatusUpdate", "", converter.StatusLoading, src)
	hooks.AssertCalled(t, "OnStatusUpdate", "", converter.StatusEncoding, out.Name)
}

func TestPipeline_ResizeHalf(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "a.png"), "png", 400, 300)
	p, _ := newTestPipeline(t)

	out, err := p.Convert(context.Background(), request(src, converter.FormatPNG, 50, 100, converter.NamingHashOnly))
	require.NoError(t, err)
	assert.LessOrEqual(t, out.Width, 200)
	assert.LessOrEqual(t, out.Height, 150)
	assert.Equal(t, 200, out.Width)
	assert.Equal(t, 150, out.Height)

	img, _ := testutil.DecodeFile(t, out.Path)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestResizeAsset(t *testing.T) {
	asset := converter.ImageAsset{Image: testutil.SampleImage(400, 100), Width: 400, Height: 100, SourceFormat: "png"}

	testCases := []struct {
		name          string
		percent       int
		width, height int
	}{
		{"no-op", 100, 400, 100},
		{"never upsizes", 250, 400, 100},
		{"quarter", 25, 100, 25},
		{"aspect preserved", 33, 132, 33},
		{"clamped to one pixel", 1, 4, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := converter.ResizeAsset(asset, tc.percent)
			assert.Equal(t, tc.width, got.Width)
			assert.Equal(t, tc.height, got.Height)
			assert.Equal(t, tc.width, got.Image.Bounds().Dx())
			assert.Equal(t, "png", got.SourceFormat)
		})
	}

	tiny := converter.ImageAsset{Image: testutil.SampleImage(3, 2), Width: 3, Height: 2}
	got := converter.ResizeAsset(tiny, 10)
	assert.GreaterOrEqual(t, got.Width, 1)
	assert.GreaterOrEqual(t, got.Height, 1)
}

func TestPipeline_SourceUnreadable(t *testing.T) {
	dir := t.TempDir()
	notImage := filepath.Join(dir, "notes.png")
	testutil.CreateDummyFile(t, notImage, "plain text")

	testCases := map[string]string{
		"empty path":   "",
		"missing file": filepath.Join(dir, "missing.png"),
		"not an image": notImage,
		"a directory":  dir,
	}
	for name, src := range testCases {
		t.Run(name, func(t *testing.T) {
			p, outDir := newTestPipeline(t)
			_, err := p.Convert(context.Background(), request(src, converter.FormatWebP, 100, 100, converter.NamingHashOnly))
			require.Error(t, err)
			assert.ErrorIs(t, err, converter.ErrSourceUnreadable)
			assert.Empty(t, listDir(t, outDir))
		})
	}
}

func TestPipeline_QualityOutOfRangeLeavesNoFile(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "a.png"), "png", 8, 8)

	for _, format := range []converter.Format{converter.FormatJPEG, converter.FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			p, outDir := newTestPipeline(t)
			_, err := p.Convert(context.Background(), request(src, format, 100, 101, converter.NamingHashOnly))
			require.Error(t, err)
			assert.ErrorIs(t, err, converter.ErrEncodeOrWrite)
			assert.Empty(t, listDir(t, outDir), "no partial or temporary file may remain")
		})
	}

	// png is lossless and ignores quality.
	p, _ := newTestPipeline(t)
	_, err := p.Convert(context.Background(), request(src, converter.FormatPNG, 100, 101, converter.NamingHashOnly))
	assert.NoError(t, err)
}

func TestPipeline_InvalidRequest(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "a.png"), "png", 8, 8)

	testCases := map[string]converter.ConversionRequest{
		"zero resize":    request(src, converter.FormatPNG, 0, 100, converter.NamingHashOnly),
		"unknown format": request(src, converter.Format("bmp"), 100, 100, converter.NamingHashOnly),
		"unknown naming": request(src, converter.FormatPNG, 100, 100, converter.NamingMethod("counter")),
	}
	for name, req := range testCases {
		t.Run(name, func(t *testing.T) {
			p, outDir := newTestPipeline(t)
			_, err := p.Convert(context.Background(), req)
			assert.ErrorIs(t, err, converter.ErrInvalidConfiguration)
			assert.Empty(t, listDir(t, outDir))
		})
	}
}

func TestPipeline_OutputDirUnwritable(t *testing.T) {
	src := testutil.WriteSampleImage(t, filepath.Join(t.TempDir(), "a.png"), "png", 8, 8)
	blocker := filepath.Join(t.TempDir(), "file")
	testutil.CreateDummyFile(t, blocker, "")

	p := converter.NewPipeline(filepath.Join(blocker, "out"), nil, nil)
	_, err := p.Convert(context.Background(), request(src, converter.FormatPNG, 100, 100, converter.NamingHashOnly))
	assert.ErrorIs(t, err, converter.ErrEncodeOrWrite)
}

func TestPipeline_DecodesGifAndWebPSources(t *testing.T) {
	dir := t.TempDir()
	for _, srcFormat := range []string{"gif", "webp", "jpeg"} {
		t.Run(srcFormat, func(t *testing.T) {
			src := testutil.WriteSampleImage(t, filepath.Join(dir, "in."+srcFormat), srcFormat, 20, 10)
			p, _ := newTestPipeline(t)
			out, err := p.Convert(context.Background(), request(src, converter.FormatPNG, 100, 100, converter.NamingOriginalFilename))
			require.NoError(t, err)
			assert.Equal(t, "in."+srcFormat+".png", out.Name)
			assert.Equal(t, 20, out.Width)
		})
	}
}

func TestTaskIDContext(t *testing.T) {
	assert.Empty(t, converter.TaskIDFromContext(context.Background()))
	ctx := converter.WithTaskID(context.Background(), "abc")
	assert.Equal(t, "abc", converter.TaskIDFromContext(ctx))
}
