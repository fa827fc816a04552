package codec_test

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/derhami/Converterz/pkg/converter/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func TestFor_KnownFormats(t *testing.T) {
	for _, name := range []string{"jpeg", "png", "webp"} {
		t.Run(name, func(t *testing.T) {
			enc, err := codec.For(name)
			require.NoError(t, err)
			assert.Equal(t, name, enc.Format())
		})
	}
}

func TestFor_UnknownFormat(t *testing.T) {
	_, err := codec.For("bmp")
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrUnsupportedFormat)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := gradient(40, 30)
	for _, name := range []string{"jpeg", "png", "webp"} {
		t.Run(name, func(t *testing.T) {
			enc, err := codec.For(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, enc.Encode(&buf, src, 80))

			img, detected, err := codec.Decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, name, detected)
			assert.Equal(t, 40, img.Bounds().Dx())
			assert.Equal(t, 30, img.Bounds().Dy())
		})
	}
}

func TestEncode_QualityOutOfRange(t *testing.T) {
	src := gradient(4, 4)
	testCases := []struct {
		format  string
		quality int
		wantErr bool
	}{
		{"jpeg", 0, true},
		{"jpeg", 101, true},
		{"jpeg", 100, false},
		{"webp", 150, true},
		{"webp", 1, false},
		{"png", 500, false}, // lossless, quality ignored
	}
	for _, tc := range testCases {
		enc, err := codec.For(tc.format)
		require.NoError(t, err)
		err = enc.Encode(&bytes.Buffer{}, src, tc.quality)
		if tc.wantErr {
			assert.ErrorIs(t, err, codec.ErrQualityOutOfRange, "%s q=%d", tc.format, tc.quality)
		} else {
			assert.NoError(t, err, "%s q=%d", tc.format, tc.quality)
		}
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, _, err := codec.Decode(bytes.NewReader([]byte("definitely not an image")))
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestDecodeConfig(t *testing.T) {
	enc, err := codec.For("png")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, gradient(12, 7), 100))

	cfg, format, err := codec.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 12, cfg.Width)
	assert.Equal(t, 7, cfg.Height)
}
