package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
)

// RenderPreview draws img as terminal art no larger than maxCols x maxRows cells. Each
// cell is an upper half block, so one row carries two pixel rows: the foreground colour
// is the upper pixel and the background colour the lower one.
func RenderPreview(img image.Image, maxCols, maxRows int) string {
	if img == nil || maxCols < 1 || maxRows < 1 {
		return ""
	}
	thumb := resize.Thumbnail(uint(maxCols), uint(maxRows*2), img, resize.Lanczos3)
	b := thumb.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(thumb.At(x, y)))
			if y+1 < b.Max.Y {
				style = style.Background(hexColor(thumb.At(x, y+1)))
			}
			sb.WriteString(style.Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B))
}
