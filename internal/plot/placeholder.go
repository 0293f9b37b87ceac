package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"hdiexplorer/internal/models"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// placeholder stands in for a chart when no row has both values.
func placeholder(w, h int, scene *models.Scene) image.Image {
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ink := image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255})

	lines := []string{
		scene.Title,
		fmt.Sprintf("no data points for %d", scene.Year),
	}
	if scene.Year == 0 {
		lines[1] = "no data points"
	}

	lineH := face.Metrics().Height.Ceil() + 6
	y := h/2 - lineH*len(lines)/2
	for _, text := range lines {
		dr := &font.Drawer{Dst: rgba, Src: ink, Face: face}
		tw := dr.MeasureString(text).Ceil()
		x := (w - tw) / 2
		if x < 8 {
			x = 8
		}
		dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
		dr.DrawString(text)
		y += lineH
	}
	return rgba
}
