package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	blankShade = color.RGBA{0xf4, 0xf2, 0xec, 0xff}
	errorInk   = color.RGBA{0x8a, 0x2a, 0x2a, 0xff}
)

// Blank returns the raster shown in an empty spread slot, such as the
// blank side facing a cover. Its Page is zero.
func Blank(width, height, quality float64) *PageRaster {
	w, h := placeholderDims(width, height, quality)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(blankShade), image.Point{}, draw.Src)
	return &PageRaster{Quality: quality, Image: img}
}

// ErrorPlaceholder returns a marked raster standing in for a page that
// failed to render. It carries the cause in Err so presenters can
// distinguish it from real content; rendering it never fails.
func ErrorPlaceholder(page int, width, height, quality float64, cause error) *PageRaster {
	if cause == nil {
		cause = errors.New("render failed")
	}
	w, h := placeholderDims(width, height, quality)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(paperWhite), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &xfont.Drawer{Dst: img, Src: image.NewUniform(errorInk), Face: face}

	lines := []string{
		fmt.Sprintf("page %d", page),
		"could not be rendered",
		cause.Error(),
	}
	y := h/2 - len(lines)*face.Height/2
	for _, line := range lines {
		adv := xfont.MeasureString(face, line)
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(w/2) - adv/2,
			Y: fixed.I(y),
		}
		drawer.DrawString(line)
		y += face.Height + 2
	}

	return &PageRaster{Page: page, Quality: quality, Image: img, Err: cause}
}

func placeholderDims(width, height, quality float64) (int, int) {
	if width <= 0 {
		width = 420
	}
	if height <= 0 {
		height = 595
	}
	if quality <= 0 {
		quality = 1.0
	}
	w := int(width*quality + 0.5)
	h := int(height*quality + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
