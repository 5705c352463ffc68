// Package ebitenflip presents a viewer in a desktop window and drives
// the page-turn animation through the game loop. It is the rich
// animation path; environments without a display fall back to the
// software drivers in package anim.
package ebitenflip

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/wudi/flipbook/anim"
	"github.com/wudi/flipbook/raster"
	"github.com/wudi/flipbook/viewer"
)

const (
	defaultWindowW = 1200
	defaultWindowH = 820
	frameDelay     = 28 * time.Millisecond
	spineGap       = 4 // pixels between the two pages
)

var deskShade = color.RGBA{0x2b, 0x2b, 0x30, 0xff}

// Presenter is an ebiten.Game that draws the viewer's current spread
// and, through Driver, the in-flight flip frames. Navigation runs off
// the game loop so the loop stays free to draw animation frames.
type Presenter struct {
	v     *viewer.Viewer
	title string

	mu      sync.Mutex
	overlay *ebiten.Image // current flip frame, nil when idle

	cacheLeft  imageCacheEntry
	cacheRight imageCacheEntry
}

type imageCacheEntry struct {
	src image.Image
	img *ebiten.Image
}

// NewPresenter creates a presenter for v.
func NewPresenter(v *viewer.Viewer, title string) *Presenter {
	return &Presenter{v: v, title: title}
}

// Driver returns the animation driver backed by this presenter's
// window. Wire it into the viewer with SetDriver before navigating.
func (p *Presenter) Driver() anim.Driver {
	d := &windowDriver{p: p}
	d.inner = anim.NewFrameFlip(anim.FrameSinkFunc(d.showFrame), anim.WithFrameCount(14))
	return d
}

// Run opens the window and blocks until it closes.
func (p *Presenter) Run() error {
	ebiten.SetWindowTitle(p.title)
	ebiten.SetWindowSize(defaultWindowW, defaultWindowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(p)
}

func (p *Presenter) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight),
		inpututil.IsKeyJustPressed(ebiten.KeyPageDown),
		inpututil.IsKeyJustPressed(ebiten.KeySpace):
		go p.v.NextPage(context.Background())
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft),
		inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		go p.v.PreviousPage(context.Background())
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		go p.v.GoToPage(context.Background(), 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		go p.v.GoToPage(context.Background(), p.v.TotalPages())
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		p.v.ZoomIn()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		p.v.ZoomOut()
	case inpututil.IsKeyJustPressed(ebiten.Key0):
		p.v.SetZoom(1.0)
	}
	return nil
}

func (p *Presenter) Draw(screen *ebiten.Image) {
	screen.Fill(deskShade)

	p.mu.Lock()
	overlay := p.overlay
	p.mu.Unlock()

	if overlay != nil {
		drawFitted(screen, overlay)
		return
	}

	left, right := p.v.SpreadImages()
	leftImg := p.cached(&p.cacheLeft, left)
	rightImg := p.cached(&p.cacheRight, right)
	drawSpread(screen, leftImg, rightImg)
}

func (p *Presenter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// cached converts an image to an ebiten texture, reusing the previous
// texture while the source is unchanged.
func (p *Presenter) cached(entry *imageCacheEntry, src image.Image) *ebiten.Image {
	if src == nil {
		return nil
	}
	if entry.src == src && entry.img != nil {
		return entry.img
	}
	entry.src = src
	entry.img = ebiten.NewImageFromImage(src)
	return entry.img
}

func (p *Presenter) setOverlay(img *ebiten.Image) {
	p.mu.Lock()
	p.overlay = img
	p.mu.Unlock()
}

// drawSpread centers both pages side by side, scaled to fit.
func drawSpread(screen *ebiten.Image, left, right *ebiten.Image) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()

	var pw, ph int
	for _, img := range []*ebiten.Image{left, right} {
		if img == nil {
			continue
		}
		if img.Bounds().Dx() > pw {
			pw = img.Bounds().Dx()
		}
		if img.Bounds().Dy() > ph {
			ph = img.Bounds().Dy()
		}
	}
	if pw == 0 || ph == 0 {
		return
	}

	scale := fitScale(2*pw+spineGap, ph, sw, sh)
	totalW := float64(2*pw+spineGap) * scale
	x0 := (float64(sw) - totalW) / 2
	y0 := (float64(sh) - float64(ph)*scale) / 2

	if left != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x0, y0)
		screen.DrawImage(left, op)
	}
	if right != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x0+float64(pw+spineGap)*scale, y0)
		screen.DrawImage(right, op)
	}
}

func drawFitted(screen *ebiten.Image, img *ebiten.Image) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if iw == 0 || ih == 0 {
		return
	}
	scale := fitScale(iw, ih, sw, sh)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((float64(sw)-float64(iw)*scale)/2, (float64(sh)-float64(ih)*scale)/2)
	screen.DrawImage(img, op)
}

func fitScale(w, h, maxW, maxH int) float64 {
	sx := float64(maxW) / float64(w)
	sy := float64(maxH) / float64(h)
	if sx < sy {
		return sx
	}
	return sy
}

// windowDriver composites flip frames with the software FrameFlip and
// shows each one as the window overlay, paced to wall time. It runs on
// the navigation goroutine; the game loop only draws the overlay.
type windowDriver struct {
	p     *Presenter
	inner *anim.FrameFlip
}

func (d *windowDriver) showFrame(img image.Image) error {
	d.p.setOverlay(ebiten.NewImageFromImage(img))
	time.Sleep(frameDelay)
	return nil
}

func (d *windowDriver) FlipForward(ctx context.Context, oldLeft, oldRight, newLeft, newRight *raster.PageRaster) error {
	err := d.inner.FlipForward(ctx, oldLeft, oldRight, newLeft, newRight)
	d.p.setOverlay(nil)
	return err
}

func (d *windowDriver) FlipBackward(ctx context.Context, oldLeft, oldRight, newLeft, newRight *raster.PageRaster) error {
	err := d.inner.FlipBackward(ctx, oldLeft, oldRight, newLeft, newRight)
	d.p.setOverlay(nil)
	return err
}
