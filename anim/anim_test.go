package anim

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/wudi/flipbook/raster"
)

func pageRaster(page, w, h int) *raster.PageRaster {
	return &raster.PageRaster{
		Page:  page,
		Image: image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

func TestDiscreteCompletesImmediately(t *testing.T) {
	d := Discrete{}
	if err := d.FlipForward(context.Background(), nil, nil, nil, nil); err != nil {
		t.Errorf("FlipForward: %v", err)
	}
	if err := d.FlipBackward(context.Background(), nil, nil, nil, nil); err != nil {
		t.Errorf("FlipBackward: %v", err)
	}
}

func TestFrameFlipProducesFrames(t *testing.T) {
	var frames []image.Image
	sink := FrameSinkFunc(func(img image.Image) error {
		frames = append(frames, img)
		return nil
	})
	d := NewFrameFlip(sink, WithFrameCount(8))

	err := d.FlipForward(context.Background(),
		pageRaster(2, 50, 70), pageRaster(3, 50, 70),
		pageRaster(4, 50, 70), pageRaster(5, 50, 70))
	if err != nil {
		t.Fatalf("FlipForward: %v", err)
	}
	if len(frames) != 8 {
		t.Fatalf("got %d frames, want 8", len(frames))
	}
	for i, f := range frames {
		b := f.Bounds()
		if b.Dx() != 100 || b.Dy() != 70 {
			t.Errorf("frame %d bounds = %v, want 100x70 spread", i, b)
		}
	}
}

func TestFrameFlipBackward(t *testing.T) {
	var frames int
	sink := FrameSinkFunc(func(image.Image) error { frames++; return nil })
	d := NewFrameFlip(sink, WithFrameCount(5))

	err := d.FlipBackward(context.Background(),
		pageRaster(4, 40, 60), pageRaster(5, 40, 60),
		pageRaster(2, 40, 60), pageRaster(3, 40, 60))
	if err != nil {
		t.Fatalf("FlipBackward: %v", err)
	}
	if frames != 5 {
		t.Errorf("frames = %d, want 5", frames)
	}
}

func TestFrameFlipSinkErrorAborts(t *testing.T) {
	boom := errors.New("sink gone")
	calls := 0
	sink := FrameSinkFunc(func(image.Image) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	d := NewFrameFlip(sink, WithFrameCount(10))

	err := d.FlipForward(context.Background(),
		pageRaster(2, 30, 40), pageRaster(3, 30, 40),
		pageRaster(4, 30, 40), pageRaster(5, 30, 40))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want sink error", err)
	}
	if calls != 3 {
		t.Errorf("sink called %d times after abort, want 3", calls)
	}
}

func TestFrameFlipNilSinkRejected(t *testing.T) {
	d := NewFrameFlip(nil)
	err := d.FlipForward(context.Background(),
		pageRaster(2, 10, 10), pageRaster(3, 10, 10),
		pageRaster(4, 10, 10), pageRaster(5, 10, 10))
	if err == nil {
		t.Error("nil sink accepted, want rejection")
	}
}

func TestFrameFlipCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := FrameSinkFunc(func(image.Image) error { return nil })
	d := NewFrameFlip(sink)

	err := d.FlipForward(ctx,
		pageRaster(2, 10, 10), pageRaster(3, 10, 10),
		pageRaster(4, 10, 10), pageRaster(5, 10, 10))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFrameFlipBlankSlots(t *testing.T) {
	// Cover to first interior spread: old spread has a blank left.
	var frames int
	sink := FrameSinkFunc(func(image.Image) error { frames++; return nil })
	d := NewFrameFlip(sink, WithFrameCount(4))

	err := d.FlipForward(context.Background(),
		raster.Blank(50, 70, 1.0), pageRaster(1, 50, 70),
		pageRaster(2, 50, 70), pageRaster(3, 50, 70))
	if err != nil {
		t.Fatalf("FlipForward with blank slot: %v", err)
	}
	if frames != 4 {
		t.Errorf("frames = %d, want 4", frames)
	}
}

func TestDirectionString(t *testing.T) {
	if Forward.String() != "forward" || Backward.String() != "backward" {
		t.Error("unexpected Direction strings")
	}
}
