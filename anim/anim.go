// Package anim defines the animation driver consumed by the viewer and
// ships two portable drivers: Discrete (instant swap) and FrameFlip
// (software-composited page turn). The viewer supplies page rasters and
// awaits completion; drivers own all visual progress and never touch
// viewer state.
package anim

import (
	"context"

	"github.com/wudi/flipbook/raster"
)

// Direction of a page turn.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Driver runs the visual transition between two spreads. Each call
// blocks until the transition completes and returns an error when the
// driver fails internally; the viewer then rolls back, so a driver must
// never leave lasting state of its own on failure.
//
// The four rasters are the old and new spread slots in reading order.
// Absent slots arrive as blank placeholder rasters, never nil.
type Driver interface {
	FlipForward(ctx context.Context, oldLeft, oldRight, newLeft, newRight *raster.PageRaster) error
	FlipBackward(ctx context.Context, oldLeft, oldRight, newLeft, newRight *raster.PageRaster) error
}

// Discrete is the degraded animation path: the spread swaps in a single
// discrete update with no visual transition.
type Discrete struct{}

func (Discrete) FlipForward(context.Context, *raster.PageRaster, *raster.PageRaster, *raster.PageRaster, *raster.PageRaster) error {
	return nil
}

func (Discrete) FlipBackward(context.Context, *raster.PageRaster, *raster.PageRaster, *raster.PageRaster, *raster.PageRaster) error {
	return nil
}
