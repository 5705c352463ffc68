// Package scripting runs user JavaScript against viewer events, the
// way document viewers run page-action scripts. Scripts see a small,
// controlled viewer API; they cannot reach the engine's internals.
package scripting

import (
	"context"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute executes a script. Execution aborts when ctx is done.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterViewer exposes the viewer API to scripts.
	RegisterViewer(dom ViewerDOM) error
}

// ViewerDOM is the viewer surface exposed to scripts: enough to
// navigate, zoom and inspect, nothing more.
type ViewerDOM interface {
	// CurrentPage returns the current page, 0 before a load.
	CurrentPage() int

	// PageCount returns the total page count.
	PageCount() int

	// GoToPage navigates and reports whether the page changed.
	GoToPage(page int) bool

	// NextPage turns one spread forward.
	NextPage() bool

	// PreviousPage turns one spread backward.
	PreviousPage() bool

	// Zoom returns the current zoom level.
	Zoom() float64

	// SetZoom sets and returns the applied zoom level.
	SetZoom(level float64) float64

	// Alert shows a message (if the host presents one).
	Alert(message string)
}
