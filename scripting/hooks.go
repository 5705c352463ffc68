package scripting

import (
	"context"

	"github.com/wudi/flipbook/observability"
	"github.com/wudi/flipbook/viewer"
)

// Hooks holds the scripts bound to viewer events. Empty scripts are
// skipped.
type Hooks struct {
	OnLoad       string
	OnPageChange string
}

// viewerDOM adapts *viewer.Viewer to the scripting surface. Navigation
// from scripts uses a background context; a script is an external
// trigger source like any other.
type viewerDOM struct {
	v     *viewer.Viewer
	alert func(string)
}

// NewViewerDOM wraps a viewer for scripting. alert may be nil.
func NewViewerDOM(v *viewer.Viewer, alert func(string)) ViewerDOM {
	return &viewerDOM{v: v, alert: alert}
}

func (d *viewerDOM) CurrentPage() int { return d.v.CurrentPage() }
func (d *viewerDOM) PageCount() int   { return d.v.TotalPages() }
func (d *viewerDOM) GoToPage(page int) bool {
	return d.v.GoToPage(context.Background(), page)
}
func (d *viewerDOM) NextPage() bool     { return d.v.NextPage(context.Background()) }
func (d *viewerDOM) PreviousPage() bool { return d.v.PreviousPage(context.Background()) }
func (d *viewerDOM) Zoom() float64      { return d.v.Zoom() }
func (d *viewerDOM) SetZoom(level float64) float64 {
	return d.v.SetZoom(level)
}
func (d *viewerDOM) Alert(message string) {
	if d.alert != nil {
		d.alert(message)
	}
}

// Install registers the hooks on the viewer. Script failures are
// logged and otherwise ignored; a broken hook must not break
// navigation.
func Install(v *viewer.Viewer, eng Engine, dom ViewerDOM, hooks Hooks, log observability.Logger) error {
	if log == nil {
		log = observability.NopLogger{}
	}
	if err := eng.RegisterViewer(dom); err != nil {
		return err
	}

	run := func(event, script string) {
		if script == "" {
			return
		}
		if _, err := eng.Execute(context.Background(), script); err != nil {
			log.Warn("event script failed",
				observability.String("event", event),
				observability.Error("err", err))
		}
	}

	if hooks.OnLoad != "" {
		v.OnLoad(func() { run("load", hooks.OnLoad) })
	}
	if hooks.OnPageChange != "" {
		v.OnPageChange(func(page, total int) { run("pagechange", hooks.OnPageChange) })
	}
	return nil
}
