package scripting

import (
	"context"

	"github.com/dop251/goja"
)

// GojaEngine is the JavaScript Engine implementation.
type GojaEngine struct {
	vm *goja.Runtime
}

// NewEngine creates a JavaScript engine.
func NewEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

func (e *GojaEngine) RegisterViewer(dom ViewerDOM) error {
	viewerObj := e.vm.NewObject()

	if err := viewerObj.Set("currentPage", func() int { return dom.CurrentPage() }); err != nil {
		return err
	}
	if err := viewerObj.Set("pageCount", func() int { return dom.PageCount() }); err != nil {
		return err
	}
	if err := viewerObj.Set("goToPage", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return e.vm.ToValue(false)
		}
		page := int(call.Arguments[0].ToInteger())
		return e.vm.ToValue(dom.GoToPage(page))
	}); err != nil {
		return err
	}
	if err := viewerObj.Set("nextPage", func() bool { return dom.NextPage() }); err != nil {
		return err
	}
	if err := viewerObj.Set("previousPage", func() bool { return dom.PreviousPage() }); err != nil {
		return err
	}
	if err := viewerObj.Set("zoom", func() float64 { return dom.Zoom() }); err != nil {
		return err
	}
	if err := viewerObj.Set("setZoom", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return e.vm.ToValue(dom.Zoom())
		}
		return e.vm.ToValue(dom.SetZoom(call.Arguments[0].ToFloat()))
	}); err != nil {
		return err
	}
	if err := e.vm.Set("viewer", viewerObj); err != nil {
		return err
	}

	return e.vm.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		dom.Alert(msg)
		return goja.Undefined()
	})
}
