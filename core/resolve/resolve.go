// Package resolve turns a module's settings schema source into a concrete
// fragment. Sources are registered providers: a static fragment, a factory
// evaluated against the host, or an asynchronous task that may block.
package resolve

import (
	"context"

	"github.com/artpar/docbase/core/schema"
)

// Host is the opaque application value handed to schema factories. It gives
// a factory access to whatever host facilities it needs to decide its shape.
type Host any

// Source produces a settings fragment for one module.
type Source interface {
	Resolve(ctx context.Context, host Host) (*schema.Fragment, error)
}

// Static returns a source that always yields f.
func Static(f *schema.Fragment) Source {
	return staticSource{f: f}
}

type staticSource struct {
	f *schema.Fragment
}

func (s staticSource) Resolve(context.Context, Host) (*schema.Fragment, error) {
	return s.f, nil
}

// Func is a synchronous factory evaluated against the host.
type Func func(host Host) *schema.Fragment

// Resolve calls the factory.
func (fn Func) Resolve(_ context.Context, host Host) (*schema.Fragment, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(host), nil
}

// Async is a task that may block or fail while computing its fragment.
type Async func(ctx context.Context, host Host) (*schema.Fragment, error)

// Resolve runs the task.
func (fn Async) Resolve(ctx context.Context, host Host) (*schema.Fragment, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, host)
}

// Resolve produces the concrete fragment for src. An absent source, or one
// that yields nothing, resolves to an empty fragment so callers can merge
// the result unconditionally. Errors from the source are returned as is.
func Resolve(ctx context.Context, src Source, host Host) (*schema.Fragment, error) {
	if src == nil {
		return schema.NewFragment(), nil
	}
	f, err := src.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return schema.NewFragment(), nil
	}
	return f, nil
}
