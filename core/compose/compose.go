// Package compose merges the settings fragments of all registered modules
// into the single property map of the settings collection.
package compose

import (
	"context"
	"fmt"

	"github.com/artpar/docbase/core/registry"
	"github.com/artpar/docbase/core/resolve"
	"github.com/artpar/docbase/core/schema"
	"github.com/rs/zerolog"
)

// Modules is the ordered module set composition reads from.
// *registry.Registry satisfies it.
type Modules interface {
	Modules() []registry.Module
}

// CollisionError reports a settings key declared by two modules.
// It is only returned when strict keys are enabled.
type CollisionError struct {
	Key    string
	First  string
	Second string
}

// Error returns the collision message.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("settings key %q declared by both %q and %q", e.Key, e.First, e.Second)
}

// Option configures a composition.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	strict bool
}

// WithLogger sets the logger used to report key collisions.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStrictKeys makes a key declared by two modules an error instead of
// letting the later module win.
func WithStrictKeys() Option {
	return func(o *options) {
		o.strict = true
	}
}

// SettingsProperties resolves each module's settings fragment in module
// order and merges them into one flat property map. On a key collision the
// later module's descriptor wins and a warning is logged.
//
// Resolution is sequential: a slow source delays every module after it.
// If any source fails, composition stops and that error is returned
// unchanged. The context is checked between modules and passed to
// asynchronous sources; callers wanting a deadline set one on ctx.
func SettingsProperties(ctx context.Context, mods Modules, host resolve.Host, opts ...Option) (*schema.Fragment, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	props := schema.NewFragment()
	owners := make(map[string]string)

	for _, mod := range mods.Modules() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frag, err := resolve.Resolve(ctx, mod.SettingSchema, host)
		if err != nil {
			return nil, err
		}

		for key, prop := range frag.All() {
			if prev, ok := owners[key]; ok {
				if o.strict {
					return nil, &CollisionError{Key: key, First: prev, Second: mod.Name}
				}
				o.logger.Warn().
					Str("key", key).
					Str("module", mod.Name).
					Str("previous", prev).
					Msg("settings key redeclared, later module wins")
			}
			props.Set(key, prop)
			owners[key] = mod.Name
		}

		o.logger.Debug().
			Str("module", mod.Name).
			Int("keys", frag.Len()).
			Msg("composed module settings")
	}

	return props, nil
}
