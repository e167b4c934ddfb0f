// Package dispatch maps provider/function requests onto provider module calls.
//
// A request of the form /{provider}/{function} resolves to a module file
// under the dist root, which is loaded fresh, queried for the export to
// serve, and invoked with arguments derived from the query string. Nothing
// survives the request: the module and its interpreter state are discarded
// once the result is translated back to Go.
package dispatch

import (
	"errors"
	"net/url"
	"path/filepath"

	"github.com/provdev-cli/provdev/constant"
	"github.com/provdev-cli/provdev/log"
	"github.com/provdev-cli/provdev/module"
	"github.com/samber/lo"
	lua "github.com/yuin/gopher-lua"
)

// Reserved provider names are claimed by sibling routes and must never
// shadow them; dispatching one fails before any filesystem access.
var Reserved = []string{"manifest.json", "dist", "build", "status", "providers", "health"}

// IsReserved reports whether a provider name is claimed by another route.
func IsReserved(provider string) bool {
	return lo.Contains(Reserved, provider)
}

// Dispatcher resolves provider/function requests against a dist root.
type Dispatcher struct {
	Root string
	Ctx  Context
}

// New returns a Dispatcher serving modules under root.
func New(root string, ctx Context) *Dispatcher {
	return &Dispatcher{Root: root, Ctx: ctx}
}

// Dispatch translates a provider/function pair plus query parameters into
// a module call and returns the JSON-ready result.
//
// Resolution order: reserved-name rejection, candidate file lookup (with
// the watch → stream alias), fresh module load, export selection
// (named → default → first), then either direct serving of a non-callable
// export or invocation with table-derived arguments.
func (d *Dispatcher) Dispatch(provider, function string, query url.Values) (any, error) {
	if IsReserved(provider) {
		return nil, &NotFoundError{Provider: provider, Function: function}
	}

	path, err := d.locate(provider, function)
	if err != nil {
		return nil, err
	}

	mod, err := module.Load(path)
	if err != nil {
		var notFound *module.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &NotFoundError{Provider: provider, Function: function, Path: path}
		}
		return nil, &ExecutionError{Provider: provider, Function: function, Err: err}
	}
	defer mod.Close()

	// Requests for "watch" are served by the stream capability.
	target := function
	if function == constant.WatchFn {
		target = constant.StreamFn
	}

	value, ok := mod.Resolve(target)
	if !ok {
		return nil, &ExecutionError{
			Provider: provider,
			Function: function,
			Err:      errors.New("module defines no exports"),
		}
	}

	// Non-callable exports are static data and serve as-is.
	if value.Type() != lua.LTFunction {
		return module.FromLua(value), nil
	}

	args := append(deriveArgs(function, query), d.Ctx.toLua(mod.State()))

	log.Debugf("dispatch %s/%s (%d args)", provider, function, len(args))

	result, err := mod.Call(value, args...)
	if err != nil {
		return nil, &ExecutionError{Provider: provider, Function: function, Err: err}
	}

	return module.FromLua(result), nil
}

// locate computes the module file for a provider/function pair. The watch
// alias falls back to stream.lua when no watch.lua exists.
func (d *Dispatcher) locate(provider, function string) (string, error) {
	path := filepath.Join(d.Root, provider, function+constant.ModuleExtension)
	if _, err := module.Resolve(path); err == nil {
		return path, nil
	}

	if function == constant.WatchFn {
		alias := filepath.Join(d.Root, provider, constant.StreamFn+constant.ModuleExtension)
		if _, err := module.Resolve(alias); err == nil {
			return alias, nil
		}
	}

	return "", &NotFoundError{Provider: provider, Function: function, Path: path}
}
