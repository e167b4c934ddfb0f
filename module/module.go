// Package module loads Lua provider modules and bridges their exports to Go.
package module

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Module is the transient result of loading a provider file: an ordered
// mapping from export name to Lua value, plus an optional default export.
// A Module never outlives the request that loaded it.
type Module struct {
	state   *lua.LState
	names   []string
	exports map[string]lua.LValue
	def     lua.LValue
}

// State exposes the interpreter state the module was loaded into.
func (m *Module) State() *lua.LState {
	return m.state
}

// Exports returns the export names in declaration order.
func (m *Module) Exports() []string {
	return m.names
}

// Get returns the export with the given name.
func (m *Module) Get(name string) (lua.LValue, bool) {
	v, ok := m.exports[name]
	return v, ok
}

// Default returns the module's default export, the value returned by the
// chunk body, when one exists.
func (m *Module) Default() (lua.LValue, bool) {
	if m.def == nil {
		return nil, false
	}
	return m.def, true
}

// First returns the first export in declaration order.
func (m *Module) First() (lua.LValue, bool) {
	if len(m.names) == 0 {
		return nil, false
	}
	return m.exports[m.names[0]], true
}

// Resolve selects the value to serve for a requested export name using the
// ordered strategy: the export named exactly name, else the default export,
// else the first declared export.
func (m *Module) Resolve(name string) (lua.LValue, bool) {
	if v, ok := m.Get(name); ok {
		return v, true
	}
	if v, ok := m.Default(); ok {
		return v, true
	}
	return m.First()
}

// Call invokes a function value inside the module's interpreter state and
// returns its single result.
func (m *Module) Call(fn lua.LValue, args ...lua.LValue) (lua.LValue, error) {
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%s is not callable", fn.Type())
	}

	err := m.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		return nil, err
	}

	ret := m.state.Get(-1)
	m.state.Pop(1) // Clean stack

	return ret, nil
}

// ExportMap converts every serializable export to its Go representation.
// Function-valued exports cannot be represented in JSON and are omitted.
func (m *Module) ExportMap() map[string]any {
	dump := make(map[string]any, len(m.names))
	for _, name := range m.names {
		value := m.exports[name]
		if value.Type() == lua.LTFunction {
			continue
		}
		dump[name] = FromLua(value)
	}
	return dump
}

// Close releases the module's interpreter state.
func (m *Module) Close() {
	m.state.Close()
}
