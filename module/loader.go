// Package module loads Lua provider modules and bridges their exports to Go.
package module

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/provdev-cli/provdev/constant"
	"github.com/provdev-cli/provdev/filesystem"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// NotFoundError reports a module path that does not exist, even after the
// extension fallback rule.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %s does not exist", e.Path)
}

// Resolve applies the extension fallback rule to a candidate module path:
// the path itself if it exists, otherwise path + ".lua" when the candidate
// carries no extension. Directories never resolve.
func Resolve(path string) (string, error) {
	if isFile(path) {
		return path, nil
	}

	if filepath.Ext(path) == "" {
		if alt := path + constant.ModuleExtension; isFile(alt) {
			return alt, nil
		}
	}

	return "", &NotFoundError{Path: path}
}

func isFile(path string) bool {
	info, err := filesystem.API().Stat(path)
	return err == nil && !info.IsDir()
}

// Load executes the module file at path in a fresh interpreter state and
// returns its exports.
//
// Reload-on-every-call contract: there is deliberately no memoization of
// source, bytecode, or state. Every call re-reads and re-executes the file,
// so an edit on disk is observed by the very next call. Callers must never
// assume two loads of the same path yield the same module, and own closing
// the returned Module.
func Load(path string) (*Module, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return nil, err
	}

	src, err := filesystem.API().ReadFile(resolved)
	if err != nil {
		return nil, err
	}

	state := lua.NewState()
	libs.Preload(state)
	registerTLSClient(state)

	m := &Module{
		state:   state,
		exports: make(map[string]lua.LValue),
	}
	recordExports(state, m)

	fn, err := state.Load(bytes.NewReader(src), resolved)
	if err != nil {
		state.Close()
		return nil, err
	}

	state.Push(fn)
	if err := state.PCall(0, lua.MultRet, nil); err != nil {
		state.Close()
		return nil, err
	}

	// A value returned by the chunk acts as the module's default export.
	if state.GetTop() > 0 {
		if ret := state.Get(1); ret != lua.LNil {
			m.def = ret
		}
		state.SetTop(0)
	}

	// Assignments made after the recorder fired bypass __newindex, so take
	// the final value of each export from the globals table.
	for _, name := range m.names {
		m.exports[name] = state.G.Global.RawGetString(name)
	}

	return m, nil
}

// recordExports wraps the interpreter's globals table so that every
// top-level assignment made by the module body is captured in assignment
// order. Values preloaded before the recorder is installed (standard
// libraries, the http_tls client) are already present and never fire it.
func recordExports(state *lua.LState, m *Module) {
	mt := state.NewTable()
	state.SetField(mt, "__newindex", state.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		name := L.Get(2)
		value := L.Get(3)
		L.RawSet(tbl, name, value)

		if name.Type() == lua.LTString {
			if _, seen := m.exports[name.String()]; !seen {
				m.names = append(m.names, name.String())
				m.exports[name.String()] = value
			}
		}
		return 0
	}))
	state.SetMetatable(state.G.Global, mt)
}
