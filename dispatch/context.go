// Package dispatch maps provider/function requests onto provider module calls.
package dispatch

import (
	lua "github.com/yuin/gopher-lua"
)

// Context is the constant-shaped configuration value handed to every
// provider function as its final argument. It is rebuilt for each call;
// provider scripts never share mutable state through it.
type Context struct {
	BaseURL string `json:"baseUrl"`
}

func (c Context) toLua(L *lua.LState) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("baseUrl", lua.LString(c.BaseURL))
	return tbl
}
