// Package module loads Lua provider modules and bridges their exports to Go.
package module

import (
	lua "github.com/yuin/gopher-lua"
)

// FromLua converts a Lua value to its JSON-ready Go representation.
// Tables with a sequence part become slices, all other tables become maps
// keyed by the string form of their keys. Integral numbers convert to int
// so they serialize without a decimal point. Functions have no JSON
// representation and convert to nil.
func FromLua(value lua.LValue) any {
	switch v := value.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		if float64(v) == float64(int(v)) {
			return int(v)
		}
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		return tableFromLua(v)
	default:
		return nil
	}
}

func tableFromLua(table *lua.LTable) any {
	if n := table.Len(); n > 0 {
		list := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			list = append(list, FromLua(table.RawGetInt(i)))
		}
		return list
	}

	dict := make(map[string]any)
	table.ForEach(func(k, v lua.LValue) {
		if v.Type() == lua.LTFunction {
			return
		}
		dict[k.String()] = FromLua(v)
	})
	return dict
}
