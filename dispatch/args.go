// Package dispatch maps provider/function requests onto provider module calls.
package dispatch

import (
	"net/url"

	"github.com/provdev-cli/provdev/constant"
	lua "github.com/yuin/gopher-lua"
)

// argSpec derives the positional arguments for one provider function from
// the request's query parameters. The provider context is appended by the
// dispatcher afterwards, always in final position.
type argSpec func(query url.Values) []lua.LValue

// argTable is the closed mapping from function name to argument shape.
// Names absent from the table dispatch with the context as sole argument.
var argTable = map[string]argSpec{
	constant.PostsFn: func(q url.Values) []lua.LValue {
		return []lua.LValue{lua.LString(q.Get("filter")), pageArg(q)}
	},
	constant.SearchFn: func(q url.Values) []lua.LValue {
		return []lua.LValue{lua.LString(q.Get("query")), pageArg(q)}
	},
	constant.StreamFn: streamArgs,
	constant.WatchFn:  streamArgs,
	constant.CatalogFn: func(url.Values) []lua.LValue {
		return nil
	},
	constant.MetaFn: func(q url.Values) []lua.LValue {
		return []lua.LValue{lua.LString(q.Get("link"))}
	},
	constant.EpisodesFn: func(q url.Values) []lua.LValue {
		return []lua.LValue{firstOf(q, "url", "link")}
	},
}

// streamArgs serves both "stream" and its "watch" alias.
func streamArgs(q url.Values) []lua.LValue {
	return []lua.LValue{firstOf(q, "id", "link"), lua.LString(q.Get("type"))}
}

// pageArg passes the page query parameter through verbatim, defaulting to
// the number 1 when absent.
func pageArg(q url.Values) lua.LValue {
	if page := q.Get("page"); page != "" {
		return lua.LString(page)
	}
	return lua.LNumber(1)
}

// firstOf returns the first non-empty query parameter among keys.
func firstOf(q url.Values, keys ...string) lua.LValue {
	for _, key := range keys {
		if value := q.Get(key); value != "" {
			return lua.LString(value)
		}
	}
	return lua.LString("")
}

// deriveArgs looks the function name up in the closed table.
func deriveArgs(function string, query url.Values) []lua.LValue {
	if spec, ok := argTable[function]; ok {
		return spec(query)
	}
	return nil
}
