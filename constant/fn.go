// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// Provider Function Identifiers - the recognized capability vocabulary of provider modules.
// Any other function name is still dispatchable, but receives only the provider context.
const (
	CatalogFn  = "catalog"
	PostsFn    = "posts"
	SearchFn   = "search"
	StreamFn   = "stream"
	WatchFn    = "watch"
	MetaFn     = "meta"
	EpisodesFn = "episodes"
)

// ModuleExtension is the file extension of provider module scripts.
const ModuleExtension = ".lua"
