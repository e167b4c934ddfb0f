// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// ProviderTemplates maps module file stems to Go text/templates used when
// scaffolding a new provider directory.
var ProviderTemplates = map[string]string{
	CatalogFn: `{{ $divider := repeat "-" (plus (max (len .BaseURL) (len .Name) 3) 12) }}{{ $divider }}
-- @provider {{ .Name }}
-- @base     {{ .BaseURL }}
-- @license  MIT
{{ $divider }}

--- Static catalog served as-is; replace with a function for dynamic catalogs.
catalog = {}
`,

	SearchFn: `-- @provider {{ .Name }}

--- Searches the upstream site.
-- @param query string Query to search for
-- @param page string|number Page to fetch
-- @param ctx table Provider context ({ baseUrl })
-- @return table Search results
function search(query, page, ctx)
	return {}
end
`,

	StreamFn: `-- @provider {{ .Name }}

--- Resolves playable stream links for an item.
-- Requests for "watch" are served by this module as well.
-- @param id string Item identifier or link
-- @param type string Item type (may be empty)
-- @param ctx table Provider context ({ baseUrl })
-- @return table Streams
function stream(id, type, ctx)
	return {}
end
`,

	EpisodesFn: `-- @provider {{ .Name }}

--- Lists the episodes of an item.
-- @param link string Item link
-- @param ctx table Provider context ({ baseUrl })
-- @return table Episodes
function episodes(link, ctx)
	return {}
end
`,
}
