// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 10

// HTTP Surface - these keys configure the development server's listener.
const (
	ServerHost = "server.host"
	ServerPort = "server.port"
)

// Module Tree - these keys locate the build output that providers are served from.
const (
	DistRoot     = "dist.root"
	DistManifest = "dist.manifest"
)

// Provider Context - these keys shape the configuration value passed to every provider call.
const (
	ContextBaseURL = "context.base_url"
)

// Build Step - these keys control the external command that produces the module tree.
const (
	BuildCommand = "build.command"
)

// Diagnostics - these keys configure the persistent logging subsystem.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// Command Line Interface - these keys define the CLI presentation.
const (
	CliColored = "cli.colored"
)
