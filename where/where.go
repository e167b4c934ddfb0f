// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/provdev-cli/provdev/constant"
	"github.com/provdev-cli/provdev/filesystem"
	"github.com/provdev-cli/provdev/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "PROVDEV_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It prioritizes the XDG_CONFIG_HOME specification on Linux and equivalent user profile paths on Darwin and Windows.
// Direct override: The path resolution can be explicitly specified via the PROVDEV_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Provdev))
}

// Logs resolves the absolute path to the directory used for application diagnostic and audit logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Dist resolves the module tree root that providers are served from.
// A relative dist.root is interpreted against the current working directory,
// matching the layout of the project the developer runs the server in.
func Dist() string {
	root := viper.GetString(key.DistRoot)
	if root == "" {
		root = "dist"
	}
	if filepath.IsAbs(root) {
		return root
	}

	cwd, err := os.Getwd()
	if err != nil {
		return root
	}
	return filepath.Join(cwd, root)
}

// Manifest resolves the path of the build-produced manifest file inside the module tree.
func Manifest() string {
	name := viper.GetString(key.DistManifest)
	if name == "" {
		name = "manifest.json"
	}
	return filepath.Join(Dist(), name)
}

// Temp resolves a unique, volatile filesystem path for transient application artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Provdev))
}
