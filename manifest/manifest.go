// Package manifest reports on the built module tree and its manifest file.
//
// Nothing here is cached: every query re-reads the filesystem, so the
// answers always reflect the tree as the build step last left it. For a
// low-traffic development tool that trade is the correct one.
package manifest

import (
	"os"
	"path/filepath"
	"time"

	"github.com/provdev-cli/provdev/filesystem"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Reporter answers introspection queries about a module tree.
type Reporter struct {
	Root string
	File string
}

// New returns a Reporter for the module tree at root whose manifest file
// carries the given name.
func New(root, file string) *Reporter {
	return &Reporter{Root: root, File: file}
}

// Providers returns the provider directory names under the dist root,
// re-read on every call. A missing root reads as an empty provider set,
// not an error: the build step simply has not run yet.
func (r *Reporter) Providers() ([]string, error) {
	infos, err := filesystem.API().ReadDir(r.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := lo.FilterMap(infos, func(info os.FileInfo, _ int) (string, bool) {
		return info.Name(), info.IsDir()
	})
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Path returns the manifest file's location inside the module tree.
func (r *Reporter) Path() string {
	return filepath.Join(r.Root, r.File)
}

// ModTime returns the manifest file's modification time, or None when the
// manifest has not been built.
func (r *Reporter) ModTime() mo.Option[time.Time] {
	info, err := filesystem.API().Stat(r.Path())
	if err != nil {
		return mo.None[time.Time]()
	}
	return mo.Some(info.ModTime())
}

// Read returns the raw manifest contents.
func (r *Reporter) Read() ([]byte, error) {
	return filesystem.API().ReadFile(r.Path())
}
