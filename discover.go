// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"fmt"
	"os"
	"path/filepath"
)

// Archive represents one archive file discovered in the swept directory.
// It is immutable after discovery.
type Archive struct {
	path string
	name string
	ext  string
}

// Path returns the path of the archive file.
func (a Archive) Path() string {
	return a.path
}

// Name returns the file name of the archive.
func (a Archive) Name() string {
	return a.name
}

// Type returns the matched archive extension, e.g. "zip" or "tar.gz".
func (a Archive) Type() string {
	return a.ext
}

// Discover lists the regular files in root whose name ends in one of the
// configured archive extensions (case-sensitive match) and returns them
// sorted lexicographically ascending by file name. An empty result is a
// valid, non-error outcome.
func Discover(root string, cfg *Config) ([]Archive, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	// os.ReadDir returns entries sorted by filename, which is the
	// processing order of the sweep
	var archives []Archive
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext, ok := matchExtension(entry.Name(), cfg.ArchiveExtensions())
		if !ok {
			continue
		}
		archives = append(archives, Archive{
			path: filepath.Join(root, entry.Name()),
			name: entry.Name(),
			ext:  ext,
		})
	}

	return archives, nil
}
