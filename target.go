// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Target specifies all functions that are needed to extract archive contents
// to a destination and to remove swept archives.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error should be returned. If the
	// file does not exist, it should be created. The size of the file should not exceed maxSize. If the file is created
	// successfully, the number of bytes written should be returned. If an error occurs, the number of bytes written
	// should be returned along with the error. If maxSize < 0, the file size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates a directory at the specified path with the specified mode. If the directory already exists,
	// nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates a symbolic link from newname to oldname. If newname already exists and overwrite is false,
	// the function returns an error.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// Lstat see docs for os.Lstat. Main purpose is to check for symlinks in the extraction path.
	Lstat(path string) (fs.FileInfo, error)

	// Stat see docs for os.Stat.
	Stat(path string) (fs.FileInfo, error)

	// Chtimes see docs for os.Chtimes. Main purpose is to restore the file times of extracted entries.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes changes the access and modification times of a file without following symlinks.
	Lchtimes(name string, atime, mtime time.Time) error

	// Remove see docs for os.Remove. Main purpose is to delete swept archives after extraction.
	Remove(path string) error
}

// createFile is a wrapper around the CreateFile function
//
// If the name is empty, the function returns an error.
//
// The directory for the file is created with config.CreateDirMode() if it
// does not exist. The entry path is checked with pathCheck before writing.
func createFile(t Target, dst string, name string, src io.Reader, mode fs.FileMode, maxSize int64, cfg *Config) (int64, error) {
	// check if a name is provided
	if len(name) == 0 {
		return 0, fmt.Errorf("cannot create file without name")
	}

	// ensure the directory for the file exists
	if fDir := filepath.Dir(entryPath(name)); fDir != "." {
		if err := createDir(t, dst, filepath.ToSlash(fDir), cfg.CreateDirMode(), cfg); err != nil {
			return 0, fmt.Errorf("cannot create directory: %w", err)
		}
	}

	// check the entry path before writing
	if err := pathCheck(t, dst, name, cfg); err != nil {
		return 0, err
	}

	path := filepath.Join(dst, entryPath(name))
	return t.CreateFile(path, src, mode, cfg.Overwrite(), maxSize)
}

// createDir is a wrapper around the CreateDir function
//
// The entry path is checked with pathCheck before the directory is created.
func createDir(t Target, dst string, name string, mode fs.FileMode, cfg *Config) error {
	// no action needed
	if name == "." || name == "" {
		return nil
	}

	// check the entry path before creating
	if err := pathCheck(t, dst, name, cfg); err != nil {
		return err
	}

	path := filepath.Join(dst, entryPath(name))
	return t.CreateDir(path, mode)
}

// createSymlink is a wrapper around the CreateSymlink function
//
// Link targets that are absolute paths are rejected. The entry path is
// checked with pathCheck before the link is created; the link target is
// checked with the same policy, relative to the link directory.
func createSymlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	// check if a name is provided
	if len(name) == 0 {
		return fmt.Errorf("cannot create symlink without name")
	}

	// check if link target is an absolute path
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("symlink with absolute path as target: %s", linkTarget)
	}

	// ensure the directory for the symlink exists
	linkDirectory := filepath.Dir(entryPath(name))
	if linkDirectory != "." {
		if err := createDir(t, dst, filepath.ToSlash(linkDirectory), cfg.CreateDirMode(), cfg); err != nil {
			return fmt.Errorf("cannot create directory for symlink: %w", err)
		}
	}

	// check the entry path and the link target before creating
	if err := pathCheck(t, dst, name, cfg); err != nil {
		return err
	}
	targetCleaned := filepath.ToSlash(filepath.Join(linkDirectory, entryPath(linkTarget)))
	if err := pathCheck(t, dst, targetCleaned, cfg); err != nil {
		return fmt.Errorf("symlink target check failed: %w", err)
	}

	return t.CreateSymlink(linkTarget, filepath.Join(dst, entryPath(name)), cfg.Overwrite())
}

// pathCheck inspects the entry path relative to dst.
//
// If the path escapes dst and config.DenyPathTraversal() is enabled, an
// [ErrPathTraversal] error is returned. If it is disabled, the escape is
// logged as a warning and the path is written as stored in the archive,
// preserving the historic sweep behavior.
//
// Symlinks in the path are rejected unless config.TraverseSymlinks() allows
// them, in which case a warning is logged.
func pathCheck(t Target, dst string, path string, cfg *Config) error {
	// check if path is absolute
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute path as entry name: %s", path)
	}

	// convert the path to be os specific
	path = entryPath(path)

	// get relative path from dst to the entry target
	rel, err := filepath.Rel(dst, filepath.Join(dst, path))
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}

	// check if the relative path escapes dst
	if !filepath.IsLocal(rel) {
		if cfg.DenyPathTraversal() {
			return fmt.Errorf("%w: %s", ErrPathTraversal, path)
		}
		cfg.Logger().Warn("entry path escapes sweep directory", "path", path)

		// the path leaves dst, the symlink component check below does not apply
		return nil
	}

	// check each existing path element for symlinks
	elements := strings.Split(rel, string(os.PathSeparator))
	for i := 0; i < len(elements)-1; i++ {
		subDir := filepath.Join(elements[0 : i+1]...)
		checkDir := filepath.Join(dst, subDir)

		stat, err := t.Lstat(checkDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("invalid path: %w", err)
		}

		// check for symlink
		if stat.Mode()&os.ModeSymlink == os.ModeSymlink {
			if !cfg.TraverseSymlinks() {
				return fmt.Errorf("symlink in path: %s", subDir)
			}
			cfg.Logger().Warn("traverse symlink", "sub-dir", subDir)
		}
	}

	return nil
}
