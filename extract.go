// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// now is a function pointer that returns time.Now to the caller.
var now = time.Now

// captureExtractionDuration captures the duration of the extraction
func captureExtractionDuration(td *TelemetryData, start time.Time) {
	stop := now()
	td.ExtractionDuration = stop.Sub(start)
}

// captureInputSize captures the input size of the extraction
func captureInputSize(td *TelemetryData, ler *limitErrorReader) {
	td.InputSize = int64(ler.ReadBytes())
}

// handleError increases the error counter, sets the latest error on the
// telemetry data and returns the error. Every error is fatal to the run.
func handleError(c *Config, td *TelemetryData, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)
	return td.LastExtractionError
}

// checkPatterns checks if the given path matches any of the given patterns.
// If no patterns are given, the function returns true.
func checkPatterns(patterns []string, path string) (bool, error) {
	// no patterns given
	if len(patterns) == 0 {
		return true, nil
	}

	// check if path matches any pattern
	for _, pattern := range patterns {
		if match, err := filepath.Match(pattern, path); err != nil {
			return false, fmt.Errorf("failed to match pattern: %w", err)
		} else if match {
			return true, nil
		}
	}
	return false, nil
}

// extractEntries reads entries from src and writes them below dst,
// preserving the relative paths stored in the archive. It checks ctx for
// cancellation between entries.
func extractEntries(ctx context.Context, t Target, dst string, src archiveWalker, cfg *Config, td *TelemetryData) error {

	// check if dst exists
	if _, err := t.Lstat(dst); err != nil {
		return handleError(cfg, td, "destination does not exist", err)
	}

	cfg.Logger().Debug("start extraction", "type", src.Type())
	var entryCounter int64
	var extractedBytes int64

	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return handleError(cfg, td, "context error", err)
		}

		// get next entry
		ae, err := src.Next()

		switch {

		// if no more entries are found exit loop
		case err == io.EOF:
			// extraction finished
			return nil

		// return any other error
		case err != nil:
			return handleError(cfg, td, "error reading archive", err)

		// skip nil entries
		case ae == nil:
			continue
		}

		// check if maximum of entries is exceeded
		entryCounter++
		if err := cfg.CheckMaxFiles(entryCounter); err != nil {
			return handleError(cfg, td, "max files check failed", err)
		}

		// check if entry needs to match patterns
		match, err := checkPatterns(cfg.Patterns(), ae.Name())
		if err != nil {
			return handleError(cfg, td, "cannot check pattern", err)
		}
		if !match {
			cfg.Logger().Debug("skipping entry (pattern mismatch)", "name", ae.Name())
			td.PatternMismatches++
			continue
		}

		cfg.Logger().Debug("extract entry", "name", ae.Name())
		switch {

		// if its a dir and it doesn't exist create it
		case ae.IsDir():
			if err := createDir(t, dst, ae.Name(), ae.Mode().Perm(), cfg); err != nil {
				return handleError(cfg, td, "failed to create directory", err)
			}
			restoreFileTimes(t, dst, ae, cfg)
			td.ExtractedDirs++

		// if it's a regular file create it
		case ae.IsRegular():

			// check extraction size
			if err := cfg.CheckExtractionSize(extractedBytes + ae.Size()); err != nil {
				return handleError(cfg, td, "max extraction size check failed", err)
			}

			// open entry in archive
			fin, err := ae.Open()
			if err != nil {
				return handleError(cfg, td, "failed to open entry", err)
			}

			// create file
			writtenBytes, err := createFile(t, dst, ae.Name(), fin, ae.Mode().Perm(), cfg.MaxExtractionSize()-extractedBytes, cfg)
			fin.Close()
			if err != nil {
				return handleError(cfg, td, "failed to create file", err)
			}
			restoreFileTimes(t, dst, ae, cfg)
			extractedBytes += writtenBytes
			td.ExtractionSize = extractedBytes
			td.ExtractedFiles++

		// its a symlink
		case ae.IsSymlink():

			// check if symlinks are allowed
			if cfg.DenySymlinkExtraction() {
				return handleError(cfg, td, "cannot extract entry", fmt.Errorf("symlinks are not allowed"))
			}

			// create link
			if err := createSymlink(t, dst, ae.Name(), ae.Linkname(), cfg); err != nil {
				return handleError(cfg, td, "failed to create symlink", err)
			}
			restoreSymlinkTimes(t, dst, ae, cfg)
			td.ExtractedSymlinks++

		default:

			// tar specific: skip the git comment entry `pax_global_header`
			if ae.Name() == "pax_global_header" {
				continue
			}

			td.UnsupportedFiles++
			td.LastUnsupportedFile = ae.Name()
			return handleError(cfg, td, "cannot extract entry", fmt.Errorf("unsupported entry type in archive (%x)", ae.Mode()))
		}
	}
}

// restoreFileTimes restores the modification time stored in the archive on
// the extracted entry, unless file attributes are dropped.
func restoreFileTimes(t Target, dst string, ae archiveEntry, cfg *Config) {
	if cfg.DropFileAttributes() || ae.ModTime().IsZero() {
		return
	}
	path := filepath.Join(dst, entryPath(ae.Name()))
	if err := t.Chtimes(path, ae.ModTime(), ae.ModTime()); err != nil {
		cfg.Logger().Debug("cannot restore file times", "name", ae.Name(), "error", err)
	}
}

// restoreSymlinkTimes restores the modification time stored in the archive
// on an extracted symlink, unless file attributes are dropped.
func restoreSymlinkTimes(t Target, dst string, ae archiveEntry, cfg *Config) {
	if cfg.DropFileAttributes() || ae.ModTime().IsZero() {
		return
	}
	if err := t.Lchtimes(filepath.Join(dst, entryPath(ae.Name())), ae.ModTime(), ae.ModTime()); err != nil {
		cfg.Logger().Debug("cannot restore symlink times", "name", ae.Name(), "error", err)
	}
}

// entryPath converts the slash separated path stored in an archive entry to
// an os specific path.
func entryPath(name string) string {
	return filepath.FromSlash(name)
}

// srcName returns the base name of src if it reads from a file, otherwise
// an empty string. It is used to attribute telemetry data to an archive.
func srcName(src io.Reader) string {
	if f, ok := src.(*os.File); ok {
		return filepath.Base(f.Name())
	}
	return ""
}
