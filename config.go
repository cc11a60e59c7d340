// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern.
type ConfigOption func(*Config)

// Config holds all configuration options for a sweep run. The options can
// be adjusted using the option pattern style.
//
// The defaults reproduce the behavior of a plain interactive sweep: only
// files ending in ".zip" are matched, existing files are overwritten,
// entry paths are written as stored in the archive, archives are deleted
// after successful extraction and no resource limits are applied.
type Config struct {
	// archiveExtensions is the list of file extensions (without leading dot)
	// that discovery matches case-sensitively against file names.
	archiveExtensions []string

	// cacheInMemory caches streamed input in memory instead of a temporary
	// file when an unpacker needs random access (zip, 7z).
	cacheInMemory bool

	// createDirMode is the mode for directories that are created implicitly,
	// i.e. not defined as entries in the archive (respecting umask).
	createDirMode fs.FileMode

	// decompressFileMode is the mode for a decompressed file (respecting umask).
	decompressFileMode fs.FileMode

	// denyPathTraversal rejects entry paths that escape the sweep directory.
	// If disabled, escaping paths are written as stored and logged as warnings.
	denyPathTraversal bool

	// denySymlinkExtraction disables the extraction of symlink entries.
	denySymlinkExtraction bool

	// dropFileAttributes skips restoring entry modification times.
	dropFileAttributes bool

	// dryRun reports matching archives without extracting or deleting them.
	dryRun bool

	// keepArchives extracts archives but skips their deletion.
	keepArchives bool

	// logger receives the lifecycle and diagnostic output of a run.
	logger logger

	// maxExtractionSize is the maximum size over all extracted files of one
	// archive. Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum number of entries (files, directories and
	// symlinks) in one archive. Set value to -1 to disable the check.
	maxFiles int64

	// maxInputSize is the maximum size of one input archive.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// noUntarAfterDecompression disables combined tar.<compression> extraction.
	noUntarAfterDecompression bool

	// overwrite decides if existing files are overwritten in the destination.
	overwrite bool

	// patterns is a list of filepath patterns entries need to match to be extracted.
	patterns []string

	// telemetryHook consumes telemetry data after each processed archive.
	telemetryHook TelemetryHook

	// traverseSymlinks allows extraction through symlinked directories.
	traverseSymlinks bool
}

// ArchiveExtensions returns the file extensions matched during discovery.
func (c *Config) ArchiveExtensions() []string {
	return c.archiveExtensions
}

// CacheInMemory returns true if streamed input is cached in memory instead
// of a temporary file when an unpacker needs random access.
func (c *Config) CacheInMemory() bool {
	return c.cacheInMemory
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the
// maximum is exceeded, a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {
	if c.MaxFiles() == -1 {
		return nil
	}
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if fileSize exceeds the configured maximum. If
// the maximum is exceeded, a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(fileSize int64) error {
	if c.MaxExtractionSize() == -1 {
		return nil
	}
	if fileSize > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// CreateDirMode returns the mode for implicitly created directories.
func (c *Config) CreateDirMode() fs.FileMode {
	return c.createDirMode
}

// DecompressFileMode returns the mode for a decompressed file.
func (c *Config) DecompressFileMode() fs.FileMode {
	return c.decompressFileMode
}

// DenyPathTraversal returns true if entry paths escaping the sweep
// directory are rejected instead of written as stored.
func (c *Config) DenyPathTraversal() bool {
	return c.denyPathTraversal
}

// DenySymlinkExtraction returns true if symlink entries are NOT extracted.
func (c *Config) DenySymlinkExtraction() bool {
	return c.denySymlinkExtraction
}

// DropFileAttributes returns true if entry modification times are not restored.
func (c *Config) DropFileAttributes() bool {
	return c.dropFileAttributes
}

// DryRun returns true if archives are only reported, not extracted or deleted.
func (c *Config) DryRun() bool {
	return c.dryRun
}

// KeepArchives returns true if archives are not deleted after extraction.
func (c *Config) KeepArchives() bool {
	return c.keepArchives
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all extracted files of one archive.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum number of entries in one archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of one input archive.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// NoUntarAfterDecompression returns true if tar.<compression> archives
// should NOT be untarred after decompression.
func (c *Config) NoUntarAfterDecompression() bool {
	return c.noUntarAfterDecompression
}

// Overwrite returns true if existing files are overwritten in the destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// Patterns returns the list of filepath patterns entries need to match to be
// extracted. Patterns are matched using [path/filepath.Match].
func (c *Config) Patterns() []string {
	return c.patterns
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(ctx context.Context, d *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

// TraverseSymlinks returns true if extraction through symlinked directories
// is allowed.
func (c *Config) TraverseSymlinks() bool {
	return c.traverseSymlinks
}

const (
	defaultCacheInMemory             = false // cache on disk
	defaultCreateDirMode             = 0755  // rwxr-xr-x for implicit directories
	defaultDecompressFileMode        = 0644  // rw-r--r-- for decompressed files
	defaultDenyPathTraversal         = false // write entry paths as stored
	defaultDenySymlinkExtraction     = false // allow symlink extraction
	defaultDropFileAttributes        = false // restore modification times
	defaultDryRun                    = false // perform the sweep
	defaultKeepArchives              = false // delete archives after extraction
	defaultMaxExtractionSize         = -1    // unlimited
	defaultMaxFiles                  = -1    // unlimited
	defaultMaxInputSize              = -1    // unlimited
	defaultNoUntarAfterDecompression = false // untar after decompression
	defaultOverwrite                 = true  // overwrite existing files
	defaultTraverseSymlinks          = false // don't traverse symlinks
)

var (
	// defaultArchiveExtensions matches only conventional lowercase zip files.
	defaultArchiveExtensions = []string{fileExtensionZip}

	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		archiveExtensions:         defaultArchiveExtensions,
		cacheInMemory:             defaultCacheInMemory,
		createDirMode:             defaultCreateDirMode,
		decompressFileMode:        defaultDecompressFileMode,
		denyPathTraversal:         defaultDenyPathTraversal,
		denySymlinkExtraction:     defaultDenySymlinkExtraction,
		dropFileAttributes:        defaultDropFileAttributes,
		dryRun:                    defaultDryRun,
		keepArchives:              defaultKeepArchives,
		logger:                    defaultLogger,
		maxExtractionSize:         defaultMaxExtractionSize,
		maxFiles:                  defaultMaxFiles,
		maxInputSize:              defaultMaxInputSize,
		noUntarAfterDecompression: defaultNoUntarAfterDecompression,
		overwrite:                 defaultOverwrite,
		telemetryHook:             defaultTelemetryHook,
		traverseSymlinks:          defaultTraverseSymlinks,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithArchiveExtensions options pattern function to set the file extensions
// (without leading dot) matched during discovery. Matching is case-sensitive.
func WithArchiveExtensions(ext ...string) ConfigOption {
	return func(c *Config) {
		if len(ext) > 0 {
			c.archiveExtensions = ext
		}
	}
}

// WithCacheInMemory options pattern function to enable/disable caching
// streamed input in memory. This applies only to unpackers that need random
// access on their input (zip, 7z).
//
// If set to false, the cache is stored on disk to avoid memory exhaustion.
func WithCacheInMemory(cache bool) ConfigOption {
	return func(c *Config) {
		c.cacheInMemory = cache
	}
}

// WithCreateDirMode options pattern function to set the mode for implicitly
// created directories. (respecting umask)
func WithCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.createDirMode = mode
	}
}

// WithDecompressFileMode options pattern function to set the mode for a
// decompressed file. (respecting umask)
func WithDecompressFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.decompressFileMode = mode
	}
}

// WithDenyPathTraversal options pattern function to reject entry paths that
// escape the sweep directory. If disabled, escaping paths are written as
// stored in the archive and logged as warnings.
func WithDenyPathTraversal(deny bool) ConfigOption {
	return func(c *Config) {
		c.denyPathTraversal = deny
	}
}

// WithDenySymlinkExtraction options pattern function to deny symlink extraction.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) {
		c.denySymlinkExtraction = deny
	}
}

// WithDropFileAttributes options pattern function to skip restoring the
// modification times of extracted entries.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) {
		c.dropFileAttributes = drop
	}
}

// WithDryRun options pattern function to report matching archives without
// extracting or deleting them.
func WithDryRun(dry bool) ConfigOption {
	return func(c *Config) {
		c.dryRun = dry
	}
}

// WithKeepArchives options pattern function to keep archives on disk after
// successful extraction instead of deleting them.
func WithKeepArchives(keep bool) ConfigOption {
	return func(c *Config) {
		c.keepArchives = keep
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set the maximum size
// over all extracted files of one archive. (-1 to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set the maximum number of entries
// (files, directories and symlinks) in one archive. (-1 to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set the maximum size of one
// input archive. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithNoUntarAfterDecompression options pattern function to enable/disable
// combined tar.<compression> extraction.
func WithNoUntarAfterDecompression(disable bool) ConfigOption {
	return func(c *Config) {
		c.noUntarAfterDecompression = disable
	}
}

// WithOverwrite options pattern function to specify if existing files should
// be overwritten in the destination.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithPatterns options pattern function to set filepath patterns that
// entries need to match to be extracted.
// Patterns are matched using [path/filepath.Match].
func WithPatterns(pattern ...string) ConfigOption {
	return func(c *Config) {
		c.patterns = append(c.patterns, pattern...)
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which
// is called after each processed archive.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

// WithInsecureTraverseSymlinks options pattern function to traverse symlinks
// during extraction.
func WithInsecureTraverseSymlinks(traverse bool) ConfigOption {
	return func(c *Config) {
		c.traverseSymlinks = traverse
	}
}
