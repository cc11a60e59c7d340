// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/nwaples/rardecode"
)

// fileExtensionRar is the file extension for rar files.
const fileExtensionRar = "rar"

// magicBytesRar contains the magic bytes for rar archives.
var magicBytesRar = [][]byte{
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00},       // Rar 1.5
	{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}, // Rar 5.0
}

// isRar checks if the header matches the magic bytes for rar archives.
func isRar(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesRar)
}

// unpackRar starts the rar extraction from src to dst.
func unpackRar(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	// prepare telemetry data collection and emit
	td := &TelemetryData{ExtractedType: fileExtensionRar, ArchiveName: srcName(src)}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	return processRar(ctx, t, dst, src, cfg, td)
}

// processRar extracts a rar archive from src to dst.
func processRar(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config, td *TelemetryData) error {
	// log extraction
	cfg.Logger().Debug("extracting rar")

	// check if src is a file, instantiate reader from file
	if f, ok := src.(*os.File); ok {
		a, err := rardecode.OpenReader(f.Name(), "")
		if err != nil {
			return handleError(cfg, td, "cannot create rar decoder", err)
		}
		defer a.Close()
		return extractEntries(ctx, t, dst, &rarWalker{&a.Reader}, cfg, td)
	}

	// instantiate reader from stream
	limitedReader := newLimitErrorReader(src, cfg.MaxInputSize())
	defer captureInputSize(td, limitedReader)
	a, err := rardecode.NewReader(limitedReader, "")
	if err != nil {
		return handleError(cfg, td, "cannot create rar decoder", err)
	}
	return extractEntries(ctx, t, dst, &rarWalker{a}, cfg, td)
}

// rarWalker is a walker for rar files.
type rarWalker struct {
	r *rardecode.Reader
}

// Type returns the file extension for rar files.
func (rw *rarWalker) Type() string {
	return fileExtensionRar
}

// Next returns the next entry in the rar file.
func (rw *rarWalker) Next() (archiveEntry, error) {
	fh, err := rw.r.Next()
	if err != nil {
		return nil, err
	}
	return &rarEntry{fh, rw.r}, nil
}

// rarEntry is an entry in a rar archive.
type rarEntry struct {
	f *rardecode.FileHeader
	r io.Reader
}

// Name returns the name of the entry.
func (r *rarEntry) Name() string {
	return r.f.Name
}

// Size returns the size of the entry.
func (r *rarEntry) Size() int64 {
	return r.f.UnPackedSize
}

// Mode returns the mode of the entry.
func (r *rarEntry) Mode() fs.FileMode {
	return r.f.Mode()
}

// Linkname symlinks are not supported by the decoder.
func (r *rarEntry) Linkname() string {
	return ""
}

// IsRegular returns true if the entry is a regular file.
func (r *rarEntry) IsRegular() bool {
	return r.f.Mode().IsRegular()
}

// IsDir returns true if the entry is a directory.
func (r *rarEntry) IsDir() bool {
	return r.f.IsDir
}

// IsSymlink symlinks are not supported by the decoder.
func (r *rarEntry) IsSymlink() bool {
	return false
}

// Type returns the type of the entry.
func (r *rarEntry) Type() fs.FileMode {
	return r.f.Mode().Type()
}

// Open returns a reader for the entry.
func (r *rarEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{r.r}, nil
}

// ModTime returns the modification time of the entry.
func (r *rarEntry) ModTime() time.Time {
	return r.f.ModificationTime
}
