// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/bodgit/sevenzip"
)

// fileExtension7Zip is the file extension for 7zip files.
const fileExtension7Zip = "7z"

// magicBytes7Zip contains the magic bytes for 7zip archives.
// reference: https://py7zr.readthedocs.io/en/latest/archive_format.html
var magicBytes7Zip = [][]byte{
	{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c},
}

// is7Zip checks if the header matches the magic bytes for 7zip archives.
func is7Zip(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytes7Zip)
}

// unpack7Zip starts the 7zip extraction from src to dst.
func unpack7Zip(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	// prepare telemetry data collection and emit
	td := &TelemetryData{ExtractedType: fileExtension7Zip, ArchiveName: srcName(src)}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	// ensure random access on src
	sra, cleanup, err := readerToReaderAtSeeker(cfg, src)
	if err != nil {
		return handleError(cfg, td, "cannot cache reader", err)
	}
	defer cleanup()

	return process7Zip(ctx, t, dst, sra, cfg, td)
}

// process7Zip reads a 7zip archive from src and extracts the contents to dst.
func process7Zip(ctx context.Context, t Target, dst string, src seekerReaderAt, cfg *Config, td *TelemetryData) error {

	// log extraction
	cfg.Logger().Debug("extracting 7zip")

	// get size of input and check if it exceeds maximum input size
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return handleError(cfg, td, "cannot seek to end of reader", err)
	}
	td.InputSize = size
	if cfg.MaxInputSize() != -1 && size > cfg.MaxInputSize() {
		return handleError(cfg, td, "cannot unpack 7zip", fmt.Errorf("input size exceeds maximum input size"))
	}

	// create 7zip reader and extract
	reader, err := sevenzip.NewReader(src, size)
	if err != nil {
		return handleError(cfg, td, "cannot create 7zip reader", err)
	}
	return extractEntries(ctx, t, dst, &sevenZipWalker{zr: reader}, cfg, td)
}

// sevenZipWalker is a walker for 7zip files.
type sevenZipWalker struct {
	zr *sevenzip.Reader
	fp int
}

// Type returns the file extension for 7zip files.
func (z sevenZipWalker) Type() string {
	return fileExtension7Zip
}

// Next returns the next entry in the 7zip archive.
func (z *sevenZipWalker) Next() (archiveEntry, error) {
	if z.fp >= len(z.zr.File) {
		return nil, io.EOF
	}
	defer func() { z.fp++ }()
	return &sevenZipEntry{z.zr.File[z.fp]}, nil
}

// sevenZipEntry is an entry in a 7zip archive.
type sevenZipEntry struct {
	zf *sevenzip.File
}

// Name returns the name of the entry.
func (z *sevenZipEntry) Name() string {
	return z.zf.Name
}

// Size returns the size of the entry.
func (z *sevenZipEntry) Size() int64 {
	return z.zf.FileInfo().Size()
}

// Mode returns the mode of the entry.
func (z *sevenZipEntry) Mode() fs.FileMode {
	return z.zf.FileInfo().Mode()
}

// Linkname returns the linkname of the entry.
func (z *sevenZipEntry) Linkname() string {
	rc, err := z.zf.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(data)
}

// IsRegular returns true if the entry is a regular file.
func (z *sevenZipEntry) IsRegular() bool {
	return z.zf.FileInfo().Mode().Type() == 0
}

// IsDir returns true if the entry is a directory.
func (z *sevenZipEntry) IsDir() bool {
	return z.zf.FileInfo().IsDir()
}

// IsSymlink returns true if the entry is a symlink.
func (z *sevenZipEntry) IsSymlink() bool {
	return z.zf.FileInfo().Mode().Type() == fs.ModeSymlink
}

// Type returns the type of the entry.
func (z *sevenZipEntry) Type() fs.FileMode {
	return z.zf.FileInfo().Mode().Type()
}

// Open returns a reader for the entry.
func (z *sevenZipEntry) Open() (io.ReadCloser, error) {
	return z.zf.Open()
}

// ModTime returns the modification time of the entry.
func (z *sevenZipEntry) ModTime() time.Time {
	return z.zf.FileInfo().ModTime()
}
