// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// decompressionFunc instantiates a decompressing reader over src.
type decompressionFunc func(io.Reader) (io.Reader, error)

// decompress reads a compressed single-file stream from src, decompresses it
// and writes the result to dst. If the decompressed stream is a tar archive,
// it is extracted in place instead, unless disabled in the configuration.
func decompress(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config, decFunc decompressionFunc, fileExt string) error {

	// prepare telemetry capturing
	// remark: do not defer TelemetryHook here, bc/ in case of tar.<compression>,
	// the tar extraction should submit the telemetry data
	cfg.Logger().Debug("decompress", "fileExt", fileExt)
	td := &TelemetryData{ExtractedType: fileExt, ArchiveName: srcName(src)}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	// limit input size
	limitedReader := newLimitErrorReader(src, cfg.MaxInputSize())
	defer captureInputSize(td, limitedReader)

	// start decompression
	decompressedStream, err := decFunc(limitedReader)
	if err != nil {
		return handleError(cfg, td, "cannot start decompression", err)
	}
	defer func() {
		if closer, ok := decompressedStream.(io.Closer); ok {
			closer.Close()
		}
	}()

	// check if context is canceled
	if err := ctx.Err(); err != nil {
		return handleError(cfg, td, "context error", err)
	}

	// convert to peek header
	headerReader, err := newHeaderReader(decompressedStream, maxHeaderLength)
	if err != nil {
		return handleError(cfg, td, "cannot read decompressed header", err)
	}

	// check if the decompressed stream is a tar archive
	checkUntar := !cfg.NoUntarAfterDecompression()
	if checkUntar && isTar(headerReader.PeekHeader()) {
		td.ExtractedType = fmt.Sprintf("tar.%s", fileExt) // combine types
		return processTar(ctx, t, dst, headerReader, cfg, td)
	}

	// determine name and decompress content
	outputName := decompressedName(srcName(src), fileExt)
	cfg.Logger().Debug("determined output name", "name", outputName)
	n, err := createFile(t, dst, outputName, headerReader, cfg.DecompressFileMode(), cfg.MaxExtractionSize(), cfg)
	td.ExtractionSize = n
	if err != nil {
		return handleError(cfg, td, "cannot create file", err)
	}
	td.ExtractedFiles++

	// finished
	return nil
}

const (
	// defaultDecompressionName is the fallback name for decompressed content
	defaultDecompressionName = "sweep-decompressed-content"

	// defaultDecompressedSuffix is appended if the input name does not carry
	// the expected compression suffix
	defaultDecompressedSuffix = "decompressed"
)

// decompressedName derives the output file name for decompressed content by
// stripping the compression suffix from the input name. Input names that
// cannot produce a safe file name fall back to a generic one.
func decompressedName(inputName string, fileExt string) string {
	if len(inputName) == 0 {
		return defaultDecompressionName
	}

	// strip the compression suffix
	newName := strings.TrimSuffix(inputName, "."+fileExt)

	// if nothing was stripped, mark the output instead
	if newName == inputName {
		newName = fmt.Sprintf("%s.%s", inputName, defaultDecompressedSuffix)
	}

	// reject names that do not form a usable file name
	if newName == "" || newName == "." || newName == ".." {
		return defaultDecompressionName
	}
	if !utf8.ValidString(newName) {
		return defaultDecompressionName
	}
	if strings.ContainsAny(newName, "/\\\x00") {
		return defaultDecompressionName
	}

	return newName
}
