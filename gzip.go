// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"compress/gzip"
	"context"
	"io"
)

// fileExtensionGZip is the file extension for gzip files.
const fileExtensionGZip = "gz"

// fileExtensionTarGZip is the file extension for gzip compressed tar archives.
const fileExtensionTarGZip = "tar.gz"

// fileExtensionTgz is the short file extension for gzip compressed tar archives.
const fileExtensionTgz = "tgz"

// magicBytesGZip contains the magic bytes for a gzip compressed file.
// reference: https://socketloop.com/tutorials/golang-gunzip-file
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// isGZip checks if the header matches the magic bytes for gzip compressed files.
func isGZip(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesGZip)
}

// unpackGZip decompresses src with the gzip algorithm into dst. If the
// decompressed stream is a tar archive, it is extracted.
func unpackGZip(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressGZipStream, fileExtensionGZip)
}

// decompressGZipStream returns an io.Reader that decompresses src with the
// gzip algorithm.
func decompressGZipStream(src io.Reader) (io.Reader, error) {
	return gzip.NewReader(src)
}
