// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"

	"github.com/klauspost/compress/zstd"
)

// fileExtensionZstd is the file extension for zstandard files.
const fileExtensionZstd = "zst"

// magicBytesZstd contains the magic bytes for a zstandard compressed file.
// reference: https://www.rfc-editor.org/rfc/rfc8878.html
var magicBytesZstd = [][]byte{
	{0x28, 0xb5, 0x2f, 0xfd},
}

// isZstd checks if the header matches the magic bytes for zstandard compressed files.
func isZstd(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesZstd)
}

// unpackZstd decompresses src with the zstandard algorithm into dst.
func unpackZstd(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressZstdStream, fileExtensionZstd)
}

// decompressZstdStream returns an io.Reader that decompresses src with the
// zstandard algorithm.
func decompressZstdStream(src io.Reader) (io.Reader, error) {
	d, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}

	// expose the decoder as an io.ReadCloser, so that its goroutines are
	// released after decompression
	return d.IOReadCloser(), nil
}
