// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"compress/zlib"
	"context"
	"io"
)

// fileExtensionZlib is the file extension for zlib files.
const fileExtensionZlib = "zz"

// magicBytesZlib contains the magic bytes for a zlib compressed file.
// reference: https://www.rfc-editor.org/rfc/rfc1950
var magicBytesZlib = [][]byte{
	{0x78, 0x01},
	{0x78, 0x5e},
	{0x78, 0x9c},
	{0x78, 0xda},
}

// isZlib checks if the header matches the magic bytes for zlib compressed files.
func isZlib(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesZlib)
}

// unpackZlib decompresses src with the zlib algorithm into dst.
func unpackZlib(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressZlibStream, fileExtensionZlib)
}

// decompressZlibStream returns an io.Reader that decompresses src with the
// zlib algorithm.
func decompressZlibStream(src io.Reader) (io.Reader, error) {
	return zlib.NewReader(src)
}
