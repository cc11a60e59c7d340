// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"

	"github.com/ulikunitz/xz"
)

// fileExtensionXz is the file extension for xz files.
const fileExtensionXz = "xz"

// magicBytesXz contains the magic bytes for an xz compressed file.
// reference: https://tukaani.org/xz/xz-file-format-1.0.4.txt
var magicBytesXz = [][]byte{
	{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
}

// isXz checks if the header matches the magic bytes for xz compressed files.
func isXz(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesXz)
}

// unpackXz decompresses src with the xz algorithm into dst.
func unpackXz(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressXzStream, fileExtensionXz)
}

// decompressXzStream returns an io.Reader that decompresses src with the
// xz algorithm.
func decompressXzStream(src io.Reader) (io.Reader, error) {
	return xz.NewReader(src)
}
