// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"

	"github.com/pierrec/lz4/v4"
)

// fileExtensionLZ4 is the file extension for lz4 files.
const fileExtensionLZ4 = "lz4"

// magicBytesLZ4 contains the magic bytes for an lz4 compressed file.
// reference: https://github.com/lz4/lz4/blob/dev/doc/lz4_Frame_format.md
var magicBytesLZ4 = [][]byte{
	{0x04, 0x22, 0x4d, 0x18},
}

// isLZ4 checks if the header matches the magic bytes for lz4 compressed files.
func isLZ4(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesLZ4)
}

// unpackLZ4 decompresses src with the lz4 algorithm into dst.
func unpackLZ4(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressLZ4Stream, fileExtensionLZ4)
}

// decompressLZ4Stream returns an io.Reader that decompresses src with the
// lz4 algorithm.
func decompressLZ4Stream(src io.Reader) (io.Reader, error) {
	return lz4.NewReader(src), nil
}
