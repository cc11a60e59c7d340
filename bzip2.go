// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// fileExtensionBzip2 is the file extension for bzip2 files.
const fileExtensionBzip2 = "bz2"

// magicBytesBzip2 contains the magic bytes for a bzip2 compressed file.
// reference: https://en.wikipedia.org/wiki/Bzip2
var magicBytesBzip2 = [][]byte{
	{0x42, 0x5A, 0x68},
}

// isBzip2 checks if the header matches the magic bytes for bzip2 compressed files.
func isBzip2(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesBzip2)
}

// unpackBzip2 decompresses src with the bzip2 algorithm into dst.
func unpackBzip2(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressBzip2Stream, fileExtensionBzip2)
}

// decompressBzip2Stream returns an io.Reader that decompresses src with the
// bzip2 algorithm.
func decompressBzip2Stream(src io.Reader) (io.Reader, error) {
	return bzip2.NewReader(src, nil)
}
