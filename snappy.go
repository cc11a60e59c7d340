// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"

	"github.com/golang/snappy"
)

// fileExtensionSnappy is the file extension for snappy files.
const fileExtensionSnappy = "sz"

// magicBytesSnappy contains the magic bytes for a snappy framed stream.
// reference: https://github.com/google/snappy/blob/main/framing_format.txt
var magicBytesSnappy = [][]byte{
	{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59},
}

// isSnappy checks if the header matches the magic bytes for snappy framed streams.
func isSnappy(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesSnappy)
}

// unpackSnappy decompresses src with the snappy algorithm into dst.
func unpackSnappy(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressSnappyStream, fileExtensionSnappy)
}

// decompressSnappyStream returns an io.Reader that decompresses src with the
// snappy algorithm.
func decompressSnappyStream(src io.Reader) (io.Reader, error) {
	return snappy.NewReader(src), nil
}
