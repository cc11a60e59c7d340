// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"

	"github.com/andybalholm/brotli"
)

// fileExtensionBrotli is the file extension for brotli files.
//
// Note: brotli does not define magic bytes, the file content cannot be
// verified against the extension.
const fileExtensionBrotli = "br"

// unpackBrotli decompresses src with the brotli algorithm into dst.
func unpackBrotli(ctx context.Context, t Target, dst string, src io.Reader, cfg *Config) error {
	return decompress(ctx, t, dst, src, cfg, decompressBrotliStream, fileExtensionBrotli)
}

// decompressBrotliStream returns an io.Reader that decompresses src with the
// brotli algorithm.
func decompressBrotliStream(src io.Reader) (io.Reader, error) {
	return brotli.NewReader(src), nil
}
