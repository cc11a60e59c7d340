// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// unpackFunc is a function that reads an archive from src and extracts its
// contents to dst.
type unpackFunc func(context.Context, Target, string, io.Reader, *Config) error

// headerCheck is a function that checks if the given header matches the
// expected magic bytes.
type headerCheck func([]byte) bool

type availableUnpacker struct {
	Unpacker    unpackFunc
	HeaderCheck headerCheck
	MagicBytes  [][]byte
	Offset      int
}

// availableUnpackers is the collection of unpacker functions by file
// extension, with the required magic bytes and potential offset.
var availableUnpackers = map[string]availableUnpacker{
	fileExtension7Zip: {
		Unpacker:    unpack7Zip,
		HeaderCheck: is7Zip,
		MagicBytes:  magicBytes7Zip,
	},
	fileExtensionBrotli: {
		// brotli has no magic bytes, the header cannot be verified
		Unpacker: unpackBrotli,
	},
	fileExtensionBzip2: {
		Unpacker:    unpackBzip2,
		HeaderCheck: isBzip2,
		MagicBytes:  magicBytesBzip2,
	},
	fileExtensionGZip: {
		Unpacker:    unpackGZip,
		HeaderCheck: isGZip,
		MagicBytes:  magicBytesGZip,
	},
	fileExtensionLZ4: {
		Unpacker:    unpackLZ4,
		HeaderCheck: isLZ4,
		MagicBytes:  magicBytesLZ4,
	},
	fileExtensionRar: {
		Unpacker:    unpackRar,
		HeaderCheck: isRar,
		MagicBytes:  magicBytesRar,
	},
	fileExtensionSnappy: {
		Unpacker:    unpackSnappy,
		HeaderCheck: isSnappy,
		MagicBytes:  magicBytesSnappy,
	},
	fileExtensionTar: {
		Unpacker:    unpackTar,
		HeaderCheck: isTar,
		MagicBytes:  magicBytesTar,
		Offset:      offsetTar,
	},
	fileExtensionTarGZip: {
		Unpacker:    unpackGZip,
		HeaderCheck: isGZip,
		MagicBytes:  magicBytesGZip,
	},
	fileExtensionTgz: {
		Unpacker:    unpackGZip,
		HeaderCheck: isGZip,
		MagicBytes:  magicBytesGZip,
	},
	fileExtensionXz: {
		Unpacker:    unpackXz,
		HeaderCheck: isXz,
		MagicBytes:  magicBytesXz,
	},
	fileExtensionZip: {
		Unpacker:    unpackZip,
		HeaderCheck: isZip,
		MagicBytes:  magicBytesZip,
	},
	fileExtensionZlib: {
		Unpacker:    unpackZlib,
		HeaderCheck: isZlib,
		MagicBytes:  magicBytesZlib,
	},
	fileExtensionZstd: {
		Unpacker:    unpackZstd,
		HeaderCheck: isZstd,
		MagicBytes:  magicBytesZstd,
	},
}

// maxHeaderLength is the maximum header length of all unpackers
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, u := range availableUnpackers {
		needs := u.Offset
		for _, mb := range u.MagicBytes {
			if len(mb)+u.Offset > needs {
				needs = len(mb) + u.Offset
			}
		}
		if needs > maxHeaderLength {
			maxHeaderLength = needs
		}
	}
}

// matchExtension matches name against the configured archive extensions with
// the longest ".<ext>" suffix winning. The match is case-sensitive.
func matchExtension(name string, extensions []string) (string, bool) {
	var best string
	for _, ext := range extensions {
		if !strings.HasSuffix(name, "."+ext) {
			continue
		}
		if len(ext) > len(best) {
			best = ext
		}
	}
	return best, best != ""
}

// unpackArchive verifies the header of src against the magic bytes for ext
// and extracts the contents to dst. It returns [ErrUnsupportedArchiveType]
// if no unpacker is registered for ext.
func unpackArchive(ctx context.Context, t Target, dst string, src io.Reader, ext string, cfg *Config) error {
	u, ok := availableUnpackers[ext]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedArchiveType, ext)
	}

	// peek the header to verify the file content matches its extension
	header, src, err := peekHeader(src)
	if err != nil {
		return fmt.Errorf("cannot read header: %w", err)
	}
	if u.HeaderCheck != nil && !u.HeaderCheck(header) {
		return fmt.Errorf("header does not match %s archive format", ext)
	}

	return u.Unpacker(ctx, t, dst, src, cfg)
}

// peekHeader returns the first maxHeaderLength bytes of src without
// consuming them. Inputs that support random access are peeked in place,
// everything else is wrapped in a headerReader.
func peekHeader(src io.Reader) ([]byte, io.Reader, error) {
	if ra, ok := src.(io.ReaderAt); ok {
		header := make([]byte, maxHeaderLength)
		n, err := ra.ReadAt(header, 0)
		if err != nil && err != io.EOF {
			return nil, src, err
		}
		return header[:n], src, nil
	}

	hr, err := newHeaderReader(src, maxHeaderLength)
	if err != nil {
		return nil, src, err
	}
	return hr.PeekHeader(), hr, nil
}

// matchesMagicBytes checks if data matches any of the given magic byte
// sequences at the given offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	// check all possible magic bytes until match is found
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		// check for byte match
		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}

	// no match found
	return false
}

// seekerReaderAt combines the io.ReaderAt and io.Seeker interfaces
type seekerReaderAt interface {
	io.ReaderAt
	io.Seeker
}

// readerToReaderAtSeeker ensures random access on r. Inputs that already
// support it are passed through, everything else is cached in memory or in a
// temporary file, depending on the configuration. The returned cleanup
// function releases the cache and must be called after extraction.
func readerToReaderAtSeeker(c *Config, r io.Reader) (seekerReaderAt, func(), error) {
	noop := func() {}

	if s, ok := r.(seekerReaderAt); ok {
		return s, noop, nil
	}

	// limit reader
	ler := newLimitErrorReader(r, c.MaxInputSize())

	// check how to cache
	if c.CacheInMemory() {
		b, err := io.ReadAll(ler)
		if err != nil {
			return nil, noop, fmt.Errorf("cannot read all from reader: %w", err)
		}
		return bytes.NewReader(b), noop, nil
	}

	// create temp file
	tmpFile, err := os.CreateTemp("", "sweep-*")
	if err != nil {
		return nil, noop, err
	}
	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}

	// copy reader to temp file
	if _, err := io.Copy(tmpFile, ler); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("cannot copy reader to file: %w", err)
	}

	// seek to start
	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, noop, err
	}

	return tmpFile, cleanup, nil
}
