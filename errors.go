// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import "errors"

var (
	// ErrNoArchives is returned by [Run] if the swept directory contains no
	// file matching the configured archive extensions. It marks the
	// distinguished "nothing to do" outcome, which is not a failure.
	ErrNoArchives = errors.New("no archives found")

	// ErrUnsupportedArchiveType is returned if no unpacker is registered for
	// a matched file extension.
	ErrUnsupportedArchiveType = errors.New("archive type not supported")

	// ErrMaxFilesExceeded is returned if an archive contains more entries
	// than configured in [Config.MaxFiles].
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded is returned if the extracted content
	// exceeds [Config.MaxExtractionSize].
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrPathTraversal is returned for entry paths that escape the sweep
	// directory, if [Config.DenyPathTraversal] is enabled.
	ErrPathTraversal = errors.New("path traversal detected")
)
