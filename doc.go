// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package sweep discovers archive files in a directory, extracts each one
// into that directory and removes the original archive after successful
// extraction.
//
// Discovery matches file names against a configurable set of archive
// extensions (case-sensitive, [Config.ArchiveExtensions]) and processes the
// matches strictly sequentially in ascending lexicographic order. Extraction
// preserves the relative entry paths stored in the archive. Any extraction
// or filesystem error aborts the run at the point it occurs; an archive
// whose extraction failed is never deleted.
//
// Configuration is done using the [Config] option pattern. Telemetry data
// about each processed archive is captured during extraction and emitted
// through the configured [TelemetryHook].
package sweep
