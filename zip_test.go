// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// zipFixtureEntry describes one entry of an in-memory zip fixture.
type zipFixtureEntry struct {
	name    string
	content string
	mode    fs.FileMode
}

// zipFixture builds a zip archive in memory.
func zipFixture(t *testing.T, entries []zipFixtureEntry) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		hdr := &zip.FileHeader{Name: entry.name}
		if entry.mode != 0 {
			hdr.SetMode(entry.mode)
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("cannot create entry %s: %s", entry.name, err)
		}
		if _, err := w.Write([]byte(entry.content)); err != nil {
			t.Fatalf("cannot write entry %s: %s", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cannot close zip writer: %s", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestUnpackZip(t *testing.T) {
	testDir := t.TempDir()
	src := zipFixture(t, []zipFixtureEntry{
		{name: "dir/", mode: fs.ModeDir | 0755},
		{name: "dir/file.txt", content: "hello"},
		{name: "root.txt", content: "world"},
	})

	var td *TelemetryData
	cfg := NewConfig(WithTelemetryHook(func(ctx context.Context, d *TelemetryData) {
		td = d
	}))

	if err := unpackZip(context.Background(), NewTargetDisk(), testDir, src, cfg); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	got, err := os.ReadFile(filepath.Join(testDir, "dir", "file.txt"))
	if err != nil {
		t.Fatalf("entry not extracted: %s", err)
	}
	if string(got) != "hello" {
		t.Fatalf("content mismatch: got %q", got)
	}

	if td == nil {
		t.Fatalf("telemetry hook not called")
	}
	if td.ExtractedType != "zip" || td.ExtractedFiles != 2 || td.ExtractedDirs != 1 {
		t.Fatalf("unexpected telemetry: %s", td)
	}
}

func TestUnpackZipSymlink(t *testing.T) {
	testDir := t.TempDir()
	entries := []zipFixtureEntry{
		{name: "target.txt", content: "data"},
		{name: "link", content: "target.txt", mode: fs.ModeSymlink | 0777},
	}

	if err := unpackZip(context.Background(), NewTargetDisk(), testDir, zipFixture(t, entries), NewConfig()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	got, err := os.Readlink(filepath.Join(testDir, "link"))
	if err != nil {
		t.Fatalf("symlink not extracted: %s", err)
	}
	if got != "target.txt" {
		t.Fatalf("link target: got %q, want %q", got, "target.txt")
	}

	// denied when configured
	cfg := NewConfig(WithDenySymlinkExtraction(true))
	if err := unpackZip(context.Background(), NewTargetDisk(), t.TempDir(), zipFixture(t, entries), cfg); err == nil {
		t.Fatalf("expected error with symlink extraction denied")
	}
}

func TestUnpackZipMaxFiles(t *testing.T) {
	src := zipFixture(t, []zipFixtureEntry{
		{name: "a.txt", content: "a"},
		{name: "b.txt", content: "b"},
		{name: "c.txt", content: "c"},
	})

	cfg := NewConfig(WithMaxFiles(2))
	err := unpackZip(context.Background(), NewTargetDisk(), t.TempDir(), src, cfg)
	if !errors.Is(err, ErrMaxFilesExceeded) {
		t.Fatalf("expected ErrMaxFilesExceeded, got %v", err)
	}
}

func TestUnpackZipMaxExtractionSize(t *testing.T) {
	src := zipFixture(t, []zipFixtureEntry{
		{name: "big.txt", content: "content larger than the limit"},
	})

	cfg := NewConfig(WithMaxExtractionSize(4))
	err := unpackZip(context.Background(), NewTargetDisk(), t.TempDir(), src, cfg)
	if !errors.Is(err, ErrMaxExtractionSizeExceeded) {
		t.Fatalf("expected ErrMaxExtractionSizeExceeded, got %v", err)
	}
}

func TestUnpackZipMaxInputSize(t *testing.T) {
	src := zipFixture(t, []zipFixtureEntry{{name: "a.txt", content: "a"}})

	cfg := NewConfig(WithMaxInputSize(4))
	if err := unpackZip(context.Background(), NewTargetDisk(), t.TempDir(), src, cfg); err == nil {
		t.Fatalf("expected input size error")
	}
}

func TestUnpackZipPatterns(t *testing.T) {
	testDir := t.TempDir()
	src := zipFixture(t, []zipFixtureEntry{
		{name: "keep.txt", content: "keep"},
		{name: "skip.log", content: "skip"},
	})

	cfg := NewConfig(WithPatterns("*.txt"))
	if err := unpackZip(context.Background(), NewTargetDisk(), testDir, src, cfg); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, err := os.Stat(filepath.Join(testDir, "keep.txt")); err != nil {
		t.Fatalf("matching entry not extracted: %s", err)
	}
	if _, err := os.Stat(filepath.Join(testDir, "skip.log")); !os.IsNotExist(err) {
		t.Fatalf("non-matching entry extracted")
	}
}

func TestUnpackZipNoOverwrite(t *testing.T) {
	testDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(testDir, "existing.txt"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	src := zipFixture(t, []zipFixtureEntry{{name: "existing.txt", content: "new"}})

	// refused without overwrite
	cfg := NewConfig(WithOverwrite(false))
	if err := unpackZip(context.Background(), NewTargetDisk(), testDir, src, cfg); err == nil {
		t.Fatalf("expected collision error without overwrite")
	}

	// overwritten by default
	if _, err := src.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := unpackZip(context.Background(), NewTargetDisk(), testDir, src, NewConfig()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	got, err := os.ReadFile(filepath.Join(testDir, "existing.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("content after overwrite: got %q, want %q", got, "new")
	}
}

func TestUnpackZipCanceledContext(t *testing.T) {
	src := zipFixture(t, []zipFixtureEntry{{name: "a.txt", content: "a"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := unpackZip(ctx, NewTargetDisk(), t.TempDir(), src, NewConfig()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
