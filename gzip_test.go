// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// gzipBytes compresses data with gzip.
func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		t.Fatalf("cannot compress: %s", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("cannot close gzip writer: %s", err)
	}
	return buf.Bytes()
}

func TestUnpackGZip(t *testing.T) {
	testDir := t.TempDir()

	// the output name is derived from the input file name
	path := filepath.Join(testDir, "note.txt.gz")
	if err := os.WriteFile(path, gzipBytes(t, []byte("plain content")), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if err := unpackGZip(context.Background(), NewTargetDisk(), testDir, src, NewConfig()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	got, err := os.ReadFile(filepath.Join(testDir, "note.txt"))
	if err != nil {
		t.Fatalf("decompressed file not created: %s", err)
	}
	if string(got) != "plain content" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestUnpackGZipUntarsTarArchive(t *testing.T) {
	testDir := t.TempDir()

	// a gzip compressed tar archive is extracted in place
	tarData := tarFixture(t, []tarFixtureEntry{
		{name: "inner.txt", content: "from tar", typeflag: tar.TypeReg},
	})
	path := filepath.Join(testDir, "bundle.tar.gz")
	if err := os.WriteFile(path, gzipBytes(t, tarData), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	var td *TelemetryData
	cfg := NewConfig(WithTelemetryHook(func(ctx context.Context, d *TelemetryData) {
		td = d
	}))

	if err := unpackGZip(context.Background(), NewTargetDisk(), testDir, src, cfg); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	got, err := os.ReadFile(filepath.Join(testDir, "inner.txt"))
	if err != nil {
		t.Fatalf("tar entry not extracted: %s", err)
	}
	if string(got) != "from tar" {
		t.Fatalf("content mismatch: got %q", got)
	}

	// the telemetry type reflects the combined format
	if td == nil || td.ExtractedType != "tar.gz" {
		t.Fatalf("unexpected telemetry: %v", td)
	}
}

func TestUnpackGZipNoUntar(t *testing.T) {
	testDir := t.TempDir()

	tarData := tarFixture(t, []tarFixtureEntry{
		{name: "inner.txt", content: "from tar", typeflag: tar.TypeReg},
	})
	path := filepath.Join(testDir, "bundle.tar.gz")
	if err := os.WriteFile(path, gzipBytes(t, tarData), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	cfg := NewConfig(WithNoUntarAfterDecompression(true))
	if err := unpackGZip(context.Background(), NewTargetDisk(), testDir, src, cfg); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	// the tar archive is written as a file, not extracted
	if _, err := os.Stat(filepath.Join(testDir, "bundle.tar")); err != nil {
		t.Fatalf("decompressed tar file not created: %s", err)
	}
	if _, err := os.Stat(filepath.Join(testDir, "inner.txt")); !os.IsNotExist(err) {
		t.Fatalf("tar entry extracted despite no-untar option")
	}
}

func TestUnpackGZipCorruptInput(t *testing.T) {
	src := bytes.NewReader([]byte{0x1f, 0x8b, 0xff, 0xff})
	if err := unpackGZip(context.Background(), NewTargetDisk(), t.TempDir(), src, NewConfig()); err == nil {
		t.Fatalf("expected error for corrupt input")
	}
}
