// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// tarFixtureEntry describes one entry of an in-memory tar fixture.
type tarFixtureEntry struct {
	name     string
	content  string
	linkname string
	typeflag byte
	mode     int64
	modTime  time.Time
}

// tarFixture builds a tar archive in memory.
func tarFixture(t *testing.T, entries []tarFixtureEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, entry := range entries {
		// global headers only allow name, typeflag and PAX records
		if entry.typeflag == tar.TypeXGlobalHeader {
			hdr := &tar.Header{
				Name:       entry.name,
				Typeflag:   entry.typeflag,
				PAXRecords: map[string]string{"comment": "fixture"},
			}
			if err := tw.WriteHeader(hdr); err != nil {
				t.Fatalf("cannot write global header: %s", err)
			}
			continue
		}

		mode := entry.mode
		if mode == 0 {
			mode = 0644
		}
		hdr := &tar.Header{
			Name:     entry.name,
			Typeflag: entry.typeflag,
			Linkname: entry.linkname,
			Mode:     mode,
			Size:     int64(len(entry.content)),
			ModTime:  entry.modTime,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("cannot write header %s: %s", entry.name, err)
		}
		if len(entry.content) > 0 {
			if _, err := tw.Write([]byte(entry.content)); err != nil {
				t.Fatalf("cannot write entry %s: %s", entry.name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("cannot close tar writer: %s", err)
	}
	return buf.Bytes()
}

func TestUnpackTar(t *testing.T) {
	testDir := t.TempDir()
	src := tarFixture(t, []tarFixtureEntry{
		{name: "dir", typeflag: tar.TypeDir, mode: 0755},
		{name: "dir/file.txt", content: "hello", typeflag: tar.TypeReg},
		{name: "link", linkname: "dir/file.txt", typeflag: tar.TypeSymlink, mode: 0777},
	})

	if err := unpackTar(context.Background(), NewTargetDisk(), testDir, bytes.NewReader(src), NewConfig()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	got, err := os.ReadFile(filepath.Join(testDir, "dir", "file.txt"))
	if err != nil {
		t.Fatalf("entry not extracted: %s", err)
	}
	if string(got) != "hello" {
		t.Fatalf("content mismatch: got %q", got)
	}

	link, err := os.Readlink(filepath.Join(testDir, "link"))
	if err != nil {
		t.Fatalf("symlink not extracted: %s", err)
	}
	if link != "dir/file.txt" {
		t.Fatalf("link target: got %q", link)
	}
}

func TestUnpackTarRestoresModTime(t *testing.T) {
	testDir := t.TempDir()
	want := time.Date(2019, 6, 7, 8, 9, 10, 0, time.UTC)
	src := tarFixture(t, []tarFixtureEntry{
		{name: "old.txt", content: "x", typeflag: tar.TypeReg, modTime: want},
	})

	if err := unpackTar(context.Background(), NewTargetDisk(), testDir, bytes.NewReader(src), NewConfig()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	stat, err := os.Stat(filepath.Join(testDir, "old.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !stat.ModTime().Equal(want) {
		t.Fatalf("mod time: got %v, want %v", stat.ModTime(), want)
	}
}

func TestUnpackTarDropFileAttributes(t *testing.T) {
	testDir := t.TempDir()
	old := time.Date(2019, 6, 7, 8, 9, 10, 0, time.UTC)
	src := tarFixture(t, []tarFixtureEntry{
		{name: "fresh.txt", content: "x", typeflag: tar.TypeReg, modTime: old},
	})

	cfg := NewConfig(WithDropFileAttributes(true))
	if err := unpackTar(context.Background(), NewTargetDisk(), testDir, bytes.NewReader(src), cfg); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	stat, err := os.Stat(filepath.Join(testDir, "fresh.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if stat.ModTime().Equal(old) {
		t.Fatalf("mod time restored despite dropped attributes")
	}
}

func TestUnpackTarSkipsPaxGlobalHeader(t *testing.T) {
	testDir := t.TempDir()
	src := tarFixture(t, []tarFixtureEntry{
		{name: "pax_global_header", typeflag: tar.TypeXGlobalHeader},
		{name: "file.txt", content: "x", typeflag: tar.TypeReg},
	})

	if err := unpackTar(context.Background(), NewTargetDisk(), testDir, bytes.NewReader(src), NewConfig()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := os.Stat(filepath.Join(testDir, "file.txt")); err != nil {
		t.Fatalf("entry not extracted: %s", err)
	}
}

func TestUnpackTarCorruptInput(t *testing.T) {
	src := []byte("this is not a tar archive and far too short for a header")
	if err := unpackTar(context.Background(), NewTargetDisk(), t.TempDir(), bytes.NewReader(src), NewConfig()); err == nil {
		t.Fatalf("expected error for corrupt input")
	}
}
