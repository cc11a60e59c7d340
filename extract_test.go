// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckPatterns(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
		wantErr  bool
	}{
		{"no patterns", nil, "anything", true, false},
		{"match", []string{"*.txt"}, "file.txt", true, false},
		{"no match", []string{"*.txt"}, "file.log", false, false},
		{"second pattern matches", []string{"*.log", "*.txt"}, "file.txt", true, false},
		{"invalid pattern", []string{"[invalid"}, "file.txt", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkPatterns(tt.patterns, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkPatterns() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("checkPatterns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	cfg := NewConfig()
	td := &TelemetryData{}
	cause := errors.New("cause")

	err := handleError(cfg, td, "context message", cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "context message") {
		t.Errorf("expected context message in error, got %v", err)
	}
	if td.ExtractionErrors != 1 {
		t.Errorf("ExtractionErrors = %d, want 1", td.ExtractionErrors)
	}
	if td.LastExtractionError != err {
		t.Errorf("LastExtractionError not recorded")
	}
}

func TestSrcName(t *testing.T) {
	// readers that are not files have no name
	if got := srcName(bytes.NewReader(nil)); got != "" {
		t.Errorf("srcName(bytes.Reader) = %q, want empty", got)
	}

	path := filepath.Join(t.TempDir(), "named.zip")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := srcName(f); got != "named.zip" {
		t.Errorf("srcName(file) = %q, want %q", got, "named.zip")
	}
}
