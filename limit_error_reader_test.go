// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestLimitErrorReader(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		input   string
		expectN int
		wantErr bool
	}{
		{"under limit", 10, "12345", 5, false},
		{"at limit", 5, "12345", 5, false},
		{"over limit", 4, "12345", 4, false},
		{"unlimited", -1, "12345", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLimitErrorReader(strings.NewReader(tt.input), tt.limit)

			buf := make([]byte, len(tt.input))
			n, err := l.Read(buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, tt.wantErr)
			}
			if n != tt.expectN {
				t.Errorf("Read() = %v, want %v", n, tt.expectN)
			}
			if l.ReadBytes() != tt.expectN {
				t.Errorf("ReadBytes() = %v, want %v", l.ReadBytes(), tt.expectN)
			}
		})
	}
}

func TestLimitErrorReaderExhausted(t *testing.T) {
	// a read past the limit errors, even if the source has more data
	l := newLimitErrorReader(strings.NewReader("123456"), 3)

	buf := make([]byte, 6)
	if n, err := l.Read(buf); err != nil || n != 3 {
		t.Fatalf("Read() = (%d, %v), want (3, nil)", n, err)
	}
	if _, err := l.Read(buf); err == nil {
		t.Fatalf("expected limit error on second read")
	}
}

func TestLimitErrorWriter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int64
		wantN   int64
		wantErr bool
	}{
		{"below limit", "1234", 5, 4, false},
		{"at limit", "12345", 5, 5, false},
		{"above limit", "123456", 5, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := io.Copy(newLimitErrorWriter(&buf, tt.limit), strings.NewReader(tt.input))
			if tt.wantErr != (err != nil) {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if n != tt.wantN {
				t.Fatalf("wrote %d bytes, want %d", n, tt.wantN)
			}
		})
	}
}

func TestLimitWriterUnlimited(t *testing.T) {
	var buf bytes.Buffer
	if w := limitWriter(&buf, -1); w != &buf {
		t.Fatalf("expected unlimited writer to be passed through")
	}
}
