// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTelemetryDataMarshalJSON(t *testing.T) {
	td := TelemetryData{
		ArchiveName:         "bundle.zip",
		ExtractedType:       "zip",
		ExtractedFiles:      3,
		ExtractionSize:      1024,
		ExtractionErrors:    1,
		LastExtractionError: errors.New("bad entry"),
	}

	b, err := json.Marshal(td)
	if err != nil {
		t.Fatalf("cannot marshal: %s", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("cannot unmarshal: %s", err)
	}

	if decoded["archive_name"] != "bundle.zip" {
		t.Errorf("archive_name = %v", decoded["archive_name"])
	}
	if decoded["extracted_type"] != "zip" {
		t.Errorf("extracted_type = %v", decoded["extracted_type"])
	}

	// the error marshals as its message, not as an object
	if decoded["last_extraction_error"] != "bad entry" {
		t.Errorf("last_extraction_error = %v", decoded["last_extraction_error"])
	}
}

func TestTelemetryDataString(t *testing.T) {
	td := TelemetryData{ArchiveName: "a.zip"}
	if s := td.String(); !strings.Contains(s, `"archive_name":"a.zip"`) {
		t.Errorf("String() = %s", s)
	}

	// no error renders as an empty string
	if s := td.String(); !strings.Contains(s, `"last_extraction_error":""`) {
		t.Errorf("String() = %s", s)
	}
}
