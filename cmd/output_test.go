package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanhnv2901/seca-probe/internal/checker"
	sharedErrors "github.com/khanhnv2901/seca-probe/internal/shared/errors"
	"github.com/khanhnv2901/seca-probe/internal/shared/security"
	"gopkg.in/yaml.v3"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in   string
		want OutputFormat
	}{
		{"", FormatJSON},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"yaml", FormatYAML},
		{" yml ", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if err != nil {
			t.Fatalf("ParseOutputFormat(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseOutputFormat("csv"); !errors.Is(err, sharedErrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func sampleTLSResults() []checker.TLSResult {
	bits := 256
	return []checker.TLSResult{
		{
			Target:      checker.TLSTarget{Raw: "example.com", Host: "example.com", Port: 443},
			Observation: &checker.TLSObservation{Version: "TLSv1.3", CipherName: "TLS_AES_256_GCM_SHA384", CipherProtocol: "TLSv1.3", CipherBits: &bits},
			Finding:     &checker.TLSFinding{},
		},
		{
			Target: checker.TLSTarget{Raw: "bad:port"},
			Error:  `invalid target "bad:port": invalid port`,
		},
	}
}

func TestEncodeOutput_JSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := encodeOutput(&buf, FormatJSON, tlsRecords(sampleTLSResults())); err != nil {
		t.Fatalf("encodeOutput returned error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}

	wantKeys := []string{"target", "hostname", "port", "tls_version", "cipher_name", "cipher_protocol", "cipher_bits", "weak_protocol", "weak_cipher", "error"}
	for _, key := range wantKeys {
		if _, ok := decoded[0][key]; !ok {
			t.Errorf("missing key %q in %v", key, decoded[0])
		}
	}
	if decoded[0]["error"] != nil {
		t.Errorf("expected null error for success, got %v", decoded[0]["error"])
	}
	if decoded[1]["tls_version"] != nil {
		t.Errorf("expected null tls_version for error, got %v", decoded[1]["tls_version"])
	}
}

func TestEncodeOutput_YAMLCombined(t *testing.T) {
	doc := CombinedOutput{
		TLS: tlsRecords(sampleTLSResults()),
		HTTP: httpRecords([]checker.HTTPResult{{
			Target: checker.HTTPTarget{Raw: "ftp://x"},
			Error:  "invalid target",
		}}),
	}

	var buf bytes.Buffer
	if err := encodeOutput(&buf, FormatYAML, doc); err != nil {
		t.Fatalf("encodeOutput returned error: %v", err)
	}

	var decoded map[string][]map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded["tls"]) != 2 || len(decoded["http"]) != 1 {
		t.Fatalf("unexpected document shape: %v", decoded)
	}
	if decoded["tls"][0]["cipher_bits"] != 256 {
		t.Errorf("cipher_bits = %v", decoded["tls"][0]["cipher_bits"])
	}
	if !strings.Contains(buf.String(), "missing_required_headers: []") {
		t.Errorf("expected empty list rendering, got:\n%s", buf.String())
	}
}

func TestWriteOutputFile(t *testing.T) {
	base := t.TempDir()

	path, err := writeOutputFile(base, filepath.Join("runs", "tls.json"), FormatJSON, tlsRecords(sampleTLSResults()))
	if err != nil {
		t.Fatalf("writeOutputFile returned error: %v", err)
	}
	if path != filepath.Join(base, "runs", "tls.json") {
		t.Fatalf("unexpected output path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"hostname": "example.com"`) {
		t.Fatalf("unexpected file content:\n%s", data)
	}
}

func TestWriteOutputFile_RejectsEscape(t *testing.T) {
	_, err := writeOutputFile(t.TempDir(), "../escape.json", FormatJSON, []string{})
	if !errors.Is(err, security.ErrPathEscape) {
		t.Fatalf("expected ErrPathEscape, got %v", err)
	}
}

func TestWriteOutputFile_AbsolutePath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "abs.yaml")
	path, err := writeOutputFile(t.TempDir(), target, FormatYAML, []string{"a"})
	if err != nil {
		t.Fatalf("writeOutputFile returned error: %v", err)
	}
	if path != target {
		t.Fatalf("expected %s, got %s", target, path)
	}
}
