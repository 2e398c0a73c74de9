package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/khanhnv2901/seca-probe/internal/checker"
	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-probe/internal/shared/errors"
	"github.com/khanhnv2901/seca-probe/internal/shared/security"
	"gopkg.in/yaml.v3"
)

const (
	jsonPrefix = ""
	jsonIndent = "  "
)

// OutputFormat selects the encoding of the results file.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat accepts json, yaml or yml in any case.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (use json or yaml)", sharedErrors.ErrUnsupportedFormat, value)
}

// CombinedOutput is the document written by `seca-probe all`.
type CombinedOutput struct {
	TLS  []checker.TLSRecord  `json:"tls" yaml:"tls"`
	HTTP []checker.HTTPRecord `json:"http" yaml:"http"`
}

func tlsRecords(results []checker.TLSResult) []checker.TLSRecord {
	records := make([]checker.TLSRecord, 0, len(results))
	for _, res := range results {
		records = append(records, res.Record())
	}
	return records
}

func httpRecords(results []checker.HTTPResult) []checker.HTTPRecord {
	records := make([]checker.HTTPRecord, 0, len(results))
	for _, res := range results {
		records = append(records, res.Record())
	}
	return records
}

// encodeOutput writes v to w in the requested format.
func encodeOutput(w io.Writer, format OutputFormat, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		b, err := json.MarshalIndent(v, jsonPrefix, jsonIndent)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = w.Write(append(b, '\n'))
		return err
	}
	return fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedFormat, format)
}

// resolveOutputPath places relative paths under the results directory and
// rejects any that would escape it. Absolute paths are used as given.
func resolveOutputPath(baseDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	return security.ResolveWithin(baseDir, name)
}

// writeOutputFile encodes v and writes it to the resolved output path,
// creating parent directories as needed.
func writeOutputFile(baseDir, name string, format OutputFormat, v any) (string, error) {
	path, err := resolveOutputPath(baseDir, name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := encodeOutput(&buf, format, v); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), consts.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), consts.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return path, nil
}
