package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/khanhnv2901/seca-probe/internal/checker"
)

func disableColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})
}

func TestPrintTLSConsole(t *testing.T) {
	disableColor(t)

	results := append(sampleTLSResults(), checker.TLSResult{
		Target:      checker.TLSTarget{Raw: "legacy.example.com:8443", Host: "legacy.example.com", Port: 8443},
		Observation: &checker.TLSObservation{Version: "TLSv1.2", CipherName: "TLS_RSA_WITH_3DES_EDE_CBC_SHA"},
		Finding:     &checker.TLSFinding{WeakCipher: true},
	})

	var buf bytes.Buffer
	printTLSConsole(&buf, results)
	out := buf.String()

	for _, want := range []string{
		"[example.com] TLS=TLSv1.3 Cipher=TLS_AES_256_GCM_SHA384 Bits=256 -> OK",
		`[bad:port] ERROR: invalid target "bad:port": invalid port`,
		"[legacy.example.com:8443] TLS=TLSv1.2 Cipher=TLS_RSA_WITH_3DES_EDE_CBC_SHA Bits=N/A -> WEAK_CIPHER",
		"Summary: 3 target(s), 1 with findings, 1 error(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintHTTPConsole(t *testing.T) {
	disableColor(t)

	results := []checker.HTTPResult{
		{
			Target: checker.HTTPTarget{Raw: "example.com", URL: "https://example.com"},
			Observation: &checker.HTTPObservation{
				RedirectChain: []checker.Hop{
					{URL: "https://example.com", StatusCode: 301},
					{URL: "http://example.com/", StatusCode: 200},
				},
				Terminal: &checker.TerminalResponse{URL: "http://example.com/", StatusCode: 200},
			},
			Finding: &checker.HTTPFinding{HTTPSDowngrade: true, MissingRequiredHeaders: []string{"content-security-policy"}},
		},
		{
			Target:      checker.HTTPTarget{Raw: "loop.example.com", URL: "https://loop.example.com"},
			Observation: &checker.HTTPObservation{RedirectChain: []checker.Hop{{URL: "https://loop.example.com", StatusCode: 302}}},
			Finding:     &checker.HTTPFinding{},
		},
		{
			Target: checker.HTTPTarget{Raw: "down.example.com", URL: "https://down.example.com"},
			Error:  "request https://down.example.com: connection refused",
		},
	}

	var buf bytes.Buffer
	printHTTPConsole(&buf, results)
	out := buf.String()

	for _, want := range []string{
		"[https://example.com] -> http://example.com/ (HTTP 200, scheme=http) Issues: HTTPS_DOWNGRADE, MISSING_REQUIRED_HEADERS",
		"[https://loop.example.com] -> https://loop.example.com (HTTP 302, scheme=https) Issues: NO_FINAL_RESPONSE",
		"[https://down.example.com] ERROR: request https://down.example.com: connection refused",
		"Summary: 3 target(s), 2 with findings, 1 error(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
