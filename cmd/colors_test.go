package cmd

import (
	"testing"

	"github.com/fatih/color"
)

func TestStatusSeverity(t *testing.T) {
	tests := []struct {
		status string
		want   severity
	}{
		{statusOK, severityOK},
		{"ok", severityOK},
		{statusNoFinalResponse, severityInfo},
		{statusWeakProtocol, severityWarn},
		{statusWeakProtocol + statusSeparator + statusWeakCipher, severityWarn},
		{statusNoFinalResponse + statusSeparator + statusHTTPSDowngrade, severityWarn},
		{statusError, severityError},
		{"pending", severityWarn},
	}

	for _, tt := range tests {
		if got := statusSeverity(tt.status); got != tt.want {
			t.Errorf("statusSeverity(%q) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestFormatStatusWithColor(t *testing.T) {
	original := color.NoColor
	t.Cleanup(func() {
		color.NoColor = original
	})

	color.NoColor = true
	for _, status := range []string{statusOK, statusWeakProtocol, statusNoFinalResponse, statusError} {
		if got := formatStatusWithColor(status); got != status {
			t.Fatalf("formatStatusWithColor(%q) = %q with colour disabled", status, got)
		}
	}

	color.NoColor = false
	tests := []struct {
		status string
		want   string
	}{
		{statusOK, colorSuccess(statusOK)},
		{statusNoFinalResponse, colorInfo(statusNoFinalResponse)},
		{statusWeakProtocol, colorWarn(statusWeakProtocol)},
		{statusError, colorError(statusError)},
	}
	for _, tt := range tests {
		if got := formatStatusWithColor(tt.status); got != tt.want {
			t.Errorf("formatStatusWithColor(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
