package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// Console status words. A flagged line joins several of them with ", ".
const (
	statusOK              = "OK"
	statusError           = "ERROR"
	statusWeakProtocol    = "WEAK_PROTOCOL"
	statusWeakCipher      = "WEAK_CIPHER"
	statusHTTPSDowngrade  = "HTTPS_DOWNGRADE"
	statusMissingRequired = "MISSING_REQUIRED_HEADERS"
	statusNoFinalResponse = "NO_FINAL_RESPONSE"
	statusSeparator       = ", "
)

type severity int

const (
	severityOK severity = iota
	severityInfo
	severityWarn
	severityError
)

var statusSeverities = map[string]severity{
	statusOK:              severityOK,
	statusNoFinalResponse: severityInfo,
	statusWeakProtocol:    severityWarn,
	statusWeakCipher:      severityWarn,
	statusHTTPSDowngrade:  severityWarn,
	statusMissingRequired: severityWarn,
	statusError:           severityError,
}

// statusSeverity returns the worst severity among the joined status words.
// Unknown words count as warnings.
func statusSeverity(status string) severity {
	worst := severityOK
	for _, word := range strings.Split(status, statusSeparator) {
		sev, ok := statusSeverities[strings.ToUpper(strings.TrimSpace(word))]
		if !ok {
			sev = severityWarn
		}
		if sev > worst {
			worst = sev
		}
	}
	return worst
}

func formatStatusWithColor(status string) string {
	switch statusSeverity(status) {
	case severityOK:
		return colorSuccess(status)
	case severityInfo:
		return colorInfo(status)
	case severityError:
		return colorError(status)
	default:
		return colorWarn(status)
	}
}
