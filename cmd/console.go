package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/khanhnv2901/seca-probe/internal/checker"
)

const notAvailable = "N/A"

// printTLSConsole renders one line per TLS result, followed by a summary.
func printTLSConsole(w io.Writer, results []checker.TLSResult) {
	fmt.Fprintln(w, colorInfo("TLS Cipher Audit Results"))
	fmt.Fprintln(w, "------------------------")

	flagged, failed := 0, 0
	for _, res := range results {
		rec := res.Record()
		if rec.Error != nil {
			failed++
			fmt.Fprintf(w, "[%s] %s: %s\n", rec.Target, formatStatusWithColor(statusError), *rec.Error)
			continue
		}

		var flags []string
		if rec.WeakProtocol {
			flags = append(flags, statusWeakProtocol)
		}
		if rec.WeakCipher {
			flags = append(flags, statusWeakCipher)
		}
		status := statusOK
		if len(flags) > 0 {
			flagged++
			status = strings.Join(flags, statusSeparator)
		}

		bits := notAvailable
		if rec.CipherBits != nil {
			bits = strconv.Itoa(*rec.CipherBits)
		}
		fmt.Fprintf(w, "[%s] TLS=%s Cipher=%s Bits=%s -> %s\n",
			rec.Target, valueOrNA(rec.TLSVersion), valueOrNA(rec.CipherName), bits, formatStatusWithColor(status))
	}

	printSummary(w, len(results), flagged, failed)
}

// printHTTPConsole renders one line per HTTP result, followed by a summary.
func printHTTPConsole(w io.Writer, results []checker.HTTPResult) {
	fmt.Fprintln(w, colorInfo("Weak Configuration Scan Results"))
	fmt.Fprintln(w, "--------------------------------")

	flagged, failed := 0, 0
	for _, res := range results {
		rec := res.Record()
		if rec.Error != nil {
			failed++
			fmt.Fprintf(w, "[%s] %s: %s\n", rec.URL, formatStatusWithColor(statusError), *rec.Error)
			continue
		}

		var issues []string
		if rec.HTTPSDowngrade {
			issues = append(issues, statusHTTPSDowngrade)
		}
		if len(rec.MissingRequiredHeaders) > 0 {
			issues = append(issues, statusMissingRequired)
		}
		if res.Observation.Truncated() {
			issues = append(issues, statusNoFinalResponse)
		}
		status := statusOK
		if len(issues) > 0 {
			flagged++
			status = strings.Join(issues, statusSeparator)
		}

		code := notAvailable
		if rec.StatusCode != nil {
			code = strconv.Itoa(*rec.StatusCode)
		}
		fmt.Fprintf(w, "[%s] -> %s (HTTP %s, scheme=%s) Issues: %s\n",
			rec.URL, valueOrNA(rec.FinalURL), code, valueOrNA(rec.Scheme), formatStatusWithColor(status))
	}

	printSummary(w, len(results), flagged, failed)
}

func printSummary(w io.Writer, total, flagged, failed int) {
	fmt.Fprintf(w, "Summary: %d target(s), %d with findings, %d error(s)\n", total, flagged, failed)
}

func valueOrNA(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}
