package checker

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
)

// headerLevel says how a missing header is reported.
type headerLevel int

const (
	headerRequired headerLevel = iota
	headerOptional
)

// securityHeaderRule binds a header name to its presence level and the
// heuristic that turns its value into notes. Check receives "" when the header
// is absent or empty.
type securityHeaderRule struct {
	Name  string
	Level headerLevel
	Check func(value string) []string
}

// securityHeaderRules is evaluated in order; notes follow the same order.
var securityHeaderRules = []securityHeaderRule{
	{Name: "strict-transport-security", Level: headerRequired, Check: checkHSTS},
	{Name: "content-security-policy", Level: headerRequired, Check: checkCSP},
	{Name: "x-content-type-options", Level: headerRequired, Check: checkXContentTypeOptions},
	{Name: "x-frame-options", Level: headerRequired, Check: checkXFrameOptions},
	{Name: "referrer-policy", Level: headerRequired, Check: checkReferrerPolicy},
	{Name: "permissions-policy", Level: headerOptional, Check: checkPermissionsPolicy},
	{Name: "x-xss-protection", Level: headerOptional, Check: checkXXSSProtection},
}

var allowedFrameOptions = map[string]struct{}{
	"deny":       {},
	"sameorigin": {},
}

var weakReferrerPolicies = map[string]struct{}{
	"no-referrer-when-downgrade": {},
	"unsafe-url":                 {},
}

// ClassifyHTTP derives the finding for an observation. Headers are only
// evaluated when the chain reached a non-redirect terminal response; the
// downgrade flag is computed for any non-empty chain.
func ClassifyHTTP(obs *HTTPObservation) HTTPFinding {
	finding := HTTPFinding{
		MissingRequiredHeaders: []string{},
		MissingOptionalHeaders: []string{},
		Notes:                  []string{},
	}
	if obs == nil {
		return finding
	}

	finding.HTTPSDowngrade = isHTTPSDowngrade(obs)

	if obs.Terminal == nil || isRedirectStatus(obs.Terminal.StatusCode) {
		return finding
	}

	finding.MissingRequiredHeaders, finding.MissingOptionalHeaders, finding.Notes = AnalyzeSecurityHeaders(obs.Terminal.Headers)
	return finding
}

// AnalyzeSecurityHeaders checks a lowercased header map and returns the
// missing required headers, the missing optional headers and the notes.
func AnalyzeSecurityHeaders(headers map[string]string) (missingRequired, missingOptional, notes []string) {
	missingRequired = []string{}
	missingOptional = []string{}
	notes = []string{}

	lowered := make(map[string]string, len(headers))
	for name, value := range headers {
		lowered[strings.ToLower(name)] = value
	}

	for _, rule := range securityHeaderRules {
		value, present := lowered[rule.Name]
		if !present {
			if rule.Level == headerRequired {
				missingRequired = append(missingRequired, rule.Name)
			} else {
				missingOptional = append(missingOptional, rule.Name)
			}
		}
		notes = append(notes, rule.Check(strings.TrimSpace(value))...)
	}

	return missingRequired, missingOptional, notes
}

// checkHSTS validates the Strict-Transport-Security header. Only a directive
// named exactly max-age counts; an unparsable value produces a note, never an
// error.
func checkHSTS(value string) []string {
	if value == "" {
		return []string{"HSTS missing (for HTTPS site)"}
	}

	for _, directive := range strings.Split(value, ";") {
		name, raw, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !strings.EqualFold(strings.TrimSpace(name), "max-age") {
			continue
		}
		raw = strings.Trim(strings.TrimSpace(raw), `"`)
		if !ok || raw == "" {
			return []string{"Could not parse HSTS max-age (no value)"}
		}
		maxAge, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || maxAge < 0 {
			return []string{fmt.Sprintf("Could not parse HSTS max-age %q", raw)}
		}
		if maxAge < consts.HSTSMinMaxAge {
			return []string{fmt.Sprintf("HSTS max-age %d is below 180 days (%d seconds); consider increasing", maxAge, consts.HSTSMinMaxAge)}
		}
		return nil
	}
	return []string{"HSTS present but max-age missing"}
}

func checkCSP(value string) []string {
	if value == "" {
		return []string{"Content-Security-Policy header missing"}
	}
	return nil
}

func checkXContentTypeOptions(value string) []string {
	if value == "" {
		return []string{"X-Content-Type-Options missing"}
	}
	if !strings.EqualFold(value, "nosniff") {
		return []string{fmt.Sprintf("X-Content-Type-Options is '%s', expected 'nosniff'", value)}
	}
	return nil
}

func checkXFrameOptions(value string) []string {
	if value == "" {
		return []string{"X-Frame-Options missing (consider SAMEORIGIN or DENY)"}
	}
	if _, ok := allowedFrameOptions[strings.ToLower(value)]; !ok {
		return []string{fmt.Sprintf("X-Frame-Options value '%s' is non-standard; prefer DENY or SAMEORIGIN", value)}
	}
	return nil
}

func checkReferrerPolicy(value string) []string {
	if value == "" {
		return []string{"Referrer-Policy missing (consider 'strict-origin-when-cross-origin')"}
	}
	if _, weak := weakReferrerPolicies[strings.ToLower(value)]; weak {
		return []string{fmt.Sprintf("Referrer-Policy '%s' is weaker than recommended", value)}
	}
	return nil
}

func checkPermissionsPolicy(value string) []string {
	if value == "" {
		return []string{"Permissions-Policy missing (not critical but recommended)"}
	}
	return nil
}

// checkXXSSProtection only reports the legacy header; it never fails a target.
func checkXXSSProtection(value string) []string {
	if value == "" {
		return nil
	}
	return []string{fmt.Sprintf("X-XSS-Protection present (legacy): '%s'", value)}
}

func isHTTPSDowngrade(obs *HTTPObservation) bool {
	first, ok := obs.First()
	if !ok {
		return false
	}
	last, _ := obs.Last()
	return urlScheme(first.URL) == "https" && urlScheme(last.URL) == "http"
}

func urlScheme(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Scheme)
}

func isRedirectStatus(code int) bool {
	return code >= 300 && code < 400
}
