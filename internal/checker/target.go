package checker

import (
	"bufio"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-probe/internal/shared/errors"
	"golang.org/x/net/idna"
)

// TLSTarget is a host:port endpoint handed to the TLS probe.
type TLSTarget struct {
	Raw  string `json:"raw" yaml:"raw"`
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Address returns the dialable host:port form of the target.
func (t TLSTarget) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// HTTPTarget is a web origin handed to the HTTP probe. URL always carries an
// explicit http or https scheme.
type HTTPTarget struct {
	Raw  string `json:"raw" yaml:"raw"`
	URL  string `json:"url" yaml:"url"`
	Host string `json:"host" yaml:"host"`
}

// TargetSources lists every place targets can come from. Entries are combined
// in the order Single, List, File.
type TargetSources struct {
	Single string   // one target
	List   []string // comma-separated lists, possibly repeated
	File   string   // line-oriented file; blank lines and '#' comments ignored
}

// GatherTargets collects raw target strings from all sources, trims them and
// removes duplicates while keeping first-seen order. An empty result is the only
// batch-fatal condition and is reported as ErrNoTargets.
func GatherTargets(src TargetSources) ([]string, error) {
	var raws []string

	if single := strings.TrimSpace(src.Single); single != "" {
		raws = append(raws, single)
	}

	for _, list := range src.List {
		raws = append(raws, SplitTargetList(list)...)
	}

	if src.File != "" {
		fromFile, err := LoadTargetsFile(src.File)
		if err != nil {
			return nil, err
		}
		raws = append(raws, fromFile...)
	}

	unique := DedupeTargets(raws)
	if len(unique) == 0 {
		return nil, sharedErrors.ErrNoTargets
	}
	return unique, nil
}

// SplitTargetList splits a comma-separated list, dropping empty entries.
func SplitTargetList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadTargetsFile reads one target per line.
func LoadTargetsFile(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- operator supplied input list.
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return targets, nil
}

// DedupeTargets removes repeated entries, comparing trimmed strings and keeping
// the first occurrence.
func DedupeTargets(raws []string) []string {
	seen := make(map[string]struct{}, len(raws))
	unique := make([]string, 0, len(raws))
	for _, raw := range raws {
		key := strings.TrimSpace(raw)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	return unique
}

// ParseTLSTarget parses host[:port]. The port is taken from the last colon and
// defaults to 443. Bracketed IPv6 literals ("[::1]:8443") are accepted.
func ParseTLSTarget(raw string) (TLSTarget, error) {
	entry := strings.TrimSpace(raw)
	if entry == "" {
		return TLSTarget{Raw: entry}, invalidTarget(raw, sharedErrors.ErrEmptyTarget)
	}

	host := entry
	portStr := ""
	hasPort := false

	if strings.HasPrefix(entry, "[") {
		end := strings.Index(entry, "]")
		if end < 0 {
			return TLSTarget{Raw: entry}, invalidTarget(entry, fmt.Errorf("%w: unterminated IPv6 literal", sharedErrors.ErrInvalidHost))
		}
		host = entry[1:end]
		if rest := entry[end+1:]; rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return TLSTarget{Raw: entry}, invalidTarget(entry, fmt.Errorf("%w: unexpected %q after IPv6 literal", sharedErrors.ErrInvalidHost, rest))
			}
			portStr, hasPort = rest[1:], true
		}
	} else if i := strings.LastIndex(entry, ":"); i >= 0 {
		host, portStr, hasPort = entry[:i], entry[i+1:], true
	}

	if host == "" {
		return TLSTarget{Raw: entry}, invalidTarget(entry, sharedErrors.ErrInvalidHost)
	}

	port := consts.DefaultTLSPort
	if hasPort {
		p, err := parsePort(portStr)
		if err != nil {
			return TLSTarget{Raw: entry}, invalidTarget(entry, err)
		}
		port = p
	}

	return TLSTarget{Raw: entry, Host: host, Port: port}, nil
}

// ParseHTTPTarget normalizes a URL target, prepending https:// when no scheme
// is present.
func ParseHTTPTarget(raw string) (HTTPTarget, error) {
	entry := strings.TrimSpace(raw)
	if entry == "" {
		return HTTPTarget{Raw: entry}, invalidTarget(raw, sharedErrors.ErrEmptyTarget)
	}

	normalized := entry
	if !hasScheme(entry) {
		normalized = consts.DefaultURLScheme + "://" + entry
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return HTTPTarget{Raw: entry}, invalidTarget(entry, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidHost, err))
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return HTTPTarget{Raw: entry}, invalidTarget(entry, fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedScheme, parsed.Scheme))
	}

	host := parsed.Hostname()
	if host == "" {
		return HTTPTarget{Raw: entry}, invalidTarget(entry, sharedErrors.ErrInvalidHost)
	}
	if p := parsed.Port(); p != "" {
		if _, err := parsePort(p); err != nil {
			return HTTPTarget{Raw: entry}, invalidTarget(entry, err)
		}
	}
	if _, err := asciiHost(host); err != nil {
		return HTTPTarget{Raw: entry}, invalidTarget(entry, fmt.Errorf("%w: %v", sharedErrors.ErrInvalidHost, err))
	}

	return HTTPTarget{Raw: entry, URL: normalized, Host: host}, nil
}

// TLSEntry reduces a URL-style entry to the host[:port] form ParseTLSTarget
// accepts. Entries without a scheme are returned trimmed but otherwise as-is.
func TLSEntry(raw string) string {
	entry := strings.TrimSpace(raw)
	if !hasScheme(entry) {
		return entry
	}
	parsed, err := url.Parse(entry)
	if err != nil || parsed.Host == "" {
		return entry
	}
	return parsed.Host
}

// hasScheme reports whether entry starts with "scheme://". A "://" that
// appears later, in a path or query, does not count.
func hasScheme(entry string) bool {
	i := strings.Index(entry, "://")
	if i <= 0 {
		return false
	}
	for j, r := range entry[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: missing port", sharedErrors.ErrInvalidPort)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not numeric", sharedErrors.ErrInvalidPort, s)
		}
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: %s out of range 1-65535", sharedErrors.ErrInvalidPort, s)
	}
	return port, nil
}

// asciiHost converts internationalized host names to their A-label form.
// ASCII names and IP literals are returned unchanged.
func asciiHost(host string) (string, error) {
	if isASCII(host) {
		return host, nil
	}
	return idna.Lookup.ToASCII(host)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
