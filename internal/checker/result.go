package checker

import (
	"net/url"
	"strings"

	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
)

// TLSObservation holds what the handshake negotiated. It is nil on a result
// whose handshake never completed.
type TLSObservation struct {
	Version        string `json:"tls_version"`
	CipherName     string `json:"cipher_name"`
	CipherProtocol string `json:"cipher_protocol,omitempty"`
	CipherBits     *int   `json:"cipher_bits,omitempty"`
}

// TLSFinding flags weak protocol and cipher choices.
type TLSFinding struct {
	WeakProtocol bool `json:"weak_protocol"`
	WeakCipher   bool `json:"weak_cipher"`
}

// TLSResult is the outcome of probing one TLS target. Exactly one of
// (Observation and Finding) or Error is set.
type TLSResult struct {
	Target      TLSTarget       `json:"target"`
	Observation *TLSObservation `json:"observation,omitempty"`
	Finding     *TLSFinding     `json:"finding,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// OK reports whether the probe produced an observation.
func (r TLSResult) OK() bool {
	return r.Error == ""
}

// Hop is one response in a redirect chain.
type Hop struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
}

// TerminalResponse is the first non-redirect response of a chain. Header names
// are lowercased.
type TerminalResponse struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
}

// HTTPObservation records the traversed redirect chain. Terminal is nil when
// the chain stopped while still redirecting (hop bound reached, or a 3xx
// without Location).
type HTTPObservation struct {
	RedirectChain []Hop             `json:"redirect_chain"`
	Terminal      *TerminalResponse `json:"terminal,omitempty"`
}

// First returns the first hop of the chain.
func (o *HTTPObservation) First() (Hop, bool) {
	if o == nil || len(o.RedirectChain) == 0 {
		return Hop{}, false
	}
	return o.RedirectChain[0], true
}

// Last returns the final hop of the chain.
func (o *HTTPObservation) Last() (Hop, bool) {
	if o == nil || len(o.RedirectChain) == 0 {
		return Hop{}, false
	}
	return o.RedirectChain[len(o.RedirectChain)-1], true
}

// Truncated reports whether the chain ended without a terminal response.
func (o *HTTPObservation) Truncated() bool {
	return o != nil && len(o.RedirectChain) > 0 && o.Terminal == nil
}

// HTTPFinding flags redirect downgrades and security header gaps.
type HTTPFinding struct {
	HTTPSDowngrade         bool     `json:"https_downgrade"`
	MissingRequiredHeaders []string `json:"missing_required_headers"`
	MissingOptionalHeaders []string `json:"missing_optional_headers"`
	Notes                  []string `json:"notes"`
}

// HTTPResult is the outcome of probing one HTTP target. Exactly one of
// (Observation and Finding) or Error is set.
type HTTPResult struct {
	Target      HTTPTarget       `json:"target"`
	Observation *HTTPObservation `json:"observation,omitempty"`
	Finding     *HTTPFinding     `json:"finding,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// OK reports whether the probe produced an observation.
func (r HTTPResult) OK() bool {
	return r.Error == ""
}

// TLSRecord is the flat export form consumed by writers.
type TLSRecord struct {
	Target         string  `json:"target" yaml:"target"`
	Hostname       string  `json:"hostname" yaml:"hostname"`
	Port           int     `json:"port" yaml:"port"`
	TLSVersion     *string `json:"tls_version" yaml:"tls_version"`
	CipherName     *string `json:"cipher_name" yaml:"cipher_name"`
	CipherProtocol *string `json:"cipher_protocol" yaml:"cipher_protocol"`
	CipherBits     *int    `json:"cipher_bits" yaml:"cipher_bits"`
	WeakProtocol   bool    `json:"weak_protocol" yaml:"weak_protocol"`
	WeakCipher     bool    `json:"weak_cipher" yaml:"weak_cipher"`
	Error          *string `json:"error" yaml:"error"`
}

// Record flattens the result. Absent values are nil and booleans default to false.
func (r TLSResult) Record() TLSRecord {
	rec := TLSRecord{
		Target:   r.Target.Raw,
		Hostname: r.Target.Host,
		Port:     r.Target.Port,
	}
	if r.Error != "" {
		if rec.Hostname == "" {
			rec.Hostname = r.Target.Raw
		}
		rec.Error = optionalString(r.Error)
		return rec
	}
	if obs := r.Observation; obs != nil {
		rec.TLSVersion = optionalString(obs.Version)
		rec.CipherName = optionalString(obs.CipherName)
		rec.CipherProtocol = optionalString(obs.CipherProtocol)
		rec.CipherBits = obs.CipherBits
	}
	if f := r.Finding; f != nil {
		rec.WeakProtocol = f.WeakProtocol
		rec.WeakCipher = f.WeakCipher
	}
	return rec
}

// HTTPRecord is the flat export form consumed by writers.
type HTTPRecord struct {
	URL                    string   `json:"url" yaml:"url"`
	FinalURL               *string  `json:"final_url" yaml:"final_url"`
	Scheme                 *string  `json:"scheme" yaml:"scheme"`
	StatusCode             *int     `json:"status_code" yaml:"status_code"`
	RedirectChain          string   `json:"redirect_chain" yaml:"redirect_chain"`
	HTTPSDowngrade         bool     `json:"https_downgrade" yaml:"https_downgrade"`
	MissingRequiredHeaders []string `json:"missing_required_headers" yaml:"missing_required_headers"`
	MissingOptionalHeaders []string `json:"missing_optional_headers" yaml:"missing_optional_headers"`
	HeaderFindings         []string `json:"header_findings" yaml:"header_findings"`
	Error                  *string  `json:"error" yaml:"error"`
}

// Record flattens the result. Lists are never nil so writers emit [] rather
// than null.
func (r HTTPResult) Record() HTTPRecord {
	rec := HTTPRecord{
		URL:                    r.Target.URL,
		MissingRequiredHeaders: []string{},
		MissingOptionalHeaders: []string{},
		HeaderFindings:         []string{},
	}
	if rec.URL == "" {
		rec.URL = r.Target.Raw
	}
	if r.Error != "" {
		rec.Error = optionalString(r.Error)
		return rec
	}

	if obs := r.Observation; obs != nil {
		urls := make([]string, 0, len(obs.RedirectChain))
		for _, hop := range obs.RedirectChain {
			urls = append(urls, hop.URL)
		}
		rec.RedirectChain = strings.Join(urls, consts.RedirectChainSeparator)

		if last, ok := obs.Last(); ok {
			finalURL := last.URL
			status := last.StatusCode
			rec.FinalURL = &finalURL
			rec.StatusCode = &status
			if parsed, err := url.Parse(last.URL); err == nil {
				rec.Scheme = optionalString(parsed.Scheme)
			}
		}
	}

	if f := r.Finding; f != nil {
		rec.HTTPSDowngrade = f.HTTPSDowngrade
		rec.MissingRequiredHeaders = append(rec.MissingRequiredHeaders, f.MissingRequiredHeaders...)
		rec.MissingOptionalHeaders = append(rec.MissingOptionalHeaders, f.MissingOptionalHeaders...)
		rec.HeaderFindings = append(rec.HeaderFindings, f.Notes...)
	}
	return rec
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
