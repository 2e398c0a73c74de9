package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-probe/internal/shared/errors"
)

// HTTPChecker walks the redirect chain of a URL by hand and evaluates the
// security headers of the terminal response.
type HTTPChecker struct {
	Timeout            time.Duration     // per request hop
	MaxRedirects       int               // maximum responses recorded; 0 means 10
	Transport          http.RoundTripper // nil builds a keep-alive free transport
	InsecureSkipVerify bool
	UserAgent          string
}

// ProbeHTTP probes one target with a fresh checker.
func ProbeHTTP(ctx context.Context, target HTTPTarget, timeout time.Duration) HTTPResult {
	h := &HTTPChecker{Timeout: timeout}
	return h.Probe(ctx, target)
}

// Name returns the name of this checker
func (h *HTTPChecker) Name() string {
	return "probe http"
}

// Probe follows the redirect chain for the target and classifies the outcome.
// A transport failure at any hop yields an error result with no finding.
func (h *HTTPChecker) Probe(ctx context.Context, target HTTPTarget) HTTPResult {
	result := HTTPResult{Target: target}

	obs, err := h.followChain(ctx, target.URL)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	finding := ClassifyHTTP(obs)
	result.Observation = obs
	result.Finding = &finding
	return result
}

// followChain issues GET requests and resolves each Location itself. It stops at
// the first non-3xx response, at a 3xx without Location, or once the chain
// holds MaxRedirects responses; the last two leave Terminal nil.
func (h *HTTPChecker) followChain(ctx context.Context, start string) (*HTTPObservation, error) {
	current, err := url.Parse(start)
	if err != nil {
		return nil, invalidTarget(start, err)
	}

	maxHops := h.MaxRedirects
	if maxHops <= 0 {
		maxHops = consts.MaxRedirectHops
	}

	transport := h.transport()
	obs := &HTTPObservation{RedirectChain: make([]Hop, 0, 1)}

	for {
		resp, err := h.fetch(ctx, transport, current)
		if err != nil {
			return nil, &TransportError{Op: "request", Target: current.String(), Err: err}
		}

		obs.RedirectChain = append(obs.RedirectChain, Hop{URL: current.String(), StatusCode: resp.StatusCode})

		if !isRedirectStatus(resp.StatusCode) {
			obs.Terminal = &TerminalResponse{
				URL:        current.String(),
				StatusCode: resp.StatusCode,
				Headers:    LowercaseHeaders(resp.Header),
			}
			return obs, nil
		}

		location := resp.Header.Get("Location")
		if location == "" || len(obs.RedirectChain) >= maxHops {
			return obs, nil
		}

		next, err := current.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", sharedErrors.ErrInvalidRedirect, location, err)
		}
		current = next
	}
}

// fetch performs one GET through the transport, so redirects and their
// Location headers never leave followChain. The body is drained up to a bound
// and closed; status and headers stay readable on the returned response.
func (h *HTTPChecker) fetch(ctx context.Context, transport http.RoundTripper, target *url.URL) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, h.hopTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, consts.MaxDrainBytes))
	_ = resp.Body.Close()
	return resp, nil
}

func (h *HTTPChecker) hopTimeout() time.Duration {
	if h.Timeout <= 0 {
		return consts.DefaultHTTPTimeout
	}
	return h.Timeout
}

func (h *HTTPChecker) transport() http.RoundTripper {
	if h.Transport != nil {
		return h.Transport
	}
	timeout := h.hopTimeout()
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: h.InsecureSkipVerify}, // #nosec G402 -- operator opt-in via --insecure.
		TLSHandshakeTimeout: timeout,
		DisableKeepAlives:   true,
	}
}

// LowercaseHeaders flattens a header set into lowercased names. Repeated
// headers are joined with ", ".
func LowercaseHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for name, values := range header {
		out[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return out
}
