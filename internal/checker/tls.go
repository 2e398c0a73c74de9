package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"strconv"
	"time"

	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/seca-probe/internal/shared/errors"
)

// TLSChecker performs a single TLS handshake per target and records what was
// negotiated. The client never offers anything below TLS 1.2.
type TLSChecker struct {
	Timeout            time.Duration
	RootCAs            *x509.CertPool // nil uses the system roots
	InsecureSkipVerify bool
}

// ProbeTLS probes one target with a fresh checker.
func ProbeTLS(ctx context.Context, target TLSTarget, timeout time.Duration) TLSResult {
	c := &TLSChecker{Timeout: timeout}
	return c.Probe(ctx, target)
}

// Name returns the name of this checker
func (c *TLSChecker) Name() string {
	return "probe tls"
}

// Probe dials the target, performs the handshake and classifies the result.
// Every failure is reported through TLSResult.Error; the connection is closed
// on all paths.
func (c *TLSChecker) Probe(ctx context.Context, target TLSTarget) TLSResult {
	result := TLSResult{Target: target}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = consts.DefaultTLSTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	serverName, err := asciiHost(target.Host)
	if err != nil {
		result.Error = invalidTarget(target.Raw, err).Error()
		return result
	}
	addr := net.JoinHostPort(serverName, strconv.Itoa(target.Port))

	dialer := &net.Dialer{Timeout: timeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		result.Error = (&TransportError{Op: "dial", Target: addr, Err: err}).Error()
		return result
	}

	conn := tls.Client(raw, c.clientConfig(serverName))
	defer conn.Close()

	if err := conn.HandshakeContext(ctx); err != nil {
		result.Error = (&TransportError{Op: "handshake", Target: addr, Err: err}).Error()
		return result
	}

	state := conn.ConnectionState()
	if !state.HandshakeComplete {
		result.Error = (&TransportError{Op: "handshake", Target: addr, Err: sharedErrors.ErrHandshakeIncomplete}).Error()
		return result
	}

	obs := observeConnection(state)
	finding := ClassifyTLS(obs)
	result.Observation = obs
	result.Finding = &finding
	return result
}

func (c *TLSChecker) clientConfig(serverName string) *tls.Config {
	return &tls.Config{
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS12,
		RootCAs:            c.RootCAs,
		InsecureSkipVerify: c.InsecureSkipVerify, // #nosec G402 -- operator opt-in via --insecure.
	}
}
