package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultTLSPort is used when a TLS target omits its port.
	DefaultTLSPort = 443
	// DefaultURLScheme is prepended to HTTP targets given without a scheme.
	DefaultURLScheme = "https"

	// DefaultTLSTimeout bounds a single dial + handshake.
	DefaultTLSTimeout = 5 * time.Second
	// DefaultHTTPTimeout bounds a single HTTP request hop.
	DefaultHTTPTimeout = 10 * time.Second

	// MaxRedirectHops caps the number of responses recorded in a redirect chain.
	MaxRedirectHops = 10
	// MaxDrainBytes caps how much of each response body is read before closing it.
	MaxDrainBytes = 64 * 1024

	// HSTSMinMaxAge is the smallest max-age (180 days) not reported as short.
	HSTSMinMaxAge = 15552000
	// MinCipherBits is the effective key length below which a cipher is weak.
	MinCipherBits = 128
)

const (
	// RedirectChainSeparator joins hop URLs in exported records.
	RedirectChainSeparator = " -> "
)
