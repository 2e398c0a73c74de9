package checker

import (
	"crypto/tls"
	"fmt"
	"strings"

	consts "github.com/khanhnv2901/seca-probe/internal/shared/constants"
)

// versionSSL30 is the legacy SSL 3.0 protocol version (0x0300), defined locally
// to avoid the deprecated tls.VersionSSL30 symbol.
const versionSSL30 uint16 = 0x0300

// weakProtocols are negotiated versions that are always flagged.
var weakProtocols = map[string]struct{}{
	"SSLv2":   {},
	"SSLv3":   {},
	"TLSv1":   {},
	"TLSv1.1": {},
}

// weakCipherMarkers are matched case-insensitively against the cipher name.
// "DES-" covers OpenSSL style names (DES-CBC3-SHA); IANA single-DES names are
// caught by their 56-bit strength instead.
var weakCipherMarkers = []string{
	"RC4",
	"3DES",
	"DES-",
	"MD5",
	"NULL",
	"EXPORT",
}

// cipherStrength maps a name fragment to the effective secret-bit length.
// Order matters: the first matching fragment wins.
var cipherStrength = []struct {
	fragment string
	bits     int
}{
	{"CHACHA20", 256},
	{"AES_256", 256},
	{"AES256", 256},
	{"AES_128", 128},
	{"AES128", 128},
	{"CAMELLIA_256", 256},
	{"CAMELLIA_128", 128},
	{"ARIA_256", 256},
	{"ARIA_128", 128},
	{"3DES", 112},
	{"DES_CBC3", 112},
	{"DES40", 40},
	{"DES_CBC", 56},
	{"RC4_128", 128},
	{"RC4_40", 40},
	{"WITH_NULL", 0},
}

// IsWeakProtocol reports whether a negotiated version is in the deny-set.
func IsWeakProtocol(version string) bool {
	if version == "" {
		return false
	}
	_, weak := weakProtocols[version]
	return weak
}

// IsWeakCipher reports whether the cipher name contains a weak marker or the
// reported strength is below 128 bits.
func IsWeakCipher(name string, bits *int) bool {
	upper := strings.ToUpper(name)
	for _, marker := range weakCipherMarkers {
		if upper != "" && strings.Contains(upper, marker) {
			return true
		}
	}
	return bits != nil && *bits < consts.MinCipherBits
}

// ClassifyTLS derives the finding for an observation. It is a pure function of
// its input.
func ClassifyTLS(obs *TLSObservation) TLSFinding {
	if obs == nil {
		return TLSFinding{}
	}
	return TLSFinding{
		WeakProtocol: IsWeakProtocol(obs.Version),
		WeakCipher:   IsWeakCipher(obs.CipherName, obs.CipherBits),
	}
}

// tlsVersionName converts a protocol version constant to its conventional
// name ("TLSv1.3").
func tlsVersionName(version uint16) string {
	switch version {
	case versionSSL30:
		return "SSLv3"
	case tls.VersionTLS10:
		return "TLSv1"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}

// cipherBits looks up the effective key length for a suite name. Unknown
// suites report nil.
func cipherBits(name string) *int {
	upper := strings.ToUpper(name)
	for _, s := range cipherStrength {
		if strings.Contains(upper, s.fragment) {
			bits := s.bits
			return &bits
		}
	}
	return nil
}

// cipherProtocol returns the oldest protocol version a suite is defined for.
func cipherProtocol(id uint16) string {
	for _, suites := range [][]*tls.CipherSuite{tls.CipherSuites(), tls.InsecureCipherSuites()} {
		for _, cs := range suites {
			if cs.ID != id || len(cs.SupportedVersions) == 0 {
				continue
			}
			oldest := cs.SupportedVersions[0]
			for _, v := range cs.SupportedVersions[1:] {
				if v < oldest {
					oldest = v
				}
			}
			return tlsVersionName(oldest)
		}
	}
	return ""
}

// observeConnection extracts the negotiated parameters from a completed
// handshake.
func observeConnection(state tls.ConnectionState) *TLSObservation {
	name := tls.CipherSuiteName(state.CipherSuite)
	return &TLSObservation{
		Version:        tlsVersionName(state.Version),
		CipherName:     name,
		CipherProtocol: cipherProtocol(state.CipherSuite),
		CipherBits:     cipherBits(name),
	}
}
