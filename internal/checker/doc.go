// Package checker implements the seca-probe probing core.
//
// Architecture overview:
//
//   - The target normalizer (GatherTargets, ParseTLSTarget, ParseHTTPTarget)
//     turns operator input into deduplicated, validated targets. A malformed
//     entry only affects itself.
//   - TLSChecker performs one handshake per target with a TLS 1.2 floor and
//     records the negotiated version, cipher suite and key length.
//   - HTTPChecker walks redirect chains by hand, bounded to ten responses,
//     and captures the headers of the terminal response.
//   - ClassifyTLS and ClassifyHTTP are pure rule evaluators over static
//     tables; they never touch the network.
//   - Runner coordinates concurrent execution with rate limiting and writes
//     results by index into an Aggregator, so output order always matches
//     input order and every target yields exactly one result.
//
// Results flatten into TLSRecord and HTTPRecord for writers in cmd/.
package checker
