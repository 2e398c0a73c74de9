package checker

import "fmt"

// InvalidTargetError reports a malformed target entry. It only ever affects the
// entry it names; callers decide whether to turn it into a per-target result.
type InvalidTargetError struct {
	Entry string
	Err   error
}

func (e *InvalidTargetError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid target %q", e.Entry)
	}
	return fmt.Sprintf("invalid target %q: %v", e.Entry, e.Err)
}

func (e *InvalidTargetError) Unwrap() error {
	return e.Err
}

// TransportError captures a network-level failure (DNS, connect, handshake,
// request, timeout) for a single target.
type TransportError struct {
	Op     string // "dial", "handshake", "request"
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func invalidTarget(entry string, err error) error {
	return &InvalidTargetError{Entry: entry, Err: err}
}
