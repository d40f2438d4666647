package wire

// Error types for codec failures. Each kind is distinct so callers can
// tell a value that cannot be represented apart from bytes that cannot
// be decoded, and handle them separately from agent-reported failures.

import "fmt"

// EncodingError indicates a value outside the wire format's domain,
// such as a negative mpint.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ssh wire: cannot encode: %s", e.Reason)
}

// InvalidEncodingError indicates bytes that violate a format invariant,
// such as an mpint whose leading byte has the high bit set.
type InvalidEncodingError struct {
	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("ssh wire: invalid encoding: %s", e.Reason)
}

// TruncatedDataError indicates fewer bytes were available than a
// length prefix promised.
type TruncatedDataError struct {
	Need int
	Have int
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("ssh wire: truncated data: need %d bytes, have %d", e.Need, e.Have)
}
