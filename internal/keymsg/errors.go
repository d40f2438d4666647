package keymsg

import "fmt"

// UnknownAlgorithmError indicates a key algorithm name this package
// does not recognize, or one that cannot be dispatched to a key
// record family.
type UnknownAlgorithmError struct {
	Name string
}

func (e *UnknownAlgorithmError) Error() string {
	return fmt.Sprintf("unknown key algorithm: %s", e.Name)
}

// ProtocolError indicates a structurally valid message whose contents
// violate a protocol invariant, such as an identities answer whose
// advertised key count disagrees with the keys actually transmitted.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("agent protocol: %s", e.Reason)
}
