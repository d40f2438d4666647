package agentclient

import "fmt"

// AgentFailureError indicates the agent explicitly reported failure,
// or answered a request with an unexpected message type. The socket
// remains usable.
type AgentFailureError struct {
	Reason string
}

func (e *AgentFailureError) Error() string {
	return e.Reason
}

// TransportError indicates a socket connect, read, or write failure,
// including timeouts. The caller must treat the connection as dead
// and reconnect.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("agent transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
