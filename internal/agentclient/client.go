// Package agentclient is a synchronous client for the ssh-agent
// protocol over a Unix domain socket. It implements the
// length-prefixed request/response framing itself and exposes the
// identity management operations: list, add (with optional
// constraints), remove, remove-all, and a structural containment
// check.
//
// The client is single-threaded: each operation blocks for one socket
// round trip bounded by a fixed deadline. Callers wanting concurrency
// run one client per goroutine; clients share no state.
package agentclient

import (
	"crypto"
	"io"
	"net"
	"sync"
	"time"

	"github.com/majorcontext/agentkey/internal/keymsg"
	"github.com/majorcontext/agentkey/internal/wire"
)

// Agent protocol message numbers, from the OpenSSH agent draft.
const (
	// Responses.
	msgFailure           = 5
	msgSuccess           = 6
	msgIdentitiesAnswer  = 12
	msgSignResponse      = 14
	msgExtensionFailure  = 28
	msgExtensionResponse = 29

	// Constraints.
	constrainLifetime  = 1
	constrainConfirm   = 2
	constrainExtension = 255

	// Requests.
	msgRequestIdentities       = 11
	msgSignRequest             = 13
	msgAddIdentity             = 17
	msgRemoveIdentity          = 18
	msgRemoveAllIdentities     = 19
	msgAddSmartcardKey         = 20
	msgRemoveSmartcardKey      = 21
	msgLock                    = 22
	msgUnlock                  = 23
	msgAddIDConstrained        = 25
	msgAddSmartcardConstrained = 26
	msgExtension               = 27
)

const socketTimeout = 10 * time.Second

// Client holds one connection to an agent. Construction connects;
// Close is safe to call more than once. Operations after Close fail
// with a TransportError.
type Client struct {
	conn      net.Conn
	timeout   time.Duration
	closeOnce sync.Once
}

// Dial connects to the agent socket at the given path. Connect and
// every subsequent read or write share the same fixed timeout.
func Dial(socketPath string) (*Client, error) {
	return DialTimeout(socketPath, socketTimeout)
}

// DialTimeout is Dial with a caller-chosen timeout.
func DialTimeout(socketPath string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Close closes the agent connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// send writes one length-prefixed frame and reads the length-prefixed
// response. A response whose type byte is the failure code raises
// AgentFailureError; any other response is returned whole, leading
// type byte included, for the caller to interpret.
func (c *Client) send(payload []byte) ([]byte, error) {
	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, &TransportError{Op: "set deadline", Err: err}
	}

	frame := append(wire.EncodeUint32(uint32(len(payload))), payload...)
	if _, err := c.conn.Write(frame); err != nil {
		return nil, &TransportError{Op: "write", Err: err}
	}

	head := make([]byte, 4)
	if _, err := io.ReadFull(c.conn, head); err != nil {
		return nil, &TransportError{Op: "read length", Err: err}
	}
	length, err := wire.ParseUint32(head)
	if err != nil {
		return nil, err
	}
	resp := make([]byte, length)
	if _, err := io.ReadFull(c.conn, resp); err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if len(resp) == 0 {
		return nil, &keymsg.ProtocolError{Reason: "empty response frame"}
	}
	if resp[0] == msgFailure {
		return nil, &AgentFailureError{Reason: "agent: failure"}
	}
	return resp, nil
}

// List requests the agent's identities.
func (c *Client) List() (*keymsg.KeyList, error) {
	resp, err := c.send([]byte{msgRequestIdentities})
	if err != nil {
		return nil, err
	}
	if resp[0] != msgIdentitiesAnswer {
		return nil, &AgentFailureError{
			Reason: "agent: non-identities answer received for identities list",
		}
	}
	return keymsg.ParseKeyList(resp[1:])
}

// Add sends a private key to the agent. A nonzero lifetime constrains
// the identity to that many seconds; confirm requires per-use
// confirmation. Any constraint switches the request to the
// constrained add type.
func (c *Client) Add(priv crypto.PrivateKey, comment string, lifetime uint32, confirm bool) error {
	msg, err := keymsg.NewPrivateKeyMsg(priv)
	if err != nil {
		return err
	}
	msg.SetComment(comment)
	if lifetime != 0 {
		msg.AddConstraint(append([]byte{constrainLifetime}, wire.EncodeUint32(lifetime)...))
	}
	if confirm {
		msg.AddConstraint([]byte{constrainConfirm})
	}

	reqType := byte(msgAddIdentity)
	if msg.Constrained() {
		reqType = msgAddIDConstrained
	}
	blob, err := msg.Marshal()
	if err != nil {
		return err
	}
	_, err = c.send(append([]byte{reqType}, blob...))
	return err
}

// Remove asks the agent to drop the identity matching the public key.
func (c *Client) Remove(pub crypto.PublicKey) error {
	msg, err := keymsg.NewPublicKeyMsg(pub)
	if err != nil {
		return err
	}
	blob, err := msg.Marshal()
	if err != nil {
		return err
	}
	payload := append([]byte{msgRemoveIdentity}, wire.EncodeUint32(uint32(len(blob)))...)
	payload = append(payload, blob...)
	_, err = c.send(payload)
	return err
}

// RemoveAll asks the agent to drop every identity.
func (c *Client) RemoveAll() error {
	_, err := c.send([]byte{msgRemoveAllIdentities})
	return err
}

// Contains reports whether the agent currently holds the public key,
// compared structurally with comments ignored.
func (c *Client) Contains(pub crypto.PublicKey) (bool, error) {
	msg, err := keymsg.NewPublicKeyMsg(pub)
	if err != nil {
		return false, err
	}
	list, err := c.List()
	if err != nil {
		return false, err
	}
	return list.Contains(msg), nil
}
