package agentclient

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majorcontext/agentkey/internal/keymsg"
	"github.com/majorcontext/agentkey/internal/wire"
)

// fakeAgent serves the agent framing on a real unix socket and
// records every request payload. The respond callback builds the
// response payload; returning nil drops the connection.
type fakeAgent struct {
	listener net.Listener
	respond  func(req []byte) []byte

	mu       sync.Mutex
	requests [][]byte
}

func newFakeAgent(t *testing.T, respond func(req []byte) []byte) (*fakeAgent, string) {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "agent.sock")
	listener, err := net.Listen("unix", sock)
	require.NoError(t, err)

	f := &fakeAgent{listener: listener, respond: respond}
	go f.serve()
	t.Cleanup(func() { listener.Close() })
	return f, sock
}

func (f *fakeAgent) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeAgent) handle(conn net.Conn) {
	defer conn.Close()
	for {
		head := make([]byte, 4)
		if _, err := io.ReadFull(conn, head); err != nil {
			return
		}
		length, err := wire.ParseUint32(head)
		if err != nil {
			return
		}
		req := make([]byte, length)
		if _, err := io.ReadFull(conn, req); err != nil {
			return
		}

		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()

		resp := f.respond(req)
		if resp == nil {
			return
		}
		frame := append(wire.EncodeUint32(uint32(len(resp))), resp...)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (f *fakeAgent) recorded() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.requests...)
}

func successAgent(t *testing.T) (*fakeAgent, string) {
	return newFakeAgent(t, func(req []byte) []byte {
		return []byte{msgSuccess}
	})
}

type identity struct {
	msg     keymsg.PublicKeyMsg
	comment string
}

// identitiesAnswer builds a type-12 response holding the given keys.
func identitiesAnswer(t *testing.T, entries ...identity) []byte {
	t.Helper()
	resp := []byte{msgIdentitiesAnswer}
	resp = append(resp, wire.EncodeUint32(uint32(len(entries)))...)
	for _, e := range entries {
		blob, err := e.msg.Marshal()
		require.NoError(t, err)
		resp = append(resp, wire.EncodeUint32(uint32(len(blob)))...)
		resp = append(resp, blob...)
		resp = append(resp, wire.EncodeUint32(uint32(len(e.comment)))...)
		resp = append(resp, e.comment...)
	}
	return resp
}

func TestListSingleRSAKey(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pubMsg, err := keymsg.NewPublicKeyMsg(&rsaKey.PublicKey)
	require.NoError(t, err)

	answer := identitiesAnswer(t, identity{pubMsg, "alice@host"})
	_, sock := newFakeAgent(t, func(req []byte) []byte {
		if req[0] != msgRequestIdentities {
			return []byte{msgFailure}
		}
		return answer
	})

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	list, err := client.List()
	require.NoError(t, err)
	require.Len(t, list.Keys, 1)
	assert.Equal(t, keymsg.AlgoRSA, list.Keys[0].KeyType())
	assert.Equal(t, "alice@host", list.Keys[0].Comment())
	assert.True(t, pubMsg.Equal(list.Keys[0]))
}

func TestAgentFailureSurfacesEverywhere(t *testing.T) {
	_, sock := newFakeAgent(t, func(req []byte) []byte {
		return []byte{msgFailure}
	})

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var failure *AgentFailureError
	_, listErr := client.List()
	require.ErrorAs(t, listErr, &failure)
	require.ErrorAs(t, client.RemoveAll(), &failure)
	require.ErrorAs(t, client.Add(priv, "x", 0, false), &failure)
}

func TestAddWithConstraints(t *testing.T) {
	agent, sock := successAgent(t)

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, client.Add(priv, "x", 60, true))

	reqs := agent.recorded()
	require.Len(t, reqs, 1)
	payload := reqs[0]
	assert.Equal(t, byte(msgAddIDConstrained), payload[0])
	// Constraint tail: lifetime tag, 60 seconds, confirm tag.
	assert.Equal(t, []byte{1, 0, 0, 0, 60, 2}, payload[len(payload)-6:])
}

func TestAddWithoutConstraints(t *testing.T) {
	agent, sock := successAgent(t)

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, client.Add(priv, "plain", 0, false))

	reqs := agent.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, byte(msgAddIdentity), reqs[0][0])

	// The payload after the type byte is the serialized key record.
	msg, err := keymsg.ParsePrivateKeyMsg(reqs[0][1:])
	require.NoError(t, err)
	assert.Equal(t, keymsg.AlgoED25519, msg.KeyType())
	assert.False(t, msg.Constrained())
}

func TestRemoveFrame(t *testing.T) {
	agent, sock := successAgent(t)

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, client.Remove(pub))

	// Independently compute the expected payload.
	msg, err := keymsg.NewPublicKeyMsg(pub)
	require.NoError(t, err)
	blob, err := msg.Marshal()
	require.NoError(t, err)
	want := append([]byte{msgRemoveIdentity}, wire.EncodeUint32(uint32(len(blob)))...)
	want = append(want, blob...)

	reqs := agent.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, want, reqs[0])
}

func TestRemoveAllIdempotent(t *testing.T) {
	agent, sock := successAgent(t)

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.RemoveAll())
	require.NoError(t, client.RemoveAll())

	reqs := agent.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, reqs[0], reqs[1])
	assert.Equal(t, []byte{msgRemoveAllIdentities}, reqs[0])
}

func TestContains(t *testing.T) {
	heldPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	heldMsg, err := keymsg.NewPublicKeyMsg(heldPub)
	require.NoError(t, err)

	answer := identitiesAnswer(t, identity{heldMsg, "held key"})
	_, sock := newFakeAgent(t, func(req []byte) []byte {
		return answer
	})

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	found, err := client.Contains(heldPub)
	require.NoError(t, err)
	assert.True(t, found)

	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	found, err = client.Contains(otherPub)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListUnexpectedAnswerType(t *testing.T) {
	_, sock := successAgent(t)

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.List()
	var failure *AgentFailureError
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Reason, "non-identities")
}

func TestDroppedConnectionIsTransportError(t *testing.T) {
	_, sock := newFakeAgent(t, func(req []byte) []byte {
		return nil // close without answering
	})

	client, err := Dial(sock)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.List()
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
}

func TestDialMissingSocket(t *testing.T) {
	_, err := Dial(filepath.Join(t.TempDir(), "nope.sock"))
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
}

func TestCloseIdempotent(t *testing.T) {
	_, sock := successAgent(t)
	client, err := Dial(sock)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}
