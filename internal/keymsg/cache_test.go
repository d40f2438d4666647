package keymsg

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func testKeyPEM(t *testing.T) ([]byte, ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "test key")
	require.NoError(t, err)
	return pem.EncodeToMemory(block), pub
}

func TestKeyCacheLoad(t *testing.T) {
	data, pub := testKeyPEM(t)
	cache := NewKeyCache()

	km, err := cache.Load(data, nil)
	require.NoError(t, err)

	priv, ok := km.PrivateKey.(ed25519.PrivateKey)
	require.True(t, ok)
	assert.True(t, pub.Equal(priv.Public().(ed25519.PublicKey)))
	assert.True(t, pub.Equal(km.PublicKey.(ed25519.PublicKey)))

	wantMsg, err := NewPublicKeyMsg(pub)
	require.NoError(t, err)
	wantFP, err := wantMsg.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, wantFP, km.Fingerprint)
}

func TestKeyCacheMemoizes(t *testing.T) {
	data, _ := testKeyPEM(t)
	cache := NewKeyCache()

	km1, err := cache.Load(data, nil)
	require.NoError(t, err)
	km2, err := cache.Load(data, nil)
	require.NoError(t, err)

	assert.Equal(t, km1.Fingerprint, km2.Fingerprint)
	assert.Len(t, cache.m, 1)

	cache.Clear()
	assert.Empty(t, cache.m)
}

func TestKeyCacheEncrypted(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "sealed", []byte("hunter2"))
	require.NoError(t, err)
	data := pem.EncodeToMemory(block)

	cache := NewKeyCache()

	_, err = cache.Load(data, nil)
	var missing *ssh.PassphraseMissingError
	require.True(t, errors.As(err, &missing))

	km, err := cache.Load(data, []byte("hunter2"))
	require.NoError(t, err)
	assert.True(t, pub.Equal(km.PublicKey.(ed25519.PublicKey)))
}

func TestKeyCacheBadData(t *testing.T) {
	cache := NewKeyCache()
	_, err := cache.Load([]byte("not a key"), nil)
	require.Error(t, err)
	assert.Empty(t, cache.m, "failed parses are not cached")
}
