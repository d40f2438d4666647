package keymsg

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/majorcontext/agentkey/internal/wire"
)

// KeyMaterial is a parsed private key together with its derived
// public key and fingerprint.
type KeyMaterial struct {
	PrivateKey  crypto.PrivateKey
	PublicKey   crypto.PublicKey
	Fingerprint string
}

type cacheKey struct {
	data       string
	passphrase string
}

// KeyCache memoizes key parsing by (key bytes, passphrase). Parsing
// and fingerprinting the same key repeatedly is pure, so a cache race
// at worst recomputes an identical value. Entries are never evicted;
// an embedder that needs a bounded lifetime calls Clear.
type KeyCache struct {
	mu sync.Mutex
	m  map[cacheKey]KeyMaterial
}

// NewKeyCache returns an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{m: make(map[cacheKey]KeyMaterial)}
}

// Load parses OpenSSH-format private key bytes, derives the public
// key, and computes the fingerprint, memoizing the result. A nil
// passphrase loads an unencrypted key.
func (c *KeyCache) Load(data, passphrase []byte) (KeyMaterial, error) {
	k := cacheKey{data: string(data), passphrase: string(passphrase)}

	c.mu.Lock()
	km, ok := c.m[k]
	c.mu.Unlock()
	if ok {
		return km, nil
	}

	km, err := parseKeyMaterial(data, passphrase)
	if err != nil {
		return KeyMaterial{}, err
	}

	c.mu.Lock()
	c.m[k] = km
	c.mu.Unlock()
	return km, nil
}

// Clear drops all cached entries.
func (c *KeyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[cacheKey]KeyMaterial)
}

func parseKeyMaterial(data, passphrase []byte) (KeyMaterial, error) {
	var priv any
	var err error
	if passphrase == nil {
		priv, err = ssh.ParseRawPrivateKey(data)
	} else {
		priv, err = ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase)
	}
	if err != nil {
		return KeyMaterial{}, err
	}
	// The OpenSSH parser returns ed25519 keys by pointer.
	if k, ok := priv.(*ed25519.PrivateKey); ok {
		priv = *k
	}

	pub, err := publicKeyOf(priv)
	if err != nil {
		return KeyMaterial{}, err
	}
	msg, err := NewPublicKeyMsg(pub)
	if err != nil {
		return KeyMaterial{}, err
	}
	fp, err := msg.Fingerprint()
	if err != nil {
		return KeyMaterial{}, err
	}
	return KeyMaterial{PrivateKey: priv, PublicKey: pub, Fingerprint: fp}, nil
}

func publicKeyOf(priv crypto.PrivateKey) (crypto.PublicKey, error) {
	switch k := priv.(type) {
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	case *dsa.PrivateKey:
		return &k.PublicKey, nil
	case *ecdsa.PrivateKey:
		return &k.PublicKey, nil
	case ed25519.PrivateKey:
		return k.Public(), nil
	}
	return nil, &wire.EncodingError{
		Reason: fmt.Sprintf("unsupported private key type %T", priv),
	}
}

var defaultKeyCache = NewKeyCache()

// LoadKeyMaterial parses key bytes through the process-wide cache.
func LoadKeyMaterial(data, passphrase []byte) (KeyMaterial, error) {
	return defaultKeyCache.Load(data, passphrase)
}
