package keymsg

import (
	"bytes"
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"math/big"

	"github.com/majorcontext/agentkey/internal/wire"
)

// PublicKeyMsg is one concrete public key record, as returned in an
// identities answer. Equality between records ignores the comment;
// the fingerprint is likewise comment-independent.
type PublicKeyMsg interface {
	// Marshal encodes the record's fields in declaration order.
	Marshal() ([]byte, error)
	// KeyType returns the record's algorithm name.
	KeyType() KeyAlgo
	// Comment returns the record's comment.
	Comment() string
	// Fingerprint returns the base64 SHA-256 fingerprint of the
	// record with its comment cleared. Computed once per record.
	Fingerprint() (string, error)
	// PublicKey returns the native public key for the record's
	// material. Computed once per record.
	PublicKey() (crypto.PublicKey, error)
	// Equal reports structural equality, ignoring comments.
	Equal(other PublicKeyMsg) bool

	// stripped returns a copy with the comment cleared.
	stripped() PublicKeyMsg
}

func fingerprintOf(m PublicKeyMsg) (string, error) {
	blob, err := m.stripped().Marshal()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(blob)
	return base64.RawStdEncoding.EncodeToString(sum[:]), nil
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// RSAPublicKeyMsg carries the RSA public exponent and modulus, in
// that order (the agent record order differs from the ssh-rsa public
// key blob order).
type RSAPublicKeyMsg struct {
	Type     KeyAlgo
	E        *big.Int
	N        *big.Int
	Comments string

	fp  string
	pub crypto.PublicKey
}

func (m *RSAPublicKeyMsg) KeyType() KeyAlgo { return m.Type }
func (m *RSAPublicKeyMsg) Comment() string  { return m.Comments }

func (m *RSAPublicKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	for _, v := range []*big.Int{m.E, m.N} {
		enc, err := wire.EncodeMpint(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return append(buf, wire.EncodeText(m.Comments)...), nil
}

func (m *RSAPublicKeyMsg) Fingerprint() (string, error) {
	if m.fp == "" {
		fp, err := fingerprintOf(m)
		if err != nil {
			return "", err
		}
		m.fp = fp
	}
	return m.fp, nil
}

func (m *RSAPublicKeyMsg) PublicKey() (crypto.PublicKey, error) {
	if m.pub == nil {
		m.pub = &rsa.PublicKey{N: m.N, E: int(m.E.Int64())}
	}
	return m.pub, nil
}

func (m *RSAPublicKeyMsg) Equal(other PublicKeyMsg) bool {
	o, ok := other.(*RSAPublicKeyMsg)
	return ok && m.Type == o.Type && bigEqual(m.E, o.E) && bigEqual(m.N, o.N)
}

func (m *RSAPublicKeyMsg) stripped() PublicKeyMsg {
	return &RSAPublicKeyMsg{Type: m.Type, E: m.E, N: m.N}
}

// DSAPublicKeyMsg carries the DSA domain parameters and public value.
type DSAPublicKeyMsg struct {
	Type     KeyAlgo
	P        *big.Int
	Q        *big.Int
	G        *big.Int
	Y        *big.Int
	Comments string

	fp  string
	pub crypto.PublicKey
}

func (m *DSAPublicKeyMsg) KeyType() KeyAlgo { return m.Type }
func (m *DSAPublicKeyMsg) Comment() string  { return m.Comments }

func (m *DSAPublicKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	for _, v := range []*big.Int{m.P, m.Q, m.G, m.Y} {
		enc, err := wire.EncodeMpint(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return append(buf, wire.EncodeText(m.Comments)...), nil
}

func (m *DSAPublicKeyMsg) Fingerprint() (string, error) {
	if m.fp == "" {
		fp, err := fingerprintOf(m)
		if err != nil {
			return "", err
		}
		m.fp = fp
	}
	return m.fp, nil
}

func (m *DSAPublicKeyMsg) PublicKey() (crypto.PublicKey, error) {
	if m.pub == nil {
		m.pub = &dsa.PublicKey{
			Parameters: dsa.Parameters{P: m.P, Q: m.Q, G: m.G},
			Y:          m.Y,
		}
	}
	return m.pub, nil
}

func (m *DSAPublicKeyMsg) Equal(other PublicKeyMsg) bool {
	o, ok := other.(*DSAPublicKeyMsg)
	return ok && m.Type == o.Type && bigEqual(m.P, o.P) && bigEqual(m.Q, o.Q) &&
		bigEqual(m.G, o.G) && bigEqual(m.Y, o.Y)
}

func (m *DSAPublicKeyMsg) stripped() PublicKeyMsg {
	return &DSAPublicKeyMsg{Type: m.Type, P: m.P, Q: m.Q, G: m.G, Y: m.Y}
}

// ECDSAPublicKeyMsg carries the curve name and the uncompressed
// public point.
type ECDSAPublicKeyMsg struct {
	Type      KeyAlgo
	CurveName string
	Q         []byte
	Comments  string

	fp  string
	pub crypto.PublicKey
}

func (m *ECDSAPublicKeyMsg) KeyType() KeyAlgo { return m.Type }
func (m *ECDSAPublicKeyMsg) Comment() string  { return m.Comments }

func (m *ECDSAPublicKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	buf = append(buf, wire.EncodeText(m.CurveName)...)
	buf = append(buf, wire.EncodeString(m.Q)...)
	return append(buf, wire.EncodeText(m.Comments)...), nil
}

func (m *ECDSAPublicKeyMsg) Fingerprint() (string, error) {
	if m.fp == "" {
		fp, err := fingerprintOf(m)
		if err != nil {
			return "", err
		}
		m.fp = fp
	}
	return m.fp, nil
}

func (m *ECDSAPublicKeyMsg) PublicKey() (crypto.PublicKey, error) {
	if m.pub == nil {
		curve, err := curveForAlgo(m.Type)
		if err != nil {
			return nil, err
		}
		x, y := elliptic.Unmarshal(curve, m.Q)
		if x == nil {
			return nil, &wire.InvalidEncodingError{Reason: "invalid EC point"}
		}
		m.pub = &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	}
	return m.pub, nil
}

func (m *ECDSAPublicKeyMsg) Equal(other PublicKeyMsg) bool {
	o, ok := other.(*ECDSAPublicKeyMsg)
	return ok && m.Type == o.Type && m.CurveName == o.CurveName && bytes.Equal(m.Q, o.Q)
}

func (m *ECDSAPublicKeyMsg) stripped() PublicKeyMsg {
	return &ECDSAPublicKeyMsg{Type: m.Type, CurveName: m.CurveName, Q: m.Q}
}

// ED25519PublicKeyMsg carries the 32-byte public key.
type ED25519PublicKeyMsg struct {
	Type     KeyAlgo
	EncA     []byte
	Comments string

	fp  string
	pub crypto.PublicKey
}

func (m *ED25519PublicKeyMsg) KeyType() KeyAlgo { return m.Type }
func (m *ED25519PublicKeyMsg) Comment() string  { return m.Comments }

func (m *ED25519PublicKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	buf = append(buf, wire.EncodeString(m.EncA)...)
	return append(buf, wire.EncodeText(m.Comments)...), nil
}

func (m *ED25519PublicKeyMsg) Fingerprint() (string, error) {
	if m.fp == "" {
		fp, err := fingerprintOf(m)
		if err != nil {
			return "", err
		}
		m.fp = fp
	}
	return m.fp, nil
}

func (m *ED25519PublicKeyMsg) PublicKey() (crypto.PublicKey, error) {
	if m.pub == nil {
		if len(m.EncA) != ed25519.PublicKeySize {
			return nil, &wire.InvalidEncodingError{Reason: "ed25519 public key must be 32 bytes"}
		}
		m.pub = ed25519.PublicKey(m.EncA)
	}
	return m.pub, nil
}

func (m *ED25519PublicKeyMsg) Equal(other PublicKeyMsg) bool {
	o, ok := other.(*ED25519PublicKeyMsg)
	return ok && m.Type == o.Type && bytes.Equal(m.EncA, o.EncA)
}

func (m *ED25519PublicKeyMsg) stripped() PublicKeyMsg {
	return &ED25519PublicKeyMsg{Type: m.Type, EncA: m.EncA}
}

// ParsePublicKeyMsg decodes a public key record, selecting the
// concrete shape from the leading algorithm name. A trailing comment
// field is consumed when present. Bytes remaining after the comment
// are returned to the caller, whose framing they belong to.
func ParsePublicKeyMsg(blob []byte) (PublicKeyMsg, []byte, error) {
	algo, rest, err := consumeKeyAlgo(blob)
	if err != nil {
		return nil, nil, err
	}
	family, err := algo.Family()
	if err != nil {
		return nil, nil, err
	}
	switch family {
	case FamilyRSA:
		return parseRSAPublic(algo, rest)
	case FamilyDSA:
		return parseDSAPublic(algo, rest)
	case FamilyECDSA:
		return parseECDSAPublic(algo, rest)
	case FamilyED25519:
		return parseED25519Public(algo, rest)
	}
	panic("keymsg: unreachable family " + family.String())
}

func parseRSAPublic(algo KeyAlgo, b []byte) (*RSAPublicKeyMsg, []byte, error) {
	m := &RSAPublicKeyMsg{Type: algo}
	var err error
	for _, dst := range []**big.Int{&m.E, &m.N} {
		if *dst, b, err = wire.ConsumeMpint(b); err != nil {
			return nil, nil, err
		}
	}
	if m.Comments, b, err = consumeComment(b); err != nil {
		return nil, nil, err
	}
	return m, b, nil
}

func parseDSAPublic(algo KeyAlgo, b []byte) (*DSAPublicKeyMsg, []byte, error) {
	m := &DSAPublicKeyMsg{Type: algo}
	var err error
	for _, dst := range []**big.Int{&m.P, &m.Q, &m.G, &m.Y} {
		if *dst, b, err = wire.ConsumeMpint(b); err != nil {
			return nil, nil, err
		}
	}
	if m.Comments, b, err = consumeComment(b); err != nil {
		return nil, nil, err
	}
	return m, b, nil
}

func parseECDSAPublic(algo KeyAlgo, b []byte) (*ECDSAPublicKeyMsg, []byte, error) {
	m := &ECDSAPublicKeyMsg{Type: algo}
	var err error
	if m.CurveName, b, err = wire.ConsumeText(b); err != nil {
		return nil, nil, err
	}
	if m.Q, b, err = consumeBytes(b); err != nil {
		return nil, nil, err
	}
	if m.Comments, b, err = consumeComment(b); err != nil {
		return nil, nil, err
	}
	return m, b, nil
}

func parseED25519Public(algo KeyAlgo, b []byte) (*ED25519PublicKeyMsg, []byte, error) {
	m := &ED25519PublicKeyMsg{Type: algo}
	var err error
	if m.EncA, b, err = consumeBytes(b); err != nil {
		return nil, nil, err
	}
	if m.Comments, b, err = consumeComment(b); err != nil {
		return nil, nil, err
	}
	return m, b, nil
}

// consumeComment decodes a trailing comment field when bytes remain.
// An exhausted buffer means the encoder omitted the empty comment.
func consumeComment(b []byte) (string, []byte, error) {
	if len(b) == 0 {
		return "", nil, nil
	}
	return wire.ConsumeText(b)
}
