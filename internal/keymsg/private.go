package keymsg

import (
	"math/big"

	"github.com/majorcontext/agentkey/internal/wire"
)

// PrivateKeyMsg is one concrete private key record, as sent in an
// add-identity request. Every record starts with its algorithm name
// and ends with a comment and an opaque constraint sequence.
type PrivateKeyMsg interface {
	// Marshal encodes the record's fields in declaration order.
	Marshal() ([]byte, error)
	// KeyType returns the record's algorithm name.
	KeyType() KeyAlgo
	// SetComment replaces the record's comment.
	SetComment(comment string)
	// AddConstraint appends an already-encoded constraint record.
	AddConstraint(c []byte)
	// Constrained reports whether any constraints have been added.
	Constrained() bool
}

// msgTail is the comment + constraints suffix shared by all private
// key records.
type msgTail struct {
	Comments    string
	Constraints []byte
}

func (t *msgTail) SetComment(comment string) { t.Comments = comment }

func (t *msgTail) AddConstraint(c []byte) {
	t.Constraints = append(t.Constraints, c...)
}

func (t *msgTail) Constrained() bool { return len(t.Constraints) > 0 }

func (t *msgTail) marshalTail() []byte {
	return append(wire.EncodeText(t.Comments), wire.EncodeConstraints(t.Constraints)...)
}

// consumeTail decodes the comment + constraints suffix. An exhausted
// buffer decodes to an empty tail, matching the encoder's omission of
// empty fields.
func consumeTail(b []byte) (msgTail, error) {
	if len(b) == 0 {
		return msgTail{}, nil
	}
	comment, rest, err := wire.ConsumeText(b)
	if err != nil {
		return msgTail{}, err
	}
	var constraints []byte
	if len(rest) > 0 {
		constraints = append([]byte(nil), rest...)
	}
	return msgTail{Comments: comment, Constraints: constraints}, nil
}

// RSAPrivateKeyMsg carries the full RSA private key material. The
// iqmp field is the CRT coefficient q^-1 mod p, taken from the key's
// precomputed values rather than rederived.
type RSAPrivateKeyMsg struct {
	Type KeyAlgo
	N    *big.Int
	E    *big.Int
	D    *big.Int
	Iqmp *big.Int
	P    *big.Int
	Q    *big.Int
	msgTail
}

func (m *RSAPrivateKeyMsg) KeyType() KeyAlgo { return m.Type }

func (m *RSAPrivateKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	for _, v := range []*big.Int{m.N, m.E, m.D, m.Iqmp, m.P, m.Q} {
		enc, err := wire.EncodeMpint(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return append(buf, m.marshalTail()...), nil
}

// DSAPrivateKeyMsg carries DSA domain parameters, the public value y,
// and the private value x.
type DSAPrivateKeyMsg struct {
	Type KeyAlgo
	P    *big.Int
	Q    *big.Int
	G    *big.Int
	Y    *big.Int
	X    *big.Int
	msgTail
}

func (m *DSAPrivateKeyMsg) KeyType() KeyAlgo { return m.Type }

func (m *DSAPrivateKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	for _, v := range []*big.Int{m.P, m.Q, m.G, m.Y, m.X} {
		enc, err := wire.EncodeMpint(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return append(buf, m.marshalTail()...), nil
}

// ECDSAPrivateKeyMsg carries the curve name, the uncompressed public
// point Q, and the private scalar d.
type ECDSAPrivateKeyMsg struct {
	Type      KeyAlgo
	CurveName string
	Q         []byte
	D         *big.Int
	msgTail
}

func (m *ECDSAPrivateKeyMsg) KeyType() KeyAlgo { return m.Type }

func (m *ECDSAPrivateKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	buf = append(buf, wire.EncodeText(m.CurveName)...)
	buf = append(buf, wire.EncodeString(m.Q)...)
	enc, err := wire.EncodeMpint(m.D)
	if err != nil {
		return nil, err
	}
	buf = append(buf, enc...)
	return append(buf, m.marshalTail()...), nil
}

// ED25519PrivateKeyMsg carries the 32-byte public key and the 64-byte
// concatenation of private seed and public key, as ssh-agent expects.
type ED25519PrivateKeyMsg struct {
	Type  KeyAlgo
	EncA  []byte
	KEnvA []byte
	msgTail
}

func (m *ED25519PrivateKeyMsg) KeyType() KeyAlgo { return m.Type }

func (m *ED25519PrivateKeyMsg) Marshal() ([]byte, error) {
	buf := m.Type.encode()
	buf = append(buf, wire.EncodeString(m.EncA)...)
	buf = append(buf, wire.EncodeString(m.KEnvA)...)
	return append(buf, m.marshalTail()...), nil
}

// ParsePrivateKeyMsg decodes a private key record, selecting the
// concrete shape from the leading algorithm name. The constraint
// suffix, being opaque, consumes whatever follows the comment.
func ParsePrivateKeyMsg(blob []byte) (PrivateKeyMsg, error) {
	algo, rest, err := consumeKeyAlgo(blob)
	if err != nil {
		return nil, err
	}
	family, err := algo.Family()
	if err != nil {
		return nil, err
	}
	switch family {
	case FamilyRSA:
		return parseRSAPrivate(algo, rest)
	case FamilyDSA:
		return parseDSAPrivate(algo, rest)
	case FamilyECDSA:
		return parseECDSAPrivate(algo, rest)
	case FamilyED25519:
		return parseED25519Private(algo, rest)
	}
	panic("keymsg: unreachable family " + family.String())
}

func parseRSAPrivate(algo KeyAlgo, b []byte) (*RSAPrivateKeyMsg, error) {
	m := &RSAPrivateKeyMsg{Type: algo}
	var err error
	for _, dst := range []**big.Int{&m.N, &m.E, &m.D, &m.Iqmp, &m.P, &m.Q} {
		if *dst, b, err = wire.ConsumeMpint(b); err != nil {
			return nil, err
		}
	}
	if m.msgTail, err = consumeTail(b); err != nil {
		return nil, err
	}
	return m, nil
}

func parseDSAPrivate(algo KeyAlgo, b []byte) (*DSAPrivateKeyMsg, error) {
	m := &DSAPrivateKeyMsg{Type: algo}
	var err error
	for _, dst := range []**big.Int{&m.P, &m.Q, &m.G, &m.Y, &m.X} {
		if *dst, b, err = wire.ConsumeMpint(b); err != nil {
			return nil, err
		}
	}
	if m.msgTail, err = consumeTail(b); err != nil {
		return nil, err
	}
	return m, nil
}

func parseECDSAPrivate(algo KeyAlgo, b []byte) (*ECDSAPrivateKeyMsg, error) {
	m := &ECDSAPrivateKeyMsg{Type: algo}
	var err error
	if m.CurveName, b, err = wire.ConsumeText(b); err != nil {
		return nil, err
	}
	if m.Q, b, err = consumeBytes(b); err != nil {
		return nil, err
	}
	if m.D, b, err = wire.ConsumeMpint(b); err != nil {
		return nil, err
	}
	if m.msgTail, err = consumeTail(b); err != nil {
		return nil, err
	}
	return m, nil
}

func parseED25519Private(algo KeyAlgo, b []byte) (*ED25519PrivateKeyMsg, error) {
	m := &ED25519PrivateKeyMsg{Type: algo}
	var err error
	if m.EncA, b, err = consumeBytes(b); err != nil {
		return nil, err
	}
	if m.KEnvA, b, err = consumeBytes(b); err != nil {
		return nil, err
	}
	if m.msgTail, err = consumeTail(b); err != nil {
		return nil, err
	}
	return m, nil
}

// consumeBytes is ConsumeString with the contents copied out of the
// shared backing array, so records own their field bytes.
func consumeBytes(b []byte) ([]byte, []byte, error) {
	data, rest, err := wire.ConsumeString(b)
	if err != nil {
		return nil, nil, err
	}
	return append([]byte(nil), data...), rest, nil
}
