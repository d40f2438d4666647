// Package keymsg models the key records exchanged with an SSH agent:
// the per-algorithm private and public key messages, the identities
// list, and the comment-independent key fingerprint. Records encode
// their fields in declaration order using the primitives in
// internal/wire and decode by peeking the leading algorithm name to
// pick the concrete record shape.
package keymsg

import "github.com/majorcontext/agentkey/internal/wire"

// KeyAlgo is an SSH key algorithm name as it appears on the wire.
type KeyAlgo string

const (
	AlgoRSA        KeyAlgo = "ssh-rsa"
	AlgoDSA        KeyAlgo = "ssh-dss"
	AlgoECDSA256   KeyAlgo = "ecdsa-sha2-nistp256"
	AlgoECDSA384   KeyAlgo = "ecdsa-sha2-nistp384"
	AlgoECDSA521   KeyAlgo = "ecdsa-sha2-nistp521"
	AlgoED25519    KeyAlgo = "ssh-ed25519"
	AlgoSKECDSA256 KeyAlgo = "sk-ecdsa-sha2-nistp256@openssh.com"
	AlgoSKED25519  KeyAlgo = "sk-ssh-ed25519@openssh.com"

	// Signature algorithm names some agents report in place of the
	// plain key type. Accepted on decode as RSA.
	AlgoRSASHA256 KeyAlgo = "rsa-sha2-256"
	AlgoRSASHA512 KeyAlgo = "rsa-sha2-512"
)

var knownAlgos = map[KeyAlgo]bool{
	AlgoRSA:        true,
	AlgoDSA:        true,
	AlgoECDSA256:   true,
	AlgoECDSA384:   true,
	AlgoECDSA521:   true,
	AlgoED25519:    true,
	AlgoSKECDSA256: true,
	AlgoSKED25519:  true,
	AlgoRSASHA256:  true,
	AlgoRSASHA512:  true,
}

// ParseKeyAlgo validates an algorithm name against the closed set of
// recognized values.
func ParseKeyAlgo(name string) (KeyAlgo, error) {
	a := KeyAlgo(name)
	if !knownAlgos[a] {
		return "", &UnknownAlgorithmError{Name: name}
	}
	return a, nil
}

// Family is the coarse key family used to select a record shape.
type Family int

const (
	FamilyRSA Family = iota + 1
	FamilyDSA
	FamilyECDSA
	FamilyED25519
)

func (f Family) String() string {
	switch f {
	case FamilyRSA:
		return "RSA"
	case FamilyDSA:
		return "DSA"
	case FamilyECDSA:
		return "ECDSA"
	case FamilyED25519:
		return "ED25519"
	}
	return "unknown"
}

// Family maps an algorithm name to its key family. The sk- hardware
// key algorithms are recognized names but have no record shape here,
// so they cannot be dispatched.
func (a KeyAlgo) Family() (Family, error) {
	switch a {
	case AlgoRSA, AlgoRSASHA256, AlgoRSASHA512:
		return FamilyRSA, nil
	case AlgoDSA:
		return FamilyDSA, nil
	case AlgoECDSA256, AlgoECDSA384, AlgoECDSA521:
		return FamilyECDSA, nil
	case AlgoED25519:
		return FamilyED25519, nil
	}
	return 0, &UnknownAlgorithmError{Name: string(a)}
}

// encode writes the algorithm name as a length-prefixed string. Unlike
// the generic text encoding, an algorithm name is never empty and the
// prefix is always emitted.
func (a KeyAlgo) encode() []byte {
	return append(wire.EncodeUint32(uint32(len(a))), a...)
}

// consumeKeyAlgo decodes a length-prefixed algorithm name from the
// front of b.
func consumeKeyAlgo(b []byte) (KeyAlgo, []byte, error) {
	name, rest, err := wire.ConsumeText(b)
	if err != nil {
		return "", nil, err
	}
	a, err := ParseKeyAlgo(name)
	if err != nil {
		return "", nil, err
	}
	return a, rest, nil
}
