package keymsg

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/majorcontext/agentkey/internal/wire"
)

func bigFromInt(v int) *big.Int {
	return big.NewInt(int64(v))
}

// ecdsaAlgoForCurve maps a NIST curve to its algorithm and wire curve
// names. Only P-256, P-384, and P-521 have agent record shapes.
func ecdsaAlgoForCurve(c elliptic.Curve) (KeyAlgo, string, error) {
	switch c {
	case elliptic.P256():
		return AlgoECDSA256, "nistp256", nil
	case elliptic.P384():
		return AlgoECDSA384, "nistp384", nil
	case elliptic.P521():
		return AlgoECDSA521, "nistp521", nil
	}
	return "", "", &wire.EncodingError{
		Reason: fmt.Sprintf("unsupported elliptic curve %s", c.Params().Name),
	}
}

func curveForAlgo(a KeyAlgo) (elliptic.Curve, error) {
	switch a {
	case AlgoECDSA256:
		return elliptic.P256(), nil
	case AlgoECDSA384:
		return elliptic.P384(), nil
	case AlgoECDSA521:
		return elliptic.P521(), nil
	}
	return nil, &UnknownAlgorithmError{Name: string(a)}
}

// NewPrivateKeyMsg builds the private key record for a native private
// key. The RSA CRT coefficient is taken from the key's precomputed
// values; ed25519 keys of both value and pointer form are accepted
// since OpenSSH key parsing yields the pointer form.
func NewPrivateKeyMsg(priv crypto.PrivateKey) (PrivateKeyMsg, error) {
	switch k := priv.(type) {
	case *rsa.PrivateKey:
		if k.Precomputed.Qinv == nil {
			k.Precompute()
		}
		return &RSAPrivateKeyMsg{
			Type: AlgoRSA,
			N:    k.N,
			E:    bigFromInt(k.E),
			D:    k.D,
			Iqmp: k.Precomputed.Qinv,
			P:    k.Primes[0],
			Q:    k.Primes[1],
		}, nil
	case *dsa.PrivateKey:
		return &DSAPrivateKeyMsg{
			Type: AlgoDSA,
			P:    k.P,
			Q:    k.Q,
			G:    k.G,
			Y:    k.Y,
			X:    k.X,
		}, nil
	case *ecdsa.PrivateKey:
		algo, curveName, err := ecdsaAlgoForCurve(k.Curve)
		if err != nil {
			return nil, err
		}
		return &ECDSAPrivateKeyMsg{
			Type:      algo,
			CurveName: curveName,
			Q:         elliptic.Marshal(k.Curve, k.X, k.Y),
			D:         k.D,
		}, nil
	case ed25519.PrivateKey:
		pub := k.Public().(ed25519.PublicKey)
		return &ED25519PrivateKeyMsg{
			Type:  AlgoED25519,
			EncA:  []byte(pub),
			KEnvA: []byte(k),
		}, nil
	case *ed25519.PrivateKey:
		return NewPrivateKeyMsg(*k)
	}
	return nil, &wire.EncodingError{
		Reason: fmt.Sprintf("unsupported private key type %T", priv),
	}
}

// NewPublicKeyMsg builds the public key record for a native public
// key.
func NewPublicKeyMsg(pub crypto.PublicKey) (PublicKeyMsg, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return &RSAPublicKeyMsg{
			Type: AlgoRSA,
			E:    bigFromInt(k.E),
			N:    k.N,
		}, nil
	case *dsa.PublicKey:
		return &DSAPublicKeyMsg{
			Type: AlgoDSA,
			P:    k.P,
			Q:    k.Q,
			G:    k.G,
			Y:    k.Y,
		}, nil
	case *ecdsa.PublicKey:
		algo, curveName, err := ecdsaAlgoForCurve(k.Curve)
		if err != nil {
			return nil, err
		}
		return &ECDSAPublicKeyMsg{
			Type:      algo,
			CurveName: curveName,
			Q:         elliptic.Marshal(k.Curve, k.X, k.Y),
		}, nil
	case ed25519.PublicKey:
		return &ED25519PublicKeyMsg{
			Type: AlgoED25519,
			EncA: []byte(k),
		}, nil
	}
	return nil, &wire.EncodingError{
		Reason: fmt.Sprintf("unsupported public key type %T", pub),
	}
}
