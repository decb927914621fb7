package ecdsa

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/drbg"
	"ctcrypto.dev/low"
)

// MaxScalarLen bounds the scalar length across the supported curves.
const MaxScalarLen = 48

// SigningKey is an ECDSA private key bound to a curve.
type SigningKey struct {
	curve Curve
	priv  PrivateKey
}

// NewSigningKey parses a fixed-length private scalar for the curve.
func NewSigningKey(curve Curve, b []byte) (*SigningKey, error) {
	priv, err := curve.NewPrivateKey(b)
	if err != nil {
		return nil, err
	}
	return &SigningKey{curve: curve, priv: priv}, nil
}

// GenerateSigningKey draws a private key from rng.
func GenerateSigningKey(curve Curve, rng ctcrypto.RandomSource) (*SigningKey, error) {
	priv, err := curve.GenerateKey(rng)
	if err != nil {
		return nil, err
	}
	return &SigningKey{curve: curve, priv: priv}, nil
}

// VerifyingKey returns the corresponding public key.
func (k *SigningKey) VerifyingKey() (*VerifyingKey, error) {
	pub, err := k.priv.PublicKey()
	if err != nil {
		return nil, err
	}
	return &VerifyingKey{curve: k.curve, pub: pub}, nil
}

// Clear wipes the private scalar.
func (k *SigningKey) Clear() {
	k.priv.Clear()
}

// Sign produces a fixed-length signature r || s over message, hashed
// with hash. The message is a sequence of byte slices hashed in order,
// so callers need not join fragments beforehand.
//
// Nonces follow RFC 6979 with added randomness drawn from rng, as
// permitted by section 3.6 of that RFC: deterministic derivation makes
// nonce generation testable, while the extra entropy hardens signing
// against fault attacks. If rng fails, Sign returns ErrRngFailed;
// SignDeterministic is the plain RFC 6979 variant.
func (k *SigningKey) Sign(hash ctcrypto.Hash, message [][]byte, rng ctcrypto.RandomSource) ([]byte, error) {
	low.EntrySecret()
	var random [16]byte
	if err := rng.Fill(random[:]); err != nil {
		return nil, ctcrypto.ErrRngFailed
	}
	return k.signWithRandom(hash, message, random[:])
}

// SignDeterministic is plain RFC 6979: no supplementary randomness, so
// signatures are reproducible bit for bit.
func (k *SigningKey) SignDeterministic(hash ctcrypto.Hash, message [][]byte) ([]byte, error) {
	low.EntrySecret()
	return k.signWithRandom(hash, message, nil)
}

func (k *SigningKey) signWithRandom(hash ctcrypto.Hash, message [][]byte, random []byte) ([]byte, error) {
	scalarLen := k.curve.ScalarLen()

	ctx := hash.New()
	for _, m := range message {
		ctx.Update(m)
	}
	digest := ctx.Finish()
	e := hashToScalar(k.curve, digest)

	var privBytes, eBytes [MaxScalarLen]byte
	k.priv.WriteBytes(privBytes[:scalarLen])
	e.WriteBytes(eBytes[:scalarLen])

	rng := drbg.New(hash, privBytes[:scalarLen], eBytes[:scalarLen], random)
	low.ZeroizeBytes(privBytes[:scalarLen])

	out := make([]byte, 2*scalarLen)
	for {
		nonce, err := k.curve.GenerateKey(rng)
		if err != nil {
			return nil, err
		}
		r := nonce.PublicKeyXScalar()
		if r.IsZero() {
			continue
		}
		s := k.priv.RawSign(nonce, e, r)
		nonce.Clear()
		if s.IsZero() {
			continue
		}

		r.WriteBytes(out[:scalarLen])
		s.WriteBytes(out[scalarLen:])
		rng.Clear()
		return out, nil
	}
}

// SignASN1 signs like Sign and returns a DER-encoded
// SEQUENCE { INTEGER r, INTEGER s }.
func (k *SigningKey) SignASN1(hash ctcrypto.Hash, message [][]byte, rng ctcrypto.RandomSource) ([]byte, error) {
	fixed, err := k.Sign(hash, message, rng)
	if err != nil {
		return nil, err
	}
	return fixedToASN1(fixed)
}

// VerifyingKey is an ECDSA public key bound to a curve.
type VerifyingKey struct {
	curve Curve
	pub   PublicKey
}

// NewVerifyingKey decodes an X9.62 uncompressed point for the curve.
func NewVerifyingKey(curve Curve, encoded []byte) (*VerifyingKey, error) {
	pub, err := curve.NewPublicKey(encoded)
	if err != nil {
		return nil, err
	}
	return &VerifyingKey{curve: curve, pub: pub}, nil
}

// Bytes returns the X9.62 uncompressed point encoding.
func (k *VerifyingKey) Bytes() []byte {
	return k.pub.Bytes()
}

// Verify checks a fixed-length signature r || s over message.
func (k *VerifyingKey) Verify(hash ctcrypto.Hash, message [][]byte, signature []byte) error {
	low.EntryPublic()
	scalarLen := k.curve.ScalarLen()
	if len(signature) != 2*scalarLen {
		return ctcrypto.ErrWrongLength
	}

	// r and s must both be integers in [1, n-1]
	r, ok := k.curve.ScalarFromBytesChecked(signature[:scalarLen])
	if !ok {
		return ctcrypto.ErrBadSignature
	}
	s, ok := k.curve.ScalarFromBytesChecked(signature[scalarLen:])
	if !ok {
		return ctcrypto.ErrBadSignature
	}

	ctx := hash.New()
	for _, m := range message {
		ctx.Update(m)
	}
	digest := ctx.Finish()
	e := hashToScalar(k.curve, digest)

	return k.pub.RawVerify(r, s, e)
}

// VerifyASN1 checks a DER-encoded signature over message.
func (k *VerifyingKey) VerifyASN1(hash ctcrypto.Hash, message [][]byte, signature []byte) error {
	low.EntryPublic()
	fixed, err := asn1ToFixed(signature, k.curve.ScalarLen())
	if err != nil {
		return err
	}
	return k.Verify(hash, message, fixed)
}

// hashToScalar derives the message scalar: the leftmost scalar-length
// bytes of the digest, reduced modulo the group order. Truncation (not
// right-shifting) is correct for curves whose order is close to a byte
// boundary, which holds for P-256 and P-384.
func hashToScalar(curve Curve, digest []byte) Scalar {
	if len(digest) > curve.ScalarLen() {
		digest = digest[:curve.ScalarLen()]
	}
	return curve.ScalarFromBytesReduced(digest)
}
