package p384

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

// PublicKey is a validated P-384 public key with a window-4
// precomputation reused across operations.
type PublicKey struct {
	point    AffineMontPoint
	precomp4 [16 * pointLimbs]uint64
}

// PrivateKey is a P-384 private scalar.
type PrivateKey struct {
	scalar Scalar
}

// NewPublicKey decodes an X9.62 uncompressed point and validates it.
func NewPublicKey(encoded []byte) (*PublicKey, error) {
	low.EntryPublic()
	point, err := affineFromX962(encoded)
	if err != nil {
		return nil, err
	}
	pub := &PublicKey{point: point}
	pub.point.precomp4(pub.precomp4[:])
	return pub, nil
}

func affineFromX962(encoded []byte) (AffineMontPoint, error) {
	var out AffineMontPoint
	if len(encoded) == 0 {
		return out, ctcrypto.ErrWrongLength
	}
	if encoded[0] != 0x04 {
		return out, ctcrypto.ErrNotUncompressed
	}
	if len(encoded) != 1+96 {
		return out, ctcrypto.ErrWrongLength
	}

	var x, y FieldElement
	if !x.setBytes(encoded[1:49]) || !y.setBytes(encoded[49:97]) {
		return out, ctcrypto.ErrOutOfRange
	}
	out.x.toMont(&x)
	out.y.toMont(&y)
	if !out.onCurve() {
		return out, ctcrypto.ErrNotOnCurve
	}
	return out, nil
}

func (a *AffineMontPoint) onCurve() bool {
	var lhs, rhs FieldElement
	rhs.montSqr(&a.x)
	rhs.add(&rhs, &curveAMont)
	rhs.montMul(&rhs, &a.x)
	rhs.add(&rhs, &curveBMont)
	lhs.montSqr(&a.y)
	return lhs.publicEq(&rhs)
}

func (a *AffineMontPoint) bytesX962(out []byte) {
	var t FieldElement
	out[0] = 0x04
	t.demont(&a.x)
	t.bytes(out[1:49])
	t.demont(&a.y)
	t.bytes(out[49:97])
}

// Bytes returns the X9.62 uncompressed encoding of the public key.
func (p *PublicKey) Bytes() [97]byte {
	low.EntryPublic()
	var out [97]byte
	p.point.bytesX962(out[:])
	return out
}

// XScalar returns the affine x-coordinate reduced modulo the group order.
func (p *PublicKey) XScalar() Scalar {
	var t FieldElement
	t.demont(&p.point.x)
	var b [48]byte
	t.bytes(b[:])
	var s Scalar
	s.SetBytesReduced(b[:])
	return s
}

// NewPrivateKey parses a 48-byte big-endian scalar, rejecting zero and
// values at or above the group order.
func NewPrivateKey(b []byte) (*PrivateKey, error) {
	low.EntrySecret()
	if len(b) != 48 {
		return nil, ctcrypto.ErrWrongLength
	}
	var s Scalar
	if !s.SetBytesChecked(b) {
		return nil, ctcrypto.ErrOutOfRange
	}
	if s.IsZero() {
		return nil, ctcrypto.ErrOutOfRange
	}
	return &PrivateKey{scalar: s}, nil
}

// GenerateKey draws private keys from rng by rejection sampling.
func GenerateKey(rng ctcrypto.RandomSource) (*PrivateKey, error) {
	low.EntrySecret()
	var buf [48]byte
	defer low.ZeroizeBytes(buf[:])
	for i := 0; i < 64; i++ {
		if err := rng.Fill(buf[:]); err != nil {
			return nil, ctcrypto.ErrRngFailed
		}
		if key, err := NewPrivateKey(buf[:]); err == nil {
			return key, nil
		}
	}
	return nil, ctcrypto.ErrRngFailed
}

// Bytes returns the 48-byte big-endian scalar.
func (k *PrivateKey) Bytes() [48]byte {
	low.EntrySecret()
	var out [48]byte
	k.scalar.Bytes(out[:])
	return out
}

// Clear wipes the private scalar.
func (k *PrivateKey) Clear() {
	k.scalar.Clear()
}

// PublicKey computes the corresponding public key.
func (k *PrivateKey) PublicKey() (*PublicKey, error) {
	low.EntrySecret()
	j := basePointMul(&k.scalar)
	point := j.toAffine()
	if !point.onCurve() {
		return nil, ctcrypto.ErrNotOnCurve
	}
	pub := &PublicKey{point: point}
	pub.point.precomp4(pub.precomp4[:])
	return pub, nil
}

// PublicKeyXScalar returns the x-coordinate of scalar*G reduced mod n.
func (k *PrivateKey) PublicKeyXScalar() Scalar {
	j := basePointMul(&k.scalar)
	point := j.toAffine()
	var t FieldElement
	t.demont(&point.x)
	var b [48]byte
	t.bytes(b[:])
	var s Scalar
	s.SetBytesReduced(b[:])
	low.ZeroizeBytes(b[:])
	return s
}

// SharedSecret is the x-coordinate output of a Diffie-Hellman exchange.
type SharedSecret [48]byte

// DiffieHellman computes the shared secret with a peer public key.
func (k *PrivateKey) DiffieHellman(peer *PublicKey) (SharedSecret, error) {
	low.EntrySecret()
	var out SharedSecret
	result := scalarMulWindow4(&k.scalar, peer.precomp4[:])
	if result.isInfinity() == 1 {
		return out, ctcrypto.ErrNotOnCurve
	}
	point := result.toAffine()
	if !point.onCurve() {
		return out, ctcrypto.ErrNotOnCurve
	}
	var t FieldElement
	t.demont(&point.x)
	t.bytes(out[:])
	return out, nil
}

// RawEcdsaSign computes s = k^-1 * (e + r*d) mod n.
func (k *PrivateKey) RawEcdsaSign(nonce *PrivateKey, e, r *Scalar) Scalar {
	var rd, sum, kinv, s Scalar
	rd.Mul(r, &k.scalar)
	sum.Add(e, &rd)
	kinv.Inverse(&nonce.scalar)
	s.Mul(&kinv, &sum)
	rd.Clear()
	sum.Clear()
	kinv.Clear()
	return s
}

// RawEcdsaVerify checks u1*G + u2*Q against r. Public inputs; variable
// time is acceptable.
func (p *PublicKey) RawEcdsaVerify(r, s, e *Scalar) error {
	if r.IsZero() || s.IsZero() {
		return ctcrypto.ErrBadSignature
	}

	var sInv, u1, u2 Scalar
	sInv.Inverse(s)
	u1.Mul(e, &sInv)
	u2.Mul(r, &sInv)

	lhs := basePointMul(&u1)
	rhs := scalarMulWindow4(&u2, p.precomp4[:])

	var sum JacobianMontPoint
	sum.addVar(&lhs, &rhs)
	if sum.isInfinity() == 1 {
		return ctcrypto.ErrBadSignature
	}

	point := sum.toAffine()
	var t FieldElement
	t.demont(&point.x)
	var b [48]byte
	t.bytes(b[:])
	var xr Scalar
	xr.SetBytesReduced(b[:])

	if !xr.Equal(r) {
		return ctcrypto.ErrBadSignature
	}
	return nil
}
