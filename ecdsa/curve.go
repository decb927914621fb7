// Package ecdsa implements ECDSA signing and verification over the
// P-256 and P-384 curves, with deterministic RFC 6979 nonces mixed with
// supplementary randomness, in both fixed-length and ASN.1 DER
// signature formats.
package ecdsa

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/p256"
	"ctcrypto.dev/p384"
)

// Scalar is an integer modulo a curve group order.
type Scalar interface {
	IsZero() bool
	WriteBytes(out []byte)
}

// PrivateKey is a curve private scalar with the raw ECDSA operations.
type PrivateKey interface {
	WriteBytes(out []byte)
	PublicKey() (PublicKey, error)
	PublicKeyXScalar() Scalar
	RawSign(nonce PrivateKey, e, r Scalar) Scalar
	Clear()
}

// PublicKey is a validated curve point.
type PublicKey interface {
	Bytes() []byte
	RawVerify(r, s, e Scalar) error
}

// Curve is the capability set ECDSA needs from a named curve. P256 and
// P384 are the implementations; there is no open-ended extensibility.
type Curve interface {
	// ScalarLen is the byte length of encoded scalars.
	ScalarLen() int

	// NewPrivateKey parses a fixed-length private scalar.
	NewPrivateKey(b []byte) (PrivateKey, error)

	// GenerateKey draws a private key from rng by rejection sampling.
	GenerateKey(rng ctcrypto.RandomSource) (PrivateKey, error)

	// NewPublicKey parses an X9.62 uncompressed point.
	NewPublicKey(b []byte) (PublicKey, error)

	// ScalarFromBytesChecked parses a fixed-length scalar in [0, n).
	ScalarFromBytesChecked(b []byte) (Scalar, bool)

	// ScalarFromBytesReduced parses up to ScalarLen bytes, reducing
	// modulo the group order.
	ScalarFromBytesReduced(b []byte) Scalar
}

// P256 is the NIST P-256 curve.
var P256 Curve = p256Curve{}

// P384 is the NIST P-384 curve.
var P384 Curve = p384Curve{}

type p256Curve struct{}

type p256Scalar struct{ s p256.Scalar }

func (x *p256Scalar) IsZero() bool          { return x.s.IsZero() }
func (x *p256Scalar) WriteBytes(out []byte) { x.s.Bytes(out) }

type p256Priv struct{ k *p256.PrivateKey }

func (x *p256Priv) WriteBytes(out []byte) {
	b := x.k.Bytes()
	copy(out, b[:])
}

func (x *p256Priv) PublicKey() (PublicKey, error) {
	pub, err := x.k.PublicKey()
	if err != nil {
		return nil, err
	}
	return &p256Pub{p: pub}, nil
}

func (x *p256Priv) PublicKeyXScalar() Scalar {
	s := x.k.PublicKeyXScalar()
	return &p256Scalar{s: s}
}

func (x *p256Priv) RawSign(nonce PrivateKey, e, r Scalar) Scalar {
	s := x.k.RawEcdsaSign(nonce.(*p256Priv).k, &e.(*p256Scalar).s, &r.(*p256Scalar).s)
	return &p256Scalar{s: s}
}

func (x *p256Priv) Clear() { x.k.Clear() }

type p256Pub struct{ p *p256.PublicKey }

func (x *p256Pub) Bytes() []byte {
	b := x.p.Bytes()
	return b[:]
}

func (x *p256Pub) RawVerify(r, s, e Scalar) error {
	return x.p.RawEcdsaVerify(&r.(*p256Scalar).s, &s.(*p256Scalar).s, &e.(*p256Scalar).s)
}

func (p256Curve) ScalarLen() int { return p256.ScalarLen }

func (p256Curve) NewPrivateKey(b []byte) (PrivateKey, error) {
	k, err := p256.NewPrivateKey(b)
	if err != nil {
		return nil, err
	}
	return &p256Priv{k: k}, nil
}

func (p256Curve) GenerateKey(rng ctcrypto.RandomSource) (PrivateKey, error) {
	k, err := p256.GenerateKey(rng)
	if err != nil {
		return nil, err
	}
	return &p256Priv{k: k}, nil
}

func (p256Curve) NewPublicKey(b []byte) (PublicKey, error) {
	p, err := p256.NewPublicKey(b)
	if err != nil {
		return nil, err
	}
	return &p256Pub{p: p}, nil
}

func (p256Curve) ScalarFromBytesChecked(b []byte) (Scalar, bool) {
	var s p256.Scalar
	if !s.SetBytesChecked(b) {
		return nil, false
	}
	return &p256Scalar{s: s}, true
}

func (p256Curve) ScalarFromBytesReduced(b []byte) Scalar {
	var s p256.Scalar
	s.SetBytesReduced(b)
	return &p256Scalar{s: s}
}

type p384Curve struct{}

type p384Scalar struct{ s p384.Scalar }

func (x *p384Scalar) IsZero() bool          { return x.s.IsZero() }
func (x *p384Scalar) WriteBytes(out []byte) { x.s.Bytes(out) }

type p384Priv struct{ k *p384.PrivateKey }

func (x *p384Priv) WriteBytes(out []byte) {
	b := x.k.Bytes()
	copy(out, b[:])
}

func (x *p384Priv) PublicKey() (PublicKey, error) {
	pub, err := x.k.PublicKey()
	if err != nil {
		return nil, err
	}
	return &p384Pub{p: pub}, nil
}

func (x *p384Priv) PublicKeyXScalar() Scalar {
	s := x.k.PublicKeyXScalar()
	return &p384Scalar{s: s}
}

func (x *p384Priv) RawSign(nonce PrivateKey, e, r Scalar) Scalar {
	s := x.k.RawEcdsaSign(nonce.(*p384Priv).k, &e.(*p384Scalar).s, &r.(*p384Scalar).s)
	return &p384Scalar{s: s}
}

func (x *p384Priv) Clear() { x.k.Clear() }

type p384Pub struct{ p *p384.PublicKey }

func (x *p384Pub) Bytes() []byte {
	b := x.p.Bytes()
	return b[:]
}

func (x *p384Pub) RawVerify(r, s, e Scalar) error {
	return x.p.RawEcdsaVerify(&r.(*p384Scalar).s, &s.(*p384Scalar).s, &e.(*p384Scalar).s)
}

func (p384Curve) ScalarLen() int { return p384.ScalarLen }

func (p384Curve) NewPrivateKey(b []byte) (PrivateKey, error) {
	k, err := p384.NewPrivateKey(b)
	if err != nil {
		return nil, err
	}
	return &p384Priv{k: k}, nil
}

func (p384Curve) GenerateKey(rng ctcrypto.RandomSource) (PrivateKey, error) {
	k, err := p384.GenerateKey(rng)
	if err != nil {
		return nil, err
	}
	return &p384Priv{k: k}, nil
}

func (p384Curve) NewPublicKey(b []byte) (PublicKey, error) {
	p, err := p384.NewPublicKey(b)
	if err != nil {
		return nil, err
	}
	return &p384Pub{p: p}, nil
}

func (p384Curve) ScalarFromBytesChecked(b []byte) (Scalar, bool) {
	var s p384.Scalar
	if !s.SetBytesChecked(b) {
		return nil, false
	}
	return &p384Scalar{s: s}, true
}

func (p384Curve) ScalarFromBytesReduced(b []byte) Scalar {
	var s p384.Scalar
	s.SetBytesReduced(b)
	return &p384Scalar{s: s}
}
