// Package x25519 implements the X25519 Diffie-Hellman function from
// RFC 7748 on top of the p25519 field package.
package x25519

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
	"ctcrypto.dev/p25519"
)

// KeyLen is the byte length of private keys, public keys and shared
// secrets.
const KeyLen = 32

// clamp applies the canonical scalar clamp: clear the low three bits,
// clear the top bit, set bit 254.
func clamp(k *[32]byte) {
	k[0] &= 0b1111_1000
	k[31] &= 0b0111_1111
	k[31] |= 0b0100_0000
}

// ladder computes the x-coordinate of scalar*P where P has u-coordinate
// u, processing scalar bits high to low with conditional swaps.
// Constant time.
func ladder(out *[32]byte, scalar *[32]byte, u []byte) {
	var k [32]byte
	copy(k[:], scalar[:])
	clamp(&k)

	var x1, x2, z2, x3, z3, a24 p25519.Element
	x1.SetBytesLE(u)
	x1.ToMont(&x1)

	one := p25519.One()
	x2 = one
	x3 = x1
	z3 = one

	var c p25519.Element
	// a24 = (A - 2) / 4 = 121665
	cRaw := [32]byte{0x41, 0xdb, 0x01, 0x00}
	c.SetBytesLE(cRaw[:])
	a24.ToMont(&c)

	var swap uint64
	for t := 254; t >= 0; t-- {
		kt := uint64(k[t>>3]>>(t&7)) & 1
		swap ^= kt
		mask := low.MaskFromBit(swap)
		x2.CondSwap(mask, &x3)
		z2.CondSwap(mask, &z3)
		swap = kt

		var a, aa, b, bb, e, cc, d, da, cb, t1, t2 p25519.Element
		a.Add(&x2, &z2)
		aa.Sqr(&a)
		b.Sub(&x2, &z2)
		bb.Sqr(&b)
		e.Sub(&aa, &bb)
		cc.Add(&x3, &z3)
		d.Sub(&x3, &z3)
		da.Mul(&d, &a)
		cb.Mul(&cc, &b)

		t1.Add(&da, &cb)
		x3.Sqr(&t1)
		t2.Sub(&da, &cb)
		t2.Sqr(&t2)
		z3.Mul(&x1, &t2)

		x2.Mul(&aa, &bb)
		t1.Mul(&a24, &e)
		t1.Add(&aa, &t1)
		z2.Mul(&e, &t1)
	}
	mask := low.MaskFromBit(swap)
	x2.CondSwap(mask, &x3)
	z2.CondSwap(mask, &z3)

	var zinv, res p25519.Element
	zinv.Inv(&z2)
	res.Mul(&x2, &zinv)
	res.FromMont(&res)
	res.BytesLE(out[:])

	k = [32]byte{}
	x2.Clear()
	z2.Clear()
	x3.Clear()
	z3.Clear()
}

// basePointU is the u-coordinate of the curve25519 base point.
var basePointU = [32]byte{9}

// PublicKey is an X25519 public key: 32 little-endian bytes.
type PublicKey [32]byte

// NewPublicKey copies a 32-byte public key encoding.
func NewPublicKey(b []byte) (PublicKey, error) {
	low.EntryPublic()
	var p PublicKey
	if len(b) != KeyLen {
		return p, ctcrypto.ErrWrongLength
	}
	copy(p[:], b)
	return p, nil
}

// SharedSecret is the output of a Diffie-Hellman exchange.
type SharedSecret [32]byte

// Clear wipes the shared secret.
func (s *SharedSecret) Clear() {
	low.ZeroizeBytes(s[:])
}

// PrivateKey is a single-use ephemeral X25519 private key. Use
// StaticPrivateKey when the key must be serialized or reused.
type PrivateKey struct {
	k [32]byte
}

// GenerateKey draws a fresh private key from rng.
func GenerateKey(rng ctcrypto.RandomSource) (*PrivateKey, error) {
	low.EntrySecret()
	var k PrivateKey
	if err := rng.Fill(k.k[:]); err != nil {
		return nil, ctcrypto.ErrRngFailed
	}
	return &k, nil
}

// PublicKey computes the associated public key.
func (k *PrivateKey) PublicKey() PublicKey {
	low.EntrySecret()
	var out [32]byte
	ladder(&out, &k.k, basePointU[:])
	return PublicKey(out)
}

// DiffieHellman computes the shared secret with a peer public key. An
// all-zero result (small-order peer point) is rejected with
// ErrNotOnCurve, per RFC 7748 section 6.1.
func (k *PrivateKey) DiffieHellman(peer *PublicKey) (SharedSecret, error) {
	low.EntrySecret()
	var out [32]byte
	ladder(&out, &k.k, peer[:])

	var allZero [32]byte
	if low.CtBytesEq(out[:], allZero[:]) == 1 {
		return SharedSecret{}, ctcrypto.ErrNotOnCurve
	}
	return SharedSecret(out), nil
}

// Clear wipes the private key.
func (k *PrivateKey) Clear() {
	low.ZeroizeBytes(k.k[:])
}

// StaticPrivateKey is a multi-use X25519 private key, as needed by
// protocols like 3DH or HPKE.
type StaticPrivateKey struct {
	inner PrivateKey
}

// NewStaticPrivateKey copies a 32-byte private key encoding.
func NewStaticPrivateKey(b []byte) (*StaticPrivateKey, error) {
	low.EntrySecret()
	if len(b) != KeyLen {
		return nil, ctcrypto.ErrWrongLength
	}
	var k StaticPrivateKey
	copy(k.inner.k[:], b)
	return &k, nil
}

// GenerateStaticKey draws a fresh static private key from rng.
func GenerateStaticKey(rng ctcrypto.RandomSource) (*StaticPrivateKey, error) {
	low.EntrySecret()
	k, err := GenerateKey(rng)
	if err != nil {
		return nil, err
	}
	return &StaticPrivateKey{inner: *k}, nil
}

// Bytes returns the private key encoding.
func (k *StaticPrivateKey) Bytes() [32]byte {
	low.EntrySecret()
	return k.inner.k
}

// PublicKey computes the associated public key.
func (k *StaticPrivateKey) PublicKey() PublicKey {
	return k.inner.PublicKey()
}

// DiffieHellman computes the shared secret with a peer public key.
func (k *StaticPrivateKey) DiffieHellman(peer *PublicKey) (SharedSecret, error) {
	return k.inner.DiffieHellman(peer)
}

// Clear wipes the private key.
func (k *StaticPrivateKey) Clear() {
	k.inner.Clear()
}
