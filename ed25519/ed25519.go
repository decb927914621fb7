package ed25519

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
	"ctcrypto.dev/p25519"
)

const (
	// SeedLen is the byte length of a private key seed.
	SeedLen = 32

	// PublicKeyLen is the byte length of a compressed public key.
	PublicKeyLen = 32

	// SignatureLen is the byte length of a signature (R || S).
	SignatureLen = 64
)

// VerifyingKey is an Ed25519 public key: the decoded point together with
// its canonical compressed encoding.
type VerifyingKey struct {
	bytes [32]byte
	point Point
}

// NewVerifyingKey decodes a 32-byte compressed public key.
func NewVerifyingKey(b []byte) (*VerifyingKey, error) {
	low.EntryPublic()
	if len(b) != PublicKeyLen {
		return nil, ctcrypto.ErrWrongLength
	}
	var k VerifyingKey
	copy(k.bytes[:], b)
	if !k.point.Decompress(b) {
		return nil, ctcrypto.ErrNotOnCurve
	}
	return &k, nil
}

// Bytes returns the compressed encoding.
func (k *VerifyingKey) Bytes() [32]byte {
	return k.bytes
}

// Verify checks a PureEd25519 signature over msg.
func (k *VerifyingKey) Verify(sig, msg []byte) error {
	low.EntryPublic()
	if len(sig) != SignatureLen {
		return ctcrypto.ErrBadSignature
	}
	rBytes := sig[:32]
	sBytes := sig[32:]

	// S must be below L to prevent signature malleability.
	var s p25519.Scalar
	if !s.SetBytesLEChecked(sBytes) {
		return ctcrypto.ErrBadSignature
	}

	// k := SHA-512(R || A || msg) mod L
	var kScalar p25519.Scalar
	kScalar.SetBytesLEReduced(challengeDigest(rBytes, k.bytes[:], msg))

	// R' := S*B - k*A, compared against the signature's R encoding
	var negA Point
	negA.Neg(&k.point)
	rPrime := DoubleScalarMul(&kScalar, &negA, &s)

	var rEnc [32]byte
	rPrime.Compress(rEnc[:])
	if low.CtBytesEq(rEnc[:], rBytes) != 1 {
		return ctcrypto.ErrBadSignature
	}
	return nil
}

// SigningKey is an Ed25519 private key: the seed, the clamped scalar s,
// the hash prefix, and the cached verifying key.
type SigningKey struct {
	seed      [32]byte
	s         p25519.Scalar
	prefix    [32]byte
	verifying VerifyingKey
}

// NewSigningKey derives a signing key from a 32-byte seed per RFC 8032
// section 5.1.5.
func NewSigningKey(seed []byte) (*SigningKey, error) {
	low.EntrySecret()
	if len(seed) != SeedLen {
		return nil, ctcrypto.ErrWrongLength
	}

	h := ctcrypto.SHA512{}.Hash(seed)
	var k SigningKey
	copy(k.seed[:], seed)
	copy(k.prefix[:], h[32:])

	var clamped [32]byte
	copy(clamped[:], h[:32])
	clamped[0] &= 0b1111_1000
	clamped[31] &= 0b0111_1111
	clamped[31] |= 0b0100_0000

	// the clamped scalar is held reduced mod L; every use of it (the
	// public key point and the response S) is invariant under reduction
	k.s.SetBytesLEReduced(clamped[:])

	point := BaseMul(&k.s)
	point.Compress(k.verifying.bytes[:])
	k.verifying.point = point

	low.ZeroizeBytes(h)
	low.ZeroizeBytes(clamped[:])
	return &k, nil
}

// GenerateKey draws a fresh seed from rng and derives a signing key.
func GenerateKey(rng ctcrypto.RandomSource) (*SigningKey, error) {
	low.EntrySecret()
	var seed [32]byte
	if err := rng.Fill(seed[:]); err != nil {
		return nil, ctcrypto.ErrRngFailed
	}
	k, err := NewSigningKey(seed[:])
	low.ZeroizeBytes(seed[:])
	return k, err
}

// Seed returns the 32-byte seed.
func (k *SigningKey) Seed() [32]byte {
	low.EntrySecret()
	return k.seed
}

// VerifyingKey returns the cached public key.
func (k *SigningKey) VerifyingKey() *VerifyingKey {
	vk := k.verifying
	return &vk
}

// Sign produces a PureEd25519 signature over msg per RFC 8032
// section 5.1.6.
func (k *SigningKey) Sign(msg []byte) [64]byte {
	low.EntrySecret()

	// r := SHA-512(prefix || msg) mod L
	var r p25519.Scalar
	r.SetBytesLEReduced(nonceDigest(k.prefix[:], msg))

	// R := r*B
	rPoint := BaseMul(&r)
	var sig [64]byte
	rPoint.Compress(sig[:32])

	// challenge := SHA-512(R || A || msg) mod L
	var challenge p25519.Scalar
	challenge.SetBytesLEReduced(challengeDigest(sig[:32], k.verifying.bytes[:], msg))

	// S := challenge*s + r mod L
	var s p25519.Scalar
	s.MulAdd(&challenge, &k.s, &r)
	s.BytesLE(sig[32:])

	r.Clear()
	s.Clear()
	return sig
}

// Clear wipes all private key material.
func (k *SigningKey) Clear() {
	low.ZeroizeBytes(k.seed[:])
	low.ZeroizeBytes(k.prefix[:])
	k.s.Clear()
}

func nonceDigest(prefix, msg []byte) []byte {
	ctx := ctcrypto.SHA512{}.New()
	ctx.Update(prefix)
	ctx.Update(msg)
	return ctx.Finish()
}

func challengeDigest(r, a, msg []byte) []byte {
	ctx := ctcrypto.SHA512{}.New()
	ctx.Update(r)
	ctx.Update(a)
	ctx.Update(msg)
	return ctx.Finish()
}
