// Package drbg implements the HMAC_DRBG deterministic random bit
// generator of NIST SP 800-90A, parameterised by any hash from the root
// package. The ecdsa package instantiates it per RFC 6979 to derive
// signature nonces.
package drbg

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

// Drbg is an instantiated HMAC_DRBG. It implements
// ctcrypto.RandomSource; Generate never fails.
type Drbg struct {
	hash ctcrypto.Hash
	k    []byte
	v    []byte
}

// hmac computes HMAC(key, parts...) over the configured hash.
func (d *Drbg) hmac(key []byte, parts ...[]byte) []byte {
	bs := d.hash.BlockSize()
	pad := make([]byte, bs)
	if len(key) > bs {
		copy(pad, d.hash.Hash(key))
	} else {
		copy(pad, key)
	}

	for i := range pad {
		pad[i] ^= 0x36
	}
	inner := d.hash.New()
	inner.Update(pad)
	for _, p := range parts {
		inner.Update(p)
	}
	innerSum := inner.Finish()

	for i := range pad {
		pad[i] ^= 0x36 ^ 0x5c
	}
	outer := d.hash.New()
	outer.Update(pad)
	outer.Update(innerSum)
	out := outer.Finish()

	low.ZeroizeBytes(pad)
	low.ZeroizeBytes(innerSum)
	return out
}

// update is the HMAC_DRBG Update function.
func (d *Drbg) update(provided []byte) {
	d.k = d.hmac(d.k, d.v, []byte{0x00}, provided)
	d.v = d.hmac(d.k, d.v)
	if len(provided) != 0 {
		d.k = d.hmac(d.k, d.v, []byte{0x01}, provided)
		d.v = d.hmac(d.k, d.v)
	}
}

// New instantiates the generator from entropy, a nonce, and an optional
// personalization string. RFC 6979 signing seeds these with the encoded
// private key, the message scalar, and the supplementary randomness.
func New(hash ctcrypto.Hash, entropy, nonce, personalization []byte) *Drbg {
	hlen := hash.Size()
	d := &Drbg{
		hash: hash,
		k:    make([]byte, hlen),
		v:    make([]byte, hlen),
	}
	for i := range d.v {
		d.v[i] = 0x01
	}

	seed := make([]byte, 0, len(entropy)+len(nonce)+len(personalization))
	seed = append(seed, entropy...)
	seed = append(seed, nonce...)
	seed = append(seed, personalization...)
	d.update(seed)
	low.ZeroizeBytes(seed)
	return d
}

// Generate fills out with generator output.
func (d *Drbg) Generate(out []byte) {
	rest := out
	for len(rest) > 0 {
		d.v = d.hmac(d.k, d.v)
		n := copy(rest, d.v)
		rest = rest[n:]
	}
	d.update(nil)
}

// Fill implements ctcrypto.RandomSource; it never fails.
func (d *Drbg) Fill(buf []byte) error {
	d.Generate(buf)
	return nil
}

// Clear wipes the generator state.
func (d *Drbg) Clear() {
	low.ZeroizeBytes(d.k)
	low.ZeroizeBytes(d.v)
}
