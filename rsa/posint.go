// Package rsa implements RSA signing, verification and key generation
// for public moduli between 2048 and 8192 bits. Two-prime keys only;
// the public exponent is fixed at F4 = 65537 for generated keys.
package rsa

import (
	"math/bits"

	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

const (
	// maxModulusLimbs holds an 8192-bit public modulus.
	maxModulusLimbs = 128

	// maxPrimeLimbs holds a 4096-bit prime factor.
	maxPrimeLimbs = 64

	minModulusBits = 2048
	maxModulusBits = 8192
)

// posInt is a positive integer of up to 8192 bits: a fixed limb array
// plus the number of limbs in use. setBytes takes the limb count from the
// byte length left after leading zero bytes are trimmed; the arithmetic
// methods take it from the widths of their operands.
type posInt struct {
	w [maxModulusLimbs]uint64
	n int
}

// limbs returns the active limbs.
func (x *posInt) limbs() []uint64 { return x.w[:x.n] }

// setBytes parses a big-endian byte string. Leading zero bytes are
// permitted; the limb count comes from the trimmed length.
func (x *posInt) setBytes(b []byte) error {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) > maxModulusLimbs*8 {
		return ctcrypto.ErrOutOfRange
	}
	x.n = (len(b) + 7) / 8
	if x.n == 0 {
		x.n = 1
	}
	for i := range x.w {
		x.w[i] = 0
	}
	low.BytesBEToLimbs(x.w[:x.n], b)
	return nil
}

// bytesSized writes the value big-endian into exactly size bytes,
// failing when it does not fit.
func (x *posInt) bytesSized(out []byte, size int) error {
	var tmp [maxModulusLimbs * 8]byte
	low.LimbsToBytesBE(tmp[:x.n*8], x.limbs())
	// trim to significant bytes
	sig := tmp[:x.n*8]
	for len(sig) > 1 && sig[0] == 0 {
		sig = sig[1:]
	}
	if len(sig) > size {
		return ctcrypto.ErrOutOfRange
	}
	pad := size - len(sig)
	for i := 0; i < pad; i++ {
		out[i] = 0
	}
	copy(out[pad:], sig)
	return nil
}

// setWord stores a single-limb value.
func (x *posInt) setWord(v uint64) {
	for i := range x.w {
		x.w[i] = 0
	}
	x.w[0] = v
	x.n = 1
}

// resize widens (or narrows) the active limb count; widening zero-fills.
func (x *posInt) resize(n int) {
	for i := x.n; i < n; i++ {
		x.w[i] = 0
	}
	x.n = n
}

// bitLen returns the numeric bit length. Variable time; call only where
// the answer is public (modulus sizing).
func (x *posInt) bitLen() uint {
	return low.BitLen(x.limbs())
}

// equals compares numeric values of possibly different widths.
// Constant time within each width class.
func (x *posInt) equals(y *posInt) bool {
	n := x.n
	if y.n > n {
		n = y.n
	}
	var a, b posInt
	a = *x
	b = *y
	a.resize(n)
	b.resize(n)
	return low.Eq(a.limbs(), b.limbs()) == 1
}

// lessThan reports x < y for same-width operands.
func (x *posInt) lessThan(y *posInt) bool {
	n := x.n
	if y.n > n {
		n = y.n
	}
	var a, b posInt
	a = *x
	b = *y
	a.resize(n)
	b.resize(n)
	return low.CmpLt(a.limbs(), b.limbs()) == 1
}

// isZero reports x == 0. Constant time.
func (x *posInt) isZero() bool {
	return low.IsZero(x.limbs()) == 1
}

// mul sets x = a * b. Widths add.
func (x *posInt) mul(a, b *posInt) {
	var out [2 * maxModulusLimbs]uint64
	low.Mul(out[:a.n+b.n], a.limbs(), b.limbs())
	n := a.n + b.n
	if n > maxModulusLimbs {
		n = maxModulusLimbs
	}
	copy(x.w[:n], out[:n])
	for i := n; i < maxModulusLimbs; i++ {
		x.w[i] = 0
	}
	x.n = n
	low.Zeroize(out[:a.n+b.n])
}

// subWord sets x = a - v for a >= v.
func (x *posInt) subWord(a *posInt, v uint64) {
	*x = *a
	var vv posInt
	vv.setWord(v)
	vv.resize(a.n)
	low.Sub(x.limbs(), a.limbs(), vv.limbs())
}

// reduce sets x = a mod m, for any width of a. Constant time.
func (x *posInt) reduce(a, m *posInt) {
	var out [maxModulusLimbs]uint64
	low.ModReduce(out[:m.n], a.limbs(), m.limbs())
	for i := range x.w {
		x.w[i] = 0
	}
	copy(x.w[:m.n], out[:m.n])
	x.n = m.n
	low.Zeroize(out[:m.n])
}

// modWord returns a mod v for a public single-word modulus v. The loop
// structure is fixed by the widths.
func (x *posInt) modWord(v uint64) uint64 {
	var r uint64
	for i := x.n - 1; i >= 0; i-- {
		_, r = div128(r, x.w[i], v)
	}
	return r
}

// divWordExact sets x = a / v where the division is known to be exact.
func (x *posInt) divWordExact(a *posInt, v uint64) {
	var r uint64
	for i := range x.w {
		x.w[i] = 0
	}
	x.n = a.n
	for i := a.n - 1; i >= 0; i-- {
		x.w[i], r = div128(r, a.w[i], v)
	}
	if r != 0 {
		panic("rsa: division expected to be exact")
	}
}

// clear wipes the value.
func (x *posInt) clear() {
	low.Zeroize(x.w[:])
	x.n = 0
}

// montCtx bundles the Montgomery machinery for one odd modulus.
type montCtx struct {
	m     posInt
	m0inv uint64
	rr    posInt
	one   posInt
}

// newMontCtx derives the Montgomery constants for odd modulus m.
func newMontCtx(m *posInt) *montCtx {
	ctx := &montCtx{m: *m}
	ctx.m0inv = low.NegInv(m.w[0])
	ctx.rr.resize(m.n)
	low.Montifier(ctx.rr.limbs(), m.limbs())
	ctx.rr.n = m.n
	ctx.one.resize(m.n)
	low.MontOne(ctx.one.limbs(), ctx.rr.limbs(), m.limbs(), ctx.m0inv)
	ctx.one.n = m.n
	return ctx
}

// toMont converts x (reduced mod m) into Montgomery form. x may carry
// fewer limbs than m (a DER integer with leading zero bytes trimmed);
// it is widened first.
func (c *montCtx) toMont(z, x *posInt) {
	var xw posInt
	xw = *x
	xw.resize(c.m.n)
	z.resize(c.m.n)
	low.Montmul(z.limbs(), xw.limbs(), c.rr.limbs(), c.m.limbs(), c.m0inv)
	xw.clear()
}

// fromMont strips the Montgomery factor.
func (c *montCtx) fromMont(z, x *posInt) {
	var one posInt
	one.setWord(1)
	one.resize(c.m.n)
	z.resize(c.m.n)
	low.Montmul(z.limbs(), x.limbs(), one.limbs(), c.m.limbs(), c.m0inv)
}

// mulMod computes z = x * y mod m for reduced canonical inputs.
func (c *montCtx) mulMod(z, x, y *posInt) {
	var xm, yw posInt
	c.toMont(&xm, x)
	yw = *y
	yw.resize(c.m.n)
	z.resize(c.m.n)
	low.Montmul(z.limbs(), xm.limbs(), yw.limbs(), c.m.limbs(), c.m0inv)
	xm.clear()
	yw.clear()
}

// expConsttime computes z = x^e mod m with a secret exponent, via the
// Montgomery ladder over every bit of e.
func (c *montCtx) expConsttime(z, x, e *posInt) {
	var xm, zm posInt
	c.toMont(&xm, x)
	zm.resize(c.m.n)
	low.MontExpConsttime(zm.limbs(), xm.limbs(), e.limbs(), c.m.limbs(), c.m0inv, c.one.limbs())
	c.fromMont(z, &zm)
	xm.clear()
	zm.clear()
}

// expVartime computes z = x^e mod m for a public exponent.
func (c *montCtx) expVartime(z, x, e *posInt) {
	var xm, zm posInt
	c.toMont(&xm, x)
	zm.resize(c.m.n)
	low.MontExpVartime(zm.limbs(), xm.limbs(), e.limbs(), c.m.limbs(), c.m0inv, c.one.limbs())
	c.fromMont(z, &zm)
}

// div128 divides the 128-bit value hi:lo by v; hi < v always holds at
// the call sites.
func div128(hi, lo, v uint64) (quo, rem uint64) {
	return bits.Div64(hi, lo, v)
}
