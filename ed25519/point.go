// Package ed25519 implements the Ed25519 signature scheme of RFC 8032:
// extended twisted-Edwards point arithmetic, point compression and
// decoding, fixed-base and double-base scalar multiplication, and the
// keygen/sign/verify protocol.
package ed25519

import (
	"math/bits"

	"ctcrypto.dev/low"
	"ctcrypto.dev/p25519"
)

// Point is an edwards25519 point in extended coordinates (X, Y, Z, T)
// with x = X/Z, y = Y/Z, x*y = T/Z, all components Montgomery residues.
// The identity is (0, 1, 1, 0).
type Point struct {
	x, y, z, t p25519.Element
}

var (
	// curve constants in Montgomery form, fixed at init:
	// d = -121665/121666, and 2d.
	constD  p25519.Element
	constD2 p25519.Element

	// basePoint is the standard generator B with y = 4/5.
	basePoint Point

	// baseTable holds {0*B ... 8*B} packed for constant-time lookup by
	// the signed-nibble fixed-base multiplier.
	baseTable [9 * pointLimbs]uint64

	// baseTable16 holds {0*B ... 15*B} for the variable-time verifier.
	baseTable16 [16]Point
)

const pointLimbs = 16

func init() {
	// d = -121665 * inv(121666) mod p
	var num, den, t p25519.Element
	raw := [32]byte{0x41, 0xdb, 0x01}
	num.SetBytesLE(raw[:])
	num.ToMont(&num)
	num.Neg(&num)
	raw[0] = 0x42
	den.SetBytesLE(raw[:])
	den.ToMont(&den)
	t.Inv(&den)
	constD.Mul(&num, &t)
	constD2.Add(&constD, &constD)

	// decode the standard compressed base point
	var enc [32]byte
	enc[0] = 0x58
	for i := 1; i < 32; i++ {
		enc[i] = 0x66
	}
	if !basePoint.Decompress(enc[:]) {
		panic("ed25519: base point decode failed")
	}

	// small multiples of B for both multipliers
	var acc Point
	acc.SetIdentity()
	for i := 0; i < 16; i++ {
		baseTable16[i] = acc
		if i < 9 {
			acc.pack(baseTable[i*pointLimbs : (i+1)*pointLimbs])
		}
		acc.Add(&acc, &basePoint)
	}
}

// SetIdentity stores the identity point (0, 1, 1, 0).
func (p *Point) SetIdentity() {
	one := p25519.One()
	p.x = p25519.Element{}
	p.y = one
	p.z = one
	p.t = p25519.Element{}
}

func (p *Point) pack(out []uint64) {
	for i := 0; i < 4; i++ {
		out[i] = p.x.Limb(i)
		out[4+i] = p.y.Limb(i)
		out[8+i] = p.z.Limb(i)
		out[12+i] = p.t.Limb(i)
	}
}

func (p *Point) unpack(in []uint64) {
	p.x.SetLimbs([4]uint64{in[0], in[1], in[2], in[3]})
	p.y.SetLimbs([4]uint64{in[4], in[5], in[6], in[7]})
	p.z.SetLimbs([4]uint64{in[8], in[9], in[10], in[11]})
	p.t.SetLimbs([4]uint64{in[12], in[13], in[14], in[15]})
}

// Add sets p = a + b using the complete extended formulas; no
// exceptional cases exist on this curve. Constant time.
func (p *Point) Add(a, b *Point) {
	var t1, t2, A, B, C, D, E, F, G, H p25519.Element

	t1.Sub(&a.y, &a.x)
	t2.Sub(&b.y, &b.x)
	A.Mul(&t1, &t2)
	t1.Add(&a.y, &a.x)
	t2.Add(&b.y, &b.x)
	B.Mul(&t1, &t2)
	C.Mul(&a.t, &constD2)
	C.Mul(&C, &b.t)
	D.Mul(&a.z, &b.z)
	D.Add(&D, &D)

	E.Sub(&B, &A)
	F.Sub(&D, &C)
	G.Add(&D, &C)
	H.Add(&B, &A)

	p.x.Mul(&E, &F)
	p.y.Mul(&G, &H)
	p.t.Mul(&E, &H)
	p.z.Mul(&F, &G)
}

// Double sets p = 2*a. Constant time; the identity doubles to itself.
func (p *Point) Double(a *Point) {
	var A, B, C, H, E, G, F, t1 p25519.Element

	A.Sqr(&a.x)
	B.Sqr(&a.y)
	C.Sqr(&a.z)
	C.Add(&C, &C)
	H.Add(&A, &B)
	t1.Add(&a.x, &a.y)
	t1.Sqr(&t1)
	E.Sub(&H, &t1)
	G.Sub(&A, &B)
	F.Add(&C, &G)

	p.x.Mul(&E, &F)
	p.y.Mul(&G, &H)
	p.t.Mul(&E, &H)
	p.z.Mul(&F, &G)
}

// Neg sets p = -a: (-X, Y, Z, -T).
func (p *Point) Neg(a *Point) {
	p.x.Neg(&a.x)
	p.y = a.y
	p.z = a.z
	p.t.Neg(&a.t)
}

// condNeg negates p when mask is all-ones.
func (p *Point) condNeg(mask uint64) {
	var nx, nt p25519.Element
	nx.Neg(&p.x)
	nt.Neg(&p.t)
	p.x.CondAssign(mask, &nx)
	p.t.CondAssign(mask, &nt)
}

// Equal reports whether two points are equal as curve points,
// cross-multiplying through the projective factors. Variable time.
func (p *Point) Equal(a *Point) bool {
	var l, r p25519.Element
	l.Mul(&p.x, &a.z)
	r.Mul(&a.x, &p.z)
	if l.Equal(&r) != 1 {
		return false
	}
	l.Mul(&p.y, &a.z)
	r.Mul(&a.y, &p.z)
	return l.Equal(&r) == 1
}

// Compress encodes the point: y as 32 little-endian bytes with the top
// bit holding the parity of x.
func (p *Point) Compress(out []byte) {
	var zinv, x, y p25519.Element
	zinv.Inv(&p.z)
	x.Mul(&p.x, &zinv)
	y.Mul(&p.y, &zinv)
	x.FromMont(&x)
	y.FromMont(&y)

	y.BytesLE(out[:32])
	out[31] |= byte(x.IsOdd() << 7)
}

// Decompress decodes a compressed point, returning false when the y
// value is out of range, no square root exists, or the encoding is the
// non-canonical x = 0 with the sign bit set.
func (p *Point) Decompress(in []byte) bool {
	if len(in) != 32 {
		return false
	}
	var yb [32]byte
	copy(yb[:], in)
	xSign := uint64(yb[31] >> 7)
	yb[31] &= 0x7f

	var y p25519.Element
	if !y.SetBytesLEChecked(yb[:]) {
		return false
	}

	// x^2 = (y^2 - 1) / (d*y^2 + 1)
	one := p25519.One()
	var ym, y2, u, v p25519.Element
	ym.ToMont(&y)
	y2.Sqr(&ym)
	u.Sub(&y2, &one)
	v.Mul(&constD, &y2)
	v.Add(&v, &one)

	// candidate root x = u*v^3 * (u*v^7)^((p-5)/8)
	var v2, v3, v7, uv3, uv7, x p25519.Element
	v2.Sqr(&v)
	v3.Mul(&v2, &v)
	v7.Sqr(&v3)
	v7.Mul(&v7, &v)
	uv3.Mul(&u, &v3)
	uv7.Mul(&u, &v7)
	x.SqrtCandidate(&uv7)
	x.Mul(&x, &uv3)

	// check v*x^2 == u or -u
	var vx2, negU p25519.Element
	vx2.Sqr(&x)
	vx2.Mul(&vx2, &v)
	negU.Neg(&u)

	switch {
	case vx2.Equal(&u) == 1:
		// x is correct
	case vx2.Equal(&negU) == 1:
		x.Mul(&x, &p25519.SqrtM1)
	default:
		return false
	}

	// select the root with the requested parity
	var xc p25519.Element
	xc.FromMont(&x)
	if xc.IsZero() == 1 && xSign == 1 {
		return false
	}
	if xc.IsOdd() != xSign {
		x.Neg(&x)
	}

	p.x = x
	p.y = ym
	p.z = one
	var t p25519.Element
	t.Mul(&x, &ym)
	p.t = t
	return true
}

// lookupBase reads baseTable row idx while touching every row.
func lookupBase(p *Point, idx uint64) {
	var row [pointLimbs]uint64
	low.CopyRowFromTable(row[:], baseTable[:], 9, pointLimbs, idx)
	p.unpack(row[:])
}

// BaseMul computes scalar*B in constant time. The scalar is reduced
// modulo L first, then recoded into signed nibbles by adding the fixed
// recode constant 0x8888...8 and reading each digit minus eight.
func BaseMul(scalar *p25519.Scalar) Point {
	var reduced p25519.Scalar
	var wide [32]byte
	scalar.BytesLE(wide[:])
	reduced.SetBytesLEReduced(wide[:])

	limbs := reduced.Limbs()
	// add the recode constant; the sum stays below 2^256 because the
	// reduced scalar is below 2^253
	var carry uint64
	for i := 0; i < 4; i++ {
		limbs[i], carry = bits.Add64(limbs[i], 0x8888888888888888, carry)
	}

	var acc, entry Point
	acc.SetIdentity()
	for i := 63; i >= 0; i-- {
		if i != 63 {
			acc.Double(&acc)
			acc.Double(&acc)
			acc.Double(&acc)
			acc.Double(&acc)
		}
		digit := int64((limbs[i/16]>>((i%16)*4))&0xf) - 8
		signMask := uint64(digit >> 63)
		abs := uint64((digit ^ int64(signMask)) - int64(signMask))
		lookupBase(&entry, abs)
		entry.condNeg(signMask)
		acc.Add(&acc, &entry)
	}

	reduced.Clear()
	low.ZeroizeBytes(wide[:])
	low.Zeroize(limbs[:])
	return acc
}

// DoubleScalarMul computes scalar*P + bscalar*B. Variable time; only
// signature verification, which handles public data, may use it.
func DoubleScalarMul(scalar *p25519.Scalar, point *Point, bscalar *p25519.Scalar) Point {
	var pTable [16]Point
	var acc Point
	acc.SetIdentity()
	for i := 0; i < 16; i++ {
		pTable[i] = acc
		acc.Add(&acc, point)
	}

	sa := scalar.Limbs()
	sb := bscalar.Limbs()

	acc.SetIdentity()
	for i := 63; i >= 0; i-- {
		if i != 63 {
			acc.Double(&acc)
			acc.Double(&acc)
			acc.Double(&acc)
			acc.Double(&acc)
		}
		na := (sa[i/16] >> ((i % 16) * 4)) & 0xf
		nb := (sb[i/16] >> ((i % 16) * 4)) & 0xf
		if na != 0 {
			acc.Add(&acc, &pTable[na])
		}
		if nb != 0 {
			acc.Add(&acc, &baseTable16[nb])
		}
	}
	return acc
}
