// Package p256 implements field, scalar and point arithmetic for the
// NIST P-256 curve, together with key agreement and the raw ECDSA
// operations consumed by the ecdsa package.
//
// Field elements are held in Montgomery form (x*R mod p with R = 2^256)
// throughout the point formulas; conversion happens only at the byte
// boundaries. All operations on secret values are constant time.
package p256

import (
	"unsafe"

	"ctcrypto.dev/low"
)

// FieldElement is an integer modulo the field prime
// p = 2^256 - 2^224 + 2^192 + 2^96 - 1, as four little-endian limbs.
// Whether the value is a canonical residue or a Montgomery residue is a
// property of the call site; the two forms never mix.
type FieldElement struct {
	v [4]uint64
}

var (
	// fieldP is the field prime.
	fieldP = [4]uint64{0xffffffffffffffff, 0x00000000ffffffff, 0x0000000000000000, 0xffffffff00000001}

	// fieldRR is R^2 mod p, the to-Montgomery multiplier.
	fieldRR = FieldElement{v: [4]uint64{0x0000000000000003, 0xfffffffbffffffff, 0xfffffffffffffffe, 0x00000004fffffffd}}

	// fieldOneMont is R mod p, the Montgomery representation of 1.
	fieldOneMont = FieldElement{v: [4]uint64{0x0000000000000001, 0xffffffff00000000, 0xffffffffffffffff, 0x00000000fffffffe}}

	// curveAMont and curveBMont are the curve coefficients in Montgomery
	// form (a = -3).
	curveAMont = FieldElement{v: [4]uint64{0xfffffffffffffffc, 0x00000003ffffffff, 0x0000000000000000, 0xfffffffc00000004}}
	curveBMont = FieldElement{v: [4]uint64{0xd89cdf6229c4bddf, 0xacf005cd78843090, 0xe5a220abf7212ed6, 0xdc30061d04874834}}
)

// fieldM0Inv is -p^-1 mod 2^64. The low limb of p is 2^64-1, so this
// constant is 1; the per-word Montgomery quotient needs no multiply.
const fieldM0Inv = 1

// setBytes parses 32 big-endian bytes as a canonical residue. Values at
// or above p are rejected.
func (r *FieldElement) setBytes(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	if !low.BytesBEToLimbs(r.v[:], b) {
		return false
	}
	return low.CmpLt(r.v[:], fieldP[:]) == 1
}

// bytes writes the canonical residue as 32 big-endian bytes.
func (r *FieldElement) bytes(out []byte) {
	low.LimbsToBytesBE(out[:32], r.v[:])
}

// add sets r = x + y mod p. Inputs reduced, output reduced.
func (r *FieldElement) add(x, y *FieldElement) {
	low.ModAdd(r.v[:], x.v[:], y.v[:], fieldP[:])
}

// sub sets r = x - y mod p.
func (r *FieldElement) sub(x, y *FieldElement) {
	low.ModSub(r.v[:], x.v[:], y.v[:], fieldP[:])
}

// montMul sets r = x*y*R^-1 mod p.
func (r *FieldElement) montMul(x, y *FieldElement) {
	low.Montmul(r.v[:], x.v[:], y.v[:], fieldP[:], fieldM0Inv)
}

// montSqr sets r = x*x*R^-1 mod p.
func (r *FieldElement) montSqr(x *FieldElement) {
	low.Montmul(r.v[:], x.v[:], x.v[:], fieldP[:], fieldM0Inv)
}

// montSqrN squares n times.
func (r *FieldElement) montSqrN(x *FieldElement, n int) {
	*r = *x
	for i := 0; i < n; i++ {
		r.montSqr(r)
	}
}

// toMont converts a canonical residue into Montgomery form.
func (r *FieldElement) toMont(x *FieldElement) {
	r.montMul(x, &fieldRR)
}

// demont strips the Montgomery factor, yielding the canonical residue.
func (r *FieldElement) demont(x *FieldElement) {
	one := FieldElement{v: [4]uint64{1, 0, 0, 0}}
	r.montMul(x, &one)
}

// montInv computes the inverse of a Montgomery residue, staying in
// Montgomery form. Fermat exponentiation by p-2 with the fixed addition
// chain; the exponent is public, so this is constant time in the input.
func (r *FieldElement) montInv(x *FieldElement) {
	var z, t0, t1 FieldElement

	z.montSqr(x)
	z.montMul(x, &z)
	z.montSqr(&z)
	z.montMul(x, &z)

	t0.montSqrN(&z, 3)
	t0.montMul(&z, &t0)
	t1.montSqrN(&t0, 6)
	t0.montMul(&t0, &t1)

	t0.montSqrN(&t0, 3)
	z.montMul(&z, &t0)
	t0.montSqr(&z)
	t0.montMul(x, &t0)

	t1.montSqrN(&t0, 16)
	t0.montMul(&t0, &t1)
	t0.montSqrN(&t0, 15)
	z.montMul(&z, &t0)

	t0.montSqrN(&t0, 17)
	t0.montMul(x, &t0)
	t0.montSqrN(&t0, 143)
	t0.montMul(&z, &t0)

	t0.montSqrN(&t0, 47)
	z.montMul(&z, &t0)
	z.montSqrN(&z, 2)
	r.montMul(x, &z)
}

// isZero returns 1 when r is zero. Constant time.
func (r *FieldElement) isZero() uint64 {
	return low.IsZero(r.v[:])
}

// privateEq returns 1 when the two elements are equal. Constant time.
func (r *FieldElement) privateEq(x *FieldElement) uint64 {
	return low.Eq(r.v[:], x.v[:])
}

// publicEq compares two elements whose values are public.
func (r *FieldElement) publicEq(x *FieldElement) bool {
	return r.v == x.v
}

// clear wipes the element.
func (r *FieldElement) clear() {
	low.Memclear(unsafe.Pointer(&r.v[0]), unsafe.Sizeof(r.v))
}
