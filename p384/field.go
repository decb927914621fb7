// Package p384 implements field, scalar and point arithmetic for the
// NIST P-384 curve, plus key agreement and the raw ECDSA operations.
// It mirrors the p256 package at a limb width of six.
package p384

import (
	"unsafe"

	"ctcrypto.dev/low"
)

// FieldElement is an integer modulo the field prime
// p = 2^384 - 2^128 - 2^96 + 2^32 - 1, as six little-endian limbs.
type FieldElement struct {
	v [6]uint64
}

var (
	fieldP = [6]uint64{
		0x00000000ffffffff, 0xffffffff00000000, 0xfffffffffffffffe,
		0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
	}

	// fieldPMinus2 is the Fermat inversion exponent.
	fieldPMinus2 = [6]uint64{
		0x00000000fffffffd, 0xffffffff00000000, 0xfffffffffffffffe,
		0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
	}

	// curveB is the canonical curve coefficient; a is p - 3.
	curveB = [6]uint64{
		0x2a85c8edd3ec2aef, 0xc656398d8a2ed19d, 0x0314088f5013875a,
		0x181d9c6efe814112, 0x988e056be3f82d19, 0xb3312fa7e23ee7e4,
	}

	// Derived Montgomery constants, fixed at init.
	fieldM0Inv   uint64
	fieldRR      FieldElement
	fieldOneMont FieldElement
	curveAMont   FieldElement
	curveBMont   FieldElement
)

func init() {
	fieldM0Inv = low.NegInv(fieldP[0])
	low.Montifier(fieldRR.v[:], fieldP[:])
	low.MontOne(fieldOneMont.v[:], fieldRR.v[:], fieldP[:], fieldM0Inv)

	a := FieldElement{v: fieldP}
	a.v[0] -= 3
	curveAMont.toMont(&a)
	b := FieldElement{v: curveB}
	curveBMont.toMont(&b)
}

// setBytes parses 48 big-endian bytes as a canonical residue, rejecting
// values at or above p.
func (r *FieldElement) setBytes(b []byte) bool {
	if len(b) != 48 {
		return false
	}
	if !low.BytesBEToLimbs(r.v[:], b) {
		return false
	}
	return low.CmpLt(r.v[:], fieldP[:]) == 1
}

// bytes writes the canonical residue as 48 big-endian bytes.
func (r *FieldElement) bytes(out []byte) {
	low.LimbsToBytesBE(out[:48], r.v[:])
}

func (r *FieldElement) add(x, y *FieldElement) {
	low.ModAdd(r.v[:], x.v[:], y.v[:], fieldP[:])
}

func (r *FieldElement) sub(x, y *FieldElement) {
	low.ModSub(r.v[:], x.v[:], y.v[:], fieldP[:])
}

func (r *FieldElement) montMul(x, y *FieldElement) {
	low.Montmul(r.v[:], x.v[:], y.v[:], fieldP[:], fieldM0Inv)
}

func (r *FieldElement) montSqr(x *FieldElement) {
	low.Montmul(r.v[:], x.v[:], x.v[:], fieldP[:], fieldM0Inv)
}

func (r *FieldElement) toMont(x *FieldElement) {
	r.montMul(x, &fieldRR)
}

func (r *FieldElement) demont(x *FieldElement) {
	one := FieldElement{v: [6]uint64{1}}
	r.montMul(x, &one)
}

// montInv inverts a Montgomery residue by Fermat exponentiation with the
// public exponent p-2.
func (r *FieldElement) montInv(x *FieldElement) {
	var z [6]uint64
	low.MontExpVartime(z[:], x.v[:], fieldPMinus2[:], fieldP[:], fieldM0Inv, fieldOneMont.v[:])
	r.v = z
}

func (r *FieldElement) isZero() uint64 {
	return low.IsZero(r.v[:])
}

func (r *FieldElement) publicEq(x *FieldElement) bool {
	return r.v == x.v
}

func (r *FieldElement) clear() {
	low.Memclear(unsafe.Pointer(&r.v[0]), unsafe.Sizeof(r.v))
}
