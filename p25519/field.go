// Package p25519 implements arithmetic modulo the prime 2^255 - 19 and
// modulo the edwards25519 group order L, shared by the x25519 and
// ed25519 packages.
//
// Field elements follow the library-wide Montgomery convention: point
// formulas work on Montgomery residues, with conversion only at the byte
// boundaries. Byte encodings are little-endian throughout, as everything
// in the 25519 world is.
package p25519

import (
	"unsafe"

	"ctcrypto.dev/low"
)

// Element is an integer modulo 2^255 - 19 as four little-endian limbs,
// canonical or Montgomery residue depending on the call site.
type Element struct {
	v [4]uint64
}

var (
	// fieldP is 2^255 - 19.
	fieldP = [4]uint64{0xffffffffffffffed, 0xffffffffffffffff, 0xffffffffffffffff, 0x7fffffffffffffff}

	// fieldPMinus2 is the Fermat inversion exponent.
	fieldPMinus2 = [4]uint64{0xffffffffffffffeb, 0xffffffffffffffff, 0xffffffffffffffff, 0x7fffffffffffffff}

	// sqrtExp is (p - 5) / 8, the exponent of the p = 5 (mod 8)
	// square-root trick.
	sqrtExp = [4]uint64{0xfffffffffffffffd, 0xffffffffffffffff, 0xffffffffffffffff, 0x0fffffffffffffff}

	fieldM0Inv   uint64
	fieldRR      Element
	fieldOneMont Element

	// SqrtM1 is sqrt(-1) = 2^((p-1)/4) as a Montgomery residue,
	// computed once at init.
	SqrtM1 Element
)

func init() {
	fieldM0Inv = low.NegInv(fieldP[0])
	low.Montifier(fieldRR.v[:], fieldP[:])
	low.MontOne(fieldOneMont.v[:], fieldRR.v[:], fieldP[:], fieldM0Inv)

	// (p - 1) / 4
	exp := [4]uint64{0xfffffffffffffffb, 0xffffffffffffffff, 0xffffffffffffffff, 0x1fffffffffffffff}
	var two Element
	two.v[0] = 2
	two.ToMont(&two)
	SqrtM1.Exp(&two, exp[:])
}

// One returns the Montgomery representation of 1.
func One() Element {
	return fieldOneMont
}

// SetBytesLE reads 32 little-endian bytes, ignores the top bit, and
// reduces the value modulo p. The result is a canonical residue.
func (e *Element) SetBytesLE(b []byte) {
	if len(b) != 32 {
		panic("p25519: element encoding must be 32 bytes")
	}
	low.BytesLEToLimbs(e.v[:], b)
	e.v[3] &= 0x7fffffffffffffff
	var sub [4]uint64
	borrow := low.Sub(sub[:], e.v[:], fieldP[:])
	low.Mux(low.MaskFromBit(borrow^1), e.v[:], sub[:], e.v[:])
}

// SetBytesLEChecked reads 32 little-endian bytes including the top bit
// and fails when the value is not below p.
func (e *Element) SetBytesLEChecked(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	var v [4]uint64
	low.BytesLEToLimbs(v[:], b)
	if low.CmpLt(v[:], fieldP[:]) != 1 {
		return false
	}
	e.v = v
	return true
}

// BytesLE writes the canonical residue as 32 little-endian bytes.
func (e *Element) BytesLE(out []byte) {
	low.LimbsToBytesLE(out[:32], e.v[:])
}

// Limb returns limb i; used to pack points into lookup tables.
func (e *Element) Limb(i int) uint64 { return e.v[i] }

// SetLimbs stores a raw limb array; the caller guarantees the value is a
// residue below p.
func (e *Element) SetLimbs(v [4]uint64) { e.v = v }

// Add sets e = x + y mod p. Works in either residue domain.
func (e *Element) Add(x, y *Element) {
	low.ModAdd(e.v[:], x.v[:], y.v[:], fieldP[:])
}

// Sub sets e = x - y mod p.
func (e *Element) Sub(x, y *Element) {
	low.ModSub(e.v[:], x.v[:], y.v[:], fieldP[:])
}

// Neg sets e = -x mod p.
func (e *Element) Neg(x *Element) {
	var zero Element
	low.ModSub(e.v[:], zero.v[:], x.v[:], fieldP[:])
}

// Mul sets e = x*y*R^-1 mod p (Montgomery multiplication).
func (e *Element) Mul(x, y *Element) {
	low.Montmul(e.v[:], x.v[:], y.v[:], fieldP[:], fieldM0Inv)
}

// Sqr sets e = x*x*R^-1 mod p.
func (e *Element) Sqr(x *Element) {
	low.Montmul(e.v[:], x.v[:], x.v[:], fieldP[:], fieldM0Inv)
}

// ToMont converts a canonical residue into Montgomery form.
func (e *Element) ToMont(x *Element) {
	e.Mul(x, &fieldRR)
}

// FromMont strips the Montgomery factor.
func (e *Element) FromMont(x *Element) {
	one := Element{v: [4]uint64{1}}
	e.Mul(x, &one)
}

// Inv inverts a Montgomery residue by Fermat exponentiation with the
// public exponent p-2, staying in Montgomery form.
func (e *Element) Inv(x *Element) {
	e.Exp(x, fieldPMinus2[:])
}

// SqrtCandidate computes x^((p-5)/8) in Montgomery form, the candidate
// root used by the edwards25519 decoder.
func (e *Element) SqrtCandidate(x *Element) {
	e.Exp(x, sqrtExp[:])
}

// Exp raises a Montgomery residue to a public exponent.
func (e *Element) Exp(x *Element, exponent []uint64) {
	var z [4]uint64
	low.MontExpVartime(z[:], x.v[:], exponent, fieldP[:], fieldM0Inv, fieldOneMont.v[:])
	e.v = z
}

// IsZero returns 1 when e is zero. Constant time.
func (e *Element) IsZero() uint64 {
	return low.IsZero(e.v[:])
}

// Equal returns 1 when the elements are equal. Constant time.
func (e *Element) Equal(x *Element) uint64 {
	return low.Eq(e.v[:], x.v[:])
}

// IsOdd returns the low bit of a canonical residue.
func (e *Element) IsOdd() uint64 {
	return e.v[0] & 1
}

// CondAssign sets e = x when mask is all-ones.
func (e *Element) CondAssign(mask uint64, x *Element) {
	low.CondAssign(mask, e.v[:], x.v[:])
}

// CondSwap exchanges e and x when mask is all-ones.
func (e *Element) CondSwap(mask uint64, x *Element) {
	low.CondSwap(mask, e.v[:], x.v[:])
}

// Clear wipes the element.
func (e *Element) Clear() {
	low.Memclear(unsafe.Pointer(&e.v[0]), unsafe.Sizeof(e.v))
}
