package p384

import (
	"unsafe"

	"ctcrypto.dev/low"
)

// Scalar is an integer modulo the group order n, as six little-endian
// limbs in canonical form.
type Scalar struct {
	d [6]uint64
}

// ScalarLen is the byte length of an encoded scalar.
const ScalarLen = 48

var (
	scalarN = [6]uint64{
		0xecec196accc52973, 0x581a0db248b0a77a, 0xc7634d81f4372ddf,
		0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
	}

	scalarNMinus2 = [6]uint64{
		0xecec196accc52971, 0x581a0db248b0a77a, 0xc7634d81f4372ddf,
		0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
	}

	scalarRR      [6]uint64
	scalarOneMont [6]uint64
	scalarN0Inv   uint64
)

func init() {
	scalarN0Inv = low.NegInv(scalarN[0])
	low.Montifier(scalarRR[:], scalarN[:])
	low.MontOne(scalarOneMont[:], scalarRR[:], scalarN[:], scalarN0Inv)
}

// SetBytesReduced reads big-endian bytes of at most 48 bytes and reduces
// the value modulo n.
func (s *Scalar) SetBytesReduced(b []byte) bool {
	var wide [6]uint64
	if !low.BytesBEToLimbs(wide[:], b) {
		return false
	}
	low.ModReduce(s.d[:], wide[:], scalarN[:])
	return true
}

// SetBytesChecked reads exactly 48 big-endian bytes, failing if the
// value is not in [0, n).
func (s *Scalar) SetBytesChecked(b []byte) bool {
	if len(b) != 48 {
		return false
	}
	var v [6]uint64
	if !low.BytesBEToLimbs(v[:], b) {
		return false
	}
	if low.CmpLt(v[:], scalarN[:]) != 1 {
		return false
	}
	s.d = v
	return true
}

// Bytes writes the scalar as 48 big-endian bytes.
func (s *Scalar) Bytes(out []byte) {
	low.LimbsToBytesBE(out[:48], s.d[:])
}

// IsZero returns true when the scalar is zero. Constant time.
func (s *Scalar) IsZero() bool {
	return low.IsZero(s.d[:]) == 1
}

// Equal compares two scalars in constant time.
func (s *Scalar) Equal(x *Scalar) bool {
	return low.Eq(s.d[:], x.d[:]) == 1
}

// Add sets s = x + y mod n.
func (s *Scalar) Add(x, y *Scalar) {
	low.ModAdd(s.d[:], x.d[:], y.d[:], scalarN[:])
}

// Mul sets s = x * y mod n.
func (s *Scalar) Mul(x, y *Scalar) {
	var xm [6]uint64
	low.Montmul(xm[:], x.d[:], scalarRR[:], scalarN[:], scalarN0Inv)
	low.Montmul(s.d[:], xm[:], y.d[:], scalarN[:], scalarN0Inv)
	low.Zeroize(xm[:])
}

// Inverse sets s = x^-1 mod n by Fermat exponentiation.
func (s *Scalar) Inverse(x *Scalar) {
	var xm, zm [6]uint64
	low.Montmul(xm[:], x.d[:], scalarRR[:], scalarN[:], scalarN0Inv)
	low.MontExpVartime(zm[:], xm[:], scalarNMinus2[:], scalarN[:], scalarN0Inv, scalarOneMont[:])
	one := [6]uint64{1}
	low.Montmul(s.d[:], zm[:], one[:], scalarN[:], scalarN0Inv)
	low.Zeroize(xm[:])
	low.Zeroize(zm[:])
}

// Clear wipes the scalar.
func (s *Scalar) Clear() {
	low.Memclear(unsafe.Pointer(&s.d[0]), unsafe.Sizeof(s.d))
}
