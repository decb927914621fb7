package p256

import (
	"unsafe"

	"ctcrypto.dev/low"
)

// Scalar is an integer modulo the group order n, as four little-endian
// limbs in canonical (non-Montgomery) form.
type Scalar struct {
	d [4]uint64
}

// ScalarLen is the byte length of an encoded scalar.
const ScalarLen = 32

var (
	// scalarN is the group order.
	scalarN = [4]uint64{0xf3b9cac2fc632551, 0xbce6faada7179e84, 0xffffffffffffffff, 0xffffffff00000000}

	// scalarNMinus2 is the Fermat inversion exponent.
	scalarNMinus2 = [4]uint64{0xf3b9cac2fc63254f, 0xbce6faada7179e84, 0xffffffffffffffff, 0xffffffff00000000}

	// scalarRR and scalarOneMont are derived once at init.
	scalarRR      [4]uint64
	scalarOneMont [4]uint64
	scalarN0Inv   uint64
)

func init() {
	scalarN0Inv = low.NegInv(scalarN[0])
	low.Montifier(scalarRR[:], scalarN[:])
	low.MontOne(scalarOneMont[:], scalarRR[:], scalarN[:], scalarN0Inv)
}

// SetBytesReduced reads big-endian bytes of at most 32 bytes and reduces
// the value modulo n.
func (s *Scalar) SetBytesReduced(b []byte) bool {
	var wide [4]uint64
	if !low.BytesBEToLimbs(wide[:], b) {
		return false
	}
	low.ModReduce(s.d[:], wide[:], scalarN[:])
	return true
}

// SetBytesChecked reads exactly 32 big-endian bytes and fails if the
// value is not in [0, n).
func (s *Scalar) SetBytesChecked(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	var v [4]uint64
	if !low.BytesBEToLimbs(v[:], b) {
		return false
	}
	if low.CmpLt(v[:], scalarN[:]) != 1 {
		return false
	}
	s.d = v
	return true
}

// Bytes writes the scalar as 32 big-endian bytes.
func (s *Scalar) Bytes(out []byte) {
	low.LimbsToBytesBE(out[:32], s.d[:])
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

// Mul sets s = x * y mod n via a Montgomery round trip.
func (s *Scalar) Mul(x, y *Scalar) {
	var xm [4]uint64
	low.Montmul(xm[:], x.d[:], scalarRR[:], scalarN[:], scalarN0Inv)
	low.Montmul(s.d[:], xm[:], y.d[:], scalarN[:], scalarN0Inv)
	low.Zeroize(xm[:])
}

// Inverse sets s = x^-1 mod n for x != 0, by Fermat exponentiation with
// the public exponent n-2.
func (s *Scalar) Inverse(x *Scalar) {
	var xm, zm [4]uint64
	low.Montmul(xm[:], x.d[:], scalarRR[:], scalarN[:], scalarN0Inv)
	low.MontExpVartime(zm[:], xm[:], scalarNMinus2[:], scalarN[:], scalarN0Inv, scalarOneMont[:])
	// leave Montgomery form
	one := [4]uint64{1, 0, 0, 0}
	low.Montmul(s.d[:], zm[:], one[:], scalarN[:], scalarN0Inv)
	low.Zeroize(xm[:])
	low.Zeroize(zm[:])
}

// Clear wipes the scalar.
func (s *Scalar) Clear() {
	low.Memclear(unsafe.Pointer(&s.d[0]), unsafe.Sizeof(s.d))
}
