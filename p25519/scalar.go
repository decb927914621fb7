package p25519

import (
	"unsafe"

	"ctcrypto.dev/low"
)

// Scalar is an integer modulo the edwards25519 group order
// L = 2^252 + 27742317777372353535851937790883648493, as four
// little-endian limbs in canonical form.
type Scalar struct {
	d [4]uint64
}

var (
	// scalarL is the group order of the prime-order subgroup.
	scalarL = [4]uint64{0x5812631a5cf5d3ed, 0x14def9dea2f79cd6, 0x0000000000000000, 0x1000000000000000}

	scalarRR      [4]uint64
	scalarOneMont [4]uint64
	scalarL0Inv   uint64
)

func init() {
	scalarL0Inv = low.NegInv(scalarL[0])
	low.Montifier(scalarRR[:], scalarL[:])
	low.MontOne(scalarOneMont[:], scalarRR[:], scalarL[:], scalarL0Inv)
}

// SetBytesLEChecked reads a 32-byte little-endian integer, failing when
// it is not below L. Ed25519 verification uses this to reject malleable
// S values.
func (s *Scalar) SetBytesLEChecked(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	var v [4]uint64
	low.BytesLEToLimbs(v[:], b)
	if low.CmpLt(v[:], scalarL[:]) != 1 {
		return false
	}
	s.d = v
	return true
}

// SetBytesLEReduced reads a little-endian integer of 32 or 64 bytes and
// reduces it modulo L.
func (s *Scalar) SetBytesLEReduced(b []byte) {
	switch len(b) {
	case 32:
		var v [4]uint64
		low.BytesLEToLimbs(v[:], b)
		low.ModReduce(s.d[:], v[:], scalarL[:])
	case 64:
		var v [8]uint64
		low.BytesLEToLimbs(v[:], b)
		low.ModReduce(s.d[:], v[:], scalarL[:])
	default:
		panic("p25519: scalar encoding must be 32 or 64 bytes")
	}
}

// BytesLE writes the scalar as 32 little-endian bytes.
func (s *Scalar) BytesLE(out []byte) {
	low.LimbsToBytesLE(out[:32], s.d[:])
}

// Limbs returns a copy of the limb array.
func (s *Scalar) Limbs() [4]uint64 { return s.d }

// IsZero returns true when the scalar is zero. Constant time.
func (s *Scalar) IsZero() bool {
	return low.IsZero(s.d[:]) == 1
}

// MulAdd sets s = x*y + c mod L. Constant time; this is the Ed25519
// response computation S = k*s + r.
func (s *Scalar) MulAdd(x, y, c *Scalar) {
	var xm, xy [4]uint64
	low.Montmul(xm[:], x.d[:], scalarRR[:], scalarL[:], scalarL0Inv)
	low.Montmul(xy[:], xm[:], y.d[:], scalarL[:], scalarL0Inv)
	low.ModAdd(s.d[:], xy[:], c.d[:], scalarL[:])
	low.Zeroize(xm[:])
	low.Zeroize(xy[:])
}

// Clear wipes the scalar.
func (s *Scalar) Clear() {
	low.Memclear(unsafe.Pointer(&s.d[0]), unsafe.Sizeof(s.d))
}
