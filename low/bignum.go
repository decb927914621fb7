package low

import "math/bits"

// MaxLimbs is the widest bignum handled anywhere in the library: a
// 8192-bit RSA modulus.
const MaxLimbs = 128

func sub64(x, y, borrow uint64) (uint64, uint64) {
	return bits.Sub64(x, y, borrow)
}

// Add sets z = x + y and returns the carry out. All slices have the same
// length; z may alias x or y.
func Add(z, x, y []uint64) uint64 {
	var c uint64
	for i := range z {
		z[i], c = bits.Add64(x[i], y[i], c)
	}
	return c
}

// Sub sets z = x - y and returns the borrow out. z may alias x or y.
func Sub(z, x, y []uint64) uint64 {
	var b uint64
	for i := range z {
		z[i], b = bits.Sub64(x[i], y[i], b)
	}
	return b
}

// Mul sets z = x * y where len(z) == len(x) + len(y). z must not alias
// x or y. Schoolbook multiplication; constant time.
func Mul(z, x, y []uint64) {
	for i := range z {
		z[i] = 0
	}
	for i := range x {
		var c uint64
		for j := range y {
			hi, lo := bits.Mul64(x[i], y[j])
			var carry uint64
			lo, carry = bits.Add64(lo, z[i+j], 0)
			hi += carry
			lo, carry = bits.Add64(lo, c, 0)
			hi += carry
			z[i+j] = lo
			c = hi
		}
		z[i+len(y)] = c
	}
}

// Sqr sets z = x * x where len(z) == 2*len(x). z must not alias x.
func Sqr(z, x []uint64) {
	Mul(z, x, x)
}

// ShrSmall sets z = x >> c for 0 <= c < 64 and returns the bits shifted
// out, aligned to the top of a word. z may alias x.
func ShrSmall(z, x []uint64, c uint) uint64 {
	if c == 0 {
		out := uint64(0)
		copy(z, x)
		return out
	}
	var carry uint64
	for i := len(x) - 1; i >= 0; i-- {
		w := x[i]
		z[i] = (w >> c) | carry
		carry = w << (64 - c)
	}
	return carry
}

// ShlSmall sets z = x << c for 0 <= c < 64 and returns the bits shifted
// out. z may alias x.
func ShlSmall(z, x []uint64, c uint) uint64 {
	if c == 0 {
		copy(z, x)
		return 0
	}
	var carry uint64
	for i := range x {
		w := x[i]
		z[i] = (w << c) | carry
		carry = w >> (64 - c)
	}
	return carry
}

// Ctz returns the number of trailing zero bits of x, or 64*len(x) when x
// is zero. Constant time.
func Ctz(x []uint64) uint {
	var total uint64
	found := uint64(0) // all-ones once a nonzero limb has been seen
	for i := range x {
		limbZeros := uint64(bits.TrailingZeros64(x[i] | (found & 1)))
		// bits.TrailingZeros64 of a nonzero value is a constant-time
		// table-free intrinsic; the OR above only forces the already-found
		// case to a harmless value.
		isZero := ctEq64(x[i], 0)
		limbZeros = (limbZeros &^ isZero) | (64 & isZero)
		total += limbZeros &^ found
		found |= ^isZero
	}
	return uint(total)
}

// BitLen returns the index of the highest set bit plus one, or zero for a
// zero input. Variable time; use only on public values.
func BitLen(x []uint64) uint {
	for i := len(x) - 1; i >= 0; i-- {
		if x[i] != 0 {
			return uint(i*64 + bits.Len64(x[i]))
		}
	}
	return 0
}

// Bit returns bit i of x as 0 or 1.
func Bit(x []uint64, i uint) uint64 {
	return (x[i/64] >> (i % 64)) & 1
}

// BytesBEToLimbs parses a big-endian byte string into little-endian
// limbs. It fails (returns false) when the value needs more limbs than
// len(z); shorter inputs are zero-extended.
func BytesBEToLimbs(z []uint64, b []byte) bool {
	if len(b) > len(z)*8 {
		// any excess leading bytes must be zero
		excess := b[:len(b)-len(z)*8]
		for _, v := range excess {
			if v != 0 {
				return false
			}
		}
		b = b[len(excess):]
	}
	for i := range z {
		z[i] = 0
	}
	for i := 0; i < len(b); i++ {
		byteIdx := len(b) - 1 - i
		z[i/8] |= uint64(b[byteIdx]) << ((i % 8) * 8)
	}
	return true
}

// LimbsToBytesBE writes x as big-endian bytes filling all of b, which
// must be exactly 8*len(x) bytes.
func LimbsToBytesBE(b []byte, x []uint64) {
	if len(b) != len(x)*8 {
		panic("low: byte buffer must be 8 bytes per limb")
	}
	for i := range x {
		w := x[i]
		base := len(b) - 8*(i+1)
		b[base+0] = byte(w >> 56)
		b[base+1] = byte(w >> 48)
		b[base+2] = byte(w >> 40)
		b[base+3] = byte(w >> 32)
		b[base+4] = byte(w >> 24)
		b[base+5] = byte(w >> 16)
		b[base+6] = byte(w >> 8)
		b[base+7] = byte(w)
	}
}

// BytesLEToLimbs parses a little-endian byte string of exactly 8*len(z)
// bytes into limbs.
func BytesLEToLimbs(z []uint64, b []byte) {
	if len(b) != len(z)*8 {
		panic("low: byte buffer must be 8 bytes per limb")
	}
	for i := range z {
		base := 8 * i
		z[i] = uint64(b[base]) | uint64(b[base+1])<<8 | uint64(b[base+2])<<16 |
			uint64(b[base+3])<<24 | uint64(b[base+4])<<32 | uint64(b[base+5])<<40 |
			uint64(b[base+6])<<48 | uint64(b[base+7])<<56
	}
}

// LimbsToBytesLE writes x as little-endian bytes filling all of b.
func LimbsToBytesLE(b []byte, x []uint64) {
	if len(b) != len(x)*8 {
		panic("low: byte buffer must be 8 bytes per limb")
	}
	for i := range x {
		w := x[i]
		base := 8 * i
		b[base+0] = byte(w)
		b[base+1] = byte(w >> 8)
		b[base+2] = byte(w >> 16)
		b[base+3] = byte(w >> 24)
		b[base+4] = byte(w >> 32)
		b[base+5] = byte(w >> 40)
		b[base+6] = byte(w >> 48)
		b[base+7] = byte(w >> 56)
	}
}
