// Package low implements the fixed-width limb arithmetic kernels that the
// curve and RSA packages are built on. Every bignum is a little-endian
// slice of 64-bit limbs whose length is fixed by the caller.
//
// Unless a function is explicitly marked variable-time, its running time
// and memory access pattern depend only on the lengths of its arguments,
// never on the limb values.
package low

import "unsafe"

// EntrySecret marks the start of a public-API operation whose inputs
// include secret data. Under a constant-time instrumentation build this
// taints the ranges that follow; in production it compiles to nothing.
func EntrySecret() {}

// EntryPublic marks the start of a public-API operation that handles only
// public data.
func EntryPublic() {}

// MaskFromBit turns a 0/1 bit into a 0/all-ones mask.
func MaskFromBit(b uint64) uint64 {
	return -(b & 1)
}

// ctEq64 returns all-ones if a == b, else zero.
func ctEq64(a, b uint64) uint64 {
	x := a ^ b
	// x == 0  iff  both x and -x have a clear top bit
	return ^MaskFromBit((x | -x) >> 63)
}

// Eq returns 1 if x == y, else 0. Constant time.
func Eq(x, y []uint64) uint64 {
	var acc uint64
	for i := range x {
		acc |= x[i] ^ y[i]
	}
	return (ctEq64(acc, 0) & 1)
}

// IsZero returns 1 if every limb of x is zero, else 0. Constant time.
func IsZero(x []uint64) uint64 {
	var acc uint64
	for i := range x {
		acc |= x[i]
	}
	return ctEq64(acc, 0) & 1
}

// CmpLt returns 1 if x < y as integers, else 0. Constant time.
func CmpLt(x, y []uint64) uint64 {
	var borrow uint64
	for i := range x {
		_, borrow = sub64(x[i], y[i], borrow)
	}
	return borrow
}

// Mux sets z to x when mask is all-ones and to y when mask is zero.
// Any other mask value is a programmer error.
func Mux(mask uint64, z, x, y []uint64) {
	for i := range z {
		z[i] = (x[i] & mask) | (y[i] &^ mask)
	}
}

// CondAssign sets z = x when mask is all-ones, leaving z alone otherwise.
func CondAssign(mask uint64, z, x []uint64) {
	for i := range z {
		z[i] ^= mask & (z[i] ^ x[i])
	}
}

// CondSwap exchanges x and y when mask is all-ones.
func CondSwap(mask uint64, x, y []uint64) {
	for i := range x {
		t := mask & (x[i] ^ y[i])
		x[i] ^= t
		y[i] ^= t
	}
}

// CopyRowFromTable reads row idx of a height×width table into z while
// touching every row, so the access pattern is independent of idx.
func CopyRowFromTable(z, table []uint64, height, width, idx uint64) {
	for j := range z[:width] {
		z[j] = 0
	}
	for i := uint64(0); i < height; i++ {
		mask := ctEq64(i, idx)
		row := table[i*width : (i+1)*width]
		for j := uint64(0); j < width; j++ {
			z[j] |= row[j] & mask
		}
	}
}

// CtBytesEq returns 1 if a == b, else 0, in time dependent only on the
// lengths. Slices of unequal length compare unequal.
func CtBytesEq(a, b []byte) int {
	if len(a) != len(b) {
		return 0
	}
	var acc byte
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	if acc == 0 {
		return 1
	}
	return 0
}

// Memclear overwrites n bytes at ptr with zero using volatile writes the
// compiler will not elide.
func Memclear(ptr unsafe.Pointer, n uintptr) {
	for i := uintptr(0); i < n; i++ {
		*(*byte)(unsafe.Pointer(uintptr(ptr) + i)) = 0
	}
}

// Zeroize wipes a limb slice.
func Zeroize(x []uint64) {
	for i := range x {
		x[i] = 0
	}
}

// ZeroizeBytes wipes a byte slice.
func ZeroizeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
