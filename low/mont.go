package low

import "math/bits"

// NegInv returns -m0^-1 mod 2^64 for odd m0. This is the per-word
// Montgomery quotient constant.
func NegInv(m0 uint64) uint64 {
	// Newton iteration starting from a 4-bit inverse; each step doubles
	// the number of correct low bits: 4, 8, 16, 32, 64.
	y := (m0 * 3) ^ 2
	y *= 2 - m0*y
	y *= 2 - m0*y
	y *= 2 - m0*y
	y *= 2 - m0*y
	return -y
}

// Montmul sets z = x*y*R^-1 mod m, where R = 2^(64*len(m)). Inputs must
// be < m and m must be odd; the output is fully reduced. m0inv is
// NegInv(m[0]). z may alias x or y. Constant time (CIOS).
func Montmul(z, x, y, m []uint64, m0inv uint64) {
	n := len(m)
	var t [MaxLimbs + 2]uint64
	for i := 0; i <= n+1; i++ {
		t[i] = 0
	}

	for i := 0; i < n; i++ {
		// t += x[i] * y
		var c uint64
		xi := x[i]
		for j := 0; j < n; j++ {
			hi, lo := bits.Mul64(xi, y[j])
			var carry uint64
			lo, carry = bits.Add64(lo, t[j], 0)
			hi += carry
			lo, carry = bits.Add64(lo, c, 0)
			hi += carry
			t[j] = lo
			c = hi
		}
		var carry uint64
		t[n], carry = bits.Add64(t[n], c, 0)
		t[n+1] += carry

		// t += u * m, making t[0] zero
		u := t[0] * m0inv
		c = 0
		for j := 0; j < n; j++ {
			hi, lo := bits.Mul64(u, m[j])
			var carry2 uint64
			lo, carry2 = bits.Add64(lo, t[j], 0)
			hi += carry2
			lo, carry2 = bits.Add64(lo, c, 0)
			hi += carry2
			t[j] = lo
			c = hi
		}
		t[n], carry = bits.Add64(t[n], c, 0)
		t[n+1] += carry

		// divide by 2^64
		for j := 0; j <= n; j++ {
			t[j] = t[j+1]
		}
		t[n+1] = 0
	}

	// t < 2m here; subtract m once if needed
	var sub [MaxLimbs]uint64
	borrow := Sub(sub[:n], t[:n], m)
	need := t[n] | (borrow ^ 1)
	Mux(MaskFromBit(need), z, sub[:n], t[:n])
}

// ModAdd sets z = x + y mod m for x, y < m. Constant time.
func ModAdd(z, x, y, m []uint64) {
	n := len(m)
	var sum, sub [MaxLimbs]uint64
	carry := Add(sum[:n], x, y)
	borrow := Sub(sub[:n], sum[:n], m)
	need := carry | (borrow ^ 1)
	Mux(MaskFromBit(need), z, sub[:n], sum[:n])
}

// ModSub sets z = x - y mod m for x, y < m. Constant time.
func ModSub(z, x, y, m []uint64) {
	n := len(m)
	var diff, fixed [MaxLimbs]uint64
	borrow := Sub(diff[:n], x, y)
	Add(fixed[:n], diff[:n], m)
	Mux(MaskFromBit(borrow), z, fixed[:n], diff[:n])
}

// ModReduce sets z = x mod m for any x (len(x) >= len(m) is allowed and
// typical; len(z) == len(m)). Bit-serial long division with a fixed
// iteration count; constant time in the limb values.
func ModReduce(z, x, m []uint64) {
	n := len(m)
	var r, shifted, sub [MaxLimbs]uint64
	for i := 0; i < n; i++ {
		r[i] = 0
	}
	for i := len(x)*64 - 1; i >= 0; i-- {
		carry := ShlSmall(shifted[:n], r[:n], 1)
		shifted[0] |= Bit(x, uint(i))
		borrow := Sub(sub[:n], shifted[:n], m)
		need := (carry & 1) | (borrow ^ 1)
		Mux(MaskFromBit(need), r[:n], sub[:n], shifted[:n])
	}
	copy(z, r[:n])
}

// Montifier computes z = R^2 mod m, where R = 2^(64*len(m)), by repeated
// constant-time doubling. m must be odd (or at least have its top bit
// pattern such that values below m fit in len(m) limbs, which holds for
// all moduli used here).
func Montifier(z, m []uint64) {
	n := len(m)
	var r, shifted, sub [MaxLimbs]uint64
	for i := 0; i < n; i++ {
		r[i] = 0
	}
	r[0] = 1
	// 1 * 2^(2*64n) mod m
	for i := 0; i < 2*64*n; i++ {
		carry := ShlSmall(shifted[:n], r[:n], 1)
		borrow := Sub(sub[:n], shifted[:n], m)
		need := (carry & 1) | (borrow ^ 1)
		Mux(MaskFromBit(need), r[:n], sub[:n], shifted[:n])
	}
	copy(z, r[:n])
}

// MontOne computes z = R mod m given r2 = R^2 mod m.
func MontOne(z, r2, m []uint64, m0inv uint64) {
	n := len(m)
	var one [MaxLimbs]uint64
	for i := 0; i < n; i++ {
		one[i] = 0
	}
	one[0] = 1
	Montmul(z, r2, one[:n], m, m0inv)
}

// MontExpVartime sets z = xm^e (all in Montgomery form), where oneM is
// R mod m. Left-to-right square and multiply; variable time in the
// exponent, which must therefore be public. z must not alias xm.
func MontExpVartime(z, xm, e, m []uint64, m0inv uint64, oneM []uint64) {
	n := len(m)
	copy(z[:n], oneM)
	top := BitLen(e)
	for i := int(top) - 1; i >= 0; i-- {
		Montmul(z, z, z, m, m0inv)
		if Bit(e, uint(i)) == 1 {
			Montmul(z, z, xm, m, m0inv)
		}
	}
}

// MontExpConsttime sets z = xm^e (all in Montgomery form) using a
// Montgomery ladder over every bit of e, so the exponent may be secret.
// z must not alias xm.
func MontExpConsttime(z, xm, e, m []uint64, m0inv uint64, oneM []uint64) {
	n := len(m)
	var x0, x1 [MaxLimbs]uint64
	copy(x0[:n], oneM)
	copy(x1[:n], xm)
	for i := len(e)*64 - 1; i >= 0; i-- {
		mask := MaskFromBit(Bit(e, uint(i)))
		CondSwap(mask, x0[:n], x1[:n])
		Montmul(x1[:n], x0[:n], x1[:n], m, m0inv)
		Montmul(x0[:n], x0[:n], x0[:n], m, m0inv)
		CondSwap(mask, x0[:n], x1[:n])
	}
	copy(z[:n], x0[:n])
	Zeroize(x0[:n])
	Zeroize(x1[:n])
}
