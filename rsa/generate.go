package rsa

import (
	"math/bits"

	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

// KeySize enumerates the supported public modulus sizes for key
// generation.
type KeySize int

const (
	Rsa2048 KeySize = 2048
	Rsa3072 KeySize = 3072
	Rsa4096 KeySize = 4096
	Rsa6144 KeySize = 6144
	Rsa8192 KeySize = 8192
)

// publicExponent is F4; the only exponent this library generates.
const publicExponent uint32 = 0x10001

func (s KeySize) valid() bool {
	switch s {
	case Rsa2048, Rsa3072, Rsa4096, Rsa6144, Rsa8192:
		return true
	}
	return false
}

func (s KeySize) primeBits() int { return int(s) / 2 }

// millerRabinRounds per FIPS 186-5 Table B.1. The two largest sizes are
// not tabulated there; four rounds is already past the 2^-112 error
// bound at those widths.
func (s KeySize) millerRabinRounds() int {
	if s == Rsa2048 {
		return 5
	}
	return 4
}

// GenerateKey produces a fresh two-prime RSA key of the given size.
// candidateRandom feeds prime candidates; checksRandom feeds the
// Miller-Rabin bases. Passing the system source for both is the normal
// configuration.
func GenerateKey(size KeySize, candidateRandom, checksRandom ctcrypto.RandomSource) (*PrivateKey, error) {
	low.EntrySecret()
	if !size.valid() {
		return nil, ctcrypto.ErrOutOfRange
	}

	for {
		p, err := randomPrime(size, candidateRandom, checksRandom)
		if err != nil {
			return nil, err
		}
		q, err := randomPrime(size, candidateRandom, checksRandom)
		if err != nil {
			return nil, err
		}

		if p.equals(&q) {
			// for the supported sizes this means the source is hosed
			return nil, ctcrypto.ErrRngFailed
		}

		// arrange p > q
		if p.lessThan(&q) {
			p, q = q, p
		}

		var n, p1, q1, phi posInt
		n.mul(&p, &q)
		p1.subWord(&p, 1)
		q1.subWord(&q, 1)
		phi.mul(&p1, &q1)

		var d posInt
		if !invertF4(&d, &phi) {
			// e divides phi: p or q is 1 mod e. Discard both primes
			// and start over.
			p.clear()
			q.clear()
			phi.clear()
			continue
		}

		// dP = d mod (p-1), dQ = d mod (q-1)
		var dp, dq posInt
		dp.reduce(&d, &p1)
		dq.reduce(&d, &q1)

		// qInv = q^-1 mod p = q^(p-2) mod p; the exponent is secret, so
		// this runs on the constant-time ladder
		var qinv, pm2 posInt
		pm2.subWord(&p, 2)
		pCtx := newMontCtx(&p)
		pCtx.expConsttime(&qinv, &q, &pm2)

		priv, err := newPrivateKey(&p, &q, &d, &dp, &dq, &qinv, &n, publicExponent)

		p1.clear()
		q1.clear()
		phi.clear()
		pm2.clear()
		return priv, err
	}
}

// invertF4 sets d = e^-1 mod phi for e = F4, returning false when e
// divides phi. Because e is prime and single-word, the inverse comes
// from d = (1 + t*phi)/e with t = -phi^-1 mod e; no general bignum
// inversion is needed.
func invertF4(d *posInt, phi *posInt) bool {
	e := uint64(publicExponent)
	r := phi.modWord(e)
	if r == 0 {
		return false
	}

	// t = e - r^-1 mod e; r^-1 by Fermat since e is prime
	rInv := powModWord(r, e-2, e)
	t := (e - rInv) % e
	if t == 0 {
		// t = 0 would give d = 1/e, not an integer unless phi | 0;
		// cannot happen for r != 0 but keep the guard
		return false
	}

	// d = (1 + t*phi) / e, an exact division
	var tp posInt
	var tWord posInt
	tWord.setWord(t)
	tp.mul(phi, &tWord)
	tp.resize(tp.n + 1)

	var one posInt
	one.setWord(1)
	one.resize(tp.n)
	low.Add(tp.limbs(), tp.limbs(), one.limbs())

	d.divWordExact(&tp, e)

	// trim to phi's width; d < phi always
	d.n = phi.n
	tp.clear()
	return true
}

// powModWord computes b^e mod m on single words.
func powModWord(b, e, m uint64) uint64 {
	result := uint64(1)
	base := b % m
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			result = mulModWord(result, base, m)
		}
		base = mulModWord(base, base, m)
	}
	return result
}

func mulModWord(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, r := bits.Div64(hi%m, lo, m)
	return r
}

// randomPrime draws candidates until one passes the sieve and
// Miller-Rabin.
func randomPrime(size KeySize, candidateRandom, checksRandom ctcrypto.RandomSource) (posInt, error) {
	for {
		candidate, ok, err := randomPrimeOne(size, candidateRandom, checksRandom)
		if err != nil {
			return posInt{}, err
		}
		if ok {
			return candidate, nil
		}
	}
}

func randomPrimeOne(size KeySize, candidateRandom, checksRandom ctcrypto.RandomSource) (posInt, bool, error) {
	nbytes := size.primeBits() / 8
	var buf [maxPrimeLimbs * 8]byte
	if err := candidateRandom.Fill(buf[:nbytes]); err != nil {
		return posInt{}, false, ctcrypto.ErrRngFailed
	}

	// force the top two bits so n = p*q reaches the full size, and the
	// low bit since an even candidate is never prime
	buf[0] |= 0b1100_0000
	buf[nbytes-1] |= 0b0000_0001

	var candidate posInt
	if err := candidate.setBytes(buf[:nbytes]); err != nil {
		return posInt{}, false, err
	}
	low.ZeroizeBytes(buf[:nbytes])

	ok, err := isPrime(&candidate, size, checksRandom)
	if err != nil || !ok {
		candidate.clear()
		return posInt{}, false, err
	}
	return candidate, true, nil
}

// isPrime runs the small-prime sieve, then Miller-Rabin.
func isPrime(candidate *posInt, size KeySize, rng ctcrypto.RandomSource) (bool, error) {
	for _, sp := range smallPrimes {
		if candidate.modWord(sp) == 0 {
			return false, nil
		}
	}
	return millerRabin(candidate, size, rng)
}

// millerRabin follows FIPS 186-5 B.3.1 with bases drawn from rng.
func millerRabin(w *posInt, size KeySize, rng ctcrypto.RandomSource) (bool, error) {
	mr := newMillerRabinParams(w)
	wLen := int(w.bitLen())
	wBytes := (wLen + 7) / 8

	rounds := size.millerRabinRounds()
	done := 0
	for {
		// obtain wlen bits from the source, masking excess high bits
		var buf [maxPrimeLimbs * 8]byte
		if err := rng.Fill(buf[:wBytes]); err != nil {
			return false, ctcrypto.ErrRngFailed
		}
		if wLen&7 != 0 {
			buf[0] &= (1 << (wLen & 7)) - 1
		}
		var b posInt
		if err := b.setBytes(buf[:wBytes]); err != nil {
			return false, err
		}
		low.ZeroizeBytes(buf[:wBytes])

		switch mr.checkBase(&b) {
		case mrUnsuitableBase:
			continue
		case mrComposite:
			return false, nil
		case mrPossiblyPrime:
		}

		done++
		if done >= rounds {
			return true, nil
		}
	}
}

type mrResult int

const (
	mrUnsuitableBase mrResult = iota
	mrPossiblyPrime
	mrComposite
)

type millerRabinParams struct {
	w      *posInt
	w1     posInt
	a      uint
	m      posInt
	ctx    *montCtx
	montW1 posInt
}

func newMillerRabinParams(w *posInt) *millerRabinParams {
	mr := &millerRabinParams{w: w}

	// a is the largest power of two dividing w-1; m = (w-1) / 2^a
	mr.w1.subWord(w, 1)
	mr.a = low.Ctz(mr.w1.limbs())
	mr.m = mr.w1
	shiftRight(&mr.m, mr.a)

	mr.ctx = newMontCtx(w)
	mr.ctx.toMont(&mr.montW1, &mr.w1)
	return mr
}

// shiftRight shifts in place by k bits; k is derived from the candidate
// but the trial loop around it is variable time anyway.
func shiftRight(x *posInt, k uint) {
	for k >= 64 {
		copy(x.w[:x.n-1], x.w[1:x.n])
		x.w[x.n-1] = 0
		k -= 64
	}
	if k > 0 {
		low.ShrSmall(x.limbs(), x.limbs(), k)
	}
}

func (mr *millerRabinParams) checkBase(b *posInt) mrResult {
	// reject b <= 1 and b >= w - 1
	var one posInt
	one.setWord(1)
	if b.isZero() || b.equals(&one) || !b.lessThan(&mr.w1) {
		return mrUnsuitableBase
	}

	// z = b^m mod w, in Montgomery form for the squaring chain
	var bm, z posInt
	mr.ctx.toMont(&bm, b)
	z.resize(mr.ctx.m.n)
	low.MontExpConsttime(z.limbs(), bm.limbs(), mr.m.limbs(), mr.ctx.m.limbs(), mr.ctx.m0inv, mr.ctx.one.limbs())

	if z.equals(&mr.ctx.one) || z.equals(&mr.montW1) {
		return mrPossiblyPrime
	}

	for j := uint(1); j < mr.a; j++ {
		low.Montmul(z.limbs(), z.limbs(), z.limbs(), mr.ctx.m.limbs(), mr.ctx.m0inv)
		if z.equals(&mr.montW1) {
			return mrPossiblyPrime
		}
		if z.equals(&mr.ctx.one) {
			return mrComposite
		}
	}
	return mrComposite
}

// smallPrimes lists the primes from 3 through 743. A candidate that is
// divisible by any of them is rejected before the expensive
// Miller-Rabin rounds; the bound matches a 1024-bit product of primes.
var smallPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67,
	71, 73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139,
	149, 151, 157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223,
	227, 229, 233, 239, 241, 251, 257, 263, 269, 271, 277, 281, 283, 293,
	307, 311, 313, 317, 331, 337, 347, 349, 353, 359, 367, 373, 379, 383,
	389, 397, 401, 409, 419, 421, 431, 433, 439, 443, 449, 457, 461, 463,
	467, 479, 487, 491, 499, 503, 509, 521, 523, 541, 547, 557, 563, 569,
	571, 577, 587, 593, 599, 601, 607, 613, 617, 619, 631, 641, 643, 647,
	653, 659, 661, 673, 677, 683, 691, 701, 709, 719, 727, 733, 739, 743,
}
