package low

import (
	"math/big"
	"math/rand"
	"testing"
)

func randLimbs(rng *rand.Rand, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = rng.Uint64()
	}
	return out
}

func limbsToBig(x []uint64) *big.Int {
	out := new(big.Int)
	for i := len(x) - 1; i >= 0; i-- {
		out.Lsh(out, 64)
		out.Or(out, new(big.Int).SetUint64(x[i]))
	}
	return out
}

func bigToLimbs(x *big.Int, n int) []uint64 {
	out := make([]uint64, n)
	t := new(big.Int).Set(x)
	mask := new(big.Int).SetUint64(^uint64(0))
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).And(t, mask).Uint64()
		t.Rsh(t, 64)
	}
	return out
}

// p256 prime, used as a convenient odd modulus.
var testModulus = []uint64{0xffffffffffffffff, 0x00000000ffffffff, 0x0000000000000000, 0xffffffff00000001}

func TestAddSubRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		x := randLimbs(rng, 4)
		y := randLimbs(rng, 4)
		sum := make([]uint64, 4)
		carry := Add(sum, x, y)
		back := make([]uint64, 4)
		borrow := Sub(back, sum, y)
		if Eq(back, x) != 1 || carry != borrow {
			t.Fatalf("add/sub mismatch at %d", i)
		}
	}
}

func TestMulMatchesBig(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		x := randLimbs(rng, 4)
		y := randLimbs(rng, 4)
		z := make([]uint64, 8)
		Mul(z, x, y)

		expect := new(big.Int).Mul(limbsToBig(x), limbsToBig(y))
		if limbsToBig(z).Cmp(expect) != 0 {
			t.Fatalf("mul mismatch at %d", i)
		}
	}
}

func TestMontmulMatchesBig(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := limbsToBig(testModulus)
	rInv := new(big.Int).ModInverse(new(big.Int).Lsh(big.NewInt(1), 256), m)
	m0inv := NegInv(testModulus[0])

	for i := 0; i < 200; i++ {
		x := bigToLimbs(new(big.Int).Mod(limbsToBig(randLimbs(rng, 4)), m), 4)
		y := bigToLimbs(new(big.Int).Mod(limbsToBig(randLimbs(rng, 4)), m), 4)
		z := make([]uint64, 4)
		Montmul(z, x, y, testModulus, m0inv)

		expect := new(big.Int).Mul(limbsToBig(x), limbsToBig(y))
		expect.Mul(expect, rInv)
		expect.Mod(expect, m)
		if limbsToBig(z).Cmp(expect) != 0 {
			t.Fatalf("montmul mismatch at %d", i)
		}
	}
}

func TestMontifierAndOne(t *testing.T) {
	m := limbsToBig(testModulus)
	rr := make([]uint64, 4)
	Montifier(rr, testModulus)

	expect := new(big.Int).Lsh(big.NewInt(1), 512)
	expect.Mod(expect, m)
	if limbsToBig(rr).Cmp(expect) != 0 {
		t.Fatal("montifier mismatch")
	}

	one := make([]uint64, 4)
	MontOne(one, rr, testModulus, NegInv(testModulus[0]))
	expectOne := new(big.Int).Lsh(big.NewInt(1), 256)
	expectOne.Mod(expectOne, m)
	if limbsToBig(one).Cmp(expectOne) != 0 {
		t.Fatal("mont one mismatch")
	}
}

func TestModReduceMatchesBig(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	m := limbsToBig(testModulus)
	for i := 0; i < 100; i++ {
		x := randLimbs(rng, 8)
		z := make([]uint64, 4)
		ModReduce(z, x, testModulus)

		expect := new(big.Int).Mod(limbsToBig(x), m)
		if limbsToBig(z).Cmp(expect) != 0 {
			t.Fatalf("modreduce mismatch at %d", i)
		}
	}
}

func TestModAddModSub(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	m := limbsToBig(testModulus)
	for i := 0; i < 100; i++ {
		x := bigToLimbs(new(big.Int).Mod(limbsToBig(randLimbs(rng, 4)), m), 4)
		y := bigToLimbs(new(big.Int).Mod(limbsToBig(randLimbs(rng, 4)), m), 4)

		sum := make([]uint64, 4)
		ModAdd(sum, x, y, testModulus)
		expect := new(big.Int).Add(limbsToBig(x), limbsToBig(y))
		expect.Mod(expect, m)
		if limbsToBig(sum).Cmp(expect) != 0 {
			t.Fatalf("modadd mismatch at %d", i)
		}

		diff := make([]uint64, 4)
		ModSub(diff, x, y, testModulus)
		expect = new(big.Int).Sub(limbsToBig(x), limbsToBig(y))
		expect.Mod(expect, m)
		if limbsToBig(diff).Cmp(expect) != 0 {
			t.Fatalf("modsub mismatch at %d", i)
		}
	}
}

func TestMontExpBothVariants(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	m := limbsToBig(testModulus)
	m0inv := NegInv(testModulus[0])
	rr := make([]uint64, 4)
	Montifier(rr, testModulus)
	oneM := make([]uint64, 4)
	MontOne(oneM, rr, testModulus, m0inv)

	for i := 0; i < 20; i++ {
		x := bigToLimbs(new(big.Int).Mod(limbsToBig(randLimbs(rng, 4)), m), 4)
		e := randLimbs(rng, 4)

		xm := make([]uint64, 4)
		Montmul(xm, x, rr, testModulus, m0inv)

		zv := make([]uint64, 4)
		MontExpVartime(zv, xm, e, testModulus, m0inv, oneM)
		zc := make([]uint64, 4)
		MontExpConsttime(zc, xm, e, testModulus, m0inv, oneM)
		if Eq(zv, zc) != 1 {
			t.Fatalf("exp variants disagree at %d", i)
		}

		// strip the montgomery factor and compare with big.Int
		one := []uint64{1, 0, 0, 0}
		z := make([]uint64, 4)
		Montmul(z, zv, one, testModulus, m0inv)
		expect := new(big.Int).Exp(limbsToBig(x), limbsToBig(e), m)
		if limbsToBig(z).Cmp(expect) != 0 {
			t.Fatalf("exp mismatch at %d", i)
		}
	}
}

func TestNegInv(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		m0 := rng.Uint64() | 1
		if m0*NegInv(m0)+1 != 0 {
			t.Fatalf("neginv wrong for %#x", m0)
		}
	}
}

func TestCtMuxAndTable(t *testing.T) {
	x := []uint64{1, 2, 3}
	y := []uint64{4, 5, 6}
	z := make([]uint64, 3)

	Mux(^uint64(0), z, x, y)
	if Eq(z, x) != 1 {
		t.Fatal("mux all-ones should pick x")
	}
	Mux(0, z, x, y)
	if Eq(z, y) != 1 {
		t.Fatal("mux zero should pick y")
	}

	table := make([]uint64, 4*3)
	for i := range table {
		table[i] = uint64(i)
	}
	row := make([]uint64, 3)
	for idx := uint64(0); idx < 4; idx++ {
		CopyRowFromTable(row, table, 4, 3, idx)
		for j := 0; j < 3; j++ {
			if row[j] != idx*3+uint64(j) {
				t.Fatalf("table row %d wrong", idx)
			}
		}
	}
}

func TestCtz(t *testing.T) {
	cases := []struct {
		in   []uint64
		want uint
	}{
		{[]uint64{1, 0}, 0},
		{[]uint64{2, 0}, 1},
		{[]uint64{0, 1}, 64},
		{[]uint64{0, 0x8000000000000000}, 127},
		{[]uint64{0, 0}, 128},
		{[]uint64{0x10, 0xff}, 4},
	}
	for _, c := range cases {
		if got := Ctz(c.in); got != c.want {
			t.Fatalf("ctz(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestShifts(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 50; i++ {
		x := randLimbs(rng, 4)
		c := uint(rng.Intn(63) + 1)

		z := make([]uint64, 4)
		ShrSmall(z, x, c)
		expect := new(big.Int).Rsh(limbsToBig(x), c)
		if limbsToBig(z).Cmp(expect) != 0 {
			t.Fatalf("shr mismatch at %d", i)
		}

		ShlSmall(z, x, c)
		expect = new(big.Int).Lsh(limbsToBig(x), c)
		expect.Mod(expect, new(big.Int).Lsh(big.NewInt(1), 256))
		if limbsToBig(z).Cmp(expect) != 0 {
			t.Fatalf("shl mismatch at %d", i)
		}
	}
}

func TestByteConversions(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 50; i++ {
		x := randLimbs(rng, 4)
		be := make([]byte, 32)
		LimbsToBytesBE(be, x)
		z := make([]uint64, 4)
		if !BytesBEToLimbs(z, be) || Eq(z, x) != 1 {
			t.Fatal("BE round trip failed")
		}

		le := make([]byte, 32)
		LimbsToBytesLE(le, x)
		BytesLEToLimbs(z, le)
		if Eq(z, x) != 1 {
			t.Fatal("LE round trip failed")
		}
	}

	// oversize input with nonzero excess must fail
	over := make([]byte, 33)
	over[0] = 1
	z := make([]uint64, 4)
	if BytesBEToLimbs(z, over) {
		t.Fatal("oversize value should be rejected")
	}
	// oversize input with zero excess is fine
	over[0] = 0
	over[1] = 0xaa
	if !BytesBEToLimbs(z, over) {
		t.Fatal("zero-padded value should be accepted")
	}
}

func TestCmpLtEq(t *testing.T) {
	a := []uint64{5, 0}
	b := []uint64{6, 0}
	if CmpLt(a, b) != 1 || CmpLt(b, a) != 0 || CmpLt(a, a) != 0 {
		t.Fatal("cmplt wrong")
	}
	if Eq(a, a) != 1 || Eq(a, b) != 0 {
		t.Fatal("eq wrong")
	}
	if IsZero([]uint64{0, 0}) != 1 || IsZero(a) != 0 {
		t.Fatal("iszero wrong")
	}
}
