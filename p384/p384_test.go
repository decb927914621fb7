package p384

import (
	"crypto/elliptic"
	"math/big"
	mrand "math/rand"
	"testing"

	ctcrypto "ctcrypto.dev"
)

func fieldPrime() *big.Int {
	p, _ := new(big.Int).SetString(
		"fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffeffffffff0000000000000000ffffffff", 16)
	return p
}

func feToBig(fe *FieldElement) *big.Int {
	var b [48]byte
	fe.bytes(b[:])
	return new(big.Int).SetBytes(b[:])
}

func TestFieldLaws(t *testing.T) {
	rng := mrand.New(mrand.NewSource(1))
	p := fieldPrime()
	for i := 0; i < 50; i++ {
		xv := new(big.Int).Rand(rng, p)
		yv := new(big.Int).Rand(rng, p)

		var x, y FieldElement
		if !x.setBytes(xv.FillBytes(make([]byte, 48))) ||
			!y.setBytes(yv.FillBytes(make([]byte, 48))) {
			t.Fatal("setBytes failed")
		}

		// mont round trip
		var xm, back FieldElement
		xm.toMont(&x)
		back.demont(&xm)
		if feToBig(&back).Cmp(xv) != 0 {
			t.Fatalf("round trip failed at %d", i)
		}

		// multiplication law
		var ym, zm, z FieldElement
		ym.toMont(&y)
		zm.montMul(&xm, &ym)
		z.demont(&zm)
		expect := new(big.Int).Mul(xv, yv)
		expect.Mod(expect, p)
		if feToBig(&z).Cmp(expect) != 0 {
			t.Fatalf("mul law failed at %d", i)
		}

		// addition law
		var sum FieldElement
		sum.add(&x, &y)
		expect = new(big.Int).Add(xv, yv)
		expect.Mod(expect, p)
		if feToBig(&sum).Cmp(expect) != 0 {
			t.Fatalf("add law failed at %d", i)
		}

		// inversion law
		if xv.Sign() != 0 {
			var inv, prod, one FieldElement
			inv.montInv(&xm)
			prod.montMul(&inv, &xm)
			one.demont(&prod)
			if feToBig(&one).Cmp(big.NewInt(1)) != 0 {
				t.Fatalf("inverse law failed at %d", i)
			}
		}
	}
}

func TestGeneratorOnCurve(t *testing.T) {
	if !curveGenerator.onCurve() {
		t.Fatal("generator must satisfy the curve equation")
	}
}

func TestBaseMulMatchesStdlib(t *testing.T) {
	curve := elliptic.P384()
	rng := mrand.New(mrand.NewSource(2))
	for i := 0; i < 5; i++ {
		kv := new(big.Int).Rand(rng, curve.Params().N)
		if kv.Sign() == 0 {
			continue
		}
		kb := kv.FillBytes(make([]byte, 48))

		priv, err := NewPrivateKey(kb)
		if err != nil {
			t.Fatal(err)
		}
		pub, err := priv.PublicKey()
		if err != nil {
			t.Fatal(err)
		}
		got := pub.Bytes()

		ex, ey := curve.ScalarBaseMult(kb)
		expect := elliptic.Marshal(curve, ex, ey)
		if string(got[:]) != string(expect) {
			t.Fatalf("base mult mismatch at %d", i)
		}
	}
}

func TestDiffieHellmanSymmetry(t *testing.T) {
	a, err := GenerateKey(ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKey(ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	aPub, _ := a.PublicKey()
	bPub, _ := b.PublicKey()

	s1, err := a.DiffieHellman(bPub)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := b.DiffieHellman(aPub)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatal("shared secrets disagree")
	}
}

func TestOrderTimesGeneratorIsIdentity(t *testing.T) {
	nMinus1, _ := new(big.Int).SetString(
		"ffffffffffffffffffffffffffffffffffffffffffffffffc7634d81f4372ddf581a0db248b0a77aecec196accc52972", 16)
	var s Scalar
	s.SetBytesReduced(nMinus1.FillBytes(make([]byte, 48)))
	j := basePointMul(&s)

	var g JacobianMontPoint
	g.fromAffine(&curveGenerator)
	var sum JacobianMontPoint
	sum.addVar(&j, &g)
	if sum.isInfinity() != 1 {
		t.Fatal("n*G must be the identity")
	}
}
