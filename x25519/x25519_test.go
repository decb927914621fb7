package x25519

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"

	xcurve "golang.org/x/crypto/curve25519"

	ctcrypto "ctcrypto.dev"
)

func unhex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestRFC7748Vector1(t *testing.T) {
	scalar := unhex("a546e36bf0527c9d3b16154b82465edd62144c0ac1fc5a18506a2244ba449ac4")
	u := unhex("e6db6867583030db3594c1a424b15f7c726624ec26b3353b10a903a6d0ab1c4c")
	expect := unhex("c3da55379de9c6908e94ea4df28d084f32eccf03491c71f754b4075577a28552")

	k, err := NewStaticPrivateKey(scalar)
	if err != nil {
		t.Fatal(err)
	}
	peer, err := NewPublicKey(u)
	if err != nil {
		t.Fatal(err)
	}
	shared, err := k.DiffieHellman(&peer)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(shared[:], expect) {
		t.Fatalf("got %x want %x", shared[:], expect)
	}
}

func TestRFC7748Vector2(t *testing.T) {
	scalar := unhex("4b66e9d4d1b4673c5ad22691957d6af5c11b6421e0ea01d42ca4169e7918ba0d")
	u := unhex("e5210f12786811d3f4b7959d0538ae2c31dbe7106fc03c3efc4cd549c715a493")
	expect := unhex("95cbde9476e8907d7aade45cb4b873f88b595a68799fa152e6f8f7647aac7957")

	k, _ := NewStaticPrivateKey(scalar)
	peer, _ := NewPublicKey(u)
	shared, err := k.DiffieHellman(&peer)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(shared[:], expect) {
		t.Fatalf("got %x want %x", shared[:], expect)
	}
}

func TestRFC7748Iterated(t *testing.T) {
	// section 5.2: k = u = the base point, iterate k, u := X25519(k, u), k
	k := make([]byte, 32)
	k[0] = 9
	u := make([]byte, 32)
	u[0] = 9

	iterate := func(k, u []byte) []byte {
		sk, err := NewStaticPrivateKey(k)
		if err != nil {
			t.Fatal(err)
		}
		pu, err := NewPublicKey(u)
		if err != nil {
			t.Fatal(err)
		}
		out, err := sk.DiffieHellman(&pu)
		if err != nil {
			t.Fatal(err)
		}
		return out[:]
	}

	res := iterate(k, u)
	if !bytes.Equal(res, unhex("422c8e7a6227d7bca1350b3e2bb7279f7897b87bb6854b783c60e80311ae3079")) {
		t.Fatalf("1 iteration: got %x", res)
	}

	u = k
	k = res
	for i := 1; i < 1000; i++ {
		newU := make([]byte, 32)
		copy(newU, k)
		res = iterate(k, u)
		u = newU
		k = res
	}
	if !bytes.Equal(k, unhex("684cf59ba83309552800ef566f2f4d3c1c3887c49360e3875f2eb94d99532c51")) {
		t.Fatalf("1000 iterations: got %x", k)
	}

	if os.Getenv("SLOW_TESTS") == "" {
		t.Skip("set SLOW_TESTS for the million-iteration tail")
	}
	for i := 1000; i < 1000000; i++ {
		newU := make([]byte, 32)
		copy(newU, k)
		res = iterate(k, u)
		u = newU
		k = res
	}
	if !bytes.Equal(k, unhex("7c3911e0ab2586fd864497297e575e6f3bc601c0883c30df5f4dd2d24f665424")) {
		t.Fatalf("1000000 iterations: got %x", k)
	}
}

func TestBasePointMultiplication(t *testing.T) {
	ones := bytes.Repeat([]byte{1}, 32)
	k, _ := NewStaticPrivateKey(ones)
	pub := k.PublicKey()
	expect := unhex("a4e09292b651c278b9772c569f5fa9bb13d906b46ab68c9df9dc2b4409f8a209")
	if !bytes.Equal(pub[:], expect) {
		t.Fatalf("got %x want %x", pub[:], expect)
	}
}

func TestAgainstXCrypto(t *testing.T) {
	for i := 0; i < 20; i++ {
		var priv, point [32]byte
		rand.Read(priv[:])
		rand.Read(point[:])
		point[31] &= 0x7f

		expect, err := xcurve.X25519(priv[:], point[:])
		if err != nil {
			// x/crypto rejects low-order results; ours must too
			k, _ := NewStaticPrivateKey(priv[:])
			pu, _ := NewPublicKey(point[:])
			if _, err := k.DiffieHellman(&pu); err == nil {
				t.Fatal("zero output accepted")
			}
			continue
		}

		k, _ := NewStaticPrivateKey(priv[:])
		pu, _ := NewPublicKey(point[:])
		got, err := k.DiffieHellman(&pu)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got[:], expect) {
			t.Fatalf("mismatch with x/crypto at %d", i)
		}
	}
}

func TestSmallOrderRejected(t *testing.T) {
	// the all-zero u-coordinate is the order-1 point; the shared secret
	// is zero and must be refused
	var zero [32]byte
	k, err := GenerateKey(ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	peer, _ := NewPublicKey(zero[:])
	if _, err := k.DiffieHellman(&peer); err != ctcrypto.ErrNotOnCurve {
		t.Fatal("small-order point must be rejected")
	}
}

func TestKeyAgreement(t *testing.T) {
	a, err := GenerateKey(ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKey(ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	aPub := a.PublicKey()
	bPub := b.PublicKey()

	s1, err := a.DiffieHellman(&bPub)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := b.DiffieHellman(&aPub)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatal("shared secrets disagree")
	}
}

func BenchmarkLadder(b *testing.B) {
	var k, u [32]byte
	rand.Read(k[:])
	u[0] = 9
	var out [32]byte
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ladder(&out, &k, u[:])
	}
}
