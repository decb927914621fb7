package rsa

import (
	"bytes"
	"crypto"
	"crypto/rand"
	stdrsa "crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"testing"

	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

func unhex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestPSSEncodeKnownAnswer(t *testing.T) {
	// first wycheproof test case of rsa_pss_2048_sha256_mgf1_32
	var buf [256]byte
	seed := &ctcrypto.SliceRandomSource{
		Remaining: unhex("c07247f08bfef7e3b7e88a754a15f1857f935d8be640e5237cb16c4da96be06d"),
	}
	mHash := unhex("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if err := encodePSSSig(ctcrypto.SHA256{}, buf[:], seed, mHash); err != nil {
		t.Fatal(err)
	}

	expect := unhex(
		"3518380bba9ebb93d0c41114223e3526e7b9a1a581a1c7713658afcb583d2f0b" +
			"0c995003611aba841de33a0c12ac9caab823e857b5074ee869137dd63bcadd5b" +
			"1cb6ce0ea1e0caf0fa8df541e9646c2482e3fd23de18e639d08775c5582f6b6f" +
			"b1bfa7f61eaf04b552bd2b0c5b05b8479f28047f8861432251a78b411261a17f" +
			"5d8fd0c2dc6b1757a1849a19951a862b39794689f0b26296c41ec00fea83e390" +
			"7a97ca7cc7ae20a47816228f524a757ac16a7b3001b5c3f2922cdf5e6bba5269" +
			"f4081ee0d4364acc9def4fca94ec455774b3bc6d2cc0afad83503833faeb0108" +
			"969855a2151389734ea9572ed13cf494dad9c16325374f2a1a355e1ef422d7bc")
	if !bytes.Equal(buf[:], expect) {
		t.Fatalf("pss encoding mismatch:\n got %x", buf[:])
	}

	if err := verifyPSSSig(ctcrypto.SHA256{}, buf[:], mHash); err != nil {
		t.Fatal("own encoding must verify")
	}
}

func TestPKCS1EncodeShape(t *testing.T) {
	var em [256]byte
	hash := make([]byte, 32)
	encodePKCS1Sig(em[:], digestInfoSHA256, hash)

	if em[0] != 0x00 || em[1] != 0x01 {
		t.Fatal("leader bytes wrong")
	}
	psEnd := 256 - (len(digestInfoSHA256) + 32) - 1
	for i := 2; i < psEnd; i++ {
		if em[i] != 0xff {
			t.Fatalf("padding byte %d not 0xff", i)
		}
	}
	if em[psEnd] != 0x00 {
		t.Fatal("separator missing")
	}
	if !bytes.Equal(em[psEnd+1:psEnd+1+len(digestInfoSHA256)], digestInfoSHA256) {
		t.Fatal("digest info missing")
	}
}

// generateTestKey makes a fresh 2048-bit key with a single GenerateKey
// call on the system random source.
func generateTestKey(t *testing.T) *PrivateKey {
	t.Helper()
	priv, err := GenerateKey(Rsa2048, ctcrypto.SystemRandom{}, ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func TestGenerateSignVerifyRoundTrip(t *testing.T) {
	priv := generateTestKey(t)
	pub := priv.PublicKey()
	msg := []byte("hello")

	for _, h := range []ctcrypto.Hash{ctcrypto.SHA256{}, ctcrypto.SHA384{}, ctcrypto.SHA512{}} {
		sig, err := priv.SignPKCS1(h, msg)
		if err != nil {
			t.Fatal(err)
		}
		if len(sig) != 256 {
			t.Fatalf("signature length %d", len(sig))
		}
		if err := pub.VerifyPKCS1(h, sig, msg); err != nil {
			t.Fatal("pkcs1 round trip failed")
		}
		if err := pub.VerifyPKCS1(h, sig, []byte("hellp")); err != ctcrypto.ErrBadSignature {
			t.Fatal("wrong message accepted")
		}
		sig[100] ^= 1
		if err := pub.VerifyPKCS1(h, sig, msg); err != ctcrypto.ErrBadSignature {
			t.Fatal("corrupted signature accepted")
		}

		pssSig, err := priv.SignPSS(h, msg, ctcrypto.SystemRandom{})
		if err != nil {
			t.Fatal(err)
		}
		if err := pub.VerifyPSS(h, pssSig, msg); err != nil {
			t.Fatal("pss round trip failed")
		}
		pssSig[10] ^= 1
		if err := pub.VerifyPSS(h, pssSig, msg); err != ctcrypto.ErrBadSignature {
			t.Fatal("corrupted pss signature accepted")
		}
	}
}

func TestPrivateKeyConsistency(t *testing.T) {
	priv := generateTestKey(t)

	// e*d = 1 mod phi
	var p1, q1, phi posInt
	p1.subWord(&priv.p, 1)
	q1.subWord(&priv.q, 1)
	phi.mul(&p1, &q1)

	var e posInt
	e.setWord(uint64(priv.pub.e))
	var ed posInt
	ed.mul(&e, &priv.d)
	var red posInt
	red.reduce(&ed, &phi)

	var one posInt
	one.setWord(1)
	if !red.equals(&one) {
		t.Fatal("e*d != 1 mod phi")
	}

	// p > q
	if !priv.q.lessThan(&priv.p) {
		t.Fatal("p must exceed q")
	}

	// qinv*q = 1 mod p
	var prod posInt
	priv.pCtx.mulMod(&prod, &priv.qinv, &priv.q)
	if !prod.equals(&one) {
		t.Fatal("qinv*q != 1 mod p")
	}
}

func TestDERRoundTripAndStdlibInterop(t *testing.T) {
	priv := generateTestKey(t)

	der, err := priv.MarshalPKCS1PrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParsePKCS1PrivateKey(der)
	if err != nil {
		t.Fatal(err)
	}
	if !back.pub.n.equals(&priv.pub.n) || back.pub.e != priv.pub.e {
		t.Fatal("private key DER round trip changed the key")
	}

	// stdlib must accept our encoding, and our signatures must verify
	// under the stdlib implementation (and vice versa)
	stdPriv, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		t.Fatal(err)
	}
	if err := stdPriv.Validate(); err != nil {
		t.Fatal(err)
	}

	msg := []byte("interop")
	digest := sha256.Sum256(msg)

	ourSig, err := priv.SignPKCS1(ctcrypto.SHA256{}, msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := stdrsa.VerifyPKCS1v15(&stdPriv.PublicKey, crypto.SHA256, digest[:], ourSig); err != nil {
		t.Fatal("stdlib rejects our pkcs1 signature")
	}

	stdSig, err := stdrsa.SignPKCS1v15(nil, stdPriv, crypto.SHA256, digest[:])
	if err != nil {
		t.Fatal(err)
	}
	if err := priv.PublicKey().VerifyPKCS1(ctcrypto.SHA256{}, stdSig, msg); err != nil {
		t.Fatal("we reject the stdlib pkcs1 signature")
	}

	ourPSS, err := priv.SignPSS(ctcrypto.SHA256{}, msg, ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	opts := &stdrsa.PSSOptions{SaltLength: stdrsa.PSSSaltLengthEqualsHash, Hash: crypto.SHA256}
	if err := stdrsa.VerifyPSS(&stdPriv.PublicKey, crypto.SHA256, digest[:], ourPSS, opts); err != nil {
		t.Fatal("stdlib rejects our pss signature")
	}
}

func TestStdlibKeyImport(t *testing.T) {
	// generate with the stdlib until the prime ordering matches the
	// p > q requirement, then exercise both directions
	var stdPriv *stdrsa.PrivateKey
	for i := 0; i < 20; i++ {
		k, err := stdrsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatal(err)
		}
		if k.Primes[0].Cmp(k.Primes[1]) > 0 {
			stdPriv = k
			break
		}
	}
	if stdPriv == nil {
		t.Fatal("no p > q key in 20 attempts")
	}

	der := x509.MarshalPKCS1PrivateKey(stdPriv)
	ours, err := ParsePKCS1PrivateKey(der)
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("cross signed")
	digest := sha256.Sum256(msg)

	// stdlib signs, we verify
	stdSig, err := stdrsa.SignPKCS1v15(nil, stdPriv, crypto.SHA256, digest[:])
	if err != nil {
		t.Fatal(err)
	}
	if err := ours.PublicKey().VerifyPKCS1(ctcrypto.SHA256{}, stdSig, msg); err != nil {
		t.Fatal("stdlib pkcs1 signature rejected")
	}

	// we sign, stdlib verifies
	ourSig, err := ours.SignPKCS1(ctcrypto.SHA256{}, msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := stdrsa.VerifyPKCS1v15(&stdPriv.PublicKey, crypto.SHA256, digest[:], ourSig); err != nil {
		t.Fatal("stdlib rejects our pkcs1 signature")
	}
}

func TestPublicKeyValidation(t *testing.T) {
	// too-small modulus
	var n posInt
	n.setWord(12345)
	if _, err := newPublicKey(&n, 65537); err != ctcrypto.ErrOutOfRange {
		t.Fatal("small modulus accepted")
	}

	// even exponent
	priv := generateTestKey(t)
	if _, err := newPublicKey(&priv.pub.n, 4); err != ctcrypto.ErrOutOfRange {
		t.Fatal("even exponent accepted")
	}
}

func TestSieveRejectsSmooth(t *testing.T) {
	// 3 * 5 * 7 * ... any multiple of a small prime must fail the sieve
	var candidate posInt
	candidate.setWord(743 * 1000003)
	ok, err := isPrime(&candidate, Rsa2048, ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("multiple of 743 passed the sieve")
	}
}

func TestMillerRabinKnownValues(t *testing.T) {
	// 2^127 - 1 is a Mersenne prime; (2^127 - 1) - 2 is composite
	var m127 posInt
	var b [16]byte
	for i := range b {
		b[i] = 0xff
	}
	b[0] = 0x7f
	if err := m127.setBytes(b[:]); err != nil {
		t.Fatal(err)
	}

	ok, err := millerRabin(&m127, Rsa2048, ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("2^127-1 must test prime")
	}

	var comp posInt
	comp.subWord(&m127, 2)
	ok, err = millerRabin(&comp, Rsa2048, ctcrypto.SystemRandom{})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("2^127-3 must test composite")
	}
}

func TestHosedRng(t *testing.T) {
	drained := &ctcrypto.SliceRandomSource{}
	if _, err := GenerateKey(Rsa2048, drained, ctcrypto.SystemRandom{}); err != ctcrypto.ErrRngFailed {
		t.Fatal("drained candidate source must surface RngFailed")
	}
}

func TestBytesSized(t *testing.T) {
	var x posInt
	x.setWord(0x1234)
	out := make([]byte, 4)
	if err := x.bytesSized(out, 4); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0, 0, 0x12, 0x34}) {
		t.Fatalf("got %x", out)
	}

	small := make([]byte, 1)
	if err := x.bytesSized(small, 1); err == nil {
		t.Fatal("overflow must be reported")
	}
	low.ZeroizeBytes(out)
}
