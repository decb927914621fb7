package ecdsa

import (
	stdecdsa "crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"testing"

	ctcrypto "ctcrypto.dev"
)

func TestSEC1AndPKCS8FromStdlib(t *testing.T) {
	for _, tc := range []struct {
		curve    Curve
		stdCurve elliptic.Curve
	}{
		{P256, elliptic.P256()},
		{P384, elliptic.P384()},
	} {
		stdPriv, err := stdecdsa.GenerateKey(tc.stdCurve, rand.Reader)
		if err != nil {
			t.Fatal(err)
		}

		sec1, err := x509.MarshalECPrivateKey(stdPriv)
		if err != nil {
			t.Fatal(err)
		}
		sk, err := ParseSEC1SigningKey(tc.curve, sec1)
		if err != nil {
			t.Fatalf("SEC1 parse failed: %v", err)
		}

		pkcs8, err := x509.MarshalPKCS8PrivateKey(stdPriv)
		if err != nil {
			t.Fatal(err)
		}
		sk8, err := ParsePKCS8SigningKey(pkcs8)
		if err != nil {
			t.Fatalf("PKCS8 parse failed: %v", err)
		}

		// both decodes must agree with the stdlib public key
		vk, err := sk.VerifyingKey()
		if err != nil {
			t.Fatal(err)
		}
		vk8, err := sk8.VerifyingKey()
		if err != nil {
			t.Fatal(err)
		}
		expect := elliptic.Marshal(tc.stdCurve, stdPriv.X, stdPriv.Y)
		if string(vk.Bytes()) != string(expect) || string(vk8.Bytes()) != string(expect) {
			t.Fatal("decoded keys disagree with the stdlib public key")
		}

		// sign with the parsed key, verify with a SPKI round trip
		msg := [][]byte{[]byte("der interop")}
		sig, err := sk.Sign(ctcrypto.SHA256{}, msg, ctcrypto.SystemRandom{})
		if err != nil {
			t.Fatal(err)
		}
		spki, err := vk.MarshalSPKI()
		if err != nil {
			t.Fatal(err)
		}
		vkBack, err := ParseSPKIVerifyingKey(spki)
		if err != nil {
			t.Fatal(err)
		}
		if err := vkBack.Verify(ctcrypto.SHA256{}, msg, sig); err != nil {
			t.Fatal("SPKI round-tripped key rejects a valid signature")
		}
	}
}

func TestSPKIFromStdlib(t *testing.T) {
	stdPriv, err := stdecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	spki, err := x509.MarshalPKIXPublicKey(&stdPriv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	vk, err := ParseSPKIVerifyingKey(spki)
	if err != nil {
		t.Fatal(err)
	}
	expect := elliptic.Marshal(elliptic.P256(), stdPriv.X, stdPriv.Y)
	if string(vk.Bytes()) != string(expect) {
		t.Fatal("SPKI public key mismatch")
	}
}

func TestKeyDERRejections(t *testing.T) {
	if _, err := ParsePKCS8SigningKey([]byte{0x30, 0x00}); err == nil {
		t.Fatal("empty sequence accepted")
	}
	if _, err := ParseSPKIVerifyingKey([]byte{0x02, 0x01, 0x00}); err == nil {
		t.Fatal("non-sequence accepted")
	}
	if _, err := ParseSEC1SigningKey(P256, nil); err == nil {
		t.Fatal("empty input accepted")
	}
}
