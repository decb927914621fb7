package ecdsa

import (
	"testing"

	ctcrypto "ctcrypto.dev"
)

var benchMessage = [][]byte{[]byte("benchmark message for signing")}

func benchSign(b *testing.B, curve Curve, hash ctcrypto.Hash) {
	sk, err := GenerateSigningKey(curve, ctcrypto.SystemRandom{})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sk.Sign(hash, benchMessage, ctcrypto.SystemRandom{}); err != nil {
			b.Fatal(err)
		}
	}
}

func benchVerify(b *testing.B, curve Curve, hash ctcrypto.Hash) {
	sk, err := GenerateSigningKey(curve, ctcrypto.SystemRandom{})
	if err != nil {
		b.Fatal(err)
	}
	vk, err := sk.VerifyingKey()
	if err != nil {
		b.Fatal(err)
	}
	sig, err := sk.Sign(hash, benchMessage, ctcrypto.SystemRandom{})
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := vk.Verify(hash, benchMessage, sig); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSignP256SHA256(b *testing.B)   { benchSign(b, P256, ctcrypto.SHA256{}) }
func BenchmarkSignP384SHA384(b *testing.B)   { benchSign(b, P384, ctcrypto.SHA384{}) }
func BenchmarkVerifyP256SHA256(b *testing.B) { benchVerify(b, P256, ctcrypto.SHA256{}) }
func BenchmarkVerifyP384SHA384(b *testing.B) { benchVerify(b, P384, ctcrypto.SHA384{}) }

func BenchmarkGenerateKeyP256(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateSigningKey(P256, ctcrypto.SystemRandom{}); err != nil {
			b.Fatal(err)
		}
	}
}
