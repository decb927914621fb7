package drbg

import (
	"bytes"
	"testing"

	ctcrypto "ctcrypto.dev"
)

func TestDeterministic(t *testing.T) {
	a := New(ctcrypto.SHA256{}, []byte("entropy"), []byte("nonce"), []byte("pers"))
	b := New(ctcrypto.SHA256{}, []byte("entropy"), []byte("nonce"), []byte("pers"))

	var out1, out2 [100]byte
	a.Generate(out1[:])
	b.Generate(out2[:])
	if !bytes.Equal(out1[:], out2[:]) {
		t.Fatal("same seed must give the same stream")
	}

	// consecutive outputs differ
	var out3 [100]byte
	a.Generate(out3[:])
	if bytes.Equal(out1[:], out3[:]) {
		t.Fatal("stream must advance between calls")
	}
}

func TestSeedSensitivity(t *testing.T) {
	base := New(ctcrypto.SHA256{}, []byte("entropy"), []byte("nonce"), nil)
	diffEntropy := New(ctcrypto.SHA256{}, []byte("entropy2"), []byte("nonce"), nil)
	diffNonce := New(ctcrypto.SHA256{}, []byte("entropy"), []byte("nonce2"), nil)
	diffPers := New(ctcrypto.SHA256{}, []byte("entropy"), []byte("nonce"), []byte("p"))

	var a, b, c, d [32]byte
	base.Generate(a[:])
	diffEntropy.Generate(b[:])
	diffNonce.Generate(c[:])
	diffPers.Generate(d[:])

	if bytes.Equal(a[:], b[:]) || bytes.Equal(a[:], c[:]) || bytes.Equal(a[:], d[:]) {
		t.Fatal("seed inputs must all influence the stream")
	}
}

func TestHashParameterisation(t *testing.T) {
	h256 := New(ctcrypto.SHA256{}, []byte("e"), []byte("n"), nil)
	h512 := New(ctcrypto.SHA512{}, []byte("e"), []byte("n"), nil)

	var a, b [64]byte
	h256.Generate(a[:])
	h512.Generate(b[:])
	if bytes.Equal(a[:], b[:]) {
		t.Fatal("different hashes must give different streams")
	}
}

func TestFillInterface(t *testing.T) {
	var src ctcrypto.RandomSource = New(ctcrypto.SHA384{}, []byte("e"), nil, nil)
	buf := make([]byte, 7)
	if err := src.Fill(buf); err != nil {
		t.Fatal(err)
	}
	var zero [7]byte
	if bytes.Equal(buf, zero[:]) {
		t.Fatal("output is all zero")
	}
}

func TestShortAndLongRequests(t *testing.T) {
	d := New(ctcrypto.SHA256{}, []byte("e"), nil, nil)
	one := make([]byte, 1)
	d.Generate(one)

	long := make([]byte, 1000)
	d.Generate(long)
	var zeros [32]byte
	if bytes.Contains(long, zeros[:]) {
		t.Fatal("long output should not contain a 32-byte zero run")
	}
}
