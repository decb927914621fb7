package ctcrypto

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"testing"
)

func TestHashesMatchStdlib(t *testing.T) {
	msg := []byte("the quick brown fox")

	h256 := sha256.Sum256(msg)
	if !bytes.Equal(SHA256{}.Hash(msg), h256[:]) {
		t.Fatal("SHA256 one-shot mismatch")
	}
	h384 := sha512.Sum384(msg)
	if !bytes.Equal(SHA384{}.Hash(msg), h384[:]) {
		t.Fatal("SHA384 one-shot mismatch")
	}
	h512 := sha512.Sum512(msg)
	if !bytes.Equal(SHA512{}.Hash(msg), h512[:]) {
		t.Fatal("SHA512 one-shot mismatch")
	}

	for _, h := range []Hash{SHA256{}, SHA384{}, SHA512{}} {
		ctx := h.New()
		ctx.Update(msg[:5])
		ctx.Update(msg[5:])
		if !bytes.Equal(ctx.Finish(), h.Hash(msg)) {
			t.Fatal("streaming and one-shot disagree")
		}
		if len(h.Hash(nil)) != h.Size() {
			t.Fatal("output size wrong")
		}
	}
}

func TestSliceRandomSource(t *testing.T) {
	src := &SliceRandomSource{Remaining: []byte{1, 2, 3, 4, 5}}
	buf := make([]byte, 3)
	if err := src.Fill(buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3}) {
		t.Fatal("wrong bytes dispensed")
	}
	if err := src.Fill(buf); err != ErrRngFailed {
		t.Fatal("drained source must fail")
	}
}

func TestSystemRandom(t *testing.T) {
	var a, b [16]byte
	if err := (SystemRandom{}).Fill(a[:]); err != nil {
		t.Fatal(err)
	}
	if err := (SystemRandom{}).Fill(b[:]); err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two reads returned identical bytes")
	}
}

func TestErrorStrings(t *testing.T) {
	kinds := []Error{
		ErrWrongLength, ErrOutOfRange, ErrNotOnCurve, ErrNotUncompressed,
		ErrBadSignature, ErrAsn1, ErrKeyFormat, ErrRngFailed,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.Error()
		if s == "" || seen[s] {
			t.Fatalf("error string for %d not distinct", k)
		}
		seen[s] = true
	}
}
