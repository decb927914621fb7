package ecdsa

import (
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	ctcrypto "ctcrypto.dev"
)

// fixedToASN1 converts a fixed-length r || s signature into
// SEQUENCE { INTEGER r, INTEGER s }. Leading zero bytes are stripped
// and a 0x00 prefix reintroduced only when the top bit is set.
func fixedToASN1(fixed []byte) ([]byte, error) {
	half := len(fixed) / 2
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addASN1PositiveInt(b, fixed[:half])
		addASN1PositiveInt(b, fixed[half:])
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, ctcrypto.ErrAsn1
	}
	return out, nil
}

func addASN1PositiveInt(b *cryptobyte.Builder, value []byte) {
	for len(value) > 1 && value[0] == 0 {
		value = value[1:]
	}
	b.AddASN1(asn1.INTEGER, func(b *cryptobyte.Builder) {
		if value[0]&0x80 != 0 {
			b.AddUint8(0)
		}
		b.AddBytes(value)
	})
}

// asn1ToFixed parses a DER signature and left-pads each integer into a
// fixed-length r || s buffer. Anything non-minimal or negative is a bad
// signature.
func asn1ToFixed(signature []byte, scalarLen int) ([]byte, error) {
	input := cryptobyte.String(signature)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() {
		return nil, ctcrypto.ErrBadSignature
	}

	out := make([]byte, 2*scalarLen)
	if err := readASN1PositiveInt(&inner, out[:scalarLen]); err != nil {
		return nil, err
	}
	if err := readASN1PositiveInt(&inner, out[scalarLen:]); err != nil {
		return nil, err
	}
	if !inner.Empty() {
		return nil, ctcrypto.ErrBadSignature
	}
	return out, nil
}

func readASN1PositiveInt(s *cryptobyte.String, out []byte) error {
	var content cryptobyte.String
	if !s.ReadASN1(&content, asn1.INTEGER) || len(content) == 0 {
		return ctcrypto.ErrBadSignature
	}
	if content[0]&0x80 != 0 {
		// negative
		return ctcrypto.ErrBadSignature
	}
	if len(content) > 1 && content[0] == 0 && content[1]&0x80 == 0 {
		// non-minimal encoding
		return ctcrypto.ErrBadSignature
	}
	value := []byte(content)
	if value[0] == 0 {
		value = value[1:]
	}
	if len(value) > len(out) {
		// larger than any scalar mod n can be
		return ctcrypto.ErrBadSignature
	}
	pad := len(out) - len(value)
	for i := 0; i < pad; i++ {
		out[i] = 0
	}
	copy(out[pad:], value)
	return nil
}
