package rsa

import (
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	ctcrypto "ctcrypto.dev"
)

// ParsePKCS1PublicKey decodes RSAPublicKey DER per RFC 8017 A.1.1.
func ParsePKCS1PublicKey(der []byte) (*PublicKey, error) {
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() {
		return nil, ctcrypto.ErrAsn1
	}

	nBytes, err := readInt(&inner)
	if err != nil {
		return nil, err
	}
	e, err := readSmallInt(&inner)
	if err != nil {
		return nil, err
	}
	if !inner.Empty() {
		return nil, ctcrypto.ErrAsn1
	}

	var n posInt
	if err := n.setBytes(nBytes); err != nil {
		return nil, err
	}
	return newPublicKey(&n, e)
}

// MarshalPKCS1PublicKey encodes the public key as RSAPublicKey DER.
func (pub *PublicKey) MarshalPKCS1PublicKey() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addInt(b, &pub.n)
		addWord(b, uint64(pub.e))
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, ctcrypto.ErrAsn1
	}
	return out, nil
}

// ParsePKCS1PrivateKey decodes RSAPrivateKey DER per RFC 8017 A.1.2.
// Only the two-prime form (version 0) is supported.
func ParsePKCS1PrivateKey(der []byte) (*PrivateKey, error) {
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() {
		return nil, ctcrypto.ErrAsn1
	}

	var version uint64
	if !inner.ReadASN1Integer(&version) {
		return nil, ctcrypto.ErrAsn1
	}
	if version != 0 {
		return nil, ctcrypto.ErrOutOfRange
	}

	fields := make([][]byte, 8)
	for i := range fields {
		f, err := readInt(&inner)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	if !inner.Empty() {
		return nil, ctcrypto.ErrAsn1
	}

	var n, d, p, q, dp, dq, qinv posInt
	if err := n.setBytes(fields[0]); err != nil {
		return nil, err
	}
	eBytes := fields[1]
	if len(eBytes) > 4 {
		return nil, ctcrypto.ErrOutOfRange
	}
	var e uint32
	for _, v := range eBytes {
		e = e<<8 | uint32(v)
	}
	if err := d.setBytes(fields[2]); err != nil {
		return nil, err
	}
	if err := p.setBytes(fields[3]); err != nil {
		return nil, err
	}
	if err := q.setBytes(fields[4]); err != nil {
		return nil, err
	}
	if err := dp.setBytes(fields[5]); err != nil {
		return nil, err
	}
	if err := dq.setBytes(fields[6]); err != nil {
		return nil, err
	}
	if err := qinv.setBytes(fields[7]); err != nil {
		return nil, err
	}

	return newPrivateKey(&p, &q, &d, &dp, &dq, &qinv, &n, e)
}

// MarshalPKCS1PrivateKey encodes the private key as two-prime
// RSAPrivateKey DER.
func (priv *PrivateKey) MarshalPKCS1PrivateKey() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addWord(b, 0) // version two-prime
		addInt(b, &priv.pub.n)
		addWord(b, uint64(priv.pub.e))
		addInt(b, &priv.d)
		addInt(b, &priv.p)
		addInt(b, &priv.q)
		addInt(b, &priv.dp)
		addInt(b, &priv.dq)
		addInt(b, &priv.qinv)
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, ctcrypto.ErrAsn1
	}
	return out, nil
}

// readInt reads an INTEGER and returns its magnitude bytes, rejecting
// negative and non-minimal encodings.
func readInt(s *cryptobyte.String) ([]byte, error) {
	var content cryptobyte.String
	if !s.ReadASN1(&content, asn1.INTEGER) || len(content) == 0 {
		return nil, ctcrypto.ErrAsn1
	}
	if content[0]&0x80 != 0 {
		return nil, ctcrypto.ErrOutOfRange
	}
	if len(content) > 1 && content[0] == 0 && content[1]&0x80 == 0 {
		return nil, ctcrypto.ErrAsn1
	}
	out := []byte(content)
	if out[0] == 0 {
		out = out[1:]
	}
	return out, nil
}

// readSmallInt reads an INTEGER bounded to 32 bits.
func readSmallInt(s *cryptobyte.String) (uint32, error) {
	b, err := readInt(s)
	if err != nil {
		return 0, err
	}
	if len(b) > 4 {
		return 0, ctcrypto.ErrOutOfRange
	}
	var v uint32
	for _, x := range b {
		v = v<<8 | uint32(x)
	}
	return v, nil
}

// addInt writes a posInt as a positive INTEGER: leading zeros stripped,
// a 0x00 prefix added only when the top bit is set.
func addInt(b *cryptobyte.Builder, x *posInt) {
	buf := make([]byte, x.n*8+1)
	if err := x.bytesSized(buf[1:], x.n*8); err != nil {
		b.SetError(err)
		return
	}
	v := buf
	for len(v) > 1 && v[0] == 0 {
		v = v[1:]
	}
	b.AddASN1(asn1.INTEGER, func(b *cryptobyte.Builder) {
		if v[0]&0x80 != 0 {
			b.AddUint8(0)
		}
		b.AddBytes(v)
	})
}

// addWord writes a machine word as a positive INTEGER.
func addWord(b *cryptobyte.Builder, v uint64) {
	var buf [9]byte
	for i := 0; i < 8; i++ {
		buf[1+i] = byte(v >> (56 - 8*i))
	}
	out := buf[:]
	for len(out) > 1 && out[0] == 0 {
		out = out[1:]
	}
	b.AddASN1(asn1.INTEGER, func(b *cryptobyte.Builder) {
		if out[0]&0x80 != 0 {
			b.AddUint8(0)
		}
		b.AddBytes(out)
	})
}
