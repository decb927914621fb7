package ecdsa

import (
	encasn1 "encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	ctcrypto "ctcrypto.dev"
)

var (
	oidECPublicKey = encasn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidP256        = encasn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	oidP384        = encasn1.ObjectIdentifier{1, 3, 132, 0, 34}
)

func curveForOID(oid encasn1.ObjectIdentifier) Curve {
	switch {
	case oid.Equal(oidP256):
		return P256
	case oid.Equal(oidP384):
		return P384
	}
	return nil
}

func oidForCurve(curve Curve) encasn1.ObjectIdentifier {
	if curve.ScalarLen() == p384ScalarLen {
		return oidP384
	}
	return oidP256
}

const p384ScalarLen = 48

// ParseSEC1SigningKey decodes an ECPrivateKey structure (RFC 5915,
// "SEC.1" format) for the given curve. A curve OID embedded in the
// structure must match.
func ParseSEC1SigningKey(curve Curve, der []byte) (*SigningKey, error) {
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() {
		return nil, ctcrypto.ErrAsn1
	}

	var version uint64
	if !inner.ReadASN1Integer(&version) {
		return nil, ctcrypto.ErrAsn1
	}
	if version != 1 {
		return nil, ctcrypto.ErrKeyFormat
	}

	var priv cryptobyte.String
	if !inner.ReadASN1(&priv, asn1.OCTET_STRING) {
		return nil, ctcrypto.ErrAsn1
	}

	// optional [0] parameters: the named-curve OID
	var params cryptobyte.String
	var hasParams bool
	if !inner.ReadOptionalASN1(&params, &hasParams, asn1.Tag(0).Constructed().ContextSpecific()) {
		return nil, ctcrypto.ErrAsn1
	}
	if hasParams {
		var oid encasn1.ObjectIdentifier
		if !params.ReadASN1ObjectIdentifier(&oid) {
			return nil, ctcrypto.ErrAsn1
		}
		if !oid.Equal(oidForCurve(curve)) {
			return nil, ctcrypto.ErrKeyFormat
		}
	}

	return NewSigningKey(curve, priv)
}

// ParsePKCS8SigningKey decodes a PKCS#8 (RFC 5208) wrapped EC private
// key, inferring the curve from the algorithm parameters.
func ParsePKCS8SigningKey(der []byte) (*SigningKey, error) {
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
		return nil, ctcrypto.ErrKeyFormat
	}

	var algo cryptobyte.String
	if !inner.ReadASN1(&algo, asn1.SEQUENCE) {
		return nil, ctcrypto.ErrAsn1
	}
	var algoOID encasn1.ObjectIdentifier
	if !algo.ReadASN1ObjectIdentifier(&algoOID) {
		return nil, ctcrypto.ErrAsn1
	}
	if !algoOID.Equal(oidECPublicKey) {
		return nil, ctcrypto.ErrKeyFormat
	}
	var curveOID encasn1.ObjectIdentifier
	if !algo.ReadASN1ObjectIdentifier(&curveOID) {
		return nil, ctcrypto.ErrAsn1
	}
	curve := curveForOID(curveOID)
	if curve == nil {
		return nil, ctcrypto.ErrKeyFormat
	}

	var keyOctets cryptobyte.String
	if !inner.ReadASN1(&keyOctets, asn1.OCTET_STRING) {
		return nil, ctcrypto.ErrAsn1
	}
	return ParseSEC1SigningKey(curve, keyOctets)
}

// ParseSPKIVerifyingKey decodes a SubjectPublicKeyInfo EC public key,
// inferring the curve from the algorithm parameters.
func ParseSPKIVerifyingKey(der []byte) (*VerifyingKey, error) {
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() {
		return nil, ctcrypto.ErrAsn1
	}

	var algo cryptobyte.String
	if !inner.ReadASN1(&algo, asn1.SEQUENCE) {
		return nil, ctcrypto.ErrAsn1
	}
	var algoOID encasn1.ObjectIdentifier
	if !algo.ReadASN1ObjectIdentifier(&algoOID) {
		return nil, ctcrypto.ErrAsn1
	}
	if !algoOID.Equal(oidECPublicKey) {
		return nil, ctcrypto.ErrKeyFormat
	}
	var curveOID encasn1.ObjectIdentifier
	if !algo.ReadASN1ObjectIdentifier(&curveOID) {
		return nil, ctcrypto.ErrAsn1
	}
	curve := curveForOID(curveOID)
	if curve == nil {
		return nil, ctcrypto.ErrKeyFormat
	}

	var point encasn1.BitString
	if !inner.ReadASN1BitString(&point) {
		return nil, ctcrypto.ErrAsn1
	}
	if point.BitLength%8 != 0 {
		return nil, ctcrypto.ErrKeyFormat
	}
	return NewVerifyingKey(curve, point.Bytes)
}

// MarshalSPKI encodes the verifying key as SubjectPublicKeyInfo DER.
func (k *VerifyingKey) MarshalSPKI() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidECPublicKey)
			b.AddASN1ObjectIdentifier(oidForCurve(k.curve))
		})
		b.AddASN1BitString(k.pub.Bytes())
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, ctcrypto.ErrAsn1
	}
	return out, nil
}
