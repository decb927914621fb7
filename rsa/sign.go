package rsa

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

// SignPKCS1 signs message with RSASSA-PKCS1-v1_5 over the given hash.
// The signature is exactly ModulusLenBytes long.
func (priv *PrivateKey) SignPKCS1(hash ctcrypto.Hash, message []byte) ([]byte, error) {
	low.EntrySecret()
	digest := hash.Hash(message)
	return priv.signPKCS1Digest(hash, digest)
}

func (priv *PrivateKey) signPKCS1Digest(hash ctcrypto.Hash, digest []byte) ([]byte, error) {
	k := priv.ModulusLenBytes()
	em := make([]byte, k)
	encodePKCS1Sig(em, digestInfoPrefix(hash), digest)

	var m posInt
	if err := m.setBytes(em); err != nil {
		return nil, err
	}
	c, err := priv.privateOp(&m)
	if err != nil {
		return nil, err
	}

	sig := make([]byte, k)
	if err := c.bytesSized(sig, k); err != nil {
		return nil, err
	}
	m.clear()
	c.clear()
	return sig, nil
}

// VerifyPKCS1 checks an RSASSA-PKCS1-v1_5 signature over message,
// reproducing the encoding and comparing byte for byte.
func (pub *PublicKey) VerifyPKCS1(hash ctcrypto.Hash, signature, message []byte) error {
	low.EntryPublic()
	digest := hash.Hash(message)

	k := pub.ModulusLenBytes()
	if len(signature) != k {
		return ctcrypto.ErrBadSignature
	}

	var c posInt
	if err := c.setBytes(signature); err != nil {
		return ctcrypto.ErrBadSignature
	}
	m, err := pub.publicOp(&c)
	if err != nil {
		return ctcrypto.ErrBadSignature
	}

	em := make([]byte, k)
	if err := m.bytesSized(em, k); err != nil {
		return ctcrypto.ErrBadSignature
	}

	expected := make([]byte, k)
	encodePKCS1Sig(expected, digestInfoPrefix(hash), digest)

	if low.CtBytesEq(em, expected) != 1 {
		return ctcrypto.ErrBadSignature
	}
	return nil
}

// SignPSS signs message with RSASSA-PSS over the given hash, with
// saltLen = hLen and MGF1 built on the same hash.
func (priv *PrivateKey) SignPSS(hash ctcrypto.Hash, message []byte, rng ctcrypto.RandomSource) ([]byte, error) {
	low.EntrySecret()
	digest := hash.Hash(message)

	k := priv.ModulusLenBytes()
	em := make([]byte, k)
	if err := encodePSSSig(hash, em, rng, digest); err != nil {
		return nil, err
	}

	var m posInt
	if err := m.setBytes(em); err != nil {
		return nil, err
	}
	c, err := priv.privateOp(&m)
	if err != nil {
		return nil, err
	}

	sig := make([]byte, k)
	if err := c.bytesSized(sig, k); err != nil {
		return nil, err
	}
	m.clear()
	c.clear()
	return sig, nil
}

// VerifyPSS checks an RSASSA-PSS signature over message.
func (pub *PublicKey) VerifyPSS(hash ctcrypto.Hash, signature, message []byte) error {
	low.EntryPublic()
	digest := hash.Hash(message)

	k := pub.ModulusLenBytes()
	if len(signature) != k {
		return ctcrypto.ErrBadSignature
	}

	var c posInt
	if err := c.setBytes(signature); err != nil {
		return ctcrypto.ErrBadSignature
	}
	m, err := pub.publicOp(&c)
	if err != nil {
		return ctcrypto.ErrBadSignature
	}

	em := make([]byte, k)
	if err := m.bytesSized(em, k); err != nil {
		return ctcrypto.ErrBadSignature
	}
	return verifyPSSSig(hash, em, digest)
}
