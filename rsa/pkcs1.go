package rsa

import (
	"encoding/binary"

	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

// digestInfoPrefix returns the DER DigestInfo prefix for the hash; the
// message digest is concatenated directly after it.
func digestInfoPrefix(hash ctcrypto.Hash) []byte {
	switch hash.Size() {
	case 32:
		return digestInfoSHA256
	case 48:
		return digestInfoSHA384
	case 64:
		return digestInfoSHA512
	default:
		panic("rsa: unsupported digest length")
	}
}

var digestInfoSHA256 = []byte{
	0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65,
	0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20,
}

var digestInfoSHA384 = []byte{
	0x30, 0x41, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65,
	0x03, 0x04, 0x02, 0x02, 0x05, 0x00, 0x04, 0x30,
}

var digestInfoSHA512 = []byte{
	0x30, 0x51, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65,
	0x03, 0x04, 0x02, 0x03, 0x05, 0x00, 0x04, 0x40,
}

// encodePKCS1Sig is EMSA-PKCS1-v1_5-ENCODE into the modulus-sized out:
// 0x00 || 0x01 || PS(0xff..) || 0x00 || DigestInfo || hash.
//
// It panics if the encoding cannot fit, which is unreachable for the
// supported hash and key size combinations.
func encodePKCS1Sig(out, digestInfo, hash []byte) {
	tLen := len(digestInfo) + len(hash)
	emLen := len(out)
	if emLen < tLen+11 {
		panic("rsa: encoded message length too short")
	}

	out[0] = 0x00
	out[1] = 0x01
	psEnd := emLen - tLen - 1
	for i := 2; i < psEnd; i++ {
		out[i] = 0xff
	}
	out[psEnd] = 0x00
	copy(out[psEnd+1:], digestInfo)
	copy(out[emLen-len(hash):], hash)
}

// encodePSSSig is EMSA-PSS-ENCODE with sLen = hLen and MGF1 over the
// same hash, per RFC 8017 section 9.1.1.
func encodePSSSig(hash ctcrypto.Hash, out []byte, rng ctcrypto.RandomSource, mHash []byte) error {
	hLen := len(mHash)
	sLen := hLen
	emLen := len(out)
	if emLen < hLen+sLen+2 {
		panic("rsa: encoded message length too short")
	}

	// random salt
	salt := make([]byte, sLen)
	if err := rng.Fill(salt); err != nil {
		return ctcrypto.ErrRngFailed
	}

	// H = Hash(0x00^8 || mHash || salt)
	ctx := hash.New()
	var zeros8 [8]byte
	ctx.Update(zeros8[:])
	ctx.Update(mHash)
	ctx.Update(salt)
	h := ctx.Finish()

	// DB = PS(0x00..) || 0x01 || salt
	db := out[:emLen-hLen-1]
	psLen := emLen - sLen - hLen - 2
	for i := 0; i < psLen; i++ {
		db[i] = 0x00
	}
	db[psLen] = 0x01
	copy(db[psLen+1:], salt)

	// maskedDB = DB xor MGF1(H), clear the top bit
	mgf1XOR(hash, h, db)
	db[0] &= 0x7f

	// EM = maskedDB || H || 0xbc
	copy(out[emLen-hLen-1:], h)
	out[emLen-1] = 0xbc

	low.ZeroizeBytes(salt)
	return nil
}

// verifyPSSSig is EMSA-PSS-VERIFY per RFC 8017 section 9.1.2; em is
// both input and scratch.
func verifyPSSSig(hash ctcrypto.Hash, em, mHash []byte) error {
	hLen := len(mHash)
	sLen := hLen
	emLen := len(em)
	if emLen < hLen+sLen+2 {
		return ctcrypto.ErrBadSignature
	}

	if em[emLen-1] != 0xbc {
		return ctcrypto.ErrBadSignature
	}

	maskedDB := em[:emLen-hLen-1]
	h := em[emLen-hLen-1 : emLen-1]

	if maskedDB[0]&0x80 != 0 {
		return ctcrypto.ErrBadSignature
	}

	mgf1XOR(hash, h, maskedDB)
	db := maskedDB
	db[0] &= 0x7f

	psLen := emLen - hLen - sLen - 2
	for _, z := range db[:psLen] {
		if z != 0x00 {
			return ctcrypto.ErrBadSignature
		}
	}
	if db[psLen] != 0x01 {
		return ctcrypto.ErrBadSignature
	}
	salt := db[psLen+1:]

	ctx := hash.New()
	var zeros8 [8]byte
	ctx.Update(zeros8[:])
	ctx.Update(mHash)
	ctx.Update(salt)
	hPrime := ctx.Finish()

	if low.CtBytesEq(hPrime, h) != 1 {
		return ctcrypto.ErrBadSignature
	}
	return nil
}

// mgf1XOR computes MGF1(seed) and XORs the stream into out.
func mgf1XOR(hash ctcrypto.Hash, seed, out []byte) {
	hLen := hash.Size()
	var counterBytes [4]byte
	counter := uint32(0)
	for off := 0; off < len(out); off += hLen {
		binary.BigEndian.PutUint32(counterBytes[:], counter)
		ctx := hash.New()
		ctx.Update(seed)
		ctx.Update(counterBytes[:])
		term := ctx.Finish()

		chunk := out[off:]
		if len(chunk) > hLen {
			chunk = chunk[:hLen]
		}
		for i := range chunk {
			chunk[i] ^= term[i]
		}
		counter++
	}
}
