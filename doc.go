// Package ctcrypto is a low-level constant-time cryptography library
// providing public-key and signature primitives for NIST P-256, NIST P-384,
// Curve25519, edwards25519 and RSA (2048- to 8192-bit moduli).
//
// The library is organised in strictly layered packages:
//
//   - low: fixed-width limb arithmetic, Montgomery kernels and
//     constant-time selection primitives
//   - p256, p384, p25519: typed field and scalar arithmetic per curve
//   - x25519, ed25519: curve25519 key agreement and edwards25519 signatures
//   - ecdsa: ECDSA over P-256 and P-384 with RFC 6979 nonces
//   - rsa: RSA signing, verification and key generation
//   - drbg: HMAC-DRBG over any hash from this package
//
// All operations run to completion on the calling goroutine, allocate no
// heap memory in the arithmetic core, and are constant-time in the values
// of their secret inputs. The root package holds the pieces common to all
// layers: the error taxonomy, the random source interface and the hash
// interface consumed by the signature schemes.
package ctcrypto
