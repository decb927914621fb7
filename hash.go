package ctcrypto

import (
	"crypto/sha512"
	"hash"

	sha256simd "github.com/minio/sha256-simd"
)

// Hash describes a hash algorithm consumed by the signature schemes.
// SHA256, SHA384 and SHA512 are the supported algorithms.
type Hash interface {
	// New returns a fresh streaming context.
	New() HashContext

	// BlockSize returns the internal block size in bytes.
	BlockSize() int

	// Size returns the output size in bytes.
	Size() int

	// Hash computes the digest of msg in one shot.
	Hash(msg []byte) []byte
}

// HashContext is a streaming hash computation.
type HashContext interface {
	// Update absorbs data.
	Update(data []byte)

	// Finish returns the digest. The context must not be used afterwards.
	Finish() []byte
}

type hashCtx struct {
	h hash.Hash
}

func (c *hashCtx) Update(data []byte) { c.h.Write(data) }
func (c *hashCtx) Finish() []byte     { return c.h.Sum(nil) }

// SHA256 implements Hash using the SIMD-accelerated SHA-256.
type SHA256 struct{}

func (SHA256) New() HashContext { return &hashCtx{h: sha256simd.New()} }
func (SHA256) BlockSize() int   { return 64 }
func (SHA256) Size() int        { return 32 }
func (SHA256) Hash(msg []byte) []byte {
	sum := sha256simd.Sum256(msg)
	return sum[:]
}

// SHA384 implements Hash.
type SHA384 struct{}

func (SHA384) New() HashContext { return &hashCtx{h: sha512.New384()} }
func (SHA384) BlockSize() int   { return 128 }
func (SHA384) Size() int        { return 48 }
func (SHA384) Hash(msg []byte) []byte {
	sum := sha512.Sum384(msg)
	return sum[:]
}

// SHA512 implements Hash.
type SHA512 struct{}

func (SHA512) New() HashContext { return &hashCtx{h: sha512.New()} }
func (SHA512) BlockSize() int   { return 128 }
func (SHA512) Size() int        { return 64 }
func (SHA512) Hash(msg []byte) []byte {
	sum := sha512.Sum512(msg)
	return sum[:]
}
