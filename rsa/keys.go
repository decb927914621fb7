package rsa

import (
	ctcrypto "ctcrypto.dev"
	"ctcrypto.dev/low"
)

// PublicKey is an RSA public key (n, e) with n between 2048 and 8192
// bits and e a small odd integer.
type PublicKey struct {
	n       posInt
	e       uint32
	nCtx    *montCtx
	modBits uint
}

// newPublicKey validates and wraps (n, e).
func newPublicKey(n *posInt, e uint32) (*PublicKey, error) {
	bits := n.bitLen()
	if bits < minModulusBits || bits > maxModulusBits {
		return nil, ctcrypto.ErrOutOfRange
	}
	if n.w[0]&1 == 0 {
		return nil, ctcrypto.ErrOutOfRange
	}
	if e < 3 || e&1 == 0 {
		return nil, ctcrypto.ErrOutOfRange
	}
	pub := &PublicKey{n: *n, e: e, modBits: bits}
	pub.nCtx = newMontCtx(&pub.n)
	return pub, nil
}

// ModulusLenBytes returns the byte length of the public modulus, which
// is also the signature length.
func (pub *PublicKey) ModulusLenBytes() int {
	return int(pub.modBits+7) / 8
}

// publicOp computes c^e mod n. The exponent is public, so plain
// left-to-right binary exponentiation suffices.
func (pub *PublicKey) publicOp(c *posInt) (posInt, error) {
	if !c.lessThan(&pub.n) {
		return posInt{}, ctcrypto.ErrOutOfRange
	}
	var cr posInt
	cr.reduce(c, &pub.n)

	var e posInt
	e.setWord(uint64(pub.e))

	var m posInt
	pub.nCtx.expVartime(&m, &cr, &e)
	return m, nil
}

// PrivateKey is a two-prime RSA private key with the CRT components.
type PrivateKey struct {
	pub  PublicKey
	p    posInt
	q    posInt
	d    posInt
	dp   posInt
	dq   posInt
	qinv posInt

	pCtx *montCtx
	qCtx *montCtx
}

// newPrivateKey validates the component set and precomputes the
// per-prime Montgomery machinery. p > q is required.
func newPrivateKey(p, q, d, dp, dq, qinv, n *posInt, e uint32) (*PrivateKey, error) {
	pub, err := newPublicKey(n, e)
	if err != nil {
		return nil, err
	}
	if !q.lessThan(p) {
		return nil, ctcrypto.ErrOutOfRange
	}
	if p.w[0]&1 == 0 || q.w[0]&1 == 0 {
		return nil, ctcrypto.ErrOutOfRange
	}

	// pairwise check: p*q must equal n
	var prod posInt
	prod.mul(p, q)
	if !prod.equals(n) {
		return nil, ctcrypto.ErrKeyFormat
	}

	priv := &PrivateKey{
		pub: *pub, p: *p, q: *q, d: *d, dp: *dp, dq: *dq, qinv: *qinv,
	}
	priv.pCtx = newMontCtx(&priv.p)
	priv.qCtx = newMontCtx(&priv.q)
	return priv, nil
}

// PublicKey returns the public half.
func (priv *PrivateKey) PublicKey() *PublicKey {
	pub := priv.pub
	return &pub
}

// ModulusLenBytes returns the byte length of the public modulus.
func (priv *PrivateKey) ModulusLenBytes() int {
	return priv.pub.ModulusLenBytes()
}

// privateOp computes c^d mod n by the CRT: two half-size constant-time
// ladders, the Garner recombination, then one multiply-and-add.
func (priv *PrivateKey) privateOp(c *posInt) (posInt, error) {
	if !c.lessThan(&priv.pub.n) {
		return posInt{}, ctcrypto.ErrOutOfRange
	}

	// m_p = (c mod p)^dP mod p, m_q = (c mod q)^dQ mod q
	var cp, cq, mp, mq posInt
	cp.reduce(c, &priv.p)
	cq.reduce(c, &priv.q)
	priv.pCtx.expConsttime(&mp, &cp, &priv.dp)
	priv.qCtx.expConsttime(&mq, &cq, &priv.dq)

	// h = qInv * (m_p - m_q) mod p, with one conditional addition of p
	var mqModP, diff, h posInt
	mqModP.reduce(&mq, &priv.p)
	diff.resize(priv.p.n)
	low.ModSub(diff.limbs(), mp.limbs(), mqModP.limbs(), priv.p.limbs())
	priv.pCtx.mulMod(&h, &priv.qinv, &diff)

	// m = m_q + h*q
	var hq, m posInt
	hq.mul(&h, &priv.q)
	mq.resize(hq.n)
	m.resize(hq.n)
	low.Add(m.limbs(), hq.limbs(), mq.limbs())

	cp.clear()
	cq.clear()
	mp.clear()
	mq.clear()
	mqModP.clear()
	diff.clear()
	h.clear()
	hq.clear()
	return m, nil
}

// Clear wipes all private components.
func (priv *PrivateKey) Clear() {
	priv.p.clear()
	priv.q.clear()
	priv.d.clear()
	priv.dp.clear()
	priv.dq.clear()
	priv.qinv.clear()
}
