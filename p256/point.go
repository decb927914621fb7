package p256

import "ctcrypto.dev/low"

// AffineMontPoint is a curve point (x, y) with both coordinates in
// Montgomery form. The point at infinity has no affine representation.
type AffineMontPoint struct {
	x, y FieldElement
}

// JacobianMontPoint is a curve point in Jacobian coordinates (X, Y, Z),
// affine (X/Z^2, Y/Z^3), all in Montgomery form. Z = 0 encodes the point
// at infinity.
type JacobianMontPoint struct {
	x, y, z FieldElement
}

// pointLimbs is the limb width of a packed Jacobian point.
const pointLimbs = 12

var curveGenerator = AffineMontPoint{
	x: FieldElement{v: [4]uint64{0x79e730d418a9143c, 0x75ba95fc5fedb601, 0x79fb732b77622510, 0x18905f76a53755c6}},
	y: FieldElement{v: [4]uint64{0xddf25357ce95560a, 0x8b4ab8e4ba19e45c, 0xd2e88688dd21f325, 0x8571ff1825885d85}},
}

// setInfinity stores the conventional (1, 1, 0) identity encoding.
func (p *JacobianMontPoint) setInfinity() {
	p.x = FieldElement{v: [4]uint64{1, 0, 0, 0}}
	p.y = FieldElement{v: [4]uint64{1, 0, 0, 0}}
	p.z = FieldElement{}
}

// isInfinity returns 1 when Z = 0. Constant time.
func (p *JacobianMontPoint) isInfinity() uint64 {
	return p.z.isZero()
}

// fromAffine lifts an affine point to Jacobian coordinates with Z = 1.
func (p *JacobianMontPoint) fromAffine(a *AffineMontPoint) {
	p.x = a.x
	p.y = a.y
	p.z = fieldOneMont
}

func (p *JacobianMontPoint) pack(out []uint64) {
	copy(out[0:4], p.x.v[:])
	copy(out[4:8], p.y.v[:])
	copy(out[8:12], p.z.v[:])
}

func (p *JacobianMontPoint) unpack(in []uint64) {
	copy(p.x.v[:], in[0:4])
	copy(p.y.v[:], in[4:8])
	copy(p.z.v[:], in[8:12])
}

// double sets p = 2*a. Handles Z = 0 by preserving it (the identity
// doubles to the identity). Constant time. Uses the standard Jacobian
// doubling for a = -3 curves.
func (p *JacobianMontPoint) double(a *JacobianMontPoint) {
	var delta, gamma, beta, alpha, t1, t2, t3 FieldElement

	delta.montSqr(&a.z)
	gamma.montSqr(&a.y)
	beta.montMul(&a.x, &gamma)

	// alpha = 3*(X - delta)*(X + delta)
	t1.sub(&a.x, &delta)
	t2.add(&a.x, &delta)
	alpha.montMul(&t1, &t2)
	t1.add(&alpha, &alpha)
	alpha.add(&t1, &alpha)

	// Z3 = (Y + Z)^2 - gamma - delta
	t1.add(&a.y, &a.z)
	t2.montSqr(&t1)
	t2.sub(&t2, &gamma)
	t2.sub(&t2, &delta)

	// X3 = alpha^2 - 8*beta
	t1.montSqr(&alpha)
	t3.add(&beta, &beta)
	t3.add(&t3, &t3)
	var beta4 FieldElement
	beta4 = t3
	t3.add(&t3, &t3)
	t1.sub(&t1, &t3)

	// Y3 = alpha*(4*beta - X3) - 8*gamma^2
	t3.sub(&beta4, &t1)
	t3.montMul(&alpha, &t3)
	var g2 FieldElement
	g2.montSqr(&gamma)
	g2.add(&g2, &g2)
	g2.add(&g2, &g2)
	g2.add(&g2, &g2)
	t3.sub(&t3, &g2)

	p.x = t1
	p.y = t3
	p.z = t2
}

// doubleN doubles n times in place.
func (p *JacobianMontPoint) doubleN(n int) {
	for i := 0; i < n; i++ {
		p.double(p)
	}
}

// add sets p = a + b. The formulas yield Z = 0 for the exceptional cases
// a = b, a = -b; identity inputs are multiplexed in afterwards without
// branching on the values.
func (p *JacobianMontPoint) add(a, b *JacobianMontPoint) {
	var z1z1, z2z2, u1, u2, s1, s2, h, i, j, rr, v, t1, t2 FieldElement

	z1z1.montSqr(&a.z)
	z2z2.montSqr(&b.z)
	u1.montMul(&a.x, &z2z2)
	u2.montMul(&b.x, &z1z1)

	s1.montMul(&a.y, &b.z)
	s1.montMul(&s1, &z2z2)
	s2.montMul(&b.y, &a.z)
	s2.montMul(&s2, &z1z1)

	h.sub(&u2, &u1)
	t1.add(&h, &h)
	i.montSqr(&t1)
	j.montMul(&h, &i)
	rr.sub(&s2, &s1)
	rr.add(&rr, &rr)
	v.montMul(&u1, &i)

	// X3 = rr^2 - J - 2V
	var out JacobianMontPoint
	out.x.montSqr(&rr)
	out.x.sub(&out.x, &j)
	out.x.sub(&out.x, &v)
	out.x.sub(&out.x, &v)

	// Y3 = rr*(V - X3) - 2*S1*J
	t1.sub(&v, &out.x)
	out.y.montMul(&rr, &t1)
	t2.montMul(&s1, &j)
	t2.add(&t2, &t2)
	out.y.sub(&out.y, &t2)

	// Z3 = ((Z1 + Z2)^2 - Z1Z1 - Z2Z2) * H
	t1.add(&a.z, &b.z)
	t2.montSqr(&t1)
	t2.sub(&t2, &z1z1)
	t2.sub(&t2, &z2z2)
	out.z.montMul(&t2, &h)

	// multiplex in the identity cases
	aInf := low.MaskFromBit(a.isInfinity())
	bInf := low.MaskFromBit(b.isInfinity())

	var packed, pa, pb [pointLimbs]uint64
	out.pack(packed[:])
	a.pack(pa[:])
	b.pack(pb[:])
	low.CondAssign(bInf, packed[:], pa[:])
	low.CondAssign(aInf, packed[:], pb[:])
	p.unpack(packed[:])
}

// addVar sets p = a + b, handling every case including a = b, by
// branching on the intermediate values. Variable time; use only when
// both points are public (signature verification).
func (p *JacobianMontPoint) addVar(a, b *JacobianMontPoint) {
	if a.isInfinity() == 1 {
		*p = *b
		return
	}
	if b.isInfinity() == 1 {
		*p = *a
		return
	}

	var z1z1, z2z2, u1, u2, s1, s2, h, rr FieldElement
	z1z1.montSqr(&a.z)
	z2z2.montSqr(&b.z)
	u1.montMul(&a.x, &z2z2)
	u2.montMul(&b.x, &z1z1)
	s1.montMul(&a.y, &b.z)
	s1.montMul(&s1, &z2z2)
	s2.montMul(&b.y, &a.z)
	s2.montMul(&s2, &z1z1)
	h.sub(&u2, &u1)
	rr.sub(&s2, &s1)

	if h.isZero() == 1 {
		if rr.isZero() == 1 {
			p.double(a)
			return
		}
		p.setInfinity()
		return
	}
	p.add(a, b)
}

// mixedAdd sets p = a + b with b affine (implicit Z = 1). An all-zero b
// stands for the identity, as produced by row 0 of the fixed-base table;
// both identity cases are multiplexed in without branching.
func (p *JacobianMontPoint) mixedAdd(a *JacobianMontPoint, b *AffineMontPoint) {
	var bj JacobianMontPoint
	bj.fromAffine(b)

	var z1z1, u2, s2, h, hh, i, j, rr, v, t1, t2 FieldElement

	z1z1.montSqr(&a.z)
	u2.montMul(&b.x, &z1z1)
	s2.montMul(&b.y, &a.z)
	s2.montMul(&s2, &z1z1)

	h.sub(&u2, &a.x)
	hh.montSqr(&h)
	i.add(&hh, &hh)
	i.add(&i, &i)
	j.montMul(&h, &i)
	rr.sub(&s2, &a.y)
	rr.add(&rr, &rr)
	v.montMul(&a.x, &i)

	var out JacobianMontPoint
	out.x.montSqr(&rr)
	out.x.sub(&out.x, &j)
	out.x.sub(&out.x, &v)
	out.x.sub(&out.x, &v)

	t1.sub(&v, &out.x)
	out.y.montMul(&rr, &t1)
	t2.montMul(&a.y, &j)
	t2.add(&t2, &t2)
	out.y.sub(&out.y, &t2)

	t1.add(&a.z, &h)
	t2.montSqr(&t1)
	t2.sub(&t2, &z1z1)
	t2.sub(&t2, &hh)
	out.z = t2

	aInf := low.MaskFromBit(a.isInfinity())
	bZero := low.MaskFromBit(b.x.isZero() & b.y.isZero())

	var packed, pa, pb [pointLimbs]uint64
	out.pack(packed[:])
	a.pack(pa[:])
	bj.pack(pb[:])
	low.CondAssign(bZero, packed[:], pa[:])
	low.CondAssign(aInf&^bZero, packed[:], pb[:])
	p.unpack(packed[:])
}

// toAffine converts to affine coordinates. The caller must know p is not
// the identity.
func (p *JacobianMontPoint) toAffine() AffineMontPoint {
	var z2, z3, z2inv, z3inv FieldElement
	z2.montSqr(&p.z)
	z3.montMul(&p.z, &z2)
	z2inv.montInv(&z2)
	z3inv.montInv(&z3)

	var out AffineMontPoint
	out.x.montMul(&p.x, &z2inv)
	out.y.montMul(&p.y, &z3inv)
	return out
}

// lookup reads table entry idx while touching every row.
func lookupJacobian(p *JacobianMontPoint, table []uint64, height, idx uint64) {
	var row [pointLimbs]uint64
	low.CopyRowFromTable(row[:], table, height, pointLimbs, idx)
	p.unpack(row[:])
}

// precomp4 fills a window-4 table {0*P, 1*P, ..., 15*P}. Row 0 stays
// all-zero, which unpacks to Z = 0 and so behaves as the identity.
func (a *AffineMontPoint) precomp4(table []uint64) {
	var j JacobianMontPoint
	j.fromAffine(a)

	var rows [16]JacobianMontPoint
	var inf JacobianMontPoint
	inf.setInfinity()

	for i := 0; i < 4; i++ {
		rows[1<<i].add(&inf, &j)
		j.double(&j)
	}
	for i := 3; i < 16; i += 2 {
		rows[i].add(&rows[2], &rows[i-2])
	}
	for _, i := range []int{6, 10, 12, 14} {
		rows[i].add(&rows[2], &rows[i-2])
	}
	for i := 1; i < 16; i++ {
		rows[i].pack(table[i*pointLimbs : (i+1)*pointLimbs])
	}
}

// scalarMulWindow4 computes scalar*P using a caller-provided window-4
// table built by precomp4. Most significant nibble first, four doublings
// per window, constant-time table lookups.
func scalarMulWindow4(scalar *Scalar, table []uint64) JacobianMontPoint {
	var acc, entry JacobianMontPoint
	acc.setInfinity()

	for i := 0; i < 64; i++ {
		if i != 0 {
			acc.doubleN(4)
		}
		shift := uint(252 - 4*i)
		nibble := (scalar.d[shift/64] >> (shift % 64)) & 0xf
		lookupJacobian(&entry, table, 16, nibble)
		acc.add(&acc, &entry)
	}
	return acc
}

// affineLimbs is the limb width of a packed affine table row.
const affineLimbs = 8

// generatorTable is the window-8 fixed-base table {0*G ... 255*G} in
// affine Montgomery form, populated once at init and immutable
// afterwards. Row 0 stays all-zero and stands for the identity.
var generatorTable [256 * affineLimbs]uint64

// batchInvertZ inverts every Z coordinate with a single field inversion
// using Montgomery's trick.
func batchInvertZ(zs []FieldElement) []FieldElement {
	n := len(zs)
	prefix := make([]FieldElement, n)
	prefix[0] = fieldOneMont
	for i := 1; i < n; i++ {
		prefix[i].montMul(&prefix[i-1], &zs[i-1])
	}
	var u FieldElement
	u.montMul(&prefix[n-1], &zs[n-1])
	u.montInv(&u)

	out := make([]FieldElement, n)
	for i := n - 1; i >= 0; i-- {
		out[i].montMul(&u, &prefix[i])
		u.montMul(&u, &zs[i])
	}
	return out
}

func init() {
	var j JacobianMontPoint
	j.fromAffine(&curveGenerator)

	var rows [256]JacobianMontPoint
	var inf JacobianMontPoint
	inf.setInfinity()

	for i := 0; i < 8; i++ {
		rows[1<<i].add(&inf, &j)
		j.double(&j)
	}
	for i := 3; i < 256; i += 2 {
		rows[i].add(&rows[2], &rows[i-2])
	}
	for i := 2; i < 256; i += 2 {
		if i&(i-1) != 0 {
			rows[i].add(&rows[2], &rows[i-2])
		}
	}

	zs := make([]FieldElement, 255)
	for i := 1; i < 256; i++ {
		zs[i-1] = rows[i].z
	}
	zInvs := batchInvertZ(zs)
	for i := 1; i < 256; i++ {
		var zi2, zi3, x, y FieldElement
		zi2.montSqr(&zInvs[i-1])
		zi3.montMul(&zi2, &zInvs[i-1])
		x.montMul(&rows[i].x, &zi2)
		y.montMul(&rows[i].y, &zi3)
		copy(generatorTable[i*affineLimbs:], x.v[:])
		copy(generatorTable[i*affineLimbs+4:], y.v[:])
	}
}

// basePointMul computes scalar*G using the fixed-base window-8 table.
// Byte-by-byte MSB first, eight doublings between mixed additions, with
// constant-time row lookups.
func basePointMul(scalar *Scalar) JacobianMontPoint {
	var acc JacobianMontPoint
	var entry AffineMontPoint
	acc.setInfinity()

	var sb [32]byte
	scalar.Bytes(sb[:])
	var row [affineLimbs]uint64
	for i := 0; i < 32; i++ {
		if i != 0 {
			acc.doubleN(8)
		}
		low.CopyRowFromTable(row[:], generatorTable[:], 256, affineLimbs, uint64(sb[i]))
		copy(entry.x.v[:], row[0:4])
		copy(entry.y.v[:], row[4:8])
		acc.mixedAdd(&acc, &entry)
	}
	low.ZeroizeBytes(sb[:])
	low.Zeroize(row[:])
	return acc
}
