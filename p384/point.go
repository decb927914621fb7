package p384

import "ctcrypto.dev/low"

// AffineMontPoint is a curve point (x, y) in Montgomery form.
type AffineMontPoint struct {
	x, y FieldElement
}

// JacobianMontPoint is a curve point in Jacobian coordinates, Montgomery
// form. Z = 0 encodes the point at infinity.
type JacobianMontPoint struct {
	x, y, z FieldElement
}

const (
	pointLimbs  = 18
	affineLimbs = 12
)

// curveGenerator holds the canonical generator coordinates; the
// Montgomery form is derived at init.
var curveGenerator AffineMontPoint

func init() {
	gx := FieldElement{v: [6]uint64{
		0x3a545e3872760ab7, 0x5502f25dbf55296c, 0x59f741e082542a38,
		0x6e1d3b628ba79b98, 0x8eb1c71ef320ad74, 0xaa87ca22be8b0537,
	}}
	gy := FieldElement{v: [6]uint64{
		0x7a431d7c90ea0e5f, 0x0a60b1ce1d7e819d, 0xe9da3113b5f0b8c0,
		0xf8f41dbd289a147c, 0x5d9e98bf9292dc29, 0x3617de4a96262c6f,
	}}
	curveGenerator.x.toMont(&gx)
	curveGenerator.y.toMont(&gy)

	initGeneratorTable()
}

func (p *JacobianMontPoint) setInfinity() {
	p.x = FieldElement{v: [6]uint64{1}}
	p.y = FieldElement{v: [6]uint64{1}}
	p.z = FieldElement{}
}

func (p *JacobianMontPoint) isInfinity() uint64 {
	return p.z.isZero()
}

func (p *JacobianMontPoint) fromAffine(a *AffineMontPoint) {
	p.x = a.x
	p.y = a.y
	p.z = fieldOneMont
}

func (p *JacobianMontPoint) pack(out []uint64) {
	copy(out[0:6], p.x.v[:])
	copy(out[6:12], p.y.v[:])
	copy(out[12:18], p.z.v[:])
}

func (p *JacobianMontPoint) unpack(in []uint64) {
	copy(p.x.v[:], in[0:6])
	copy(p.y.v[:], in[6:12])
	copy(p.z.v[:], in[12:18])
}

// double sets p = 2*a, preserving Z = 0. Constant time.
func (p *JacobianMontPoint) double(a *JacobianMontPoint) {
	var delta, gamma, beta, alpha, t1, t2, t3, beta4, g2 FieldElement

	delta.montSqr(&a.z)
	gamma.montSqr(&a.y)
	beta.montMul(&a.x, &gamma)

	t1.sub(&a.x, &delta)
	t2.add(&a.x, &delta)
	alpha.montMul(&t1, &t2)
	t1.add(&alpha, &alpha)
	alpha.add(&t1, &alpha)

	t1.add(&a.y, &a.z)
	t2.montSqr(&t1)
	t2.sub(&t2, &gamma)
	t2.sub(&t2, &delta)

	t1.montSqr(&alpha)
	t3.add(&beta, &beta)
	t3.add(&t3, &t3)
	beta4 = t3
	t3.add(&t3, &t3)
	t1.sub(&t1, &t3)

	t3.sub(&beta4, &t1)
	t3.montMul(&alpha, &t3)
	g2.montSqr(&gamma)
	g2.add(&g2, &g2)
	g2.add(&g2, &g2)
	g2.add(&g2, &g2)
	t3.sub(&t3, &g2)

	p.x = t1
	p.y = t3
	p.z = t2
}

func (p *JacobianMontPoint) doubleN(n int) {
	for i := 0; i < n; i++ {
		p.double(p)
	}
}

// add sets p = a + b, producing Z = 0 in the exceptional cases and
// multiplexing identity inputs in without branching.
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

	var out JacobianMontPoint
	out.x.montSqr(&rr)
	out.x.sub(&out.x, &j)
	out.x.sub(&out.x, &v)
	out.x.sub(&out.x, &v)

	t1.sub(&v, &out.x)
	out.y.montMul(&rr, &t1)
	t2.montMul(&s1, &j)
	t2.add(&t2, &t2)
	out.y.sub(&out.y, &t2)

	t1.add(&a.z, &b.z)
	t2.montSqr(&t1)
	t2.sub(&t2, &z1z1)
	t2.sub(&t2, &z2z2)
	out.z.montMul(&t2, &h)

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

// addVar handles every case including a = b by branching; use only on
// public points.
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

// mixedAdd sets p = a + b with b affine. An all-zero b stands for the
// identity (row 0 of the fixed-base table).
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

// toAffine converts to affine coordinates; p must not be the identity.
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

// precomp4 fills a window-4 table {0*P ... 15*P} in Jacobian form.
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

// scalarMulWindow4 computes scalar*P from a precomp4 table, most
// significant nibble first, with constant-time lookups.
func scalarMulWindow4(scalar *Scalar, table []uint64) JacobianMontPoint {
	var acc, entry JacobianMontPoint
	acc.setInfinity()

	var row [pointLimbs]uint64
	for i := 0; i < 96; i++ {
		if i != 0 {
			acc.doubleN(4)
		}
		shift := uint(380 - 4*i)
		nibble := (scalar.d[shift/64] >> (shift % 64)) & 0xf
		low.CopyRowFromTable(row[:], table, 16, pointLimbs, nibble)
		entry.unpack(row[:])
		acc.add(&acc, &entry)
	}
	return acc
}

// generatorTable is the window-8 fixed-base table {0*G ... 255*G} in
// affine Montgomery form. Row 0 stays all-zero (identity).
var generatorTable [256 * affineLimbs]uint64

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

func initGeneratorTable() {
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
		copy(generatorTable[i*affineLimbs+6:], y.v[:])
	}
}

// basePointMul computes scalar*G byte-by-byte MSB first with eight
// doublings between mixed additions.
func basePointMul(scalar *Scalar) JacobianMontPoint {
	var acc JacobianMontPoint
	var entry AffineMontPoint
	acc.setInfinity()

	var sb [48]byte
	scalar.Bytes(sb[:])
	var row [affineLimbs]uint64
	for i := 0; i < 48; i++ {
		if i != 0 {
			acc.doubleN(8)
		}
		low.CopyRowFromTable(row[:], generatorTable[:], 256, affineLimbs, uint64(sb[i]))
		copy(entry.x.v[:], row[0:6])
		copy(entry.y.v[:], row[6:12])
		acc.mixedAdd(&acc, &entry)
	}
	low.ZeroizeBytes(sb[:])
	low.Zeroize(row[:])
	return acc
}
