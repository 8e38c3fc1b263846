// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
)

// emitGeneric lowers an opcode with a direct IR counterpart.
func (t *translator) emitGeneric() {
	info := t.inst.info
	if info.irOp == ir.OpNOP {
		return
	}
	srcs := t.srcs()
	if info.ndst == 0 {
		t.b.Op0(info.irOp, srcs...)
		return
	}
	op := info.irOp
	if op == ir.OpMOV && t.stage == bytecode.Vertex && t.inst.dst[0].Type == bytecode.RegAddr {
		// vs_1_x loads a0 with mov; the value is floored.
		op = ir.OpARL
	}
	t.b.Op(op, t.dst(t.inst.dst[0]), srcs...)
}

// srcs translates all source operands of the current instruction.
func (t *translator) srcs() []ir.Src {
	out := make([]ir.Src, len(t.inst.src))
	for i, p := range t.inst.src {
		out[i] = t.src(p)
	}
	return out
}

// emitArith lowers arithmetic opcodes that expand to several IR
// instructions or need operand rewriting.
func (t *translator) emitArith() {
	info := t.inst.info
	switch info.kind {
	case kindSub:
		s := t.srcs()
		t.b.Op(ir.OpADD, t.dst(t.inst.dst[0]), s[0], s[1].Neg())

	case kindScalarAbs:
		s := t.srcs()
		t.b.Op(info.irOp, t.dst(t.inst.dst[0]), s[0].Absolute())

	case kindAbs:
		s := t.srcs()
		t.b.Op(ir.OpMOV, t.dst(t.inst.dst[0]), s[0].Absolute())

	case kindPow:
		s := t.srcs()
		t.b.Op(ir.OpPOW, t.dst(t.inst.dst[0]), s[0].Absolute(), s[1])

	case kindMatrix:
		t.emitMatrix()

	case kindSinCos:
		// sincos writes cos to x and sin to y; the sm2 scratch operands
		// are ignored. The source is copied first since it may alias the
		// destination.
		tmp := t.scratchTemp().Masked(ir.MaskX)
		t.b.Op(ir.OpMOV, tmp, t.src(t.inst.src[0]))
		s := tmp.Src().Scalar(0)
		d := t.dst(t.inst.dst[0])
		if d.WriteMask.Has(0) {
			t.b.Op(ir.OpCOS, d.Masked(ir.MaskX), s)
		}
		if d.WriteMask.Has(1) {
			t.b.Op(ir.OpSIN, d.Masked(ir.MaskY), s)
		}

	case kindNrm:
		s := t.src(t.inst.src[0])
		d := t.dst(t.inst.dst[0])
		tmp := t.scratchTemp().Masked(ir.MaskX)
		t.b.Op(ir.OpDP3, tmp, s, s)
		t.b.Op(ir.OpRSQ, tmp, tmp.Src().Scalar(0))
		t.b.Op(ir.OpMIN, tmp, tmp.Src().Scalar(0), t.b.ImmScalar(ir.FloatMax))
		t.b.Op(ir.OpMUL, d, s, tmp.Src().Scalar(0))

	case kindSgn:
		s := t.src(t.inst.src[0])
		d := t.dst(t.inst.dst[0])
		pos := t.scratchTemp()
		neg := t.scratchTemp()
		zero := t.b.ImmScalar(0)
		t.b.Op(ir.OpSLT, pos, zero, s)
		t.b.Op(ir.OpSLT, neg, s, zero)
		t.b.Op(ir.OpADD, d, pos.Src(), neg.Src().Neg())

	case kindDp2Add:
		s := t.srcs()
		d := t.dst(t.inst.dst[0])
		tmp := t.scratchTemp()
		t.b.Op(ir.OpDP2, tmp, s[0], s[1])
		t.b.Op(ir.OpADD, d, tmp.Src(), s[2])

	case kindCmp:
		// cmp selects src1 where src0 >= 0.
		s := t.srcs()
		t.b.Op(ir.OpCMP, t.dst(t.inst.dst[0]), s[0], s[2], s[1])

	case kindCnd:
		t.emitCnd()

	case kindMova:
		s := t.srcs()
		t.b.Op(ir.OpARR, t.dst(t.inst.dst[0]), s[0])

	case kindSetp:
		cmp := t.comparison()
		s := t.srcs()
		t.compare(t.dst(t.inst.dst[0]), cmp, s[0], s[1])
	}
}

// matrixRows returns the dot product width and row count of a matrix opcode.
func matrixRows(op bytecode.Opcode) int {
	switch op {
	case bytecode.OpM4x4, bytecode.OpM3x4:
		return 4
	case bytecode.OpM4x3, bytecode.OpM3x3:
		return 3
	}
	return 2
}

// emitMatrix expands mKxN into one dot product per written row, reading
// consecutive registers starting at src1.
func (t *translator) emitMatrix() {
	info := t.inst.info
	dp := t.inst.dst[0]
	vec := t.inst.src[0]

	s0 := t.src(vec)
	d := t.dst(dp)
	if vec.Type == dp.Type && vec.Num == dp.Num && vec.Rel == nil && dp.Rel == nil {
		tmp := t.scratchTemp()
		t.b.Op(ir.OpMOV, tmp, s0)
		s0 = tmp.Src()
	}

	row := t.inst.src[1]
	for i := 0; i < matrixRows(info.op); i++ {
		if !d.WriteMask.Has(i) {
			continue
		}
		r := row
		r.Num += i
		t.b.Op(info.irOp, d.Masked(1<<uint(i)), s0, t.src(r))
	}
}

// emitCnd lowers cnd: dst = src0 > 0.5 ? src1 : src2. Before ps_1_4 the
// condition is r0.a, and a co-issued cnd writing color channels copies src1.
func (t *translator) emitCnd() {
	s := t.srcs()
	d := t.dst(t.inst.dst[0])
	legacy := t.version.Minor < 4
	if legacy && t.inst.token.Coissue() && t.inst.dst[0].Mask != bytecode.MaskW {
		t.b.Op(ir.OpMOV, d, s[1])
		return
	}
	cond := s[0]
	if legacy {
		cond = cond.Scalar(3)
	}
	tmp := t.scratchTemp()
	t.b.Op(ir.OpSGT, tmp, cond, t.b.ImmScalar(0.5))
	t.b.Op(ir.OpCMP, d, tmp.Src().Neg(), s[1], s[2])
}

// comparison returns the comparison held in the control bits.
func (t *translator) comparison() bytecode.Comparison {
	cmp := bytecode.Comparison(t.inst.token.Control() & 7)
	if !cmp.Valid() {
		t.fail(ErrInvalidShader, "invalid comparison %d", cmp)
	}
	return cmp
}

// compare writes 1.0 where a cmp b holds and 0.0 elsewhere.
func (t *translator) compare(d ir.Dst, cmp bytecode.Comparison, a, b ir.Src) {
	var op ir.Opcode
	switch cmp {
	case bytecode.CmpGT:
		op = ir.OpSGT
	case bytecode.CmpEQ:
		op = ir.OpSEQ
	case bytecode.CmpGE:
		op = ir.OpSGE
	case bytecode.CmpLT:
		op = ir.OpSLT
	case bytecode.CmpNE:
		op = ir.OpSNE
	case bytecode.CmpLE:
		op = ir.OpSLE
	}
	t.b.Op(op, d, a, b)
}
