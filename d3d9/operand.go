// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"math"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
)

// src translates a source operand: register, swizzle and modifier.
func (t *translator) src(p bytecode.SrcParam) ir.Src {
	s := t.srcReg(p)
	s = s.Swz(p.Swizzle.Component(0), p.Swizzle.Component(1), p.Swizzle.Component(2), p.Swizzle.Component(3))
	return t.modify(s, p.Mod)
}

// srcReg maps a source register to IR with the identity swizzle.
func (t *translator) srcReg(p bytecode.SrcParam) ir.Src {
	switch p.Type {
	case bytecode.RegTemp:
		return t.temp(regKey{bytecode.RegTemp, p.Num}).Src()

	case bytecode.RegInput:
		var s ir.Src
		switch {
		case t.stage == bytecode.Vertex:
			s = t.vertexInput(p.Num)
		case t.version.Major >= 3:
			s = t.ps3Input(p.Num)
		default:
			s = t.colorInput(p.Num, false)
		}
		if p.Rel != nil {
			s.Indirect = t.indirect(p.Rel)
		}
		return s

	case bytecode.RegConst, bytecode.RegConst2, bytecode.RegConst3, bytecode.RegConst4:
		return t.floatConst(p)

	case bytecode.RegAddr:
		if t.stage == bytecode.Vertex {
			return t.addrReg().Src()
		}
		if t.version.Major == 1 && t.version.Minor < 4 {
			return t.temp(regKey{bytecode.RegTexture, p.Num}).Src()
		}
		return t.texcoordInput(p.Num, false)

	case bytecode.RegConstInt:
		return t.intConst(p.Num)

	case bytecode.RegConstBool:
		return t.boolConst(p.Num)

	case bytecode.RegLoop:
		return t.innermostLoop().counter.Src()

	case bytecode.RegSampler:
		s, _ := t.sampler(p.Num)
		return s

	case bytecode.RegMiscType:
		return t.misc(p.Num)

	case bytecode.RegPredicate:
		return t.predReg().Src()
	}
	t.fail(ErrInvalidShader, "%s%d is not readable", p.Type.Name(t.stage, t.version), p.Num)
	return ir.Src{}
}

// useConst marks CONST[index] as referenced.
func (t *translator) useConst(index int) {
	t.constMax = max(t.constMax, index)
}

// floatConst reads c#. Direct reads of locally defined constants fold to
// immediates; relative reads always go through the constant file.
func (t *translator) floatConst(p bytecode.SrcParam) ir.Src {
	index := p.Num
	switch p.Type {
	case bytecode.RegConst2:
		index += constBankStride
	case bytecode.RegConst3:
		index += 2 * constBankStride
	case bytecode.RegConst4:
		index += 3 * constBankStride
	}

	if p.Rel != nil {
		t.indirectConst = true
		s := ir.Reg(ir.FileConst, index)
		s.Indirect = t.indirect(p.Rel)
		return s
	}
	if v, ok := t.floatDefs[index]; ok {
		return t.b.ImmFloat(v[0], v[1], v[2], v[3])
	}
	t.useConst(index)
	t.floatMax = max(t.floatMax, index)
	return ir.Reg(ir.FileConst, index)
}

// intConst reads i#.
func (t *translator) intConst(n int) ir.Src {
	if v, ok := t.intDefs[n]; ok {
		if t.opts.NativeIntegers {
			return t.b.ImmInt(v[0], v[1], v[2], v[3])
		}
		return t.b.ImmFloat(float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3]))
	}
	if n > 15 {
		t.fail(ErrInvalidShader, "integer constant i%d out of range", n)
	}
	t.useConst(IntConstBase + n)
	return ir.Reg(ir.FileConst, IntConstBase+n)
}

// boolConst reads b#, replicated from x.
func (t *translator) boolConst(n int) ir.Src {
	if v, ok := t.boolDefs[n]; ok {
		if t.opts.NativeIntegers {
			var bits uint32
			if v {
				bits = ^uint32(0)
			}
			return t.b.ImmUint(bits, bits, bits, bits)
		}
		if v {
			return t.b.ImmScalar(1)
		}
		return t.b.ImmScalar(0)
	}
	if n > 15 {
		t.fail(ErrInvalidShader, "boolean constant b%d out of range", n)
	}
	t.useConst(BoolConstBase + n)
	return ir.Reg(ir.FileConst, BoolConstBase+n).Scalar(0)
}

// modify lowers a source modifier. Negation and absolute value are native;
// the others are computed into a scratch temporary.
func (t *translator) modify(s ir.Src, mod bytecode.SrcModifier) ir.Src {
	switch mod {
	case bytecode.SrcModNone:
		return s
	case bytecode.SrcModNeg:
		return s.Neg()
	case bytecode.SrcModAbs:
		return s.Absolute()
	case bytecode.SrcModAbsNeg:
		return s.Absolute().Neg()
	}

	tmp := t.scratchTemp()
	switch mod {
	case bytecode.SrcModBias, bytecode.SrcModBiasNeg:
		t.b.Op(ir.OpADD, tmp, s, t.b.ImmScalar(-0.5))
	case bytecode.SrcModSign, bytecode.SrcModSignNeg:
		t.b.Op(ir.OpMAD, tmp, s, t.b.ImmScalar(2), t.b.ImmScalar(-1))
	case bytecode.SrcModComp:
		t.b.Op(ir.OpADD, tmp, s.Neg(), t.b.ImmScalar(1))
	case bytecode.SrcModX2, bytecode.SrcModX2Neg:
		t.b.Op(ir.OpADD, tmp, s, s)
	case bytecode.SrcModDz, bytecode.SrcModDw:
		c := 2
		if mod == bytecode.SrcModDw {
			c = 3
		}
		t.b.Op(ir.OpRCP, tmp.Masked(ir.MaskX), s.Scalar(c))
		t.b.Op(ir.OpMUL, tmp, s, tmp.Src().Scalar(0))
	case bytecode.SrcModNot:
		if t.opts.NativeIntegers {
			t.b.Op(ir.OpNOT, tmp, s)
		} else {
			t.b.Op(ir.OpADD, tmp, s.Neg(), t.b.ImmScalar(1))
		}
	default:
		t.fail(ErrInvalidShader, "invalid source modifier %d", mod)
	}

	r := tmp.Src()
	switch mod {
	case bytecode.SrcModBiasNeg, bytecode.SrcModSignNeg, bytecode.SrcModX2Neg:
		r = r.Neg()
	}
	return r
}

// dst translates the destination of the current instruction. Shift,
// saturate and predication are applied by finishDst once the handler has
// emitted its code; a predicated handler writes a scratch temporary.
func (t *translator) dst(p bytecode.DstParam) ir.Dst {
	d := t.dstReg(p)
	sat := p.Mod&bytecode.ResultSaturate != 0
	if p.Shift == 0 && !sat && t.inst.pred == nil {
		return d
	}
	t.inst.pending = true
	t.inst.real = d
	t.inst.tmp = d
	t.inst.shift = p.Shift
	t.inst.sat = sat
	if t.inst.pred != nil {
		t.inst.tmp = t.scratchTemp().Masked(d.WriteMask)
	}
	return t.inst.tmp
}

// finishDst applies the pending destination modifiers.
func (t *translator) finishDst() {
	if !t.inst.pending {
		return
	}
	d := t.inst.tmp
	if t.inst.shift != 0 {
		scale := float32(math.Ldexp(1, int(t.inst.shift)))
		t.b.Op(ir.OpMUL, d, d.Src(), t.b.ImmScalar(scale))
	}
	if t.inst.sat {
		t.b.Op(ir.OpMAX, d, d.Src(), t.b.ImmScalar(0))
		t.b.Op(ir.OpMIN, d, d.Src(), t.b.ImmScalar(1))
	}
	if p := t.inst.pred; p != nil {
		cond, negated := t.predicate(*p)
		real := t.inst.real
		if negated {
			t.b.Op(ir.OpCMP, real, cond.Neg(), real.Src(), d.Src())
		} else {
			t.b.Op(ir.OpCMP, real, cond.Neg(), d.Src(), real.Src())
		}
	}
	t.inst.pending = false
}

// predicate returns the swizzled predicate register and whether the
// operand carries the NOT modifier.
func (t *translator) predicate(p bytecode.SrcParam) (ir.Src, bool) {
	s := t.predReg().Src()
	s = s.Swz(p.Swizzle.Component(0), p.Swizzle.Component(1), p.Swizzle.Component(2), p.Swizzle.Component(3))
	switch p.Mod {
	case bytecode.SrcModNone:
		return s, false
	case bytecode.SrcModNot:
		return s, true
	}
	t.fail(ErrInvalidShader, "invalid predicate modifier %d", p.Mod)
	return ir.Src{}, false
}
