// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
)

// emitFlow lowers control flow opcodes. Forward jumps are emitted
// unpatched and resolved when their closing instruction is reached.
func (t *translator) emitFlow() {
	switch t.inst.info.kind {
	case kindLoop:
		i := t.src(t.inst.src[1])
		t.beginLoop(i.Scalar(0), i.Scalar(1), i.Scalar(2), false)

	case kindRep:
		i := t.src(t.inst.src[0])
		t.beginLoop(i.Scalar(0), t.intImm(0), t.intImm(1), true)

	case kindEndLoop:
		t.endLoop(t.inst.info.op == bytecode.OpEndRep)

	case kindBreak:
		t.checkInLoop()
		t.b.Op0(ir.OpBRK)

	case kindBreakc:
		t.checkInLoop()
		cmp := t.comparison()
		s := t.srcs()
		tmp := t.scratchTemp().Masked(ir.MaskX)
		t.compare(tmp, cmp, s[0], s[1])
		t.b.Op0(ir.OpBREAKC, tmp.Src().Scalar(0))

	case kindBreakp:
		t.checkInLoop()
		p, negated := t.predicate(t.inst.src[0])
		cond := p.Scalar(0)
		if negated {
			cond = t.complementFloat(cond)
		}
		t.b.Op0(ir.OpBREAKC, cond)

	case kindIf:
		cond, integer := t.condition(t.inst.src[0])
		t.beginIf(cond, integer)

	case kindIfc:
		cmp := t.comparison()
		s := t.srcs()
		tmp := t.scratchTemp().Masked(ir.MaskX)
		t.compare(tmp, cmp, s[0], s[1])
		t.beginIf(tmp.Src().Scalar(0), false)

	case kindElse:
		if len(t.conds) == 0 {
			panic("d3d9: else without if")
		}
		top := &t.conds[len(t.conds)-1]
		if top.hasElse {
			panic("d3d9: second else in one if")
		}
		h := t.b.EmitPatchable(ir.OpELSE)
		t.b.Patch(top.handle, int(h))
		top.handle = h
		top.hasElse = true

	case kindEndIf:
		if len(t.conds) == 0 {
			panic("d3d9: endif without if")
		}
		top := t.conds[len(t.conds)-1]
		t.conds = t.conds[:len(t.conds)-1]
		end := t.b.Op0(ir.OpENDIF)
		t.b.Patch(top.handle, end)

	case kindCall:
		t.checkSubroutines()
		t.call(t.labelNum(t.inst.src[0]))

	case kindCallNz:
		t.checkSubroutines()
		n := t.labelNum(t.inst.src[0])
		cond, integer := t.condition(t.inst.src[1])
		op := ir.OpIF
		if integer {
			op = ir.OpUIF
		}
		h := t.b.EmitPatchable(op, cond)
		t.call(n)
		t.b.Patch(h, t.b.Op0(ir.OpENDIF))

	case kindLabel:
		t.checkSubroutines()
		n := t.labelNum(t.inst.src[0])
		slot := t.label(n)
		if slot.defined {
			t.fail(ErrInvalidShader, "label l%d defined twice", n)
		}
		slot.defined = true
		slot.pos = t.b.Position()
		for _, h := range slot.sites {
			t.b.Patch(h, slot.pos)
		}
		slot.sites = nil
		t.inSub = true

	case kindRet:
		// The final ret of the main program is implied by END.
		if !t.inSub && t.r.AtEnd() {
			return
		}
		t.b.Op0(ir.OpRET)
	}
}

// intImm returns a scalar immediate in the representation used for loop
// counters.
func (t *translator) intImm(v int32) ir.Src {
	if t.opts.NativeIntegers {
		return t.b.ImmInt(v, v, v, v)
	}
	return t.b.ImmScalar(float32(v))
}

// beginLoop opens LOOP or REP. The counter starts at init and the loop
// exits once it reaches init + count*step.
func (t *translator) beginLoop(count, init, step ir.Src, rep bool) {
	if len(t.loops) == maxNesting {
		t.fail(ErrInvalidShader, "loops nested deeper than %d", maxNesting)
	}
	ctr := t.loopCounter(len(t.loops)).Masked(ir.MaskX)
	t.b.Op(ir.OpMOV, ctr, init)
	h := t.b.EmitPatchable(ir.OpBGNLOOP)

	end := t.scratchTemp().Masked(ir.MaskX)
	if t.opts.NativeIntegers {
		t.b.Op(ir.OpUMAD, end, count, step, init)
		t.b.Op(ir.OpUSEQ, end, ctr.Src().Scalar(0), end.Src().Scalar(0))
	} else {
		t.b.Op(ir.OpMAD, end, count, step, init)
		t.b.Op(ir.OpSEQ, end, ctr.Src().Scalar(0), end.Src().Scalar(0))
	}
	t.b.Op0(ir.OpBREAKC, end.Src().Scalar(0))

	t.loops = append(t.loops, loopFrame{begin: h, counter: ctr, step: step, rep: rep})
}

// endLoop closes the innermost loop: step the counter, jump back and patch
// the loop head.
func (t *translator) endLoop(rep bool) {
	if len(t.loops) == 0 {
		panic("d3d9: loop end without loop")
	}
	f := t.loops[len(t.loops)-1]
	if f.rep != rep {
		panic("d3d9: mismatched loop end")
	}
	t.loops = t.loops[:len(t.loops)-1]

	if t.opts.NativeIntegers {
		t.b.Op(ir.OpUADD, f.counter, f.counter.Src().Scalar(0), f.step)
	} else {
		t.b.Op(ir.OpADD, f.counter, f.counter.Src().Scalar(0), f.step)
	}
	end := t.b.EmitJump(ir.OpENDLOOP, int(f.begin))
	t.b.Patch(f.begin, end)
}

func (t *translator) checkInLoop() {
	if len(t.loops) == 0 {
		t.fail(ErrInvalidShader, "%s outside of a loop", t.inst.info.op)
	}
}

// beginIf opens a conditional on the x component of cond.
func (t *translator) beginIf(cond ir.Src, integer bool) {
	if len(t.conds) == maxNesting {
		t.fail(ErrInvalidShader, "conditionals nested deeper than %d", maxNesting)
	}
	op := ir.OpIF
	if integer {
		op = ir.OpUIF
	}
	t.conds = append(t.conds, condFrame{handle: t.b.EmitPatchable(op, cond)})
}

// condition translates a boolean constant or predicate operand of if and
// callnz. integer reports that the result holds integer truth values.
func (t *translator) condition(p bytecode.SrcParam) (cond ir.Src, integer bool) {
	switch p.Type {
	case bytecode.RegConstBool:
		s := t.boolConst(p.Num)
		if p.Mod == bytecode.SrcModNot {
			tmp := t.scratchTemp().Masked(ir.MaskX)
			if t.opts.NativeIntegers {
				t.b.Op(ir.OpNOT, tmp, s)
			} else {
				t.b.Op(ir.OpADD, tmp, s.Neg(), t.b.ImmScalar(1))
			}
			s = tmp.Src().Scalar(0)
		}
		return s, t.opts.NativeIntegers
	case bytecode.RegPredicate:
		s, negated := t.predicate(p)
		s = s.Scalar(0)
		if negated {
			s = t.complementFloat(s)
		}
		return s, false
	}
	t.fail(ErrInvalidShader, "invalid condition %s%d", p.Type.Name(t.stage, t.version), p.Num)
	return ir.Src{}, false
}

// complementFloat returns 1 - s.x.
func (t *translator) complementFloat(s ir.Src) ir.Src {
	tmp := t.scratchTemp().Masked(ir.MaskX)
	t.b.Op(ir.OpADD, tmp, s.Neg(), t.b.ImmScalar(1))
	return tmp.Src().Scalar(0)
}

func (t *translator) checkSubroutines() {
	if !t.opts.NativeSubroutines {
		t.fail(ErrNotImplemented, "%s requires subroutine support", t.inst.info.op)
	}
}

func (t *translator) labelNum(p bytecode.SrcParam) int {
	if p.Type != bytecode.RegLabel || p.Num >= maxLabels {
		t.fail(ErrInvalidShader, "invalid label operand %s%d", p.Type.Name(t.stage, t.version), p.Num)
	}
	return p.Num
}

func (t *translator) label(n int) *labelSlot {
	slot, ok := t.labels[n]
	if !ok {
		slot = &labelSlot{}
		t.labels[n] = slot
	}
	return slot
}

// call emits CAL to label n, deferring the target when the label is not
// defined yet.
func (t *translator) call(n int) {
	slot := t.label(n)
	h := t.b.EmitPatchable(ir.OpCAL)
	if slot.defined {
		t.b.Patch(h, slot.pos)
		return
	}
	slot.sites = append(slot.sites, h)
}
