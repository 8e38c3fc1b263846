// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
	"github.com/gogpu/nine/semantic"
)

// Input register layout of pixel shaders before 3.0: the two color inputs
// come first, texture coordinates follow.
const (
	psColorInputs  = 0
	psTexcoordBase = 2
)

// temp returns the IR temporary backing a D3D9 register, allocating it on
// first use.
func (t *translator) temp(k regKey) ir.Dst {
	if d, ok := t.temps[k]; ok {
		return d
	}
	d := t.b.DeclareTemp()
	t.temps[k] = d
	return d
}

// scratchTemp returns a temporary that is only valid for the current
// D3D9 instruction.
func (t *translator) scratchTemp() ir.Dst {
	if t.scratchUsed == len(t.scratch) {
		if len(t.scratch) == maxScratch {
			panic("d3d9: scratch temporaries exhausted")
		}
		t.scratch = append(t.scratch, t.b.DeclareTemp())
	}
	d := t.scratch[t.scratchUsed]
	t.scratchUsed++
	return d
}

// addrReg returns a0.
func (t *translator) addrReg() ir.Dst {
	if t.addr == nil {
		d := t.b.DeclareAddress(0)
		t.addr = &d
	}
	return *t.addr
}

// predReg returns p0, in the predicate file when the backend has one.
func (t *translator) predReg() ir.Dst {
	if t.pred == nil {
		var d ir.Dst
		if t.opts.MaxPredicates > 0 {
			d = t.b.DeclarePredicate(0)
		} else {
			d = t.b.DeclareTemp()
		}
		t.pred = &d
	}
	return *t.pred
}

// loopCounter returns the counter of the loop at the given depth. Counters
// are shared by loops at the same depth.
func (t *translator) loopCounter(depth int) ir.Dst {
	for len(t.counters) <= depth {
		t.counters = append(t.counters, t.b.DeclareTemp())
	}
	return t.counters[depth]
}

// innermostLoop returns the innermost LOOP, skipping REP frames.
func (t *translator) innermostLoop() *loopFrame {
	for i := len(t.loops) - 1; i >= 0; i-- {
		if !t.loops[i].rep {
			return &t.loops[i]
		}
	}
	t.fail(ErrInvalidShader, "aL used outside of a loop")
	return nil
}

// loopIndirect loads aL into the address register and returns the
// indirection reading it.
func (t *translator) loopIndirect() *ir.Indirect {
	f := t.innermostLoop()
	if t.loopAddr == nil {
		d := t.b.DeclareAddress(1)
		t.loopAddr = &d
	}
	a := t.loopAddr.Masked(ir.MaskX)
	if t.opts.NativeIntegers {
		t.b.Op(ir.OpUARL, a, f.counter.Src().Scalar(0))
	} else {
		t.b.Op(ir.OpARL, a, f.counter.Src().Scalar(0))
	}
	return &ir.Indirect{File: ir.FileAddress, Index: 1}
}

// indirect translates the relative sub-operand of a register.
func (t *translator) indirect(rel *bytecode.SrcParam) *ir.Indirect {
	if rel == nil {
		return nil
	}
	switch rel.Type {
	case bytecode.RegAddr:
		if t.stage != bytecode.Vertex {
			t.fail(ErrInvalidShader, "relative addressing through t%d", rel.Num)
		}
		t.addrReg()
		return &ir.Indirect{File: ir.FileAddress, Index: 0, Component: rel.Swizzle.Component(0)}
	case bytecode.RegLoop:
		return t.loopIndirect()
	}
	t.fail(ErrInvalidShader, "invalid address register %s", rel.Type.Name(t.stage, t.version))
	return nil
}

// vertexInput returns v# of a vertex shader. The IR index is the register
// number; the usage lives in the input map.
func (t *translator) vertexInput(n int) ir.Src {
	k := regKey{bytecode.RegInput, n}
	if s, ok := t.inputs[k]; ok {
		return s
	}
	s := t.b.DeclareInput(n, ir.Semantic{Name: ir.SemNone, Index: n}, ir.InterpPerspective, false)
	t.inputs[k] = s
	if n >= len(t.info.InputMap) {
		t.inputUsage(n, semantic.None)
	}
	return s
}

// pixelInput declares a pixel shader input register.
func (t *translator) pixelInput(k regKey, index int, sem ir.Semantic, interp ir.Interpolation, centroid bool) ir.Src {
	if s, ok := t.inputs[k]; ok {
		return s
	}
	s := t.b.DeclareInput(index, sem, interp, centroid)
	t.inputs[k] = s
	return s
}

// colorInput returns v0 or v1 of a pixel shader before 3.0.
func (t *translator) colorInput(n int, centroid bool) ir.Src {
	if n > 1 {
		t.fail(ErrInvalidShader, "color input v%d out of range", n)
	}
	sem := semantic.Assign(bytecode.UsageColor, n, t.opts.semanticOptions())
	return t.pixelInput(regKey{bytecode.RegInput, n}, psColorInputs+n, sem, ir.InterpColor, centroid)
}

// texcoordInput returns the interpolated texture coordinate t# of a pixel
// shader before 3.0.
func (t *translator) texcoordInput(n int, centroid bool) ir.Src {
	if n < 0 || n > 7 {
		t.fail(ErrInvalidShader, "texture coordinate t%d out of range", n)
	}
	sem := semantic.Assign(bytecode.UsageTexCoord, n, t.opts.semanticOptions())
	return t.pixelInput(regKey{bytecode.RegTexture, n}, psTexcoordBase+n, sem, ir.InterpPerspective, centroid)
}

// ps3Input returns v# of a ps_3_0 shader, which must have been declared.
func (t *translator) ps3Input(n int) ir.Src {
	if s, ok := t.inputs[regKey{bytecode.RegInput, n}]; ok {
		return s
	}
	t.fail(ErrInvalidShader, "input v%d is not declared", n)
	return ir.Src{}
}

// misc returns vPos or vFace.
func (t *translator) misc(n int) ir.Src {
	if s, ok := t.sysvals[n]; ok {
		return s
	}
	switch n {
	case bytecode.MiscPosition:
		sv := t.b.DeclareSystemValue(n, ir.Semantic{Name: ir.SemPosition})
		s := sv
		if t.opts.PixelCenterHalf {
			// D3D9 pixel centers are at integer coordinates.
			tmp := t.b.DeclareTemp()
			t.b.Op(ir.OpMOV, tmp, sv)
			t.b.Op(ir.OpADD, tmp.Masked(ir.MaskXY), sv, t.b.ImmFloat(-0.5, -0.5, 0, 0))
			s = tmp.Src()
		}
		t.sysvals[n] = s
		return s
	case bytecode.MiscFace:
		s := t.b.DeclareSystemValue(n, ir.Semantic{Name: ir.SemFace})
		t.sysvals[n] = s
		return s
	}
	t.fail(ErrInvalidShader, "invalid misc register %d", n)
	return ir.Src{}
}

// colorOutput returns oC#.
func (t *translator) colorOutput(n int) ir.Dst {
	if n > 3 {
		t.fail(ErrInvalidShader, "color output oC%d out of range", n)
	}
	k := regKey{bytecode.RegColorOut, n}
	if d, ok := t.outputs[k]; ok {
		return d
	}
	d := t.b.DeclareOutput(n, ir.Semantic{Name: ir.SemColor, Index: n})
	t.outputs[k] = d
	t.info.RTMask |= 1 << uint(n)
	return d
}

// vertexOutput returns an output register of a vertex shader before 3.0.
// IR indices are given out in first-use order.
func (t *translator) vertexOutput(k regKey) ir.Dst {
	if d, ok := t.outputs[k]; ok {
		return d
	}
	opts := t.opts.semanticOptions()
	var sem ir.Semantic
	switch k.typ {
	case bytecode.RegRastOut:
		switch k.num {
		case bytecode.RastOutPosition:
			sem = ir.Semantic{Name: ir.SemPosition}
		case bytecode.RastOutFog:
			sem = semantic.Assign(bytecode.UsageFog, 0, opts)
		case bytecode.RastOutPointSize:
			sem = ir.Semantic{Name: ir.SemPSize}
			t.info.PointSize = true
		default:
			t.fail(ErrInvalidShader, "invalid rasterizer output %d", k.num)
		}
	case bytecode.RegAttrOut:
		if k.num > 1 {
			t.fail(ErrInvalidShader, "color output oD%d out of range", k.num)
		}
		sem = semantic.Assign(bytecode.UsageColor, k.num, opts)
	case bytecode.RegTexCrdOut:
		if k.num > 7 {
			t.fail(ErrInvalidShader, "texture coordinate output oT%d out of range", k.num)
		}
		sem = semantic.Assign(bytecode.UsageTexCoord, k.num, opts)
	}
	d := t.b.DeclareOutput(t.nextOutput, sem)
	t.nextOutput++
	t.outputs[k] = d
	return d
}

// dstReg maps a destination register to IR without its modifiers.
func (t *translator) dstReg(p bytecode.DstParam) ir.Dst {
	var d ir.Dst
	switch p.Type {
	case bytecode.RegTemp:
		d = t.temp(regKey{bytecode.RegTemp, p.Num})
	case bytecode.RegAddr:
		if t.stage == bytecode.Vertex {
			d = t.addrReg()
		} else if t.version.Major == 1 && t.version.Minor < 4 {
			d = t.temp(regKey{bytecode.RegTexture, p.Num})
		} else {
			t.fail(ErrInvalidShader, "t%d is not writable", p.Num)
		}
	case bytecode.RegRastOut, bytecode.RegAttrOut:
		d = t.vertexOutput(regKey{p.Type, p.Num})
	case bytecode.RegOutput:
		if t.version.Major >= 3 {
			var ok bool
			if d, ok = t.outputs[regKey{bytecode.RegOutput, p.Num}]; !ok {
				t.fail(ErrInvalidShader, "output o%d is not declared", p.Num)
			}
		} else {
			d = t.vertexOutput(regKey{p.Type, p.Num})
		}
	case bytecode.RegColorOut:
		d = t.colorOutput(p.Num)
	case bytecode.RegDepthOut:
		k := regKey{bytecode.RegDepthOut, 0}
		if out, ok := t.outputs[k]; ok {
			d = out
		} else {
			d = t.b.DeclareOutput(depthOutput, ir.Semantic{Name: ir.SemDepth})
			t.outputs[k] = d
		}
	case bytecode.RegPredicate:
		d = t.predReg()
	default:
		t.fail(ErrInvalidShader, "%s%d is not writable", p.Type.Name(t.stage, t.version), p.Num)
	}
	if p.Rel != nil {
		d.Indirect = t.indirect(p.Rel)
	}
	return d.Masked(ir.WriteMask(p.Mask))
}
