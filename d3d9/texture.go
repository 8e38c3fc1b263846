// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/internal/log"
	"github.com/gogpu/nine/ir"
)

// samplerTarget maps a declared texture type to an IR target.
func (t *translator) samplerTarget(n int, tt bytecode.TextureType) ir.TextureTarget {
	shadow := t.opts.ShadowSamplers&(1<<uint(n)) != 0
	switch tt {
	case bytecode.Texture2D:
		if shadow {
			return ir.TargetShadow2D
		}
		return ir.Target2D
	case bytecode.TextureCube:
		if shadow {
			return ir.TargetShadowCube
		}
		return ir.TargetCube
	case bytecode.TextureVolume:
		return ir.Target3D
	}
	t.fail(ErrInvalidShader, "sampler s%d has invalid texture type %d", n, tt)
	return ir.TargetUnknown
}

// implicitType returns the texture type of an undeclared sampler, taken
// from the options for ps_1_x stages.
func (t *translator) implicitType(n int) bytecode.TextureType {
	bit := uint32(1) << uint(n)
	switch {
	case t.opts.CubeSamplers&bit != 0:
		return bytecode.TextureCube
	case t.opts.VolumeSamplers&bit != 0:
		return bytecode.TextureVolume
	}
	return bytecode.Texture2D
}

func (t *translator) declareSampler(n int, tt bytecode.TextureType) ir.Src {
	if n < 0 || n > 15 {
		t.fail(ErrInvalidShader, "sampler s%d out of range", n)
	}
	if _, ok := t.samplers[n]; ok {
		t.fail(ErrInvalidShader, "sampler s%d declared twice", n)
	}
	target := t.samplerTarget(n, tt)
	s := t.b.DeclareSampler(n, target)
	t.samplers[n] = s
	t.info.SamplerTargets[n] = target
	return s
}

// sampler returns s# and its target, declaring it on first use when the
// shader model has no sampler declarations.
func (t *translator) sampler(n int) (ir.Src, ir.TextureTarget) {
	s, ok := t.samplers[n]
	if !ok {
		if t.version.Major >= 2 {
			t.log.Debug(log.Translate, "sampler used without declaration", "sampler", n)
		}
		s = t.declareSampler(n, t.implicitType(n))
	}
	t.info.SamplerMask |= 1 << uint(n)
	return s, t.info.SamplerTargets[n]
}

// texcoord1x returns the texture coordinate of a ps_1_x stage.
func (t *translator) texcoord1x(n int) ir.Src {
	return t.texcoordInput(n, false)
}

// sample emits a lookup of stage n at coord.
func (t *translator) sample(op ir.Opcode, n int, d ir.Dst, coord ir.Src) {
	s, target := t.sampler(n)
	t.b.Tex(op, target, d, coord, s)
}

// dotRows writes the dot product of v with texture coordinate first+i
// into channel i of d.
func (t *translator) dotRows(d ir.Dst, first, rows int, v ir.Src) {
	if first < 0 {
		t.fail(ErrInvalidShader, "%s needs preceding pad instructions", t.inst.info.op)
	}
	for i := 0; i < rows; i++ {
		t.b.Op(ir.OpDP3, d.Masked(1<<uint(i)), t.texcoord1x(first+i), v)
	}
}

// emitTexture lowers texture opcodes.
func (t *translator) emitTexture() {
	switch t.inst.info.kind {
	case kindTexLd:
		coord := t.src(t.inst.src[0])
		n := t.samplerNum(t.inst.src[1])
		d := t.dst(t.inst.dst[0])
		op := ir.OpTEX
		switch ctrl := t.inst.token.Control(); {
		case ctrl&bytecode.TexLdProject != 0:
			op = ir.OpTXP
		case ctrl&bytecode.TexLdBias != 0:
			op = ir.OpTXB
		}
		t.sample(op, n, d, coord)

	case kindTexLdd:
		coord := t.src(t.inst.src[0])
		n := t.samplerNum(t.inst.src[1])
		ddx := t.src(t.inst.src[2])
		ddy := t.src(t.inst.src[3])
		d := t.dst(t.inst.dst[0])
		s, target := t.sampler(n)
		t.b.Tex(ir.OpTXD, target, d, coord, ddx, ddy, s)

	case kindTexLdl:
		coord := t.src(t.inst.src[0])
		n := t.samplerNum(t.inst.src[1])
		t.sample(ir.OpTXL, n, t.dst(t.inst.dst[0]), coord)

	case kindTex14:
		// texld r#, src samples the stage named by the destination.
		coord := t.src(t.inst.src[0])
		p := t.inst.dst[0]
		t.sample(ir.OpTEX, p.Num, t.dst(p), coord)

	case kindTex1x:
		p := t.inst.dst[0]
		op := ir.OpTEX
		if t.opts.ProjectedSamplers&(1<<uint(p.Num)) != 0 {
			op = ir.OpTXP
		}
		t.sample(op, p.Num, t.dst(p), t.texcoord1x(p.Num))

	case kindTexCoord1x:
		// texcoord t# copies the coordinate clamped to [0,1] with w = 1.
		p := t.inst.dst[0]
		d := t.dst(p)
		t.b.Op(ir.OpMOV, d, t.texcoord1x(p.Num))
		t.b.Op(ir.OpMAX, d, d.Src(), t.b.ImmScalar(0))
		t.b.Op(ir.OpMIN, d, d.Src(), t.b.ImmScalar(1))
		if d.WriteMask.Has(3) {
			t.b.Op(ir.OpMOV, d.Masked(ir.MaskW), t.b.ImmScalar(1))
		}

	case kindTexCrd:
		t.b.Op(ir.OpMOV, t.dst(t.inst.dst[0]), t.src(t.inst.src[0]))

	case kindTexKill:
		p := t.inst.dst[0]
		var s ir.Src
		if t.version.Major == 1 && t.version.Minor < 4 {
			s = t.texcoord1x(p.Num)
		} else {
			s = t.src(bytecode.SrcParam{Type: p.Type, Num: p.Num, Swizzle: bytecode.NoSwizzle, Rel: p.Rel})
		}
		t.b.Op0(ir.OpKILLIF, s.Swz(0, 1, 2, 2))

	case kindTexReg2:
		p := t.inst.dst[0]
		v := t.src(t.inst.src[0])
		switch t.inst.info.op {
		case bytecode.OpTexReg2AR:
			v = v.Swz(3, 0, 0, 0)
		case bytecode.OpTexReg2GB:
			v = v.Swz(1, 2, 2, 2)
		default:
			v = v.Swz(0, 1, 2, 2)
		}
		t.sample(ir.OpTEX, p.Num, t.dst(p), v)

	case kindTexPad:
		// The rows are recomputed by the instruction closing the matrix.

	case kindTexM3x2Tex:
		p := t.inst.dst[0]
		v := t.src(t.inst.src[0])
		tmp := t.scratchTemp()
		t.b.Op(ir.OpMOV, tmp, t.b.ImmScalar(0))
		t.dotRows(tmp, p.Num-1, 2, v)
		t.sample(ir.OpTEX, p.Num, t.dst(p), tmp.Src())

	case kindTexM3x3Tex:
		p := t.inst.dst[0]
		v := t.src(t.inst.src[0])
		tmp := t.scratchTemp()
		t.b.Op(ir.OpMOV, tmp, t.b.ImmScalar(0))
		t.dotRows(tmp, p.Num-2, 3, v)
		t.sample(ir.OpTEX, p.Num, t.dst(p), tmp.Src())

	case kindTexM3x3:
		p := t.inst.dst[0]
		v := t.src(t.inst.src[0])
		d := t.dst(p)
		t.dotRows(d.Masked(ir.MaskXYZ), p.Num-2, 3, v)
		t.b.Op(ir.OpMOV, d.Masked(ir.MaskW), t.b.ImmScalar(1))

	case kindTexDp3:
		p := t.inst.dst[0]
		v := t.src(t.inst.src[0])
		t.b.Op(ir.OpDP3, t.dst(p), t.texcoord1x(p.Num), v)

	case kindTexDp3Tex:
		p := t.inst.dst[0]
		v := t.src(t.inst.src[0])
		tmp := t.scratchTemp()
		t.b.Op(ir.OpMOV, tmp, t.b.ImmScalar(0))
		t.b.Op(ir.OpDP3, tmp.Masked(ir.MaskX), t.texcoord1x(p.Num), v)
		t.sample(ir.OpTEX, p.Num, t.dst(p), tmp.Src())
	}
}

func (t *translator) samplerNum(p bytecode.SrcParam) int {
	if p.Type != bytecode.RegSampler {
		t.fail(ErrInvalidShader, "expected a sampler, got %s%d", p.Type.Name(t.stage, t.version), p.Num)
	}
	return p.Num
}
