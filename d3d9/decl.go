// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"math"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
	"github.com/gogpu/nine/semantic"
)

// emitDcl handles register declarations. They produce IR declarations and,
// for vPos, the pixel center correction.
func (t *translator) emitDcl() {
	d := t.inst.dst[0]
	decl := t.inst.decl
	centroid := d.Mod&bytecode.ResultCentroid != 0

	switch {
	case d.Type == bytecode.RegSampler:
		t.declareSampler(d.Num, decl.TextureType)

	case t.stage == bytecode.Vertex && d.Type == bytecode.RegInput:
		u := t.usage(decl)
		t.vertexInput(d.Num)
		t.inputUsage(d.Num, u)

	case t.stage == bytecode.Vertex && d.Type == bytecode.RegOutput && t.version.Major >= 3:
		t.declareVertexOutput(d.Num, decl)

	case t.stage == bytecode.Pixel && d.Type == bytecode.RegInput:
		if t.version.Major >= 3 {
			t.declarePS3Input(d.Num, decl, centroid)
		} else {
			t.colorInput(d.Num, centroid)
		}

	case t.stage == bytecode.Pixel && d.Type == bytecode.RegTexture:
		t.texcoordInput(d.Num, centroid)

	case t.stage == bytecode.Pixel && d.Type == bytecode.RegMiscType && t.version.Major >= 3:
		t.misc(d.Num)

	default:
		t.fail(ErrInvalidShader, "cannot declare %s%d", d.Type.Name(t.stage, t.version), d.Num)
	}
}

// usage validates the usage of a DCL token.
func (t *translator) usage(decl bytecode.Decl) semantic.DeclUsage {
	if !semantic.Valid(decl.Usage, decl.UsageIndex) {
		t.fail(ErrInvalidShader, "invalid usage %s%d", decl.Usage, decl.UsageIndex)
	}
	return semantic.FromD3D(decl.Usage, decl.UsageIndex)
}

// declareVertexOutput declares o# of a vs_3_0 shader. A pre-transformed
// position is routed to POSITION and reported through Info.PositionT.
func (t *translator) declareVertexOutput(n int, decl bytecode.Decl) {
	t.usage(decl)
	k := regKey{bytecode.RegOutput, n}
	if _, ok := t.outputs[k]; ok {
		t.fail(ErrInvalidShader, "output o%d declared twice", n)
	}

	var sem ir.Semantic
	switch {
	case decl.Usage == bytecode.UsagePositionT && decl.UsageIndex == 0:
		sem = ir.Semantic{Name: ir.SemPosition}
		t.info.PositionT = true
	case decl.Usage == bytecode.UsagePSize:
		sem = ir.Semantic{Name: ir.SemPSize}
		t.info.PointSize = true
	default:
		sem = semantic.Assign(decl.Usage, decl.UsageIndex, t.opts.semanticOptions())
	}
	if sem == (ir.Semantic{Name: ir.SemPosition}) {
		if t.positionOut != nil {
			t.fail(ErrInvalidShader, "o%d and o%d both declare the position", *t.positionOut, n)
		}
		t.positionOut = &n
	}
	t.outputs[k] = t.b.DeclareOutput(n, sem)
}

// declarePS3Input declares v# of a ps_3_0 shader.
func (t *translator) declarePS3Input(n int, decl bytecode.Decl, centroid bool) {
	t.usage(decl)
	k := regKey{bytecode.RegInput, n}
	if _, ok := t.inputs[k]; ok {
		t.fail(ErrInvalidShader, "input v%d declared twice", n)
	}
	interp := ir.InterpPerspective
	if decl.Usage == bytecode.UsageColor {
		interp = ir.InterpColor
	}
	sem := semantic.Assign(decl.Usage, decl.UsageIndex, t.opts.semanticOptions())
	t.pixelInput(k, n, sem, interp, centroid)
}

// emitDef records a local constant definition. Later definitions of the
// same register replace earlier ones.
func (t *translator) emitDef() {
	d := t.inst.dst[0]
	switch t.inst.info.kind {
	case kindDef:
		w := t.r.Words(4)
		var v [4]float32
		for i := range v {
			v[i] = math.Float32frombits(w[i])
			if t.stage == bytecode.Pixel && t.version.Major == 1 {
				v[i] = min(max(v[i], -1), 1)
			}
		}
		index := d.Num
		switch d.Type {
		case bytecode.RegConst:
		case bytecode.RegConst2:
			index += constBankStride
		case bytecode.RegConst3:
			index += 2 * constBankStride
		case bytecode.RegConst4:
			index += 3 * constBankStride
		default:
			t.fail(ErrInvalidShader, "def into %s%d", d.Type.Name(t.stage, t.version), d.Num)
		}
		t.floatDefs[index] = v

	case kindDefI:
		w := t.r.Words(4)
		if d.Type != bytecode.RegConstInt || d.Num > 15 {
			t.fail(ErrInvalidShader, "defi into %s%d", d.Type.Name(t.stage, t.version), d.Num)
		}
		t.intDefs[d.Num] = [4]int32{int32(w[0]), int32(w[1]), int32(w[2]), int32(w[3])}

	case kindDefB:
		w := t.r.Words(1)
		if d.Type != bytecode.RegConstBool || d.Num > 15 {
			t.fail(ErrInvalidShader, "defb into %s%d", d.Type.Name(t.stage, t.version), d.Num)
		}
		t.boolDefs[d.Num] = w[0] != 0
	}
}
