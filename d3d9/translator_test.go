// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
	"github.com/gogpu/nine/semantic"
)

func TestMinimalVertexShader(t *testing.T) {
	w := vs(1, 1)
	w.Op(bytecode.OpMov, oPos, vSrc(0))
	prog, info := mustTranslate(t, w, bytecode.Vertex, nil)

	require.Len(t, prog.Instructions, 2, "program:\n%s", prog)
	mov := prog.Instructions[0]
	assert.Equal(t, ir.OpMOV, mov.Op)
	assert.Equal(t, ir.FileInput, mov.Src[0].File)
	assert.Equal(t, 0, mov.Src[0].Index)
	assert.Equal(t, ir.FileOutput, mov.Dst[0].File)
	assert.Equal(t, ir.Semantic{Name: ir.SemPosition}, prog.Outputs()[0].Semantic)
	assert.Equal(t, ir.OpEND, prog.Instructions[1].Op)

	assert.False(t, info.PositionT)
	assert.Equal(t, []semantic.DeclUsage{semantic.None}, info.InputMap)
	assert.Equal(t, 5*4, info.ByteLength)
}

func TestDeterministic(t *testing.T) {
	w := vs(2, 0)
	w.Dcl(bytecode.Dst(bytecode.RegInput, 0), bytecode.UsagePosition, 0)
	w.Def(0, 1, 2, 3, 4)
	w.DefI(0, 3, 0, 1, 0)
	w.Op(bytecode.OpMov, rDst(0), cSrc(0))
	w.Op(bytecode.OpLoop, bytecode.Src(bytecode.RegLoop, 0), bytecode.Src(bytecode.RegConstInt, 0))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(1).Indexed(bytecode.Src(bytecode.RegLoop, 0)))
	w.Op(bytecode.OpEndLoop)
	w.Op(bytecode.OpM4x4, oPos, vSrc(0), cSrc(4))

	p1, i1, err := Translate(w.Words(), bytecode.Vertex, nil)
	require.NoError(t, err)
	p2, i2, err := Translate(w.Words(), bytecode.Vertex, nil)
	require.NoError(t, err)

	assert.Equal(t, p1.String(), p2.String())
	assert.Equal(t, p1, p2)
	assert.Equal(t, i1, i2)
}

func TestLoopLowering(t *testing.T) {
	nativeAndFloat(t, func(t *testing.T, opts *Options) {
		w := vs(2, 0)
		w.Def(0, 0, 0, 0, 0)
		w.Def(1, 1, 1, 1, 1)
		w.DefI(0, 3, 0, 1, 0)
		w.Op(bytecode.OpMov, rDst(0), cSrc(0))
		w.Op(bytecode.OpLoop, bytecode.Src(bytecode.RegLoop, 0), bytecode.Src(bytecode.RegConstInt, 0))
		w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(1))
		w.Op(bytecode.OpEndLoop)
		w.Op(bytecode.OpMov, oPos, rSrc(0))

		prog, _ := mustTranslate(t, w, bytecode.Vertex, opts)
		assert.Equal(t, 1, prog.Count(ir.OpBGNLOOP))
		assert.Equal(t, 1, prog.Count(ir.OpENDLOOP))
		assert.Equal(t, 1, prog.Count(ir.OpBREAKC))

		// The break sits at the loop head, guarded by the trip count test.
		begin := -1
		for i, inst := range prog.Instructions {
			if inst.Op == ir.OpBGNLOOP {
				begin = i
			}
		}
		require.GreaterOrEqual(t, begin, 0)
		cmp := ir.OpSEQ
		if opts.NativeIntegers {
			cmp = ir.OpUSEQ
		}
		assert.Equal(t, cmp, prog.Instructions[begin+2].Op)
		assert.Equal(t, ir.OpBREAKC, prog.Instructions[begin+3].Op)

		m := run(t, prog, nil)
		assert.Equal(t, splat4(3), position(t, prog, m))
	})
}

func TestLoopCounterAddressing(t *testing.T) {
	nativeAndFloat(t, func(t *testing.T, opts *Options) {
		w := vs(3, 0)
		w.Dcl(bytecode.Dst(bytecode.RegOutput, 0), bytecode.UsagePosition, 0)
		w.Def(0, 0, 0, 0, 0)
		w.DefI(1, 3, 2, 2, 0)
		w.Op(bytecode.OpMov, rDst(0), cSrc(0))
		w.Op(bytecode.OpLoop, bytecode.Src(bytecode.RegLoop, 0), bytecode.Src(bytecode.RegConstInt, 1))
		w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(10).Indexed(bytecode.Src(bytecode.RegLoop, 0)))
		w.Op(bytecode.OpEndLoop)
		w.Op(bytecode.OpMov, bytecode.Dst(bytecode.RegOutput, 0), rSrc(0))

		prog, info := mustTranslate(t, w, bytecode.Vertex, opts)
		require.True(t, info.IndirectConstAccess)
		require.NotNil(t, info.LocalConsts)
		assert.Equal(t, []ConstRange{{0, 0}}, info.LocalConsts.Ranges)
		assert.Equal(t, []float32{0, 0, 0, 0}, info.LocalConsts.Data)

		// aL runs 2, 4, 6.
		m := run(t, prog, map[int][4]float32{
			12: splat4(1),
			14: splat4(10),
			16: splat4(100),
			13: splat4(1000),
		})
		assert.Equal(t, splat4(111), position(t, prog, m))
	})
}

func TestRepNested(t *testing.T) {
	nativeAndFloat(t, func(t *testing.T, opts *Options) {
		w := vs(2, 0)
		w.Def(0, 0, 0, 0, 0)
		w.Def(1, 1, 1, 1, 1)
		w.DefI(0, 2, 0, 0, 0)
		w.DefI(1, 5, 0, 0, 0)
		w.Op(bytecode.OpMov, rDst(0), cSrc(0))
		w.Op(bytecode.OpRep, bytecode.Src(bytecode.RegConstInt, 0))
		w.Op(bytecode.OpRep, bytecode.Src(bytecode.RegConstInt, 1))
		w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(1))
		w.Op(bytecode.OpEndRep)
		w.Op(bytecode.OpEndRep)
		w.Op(bytecode.OpMov, oPos, rSrc(0))

		prog, _ := mustTranslate(t, w, bytecode.Vertex, opts)
		assert.Equal(t, 2, prog.Count(ir.OpBGNLOOP))
		m := run(t, prog, nil)
		assert.Equal(t, splat4(10), position(t, prog, m))
	})
}

func TestLoopFromConstantFile(t *testing.T) {
	opts := DefaultOptions()
	opts.NativeIntegers = false

	w := vs(2, 0)
	w.Def(0, 0, 0, 0, 0)
	w.Def(1, 1, 1, 1, 1)
	w.Op(bytecode.OpMov, rDst(0), cSrc(0))
	w.Op(bytecode.OpLoop, bytecode.Src(bytecode.RegLoop, 0), bytecode.Src(bytecode.RegConstInt, 2))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(1))
	w.Op(bytecode.OpEndLoop)
	w.Op(bytecode.OpMov, oPos, rSrc(0))

	prog, info := mustTranslate(t, w, bytecode.Vertex, opts)
	assert.False(t, info.IndirectConstAccess)
	m := run(t, prog, map[int][4]float32{IntConstBase + 2: {4, 0, 1, 0}})
	assert.Equal(t, splat4(4), position(t, prog, m))

	m = run(t, prog, map[int][4]float32{IntConstBase + 2: {0, 0, 1, 0}})
	assert.Equal(t, splat4(0), position(t, prog, m))
}

func TestBreakc(t *testing.T) {
	w := vs(2, 1)
	w.Def(0, 0, 0, 0, 0)
	w.Def(1, 1, 1, 1, 1)
	w.Def(2, 3, 3, 3, 3)
	w.DefI(0, 100, 0, 1, 0)
	w.Op(bytecode.OpMov, rDst(0), cSrc(0))
	w.Op(bytecode.OpLoop, bytecode.Src(bytecode.RegLoop, 0), bytecode.Src(bytecode.RegConstInt, 0))
	w.Emit(bytecode.OpBreakc, bytecode.InstFlags{Control: uint8(bytecode.CmpGE)}, rSrc(0).Swz("x"), cSrc(2).Swz("x"))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(1))
	w.Op(bytecode.OpEndLoop)
	w.Op(bytecode.OpMov, oPos, rSrc(0))

	prog, _ := mustTranslate(t, w, bytecode.Vertex, nil)
	assert.Equal(t, 2, prog.Count(ir.OpBREAKC))
	m := run(t, prog, nil)
	assert.Equal(t, splat4(3), position(t, prog, m))
}

func TestIfElseOnBoolean(t *testing.T) {
	for _, b := range []bool{true, false} {
		nativeAndFloat(t, func(t *testing.T, opts *Options) {
			w := vs(2, 0)
			w.Def(0, 1, 1, 1, 1)
			w.Def(1, 2, 2, 2, 2)
			w.DefB(3, b)
			w.Op(bytecode.OpIf, bytecode.Src(bytecode.RegConstBool, 3))
			w.Op(bytecode.OpMov, oPos, cSrc(0))
			w.Op(bytecode.OpElse)
			w.Op(bytecode.OpMov, oPos, cSrc(1))
			w.Op(bytecode.OpEndIf)

			prog, _ := mustTranslate(t, w, bytecode.Vertex, opts)
			want := ir.OpIF
			if opts.NativeIntegers {
				want = ir.OpUIF
			}
			assert.Equal(t, 1, prog.Count(want))

			m := run(t, prog, nil)
			if b {
				assert.Equal(t, splat4(1), position(t, prog, m))
			} else {
				assert.Equal(t, splat4(2), position(t, prog, m))
			}
		})
	}
}

func TestIfOnUniformBoolean(t *testing.T) {
	opts := DefaultOptions()
	opts.NativeIntegers = false

	w := vs(2, 0)
	w.Def(0, 1, 1, 1, 1)
	w.Op(bytecode.OpIf, bytecode.Src(bytecode.RegConstBool, 2))
	w.Op(bytecode.OpMov, oPos, cSrc(0))
	w.Op(bytecode.OpEndIf)

	prog, _ := mustTranslate(t, w, bytecode.Vertex, opts)
	m := run(t, prog, map[int][4]float32{BoolConstBase + 2: {1}})
	assert.Equal(t, splat4(1), position(t, prog, m))

	m = run(t, prog, nil)
	assert.Equal(t, splat4(0), position(t, prog, m))
}

func TestIfc(t *testing.T) {
	w := ps(2, 1)
	w.Def(0, 1, 0, 0, 0)
	w.Def(1, 5, 5, 5, 5)
	w.Def(2, 7, 7, 7, 7)
	w.Op(bytecode.OpMov, rDst(0), cSrc(2))
	w.Emit(bytecode.OpIfc, bytecode.InstFlags{Control: uint8(bytecode.CmpLT)}, cSrc(0).Swz("y"), cSrc(0).Swz("x"))
	w.Op(bytecode.OpMov, rDst(0), cSrc(1))
	w.Op(bytecode.OpEndIf)
	w.Op(bytecode.OpMov, oC(0), rSrc(0))

	prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
	m := run(t, prog, nil)
	assert.Equal(t, splat4(5), m.Outputs[0])
}

func TestCallAndLabel(t *testing.T) {
	w := vs(2, 0)
	w.Def(0, 4, 3, 2, 1)
	w.Op(bytecode.OpCall, bytecode.Src(bytecode.RegLabel, 1))
	w.Op(bytecode.OpMov, oPos, rSrc(0))
	w.Op(bytecode.OpRet)
	w.Op(bytecode.OpLabel, bytecode.Src(bytecode.RegLabel, 1))
	w.Op(bytecode.OpMov, rDst(0), cSrc(0))
	w.Op(bytecode.OpRet)

	prog, _ := mustTranslate(t, w, bytecode.Vertex, nil)
	assert.Equal(t, 1, prog.Count(ir.OpCAL))
	assert.Equal(t, 2, prog.Count(ir.OpRET))

	m := run(t, prog, nil)
	assert.Equal(t, [4]float32{4, 3, 2, 1}, position(t, prog, m))
}

func TestCallnz(t *testing.T) {
	for _, b := range []bool{true, false} {
		nativeAndFloat(t, func(t *testing.T, opts *Options) {
			w := vs(2, 0)
			w.Def(0, 9, 9, 9, 9)
			w.DefB(0, b)
			w.Op(bytecode.OpCallNz, bytecode.Src(bytecode.RegLabel, 0), bytecode.Src(bytecode.RegConstBool, 0))
			w.Op(bytecode.OpCallNz, bytecode.Src(bytecode.RegLabel, 0), bytecode.Src(bytecode.RegConstBool, 0).WithMod(bytecode.SrcModNot))
			w.Op(bytecode.OpMov, oPos, rSrc(0))
			w.Op(bytecode.OpRet)
			w.Op(bytecode.OpLabel, bytecode.Src(bytecode.RegLabel, 0))
			w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(0))
			w.Op(bytecode.OpRet)

			prog, _ := mustTranslate(t, w, bytecode.Vertex, opts)
			m := run(t, prog, nil)
			// Exactly one of the two calls is taken.
			assert.Equal(t, splat4(9), position(t, prog, m))
		})
	}
}

func TestFinalReturnOmitted(t *testing.T) {
	w := vs(2, 0)
	w.Op(bytecode.OpMov, oPos, vSrc(0))
	w.Op(bytecode.OpRet)
	prog, _ := mustTranslate(t, w, bytecode.Vertex, nil)
	assert.Equal(t, 0, prog.Count(ir.OpRET))
}

func TestSubroutinesUnsupported(t *testing.T) {
	opts := DefaultOptions()
	opts.NativeSubroutines = false

	w := vs(2, 0)
	w.Op(bytecode.OpCall, bytecode.Src(bytecode.RegLabel, 0))
	w.Op(bytecode.OpRet)
	w.Op(bytecode.OpLabel, bytecode.Src(bytecode.RegLabel, 0))
	w.Op(bytecode.OpRet)

	_, _, err := Translate(w.Words(), bytecode.Vertex, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, NewError(ErrNotImplemented, ""))
}

func TestUndefinedLabel(t *testing.T) {
	w := vs(2, 0)
	w.Op(bytecode.OpCall, bytecode.Src(bytecode.RegLabel, 7))
	_, _, err := Translate(w.Words(), bytecode.Vertex, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, NewError(ErrInvalidShader, ""))
	assert.Contains(t, err.Error(), "l7")
}

func TestUnbalancedFlowPanics(t *testing.T) {
	w := vs(2, 0)
	w.Op(bytecode.OpEndIf)
	assert.Panics(t, func() { _, _, _ = Translate(w.Words(), bytecode.Vertex, nil) })

	w = vs(2, 0)
	w.DefB(0, true)
	w.Op(bytecode.OpIf, bytecode.Src(bytecode.RegConstBool, 0))
	assert.Panics(t, func() { _, _, _ = Translate(w.Words(), bytecode.Vertex, nil) })
}

func TestPredication(t *testing.T) {
	for _, preds := range []int{1, 0} {
		opts := DefaultOptions()
		opts.MaxPredicates = preds

		w := vs(2, 1)
		w.Def(0, 1, -1, 1, -1)
		w.Def(1, 0, 0, 0, 0)
		w.Def(2, 5, 5, 5, 5)
		w.Def(3, 7, 7, 7, 7)
		w.Op(bytecode.OpMov, rDst(0), cSrc(1))
		w.Op(bytecode.OpMov, rDst(1), cSrc(1))
		w.Emit(bytecode.OpSetP, bytecode.InstFlags{Control: uint8(bytecode.CmpGT)},
			bytecode.Dst(bytecode.RegPredicate, 0), cSrc(0), cSrc(1))
		w.Emit(bytecode.OpMov, bytecode.InstFlags{Predicated: true},
			rDst(0), bytecode.Src(bytecode.RegPredicate, 0), cSrc(2))
		w.Emit(bytecode.OpMov, bytecode.InstFlags{Predicated: true},
			rDst(1), bytecode.Src(bytecode.RegPredicate, 0).WithMod(bytecode.SrcModNot), cSrc(3))
		w.Op(bytecode.OpAdd, oPos, rSrc(0), rSrc(1))

		prog, _ := mustTranslate(t, w, bytecode.Vertex, opts)
		hasPred := false
		for _, d := range prog.Declarations {
			if _, ok := d.(ir.PredicateDecl); ok {
				hasPred = true
			}
		}
		assert.Equal(t, preds > 0, hasPred)

		m := run(t, prog, nil)
		assert.Equal(t, [4]float32{5, 7, 5, 7}, position(t, prog, m))
	}
}

func TestBreakp(t *testing.T) {
	w := vs(2, 1)
	w.Def(0, 0, 0, 0, 0)
	w.Def(1, 1, 1, 1, 1)
	w.Def(2, 2, 2, 2, 2)
	w.DefI(0, 10, 0, 1, 0)
	w.Op(bytecode.OpMov, rDst(0), cSrc(0))
	w.Op(bytecode.OpLoop, bytecode.Src(bytecode.RegLoop, 0), bytecode.Src(bytecode.RegConstInt, 0))
	w.Emit(bytecode.OpSetP, bytecode.InstFlags{Control: uint8(bytecode.CmpGE)},
		bytecode.Dst(bytecode.RegPredicate, 0), rSrc(0), cSrc(2))
	w.Op(bytecode.OpBreakP, bytecode.Src(bytecode.RegPredicate, 0).Swz("x"))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), cSrc(1))
	w.Op(bytecode.OpEndLoop)
	w.Op(bytecode.OpMov, oPos, rSrc(0))

	prog, _ := mustTranslate(t, w, bytecode.Vertex, nil)
	m := run(t, prog, nil)
	assert.Equal(t, splat4(2), position(t, prog, m))
}

func TestCmp(t *testing.T) {
	w := ps(2, 0)
	w.Op(bytecode.OpMov, rDst(1), cSrc(1))
	w.Op(bytecode.OpMov, rDst(2), cSrc(2))
	w.Op(bytecode.OpMov, rDst(3), cSrc(3))
	w.Op(bytecode.OpCmp, rDst(0), rSrc(1), rSrc(2), rSrc(3))
	w.Op(bytecode.OpMov, oC(0), rSrc(0))

	prog, info := mustTranslate(t, w, bytecode.Pixel, nil)
	assert.Equal(t, uint8(1), info.RTMask)

	m := run(t, prog, map[int][4]float32{
		1: {1, -1, 0, -0.5},
		2: {10, 20, 30, 40},
		3: {-10, -20, -30, -40},
	})
	assert.Equal(t, [4]float32{10, -20, 30, -40}, m.Outputs[0])
}

func TestCnd(t *testing.T) {
	w := ps(1, 4)
	w.Def(0, 0.6, 0.4, 0.5, 0.9)
	w.Def(1, 1, 1, 1, 1)
	w.Def(2, -1, -1, -1, -1)
	w.Op(bytecode.OpCnd, rDst(0), cSrc(0), cSrc(1), cSrc(2))

	prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
	m := run(t, prog, nil)
	assert.Equal(t, [4]float32{1, -1, -1, 1}, m.Outputs[0])
}

func TestCndLegacyUsesAlpha(t *testing.T) {
	tests := []struct {
		name string
		cond [4]float32
		want [4]float32
	}{
		{"alpha above", [4]float32{0.1, 0.1, 0.1, 0.9}, splat4(1)},
		{"alpha below", [4]float32{0.9, 0.9, 0.9, 0.1}, splat4(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ps(1, 1)
			w.Def(0, tt.cond[0], tt.cond[1], tt.cond[2], tt.cond[3])
			w.Def(1, 1, 1, 1, 1)
			w.Def(2, 0, 0, 0, 0)
			w.Op(bytecode.OpMov, rDst(0), cSrc(0))
			w.Op(bytecode.OpCnd, rDst(1), rSrc(0), cSrc(1), cSrc(2))
			w.Op(bytecode.OpMov, rDst(0), rSrc(1))

			prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
			m := run(t, prog, nil)
			assert.Equal(t, tt.want, m.Outputs[0])
		})
	}
}

func TestCndCoissued(t *testing.T) {
	w := ps(1, 1)
	w.Def(0, 0, 0, 0, 0)
	w.Def(1, 1, 1, 1, 1)
	w.Def(2, -1, -1, -1, -1)
	w.Def(3, 0.25, 0.25, 0.25, 0.25)
	w.Op(bytecode.OpMov, rDst(1), cSrc(0))
	w.Op(bytecode.OpMov, rDst(0).WithMask(bytecode.MaskW), cSrc(3))
	// A co-issued cnd that writes color only copies its first value.
	w.Emit(bytecode.OpCnd, bytecode.InstFlags{Coissue: true},
		rDst(0).WithMask(bytecode.MaskX|bytecode.MaskY|bytecode.MaskZ), rSrc(1), cSrc(1), cSrc(2))

	prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
	for _, inst := range prog.Instructions {
		assert.NotEqual(t, ir.OpCMP, inst.Op, "program:\n%s", prog)
	}
	m := run(t, prog, nil)
	assert.Equal(t, [4]float32{1, 1, 1, 0.25}, m.Outputs[0])
}

func TestDestinationModifiers(t *testing.T) {
	w := ps(1, 4)
	w.Def(0, 0.3, 0.3, 0.3, 0.3)
	w.Op(bytecode.OpMov, rDst(0).WithShift(2).Saturate(), cSrc(0))

	prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
	m := run(t, prog, nil)
	assert.Equal(t, splat4(1), m.Outputs[0])

	w = ps(1, 4)
	w.Def(0, 0.3, 0.3, 0.3, 0.3)
	w.Op(bytecode.OpMov, rDst(0).WithShift(-1), cSrc(0))

	prog, _ = mustTranslate(t, w, bytecode.Pixel, nil)
	m = run(t, prog, nil)
	assert.InDelta(t, 0.15, m.Outputs[0][0], 1e-6)
}

func TestSourceModifiers(t *testing.T) {
	tests := []struct {
		mod  bytecode.SrcModifier
		in   float32
		want float32
	}{
		{bytecode.SrcModNeg, 0.2, -0.2},
		{bytecode.SrcModBias, 0.2, -0.3},
		{bytecode.SrcModBiasNeg, 0.2, 0.3},
		{bytecode.SrcModSign, 0.75, 0.5},
		{bytecode.SrcModSignNeg, 0.75, -0.5},
		{bytecode.SrcModComp, 0.25, 0.75},
		{bytecode.SrcModX2, 0.25, 0.5},
		{bytecode.SrcModX2Neg, 0.25, -0.5},
		{bytecode.SrcModAbs, -0.5, 0.5},
		{bytecode.SrcModAbsNeg, 0.5, -0.5},
	}
	for _, tt := range tests {
		w := ps(2, 0)
		w.Def(0, tt.in, tt.in, tt.in, tt.in)
		w.Op(bytecode.OpMov, oC(0), cSrc(0).WithMod(tt.mod))

		prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
		m := run(t, prog, nil)
		assert.InDelta(t, tt.want, m.Outputs[0][0], 1e-6, "modifier %d", tt.mod)
	}
}

func TestDivideModifiers(t *testing.T) {
	w := ps(1, 4)
	w.Op(bytecode.OpTexCoord, rDst(0), bytecode.Src(bytecode.RegTexture, 0).WithMod(bytecode.SrcModDz))
	w.Op(bytecode.OpTexCoord, rDst(1), bytecode.Src(bytecode.RegTexture, 1).WithMod(bytecode.SrcModDw))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), rSrc(1))

	prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
	m := ir.NewMachine(prog)
	m.Inputs[psTexcoordBase+0] = [4]float32{2, 4, 2, 0}
	m.Inputs[psTexcoordBase+1] = [4]float32{3, 6, 0, 3}
	require.NoError(t, m.Run())
	assert.Equal(t, float32(2), m.Outputs[0][0])
	assert.Equal(t, float32(4), m.Outputs[0][1])
}

func TestMatrixMultiply(t *testing.T) {
	w := vs(1, 1)
	w.Dcl(bytecode.Dst(bytecode.RegInput, 0), bytecode.UsagePosition, 0)
	w.Op(bytecode.OpM4x4, oPos, vSrc(0), cSrc(4))
	w.Op(bytecode.OpM3x3, rDst(0).WithMask(bytecode.MaskX|bytecode.MaskY|bytecode.MaskZ), vSrc(0), cSrc(4))
	w.Op(bytecode.OpM3x2, rDst(0).WithMask(bytecode.MaskX|bytecode.MaskY), rSrc(0), cSrc(4))

	prog, info := mustTranslate(t, w, bytecode.Vertex, nil)
	assert.Equal(t, 4+3+2, prog.Count(ir.OpDP4)+prog.Count(ir.OpDP3))
	assert.Equal(t, 8, info.ConstFloatUsed)
	assert.Equal(t, []semantic.DeclUsage{semantic.Position}, info.InputMap)

	// Aliased source and destination read the original vector.
	aliased := 0
	for _, inst := range prog.Instructions {
		if inst.Op == ir.OpMOV && inst.Src[0].File == ir.FileTemp {
			aliased++
		}
	}
	assert.Equal(t, 1, aliased)

	m := ir.NewMachine(prog)
	m.Inputs[0] = [4]float32{1, 2, 3, 1}
	m.Consts[4] = [4]float32{1, 0, 0, 0}
	m.Consts[5] = [4]float32{0, 1, 0, 0}
	m.Consts[6] = [4]float32{0, 0, 1, 0}
	m.Consts[7] = [4]float32{0, 0, 0, 1}
	require.NoError(t, m.Run())
	assert.Equal(t, [4]float32{1, 2, 3, 1}, position(t, prog, m))
}

func TestExpandedArithmetic(t *testing.T) {
	tests := []struct {
		name string
		emit func(w *bytecode.Writer)
		want [4]float32
	}{
		{"nrm", func(w *bytecode.Writer) {
			w.Op(bytecode.OpNrm, rDst(0), cSrc(0))
		}, [4]float32{0.6, 0, 0.8, 0}},
		{"sgn", func(w *bytecode.Writer) {
			w.Op(bytecode.OpSgn, rDst(0), cSrc(1), rSrc(10), rSrc(11))
		}, [4]float32{-1, 0, 1, 0}},
		{"sincos", func(w *bytecode.Writer) {
			w.Op(bytecode.OpMov, rDst(0), cSrc(2))
			w.Op(bytecode.OpSinCos, rDst(0).WithMask(bytecode.MaskX|bytecode.MaskY), cSrc(2).Swz("x"), rSrc(10), rSrc(11))
		}, [4]float32{1, 0, 0, 0}},
		{"sincos in place", func(w *bytecode.Writer) {
			w.Op(bytecode.OpMov, rDst(0), cSrc(4))
			w.Op(bytecode.OpSinCos, rDst(0).WithMask(bytecode.MaskX|bytecode.MaskY), rSrc(0).Swz("x"), rSrc(10), rSrc(11))
		}, [4]float32{0.87758256, 0.47942554, 0.5, 0.5}},
		{"abs", func(w *bytecode.Writer) {
			w.Op(bytecode.OpAbs, rDst(0), cSrc(1))
		}, [4]float32{2, 0, 5, 0}},
		{"sub", func(w *bytecode.Writer) {
			w.Op(bytecode.OpSub, rDst(0), cSrc(0), cSrc(1))
		}, [4]float32{5, 0, -1, 0}},
		{"pow", func(w *bytecode.Writer) {
			w.Op(bytecode.OpPow, rDst(0), cSrc(1).Swz("x"), cSrc(1).Swz("z"))
		}, splat4(32)},
		{"rsq", func(w *bytecode.Writer) {
			w.Op(bytecode.OpRsq, rDst(0), cSrc(3).Swz("x"))
		}, splat4(0.5)},
		{"crs", func(w *bytecode.Writer) {
			w.Op(bytecode.OpMov, rDst(0), cSrc(2))
			w.Op(bytecode.OpCrs, rDst(0).WithMask(bytecode.MaskX|bytecode.MaskY|bytecode.MaskZ), cSrc(0), cSrc(1))
		}, [4]float32{0, -23, 0, 0}},
		{"lrp", func(w *bytecode.Writer) {
			w.Op(bytecode.OpLrp, rDst(0), cSrc(4), cSrc(0), cSrc(1))
		}, [4]float32{0.5, 0, 4.5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := vs(2, 0)
			w.Def(0, 3, 0, 4, 0)
			w.Def(1, -2, 0, 5, 0)
			w.Def(2, 0, 0, 0, 0)
			w.Def(3, -4, 0, 0, 0)
			w.Def(4, 0.5, 0.5, 0.5, 0.5)
			tt.emit(w)
			w.Op(bytecode.OpMov, oPos, rSrc(0))

			prog, _ := mustTranslate(t, w, bytecode.Vertex, nil)
			m := run(t, prog, nil)
			got := position(t, prog, m)
			assert.InDeltaSlice(t, tt.want[:], got[:], 1e-5)
		})
	}
}

func TestDp2Add(t *testing.T) {
	w := ps(2, 0)
	w.Def(0, 1, 2, 7, 7)
	w.Def(1, 3, 4, 7, 7)
	w.Def(2, 5, 5, 5, 5)
	w.Op(bytecode.OpDp2Add, rDst(0), cSrc(0), cSrc(1), cSrc(2).Swz("x"))
	w.Op(bytecode.OpMov, oC(0), rSrc(0))

	prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
	m := run(t, prog, nil)
	assert.Equal(t, splat4(16), m.Outputs[0])
}

func TestAddressRegister(t *testing.T) {
	a0x := bytecode.Src(bytecode.RegAddr, 0).Swz("x")

	// mova rounds to nearest.
	w := vs(2, 0)
	w.Def(0, 1.6, 1.6, 1.6, 1.6)
	w.Op(bytecode.OpMova, bytecode.Dst(bytecode.RegAddr, 0).WithMask(bytecode.MaskX), cSrc(0).Swz("x"))
	w.Op(bytecode.OpMov, oPos, cSrc(3).Indexed(a0x))

	prog, info := mustTranslate(t, w, bytecode.Vertex, nil)
	assert.Equal(t, 1, prog.Count(ir.OpARR))
	assert.True(t, info.IndirectConstAccess)
	m := run(t, prog, map[int][4]float32{4: splat4(4), 5: splat4(5)})
	assert.Equal(t, splat4(5), position(t, prog, m))

	// vs_1_1 loads a0 with mov, which floors.
	w = vs(1, 1)
	w.Def(0, 1.6, 1.6, 1.6, 1.6)
	w.Op(bytecode.OpMov, bytecode.Dst(bytecode.RegAddr, 0).WithMask(bytecode.MaskX), cSrc(0).Swz("x"))
	w.Op(bytecode.OpMov, oPos, cSrc(3).Indexed(a0x))

	prog, _ = mustTranslate(t, w, bytecode.Vertex, nil)
	assert.Equal(t, 1, prog.Count(ir.OpARL))
	m = run(t, prog, map[int][4]float32{4: splat4(4), 5: splat4(5)})
	assert.Equal(t, splat4(4), position(t, prog, m))
}

func TestLocalConstantFolding(t *testing.T) {
	w := vs(1, 1)
	w.Def(5, 1, 2, 3, 4)
	w.Op(bytecode.OpMov, oPos, cSrc(5))

	prog, info := mustTranslate(t, w, bytecode.Vertex, nil)
	for _, d := range prog.Declarations {
		_, ok := d.(ir.ConstDecl)
		assert.False(t, ok, "unexpected constant declaration %v", d)
	}
	require.Len(t, prog.Immediates, 1)
	assert.Equal(t, ir.FileImmediate, prog.Instructions[0].Src[0].File)
	assert.Nil(t, info.LocalConsts)
	assert.False(t, info.IndirectConstAccess)
	assert.Equal(t, 0, info.ConstFloatUsed)

	m := run(t, prog, map[int][4]float32{5: splat4(-1)})
	assert.Equal(t, [4]float32{1, 2, 3, 4}, position(t, prog, m))
}

func TestConstantUsage(t *testing.T) {
	w := vs(2, 0)
	w.DefB(1, true)
	w.Op(bytecode.OpMov, rDst(0), cSrc(7))
	w.Op(bytecode.OpIf, bytecode.Src(bytecode.RegConstBool, 0))
	w.Op(bytecode.OpRep, bytecode.Src(bytecode.RegConstInt, 3))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), bytecode.Src(bytecode.RegConst2, 1))
	w.Op(bytecode.OpEndRep)
	w.Op(bytecode.OpEndIf)
	w.Op(bytecode.OpMov, oPos, rSrc(0))

	prog, info := mustTranslate(t, w, bytecode.Vertex, nil)
	assert.Equal(t, constBankStride+2, info.ConstFloatUsed)

	var decl *ir.ConstDecl
	for _, d := range prog.Declarations {
		if c, ok := d.(ir.ConstDecl); ok {
			decl = &c
		}
	}
	require.NotNil(t, decl)
	assert.Equal(t, constBankStride+1, decl.Last)
}

func TestPixelShader1xClampsDefinitions(t *testing.T) {
	w := ps(1, 4)
	w.Def(0, 0.3, 0.3, 0.3, 0.3)
	w.Def(1, 0.2, 0.2, 0.2, 0.2)
	w.Def(2, 4, -4, 0.5, 0)
	w.Op(bytecode.OpMov, rDst(0).WithShift(2).Saturate(), cSrc(0))
	w.Op(bytecode.OpMov, rDst(1), cSrc(1).WithMod(bytecode.SrcModBias))
	w.Op(bytecode.OpMov, rDst(2), cSrc(2))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), rSrc(1))
	w.Op(bytecode.OpAdd, rDst(0), rSrc(0), rSrc(2))

	prog, _ := mustTranslate(t, w, bytecode.Pixel, nil)
	m := run(t, prog, nil)
	// 1.0 + (0.2 - 0.5) + clamp(4, -4, 0.5, 0)
	assert.InDeltaSlice(t, []float32{1.7, -0.3, 1.2, 0.7}, m.Outputs[0][:], 1e-6)
}
