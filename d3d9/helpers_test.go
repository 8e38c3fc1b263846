// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
)

// Shorthands for building token streams.
var (
	rDst = func(n int) bytecode.DstParam { return bytecode.Dst(bytecode.RegTemp, n) }
	rSrc = func(n int) bytecode.SrcParam { return bytecode.Src(bytecode.RegTemp, n) }
	cSrc = func(n int) bytecode.SrcParam { return bytecode.Src(bytecode.RegConst, n) }
	vSrc = func(n int) bytecode.SrcParam { return bytecode.Src(bytecode.RegInput, n) }
	oPos = bytecode.Dst(bytecode.RegRastOut, bytecode.RastOutPosition)
	oC   = func(n int) bytecode.DstParam { return bytecode.Dst(bytecode.RegColorOut, n) }
)

func vs(major, minor uint8) *bytecode.Writer {
	return bytecode.NewWriter(bytecode.Vertex, bytecode.V(major, minor))
}

func ps(major, minor uint8) *bytecode.Writer {
	return bytecode.NewWriter(bytecode.Pixel, bytecode.V(major, minor))
}

// mustTranslate translates w and checks the result with the IR validator.
func mustTranslate(t *testing.T, w *bytecode.Writer, stage bytecode.ShaderType, opts *Options) (*ir.Program, *Info) {
	t.Helper()
	prog, info, err := Translate(w.Words(), stage, opts)
	require.NoError(t, err)
	errs, err := ir.Validate(prog)
	require.NoError(t, err)
	require.Empty(t, errs, "program:\n%s\nerrors: %s", prog, spew.Sdump(errs))
	return prog, info
}

// run executes prog with the given constants and returns the machine.
func run(t *testing.T, prog *ir.Program, consts map[int][4]float32) *ir.Machine {
	t.Helper()
	m := ir.NewMachine(prog)
	for k, val := range consts {
		m.Consts[k] = val
	}
	require.NoError(t, m.Run(), "program:\n%s", prog)
	return m
}

// outputIndex returns the IR index of the output with the given semantic.
func outputIndex(t *testing.T, prog *ir.Program, sem ir.Semantic) int {
	t.Helper()
	for _, o := range prog.Outputs() {
		if o.Semantic == sem {
			return o.Index
		}
	}
	t.Fatalf("no output %s in\n%s", sem, prog)
	return -1
}

func position(t *testing.T, prog *ir.Program, m *ir.Machine) [4]float32 {
	t.Helper()
	return m.Outputs[outputIndex(t, prog, ir.Semantic{Name: ir.SemPosition})]
}

func splat4(x float32) [4]float32 {
	return [4]float32{x, x, x, x}
}

// nativeAndFloat runs fn once with integer support and once without.
func nativeAndFloat(t *testing.T, fn func(t *testing.T, opts *Options)) {
	for _, native := range []bool{true, false} {
		name := "float"
		if native {
			name = "native"
		}
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.NativeIntegers = native
			fn(t, opts)
		})
	}
}
