// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"slices"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
	"github.com/gogpu/nine/semantic"
)

// Constant file layout. Float constants c# keep their index, integer
// constants i# and boolean constants b# follow them.
const (
	IntConstBase  = 256
	BoolConstBase = IntConstBase + 16

	// constBankStride separates the CONST, CONST2, CONST3 and CONST4 banks.
	constBankStride = 2048
)

// Info is the metadata of a translated shader.
type Info struct {
	Stage   bytecode.ShaderType
	Version bytecode.Version

	// ByteLength is the size of the token stream including END.
	ByteLength int

	// InputMap maps each vertex shader input register v# to its declared
	// usage; undeclared registers hold semantic.None.
	InputMap []semantic.DeclUsage

	// PositionT is set when a vs_3_0 shader outputs POSITIONT.
	PositionT bool

	// PointSize is set when the shader writes a point size.
	PointSize bool

	// SamplerMask has bit n set for every sampler s# the shader samples.
	SamplerMask uint32

	// SamplerTargets is the texture target of every declared or used sampler.
	SamplerTargets map[int]ir.TextureTarget

	// RTMask has bit n set for every color output oC# written.
	RTMask uint8

	// IndirectConstAccess is set when float constants are addressed
	// relatively; the whole float range must then be considered live.
	IndirectConstAccess bool

	// ConstFloatUsed is one past the highest float constant read directly.
	ConstFloatUsed int

	// LocalConsts holds the DEF constants when IndirectConstAccess is set.
	// They must be uploaded over the application's constants because
	// relative reads cannot be folded.
	LocalConsts *LocalConsts

	// NumTemps is the number of IR temporaries used.
	NumTemps int
}

// ConstRange is an inclusive range of float constant registers.
type ConstRange struct {
	First int
	Last  int
}

// LocalConsts are the float constants defined by the shader itself.
type LocalConsts struct {
	// Ranges are sorted and maximal: adjacent defined registers merge.
	Ranges []ConstRange
	// Data holds four floats per register, in range order.
	Data []float32
}

// newLocalConsts packs the DEF table into sorted contiguous ranges.
func newLocalConsts(defs map[int][4]float32) *LocalConsts {
	if len(defs) == 0 {
		return &LocalConsts{}
	}
	indices := make([]int, 0, len(defs))
	for i := range defs {
		indices = append(indices, i)
	}
	slices.Sort(indices)

	lc := &LocalConsts{}
	for _, i := range indices {
		n := len(lc.Ranges)
		if n > 0 && lc.Ranges[n-1].Last == i-1 {
			lc.Ranges[n-1].Last = i
		} else {
			lc.Ranges = append(lc.Ranges, ConstRange{First: i, Last: i})
		}
		v := defs[i]
		lc.Data = append(lc.Data, v[:]...)
	}
	return lc
}
