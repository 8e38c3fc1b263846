// Package semantic maps Direct3D 9 declaration usages to dense usage ids
// and to IR semantics.
//
// Both mappings are pure functions of their inputs, so a vertex shader and
// a pixel shader declaring the same usage always agree on the slot it gets.
package semantic

import (
	"fmt"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
)

// DeclUsage is a dense id for a (usage, index) pair.
type DeclUsage uint8

// Base ids of each usage; indexed usages occupy consecutive ids.
const (
	Position     DeclUsage = 0
	BlendWeight  DeclUsage = 5
	BlendIndices DeclUsage = 9
	Normal       DeclUsage = 13
	PSize        DeclUsage = 15
	TexCoord     DeclUsage = 16
	Tangent      DeclUsage = 32
	Binormal     DeclUsage = 34
	TessFactor   DeclUsage = 36
	PositionT    DeclUsage = 37
	Color        DeclUsage = 38
	Depth        DeclUsage = 40
	Fog          DeclUsage = 41
	Sample       DeclUsage = 42
	None         DeclUsage = 43

	// Count is the number of distinct ids including None.
	Count = int(None) + 1
)

type usageRange struct {
	usage bytecode.Usage
	base  DeclUsage
	count int
	name  string
}

var ranges = [...]usageRange{
	bytecode.UsagePosition:     {bytecode.UsagePosition, Position, 5, "POSITION"},
	bytecode.UsageBlendWeight:  {bytecode.UsageBlendWeight, BlendWeight, 4, "BLENDWEIGHT"},
	bytecode.UsageBlendIndices: {bytecode.UsageBlendIndices, BlendIndices, 4, "BLENDINDICES"},
	bytecode.UsageNormal:       {bytecode.UsageNormal, Normal, 2, "NORMAL"},
	bytecode.UsagePSize:        {bytecode.UsagePSize, PSize, 1, "PSIZE"},
	bytecode.UsageTexCoord:     {bytecode.UsageTexCoord, TexCoord, 16, "TEXCOORD"},
	bytecode.UsageTangent:      {bytecode.UsageTangent, Tangent, 2, "TANGENT"},
	bytecode.UsageBinormal:     {bytecode.UsageBinormal, Binormal, 2, "BINORMAL"},
	bytecode.UsageTessFactor:   {bytecode.UsageTessFactor, TessFactor, 1, "TESSFACTOR"},
	bytecode.UsagePositionT:    {bytecode.UsagePositionT, PositionT, 1, "POSITIONT"},
	bytecode.UsageColor:        {bytecode.UsageColor, Color, 2, "COLOR"},
	bytecode.UsageFog:          {bytecode.UsageFog, Fog, 1, "FOG"},
	bytecode.UsageDepth:        {bytecode.UsageDepth, Depth, 1, "DEPTH"},
	bytecode.UsageSample:       {bytecode.UsageSample, Sample, 1, "SAMPLE"},
}

// Valid reports whether (usage, index) names a declarable pair.
func Valid(usage bytecode.Usage, index int) bool {
	return int(usage) < len(ranges) && index >= 0 && index < ranges[usage].count
}

// FromD3D returns the dense id of (usage, index). Indices beyond a usage's
// maximum cannot come from a conformant shader and panic.
func FromD3D(usage bytecode.Usage, index int) DeclUsage {
	if !Valid(usage, index) {
		panic(fmt.Sprintf("semantic: invalid usage %s%d", usage, index))
	}
	return ranges[usage].base + DeclUsage(index)
}

// Split returns the usage and index of u. The boolean is false for None.
func (u DeclUsage) Split() (bytecode.Usage, int, bool) {
	for _, r := range ranges {
		if u >= r.base && int(u) < int(r.base)+r.count {
			return r.usage, int(u - r.base), true
		}
	}
	return 0, 0, false
}

func (u DeclUsage) String() string {
	usage, index, ok := u.Split()
	if !ok {
		if u == None {
			return "NONE"
		}
		return fmt.Sprintf("DeclUsage(%d)", uint8(u))
	}
	r := ranges[usage]
	if r.count == 1 {
		return r.name
	}
	return fmt.Sprintf("%s%d", r.name, index)
}

// MinGenericBase is the lowest base for packed generic slots: GENERIC 0-15
// are taken by texture coordinates.
const MinGenericBase = 16

// Options control semantic assignment.
type Options struct {
	// Texcoord emits TEXCOORD semantics for texture coordinates 0-7
	// instead of folding them into GENERIC.
	Texcoord bool
	// GenericBase is the first GENERIC index used for packed usages.
	// Zero selects MinGenericBase.
	GenericBase int
}

// packedSlot orders the usages sharing the packed GENERIC range. Usages
// that are common in linked shaders come first.
var packedSlot = map[bytecode.Usage]int{
	bytecode.UsageFog:          0,
	bytecode.UsagePosition:     1,
	bytecode.UsagePositionT:    2,
	bytecode.UsageDepth:        3,
	bytecode.UsageColor:        4,
	bytecode.UsageBlendWeight:  5,
	bytecode.UsageBlendIndices: 6,
	bytecode.UsageNormal:       7,
	bytecode.UsageTangent:      8,
	bytecode.UsageBinormal:     9,
	bytecode.UsageTessFactor:   10,
	bytecode.UsageSample:       11,
}

// Assign returns the IR semantic for (usage, index). Distinct valid pairs
// get distinct semantics from Assign itself: POSITIONT is packed like any
// other usage. Callers that route POSITIONT to POSITION, as the vertex
// shader output path does, must keep the two from both being declared.
func Assign(usage bytecode.Usage, index int, opts Options) ir.Semantic {
	FromD3D(usage, index)

	base := opts.GenericBase
	if base == 0 {
		base = MinGenericBase
	}
	if base < MinGenericBase {
		panic(fmt.Sprintf("semantic: generic base %d below %d", base, MinGenericBase))
	}

	switch {
	case usage == bytecode.UsagePosition && index == 0:
		return ir.Semantic{Name: ir.SemPosition}
	case usage == bytecode.UsageColor:
		return ir.Semantic{Name: ir.SemColor, Index: index}
	case usage == bytecode.UsagePSize:
		return ir.Semantic{Name: ir.SemPSize}
	case usage == bytecode.UsageTexCoord:
		if opts.Texcoord && index < 8 {
			return ir.Semantic{Name: ir.SemTexcoord, Index: index}
		}
		return ir.Semantic{Name: ir.SemGeneric, Index: index}
	}

	return ir.Semantic{Name: ir.SemGeneric, Index: base + index*len(packedSlot) + packedSlot[usage]}
}
