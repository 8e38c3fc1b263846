// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/gogpu/nine/internal/log"
	"github.com/gogpu/nine/semantic"
)

// Options describes the capabilities of the backend consuming the IR.
type Options struct {
	// NativeIntegers lets loop counters, integer and boolean constants use
	// integer opcodes (UMAD, USEQ, UADD, UIF, NOT). Without it they are
	// carried as floats.
	NativeIntegers bool `yaml:"native_integers"`

	// NativeSubroutines enables CALL, CALLNZ and LABEL. Without it those
	// opcodes are reported as not implemented.
	NativeSubroutines bool `yaml:"native_subroutines"`

	// MaxPredicates is the number of native predicate registers. With zero,
	// p0 lives in a temporary.
	MaxPredicates int `yaml:"max_predicates"`

	// TexcoordSemantic emits TEXCOORD semantics for texture coordinates 0-7.
	TexcoordSemantic bool `yaml:"texcoord_semantic"`

	// PixelCenterHalf reports that the backend's fragment position has
	// pixel centers at half-integers; vPos is shifted by -0.5 to match D3D9.
	PixelCenterHalf bool `yaml:"pixel_center_half"`

	// GenericBase is the first GENERIC index for packed usages.
	// Zero selects semantic.MinGenericBase.
	GenericBase int `yaml:"generic_base"`

	// ShadowSamplers is a bit mask of samplers bound to depth textures;
	// their targets become shadow targets.
	ShadowSamplers uint32 `yaml:"shadow_samplers"`

	// ProjectedSamplers is a bit mask of ps_1_x texture stages that use
	// projected lookups (D3DTTFF_PROJECTED).
	ProjectedSamplers uint32 `yaml:"projected_samplers"`

	// CubeSamplers and VolumeSamplers give the texture type bound to each
	// ps_1_x stage; the others are 2D. ps_2_0 and later declare it instead.
	CubeSamplers   uint32 `yaml:"cube_samplers"`
	VolumeSamplers uint32 `yaml:"volume_samplers"`

	// Logger receives diagnostics. Nil uses the root logger.
	Logger log.Logger `yaml:"-"`
}

// DefaultOptions returns options for a backend with native integers and
// subroutines, one predicate register and integer pixel centers.
func DefaultOptions() *Options {
	return &Options{
		NativeIntegers:    true,
		NativeSubroutines: true,
		MaxPredicates:     1,
		TexcoordSemantic:  false,
		PixelCenterHalf:   false,
		GenericBase:       semantic.MinGenericBase,
	}
}

// ParseOptions decodes a YAML capabilities document on top of the defaults.
// Unknown keys are rejected.
func ParseOptions(data []byte) (*Options, error) {
	opts := DefaultOptions()
	if err := yaml.UnmarshalStrict(data, opts); err != nil {
		return nil, fmt.Errorf("d3d9: parse options: %w", err)
	}
	if opts.GenericBase != 0 && opts.GenericBase < semantic.MinGenericBase {
		return nil, fmt.Errorf("d3d9: generic_base %d is below %d", opts.GenericBase, semantic.MinGenericBase)
	}
	if opts.MaxPredicates < 0 {
		return nil, fmt.Errorf("d3d9: max_predicates %d is negative", opts.MaxPredicates)
	}
	return opts, nil
}

func (o *Options) semanticOptions() semantic.Options {
	return semantic.Options{Texcoord: o.TexcoordSemantic, GenericBase: o.GenericBase}
}

func (o *Options) logger() log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Root()
}
