package ir

import "fmt"

// Program is a translated shader.
type Program struct {
	// Stage is the pipeline stage the program runs in.
	Stage Stage

	// Declarations lists every register the program uses.
	Declarations []Declaration

	// Immediates holds the literal vectors referenced through FileImmediate.
	Immediates []Immediate

	// Instructions is the code, terminated by OpEND.
	Instructions []Instruction
}

// Stage represents a shader stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "VERT"
	case StageFragment:
		return "FRAG"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// File is a register file.
type File uint8

const (
	FileNull File = iota
	FileTemp
	FileInput
	FileOutput
	FileConst
	FileImmediate
	FileSampler
	FileAddress
	FilePredicate
	FileSystemValue
)

var fileNames = [...]string{"NULL", "TEMP", "IN", "OUT", "CONST", "IMM", "SAMP", "ADDR", "PRED", "SV"}

func (f File) String() string {
	if int(f) < len(fileNames) {
		return fileNames[f]
	}
	return fmt.Sprintf("File(%d)", uint8(f))
}

// SemanticName classifies an input, output or system value.
type SemanticName uint8

const (
	SemNone SemanticName = iota
	SemPosition
	SemColor
	SemBColor
	SemFog
	SemPSize
	SemGeneric
	SemTexcoord
	SemFace
	SemDepth
)

var semanticNames = [...]string{"NONE", "POSITION", "COLOR", "BCOLOR", "FOG", "PSIZE", "GENERIC", "TEXCOORD", "FACE", "DEPTH"}

func (n SemanticName) String() string {
	if int(n) < len(semanticNames) {
		return semanticNames[n]
	}
	return fmt.Sprintf("SemanticName(%d)", uint8(n))
}

// Semantic is a semantic name with its index.
type Semantic struct {
	Name  SemanticName
	Index int
}

func (s Semantic) String() string {
	return fmt.Sprintf("%s[%d]", s.Name, s.Index)
}

// Interpolation is the interpolation mode of a fragment input.
type Interpolation uint8

const (
	InterpPerspective Interpolation = iota
	InterpLinear
	InterpConstant
	// InterpColor follows the flat/smooth shading state.
	InterpColor
)

var interpNames = [...]string{"PERSPECTIVE", "LINEAR", "CONSTANT", "COLOR"}

func (i Interpolation) String() string {
	if int(i) < len(interpNames) {
		return interpNames[i]
	}
	return fmt.Sprintf("Interpolation(%d)", uint8(i))
}

// TextureTarget is the dimensionality of a sampler.
type TextureTarget uint8

const (
	TargetUnknown TextureTarget = iota
	Target1D
	Target2D
	Target3D
	TargetCube
	TargetShadow1D
	TargetShadow2D
	TargetShadowCube
)

var targetNames = [...]string{"UNKNOWN", "1D", "2D", "3D", "CUBE", "SHADOW1D", "SHADOW2D", "SHADOWCUBE"}

func (t TextureTarget) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("TextureTarget(%d)", uint8(t))
}

// Shadow reports whether the target compares against a reference value.
func (t TextureTarget) Shadow() bool {
	return t >= TargetShadow1D && t <= TargetShadowCube
}

// Declaration is one entry of Program.Declarations.
type Declaration interface {
	declaration()
}

// InputDecl declares IN[Index].
type InputDecl struct {
	Index    int
	Semantic Semantic
	Interp   Interpolation
	Centroid bool
}

// OutputDecl declares OUT[Index].
type OutputDecl struct {
	Index    int
	Semantic Semantic
}

// TempDecl declares TEMP[Index].
type TempDecl struct {
	Index int
}

// AddressDecl declares ADDR[Index].
type AddressDecl struct {
	Index int
}

// PredicateDecl declares PRED[Index].
type PredicateDecl struct {
	Index int
}

// ConstDecl declares CONST[First..Last].
type ConstDecl struct {
	First int
	Last  int
}

// SamplerDecl declares SAMP[Index] with its target.
type SamplerDecl struct {
	Index  int
	Target TextureTarget
}

// SystemValueDecl declares SV[Index].
type SystemValueDecl struct {
	Index    int
	Semantic Semantic
}

func (InputDecl) declaration()       {}
func (OutputDecl) declaration()      {}
func (TempDecl) declaration()        {}
func (AddressDecl) declaration()     {}
func (PredicateDecl) declaration()   {}
func (ConstDecl) declaration()       {}
func (SamplerDecl) declaration()     {}
func (SystemValueDecl) declaration() {}

// Inputs returns the input declarations in declaration order.
func (p *Program) Inputs() []InputDecl {
	var out []InputDecl
	for _, d := range p.Declarations {
		if in, ok := d.(InputDecl); ok {
			out = append(out, in)
		}
	}
	return out
}

// Outputs returns the output declarations in declaration order.
func (p *Program) Outputs() []OutputDecl {
	var out []OutputDecl
	for _, d := range p.Declarations {
		if o, ok := d.(OutputDecl); ok {
			out = append(out, o)
		}
	}
	return out
}

// Samplers returns the sampler declarations in declaration order.
func (p *Program) Samplers() []SamplerDecl {
	var out []SamplerDecl
	for _, d := range p.Declarations {
		if s, ok := d.(SamplerDecl); ok {
			out = append(out, s)
		}
	}
	return out
}

// NumTemps returns the number of declared temporaries.
func (p *Program) NumTemps() int {
	n := 0
	for _, d := range p.Declarations {
		if _, ok := d.(TempDecl); ok {
			n++
		}
	}
	return n
}

// Count returns how many instructions use op.
func (p *Program) Count(op Opcode) int {
	n := 0
	for _, inst := range p.Instructions {
		if inst.Op == op {
			n++
		}
	}
	return n
}
