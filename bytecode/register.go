package bytecode

import "fmt"

// RegisterType is the register file of a parameter token.
type RegisterType uint8

// Register types. Several values are shared between stages and shader
// models: 3 is the vs address register and the ps texture register, 6 is the
// vs_1/2 texture coordinate output and the vs_3_0 generic output.
const (
	RegTemp        RegisterType = 0
	RegInput       RegisterType = 1
	RegConst       RegisterType = 2
	RegAddr        RegisterType = 3
	RegTexture     RegisterType = 3
	RegRastOut     RegisterType = 4
	RegAttrOut     RegisterType = 5
	RegTexCrdOut   RegisterType = 6
	RegOutput      RegisterType = 6
	RegConstInt    RegisterType = 7
	RegColorOut    RegisterType = 8
	RegDepthOut    RegisterType = 9
	RegSampler     RegisterType = 10
	RegConst2      RegisterType = 11
	RegConst3      RegisterType = 12
	RegConst4      RegisterType = 13
	RegConstBool   RegisterType = 14
	RegLoop        RegisterType = 15
	RegTempFloat16 RegisterType = 16
	RegMiscType    RegisterType = 17
	RegLabel       RegisterType = 18
	RegPredicate   RegisterType = 19

	maxRegisterType = RegPredicate
)

// Name returns the assembler register prefix. The stage decides between the
// aliased meanings of types 3 and 6.
func (r RegisterType) Name(stage ShaderType, v Version) string {
	switch r {
	case RegTemp:
		return "r"
	case RegInput:
		return "v"
	case RegConst:
		return "c"
	case RegAddr:
		if stage == Pixel {
			return "t"
		}
		return "a"
	case RegRastOut:
		return "oRast"
	case RegAttrOut:
		return "oD"
	case RegTexCrdOut:
		if v.Major >= 3 {
			return "o"
		}
		return "oT"
	case RegConstInt:
		return "i"
	case RegColorOut:
		return "oC"
	case RegDepthOut:
		return "oDepth"
	case RegSampler:
		return "s"
	case RegConst2, RegConst3, RegConst4:
		return "c"
	case RegConstBool:
		return "b"
	case RegLoop:
		return "aL"
	case RegTempFloat16:
		return "half"
	case RegMiscType:
		return "vMisc"
	case RegLabel:
		return "l"
	case RegPredicate:
		return "p"
	default:
		return fmt.Sprintf("reg%d_", uint8(r))
	}
}

// RASTOUT register numbers.
const (
	RastOutPosition  = 0
	RastOutFog       = 1
	RastOutPointSize = 2
)

// MISCTYPE register numbers.
const (
	MiscPosition = 0
	MiscFace     = 1
)

// SrcModifier is the modifier field of a source parameter.
type SrcModifier uint8

const (
	SrcModNone    SrcModifier = 0
	SrcModNeg     SrcModifier = 1
	SrcModBias    SrcModifier = 2
	SrcModBiasNeg SrcModifier = 3
	SrcModSign    SrcModifier = 4
	SrcModSignNeg SrcModifier = 5
	SrcModComp    SrcModifier = 6
	SrcModX2      SrcModifier = 7
	SrcModX2Neg   SrcModifier = 8
	SrcModDz      SrcModifier = 9
	SrcModDw      SrcModifier = 10
	SrcModAbs     SrcModifier = 11
	SrcModAbsNeg  SrcModifier = 12
	SrcModNot     SrcModifier = 13
)

// ResultModifier is the bit set of destination result modifiers.
type ResultModifier uint8

const (
	ResultSaturate         ResultModifier = 1
	ResultPartialPrecision ResultModifier = 2
	ResultCentroid         ResultModifier = 4
)

// Usage is a D3DDECLUSAGE value carried by DCL.
type Usage uint8

const (
	UsagePosition     Usage = 0
	UsageBlendWeight  Usage = 1
	UsageBlendIndices Usage = 2
	UsageNormal       Usage = 3
	UsagePSize        Usage = 4
	UsageTexCoord     Usage = 5
	UsageTangent      Usage = 6
	UsageBinormal     Usage = 7
	UsageTessFactor   Usage = 8
	UsagePositionT    Usage = 9
	UsageColor        Usage = 10
	UsageFog          Usage = 11
	UsageDepth        Usage = 12
	UsageSample       Usage = 13
)

var usageNames = [...]string{
	"position", "blendweight", "blendindices", "normal", "psize", "texcoord",
	"tangent", "binormal", "tessfactor", "positiont", "color", "fog", "depth", "sample",
}

func (u Usage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return fmt.Sprintf("usage%d", uint8(u))
}

// TextureType is the sampler type declared by DCL on a sampler register.
type TextureType uint8

const (
	TextureUnknown TextureType = 0
	Texture2D      TextureType = 2
	TextureCube    TextureType = 3
	TextureVolume  TextureType = 4
)

func (t TextureType) String() string {
	switch t {
	case Texture2D:
		return "2d"
	case TextureCube:
		return "cube"
	case TextureVolume:
		return "volume"
	default:
		return "unknown"
	}
}
