package bytecode

import "fmt"

// Opcode is the operation field of an instruction token.
type Opcode uint16

// Opcodes in D3DSHADER_INSTRUCTION_OPCODE_TYPE order.
const (
	OpNop          Opcode = 0
	OpMov          Opcode = 1
	OpAdd          Opcode = 2
	OpSub          Opcode = 3
	OpMad          Opcode = 4
	OpMul          Opcode = 5
	OpRcp          Opcode = 6
	OpRsq          Opcode = 7
	OpDp3          Opcode = 8
	OpDp4          Opcode = 9
	OpMin          Opcode = 10
	OpMax          Opcode = 11
	OpSlt          Opcode = 12
	OpSge          Opcode = 13
	OpExp          Opcode = 14
	OpLog          Opcode = 15
	OpLit          Opcode = 16
	OpDst          Opcode = 17
	OpLrp          Opcode = 18
	OpFrc          Opcode = 19
	OpM4x4         Opcode = 20
	OpM4x3         Opcode = 21
	OpM3x4         Opcode = 22
	OpM3x3         Opcode = 23
	OpM3x2         Opcode = 24
	OpCall         Opcode = 25
	OpCallNz       Opcode = 26
	OpLoop         Opcode = 27
	OpRet          Opcode = 28
	OpEndLoop      Opcode = 29
	OpLabel        Opcode = 30
	OpDcl          Opcode = 31
	OpPow          Opcode = 32
	OpCrs          Opcode = 33
	OpSgn          Opcode = 34
	OpAbs          Opcode = 35
	OpNrm          Opcode = 36
	OpSinCos       Opcode = 37
	OpRep          Opcode = 38
	OpEndRep       Opcode = 39
	OpIf           Opcode = 40
	OpIfc          Opcode = 41
	OpElse         Opcode = 42
	OpEndIf        Opcode = 43
	OpBreak        Opcode = 44
	OpBreakc       Opcode = 45
	OpMova         Opcode = 46
	OpDefB         Opcode = 47
	OpDefI         Opcode = 48
	OpTexCoord     Opcode = 64
	OpTexKill      Opcode = 65
	OpTex          Opcode = 66
	OpTexBem       Opcode = 67
	OpTexBemL      Opcode = 68
	OpTexReg2AR    Opcode = 69
	OpTexReg2GB    Opcode = 70
	OpTexM3x2Pad   Opcode = 71
	OpTexM3x2Tex   Opcode = 72
	OpTexM3x3Pad   Opcode = 73
	OpTexM3x3Tex   Opcode = 74
	OpTexM3x3Spec  Opcode = 76
	OpTexM3x3VSpec Opcode = 77
	OpExpP         Opcode = 78
	OpLogP         Opcode = 79
	OpCnd          Opcode = 80
	OpDef          Opcode = 81
	OpTexReg2RGB   Opcode = 82
	OpTexDp3Tex    Opcode = 83
	OpTexM3x2Depth Opcode = 84
	OpTexDp3       Opcode = 85
	OpTexM3x3      Opcode = 86
	OpTexDepth     Opcode = 87
	OpCmp          Opcode = 88
	OpBem          Opcode = 89
	OpDp2Add       Opcode = 90
	OpDsx          Opcode = 91
	OpDsy          Opcode = 92
	OpTexLdd       Opcode = 93
	OpSetP         Opcode = 94
	OpTexLdl       Opcode = 95
	OpBreakP       Opcode = 96

	OpPhase   Opcode = 0xFFFD
	OpComment Opcode = 0xFFFE
	OpEnd     Opcode = 0xFFFF
)

var opcodeNames = map[Opcode]string{
	OpNop: "nop", OpMov: "mov", OpAdd: "add", OpSub: "sub", OpMad: "mad",
	OpMul: "mul", OpRcp: "rcp", OpRsq: "rsq", OpDp3: "dp3", OpDp4: "dp4",
	OpMin: "min", OpMax: "max", OpSlt: "slt", OpSge: "sge", OpExp: "exp",
	OpLog: "log", OpLit: "lit", OpDst: "dst", OpLrp: "lrp", OpFrc: "frc",
	OpM4x4: "m4x4", OpM4x3: "m4x3", OpM3x4: "m3x4", OpM3x3: "m3x3", OpM3x2: "m3x2",
	OpCall: "call", OpCallNz: "callnz", OpLoop: "loop", OpRet: "ret",
	OpEndLoop: "endloop", OpLabel: "label", OpDcl: "dcl", OpPow: "pow",
	OpCrs: "crs", OpSgn: "sgn", OpAbs: "abs", OpNrm: "nrm", OpSinCos: "sincos",
	OpRep: "rep", OpEndRep: "endrep", OpIf: "if", OpIfc: "ifc", OpElse: "else",
	OpEndIf: "endif", OpBreak: "break", OpBreakc: "breakc", OpMova: "mova",
	OpDefB: "defb", OpDefI: "defi",
	OpTexCoord: "texcoord", OpTexKill: "texkill", OpTex: "tex",
	OpTexBem: "texbem", OpTexBemL: "texbeml", OpTexReg2AR: "texreg2ar",
	OpTexReg2GB: "texreg2gb", OpTexM3x2Pad: "texm3x2pad", OpTexM3x2Tex: "texm3x2tex",
	OpTexM3x3Pad: "texm3x3pad", OpTexM3x3Tex: "texm3x3tex",
	OpTexM3x3Spec: "texm3x3spec", OpTexM3x3VSpec: "texm3x3vspec",
	OpExpP: "expp", OpLogP: "logp", OpCnd: "cnd", OpDef: "def",
	OpTexReg2RGB: "texreg2rgb", OpTexDp3Tex: "texdp3tex", OpTexM3x2Depth: "texm3x2depth",
	OpTexDp3: "texdp3", OpTexM3x3: "texm3x3", OpTexDepth: "texdepth", OpCmp: "cmp",
	OpBem: "bem", OpDp2Add: "dp2add", OpDsx: "dsx", OpDsy: "dsy", OpTexLdd: "texldd",
	OpSetP: "setp", OpTexLdl: "texldl", OpBreakP: "breakp",
	OpPhase: "phase", OpComment: "comment", OpEnd: "end",
}

// String returns the assembler mnemonic of the opcode.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op%d", uint16(o))
}

// Comparison is the control value of IFC, BREAKC and SETP.
type Comparison uint8

const (
	CmpGT Comparison = 1
	CmpEQ Comparison = 2
	CmpGE Comparison = 3
	CmpLT Comparison = 4
	CmpNE Comparison = 5
	CmpLE Comparison = 6
)

var comparisonNames = [...]string{"", "gt", "eq", "ge", "lt", "ne", "le"}

// String returns the assembler suffix, e.g. "gt".
func (c Comparison) String() string {
	if int(c) < len(comparisonNames) && c != 0 {
		return comparisonNames[c]
	}
	return fmt.Sprintf("cmp%d", uint8(c))
}

// Valid reports whether c names one of the six comparisons.
func (c Comparison) Valid() bool {
	return c >= CmpGT && c <= CmpLE
}

// TEXLD control bits.
const (
	TexLdProject uint8 = 1
	TexLdBias    uint8 = 2
)
