package ir

import (
	"fmt"
	"strings"
)

// Opcode is an IR operation.
type Opcode uint8

const (
	OpNOP Opcode = iota
	OpMOV
	OpARL
	OpARR
	OpUARL
	OpLIT
	OpRCP
	OpRSQ
	OpEXP
	OpLOG
	OpMUL
	OpADD
	OpDP2
	OpDP3
	OpDP4
	OpDST
	OpMIN
	OpMAX
	OpSLT
	OpSGE
	OpSGT
	OpSLE
	OpSEQ
	OpSNE
	OpMAD
	OpLRP
	OpFRC
	OpEX2
	OpLG2
	OpPOW
	OpXPD
	OpCMP
	OpSIN
	OpCOS
	OpDDX
	OpDDY
	OpKILLIF
	OpTEX
	OpTXP
	OpTXB
	OpTXD
	OpTXL
	OpNOT
	OpUADD
	OpUMAD
	OpUSEQ
	OpBRK
	OpBREAKC
	OpIF
	OpUIF
	OpELSE
	OpENDIF
	OpBGNLOOP
	OpENDLOOP
	OpCAL
	OpRET
	OpEND

	opCount
)

type opInfo struct {
	name   string
	numDst int
	numSrc int
	// integer marks opcodes whose sources are read as integer bits.
	integer bool
	// label marks opcodes with a jump target.
	label bool
}

var opInfos = [opCount]opInfo{
	OpNOP:     {name: "NOP"},
	OpMOV:     {name: "MOV", numDst: 1, numSrc: 1},
	OpARL:     {name: "ARL", numDst: 1, numSrc: 1},
	OpARR:     {name: "ARR", numDst: 1, numSrc: 1},
	OpUARL:    {name: "UARL", numDst: 1, numSrc: 1, integer: true},
	OpLIT:     {name: "LIT", numDst: 1, numSrc: 1},
	OpRCP:     {name: "RCP", numDst: 1, numSrc: 1},
	OpRSQ:     {name: "RSQ", numDst: 1, numSrc: 1},
	OpEXP:     {name: "EXP", numDst: 1, numSrc: 1},
	OpLOG:     {name: "LOG", numDst: 1, numSrc: 1},
	OpMUL:     {name: "MUL", numDst: 1, numSrc: 2},
	OpADD:     {name: "ADD", numDst: 1, numSrc: 2},
	OpDP2:     {name: "DP2", numDst: 1, numSrc: 2},
	OpDP3:     {name: "DP3", numDst: 1, numSrc: 2},
	OpDP4:     {name: "DP4", numDst: 1, numSrc: 2},
	OpDST:     {name: "DST", numDst: 1, numSrc: 2},
	OpMIN:     {name: "MIN", numDst: 1, numSrc: 2},
	OpMAX:     {name: "MAX", numDst: 1, numSrc: 2},
	OpSLT:     {name: "SLT", numDst: 1, numSrc: 2},
	OpSGE:     {name: "SGE", numDst: 1, numSrc: 2},
	OpSGT:     {name: "SGT", numDst: 1, numSrc: 2},
	OpSLE:     {name: "SLE", numDst: 1, numSrc: 2},
	OpSEQ:     {name: "SEQ", numDst: 1, numSrc: 2},
	OpSNE:     {name: "SNE", numDst: 1, numSrc: 2},
	OpMAD:     {name: "MAD", numDst: 1, numSrc: 3},
	OpLRP:     {name: "LRP", numDst: 1, numSrc: 3},
	OpFRC:     {name: "FRC", numDst: 1, numSrc: 1},
	OpEX2:     {name: "EX2", numDst: 1, numSrc: 1},
	OpLG2:     {name: "LG2", numDst: 1, numSrc: 1},
	OpPOW:     {name: "POW", numDst: 1, numSrc: 2},
	OpXPD:     {name: "XPD", numDst: 1, numSrc: 2},
	OpCMP:     {name: "CMP", numDst: 1, numSrc: 3},
	OpSIN:     {name: "SIN", numDst: 1, numSrc: 1},
	OpCOS:     {name: "COS", numDst: 1, numSrc: 1},
	OpDDX:     {name: "DDX", numDst: 1, numSrc: 1},
	OpDDY:     {name: "DDY", numDst: 1, numSrc: 1},
	OpKILLIF:  {name: "KILL_IF", numSrc: 1},
	OpTEX:     {name: "TEX", numDst: 1, numSrc: 2},
	OpTXP:     {name: "TXP", numDst: 1, numSrc: 2},
	OpTXB:     {name: "TXB", numDst: 1, numSrc: 2},
	OpTXD:     {name: "TXD", numDst: 1, numSrc: 4},
	OpTXL:     {name: "TXL", numDst: 1, numSrc: 2},
	OpNOT:     {name: "NOT", numDst: 1, numSrc: 1, integer: true},
	OpUADD:    {name: "UADD", numDst: 1, numSrc: 2, integer: true},
	OpUMAD:    {name: "UMAD", numDst: 1, numSrc: 3, integer: true},
	OpUSEQ:    {name: "USEQ", numDst: 1, numSrc: 2, integer: true},
	OpBRK:     {name: "BRK"},
	OpBREAKC:  {name: "BREAKC", numSrc: 1, integer: true},
	OpIF:      {name: "IF", numSrc: 1, label: true},
	OpUIF:     {name: "UIF", numSrc: 1, integer: true, label: true},
	OpELSE:    {name: "ELSE", label: true},
	OpENDIF:   {name: "ENDIF"},
	OpBGNLOOP: {name: "BGNLOOP", label: true},
	OpENDLOOP: {name: "ENDLOOP", label: true},
	OpCAL:     {name: "CAL", label: true},
	OpRET:     {name: "RET"},
	OpEND:     {name: "END"},
}

func (o Opcode) String() string {
	if o < opCount {
		return opInfos[o].name
	}
	return fmt.Sprintf("Opcode(%d)", uint8(o))
}

// NumDst returns the number of destinations op writes.
func (o Opcode) NumDst() int { return opInfos[o].numDst }

// NumSrc returns the number of sources op reads.
func (o Opcode) NumSrc() int { return opInfos[o].numSrc }

// HasLabel reports whether op carries a jump target.
func (o Opcode) HasLabel() bool { return opInfos[o].label }

// IsTexture reports whether op samples a texture.
func (o Opcode) IsTexture() bool {
	switch o {
	case OpTEX, OpTXP, OpTXB, OpTXD, OpTXL:
		return true
	}
	return false
}

// NoLabel marks a jump whose target has not been patched yet.
const NoLabel = -1

// Swizzle selects a source component for each channel.
type Swizzle [4]uint8

// SwizzleXYZW is the identity swizzle.
var SwizzleXYZW = Swizzle{0, 1, 2, 3}

// Splat returns the swizzle replicating component c.
func Splat(c int) Swizzle {
	return Swizzle{uint8(c), uint8(c), uint8(c), uint8(c)}
}

func (s Swizzle) String() string {
	var b [4]byte
	for i, c := range s {
		b[i] = "xyzw"[c&3]
	}
	return string(b[:])
}

// WriteMask is the set of channels written by a destination.
type WriteMask uint8

const (
	MaskX    WriteMask = 1
	MaskY    WriteMask = 2
	MaskZ    WriteMask = 4
	MaskW    WriteMask = 8
	MaskXY             = MaskX | MaskY
	MaskXYZ            = MaskX | MaskY | MaskZ
	MaskXYZW           = MaskX | MaskY | MaskZ | MaskW
)

// Has reports whether channel c is written.
func (m WriteMask) Has(c int) bool {
	return m&(1<<uint(c)) != 0
}

func (m WriteMask) String() string {
	var b strings.Builder
	for c := 0; c < 4; c++ {
		if m.Has(c) {
			b.WriteByte("xyzw"[c])
		}
	}
	return b.String()
}

// Indirect is the address operand of a relatively addressed register:
// the effective index is the register index plus File[Index].Component.
type Indirect struct {
	File      File
	Index     int
	Component int
}

// Src is a source operand. Negate and Abs are the only native modifiers;
// absolute value is applied first.
type Src struct {
	File     File
	Index    int
	Swizzle  Swizzle
	Negate   bool
	Abs      bool
	Indirect *Indirect
}

// Reg returns an unmodified source reading File[index].
func Reg(file File, index int) Src {
	return Src{File: file, Index: index, Swizzle: SwizzleXYZW}
}

// Swz returns s reswizzled: channel i reads what s delivered on channel c_i.
func (s Src) Swz(x, y, z, w int) Src {
	s.Swizzle = Swizzle{s.Swizzle[x], s.Swizzle[y], s.Swizzle[z], s.Swizzle[w]}
	return s
}

// Scalar returns s with channel c broadcast.
func (s Src) Scalar(c int) Src {
	return s.Swz(c, c, c, c)
}

// Neg returns s with its negation flipped.
func (s Src) Neg() Src {
	s.Negate = !s.Negate
	return s
}

// Absolute returns |s|, dropping any negation.
func (s Src) Absolute() Src {
	s.Abs = true
	s.Negate = false
	return s
}

// Dst is a destination operand.
type Dst struct {
	File      File
	Index     int
	WriteMask WriteMask
	Indirect  *Indirect
}

// RegDst returns a destination writing all channels of File[index].
func RegDst(file File, index int) Dst {
	return Dst{File: file, Index: index, WriteMask: MaskXYZW}
}

// Masked returns d restricted to the channels in m.
func (d Dst) Masked(m WriteMask) Dst {
	d.WriteMask = m
	return d
}

// Src returns a source reading back the destination register.
func (d Dst) Src() Src {
	s := Reg(d.File, d.Index)
	s.Indirect = d.Indirect
	return s
}

// Instruction is one IR operation.
type Instruction struct {
	Op  Opcode
	Dst []Dst
	Src []Src
	// Label is the jump target of IF, UIF, ELSE, BGNLOOP, ENDLOOP and CAL.
	Label int
	// Texture is the sampler target of texture opcodes.
	Texture TextureTarget
}
