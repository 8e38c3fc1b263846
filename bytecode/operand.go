package bytecode

import (
	"fmt"
	"strings"
)

// Swizzle selects a source component for each destination channel, two bits
// per channel starting at x.
type Swizzle uint8

// NoSwizzle is the identity swizzle .xyzw.
const NoSwizzle Swizzle = 0xE4

// MakeSwizzle builds a swizzle from component indices (0=x .. 3=w).
func MakeSwizzle(x, y, z, w int) Swizzle {
	return Swizzle(x&3 | (y&3)<<2 | (z&3)<<4 | (w&3)<<6)
}

// Replicate returns the swizzle that broadcasts component c.
func Replicate(c int) Swizzle {
	return MakeSwizzle(c, c, c, c)
}

// SwizzleOf parses an assembler swizzle such as "xyzw", "wx" or "r".
// Short forms repeat their last component. Invalid text panics.
func SwizzleOf(s string) Swizzle {
	if s == "" || len(s) > 4 {
		panic(fmt.Sprintf("bytecode: invalid swizzle %q", s))
	}
	var comps [4]int
	for i := range comps {
		ch := s[len(s)-1]
		if i < len(s) {
			ch = s[i]
		}
		c := strings.IndexByte("xyzw", ch)
		if c < 0 {
			c = strings.IndexByte("rgba", ch)
		}
		if c < 0 {
			panic(fmt.Sprintf("bytecode: invalid swizzle %q", s))
		}
		comps[i] = c
	}
	return MakeSwizzle(comps[0], comps[1], comps[2], comps[3])
}

// Component returns the source component feeding channel i.
func (s Swizzle) Component(i int) int {
	return int(s>>(2*uint(i))) & 3
}

// Then composes two swizzles: the result reads s through o.
// (s.Then(o)).Component(i) == s.Component(o.Component(i)).
func (s Swizzle) Then(o Swizzle) Swizzle {
	return MakeSwizzle(
		s.Component(o.Component(0)),
		s.Component(o.Component(1)),
		s.Component(o.Component(2)),
		s.Component(o.Component(3)),
	)
}

func (s Swizzle) String() string {
	var b [4]byte
	for i := range b {
		b[i] = "xyzw"[s.Component(i)]
	}
	return string(b[:])
}

// WriteMask is the set of destination channels written.
type WriteMask uint8

const (
	MaskX   WriteMask = 1
	MaskY   WriteMask = 2
	MaskZ   WriteMask = 4
	MaskW   WriteMask = 8
	MaskAll WriteMask = 0xF
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

// DstParam is a decoded destination parameter.
type DstParam struct {
	Type  RegisterType
	Num   int
	Mask  WriteMask
	Mod   ResultModifier
	Shift int8
	// Rel is the address register for relative addressing, nil otherwise.
	Rel *SrcParam
}

// SrcParam is a decoded source parameter.
type SrcParam struct {
	Type    RegisterType
	Num     int
	Swizzle Swizzle
	Mod     SrcModifier
	Rel     *SrcParam
}

// Decl is the usage token of DCL.
type Decl struct {
	Usage       Usage
	UsageIndex  int
	TextureType TextureType
}

const relativeBit = 1 << 13

func registerType(t Token) RegisterType {
	return RegisterType((t>>28)&7 | (t&0x1800)>>8)
}

func registerBits(typ RegisterType, num int) Token {
	return Token(num&0x7FF) | Token(typ&7)<<28 | Token(typ&0x18)<<8 | paramBit
}

func checkParam(t Token) {
	if !t.IsParam() {
		panic(fmt.Sprintf("bytecode: expected parameter token, got 0x%08x", uint32(t)))
	}
	if typ := registerType(t); typ > maxRegisterType {
		panic(fmt.Sprintf("bytecode: register type %d out of range", typ))
	}
}

// Relative reports whether a parameter token uses relative addressing.
func Relative(t Token) bool {
	return t&relativeBit != 0
}

// DecodeDst projects the fields of a destination token. The relative
// sub-operand is not read; see Reader.Dst.
func DecodeDst(t Token) DstParam {
	checkParam(t)
	return DstParam{
		Type:  registerType(t),
		Num:   int(t & 0x7FF),
		Mask:  WriteMask((t >> 16) & 0xF),
		Mod:   ResultModifier((t >> 20) & 0xF),
		Shift: int8(uint8((t>>24)&0xF)<<4) >> 4,
	}
}

// DecodeSrc projects the fields of a source token.
func DecodeSrc(t Token) SrcParam {
	checkParam(t)
	return SrcParam{
		Type:    registerType(t),
		Num:     int(t & 0x7FF),
		Swizzle: Swizzle(t >> 16),
		Mod:     SrcModifier((t >> 24) & 0xF),
	}
}

// DecodeDecl projects the fields of a DCL usage token.
func DecodeDecl(t Token) Decl {
	return Decl{
		Usage:       Usage(t & 0x1F),
		UsageIndex:  int((t >> 16) & 0xF),
		TextureType: TextureType((t >> 27) & 0xF),
	}
}

// Token encodes the destination without its relative sub-operand.
func (d DstParam) Token() Token {
	t := registerBits(d.Type, d.Num)
	t |= Token(d.Mask&0xF) << 16
	t |= Token(d.Mod&0xF) << 20
	t |= Token(uint8(d.Shift)&0xF) << 24
	if d.Rel != nil {
		t |= relativeBit
	}
	return t
}

// Token encodes the source without its relative sub-operand.
func (s SrcParam) Token() Token {
	t := registerBits(s.Type, s.Num)
	t |= Token(s.Swizzle) << 16
	t |= Token(s.Mod&0xF) << 24
	if s.Rel != nil {
		t |= relativeBit
	}
	return t
}

// Token encodes the DCL usage token.
func (d Decl) Token() Token {
	return Token(d.Usage&0x1F) | Token(d.UsageIndex&0xF)<<16 | Token(d.TextureType&0xF)<<27 | paramBit
}
