package bytecode

import (
	"encoding/binary"
	"fmt"
)

// Token is a single 32-bit word of a shader token stream.
type Token uint32

// Special token values.
const (
	// EndToken terminates every shader.
	EndToken Token = 0x0000FFFF

	paramBit      = 1 << 31
	predicatedBit = 1 << 28
	coissueBit    = 1 << 30
)

// Opcode returns the opcode field of an instruction token.
func (t Token) Opcode() Opcode {
	return Opcode(t & 0xFFFF)
}

// Control returns the opcode-specific control byte (bits 16-23).
// It holds the comparison of IFC, BREAKC and SETP and the TEXLD flags.
func (t Token) Control() uint8 {
	return uint8(t >> 16)
}

// Length returns the instruction length field: the number of tokens that
// follow the instruction token. Only meaningful for shader model 2.0+.
func (t Token) Length() int {
	return int((t >> 24) & 0xF)
}

// Predicated reports whether the instruction carries a predicate token.
func (t Token) Predicated() bool {
	return t&predicatedBit != 0
}

// Coissue reports whether the instruction is co-issued (ps_1_x "+" prefix).
func (t Token) Coissue() bool {
	return t&coissueBit != 0
}

// CommentLength returns the number of payload words of a COMMENT token.
func (t Token) CommentLength() int {
	return int((t >> 16) & 0x7FFF)
}

// IsParam reports whether t is a parameter token rather than an instruction.
func (t Token) IsParam() bool {
	return t&paramBit != 0
}

// ShaderType is the pipeline stage a shader runs in.
type ShaderType uint8

const (
	Vertex ShaderType = iota
	Pixel
)

// String returns "vs" or "ps".
func (s ShaderType) String() string {
	switch s {
	case Vertex:
		return "vs"
	case Pixel:
		return "ps"
	default:
		return fmt.Sprintf("ShaderType(%d)", uint8(s))
	}
}

// Version is a shader model version. 2.x shaders are encoded as 2.1.
type Version struct {
	Major uint8
	Minor uint8
}

// V returns the version major.minor.
func V(major, minor uint8) Version {
	return Version{Major: major, Minor: minor}
}

// Less reports whether v is an earlier version than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// AtLeast reports whether v is major.minor or later.
func (v Version) AtLeast(major, minor uint8) bool {
	return !v.Less(V(major, minor))
}

// String formats the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Profile formats a shader type and version like the assembler does, e.g. "vs_2_0".
func Profile(t ShaderType, v Version) string {
	if v.Major == 2 && v.Minor == 1 {
		return t.String() + "_2_x"
	}
	return fmt.Sprintf("%s_%d_%d", t, v.Major, v.Minor)
}

const (
	vertexHeader = 0xFFFE
	pixelHeader  = 0xFFFF
)

// HeaderToken encodes a version header token.
func HeaderToken(t ShaderType, v Version) Token {
	hi := uint32(vertexHeader)
	if t == Pixel {
		hi = pixelHeader
	}
	return Token(hi<<16 | uint32(v.Major)<<8 | uint32(v.Minor))
}

// ParseHeader decodes the version header token at the start of a stream.
func ParseHeader(t Token) (ShaderType, Version, error) {
	v := V(uint8(t>>8), uint8(t))
	switch t >> 16 {
	case vertexHeader:
		return Vertex, v, nil
	case pixelHeader:
		return Pixel, v, nil
	default:
		return 0, Version{}, fmt.Errorf("bytecode: invalid version token 0x%08x", uint32(t))
	}
}

// FromBytes converts a little-endian byte buffer into tokens.
func FromBytes(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("bytecode: length %d is not a multiple of 4", len(data))
	}
	tokens := make([]uint32, len(data)/4)
	for i := range tokens {
		tokens[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return tokens, nil
}

// ToBytes converts tokens into a little-endian byte buffer.
func ToBytes(tokens []uint32) []byte {
	data := make([]byte, len(tokens)*4)
	for i, tok := range tokens {
		binary.LittleEndian.PutUint32(data[i*4:], tok)
	}
	return data
}
