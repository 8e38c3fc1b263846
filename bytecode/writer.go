package bytecode

import "math"

// Param is anything that encodes to parameter tokens of an instruction.
type Param interface {
	appendTokens(dst []uint32, v Version) []uint32
}

// Word is a raw parameter token, used for DEF immediates.
type Word uint32

func (w Word) appendTokens(dst []uint32, _ Version) []uint32 {
	return append(dst, uint32(w))
}

func (d DstParam) appendTokens(dst []uint32, v Version) []uint32 {
	dst = append(dst, uint32(d.Token()))
	if d.Rel != nil && v.Major >= 2 {
		dst = append(dst, uint32(d.Rel.Token()))
	}
	return dst
}

func (s SrcParam) appendTokens(dst []uint32, v Version) []uint32 {
	dst = append(dst, uint32(s.Token()))
	if s.Rel != nil && v.Major >= 2 {
		dst = append(dst, uint32(s.Rel.Token()))
	}
	return dst
}

func (d Decl) appendTokens(dst []uint32, _ Version) []uint32 {
	return append(dst, uint32(d.Token()))
}

// Dst returns a destination writing all channels of register typ#num.
func Dst(typ RegisterType, num int) DstParam {
	return DstParam{Type: typ, Num: num, Mask: MaskAll}
}

// Src returns an unmodified source reading register typ#num.
func Src(typ RegisterType, num int) SrcParam {
	return SrcParam{Type: typ, Num: num, Swizzle: NoSwizzle}
}

// WithMask returns d writing only the channels in m.
func (d DstParam) WithMask(m WriteMask) DstParam {
	d.Mask = m
	return d
}

// Saturate returns d with the _sat result modifier.
func (d DstParam) Saturate() DstParam {
	d.Mod |= ResultSaturate
	return d
}

// Centroid returns d with the _centroid result modifier.
func (d DstParam) Centroid() DstParam {
	d.Mod |= ResultCentroid
	return d
}

// WithShift returns d with a result shift (ps_1_x _x2, _d2 and friends).
func (d DstParam) WithShift(shift int8) DstParam {
	d.Shift = shift
	return d
}

// Indexed returns d addressed relative to rel.
func (d DstParam) Indexed(rel SrcParam) DstParam {
	d.Rel = &rel
	return d
}

// Swz returns s with the given assembler swizzle, e.g. "xxyz".
func (s SrcParam) Swz(swizzle string) SrcParam {
	s.Swizzle = SwizzleOf(swizzle)
	return s
}

// WithMod returns s with the source modifier m.
func (s SrcParam) WithMod(m SrcModifier) SrcParam {
	s.Mod = m
	return s
}

// Negate returns s with the NEG modifier.
func (s SrcParam) Negate() SrcParam {
	return s.WithMod(SrcModNeg)
}

// Indexed returns s addressed relative to rel.
func (s SrcParam) Indexed(rel SrcParam) SrcParam {
	s.Rel = &rel
	return s
}

// InstFlags are the optional fields of an instruction token.
type InstFlags struct {
	Control    uint8
	Coissue    bool
	Predicated bool
}

// Writer assembles a token stream. The instruction length field is filled
// in for shader model 2.0 and later.
type Writer struct {
	typ     ShaderType
	version Version
	words   []uint32
}

// NewWriter starts a stream for the given shader type and version.
func NewWriter(t ShaderType, v Version) *Writer {
	return &Writer{
		typ:     t,
		version: v,
		words:   []uint32{uint32(HeaderToken(t, v))},
	}
}

// Emit appends an instruction. When predicated, the predicate source must be
// passed right after the destination.
func (w *Writer) Emit(op Opcode, f InstFlags, params ...Param) {
	var body []uint32
	for _, p := range params {
		body = p.appendTokens(body, w.version)
	}
	tok := uint32(op) | uint32(f.Control)<<16
	if w.version.Major >= 2 {
		tok |= uint32(len(body)&0xF) << 24
	}
	if f.Predicated {
		tok |= predicatedBit
	}
	if f.Coissue {
		tok |= coissueBit
	}
	w.words = append(w.words, tok)
	w.words = append(w.words, body...)
}

// Op appends an instruction without control bits.
func (w *Writer) Op(op Opcode, params ...Param) {
	w.Emit(op, InstFlags{}, params...)
}

// Def defines float constant c#num.
func (w *Writer) Def(num int, x, y, z, v float32) {
	w.Op(OpDef, Dst(RegConst, num),
		Word(math.Float32bits(x)), Word(math.Float32bits(y)),
		Word(math.Float32bits(z)), Word(math.Float32bits(v)))
}

// DefI defines integer constant i#num.
func (w *Writer) DefI(num int, x, y, z, v int32) {
	w.Op(OpDefI, Dst(RegConstInt, num), Word(uint32(x)), Word(uint32(y)), Word(uint32(z)), Word(uint32(v)))
}

// DefB defines boolean constant b#num.
func (w *Writer) DefB(num int, b bool) {
	var word Word
	if b {
		word = 1
	}
	w.Op(OpDefB, Dst(RegConstBool, num), word)
}

// Dcl declares an input or output register with a usage.
func (w *Writer) Dcl(dst DstParam, usage Usage, index int) {
	w.Op(OpDcl, Decl{Usage: usage, UsageIndex: index}, dst)
}

// DclSampler declares sampler s#num with a texture type.
func (w *Writer) DclSampler(num int, tt TextureType) {
	w.Op(OpDcl, Decl{TextureType: tt}, Dst(RegSampler, num))
}

// Comment appends a COMMENT block carrying payload.
func (w *Writer) Comment(payload ...uint32) {
	w.words = append(w.words, uint32(OpComment)|uint32(len(payload)&0x7FFF)<<16)
	w.words = append(w.words, payload...)
}

// Raw appends tokens verbatim.
func (w *Writer) Raw(tokens ...uint32) {
	w.words = append(w.words, tokens...)
}

// Words returns the finished stream terminated by END.
func (w *Writer) Words() []uint32 {
	out := make([]uint32, len(w.words), len(w.words)+1)
	copy(out, w.words)
	return append(out, uint32(EndToken))
}

// Bytes returns the finished stream as little-endian bytes.
func (w *Writer) Bytes() []byte {
	return ToBytes(w.Words())
}
