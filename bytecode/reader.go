package bytecode

import (
	"io"

	"import.name/pan"
)

// Reader is a cursor over a token stream. Reading past the end panics with
// io.ErrUnexpectedEOF through pan; callers recover it with pan.Error.
type Reader struct {
	tokens []uint32
	pos    int
	end    int // recorded instruction end, or -1
}

// NewReader returns a reader positioned at the first token.
func NewReader(tokens []uint32) *Reader {
	return &Reader{tokens: tokens, end: -1}
}

// Peek returns the next token without consuming it.
func (r *Reader) Peek() Token {
	if r.pos >= len(r.tokens) {
		pan.Panic(io.ErrUnexpectedEOF)
	}
	return Token(r.tokens[r.pos])
}

// Next consumes and returns the next token.
func (r *Reader) Next() Token {
	t := r.Peek()
	r.pos++
	return t
}

// AtEnd reports whether the next token is the END sentinel.
func (r *Reader) AtEnd() bool {
	return r.Peek() == EndToken
}

// Pos returns the index of the next token.
func (r *Reader) Pos() int {
	return r.pos
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.pos * 4
}

// Skip consumes n tokens.
func (r *Reader) Skip(n int) {
	if n < 0 || r.pos+n > len(r.tokens) {
		pan.Panic(io.ErrUnexpectedEOF)
	}
	r.pos += n
}

// SkipParams consumes parameter tokens up to the next instruction token.
// Shader model 1.x streams carry no instruction length, so this is how an
// unknown instruction is stepped over.
func (r *Reader) SkipParams() {
	for r.Peek().IsParam() {
		r.pos++
	}
}

// Words consumes n raw tokens.
func (r *Reader) Words(n int) []uint32 {
	start := r.pos
	r.Skip(n)
	return r.tokens[start:r.pos]
}

// BeginInstruction records where the current instruction ends, given the
// length field of its instruction token. A negative length records nothing.
func (r *Reader) BeginInstruction(length int) {
	if length < 0 {
		r.end = -1
		return
	}
	r.end = r.pos + length
}

// SkipToNextInstruction moves the cursor to the recorded instruction end and
// returns the drift: positive when tokens were left unread, negative when the
// decoder read past the declared length.
func (r *Reader) SkipToNextInstruction() int {
	if r.end < 0 {
		return 0
	}
	drift := r.end - r.pos
	if r.end > len(r.tokens) {
		pan.Panic(io.ErrUnexpectedEOF)
	}
	r.pos = r.end
	r.end = -1
	return drift
}

// Dst reads a destination parameter including its relative sub-operand.
func (r *Reader) Dst(v Version) DstParam {
	t := r.Next()
	d := DecodeDst(t)
	if Relative(t) {
		d.Rel = r.relative(v)
	}
	return d
}

// Src reads a source parameter including its relative sub-operand.
func (r *Reader) Src(v Version) SrcParam {
	t := r.Next()
	s := DecodeSrc(t)
	if Relative(t) {
		s.Rel = r.relative(v)
	}
	return s
}

// relative reads the address operand. Shader model 1.x has no extra token
// and always addresses through a0.x.
func (r *Reader) relative(v Version) *SrcParam {
	if v.Major < 2 {
		return &SrcParam{Type: RegAddr, Num: 0, Swizzle: Replicate(0)}
	}
	rel := DecodeSrc(r.Next())
	return &rel
}
