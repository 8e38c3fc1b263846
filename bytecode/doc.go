// Package bytecode decodes and encodes Direct3D 9 shader token streams.
//
// A shader is a sequence of 32-bit little-endian tokens. The first token is
// the version header naming the shader type (vertex or pixel) and the shader
// model; the stream ends with the END token (0x0000FFFF).
//
// Between them, every instruction starts with an instruction token
// (bit 31 clear) followed by parameter tokens (bit 31 set):
//
//	instruction token  opcode | control<<16 | length<<24 | predicated<<28 | coissue<<30
//	destination token  register | mask<<16 | modifier<<20 | shift<<24 | type bits
//	source token       register | swizzle<<16 | modifier<<24 | type bits
//
// The instruction length field is only present in shader model 2.0 and later.
// Shader model 1.x streams must be decoded with knowledge of every opcode's
// operand layout, which lives in the d3d9 package.
//
// # Decoding
//
// The Reader is a cursor over the token slice. Decoding functions are pure
// bit-field projections:
//
//	r := bytecode.NewReader(tokens)
//	typ, version, err := bytecode.ParseHeader(r.Next())
//	for !r.AtEnd() {
//	    tok := r.Next()
//	    ...
//	}
//
// # Encoding
//
// The Writer assembles token streams, mostly for tests and tools:
//
//	w := bytecode.NewWriter(bytecode.Vertex, bytecode.V(1, 1))
//	w.Op(bytecode.OpMov, bytecode.Dst(bytecode.RegRastOut, bytecode.RastOutPosition), bytecode.Src(bytecode.RegInput, 0))
//	tokens := w.Words()
package bytecode
