// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/xerrors"
	"import.name/pan"

	"github.com/gogpu/nine/bytecode"
)

// Disassemble renders a token stream in D3D9 assembler syntax, one
// instruction per line. Opcodes missing from the table are printed as
// comments and skipped.
func Disassemble(tokens []uint32) (text string, err error) {
	r := bytecode.NewReader(tokens)
	defer func() {
		if err = pan.Error(recover()); err != nil {
			if xerrors.Is(err, io.ErrUnexpectedEOF) {
				err = &Error{Kind: ErrInvalidShader, Message: "unexpected end of token stream", Offset: r.Offset()}
			}
			text = ""
		}
	}()

	stage, v, perr := bytecode.ParseHeader(r.Next())
	if perr != nil {
		return "", &Error{Kind: ErrInvalidShader, Message: perr.Error(), Offset: 0}
	}
	d := &disassembler{r: r, stage: stage, v: v}
	d.line(bytecode.Profile(stage, v))
	for !r.AtEnd() {
		d.instruction()
	}
	return d.out.String(), nil
}

type disassembler struct {
	r     *bytecode.Reader
	stage bytecode.ShaderType
	v     bytecode.Version
	out   strings.Builder
}

func (d *disassembler) line(format string, args ...any) {
	fmt.Fprintf(&d.out, format, args...)
	d.out.WriteByte('\n')
}

func (d *disassembler) instruction() {
	offset := d.r.Offset()
	tok := d.r.Next()
	op := tok.Opcode()

	switch op {
	case bytecode.OpComment:
		n := tok.CommentLength()
		d.r.Skip(n)
		d.line("// comment, %d words", n)
		return
	case bytecode.OpPhase:
		d.line("phase")
		return
	}

	if d.v.Major >= 2 {
		d.r.BeginInstruction(tok.Length())
	} else {
		d.r.BeginInstruction(-1)
	}
	defer d.r.SkipToNextInstruction()

	info, known := lookupOp(op, d.stage, d.v)
	if !known {
		d.line("// unknown opcode %d at byte %d", uint16(op), offset)
		if d.v.Major < 2 {
			d.r.SkipParams()
		}
		return
	}
	if info == nil {
		pan.Panic(&Error{
			Kind:    ErrInvalidShader,
			Message: fmt.Sprintf("%s is not valid in %s", op, bytecode.Profile(d.stage, d.v)),
			Offset:  offset,
		})
	}

	var b strings.Builder
	if tok.Coissue() {
		b.WriteByte('+')
	}

	if info.kind == kindDcl {
		decl := bytecode.DecodeDecl(d.r.Next())
		dst := d.r.Dst(d.v)
		b.WriteString(d.dclName(decl, dst))
		b.WriteString(d.dstMods(dst))
		b.WriteByte(' ')
		b.WriteString(d.dst(dst))
		d.line("%s", b.String())
		return
	}

	var operands []string
	var pred string
	b.WriteString(d.mnemonic(tok, info))
	for i := 0; i < info.ndst; i++ {
		dst := d.r.Dst(d.v)
		operands = append(operands, d.dst(dst))
		b.WriteString(d.dstMods(dst))
	}
	if tok.Predicated() {
		pred = "(" + d.src(d.r.Src(d.v)) + ") "
	}
	for i := 0; i < info.nsrc; i++ {
		operands = append(operands, d.src(d.r.Src(d.v)))
	}

	switch info.kind {
	case kindDef:
		for _, x := range d.r.Words(4) {
			operands = append(operands, fmt.Sprint(math.Float32frombits(x)))
		}
	case kindDefI:
		for _, x := range d.r.Words(4) {
			operands = append(operands, fmt.Sprint(int32(x)))
		}
	case kindDefB:
		operands = append(operands, fmt.Sprint(d.r.Words(1)[0] != 0))
	}

	if len(operands) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(operands, ", "))
	}
	d.line("%s%s", pred, b.String())
}

// mnemonic returns the opcode name with its control suffix.
func (d *disassembler) mnemonic(tok bytecode.Token, info *opInfo) string {
	name := info.op.String()
	ctrl := tok.Control()
	switch info.op {
	case bytecode.OpIfc, bytecode.OpBreakc, bytecode.OpSetP:
		return name + "_" + bytecode.Comparison(ctrl&7).String()
	case bytecode.OpTex:
		switch {
		case d.stage == bytecode.Pixel && d.v.Major == 1 && d.v.Minor < 4:
			return "tex"
		case ctrl&bytecode.TexLdProject != 0:
			return "texldp"
		case ctrl&bytecode.TexLdBias != 0:
			return "texldb"
		}
		return "texld"
	case bytecode.OpTexCoord:
		if d.v == bytecode.V(1, 4) {
			return "texcrd"
		}
	}
	return name
}

func (d *disassembler) dclName(decl bytecode.Decl, dst bytecode.DstParam) string {
	switch {
	case dst.Type == bytecode.RegSampler:
		return "dcl_" + decl.TextureType.String()
	case d.stage == bytecode.Pixel && d.v.Major < 3:
		return "dcl"
	case dst.Type == bytecode.RegMiscType:
		return "dcl"
	}
	idx := ""
	if decl.UsageIndex != 0 {
		idx = fmt.Sprint(decl.UsageIndex)
	}
	return "dcl_" + decl.Usage.String() + idx
}

func (d *disassembler) dstMods(p bytecode.DstParam) string {
	var s string
	switch p.Shift {
	case 0:
	case 1, 2, 3:
		s += fmt.Sprintf("_x%d", 1<<uint(p.Shift))
	default:
		if p.Shift < 0 {
			s += fmt.Sprintf("_d%d", 1<<uint(-p.Shift))
		}
	}
	if p.Mod&bytecode.ResultSaturate != 0 {
		s += "_sat"
	}
	if p.Mod&bytecode.ResultPartialPrecision != 0 {
		s += "_pp"
	}
	if p.Mod&bytecode.ResultCentroid != 0 {
		s += "_centroid"
	}
	return s
}

// reg names a register, spelling out the special files.
func (d *disassembler) reg(typ bytecode.RegisterType, num int) string {
	switch typ {
	case bytecode.RegRastOut:
		switch num {
		case bytecode.RastOutPosition:
			return "oPos"
		case bytecode.RastOutFog:
			return "oFog"
		case bytecode.RastOutPointSize:
			return "oPts"
		}
	case bytecode.RegMiscType:
		switch num {
		case bytecode.MiscPosition:
			return "vPos"
		case bytecode.MiscFace:
			return "vFace"
		}
	case bytecode.RegDepthOut:
		return "oDepth"
	case bytecode.RegLoop:
		return "aL"
	}
	return fmt.Sprintf("%s%d", typ.Name(d.stage, d.v), num)
}

func (d *disassembler) relative(rel *bytecode.SrcParam) string {
	if rel == nil {
		return ""
	}
	name := d.reg(rel.Type, rel.Num)
	if rel.Type != bytecode.RegLoop {
		name += "." + string("xyzw"[rel.Swizzle.Component(0)])
	}
	return "[" + name + "]"
}

func (d *disassembler) dst(p bytecode.DstParam) string {
	s := d.reg(p.Type, p.Num) + d.relative(p.Rel)
	if p.Mask != bytecode.MaskAll && p.Mask != 0 {
		s += "." + p.Mask.String()
	}
	return s
}

func swizzleSuffix(sw bytecode.Swizzle) string {
	if sw == bytecode.NoSwizzle {
		return ""
	}
	c := sw.Component(0)
	if sw == bytecode.Replicate(c) {
		return "." + string("xyzw"[c])
	}
	return "." + sw.String()
}

func (d *disassembler) src(p bytecode.SrcParam) string {
	s := d.reg(p.Type, p.Num) + d.relative(p.Rel)
	sw := swizzleSuffix(p.Swizzle)
	switch p.Mod {
	case bytecode.SrcModNeg:
		return "-" + s + sw
	case bytecode.SrcModBias:
		return s + "_bias" + sw
	case bytecode.SrcModBiasNeg:
		return "-" + s + "_bias" + sw
	case bytecode.SrcModSign:
		return s + "_bx2" + sw
	case bytecode.SrcModSignNeg:
		return "-" + s + "_bx2" + sw
	case bytecode.SrcModComp:
		return "1-" + s + sw
	case bytecode.SrcModX2:
		return s + "_x2" + sw
	case bytecode.SrcModX2Neg:
		return "-" + s + "_x2" + sw
	case bytecode.SrcModDz:
		return s + "_dz" + sw
	case bytecode.SrcModDw:
		return s + "_dw" + sw
	case bytecode.SrcModAbs:
		return s + "_abs" + sw
	case bytecode.SrcModAbsNeg:
		return "-" + s + "_abs" + sw
	case bytecode.SrcModNot:
		return "!" + s + sw
	}
	return s + sw
}
