// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
)

// handlerKind selects how an opcode is lowered.
type handlerKind uint8

const (
	kindGeneric handlerKind = iota
	kindSub
	kindScalarAbs
	kindAbs
	kindPow
	kindMatrix
	kindSinCos
	kindNrm
	kindSgn
	kindDp2Add
	kindCmp
	kindCnd
	kindMova
	kindSetp

	kindDcl
	kindDef
	kindDefI
	kindDefB

	kindLoop
	kindRep
	kindEndLoop
	kindBreak
	kindBreakc
	kindBreakp
	kindIf
	kindIfc
	kindElse
	kindEndIf
	kindCall
	kindCallNz
	kindLabel
	kindRet

	kindTexLd
	kindTexLdd
	kindTexLdl
	kindTex14
	kindTex1x
	kindTexCoord1x
	kindTexCrd
	kindTexKill
	kindTexReg2
	kindTexPad
	kindTexM3x2Tex
	kindTexM3x3Tex
	kindTexM3x3
	kindTexDp3
	kindTexDp3Tex

	kindNotImplemented
)

// verRange is an inclusive version range encoded as major<<8|minor.
// The zero range admits nothing.
type verRange struct {
	lo, hi uint16
}

func (r verRange) contains(v bytecode.Version) bool {
	x := uint16(v.Major)<<8 | uint16(v.Minor)
	return r.lo != 0 && r.lo <= x && x <= r.hi
}

var (
	none   = verRange{}
	all    = verRange{0x100, 0x300}
	sm2    = verRange{0x200, 0x300}
	sm2x   = verRange{0x201, 0x300}
	sm3    = verRange{0x300, 0x300}
	ps1    = verRange{0x100, 0x104}
	ps1x   = verRange{0x100, 0x103}
	ps12   = verRange{0x102, 0x103}
	ps13   = verRange{0x103, 0x103}
	ps14   = verRange{0x104, 0x104}
	ps12up = verRange{0x102, 0x300}
)

// opInfo is one row of the opcode table. An opcode may have several rows
// that differ by version range.
type opInfo struct {
	op     bytecode.Opcode
	vs, ps verRange
	ndst   int
	nsrc   int
	irOp   ir.Opcode
	kind   handlerKind
}

func (o *opInfo) admits(stage bytecode.ShaderType, v bytecode.Version) bool {
	if stage == bytecode.Vertex {
		return o.vs.contains(v)
	}
	return o.ps.contains(v)
}

var opTable = []opInfo{
	{bytecode.OpNop, all, all, 0, 0, ir.OpNOP, kindGeneric},
	{bytecode.OpMov, all, all, 1, 1, ir.OpMOV, kindGeneric},
	{bytecode.OpAdd, all, all, 1, 2, ir.OpADD, kindGeneric},
	{bytecode.OpSub, all, all, 1, 2, ir.OpADD, kindSub},
	{bytecode.OpMad, all, all, 1, 3, ir.OpMAD, kindGeneric},
	{bytecode.OpMul, all, all, 1, 2, ir.OpMUL, kindGeneric},
	{bytecode.OpRcp, all, sm2, 1, 1, ir.OpRCP, kindGeneric},
	{bytecode.OpRsq, all, sm2, 1, 1, ir.OpRSQ, kindScalarAbs},
	{bytecode.OpDp3, all, all, 1, 2, ir.OpDP3, kindGeneric},
	{bytecode.OpDp4, all, ps12up, 1, 2, ir.OpDP4, kindGeneric},
	{bytecode.OpMin, all, sm2, 1, 2, ir.OpMIN, kindGeneric},
	{bytecode.OpMax, all, sm2, 1, 2, ir.OpMAX, kindGeneric},
	{bytecode.OpSlt, all, none, 1, 2, ir.OpSLT, kindGeneric},
	{bytecode.OpSge, all, none, 1, 2, ir.OpSGE, kindGeneric},
	{bytecode.OpExp, all, sm2, 1, 1, ir.OpEX2, kindGeneric},
	{bytecode.OpLog, all, sm2, 1, 1, ir.OpLG2, kindScalarAbs},
	{bytecode.OpLit, all, none, 1, 1, ir.OpLIT, kindGeneric},
	{bytecode.OpDst, all, none, 1, 2, ir.OpDST, kindGeneric},
	{bytecode.OpLrp, sm2, all, 1, 3, ir.OpLRP, kindGeneric},
	{bytecode.OpFrc, all, sm2, 1, 1, ir.OpFRC, kindGeneric},
	{bytecode.OpM4x4, all, sm2, 1, 2, ir.OpDP4, kindMatrix},
	{bytecode.OpM4x3, all, sm2, 1, 2, ir.OpDP4, kindMatrix},
	{bytecode.OpM3x4, all, sm2, 1, 2, ir.OpDP3, kindMatrix},
	{bytecode.OpM3x3, all, sm2, 1, 2, ir.OpDP3, kindMatrix},
	{bytecode.OpM3x2, all, sm2, 1, 2, ir.OpDP3, kindMatrix},
	{bytecode.OpCall, sm2, sm2x, 0, 1, ir.OpCAL, kindCall},
	{bytecode.OpCallNz, sm2, sm2x, 0, 2, ir.OpCAL, kindCallNz},
	{bytecode.OpLoop, sm2, sm3, 0, 2, ir.OpBGNLOOP, kindLoop},
	{bytecode.OpRet, sm2, sm2x, 0, 0, ir.OpRET, kindRet},
	{bytecode.OpEndLoop, sm2, sm3, 0, 0, ir.OpENDLOOP, kindEndLoop},
	{bytecode.OpLabel, sm2, sm2x, 0, 1, ir.OpNOP, kindLabel},
	{bytecode.OpDcl, all, sm2, 0, 0, ir.OpNOP, kindDcl},
	{bytecode.OpPow, sm2, sm2, 1, 2, ir.OpPOW, kindPow},
	{bytecode.OpCrs, sm2, sm2, 1, 2, ir.OpXPD, kindGeneric},
	{bytecode.OpSgn, sm2, none, 1, 3, ir.OpSLT, kindSgn},
	{bytecode.OpAbs, sm2, sm2, 1, 1, ir.OpMOV, kindAbs},
	{bytecode.OpNrm, sm2, sm2, 1, 1, ir.OpMUL, kindNrm},
	{bytecode.OpSinCos, verRange{0x200, 0x2FF}, verRange{0x200, 0x2FF}, 1, 3, ir.OpSIN, kindSinCos},
	{bytecode.OpSinCos, sm3, sm3, 1, 1, ir.OpSIN, kindSinCos},
	{bytecode.OpRep, sm2, sm2x, 0, 1, ir.OpBGNLOOP, kindRep},
	{bytecode.OpEndRep, sm2, sm2x, 0, 0, ir.OpENDLOOP, kindEndLoop},
	{bytecode.OpIf, sm2, sm2x, 0, 1, ir.OpIF, kindIf},
	{bytecode.OpIfc, sm2x, sm2x, 0, 2, ir.OpIF, kindIfc},
	{bytecode.OpElse, sm2, sm2x, 0, 0, ir.OpELSE, kindElse},
	{bytecode.OpEndIf, sm2, sm2x, 0, 0, ir.OpENDIF, kindEndIf},
	{bytecode.OpBreak, sm2x, sm2x, 0, 0, ir.OpBRK, kindBreak},
	{bytecode.OpBreakc, sm2x, sm2x, 0, 2, ir.OpBREAKC, kindBreakc},
	{bytecode.OpMova, sm2, none, 1, 1, ir.OpARR, kindMova},
	{bytecode.OpDefB, sm2, sm2x, 1, 0, ir.OpNOP, kindDefB},
	{bytecode.OpDefI, sm2, sm2x, 1, 0, ir.OpNOP, kindDefI},
	{bytecode.OpTexCoord, none, ps1x, 1, 0, ir.OpMOV, kindTexCoord1x},
	{bytecode.OpTexCoord, none, ps14, 1, 1, ir.OpMOV, kindTexCrd},
	{bytecode.OpTexKill, none, all, 1, 0, ir.OpKILLIF, kindTexKill},
	{bytecode.OpTex, none, ps1x, 1, 0, ir.OpTEX, kindTex1x},
	{bytecode.OpTex, none, ps14, 1, 1, ir.OpTEX, kindTex14},
	{bytecode.OpTex, none, sm2, 1, 2, ir.OpTEX, kindTexLd},
	{bytecode.OpTexBem, none, ps1x, 1, 1, ir.OpNOP, kindNotImplemented},
	{bytecode.OpTexBemL, none, ps1x, 1, 1, ir.OpNOP, kindNotImplemented},
	{bytecode.OpTexReg2AR, none, ps1x, 1, 1, ir.OpTEX, kindTexReg2},
	{bytecode.OpTexReg2GB, none, ps1x, 1, 1, ir.OpTEX, kindTexReg2},
	{bytecode.OpTexM3x2Pad, none, ps1x, 1, 1, ir.OpNOP, kindTexPad},
	{bytecode.OpTexM3x2Tex, none, ps1x, 1, 1, ir.OpTEX, kindTexM3x2Tex},
	{bytecode.OpTexM3x3Pad, none, ps1x, 1, 1, ir.OpNOP, kindTexPad},
	{bytecode.OpTexM3x3Tex, none, ps1x, 1, 1, ir.OpTEX, kindTexM3x3Tex},
	{bytecode.OpTexM3x3Spec, none, ps1x, 1, 2, ir.OpNOP, kindNotImplemented},
	{bytecode.OpTexM3x3VSpec, none, ps1x, 1, 1, ir.OpNOP, kindNotImplemented},
	{bytecode.OpExpP, verRange{0x100, 0x1FF}, none, 1, 1, ir.OpEXP, kindGeneric},
	{bytecode.OpExpP, sm2, sm2, 1, 1, ir.OpEX2, kindGeneric},
	{bytecode.OpLogP, all, sm2, 1, 1, ir.OpLG2, kindScalarAbs},
	{bytecode.OpCnd, none, ps1, 1, 3, ir.OpCMP, kindCnd},
	{bytecode.OpDef, all, all, 1, 0, ir.OpNOP, kindDef},
	{bytecode.OpTexReg2RGB, none, ps12, 1, 1, ir.OpTEX, kindTexReg2},
	{bytecode.OpTexDp3Tex, none, ps12, 1, 1, ir.OpTEX, kindTexDp3Tex},
	{bytecode.OpTexM3x2Depth, none, ps13, 1, 1, ir.OpNOP, kindNotImplemented},
	{bytecode.OpTexDp3, none, ps12, 1, 1, ir.OpDP3, kindTexDp3},
	{bytecode.OpTexM3x3, none, ps12, 1, 1, ir.OpDP3, kindTexM3x3},
	{bytecode.OpTexDepth, none, ps14, 1, 0, ir.OpNOP, kindNotImplemented},
	{bytecode.OpCmp, none, ps12up, 1, 3, ir.OpCMP, kindCmp},
	{bytecode.OpBem, none, ps14, 1, 2, ir.OpNOP, kindNotImplemented},
	{bytecode.OpDp2Add, none, sm2, 1, 3, ir.OpDP2, kindDp2Add},
	{bytecode.OpDsx, none, sm2x, 1, 1, ir.OpDDX, kindGeneric},
	{bytecode.OpDsy, none, sm2x, 1, 1, ir.OpDDY, kindGeneric},
	{bytecode.OpTexLdd, none, sm2x, 1, 4, ir.OpTXD, kindTexLdd},
	{bytecode.OpSetP, sm2x, sm2x, 1, 2, ir.OpNOP, kindSetp},
	{bytecode.OpTexLdl, sm3, sm3, 1, 2, ir.OpTXL, kindTexLdl},
	{bytecode.OpBreakP, sm2x, sm2x, 0, 1, ir.OpBREAKC, kindBreakp},
}

// opIndex groups the table rows by opcode.
var opIndex = func() map[bytecode.Opcode][]*opInfo {
	m := make(map[bytecode.Opcode][]*opInfo)
	for i := range opTable {
		e := &opTable[i]
		m[e.op] = append(m[e.op], e)
	}
	return m
}()

// lookupOp returns the row admitting op for the given stage and version.
// known reports whether op appears in the table at all.
func lookupOp(op bytecode.Opcode, stage bytecode.ShaderType, v bytecode.Version) (info *opInfo, known bool) {
	rows, ok := opIndex[op]
	if !ok {
		return nil, false
	}
	for _, r := range rows {
		if r.admits(stage, v) {
			return r, true
		}
	}
	return nil, true
}
