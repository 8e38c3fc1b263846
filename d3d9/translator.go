// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"fmt"
	"io"

	"golang.org/x/xerrors"
	"import.name/pan"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/internal/log"
	"github.com/gogpu/nine/ir"
	"github.com/gogpu/nine/semantic"
)

// Nesting limits for the translator's control flow stacks.
const (
	maxNesting  = 64
	maxLabels   = 2048
	maxScratch  = 16
	depthOutput = 4
)

// regKey names a D3D9 register.
type regKey struct {
	typ bytecode.RegisterType
	num int
}

type loopFrame struct {
	begin   ir.PatchHandle
	counter ir.Dst
	step    ir.Src
	rep     bool
}

type condFrame struct {
	handle  ir.PatchHandle
	hasElse bool
}

type labelSlot struct {
	defined bool
	pos     int
	sites   []ir.PatchHandle
}

// instruction holds the decoded operands of the instruction being lowered
// and the pending destination post-processing.
type instruction struct {
	token  bytecode.Token
	info   *opInfo
	offset int

	dst  []bytecode.DstParam
	src  []bytecode.SrcParam
	decl bytecode.Decl
	pred *bytecode.SrcParam

	pending bool
	real    ir.Dst
	tmp     ir.Dst
	shift   int8
	sat     bool
}

// translator holds the state of one translation.
type translator struct {
	opts    *Options
	log     log.Logger
	r       *bytecode.Reader
	b       *ir.Builder
	stage   bytecode.ShaderType
	version bytecode.Version
	info    *Info

	inst instruction

	temps    map[regKey]ir.Dst
	inputs   map[regKey]ir.Src
	outputs  map[regKey]ir.Dst
	samplers map[int]ir.Src
	sysvals  map[int]ir.Src

	nextOutput  int
	positionOut *int
	addr        *ir.Dst
	loopAddr    *ir.Dst
	pred        *ir.Dst
	counters    []ir.Dst

	scratch     []ir.Dst
	scratchUsed int

	loops  []loopFrame
	conds  []condFrame
	labels map[int]*labelSlot
	inSub  bool

	floatDefs map[int][4]float32
	intDefs   map[int][4]int32
	boolDefs  map[int]bool

	constMax      int
	floatMax      int
	indirectConst bool
}

// Translate lowers a D3D9 token stream, starting at the version token and
// ending with END, into an IR program for the requested stage.
//
// Reportable failures are returned as *Error and match ErrInvalidCall.
// Inconsistencies inside the translator panic.
func Translate(tokens []uint32, stage bytecode.ShaderType, opts *Options) (prog *ir.Program, info *Info, err error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	t := &translator{
		opts:      opts,
		log:       opts.logger(),
		r:         bytecode.NewReader(tokens),
		b:         ir.NewBuilder(irStage(stage)),
		stage:     stage,
		info:      &Info{Stage: stage, SamplerTargets: make(map[int]ir.TextureTarget)},
		temps:     make(map[regKey]ir.Dst),
		inputs:    make(map[regKey]ir.Src),
		outputs:   make(map[regKey]ir.Dst),
		samplers:  make(map[int]ir.Src),
		sysvals:   make(map[int]ir.Src),
		labels:    make(map[int]*labelSlot),
		floatDefs: make(map[int][4]float32),
		intDefs:   make(map[int][4]int32),
		boolDefs:  make(map[int]bool),
		constMax:  -1,
		floatMax:  -1,
		inst:      instruction{offset: -1},
	}

	defer func() {
		if err = t.recoverError(recover()); err != nil {
			prog, info = nil, nil
		}
	}()

	prog = t.run()
	return prog, t.info, nil
}

// recoverError turns a pan panic into a reportable error. Other panics
// propagate.
func (t *translator) recoverError(x any) error {
	err := pan.Error(x)
	if err == nil {
		return nil
	}
	if xerrors.Is(err, io.ErrUnexpectedEOF) || xerrors.Is(err, io.EOF) {
		return &Error{Kind: ErrInvalidShader, Message: "unexpected end of token stream", Offset: t.r.Offset()}
	}
	return err
}

func irStage(stage bytecode.ShaderType) ir.Stage {
	if stage == bytecode.Pixel {
		return ir.StageFragment
	}
	return ir.StageVertex
}

// fail raises a reportable error located at the current instruction.
func (t *translator) fail(kind ErrorKind, format string, args ...any) {
	pan.Panic(&Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: t.inst.offset})
}

func supportedVersion(stage bytecode.ShaderType, v bytecode.Version) bool {
	switch v.Major {
	case 1:
		if stage == bytecode.Vertex {
			return v.Minor <= 1
		}
		return v.Minor <= 4
	case 2:
		return v.Minor == 0 || v.Minor == 1 || v.Minor == 0xFF
	case 3:
		return v.Minor == 0
	}
	return false
}

func (t *translator) run() *ir.Program {
	stage, v, err := bytecode.ParseHeader(t.r.Next())
	if err != nil {
		t.inst.offset = 0
		t.fail(ErrInvalidShader, "%v", err)
	}
	if stage != t.stage {
		t.fail(ErrStageMismatch, "header declares a %s shader, expected %s", stage, t.stage)
	}
	if !supportedVersion(stage, v) {
		t.fail(ErrInvalidShader, "unsupported version %s", bytecode.Profile(stage, v))
	}
	t.version = v
	t.info.Version = v
	t.log.Debug(log.Translate, "translating shader", "profile", bytecode.Profile(stage, v))

	for !t.r.AtEnd() {
		t.step()
	}
	t.r.Next()
	t.info.ByteLength = t.r.Offset()

	return t.finish()
}

// step lowers one instruction.
func (t *translator) step() {
	offset := t.r.Offset()
	tok := t.r.Next()
	op := tok.Opcode()
	t.inst = instruction{token: tok, offset: offset}

	switch op {
	case bytecode.OpComment:
		t.r.Skip(tok.CommentLength())
		return
	case bytecode.OpPhase:
		if t.stage != bytecode.Pixel || t.version != bytecode.V(1, 4) {
			t.fail(ErrInvalidShader, "phase is only valid in ps_1_4")
		}
		return
	}

	if t.version.Major >= 2 {
		t.r.BeginInstruction(tok.Length())
	} else {
		t.r.BeginInstruction(-1)
	}

	info, known := lookupOp(op, t.stage, t.version)
	if !known {
		t.log.Warn(log.Translate, "skipping unknown opcode", "op", op, "offset", offset)
		if t.version.Major >= 2 {
			t.r.SkipToNextInstruction()
		} else {
			t.r.SkipParams()
		}
		return
	}
	if info == nil {
		t.fail(ErrInvalidShader, "%s is not valid in %s", op, bytecode.Profile(t.stage, t.version))
	}
	t.inst.info = info
	t.decode()

	t.log.Trace(log.Translate, "lowering", "op", op, "offset", offset)
	t.lower()
	t.finishDst()

	if drift := t.r.SkipToNextInstruction(); drift != 0 {
		t.log.Warn(log.Translate, "instruction length mismatch", "op", op, "offset", offset, "drift", drift)
	}
	t.scratchUsed = 0
}

// decode reads the operands of the current instruction. The predicate
// token follows the destination.
func (t *translator) decode() {
	info := t.inst.info
	if info.kind == kindDcl {
		t.inst.decl = bytecode.DecodeDecl(t.r.Next())
		t.inst.dst = []bytecode.DstParam{t.r.Dst(t.version)}
		return
	}
	for i := 0; i < info.ndst; i++ {
		t.inst.dst = append(t.inst.dst, t.r.Dst(t.version))
	}
	if t.inst.token.Predicated() {
		p := t.r.Src(t.version)
		if p.Type != bytecode.RegPredicate {
			t.fail(ErrInvalidShader, "predicate operand is %s", p.Type.Name(t.stage, t.version))
		}
		t.inst.pred = &p
	}
	for i := 0; i < info.nsrc; i++ {
		t.inst.src = append(t.inst.src, t.r.Src(t.version))
	}
}

// lower dispatches on the handler kind of the current instruction.
func (t *translator) lower() {
	switch t.inst.info.kind {
	case kindGeneric:
		t.emitGeneric()
	case kindSub, kindScalarAbs, kindAbs, kindPow, kindMatrix, kindSinCos, kindNrm, kindSgn, kindDp2Add, kindCmp, kindCnd, kindMova, kindSetp:
		t.emitArith()
	case kindDcl:
		t.emitDcl()
	case kindDef, kindDefI, kindDefB:
		t.emitDef()
	case kindLoop, kindRep, kindEndLoop, kindBreak, kindBreakc, kindBreakp, kindIf, kindIfc, kindElse, kindEndIf, kindCall, kindCallNz, kindLabel, kindRet:
		t.emitFlow()
	case kindNotImplemented:
		t.log.Warn(log.Translate, "unsupported legacy opcode", "op", t.inst.info.op)
		t.fail(ErrNotImplemented, "%s is not implemented", t.inst.info.op)
	default:
		t.emitTexture()
	}
}

// finish closes the program and fills in the remaining metadata.
func (t *translator) finish() *ir.Program {
	t.inst = instruction{offset: -1}
	if len(t.loops) != 0 || len(t.conds) != 0 {
		panic(fmt.Sprintf("d3d9: %d loops and %d conditionals open at END", len(t.loops), len(t.conds)))
	}
	for n, slot := range t.labels {
		if !slot.defined {
			t.fail(ErrInvalidShader, "label l%d is called but never defined", n)
		}
	}

	if t.stage == bytecode.Pixel && t.version.Major == 1 {
		t.b.Op(ir.OpMOV, t.colorOutput(0), t.temp(regKey{bytecode.RegTemp, 0}).Src())
	}

	last := t.constMax
	if t.indirectConst {
		last = max(last, IntConstBase-1)
		t.info.IndirectConstAccess = true
		t.info.LocalConsts = newLocalConsts(t.floatDefs)
	}
	if last >= 0 {
		t.b.DeclareConstRange(0, last)
	}
	t.info.ConstFloatUsed = t.floatMax + 1

	prog := t.b.Finish()
	t.info.NumTemps = prog.NumTemps()
	t.log.Debug(log.Translate, "translated shader",
		"instructions", len(prog.Instructions),
		"temps", t.info.NumTemps,
		"immediates", len(prog.Immediates))
	return prog
}

// inputUsage records the declared usage of vertex input v#.
func (t *translator) inputUsage(n int, u semantic.DeclUsage) {
	for len(t.info.InputMap) <= n {
		t.info.InputMap = append(t.info.InputMap, semantic.None)
	}
	t.info.InputMap[n] = u
}
