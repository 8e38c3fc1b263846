package ir

import (
	"fmt"
	"math"
)

// PatchHandle refers to an emitted instruction whose Label is filled in later.
type PatchHandle int

type regKey struct {
	file  File
	index int
}

// Builder accumulates a Program. It is not safe for concurrent use.
type Builder struct {
	stage    Stage
	decls    []Declaration
	declared map[regKey]bool
	imms     *ImmediateRegistry
	insts    []Instruction
	pending  map[PatchHandle]bool
	numTemps int
	finished bool
}

// NewBuilder starts an empty program for the given stage.
func NewBuilder(stage Stage) *Builder {
	return &Builder{
		stage:    stage,
		declared: make(map[regKey]bool),
		imms:     NewImmediateRegistry(),
		pending:  make(map[PatchHandle]bool),
	}
}

// Stage returns the stage the program is built for.
func (b *Builder) Stage() Stage {
	return b.stage
}

func (b *Builder) declare(file File, index int, d Declaration) {
	key := regKey{file, index}
	if b.declared[key] {
		panic(fmt.Sprintf("ir: %s[%d] declared twice", file, index))
	}
	b.declared[key] = true
	b.decls = append(b.decls, d)
}

// Declared reports whether File[index] has been declared.
func (b *Builder) Declared(file File, index int) bool {
	return b.declared[regKey{file, index}]
}

// DeclareInput declares IN[index].
func (b *Builder) DeclareInput(index int, sem Semantic, interp Interpolation, centroid bool) Src {
	b.declare(FileInput, index, InputDecl{Index: index, Semantic: sem, Interp: interp, Centroid: centroid})
	return Reg(FileInput, index)
}

// DeclareOutput declares OUT[index].
func (b *Builder) DeclareOutput(index int, sem Semantic) Dst {
	b.declare(FileOutput, index, OutputDecl{Index: index, Semantic: sem})
	return RegDst(FileOutput, index)
}

// DeclareTemp allocates and declares the next temporary.
func (b *Builder) DeclareTemp() Dst {
	index := b.numTemps
	b.numTemps++
	b.declare(FileTemp, index, TempDecl{Index: index})
	return RegDst(FileTemp, index)
}

// DeclareAddress declares ADDR[index].
func (b *Builder) DeclareAddress(index int) Dst {
	b.declare(FileAddress, index, AddressDecl{Index: index})
	return RegDst(FileAddress, index)
}

// DeclarePredicate declares PRED[index].
func (b *Builder) DeclarePredicate(index int) Dst {
	b.declare(FilePredicate, index, PredicateDecl{Index: index})
	return RegDst(FilePredicate, index)
}

// DeclareConstRange declares CONST[first..last].
func (b *Builder) DeclareConstRange(first, last int) {
	if last < first {
		panic(fmt.Sprintf("ir: empty constant range %d..%d", first, last))
	}
	b.declare(FileConst, first, ConstDecl{First: first, Last: last})
}

// DeclareSampler declares SAMP[index].
func (b *Builder) DeclareSampler(index int, target TextureTarget) Src {
	b.declare(FileSampler, index, SamplerDecl{Index: index, Target: target})
	return Reg(FileSampler, index)
}

// DeclareSystemValue declares SV[index].
func (b *Builder) DeclareSystemValue(index int, sem Semantic) Src {
	b.declare(FileSystemValue, index, SystemValueDecl{Index: index, Semantic: sem})
	return Reg(FileSystemValue, index)
}

// Immediate returns a source reading imm from the immediate file.
func (b *Builder) Immediate(imm Immediate) Src {
	return Reg(FileImmediate, b.imms.GetOrCreate(imm))
}

// ImmFloat returns a float immediate source.
func (b *Builder) ImmFloat(x, y, z, w float32) Src {
	return b.Immediate(FloatImmediate(x, y, z, w))
}

// ImmScalar returns a float immediate with all components equal to f.
func (b *Builder) ImmScalar(f float32) Src {
	return b.ImmFloat(f, f, f, f)
}

// ImmUint returns an unsigned integer immediate source.
func (b *Builder) ImmUint(x, y, z, w uint32) Src {
	return b.Immediate(Immediate{Type: ImmUint32, Value: [4]uint32{x, y, z, w}})
}

// ImmInt returns a signed integer immediate source.
func (b *Builder) ImmInt(x, y, z, w int32) Src {
	return b.Immediate(Immediate{Type: ImmInt32, Value: [4]uint32{uint32(x), uint32(y), uint32(z), uint32(w)}})
}

// FloatMax is the largest finite float32, used to clamp infinities.
const FloatMax = math.MaxFloat32

// Position returns the index the next instruction will get.
func (b *Builder) Position() int {
	return len(b.insts)
}

// Emit appends inst and returns its index. Operand counts must match the
// opcode.
func (b *Builder) Emit(inst Instruction) int {
	if b.finished {
		panic("ir: emit after Finish")
	}
	if len(inst.Dst) != inst.Op.NumDst() || len(inst.Src) != inst.Op.NumSrc() {
		panic(fmt.Sprintf("ir: %s takes %d dst and %d src, got %d and %d",
			inst.Op, inst.Op.NumDst(), inst.Op.NumSrc(), len(inst.Dst), len(inst.Src)))
	}
	if !inst.Op.HasLabel() {
		inst.Label = NoLabel
	}
	b.insts = append(b.insts, inst)
	return len(b.insts) - 1
}

// Op emits an instruction with one destination.
func (b *Builder) Op(op Opcode, dst Dst, src ...Src) int {
	return b.Emit(Instruction{Op: op, Dst: []Dst{dst}, Src: src, Label: NoLabel})
}

// Op0 emits an instruction without destination.
func (b *Builder) Op0(op Opcode, src ...Src) int {
	return b.Emit(Instruction{Op: op, Src: src, Label: NoLabel})
}

// Tex emits a texture instruction; the sampler is the last source.
func (b *Builder) Tex(op Opcode, target TextureTarget, dst Dst, src ...Src) int {
	if !op.IsTexture() {
		panic(fmt.Sprintf("ir: %s is not a texture opcode", op))
	}
	return b.Emit(Instruction{Op: op, Dst: []Dst{dst}, Src: src, Label: NoLabel, Texture: target})
}

// EmitPatchable emits a jump whose target is supplied later with Patch.
func (b *Builder) EmitPatchable(op Opcode, src ...Src) PatchHandle {
	if !op.HasLabel() {
		panic(fmt.Sprintf("ir: %s has no label", op))
	}
	h := PatchHandle(b.Emit(Instruction{Op: op, Src: src, Label: NoLabel}))
	b.pending[h] = true
	return h
}

// EmitJump emits a jump to an already known target.
func (b *Builder) EmitJump(op Opcode, target int, src ...Src) int {
	h := b.EmitPatchable(op, src...)
	b.Patch(h, target)
	return int(h)
}

// Patch sets the target of a patchable jump. The target may be the
// position of an instruction not yet emitted.
func (b *Builder) Patch(h PatchHandle, target int) {
	if int(h) < 0 || int(h) >= len(b.insts) || !b.insts[h].Op.HasLabel() {
		panic(fmt.Sprintf("ir: invalid patch handle %d", h))
	}
	if target < 0 || target > len(b.insts) {
		panic(fmt.Sprintf("ir: patch target %d out of range", target))
	}
	b.insts[h].Label = target
	delete(b.pending, h)
}

// Finish appends END and returns the program. Unpatched labels are a
// programming error.
func (b *Builder) Finish() *Program {
	if len(b.pending) != 0 {
		panic(fmt.Sprintf("ir: %d unpatched labels", len(b.pending)))
	}
	b.Op0(OpEND)
	b.finished = true
	return &Program{
		Stage:        b.stage,
		Declarations: b.decls,
		Immediates:   b.imms.Immediates(),
		Instructions: b.insts,
	}
}
