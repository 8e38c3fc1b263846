package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Instruction is the index of the offending instruction, or -1.
	Instruction int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Instruction >= 0 {
		return fmt.Sprintf("instruction %d: %s", e.Instruction, e.Message)
	}
	return e.Message
}

// Validator validates IR programs.
type Validator struct {
	program *Program
	errors  []ValidationError

	regs     map[regKey]bool
	consts   []ConstDecl
	samplers map[int]TextureTarget
}

// Validate checks the program for correctness.
// Returns validation errors if any, or nil if the program is valid.
func Validate(program *Program) ([]ValidationError, error) {
	if program == nil {
		return nil, fmt.Errorf("program is nil")
	}

	v := &Validator{
		program:  program,
		regs:     make(map[regKey]bool),
		samplers: make(map[int]TextureTarget),
	}

	v.ValidateProgram()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateProgram validates the complete program.
func (v *Validator) ValidateProgram() {
	v.validateDeclarations()
	v.validateControlFlow()
	v.validateOperands()
}

func (v *Validator) addError(inst int, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Message:     fmt.Sprintf(format, args...),
		Instruction: inst,
	})
}

// validateDeclarations checks for duplicate registers and that no two
// inputs or outputs share a semantic.
func (v *Validator) validateDeclarations() {
	inSem := make(map[Semantic]int)
	outSem := make(map[Semantic]int)

	mark := func(file File, index int) {
		key := regKey{file, index}
		if v.regs[key] {
			v.addError(-1, "%s[%d] declared more than once", file, index)
		}
		v.regs[key] = true
	}

	for _, d := range v.program.Declarations {
		switch d := d.(type) {
		case InputDecl:
			mark(FileInput, d.Index)
			if prev, ok := inSem[d.Semantic]; ok {
				v.addError(-1, "inputs %d and %d share semantic %s", prev, d.Index, d.Semantic)
			}
			inSem[d.Semantic] = d.Index
		case OutputDecl:
			mark(FileOutput, d.Index)
			if prev, ok := outSem[d.Semantic]; ok {
				v.addError(-1, "outputs %d and %d share semantic %s", prev, d.Index, d.Semantic)
			}
			outSem[d.Semantic] = d.Index
		case TempDecl:
			mark(FileTemp, d.Index)
		case AddressDecl:
			mark(FileAddress, d.Index)
		case PredicateDecl:
			mark(FilePredicate, d.Index)
		case ConstDecl:
			for _, c := range v.consts {
				if d.First <= c.Last && c.First <= d.Last {
					v.addError(-1, "constant ranges %d..%d and %d..%d overlap", c.First, c.Last, d.First, d.Last)
				}
			}
			v.consts = append(v.consts, d)
		case SamplerDecl:
			mark(FileSampler, d.Index)
			if d.Target == TargetUnknown {
				v.addError(-1, "sampler %d has no target", d.Index)
			}
			v.samplers[d.Index] = d.Target
		case SystemValueDecl:
			mark(FileSystemValue, d.Index)
		default:
			v.addError(-1, "unknown declaration %T", d)
		}
	}
}

// validateControlFlow checks nesting and jump targets.
func (v *Validator) validateControlFlow() {
	insts := v.program.Instructions
	if len(insts) == 0 || insts[len(insts)-1].Op != OpEND {
		v.addError(-1, "program does not end with END")
	}

	type frame struct {
		op  Opcode
		pos int
	}
	var stack []frame
	loops := 0

	target := func(i int, inst Instruction, want ...Opcode) {
		if inst.Label < 0 || inst.Label >= len(insts) {
			v.addError(i, "%s target %d out of range", inst.Op, inst.Label)
			return
		}
		if len(want) == 0 {
			return
		}
		got := insts[inst.Label].Op
		for _, op := range want {
			if got == op {
				return
			}
		}
		v.addError(i, "%s targets %s at %d", inst.Op, got, inst.Label)
	}

	for i, inst := range insts {
		if inst.Op >= opCount {
			v.addError(i, "unknown opcode %d", inst.Op)
			continue
		}
		if len(inst.Dst) != inst.Op.NumDst() || len(inst.Src) != inst.Op.NumSrc() {
			v.addError(i, "%s has %d dst and %d src", inst.Op, len(inst.Dst), len(inst.Src))
		}

		switch inst.Op {
		case OpIF, OpUIF:
			target(i, inst, OpELSE, OpENDIF)
			stack = append(stack, frame{inst.Op, i})
		case OpELSE:
			target(i, inst, OpENDIF)
			if len(stack) == 0 || (stack[len(stack)-1].op != OpIF && stack[len(stack)-1].op != OpUIF) {
				v.addError(i, "ELSE without IF")
				continue
			}
			stack[len(stack)-1].op = OpELSE
		case OpENDIF:
			if len(stack) == 0 || stack[len(stack)-1].op == OpBGNLOOP {
				v.addError(i, "ENDIF without IF")
				continue
			}
			stack = stack[:len(stack)-1]
		case OpBGNLOOP:
			target(i, inst, OpENDLOOP)
			stack = append(stack, frame{inst.Op, i})
			loops++
		case OpENDLOOP:
			if len(stack) == 0 || stack[len(stack)-1].op != OpBGNLOOP {
				v.addError(i, "ENDLOOP without BGNLOOP")
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			loops--
			if inst.Label != top.pos {
				v.addError(i, "ENDLOOP targets %d, loop begins at %d", inst.Label, top.pos)
			}
			if insts[top.pos].Label != i {
				v.addError(top.pos, "BGNLOOP targets %d, loop ends at %d", insts[top.pos].Label, i)
			}
		case OpBRK, OpBREAKC:
			if loops == 0 {
				v.addError(i, "%s outside of a loop", inst.Op)
			}
		case OpCAL:
			target(i, inst)
		}
	}

	for _, f := range stack {
		v.addError(f.pos, "%s is never closed", f.op)
	}
}

// validateOperands checks that every register operand is declared.
func (v *Validator) validateOperands() {
	for i, inst := range v.program.Instructions {
		for _, d := range inst.Dst {
			v.checkRegister(i, d.File, d.Index, d.Indirect != nil)
			if d.WriteMask == 0 {
				v.addError(i, "empty write mask")
			}
			if d.File == FileInput || d.File == FileConst || d.File == FileImmediate || d.File == FileSystemValue {
				v.addError(i, "%s is not writable", d.File)
			}
			v.checkIndirect(i, d.Indirect)
		}
		for _, s := range inst.Src {
			v.checkRegister(i, s.File, s.Index, s.Indirect != nil)
			v.checkIndirect(i, s.Indirect)
		}
		if inst.Op.IsTexture() {
			v.checkTexture(i, inst)
		}
	}
}

func (v *Validator) checkRegister(i int, file File, index int, indirect bool) {
	switch file {
	case FileConst:
		// Indirect accesses are bounds-checked at run time.
		if indirect {
			return
		}
		for _, c := range v.consts {
			if index >= c.First && index <= c.Last {
				return
			}
		}
		v.addError(i, "CONST[%d] outside declared ranges", index)
	case FileImmediate:
		if index < 0 || index >= len(v.program.Immediates) {
			v.addError(i, "IMM[%d] out of range", index)
		}
	case FileNull:
		v.addError(i, "operand uses the null file")
	default:
		if !indirect && !v.regs[regKey{file, index}] {
			v.addError(i, "%s[%d] is not declared", file, index)
		}
	}
}

func (v *Validator) checkIndirect(i int, ind *Indirect) {
	if ind == nil {
		return
	}
	if !v.regs[regKey{ind.File, ind.Index}] {
		v.addError(i, "indirect register %s[%d] is not declared", ind.File, ind.Index)
	}
	if ind.Component < 0 || ind.Component > 3 {
		v.addError(i, "indirect component %d out of range", ind.Component)
	}
}

func (v *Validator) checkTexture(i int, inst Instruction) {
	if inst.Texture == TargetUnknown {
		v.addError(i, "%s without texture target", inst.Op)
		return
	}
	samp := inst.Src[len(inst.Src)-1]
	if samp.File != FileSampler {
		v.addError(i, "%s sampler operand is %s", inst.Op, samp.File)
		return
	}
	if declared, ok := v.samplers[samp.Index]; ok && declared != inst.Texture {
		v.addError(i, "%s uses target %s, sampler %d is %s", inst.Op, inst.Texture, samp.Index, declared)
	}
}
