package ir

import (
	"math"

	"github.com/pkg/errors"
)

// DefaultMaxSteps bounds Machine.Run when MaxSteps is zero.
const DefaultMaxSteps = 1 << 20

// SampleRequest describes one texture fetch made by a Machine.
type SampleRequest struct {
	Op      Opcode
	Target  TextureTarget
	Sampler int
	// Coord is the coordinate after projection; TXB and TXL keep the bias
	// or level in w.
	Coord [4]float32
	DDX   [4]float32
	DDY   [4]float32
}

// Machine is a reference interpreter for programs. Registers hold raw
// 32-bit patterns; float opcodes reinterpret them. Unwritten registers read
// as zero. Derivatives are always zero.
type Machine struct {
	Inputs       map[int][4]float32
	SystemValues map[int][4]float32
	Consts       map[int][4]float32
	// Sample services texture opcodes; nil samples return zero.
	Sample   func(SampleRequest) [4]float32
	MaxSteps int

	// Results of the last Run.
	Outputs map[int][4]float32
	Killed  bool
	Steps   int

	program *Program
	regs    map[regKey][4]uint32
}

// NewMachine returns a machine for p with empty inputs.
func NewMachine(p *Program) *Machine {
	return &Machine{
		Inputs:       make(map[int][4]float32),
		SystemValues: make(map[int][4]float32),
		Consts:       make(map[int][4]float32),
		program:      p,
	}
}

// Temp returns the float value of TEMP[i] after a run.
func (m *Machine) Temp(i int) [4]float32 {
	return toFloats(m.regs[regKey{FileTemp, i}])
}

// Bits returns the raw value of a register after a run.
func (m *Machine) Bits(file File, i int) [4]uint32 {
	return m.regs[regKey{file, i}]
}

type callFrame struct {
	ret   int
	loops int
}

// Run executes the program from the first instruction until END, a
// top-level RET, or a kill.
func (m *Machine) Run() error {
	m.regs = make(map[regKey][4]uint32)
	m.Outputs = make(map[int][4]float32)
	m.Killed = false
	m.Steps = 0

	limit := m.MaxSteps
	if limit == 0 {
		limit = DefaultMaxSteps
	}

	insts := m.program.Instructions
	var calls []callFrame
	var loops []int

	err := func() error {
		pc := 0
		for {
			if pc < 0 || pc >= len(insts) {
				return errors.Errorf("ir: program counter %d out of range", pc)
			}
			if m.Steps >= limit {
				return errors.Errorf("ir: step limit %d exceeded", limit)
			}
			m.Steps++

			inst := insts[pc]
			switch inst.Op {
			case OpEND:
				return nil

			case OpRET:
				if len(calls) == 0 {
					return nil
				}
				f := calls[len(calls)-1]
				calls = calls[:len(calls)-1]
				loops = loops[:f.loops]
				pc = f.ret

			case OpCAL:
				if len(calls) >= 64 {
					return errors.Errorf("ir: instruction %d: call stack overflow", pc)
				}
				calls = append(calls, callFrame{ret: pc + 1, loops: len(loops)})
				pc = inst.Label

			case OpIF, OpUIF:
				v, err := m.fetch(inst.Src[0], inst.Op)
				if err != nil {
					return errors.Wrapf(err, "ir: instruction %d", pc)
				}
				taken := v[0] != 0
				if inst.Op == OpIF {
					taken = math.Float32frombits(v[0]) != 0
				}
				if taken {
					pc++
				} else {
					pc = inst.Label + 1
				}

			case OpELSE:
				pc = inst.Label + 1

			case OpBGNLOOP:
				loops = append(loops, pc)
				pc++

			case OpENDLOOP:
				pc = inst.Label + 1

			case OpBRK, OpBREAKC:
				if inst.Op == OpBREAKC {
					v, err := m.fetch(inst.Src[0], inst.Op)
					if err != nil {
						return errors.Wrapf(err, "ir: instruction %d", pc)
					}
					if v[0] == 0 {
						pc++
						continue
					}
				}
				if len(loops) == 0 {
					return errors.Errorf("ir: instruction %d: %s outside loop", pc, inst.Op)
				}
				begin := loops[len(loops)-1]
				loops = loops[:len(loops)-1]
				pc = insts[begin].Label + 1

			case OpKILLIF:
				v, err := m.fetch(inst.Src[0], inst.Op)
				if err != nil {
					return errors.Wrapf(err, "ir: instruction %d", pc)
				}
				for _, c := range toFloats(v) {
					if c < 0 {
						m.Killed = true
						return nil
					}
				}
				pc++

			default:
				if err := m.exec(inst); err != nil {
					return errors.Wrapf(err, "ir: instruction %d (%s)", pc, inst.Op)
				}
				pc++
			}
		}
	}()

	for key, v := range m.regs {
		if key.file == FileOutput {
			m.Outputs[key.index] = toFloats(v)
		}
	}
	return err
}

func toFloats(v [4]uint32) [4]float32 {
	var f [4]float32
	for c := range v {
		f[c] = math.Float32frombits(v[c])
	}
	return f
}

func fromFloats(f [4]float32) [4]uint32 {
	var v [4]uint32
	for c := range f {
		v[c] = math.Float32bits(f[c])
	}
	return v
}

func (m *Machine) address(index int, ind *Indirect) (int, error) {
	if ind == nil {
		return index, nil
	}
	a := m.regs[regKey{ind.File, ind.Index}]
	index += int(int32(a[ind.Component&3]))
	if index < 0 {
		return 0, errors.Errorf("indirect index %d out of range", index)
	}
	return index, nil
}

func (m *Machine) fetch(s Src, op Opcode) ([4]uint32, error) {
	index, err := m.address(s.Index, s.Indirect)
	if err != nil {
		return [4]uint32{}, err
	}

	var raw [4]uint32
	switch s.File {
	case FileInput:
		raw = fromFloats(m.Inputs[index])
	case FileConst:
		raw = fromFloats(m.Consts[index])
	case FileSystemValue:
		raw = fromFloats(m.SystemValues[index])
	case FileImmediate:
		if index >= len(m.program.Immediates) {
			return raw, errors.Errorf("IMM[%d] out of range", index)
		}
		raw = m.program.Immediates[index].Value
	case FileSampler:
	default:
		raw = m.regs[regKey{s.File, index}]
	}

	var v [4]uint32
	for c := range v {
		v[c] = raw[s.Swizzle[c]&3]
	}

	if opInfos[op].integer {
		for c := range v {
			x := int32(v[c])
			if s.Abs && x < 0 {
				x = -x
			}
			if s.Negate {
				x = -x
			}
			v[c] = uint32(x)
		}
		return v, nil
	}
	for c := range v {
		if s.Abs {
			v[c] &^= 1 << 31
		}
		if s.Negate {
			v[c] ^= 1 << 31
		}
	}
	return v, nil
}

func (m *Machine) store(d Dst, v [4]uint32) error {
	index, err := m.address(d.Index, d.Indirect)
	if err != nil {
		return err
	}
	key := regKey{d.File, index}
	cur := m.regs[key]
	for c := 0; c < 4; c++ {
		if d.WriteMask.Has(c) {
			cur[c] = v[c]
		}
	}
	m.regs[key] = cur
	return nil
}

func splat(x float32) [4]float32 {
	return [4]float32{x, x, x, x}
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) exec(inst Instruction) error {
	var src [4][4]uint32
	var f [4][4]float32
	for i, s := range inst.Src {
		v, err := m.fetch(s, inst.Op)
		if err != nil {
			return err
		}
		src[i] = v
		f[i] = toFloats(v)
	}

	var out [4]uint32
	perComponent := func(fn func(a, b, c float32) float32) {
		var r [4]float32
		for i := range r {
			r[i] = fn(f[0][i], f[1][i], f[2][i])
		}
		out = fromFloats(r)
	}
	dot := func(n int) {
		var sum float32
		for i := 0; i < n; i++ {
			sum += f[0][i] * f[1][i]
		}
		out = fromFloats(splat(sum))
	}
	scalar := func(fn func(x float64) float64) {
		out = fromFloats(splat(float32(fn(float64(f[0][0])))))
	}

	switch inst.Op {
	case OpNOP:
		return nil
	case OpMOV:
		out = src[0]
	case OpARL:
		for i := range out {
			out[i] = uint32(int32(math.Floor(float64(f[0][i]))))
		}
	case OpARR:
		for i := range out {
			out[i] = uint32(int32(math.Round(float64(f[0][i]))))
		}
	case OpUARL:
		out = src[0]
	case OpLIT:
		x, y, w := f[0][0], f[0][1], f[0][3]
		var r [4]float32
		r[0], r[3] = 1, 1
		r[1] = max(x, 0)
		if x > 0 {
			w = min(max(w, -128), 128)
			r[2] = float32(math.Pow(float64(max(y, 0)), float64(w)))
		}
		out = fromFloats(r)
	case OpRCP:
		scalar(func(x float64) float64 { return 1 / x })
	case OpRSQ:
		scalar(func(x float64) float64 { return 1 / math.Sqrt(x) })
	case OpEXP:
		x := float64(f[0][0])
		fl := math.Floor(x)
		out = fromFloats([4]float32{float32(math.Exp2(fl)), float32(x - fl), float32(math.Exp2(x)), 1})
	case OpLOG:
		x := math.Abs(float64(f[0][0]))
		l := math.Log2(x)
		fl := math.Floor(l)
		out = fromFloats([4]float32{float32(fl), float32(x / math.Exp2(fl)), float32(l), 1})
	case OpMUL:
		perComponent(func(a, b, _ float32) float32 { return a * b })
	case OpADD:
		perComponent(func(a, b, _ float32) float32 { return a + b })
	case OpDP2:
		dot(2)
	case OpDP3:
		dot(3)
	case OpDP4:
		dot(4)
	case OpDST:
		out = fromFloats([4]float32{1, f[0][1] * f[1][1], f[0][2], f[1][3]})
	case OpMIN:
		perComponent(func(a, b, _ float32) float32 { return min(a, b) })
	case OpMAX:
		perComponent(func(a, b, _ float32) float32 { return max(a, b) })
	case OpSLT:
		perComponent(func(a, b, _ float32) float32 { return b2f(a < b) })
	case OpSGE:
		perComponent(func(a, b, _ float32) float32 { return b2f(a >= b) })
	case OpSGT:
		perComponent(func(a, b, _ float32) float32 { return b2f(a > b) })
	case OpSLE:
		perComponent(func(a, b, _ float32) float32 { return b2f(a <= b) })
	case OpSEQ:
		perComponent(func(a, b, _ float32) float32 { return b2f(a == b) })
	case OpSNE:
		perComponent(func(a, b, _ float32) float32 { return b2f(a != b) })
	case OpMAD:
		perComponent(func(a, b, c float32) float32 { return a*b + c })
	case OpLRP:
		perComponent(func(a, b, c float32) float32 { return a*b + (1-a)*c })
	case OpFRC:
		perComponent(func(a, _, _ float32) float32 { return a - float32(math.Floor(float64(a))) })
	case OpEX2:
		scalar(math.Exp2)
	case OpLG2:
		scalar(math.Log2)
	case OpPOW:
		out = fromFloats(splat(float32(math.Pow(float64(f[0][0]), float64(f[1][0])))))
	case OpXPD:
		a, b := f[0], f[1]
		out = fromFloats([4]float32{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
			1,
		})
	case OpCMP:
		for i := range out {
			if f[0][i] < 0 {
				out[i] = src[1][i]
			} else {
				out[i] = src[2][i]
			}
		}
	case OpSIN:
		scalar(math.Sin)
	case OpCOS:
		scalar(math.Cos)
	case OpDDX, OpDDY:
		out = [4]uint32{}
	case OpTEX, OpTXP, OpTXB, OpTXD, OpTXL:
		req := SampleRequest{
			Op:      inst.Op,
			Target:  inst.Texture,
			Sampler: inst.Src[len(inst.Src)-1].Index,
			Coord:   f[0],
		}
		if inst.Op == OpTXP {
			w := req.Coord[3]
			for i := 0; i < 3; i++ {
				req.Coord[i] /= w
			}
		}
		if inst.Op == OpTXD {
			req.DDX, req.DDY = f[1], f[2]
		}
		var r [4]float32
		if m.Sample != nil {
			r = m.Sample(req)
		}
		out = fromFloats(r)
	case OpNOT:
		for i := range out {
			out[i] = ^src[0][i]
		}
	case OpUADD:
		for i := range out {
			out[i] = src[0][i] + src[1][i]
		}
	case OpUMAD:
		for i := range out {
			out[i] = src[0][i]*src[1][i] + src[2][i]
		}
	case OpUSEQ:
		for i := range out {
			if src[0][i] == src[1][i] {
				out[i] = ^uint32(0)
			}
		}
	default:
		return errors.Errorf("cannot execute %s", inst.Op)
	}

	return m.store(inst.Dst[0], out)
}
