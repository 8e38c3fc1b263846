package ir

import (
	"fmt"
	"math"
)

// ImmType is the component type of an immediate.
type ImmType uint8

const (
	ImmFloat32 ImmType = iota
	ImmInt32
	ImmUint32
)

func (t ImmType) String() string {
	switch t {
	case ImmFloat32:
		return "FLT32"
	case ImmInt32:
		return "INT32"
	case ImmUint32:
		return "UINT32"
	default:
		return fmt.Sprintf("ImmType(%d)", uint8(t))
	}
}

// Immediate is a 4-component literal vector stored as raw bits.
type Immediate struct {
	Type  ImmType
	Value [4]uint32
}

// FloatImmediate returns a FLT32 immediate.
func FloatImmediate(x, y, z, w float32) Immediate {
	return Immediate{Type: ImmFloat32, Value: [4]uint32{
		math.Float32bits(x), math.Float32bits(y), math.Float32bits(z), math.Float32bits(w),
	}}
}

// Float returns component c interpreted as a float.
func (imm Immediate) Float(c int) float32 {
	return math.Float32frombits(imm.Value[c])
}

// ImmediateRegistry deduplicates immediates so that each distinct literal
// occupies one IMM slot.
type ImmediateRegistry struct {
	imms  []Immediate
	index map[Immediate]int
}

// NewImmediateRegistry creates an empty registry.
func NewImmediateRegistry() *ImmediateRegistry {
	return &ImmediateRegistry{
		imms:  make([]Immediate, 0, 8),
		index: make(map[Immediate]int, 8),
	}
}

// GetOrCreate returns the slot of imm, adding it if it is new.
// Identity is by type and bit pattern, so 0.0 and -0.0 are distinct.
func (r *ImmediateRegistry) GetOrCreate(imm Immediate) int {
	if i, ok := r.index[imm]; ok {
		return i
	}
	i := len(r.imms)
	r.imms = append(r.imms, imm)
	r.index[imm] = i
	return i
}

// Immediates returns all registered immediates in slot order.
func (r *ImmediateRegistry) Immediates() []Immediate {
	return r.imms
}

// Len returns the number of slots.
func (r *ImmediateRegistry) Len() int {
	return len(r.imms)
}
