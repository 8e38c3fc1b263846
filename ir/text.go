package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the program as TGSI-like text.
func (p *Program) String() string {
	var b strings.Builder
	b.WriteString(p.Stage.String())
	b.WriteByte('\n')

	for _, d := range p.Declarations {
		b.WriteString(declString(d))
		b.WriteByte('\n')
	}
	for i, imm := range p.Immediates {
		fmt.Fprintf(&b, "IMM[%d] %s {%s}\n", i, imm.Type, immString(imm))
	}

	indent := 0
	for i, inst := range p.Instructions {
		switch inst.Op {
		case OpELSE, OpENDIF, OpENDLOOP:
			indent--
		}
		fmt.Fprintf(&b, "%3d: %s%s\n", i, strings.Repeat("  ", max(indent, 0)), inst.String())
		switch inst.Op {
		case OpIF, OpUIF, OpELSE, OpBGNLOOP:
			indent++
		}
	}
	return b.String()
}

func declString(d Declaration) string {
	switch d := d.(type) {
	case InputDecl:
		s := fmt.Sprintf("DCL IN[%d], %s, %s", d.Index, d.Semantic, d.Interp)
		if d.Centroid {
			s += ", CENTROID"
		}
		return s
	case OutputDecl:
		return fmt.Sprintf("DCL OUT[%d], %s", d.Index, d.Semantic)
	case TempDecl:
		return fmt.Sprintf("DCL TEMP[%d]", d.Index)
	case AddressDecl:
		return fmt.Sprintf("DCL ADDR[%d]", d.Index)
	case PredicateDecl:
		return fmt.Sprintf("DCL PRED[%d]", d.Index)
	case ConstDecl:
		return fmt.Sprintf("DCL CONST[%d..%d]", d.First, d.Last)
	case SamplerDecl:
		return fmt.Sprintf("DCL SAMP[%d], %s", d.Index, d.Target)
	case SystemValueDecl:
		return fmt.Sprintf("DCL SV[%d], %s", d.Index, d.Semantic)
	default:
		return fmt.Sprintf("DCL %T", d)
	}
}

func immString(imm Immediate) string {
	parts := make([]string, 4)
	for c := range parts {
		switch imm.Type {
		case ImmFloat32:
			parts[c] = strconv.FormatFloat(float64(imm.Float(c)), 'g', -1, 32)
		case ImmInt32:
			parts[c] = strconv.FormatInt(int64(int32(imm.Value[c])), 10)
		default:
			parts[c] = strconv.FormatUint(uint64(imm.Value[c]), 10)
		}
	}
	return strings.Join(parts, ", ")
}

// String renders one instruction, e.g. "MAD TEMP[0].xy, IN[0], CONST[1].xxxx, -IMM[0]".
func (inst Instruction) String() string {
	var b strings.Builder
	b.WriteString(inst.Op.String())

	sep := " "
	for _, d := range inst.Dst {
		b.WriteString(sep)
		b.WriteString(d.String())
		sep = ", "
	}
	for _, s := range inst.Src {
		b.WriteString(sep)
		b.WriteString(s.String())
		sep = ", "
	}
	if inst.Op.IsTexture() {
		b.WriteString(sep)
		b.WriteString(inst.Texture.String())
	}
	if inst.Op.HasLabel() {
		fmt.Fprintf(&b, " :%d", inst.Label)
	}
	return b.String()
}

func regString(file File, index int, ind *Indirect) string {
	if ind != nil {
		return fmt.Sprintf("%s[%s[%d].%c+%d]", file, ind.File, ind.Index, "xyzw"[ind.Component&3], index)
	}
	return fmt.Sprintf("%s[%d]", file, index)
}

func (d Dst) String() string {
	s := regString(d.File, d.Index, d.Indirect)
	if d.WriteMask != MaskXYZW {
		s += "." + d.WriteMask.String()
	}
	return s
}

func (s Src) String() string {
	r := regString(s.File, s.Index, s.Indirect)
	if s.Swizzle != SwizzleXYZW {
		r += "." + s.Swizzle.String()
	}
	if s.Abs {
		r = "|" + r + "|"
	}
	if s.Negate {
		r = "-" + r
	}
	return r
}
