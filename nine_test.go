package nine

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/d3d9"
	"github.com/gogpu/nine/ir"
)

// passthrough is a vs_2_0 shader copying v0 to oPos.
func passthrough() *bytecode.Writer {
	w := bytecode.NewWriter(bytecode.Vertex, bytecode.V(2, 0))
	w.Dcl(bytecode.Dst(bytecode.RegInput, 0), bytecode.UsagePosition, 0)
	w.Op(bytecode.OpMov, bytecode.Dst(bytecode.RegRastOut, bytecode.RastOutPosition), bytecode.Src(bytecode.RegInput, 0))
	return w
}

func TestTranslateVertexShader(t *testing.T) {
	code := passthrough().Bytes()

	prog, info, err := Translate(code, bytecode.Vertex, nil)
	require.NoError(t, err)
	require.NotNil(t, prog)
	assert.Equal(t, ir.StageVertex, prog.Stage)
	assert.Equal(t, len(code), info.ByteLength)

	outputs := prog.Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, ir.Semantic{Name: ir.SemPosition}, outputs[0].Semantic)

	m := ir.NewMachine(prog)
	m.Inputs[0] = [4]float32{1, 2, 3, 1}
	require.NoError(t, m.Run())
	assert.Equal(t, [4]float32{1, 2, 3, 1}, m.Outputs[outputs[0].Index])
}

func TestTranslateFragmentShader(t *testing.T) {
	w := bytecode.NewWriter(bytecode.Pixel, bytecode.V(2, 0))
	w.Def(0, 1, 0, 0, 1)
	w.Op(bytecode.OpMov, bytecode.Dst(bytecode.RegColorOut, 0), bytecode.Src(bytecode.RegConst, 0))

	opts := DefaultOptions()
	opts.Options.NativeIntegers = false
	prog, info, err := Translate(w.Bytes(), bytecode.Pixel, &opts)
	require.NoError(t, err)
	assert.Equal(t, ir.StageFragment, prog.Stage)
	assert.Equal(t, uint8(1), info.RTMask)
}

func TestTranslateErrors(t *testing.T) {
	_, _, err := Translate([]byte{1, 2, 3, 4, 5}, bytecode.Vertex, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read shader")

	_, _, err = Translate(passthrough().Bytes(), bytecode.Pixel, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "translate ps shader")
	assert.ErrorIs(t, err, d3d9.ErrInvalidCall)

	var e *d3d9.Error
	require.ErrorAs(t, errors.Cause(err), &e)
	assert.Equal(t, d3d9.ErrStageMismatch, e.Kind)
}

func TestValidate(t *testing.T) {
	prog, _, err := Translate(passthrough().Bytes(), bytecode.Vertex, &CompileOptions{})
	require.NoError(t, err)
	require.NoError(t, Validate(prog))

	prog.Instructions[0].Src[0] = ir.Reg(ir.FileInput, 7)
	err = Validate(prog)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
	assert.Contains(t, err.Error(), "IN[7] is not declared")

	assert.Error(t, Validate(nil))
}

func TestDisassemble(t *testing.T) {
	text, err := Disassemble(passthrough().Bytes())
	require.NoError(t, err)
	assert.Equal(t, "vs_2_0\ndcl_position v0\nmov oPos, v0\n", text)

	_, err = Disassemble([]byte{0, 0})
	assert.Error(t, err)
}
