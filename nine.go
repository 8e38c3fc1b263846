// Package nine translates Direct3D 9 shader bytecode into a portable
// register-based IR.
//
// nine accepts vertex shaders vs_1_1 through vs_3_0 and pixel shaders
// ps_1_1 through ps_3_0 and produces:
//   - An ir.Program with declarations and instructions in TGSI style
//   - A d3d9.Info describing inputs, outputs, samplers and constants
//
// The package provides a simple, high-level API for translating a compiled
// shader blob as well as access to the individual stages.
//
// Example usage:
//
//	data, _ := os.ReadFile("shader.vso")
//	prog, info, err := nine.Translate(data, bytecode.Vertex, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(prog)
//
// For finer control over the backend capabilities, use the d3d9 package:
//
//	opts := d3d9.DefaultOptions()
//	opts.NativeIntegers = false
//	prog, info, err := d3d9.Translate(tokens, bytecode.Pixel, opts)
package nine

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/d3d9"
	"github.com/gogpu/nine/internal/log"
	"github.com/gogpu/nine/ir"
)

// CompileOptions configures translation.
type CompileOptions struct {
	// Options are the capabilities of the consuming backend.
	// Nil selects d3d9.DefaultOptions.
	Options *d3d9.Options

	// Validate enables IR validation after translation
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Options:  d3d9.DefaultOptions(),
		Validate: true,
	}
}

// ValidationError reports an IR program rejected by ir.Validate.
type ValidationError struct {
	Errors []ir.ValidationError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0].Error()
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", e.Errors[0].Error(), len(e.Errors)-1)
}

// Translate translates a little-endian shader blob for the given stage
// using opts. A nil opts uses DefaultOptions.
//
// The pipeline is:
//  1. Split the blob into tokens
//  2. Translate the tokens into IR
//  3. Validate the IR (if enabled)
func Translate(code []byte, stage bytecode.ShaderType, opts *CompileOptions) (*ir.Program, *d3d9.Info, error) {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}

	tokens, err := bytecode.FromBytes(code)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read shader")
	}

	prog, info, err := d3d9.Translate(tokens, stage, opts.Options)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "translate %s shader", stage)
	}

	if opts.Validate {
		if err := Validate(prog); err != nil {
			return nil, nil, err
		}
	}

	log.Debug(log.Compile, "translated", "stage", stage, "instructions", len(prog.Instructions), "bytes", len(code))
	return prog, info, nil
}

// Validate checks an IR program for consistency.
//
// Validation checks include:
//   - Declarations (every register used is declared once)
//   - Control flow (balanced IF/ELSE/ENDIF, loops and subroutines)
//   - Operands (register ranges and indirect addressing)
//
// A rejected program is reported as *ValidationError.
func Validate(prog *ir.Program) error {
	errs, err := ir.Validate(prog)
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Disassemble renders a little-endian shader blob in D3D9 assembler syntax.
func Disassemble(code []byte) (string, error) {
	tokens, err := bytecode.FromBytes(code)
	if err != nil {
		return "", errors.Wrap(err, "read shader")
	}
	text, err := d3d9.Disassemble(tokens)
	if err != nil {
		return "", errors.Wrap(err, "disassemble")
	}
	return text, nil
}
