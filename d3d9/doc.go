// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package d3d9 translates Direct3D 9 shader bytecode into the ir package's
// register-transfer form.
//
// Vertex and pixel shaders of shader models 1.0 through 3.0 are accepted.
// Translation is a single pass over the token stream: every instruction is
// decoded, checked against the opcode table for its stage and version, and
// lowered to one or more IR instructions. Operations without an IR
// counterpart are expanded: matrix products become dot products, source
// modifiers become arithmetic on scratch temporaries, and destination
// shift, saturate and predication are applied after the instruction.
//
// Control flow is emitted with forward jumps that are patched once the
// closing instruction is seen. LOOP and REP keep an explicit counter; aL
// is loaded into an address register when used for relative addressing.
//
// Constants defined by the shader are folded into immediates. When float
// constants are addressed relatively the definitions are also returned in
// Info.LocalConsts so the caller can upload them.
//
// Basic usage:
//
//	prog, info, err := d3d9.Translate(tokens, bytecode.Vertex, d3d9.DefaultOptions())
//	if err != nil {
//	    // err is a *d3d9.Error matching d3d9.ErrInvalidCall
//	}
//	fmt.Print(prog)
//
// Legacy ps_1_x bump-mapping and depth-replacement opcodes return
// ErrNotImplemented.
package d3d9
