// Package ir defines the register-transfer intermediate representation
// produced by the nine translator.
//
// The IR is modeled on Gallium TGSI: a flat list of instructions over typed
// register files, with structured control flow expressed as paired opcodes
// (IF/ELSE/ENDIF, BGNLOOP/ENDLOOP) and subroutines entered with CAL.
//
// # Structure
//
// A Program contains:
//   - Declarations: inputs, outputs, temporaries, address and predicate
//     registers, constant ranges, samplers and system values
//   - Immediates: deduplicated 4-component literal vectors
//   - Instructions: the code, terminated by END
//
// # Labels
//
// Instructions that jump carry a Label naming the target instruction index.
// Jumps are often emitted before their target is known, so the Builder
// hands out a PatchHandle for them:
//
//	h := b.EmitPatchable(ir.OpIF, cond)
//	...
//	b.Patch(h, b.Position())
//	b.Op0(ir.OpENDIF)
//
// Finish refuses to build a program with unpatched labels.
//
// # Tooling
//
// Validate checks structural rules, Program.String renders TGSI-like text,
// Program.ControlFlowTree draws the nesting of control flow, and Machine
// executes a program for testing.
package ir
