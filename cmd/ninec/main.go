// Command ninec translates Direct3D 9 shader bytecode.
//
// Usage:
//
//	ninec translate [flags] <input>
//	ninec disasm <input>
//
// Examples:
//
//	ninec translate --stage vs shader.vso          # Print the IR
//	ninec translate --stage ps --tree shader.pso   # Print the control-flow tree
//	ninec translate --config caps.yaml shader.vso  # Use backend capabilities
//	ninec disasm shader.vso                        # Print D3D9 assembler
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gogpu/nine"
	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/d3d9"
	"github.com/gogpu/nine/internal/log"
)

var (
	Version = "0.1.0-dev"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "ninec",
		Short:         "Direct3D 9 shader bytecode translator",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetDefault(log.NewLogger(log.NewTextHandler(os.Stderr, lvl)))
		return nil
	}

	var (
		stageName  string
		configPath string
		tree       bool
		validate   bool
		output     string
	)

	// Translate command - bytecode to IR text
	var translateCmd = &cobra.Command{
		Use:   "translate <input>",
		Short: "Translate a shader to IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, known, err := parseStage(stageName)
			if err != nil {
				return err
			}
			opts := nine.CompileOptions{Validate: validate}
			if configPath != "" {
				data, err := os.ReadFile(configPath)
				if err != nil {
					return errors.Wrap(err, "read config")
				}
				if opts.Options, err = d3d9.ParseOptions(data); err != nil {
					return err
				}
			}

			code, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read input")
			}
			if !known {
				if stage, err = detectStage(code); err != nil {
					return err
				}
			}

			prog, info, err := nine.Translate(code, stage, &opts)
			if err != nil {
				return err
			}
			log.Info(log.CLI, "translated", "input", args[0], "instructions", len(prog.Instructions),
				"temps", info.NumTemps, "consts", info.ConstFloatUsed)

			text := prog.String()
			if tree {
				text = prog.ControlFlowTree().String()
			}
			return writeOutput(output, text)
		},
	}
	translateCmd.Flags().StringVar(&stageName, "stage", "", "shader stage: vs or ps (default: from the version token)")
	translateCmd.Flags().StringVar(&configPath, "config", "", "YAML file with backend capabilities")
	translateCmd.Flags().BoolVar(&tree, "tree", false, "print the control-flow tree instead of the program")
	translateCmd.Flags().BoolVar(&validate, "validate", true, "validate the IR")
	translateCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	// Disasm command - bytecode to assembler text
	var disasmCmd = &cobra.Command{
		Use:   "disasm <input>",
		Short: "Disassemble a shader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read input")
			}
			text, err := nine.Disassemble(code)
			if err != nil {
				return err
			}
			return writeOutput(output, text)
		},
	}
	disasmCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(disasmCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(log.CLI, "failed", "err", err)
		fmt.Fprintf(os.Stderr, "ninec: %v\n", err)
		os.Exit(1)
	}
}

// parseStage maps a --stage value to a shader type. An empty name is
// not known and leaves detection to the version token.
func parseStage(name string) (stage bytecode.ShaderType, known bool, err error) {
	switch name {
	case "":
		return 0, false, nil
	case "vs", "vertex":
		return bytecode.Vertex, true, nil
	case "ps", "pixel", "fragment":
		return bytecode.Pixel, true, nil
	}
	return 0, false, errors.Errorf("unknown stage %q", name)
}

// detectStage reads the stage from the version token.
func detectStage(code []byte) (bytecode.ShaderType, error) {
	tokens, err := bytecode.FromBytes(code)
	if err != nil {
		return 0, errors.Wrap(err, "read shader")
	}
	if len(tokens) == 0 {
		return 0, errors.New("empty shader")
	}
	stage, _, err := bytecode.ParseHeader(bytecode.Token(tokens[0]))
	if err != nil {
		return 0, errors.Wrap(err, "detect stage")
	}
	return stage, nil
}

func writeOutput(path, text string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	return errors.Wrap(os.WriteFile(path, []byte(text), 0644), "write output")
}
