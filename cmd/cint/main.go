package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cint/interp"
	"cint/parser"
)

// Grounded on the cobra.Command flag-binding style the golang-debug
// pack's cmd/viewcore/objref.go uses (cmd.Flags().GetFloat64/GetBool)
// rather than the teacher's own bare flag.String/flag.Bool (the
// teacher has no subcommands to justify cobra; this CLI's repl
// subcommand below does).
var rootCmd = &cobra.Command{
	Use:   "cint",
	Short: "Interpret a small imperative C-like language",
	RunE:  runInterpret,
}

func init() {
	rootCmd.Flags().String("input", "", "path to the source file to interpret")
	rootCmd.Flags().Bool("ast-only", false, "print the parsed AST and exit without evaluating")

	persistent := rootCmd.PersistentFlags()
	persistent.Int("max-recursion", 4096, "maximum call depth before aborting")
	persistent.Int("heap-bytes", 256, "initial arena capacity in bytes")
	persistent.Bool("strict-pointers", false, "treat a read of an unbound pointer as fatal")

	rootCmd.AddCommand(replCmd)
}

func runInterpret(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	if inputPath == "" {
		return fmt.Errorf("input file not informed")
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		return err
	}

	astOnly, _ := cmd.Flags().GetBool("ast-only")
	if astOnly {
		fmt.Println(interp.PrettyString(prog))
		return nil
	}

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	env, err := interp.NewEnvironment(prog, cfg)
	if err != nil {
		return err
	}

	result, err := interp.NewEvaluator(env).Run()
	if err != nil {
		return err
	}

	if result != 0 {
		os.Exit(int(result))
	}
	return nil
}

func configFromFlags(cmd *cobra.Command) (*interp.Config, error) {
	maxRecursion, err := cmd.Flags().GetInt("max-recursion")
	if err != nil {
		return nil, err
	}
	heapBytes, err := cmd.Flags().GetInt("heap-bytes")
	if err != nil {
		return nil, err
	}
	strict, err := cmd.Flags().GetBool("strict-pointers")
	if err != nil {
		return nil, err
	}

	cfg := interp.NewConfig()
	cfg.MaxCallDepth = maxRecursion
	cfg.InitialHeapBytes = heapBytes
	cfg.StrictPointers = strict
	cfg.Stdin = os.Stdin
	cfg.Stdout = os.Stdout
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
