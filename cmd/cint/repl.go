package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cint/interp"
	"cint/parser"
)

// replCmd runs each line the user enters as the complete body of a
// throwaway `main`: there is no cross-line variable persistence, since
// the language has no notion of a top-level statement outside a
// function. Each line is wrapped as `int main(){ <line> return 0;}`
// and run through the same parse-and-evaluate path as `cint --input`.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate one line of a function body at a time",
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("cint repl — each line runs as int main(){ <line> }")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := evalLine(line, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func evalLine(line string, cfg *interp.Config) error {
	src := "int main(){" + line + " return 0;}"
	prog, err := parser.Parse(src)
	if err != nil {
		return err
	}
	env, err := interp.NewEnvironment(prog, cfg)
	if err != nil {
		return err
	}
	_, err = interp.NewEvaluator(env).Run()
	return err
}
