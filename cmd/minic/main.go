// Command minic compiles a source file and prints the requested views of
// the result: token stream, symbol table, three-address code.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goforj/godump"

	"minic/pkg/cli"
	"minic/pkg/compiler"
	"minic/pkg/config"
	"minic/pkg/symtab"
	"minic/pkg/token"
	"minic/pkg/util"
)

func main() {
	var (
		showTokens  bool
		showSymbols bool
		showIR      bool
		dumpAST     bool
		noColor     bool
		quiet       bool
		warnFlags   []string
		featFlags   []string
	)

	cfg := config.NewConfig()

	app := cli.NewApp("minic")
	app.Synopsis = "[options] [input.mini]"
	app.Description = "Compile a program and print its token stream, symbol table and intermediate code. Reads standard input when no file is given."

	fs := app.FlagSet
	fs.Bool(&showTokens, "tokens", "t", false, "Print the token stream.")
	fs.Bool(&showSymbols, "symbols", "s", false, "Print the symbol table.")
	fs.Bool(&showIR, "ir", "i", false, "Print the intermediate code listing.")
	fs.Bool(&dumpAST, "dump-ast", "", false, "Dump the syntax tree and exit.")
	fs.Bool(&noColor, "no-color", "", false, "Disable colored diagnostics.")
	fs.Bool(&quiet, "quiet", "q", false, "Suppress the summary line.")
	fs.Prefix(&warnFlags, "W", "Warnings", "Toggle a warning.", warnToggles(cfg))
	fs.Prefix(&featFlags, "F", "Features", "Toggle a compiler feature.", featToggles(cfg))

	app.Action = func(args []string) error {
		for _, v := range warnFlags {
			if !cfg.ApplyFlag("W" + v) {
				fmt.Fprintf(os.Stderr, "minic: unknown warning flag -W%s\n", v)
			}
		}
		for _, v := range featFlags {
			if !cfg.ApplyFlag("F" + v) {
				fmt.Fprintf(os.Stderr, "minic: unknown feature flag -F%s\n", v)
			}
		}
		if len(args) > 1 {
			return fmt.Errorf("at most one input file, got %d", len(args))
		}

		name, source, err := readSource(args)
		if err != nil {
			return err
		}
		color := !noColor && cli.Interactive(os.Stderr)

		start := time.Now()
		res, err := compiler.Compile(source, cfg)
		if err != nil {
			var d *util.Diagnostic
			if errors.As(err, &d) {
				util.Render(os.Stderr, name, []rune(source), d, color)
				os.Exit(1)
			}
			return err
		}
		elapsed := time.Since(start)

		if dumpAST {
			godump.Dump(res.Program)
			return nil
		}

		// With no view selected, print everything.
		all := !showTokens && !showSymbols && !showIR
		if showTokens || all {
			printTokens(res.Tokens)
		}
		if showSymbols || all {
			printSymbols(res.Symbols)
		}
		if showIR || all {
			printCode(res)
		}

		for _, w := range res.Warnings {
			util.Render(os.Stderr, name, []rune(source), w, color)
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "minic: %s in %s, %d tokens, %d symbols, %d instructions, %d warnings\n",
				humanize.Bytes(uint64(len(source))), elapsed.Round(time.Microsecond),
				len(res.Tokens), len(res.Symbols.AllSymbols()), len(res.Code), len(res.Warnings))
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "minic: %v\n", err)
		os.Exit(1)
	}
}

func warnToggles(cfg *config.Config) []cli.Toggle {
	var ts []cli.Toggle
	for _, info := range cfg.Warnings {
		ts = append(ts, cli.Toggle{Name: info.Name, Usage: info.Description, Default: info.Enabled})
	}
	return ts
}

func featToggles(cfg *config.Config) []cli.Toggle {
	var ts []cli.Toggle
	for _, info := range cfg.Features {
		ts = append(ts, cli.Toggle{Name: info.Name, Usage: info.Description, Default: info.Enabled})
	}
	return ts
}

func readSource(args []string) (string, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}

func printTokens(tokens []token.Token) {
	fmt.Println("Tokens")
	fmt.Printf("  %4s %4s  %-15s %s\n", "LINE", "COL", "KIND", "VALUE")
	for _, tok := range tokens {
		value := tok.Value
		if tok.IsWarning() {
			value += "  (" + tok.ErrMsg + ")"
		}
		fmt.Printf("  %4d %4d  %-15s %s\n", tok.Line, tok.Column, tok.Kind, value)
	}
	fmt.Println()
}

func printSymbols(table *symtab.Table) {
	fmt.Println("Symbols")
	fmt.Printf("  %-12s %-12s %-20s %5s %5s  %s\n", "NAME", "TYPE", "VALUE", "DECL", "MOD", "USED AT")
	for _, name := range table.Names() {
		sym := table.Lookup(name, false, 0)
		fmt.Printf("  %-12s %-12s %-20s %5d %5d  %v\n",
			sym.Name, sym.Type, symbolValue(sym),
			sym.Info.DeclaredLine, sym.Info.LastModifiedLine, sym.UsedLines())
	}
	fmt.Println()
}

func symbolValue(sym *symtab.Symbol) string {
	if sym.Type == symtab.Expression && sym.Expr != "" {
		return sym.Expr
	}
	if sym.Value == nil {
		return "<uninitialized>"
	}
	return fmt.Sprintf("%v", sym.Value)
}

func printCode(res *compiler.Result) {
	fmt.Println("Intermediate code")
	for i, in := range res.Code {
		fmt.Printf("  %3d: %s\n", i+1, in)
	}
	fmt.Println()
}
