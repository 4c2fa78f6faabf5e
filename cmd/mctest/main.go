// Command mctest runs the golden fixtures under examples/. Each .mini
// file compiles in-process; the intermediate-code listing (or the fatal
// diagnostic) is compared against the .golden file next to it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"minic/pkg/cli"
	"minic/pkg/compiler"
	"minic/pkg/config"
)

func main() {
	pattern := flag.String("pattern", "examples/*.mini", "glob of fixture files")
	update := flag.Bool("update", false, "rewrite golden files from current output")
	verbose := flag.Bool("v", false, "print every fixture, not just failures")
	flag.Parse()

	files, err := filepath.Glob(*pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mctest: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "mctest: no fixtures match %s\n", *pattern)
		os.Exit(1)
	}

	color := cli.Interactive(os.Stdout)
	pass, fail, skip := 0, 0, 0
	seen := make(map[uint64]string)

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mctest: %v\n", err)
			os.Exit(1)
		}

		// Identical fixture bodies only run once.
		sum := xxhash.Sum64(data)
		if prev, dup := seen[sum]; dup {
			skip++
			if *verbose {
				fmt.Printf("%s %s (duplicate of %s)\n", mark("SKIP", color), file, prev)
			}
			continue
		}
		seen[sum] = file

		got := run(string(data))
		goldenPath := file + ".golden"

		if *update {
			if err := os.WriteFile(goldenPath, []byte(got), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "mctest: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%s %s\n", mark("WROTE", color), goldenPath)
			continue
		}

		want, err := os.ReadFile(goldenPath)
		if err != nil {
			fail++
			fmt.Printf("%s %s: missing golden file (run with -update)\n", mark("FAIL", color), file)
			continue
		}
		if diff := cmp.Diff(string(want), got); diff != "" {
			fail++
			fmt.Printf("%s %s (-want +got):\n%s\n", mark("FAIL", color), file, diff)
			continue
		}
		pass++
		if *verbose {
			fmt.Printf("%s %s\n", mark("PASS", color), file)
		}
	}

	if !*update {
		fmt.Printf("%d passed, %d failed, %d skipped\n", pass, fail, skip)
		if fail > 0 {
			os.Exit(1)
		}
	}
}

// run compiles one fixture and renders its comparable output: the IR
// listing on success, the diagnostic on a fatal error.
func run(source string) string {
	res, err := compiler.Compile(source, config.NewConfig())
	if err != nil {
		return "error: " + err.Error() + "\n"
	}
	var sb strings.Builder
	for _, in := range res.Code {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func mark(label string, color bool) string {
	if !color {
		return label
	}
	switch label {
	case "PASS", "WROTE":
		return "\033[32m" + label + "\033[0m"
	case "FAIL":
		return "\033[31m" + label + "\033[0m"
	}
	return "\033[33m" + label + "\033[0m"
}
