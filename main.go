//go:build !js

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	flagOutput   = flag.String("o", "", "output file for a single input; \"-\" writes to stdout")
	flagTemplate = flag.String("template", "", "template archive to use instead of the built-in one")
	flagCheck    = flag.Bool("check", false, "compile the generated output so table failures surface immediately")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		// Under go:generate the annotated file is named by $GOFILE.
		if gofile := os.Getenv("GOFILE"); gofile != "" {
			args = []string{gofile}
		}
	}

	if len(args) == 0 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			flag.Usage()
			fmt.Fprintln(os.Stderr, "Expects a Go file on stdin")
			os.Exit(1)
		}
		if err := expandFilter(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if *flagOutput != "" && len(args) > 1 {
		fmt.Fprintln(os.Stderr, "error: -o cannot be used with multiple input files")
		os.Exit(1)
	}

	for _, name := range args {
		if err := processFile(name); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}
}

// expandFilter runs one expansion in filter mode. Inputs without the
// directive produce no output, matching processFile's skip.
func expandFilter(in io.Reader, out io.Writer) error {
	g := &expander{Filename: "stdin.go", Template: *flagTemplate}
	var buf bytes.Buffer
	diags, err := g.expand(&buf, in)
	reportDiagnostics(diags)
	if err != nil {
		return err
	}
	if g.targets == 0 {
		return nil
	}
	_, err = out.Write(buf.Bytes())
	return err
}

// processFile expands one source file into its sidecar generated file.
// Files without the directive are skipped so the tool can be pointed at a
// whole file list.
func processFile(name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	g := &expander{Filename: name, Template: *flagTemplate}
	var buf bytes.Buffer
	diags, err := g.expand(&buf, bytes.NewReader(src))
	reportDiagnostics(diags)
	if err != nil {
		return err
	}
	if g.targets == 0 {
		return nil
	}

	out := *flagOutput
	if out == "" {
		out = outputName(name)
	}
	if out == "-" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			return err
		}
	} else if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return err
	}

	if *flagCheck {
		return checkGenerated(name, src, checkName(name, out), buf.Bytes())
	}
	return nil
}

// checkName is the filename the generated output is compiled under by
// -check. A stdout target has no on-disk name, so the sidecar name stands
// in for it.
func checkName(name, out string) string {
	if out == "-" {
		return outputName(name)
	}
	return out
}

// outputName derives the sidecar file name: doubles_test.go and doubles.go
// both generate doubles_cases_test.go.
func outputName(name string) string {
	base := strings.TrimSuffix(name, ".go")
	base = strings.TrimSuffix(base, "_test")
	return base + "_cases_test.go"
}

func reportDiagnostics(diags []Diagnostic) {
	for i := range diags {
		fmt.Fprintln(os.Stderr, diags[i].Error())
	}
}
