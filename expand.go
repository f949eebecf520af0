package main

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

// Fixed messages for the two arity checks. The header check runs first and
// suppresses row checks; row checks stop at the first offending row.
const (
	headerArityMessage = "Number of parameters does not match the test function's arity."
	rowArityMessage    = "This case has the wrong number of arguments."
)

// failureMarker is the undefined identifier referenced by failure stubs in
// the generated output. Compiling it fails at the source location named by
// the preceding //line directive.
const failureMarker = "test_with_parameters_compile_error"

// Diagnostic is a validation or table syntax failure. It is embedded into
// the generated output as a build-breaking stub and echoed to stderr; the
// expansion itself still produces output.
type Diagnostic struct {
	Pos     token.Position
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// FormatError is returned when generated code fails to format
type FormatError struct {
	OriginalError error
	Source        string // The unformatted source code
	LineNum       int
	Column        int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatting error at line %d:%d: %v", e.LineNum, e.Column, e.OriginalError)
}

func (e *FormatError) Unwrap() error {
	return e.OriginalError
}

type expander struct {
	Filename string // name reported in diagnostics and //line directives
	Template string // custom template archive to use instead of the default

	fileTemplate    *template.Template
	caseTemplate    *template.Template
	failureTemplate *template.Template

	// Number of annotated functions seen by the last expand call.
	targets int
}

// expand reads one Go source file, expands every annotated function, and
// writes the generated file. Returned diagnostics correspond one to one to
// failure stubs in the output; a non-nil error means the input could not be
// processed at all.
func (g *expander) expand(output io.Writer, input io.Reader) ([]Diagnostic, error) {
	if err := g.loadTemplates(); err != nil {
		return nil, err
	}

	src, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	name := g.Filename
	if name == "" {
		name = "input.go"
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("error parsing input: %w", err)
	}

	targets := findTargets(fset, file)
	g.targets = len(targets)

	var diags []Diagnostic
	var cases, failures []string
	for _, t := range targets {
		d := t.diag
		if d == nil {
			d = validate(t)
		}
		if d != nil {
			// A failed function contributes one stub and no cases;
			// the remaining functions are still expanded.
			diags = append(diags, *d)
			failures = append(failures, g.renderFailure(d))
			continue
		}
		for i, row := range t.table.Rows {
			cases = append(cases, g.renderCase(t, i, row))
		}
	}

	// Failure stubs go last so their //line directives don't misattribute
	// the cases that follow them.
	content := strings.Join(append(cases, failures...), "\n\n")
	rendered := g.renderFile(file.Name.Name, len(cases) > 0, content)

	formatted, err := format.Source([]byte(rendered))
	if err != nil {
		// Write the unformatted source anyway so the caller can see
		// what was generated.
		output.Write([]byte(rendered))

		var lineNum, colNum int
		fmt.Sscanf(err.Error(), "%d:%d:", &lineNum, &colNum)
		return diags, &FormatError{
			OriginalError: err,
			Source:        rendered,
			LineNum:       lineNum,
			Column:        colNum,
		}
	}

	_, err = output.Write(formatted)
	return diags, err
}

// validate runs the ordered arity checks; the first failure wins.
func validate(t *target) *Diagnostic {
	if len(t.table.Columns) != t.arity {
		return &Diagnostic{Pos: t.table.Pos, Message: headerArityMessage}
	}
	for _, row := range t.table.Rows {
		if len(row.Args) != t.arity {
			return &Diagnostic{Pos: row.Pos, Message: rowArityMessage}
		}
	}
	return nil
}

// renderCase emits the wrapper for one row: a single call to the target
// with the row's expressions spliced in verbatim.
func (g *expander) renderCase(t *target, idx int, row Row) string {
	param := "_"
	args := make([]string, 0, len(row.Args)+1)
	if t.passT {
		param = "t"
		args = append(args, "t")
	}
	for _, a := range row.Args {
		args = append(args, a.Text)
	}

	data := struct {
		Name   string
		Param  string
		Target string
		Args   string
	}{
		Name:   caseName(t.name, idx),
		Param:  param,
		Target: t.name,
		Args:   strings.Join(args, ", "),
	}
	var buf bytes.Buffer
	if err := g.caseTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderFailure emits a stub that breaks the build at the diagnosed source
// location, carrying the message as an adjacent comment.
func (g *expander) renderFailure(d *Diagnostic) string {
	data := struct {
		Message string
		File    string
		Line    int
		Marker  string
	}{
		Message: d.Message,
		File:    d.Pos.Filename,
		Line:    d.Pos.Line,
		Marker:  failureMarker,
	}
	var buf bytes.Buffer
	if err := g.failureTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderFile renders the complete generated file.
func (g *expander) renderFile(pkg string, needsTesting bool, content string) string {
	data := struct {
		Package      string
		NeedsTesting bool
		Content      string
	}{
		Package:      pkg,
		NeedsTesting: needsTesting,
		Content:      content,
	}
	var buf bytes.Buffer
	if err := g.fileTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}

// caseName is the generated function's name for the row at idx: the
// target's name with a _case<idx> suffix, lifted to a form the go test
// runner picks up.
func caseName(name string, idx int) string {
	return runnableName(name) + "_case" + strconv.Itoa(idx)
}

// runnableName maps a target name to a test function name. The test runner
// only executes functions named Test<X> where X does not start with a
// lowercase letter, so names are capitalized behind a Test prefix unless
// they already carry a usable one.
func runnableName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	capped := string(unicode.ToUpper(r)) + name[size:]
	if rest, ok := strings.CutPrefix(capped, "Test"); ok {
		if rest == "" {
			return capped
		}
		if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsLower(r) {
			return capped
		}
	}
	return "Test" + capped
}
