package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mustPayload builds a source file whose only function carries the
// directive with the given table lines, and returns the extracted payload.
// The directive comment is on line 3, so the first table line is line 4.
func mustPayload(t *testing.T, lines ...string) *payload {
	t.Helper()
	var b strings.Builder
	b.WriteString("package p\n\n//test_with_parameters(\n")
	for _, l := range lines {
		b.WriteString("//\t" + l + "\n")
	}
	b.WriteString("//)\nfunc f() {}\n")

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "table_input.go", b.String(), parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		t.Fatalf("parsing synthetic source: %v", err)
	}
	fd := file.Decls[0].(*ast.FuncDecl)
	p, d := directivePayload(fset, fd.Doc)
	if d != nil {
		t.Fatalf("directivePayload() diagnostic: %v", d)
	}
	if p == nil {
		t.Fatal("directivePayload() found no directive")
	}
	return p
}

func columnNames(tbl *Table) []string {
	names := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		names[i] = c.Name
	}
	return names
}

func rowTexts(tbl *Table) [][]string {
	rows := make([][]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		rows[i] = make([]string, len(r.Args))
		for j, a := range r.Args {
			rows[i][j] = a.Text
		}
	}
	return rows
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantCols []string
		wantRows [][]string
	}{
		{
			name:     "header and rows",
			lines:    []string{"[ a , b ]", "[ 1 , 2 ]", "[ 3 , 4 ]"},
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:     "trailing commas",
			lines:    []string{"[ a , b , ]", "[ 1 , 2 , ]"},
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}},
		},
		{
			name:     "zero rows",
			lines:    []string{"[ a ]"},
			wantCols: []string{"a"},
			wantRows: [][]string{},
		},
		{
			name:     "empty header",
			lines:    []string{"[ ]", "[ ]"},
			wantCols: []string{},
			wantRows: [][]string{{}},
		},
		{
			name:     "nested delimiters stay inside one item",
			lines:    []string{"[ values , want , label ]", `[ []int{1, 2} , add(1, (2)) , "a,b" ]`},
			wantCols: []string{"values", "want", "label"},
			wantRows: [][]string{{"[]int{1, 2}", "add(1, (2))", `"a,b"`}},
		},
		{
			name:     "row spanning comment lines",
			lines:    []string{"[ a , b ]", "[ 1 ,", "2 ]"},
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, d := parseTable(mustPayload(t, tt.lines...))
			if d != nil {
				t.Fatalf("parseTable() diagnostic: %v", d)
			}
			if diff := cmp.Diff(tt.wantCols, columnNames(tbl)); diff != "" {
				t.Errorf("columns mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRows, rowTexts(tbl)); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantMsg  string
		wantLine int
		wantCol  int
	}{
		{
			name:     "non-identifier column",
			lines:    []string{"[ a , 2 ]"},
			wantMsg:  "expected identifier",
			wantLine: 4,
			wantCol:  10,
		},
		{
			name:     "keyword column",
			lines:    []string{"[ func ]"},
			wantMsg:  "expected identifier",
			wantLine: 4,
			wantCol:  6,
		},
		{
			name:     "token between groups",
			lines:    []string{"[ a ]", "x", "[ 1 ]"},
			wantMsg:  "expected '[', found 'x'",
			wantLine: 5,
			wantCol:  4,
		},
		{
			name:     "missing closing bracket",
			lines:    []string{"[ a ]", "[ 1"},
			wantMsg:  "missing ']' to close this group",
			wantLine: 5,
			wantCol:  4,
		},
		{
			name:     "leading comma",
			lines:    []string{"[ a ]", "[ , 1 ]"},
			wantMsg:  "expected expression",
			wantLine: 5,
			wantCol:  6,
		},
		{
			name:     "unbalanced brace",
			lines:    []string{"[ a ]", "[ 1 } ]"},
			wantMsg:  "unexpected '}'",
			wantLine: 5,
			wantCol:  8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, d := parseTable(mustPayload(t, tt.lines...))
			if d == nil {
				t.Fatalf("parseTable() = %+v, want diagnostic", tbl)
			}
			if d.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", d.Message, tt.wantMsg)
			}
			if d.Pos.Line != tt.wantLine || d.Pos.Column != tt.wantCol {
				t.Errorf("position = %d:%d, want %d:%d", d.Pos.Line, d.Pos.Column, tt.wantLine, tt.wantCol)
			}
		})
	}
}

func TestParseTableBadRowExpression(t *testing.T) {
	tbl, d := parseTable(mustPayload(t, "[ a ]", "[ 1 2 ]"))
	if d == nil {
		t.Fatalf("parseTable() = %+v, want diagnostic", tbl)
	}
	// The message comes from go/parser; only the attribution is ours. The
	// stray token sits two columns past the item start.
	if d.Pos.Line != 5 || d.Pos.Column != 8 {
		t.Errorf("position = %d:%d, want 5:8", d.Pos.Line, d.Pos.Column)
	}
}

func TestParseTablePositions(t *testing.T) {
	tbl, d := parseTable(mustPayload(t, "[ a , b ]", "[ 1 , 2 ]"))
	if d != nil {
		t.Fatalf("parseTable() diagnostic: %v", d)
	}
	if got := tbl.Pos; got.Line != 4 || got.Column != 4 {
		t.Errorf("header position = %d:%d, want 4:4", got.Line, got.Column)
	}
	if got := tbl.Rows[0].Pos; got.Line != 5 || got.Column != 4 {
		t.Errorf("row position = %d:%d, want 5:4", got.Line, got.Column)
	}
	if got := tbl.Rows[0].Args[1].Pos; got.Line != 5 || got.Column != 10 {
		t.Errorf("arg position = %d:%d, want 5:10", got.Line, got.Column)
	}
}
