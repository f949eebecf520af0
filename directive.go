package main

import (
	"go/ast"
	"go/scanner"
	"go/token"
	"sort"
	"strings"
)

// directiveName is the annotation recognized in a function's doc comment:
//
//	//test_with_parameters(
//	//	[ input , expected ]
//	//	[ 1     , 2        ]
//	//)
//
// The argument between the parentheses is the parameter table. It may be
// spread over any number of //-comment lines.
const directiveName = "test_with_parameters"

const directivePrefix = "//" + directiveName + "("

// segment maps a byte range of the assembled payload text back to its
// position in the original source file. Comment markers are stripped when
// the payload is assembled, so each comment line contributes one segment.
type segment struct {
	off  int // offset of the segment's first byte in payload.text
	line int // original source line
	col  int // original source column of that first byte
}

// payload is the directive's argument text with enough bookkeeping to
// report positions in the file the comment came from.
type payload struct {
	text   string
	file   string
	dirPos token.Position // position of the directive comment itself
	segs   []segment
}

// position translates an offset in the payload text to a source position.
func (p *payload) position(off int) token.Position {
	i := sort.Search(len(p.segs), func(i int) bool { return p.segs[i].off > off }) - 1
	if i < 0 {
		i = 0
	}
	s := p.segs[i]
	return token.Position{
		Filename: p.file,
		Line:     s.line,
		Column:   s.col + (off - s.off),
	}
}

// directivePayload extracts the directive argument from a doc comment
// group. It returns (nil, nil) when the group carries no directive. The
// payload ends at the parenthesis matching the directive's opening one;
// anything after it in the comment group is ordinary documentation.
func directivePayload(fset *token.FileSet, doc *ast.CommentGroup) (*payload, *Diagnostic) {
	if doc == nil {
		return nil, nil
	}
	start := -1
	for i, c := range doc.List {
		if strings.HasPrefix(c.Text, directivePrefix) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil
	}

	p := &payload{
		file:   fset.Position(doc.List[start].Pos()).Filename,
		dirPos: fset.Position(doc.List[start].Pos()),
	}
	var b strings.Builder
	for i := start; i < len(doc.List); i++ {
		c := doc.List[i]
		if !strings.HasPrefix(c.Text, "//") {
			break
		}
		content := c.Text[2:]
		skip := 2
		if i == start {
			content = c.Text[len(directivePrefix):]
			skip = len(directivePrefix)
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		pos := fset.Position(c.Pos())
		p.segs = append(p.segs, segment{off: b.Len(), line: pos.Line, col: pos.Column + skip})
		b.WriteString(content)
	}
	p.text = b.String()

	end, d := p.matchClose()
	if d != nil {
		return nil, d
	}
	p.text = p.text[:end]
	return p, nil
}

// matchClose finds the parenthesis closing the directive by scanning the
// assembled text and tracking paren depth. The directive's own opening
// paren is already consumed, so scanning starts at depth one.
func (p *payload) matchClose() (int, *Diagnostic) {
	var syntaxErr *Diagnostic
	eh := func(pos token.Position, msg string) {
		if syntaxErr == nil {
			syntaxErr = &Diagnostic{Pos: p.position(pos.Offset), Message: msg}
		}
	}
	fset := token.NewFileSet()
	file := fset.AddFile(p.file, fset.Base(), len(p.text))
	var s scanner.Scanner
	s.Init(file, []byte(p.text), eh, 0)

	depth := 1
	for {
		pos, tok, _ := s.Scan()
		if syntaxErr != nil {
			return 0, syntaxErr
		}
		if tok == token.EOF {
			break
		}
		switch tok {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return file.Offset(pos), nil
			}
		}
	}
	return 0, &Diagnostic{Pos: p.dirPos, Message: "missing ')' to close " + directiveName + " table"}
}

// target is one annotated function together with its parsed table. When the
// table text itself was malformed, table is nil and diag carries the
// underlying grammar's message.
type target struct {
	name  string
	arity int
	passT bool
	pos   token.Position
	table *Table
	diag  *Diagnostic
}

// findTargets collects every annotated function declaration in the file, in
// source order. Functions without the directive are left alone.
func findTargets(fset *token.FileSet, f *ast.File) []*target {
	var targets []*target
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		p, diag := directivePayload(fset, fd.Doc)
		if p == nil && diag == nil {
			continue
		}
		t := &target{name: fd.Name.Name, pos: fset.Position(fd.Pos())}
		t.arity, t.passT = funcArity(fd.Type)
		if diag == nil {
			t.table, diag = parseTable(p)
		}
		if diag == nil && fd.Recv != nil {
			diag = &Diagnostic{Pos: t.pos, Message: directiveName + " cannot be applied to a method"}
		}
		t.diag = diag
		targets = append(targets, t)
	}
	return targets
}

// funcArity counts the function's parameters. A leading *testing.T is the
// host framework's context parameter, not a table column: it is excluded
// from the count and forwarded by every generated case.
func funcArity(ft *ast.FuncType) (int, bool) {
	if ft.Params == nil {
		return 0, false
	}
	arity := 0
	passT := false
	for i, field := range ft.Params.List {
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		if i == 0 && isTestingT(field.Type) {
			passT = true
			n--
		}
		arity += n
	}
	return arity, passT
}

func isTestingT(expr ast.Expr) bool {
	star, ok := expr.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == "testing" && sel.Sel.Name == "T"
}
