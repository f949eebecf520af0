package main

import (
	"errors"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
)

// Column is one entry of the table header. Column names document the
// argument positions and are checked against the function's arity; they are
// never emitted into generated code.
type Column struct {
	Name string
	Pos  token.Position
}

// Arg is one argument expression of a row, kept as verbatim source text so
// it can be spliced into the generated call unchanged.
type Arg struct {
	Text string
	Pos  token.Position
}

// Row is one test case: an ordered tuple of argument expressions. Pos is
// the row's opening bracket, used to attribute arity failures.
type Row struct {
	Args []Arg
	Pos  token.Position
}

// Table is the parsed directive argument: a header of column names followed
// by zero or more rows. Row order is significant, it determines case
// numbering.
type Table struct {
	Columns []Column
	Pos     token.Position // opening bracket of the header group
	Rows    []Row
}

// group is one bracketed section of the table, with its items split on
// commas at bracket depth zero.
type group struct {
	pos   token.Position
	items []item
}

type item struct {
	text string
	pos  token.Position
}

// parseTable parses the payload into a Table. The grammar is purely
// structural: one bracketed group of identifiers, then bracketed groups of
// expressions until the payload is exhausted, with no separators between
// groups. Trailing commas inside a group are permitted. Syntax errors carry
// the underlying scanner/parser message, positioned in the original file.
func parseTable(p *payload) (*Table, *Diagnostic) {
	groups, diag := splitGroups(p)
	if diag != nil {
		return nil, diag
	}
	if len(groups) == 0 {
		return nil, &Diagnostic{Pos: p.dirPos, Message: "expected a bracketed list of column names"}
	}

	header := groups[0]
	tbl := &Table{Pos: header.pos}
	for _, it := range header.items {
		if !token.IsIdentifier(it.text) {
			return nil, &Diagnostic{Pos: it.pos, Message: "expected identifier"}
		}
		tbl.Columns = append(tbl.Columns, Column{Name: it.text, Pos: it.pos})
	}

	for _, g := range groups[1:] {
		row := Row{Pos: g.pos}
		for _, it := range g.items {
			if it.text == "" {
				return nil, &Diagnostic{Pos: it.pos, Message: "expected expression"}
			}
			if _, err := parser.ParseExpr(it.text); err != nil {
				return nil, mapExprError(it, err)
			}
			row.Args = append(row.Args, Arg{Text: it.text, Pos: it.pos})
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

// splitGroups tokenizes the payload and slices it into bracketed groups,
// recognized by delimiter balance alone. Inside a group, commas at depth one
// end the current item; nested brackets, parens and braces belong to the
// item text.
func splitGroups(p *payload) ([]group, *Diagnostic) {
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

	var groups []group
	var cur *group
	depth := 0
	itemStart := -1

	flushItem := func(end int) {
		if itemStart < 0 {
			return
		}
		text := strings.TrimRight(p.text[itemStart:end], " \t\r\n")
		cur.items = append(cur.items, item{text: text, pos: p.position(itemStart)})
		itemStart = -1
	}

	for {
		pos, tok, lit := s.Scan()
		if syntaxErr != nil {
			return nil, syntaxErr
		}
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			// Inserted by the scanner at line ends, not part of the table.
			continue
		}
		off := file.Offset(pos)

		if cur == nil {
			if tok != token.LBRACK {
				found := lit
				if found == "" {
					found = tok.String()
				}
				return nil, &Diagnostic{Pos: p.position(off), Message: "expected '[', found '" + found + "'"}
			}
			cur = &group{pos: p.position(off)}
			depth = 1
			itemStart = -1
			continue
		}

		switch tok {
		case token.LBRACK, token.LPAREN, token.LBRACE:
			depth++
		case token.RBRACK:
			depth--
			if depth == 0 {
				flushItem(off)
				groups = append(groups, *cur)
				cur = nil
				continue
			}
		case token.RPAREN, token.RBRACE:
			depth--
			if depth <= 0 {
				return nil, &Diagnostic{Pos: p.position(off), Message: "unexpected '" + tok.String() + "'"}
			}
		case token.COMMA:
			if depth == 1 {
				if itemStart < 0 {
					// A comma with nothing before it: surfaces as an
					// empty item so the caller reports it in place.
					cur.items = append(cur.items, item{text: "", pos: p.position(off)})
				} else {
					flushItem(off)
				}
				continue
			}
		}
		if itemStart < 0 {
			itemStart = off
		}
	}

	if cur != nil {
		return nil, &Diagnostic{Pos: cur.pos, Message: "missing ']' to close this group"}
	}
	return groups, nil
}

// mapExprError rebases a go/parser error, whose positions are relative to
// the item's own text, onto the item's position in the original file.
func mapExprError(it item, err error) *Diagnostic {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		e := list[0]
		pos := it.pos
		if e.Pos.Line > 1 {
			pos.Line += e.Pos.Line - 1
			pos.Column = e.Pos.Column
		} else {
			pos.Column += e.Pos.Column - 1
		}
		return &Diagnostic{Pos: pos, Message: e.Msg}
	}
	return &Diagnostic{Pos: it.pos, Message: err.Error()}
}
