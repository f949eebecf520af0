package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"golang.org/x/tools/txtar"
)

//go:embed templates.txt
var defaultTemplates string

// loadTemplates parses the template archive: the file named by g.Template
// when set and readable, the embedded defaults otherwise. The archive must
// contain file.tmpl, case.tmpl and failure.tmpl.
func (g *expander) loadTemplates() error {
	if g.fileTemplate != nil {
		return nil
	}

	templateData := defaultTemplates
	if g.Template != "" {
		if data, err := os.ReadFile(g.Template); err == nil {
			templateData = string(data)
		}
	}

	archive := txtar.Parse([]byte(templateData))
	templates := make(map[string]string)
	for _, file := range archive.Files {
		templates[file.Name] = string(file.Data)
	}

	for _, want := range []struct {
		name string
		dst  **template.Template
	}{
		{"file.tmpl", &g.fileTemplate},
		{"case.tmpl", &g.caseTemplate},
		{"failure.tmpl", &g.failureTemplate},
	} {
		text, ok := templates[want.name]
		if !ok {
			return fmt.Errorf("template archive is missing %s", want.name)
		}
		tmpl, err := template.New(strings.TrimSuffix(want.name, ".tmpl")).Parse(text)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", want.name, err)
		}
		*want.dst = tmpl
	}
	return nil
}
