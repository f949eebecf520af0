//go:build js

package main

import (
	"bytes"
	"strings"
	"syscall/js"
)

func expandFunction(this js.Value, p []js.Value) interface{} {
	in := strings.NewReader(p[0].String())
	var buf bytes.Buffer
	g := &expander{Filename: "input.go"}
	if _, err := g.expand(&buf, in); err != nil {
		return js.ValueOf(err.Error())
	}
	return js.ValueOf(buf.String())
}

func main() {
	c := make(chan struct{}, 0)

	js.Global().Set("testWithParameters", js.FuncOf(expandFunction))

	<-c
}
