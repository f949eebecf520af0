//go:build !js

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// checkGenerated compiles the input file together with the generated file
// in a throwaway module and reports the compiler's output. This is how the
// build-breaking stubs embedded for table failures surface at generation
// time instead of at the next build. It only works for inputs that compile
// on their own (no imports of sibling package files).
func checkGenerated(srcName string, src []byte, genName string, gen []byte) error {
	tmpDir, err := os.MkdirTemp("", "test-with-parameters-check-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	gomod := "module check\n\ngo 1.24\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "go.mod"), []byte(gomod), 0644); err != nil {
		return fmt.Errorf("failed to write go.mod: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, filepath.Base(srcName)), src, 0644); err != nil {
		return fmt.Errorf("failed to write source copy: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, filepath.Base(genName)), gen, 0644); err != nil {
		return fmt.Errorf("failed to write generated copy: %w", err)
	}

	cmd := exec.Command("go", "test", "-c", "-o", os.DevNull, ".")
	cmd.Dir = tmpDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("check failed:\n%s", out)
	}
	return nil
}
