//go:build mage

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binPath = "bin/shipdoc"

// Default target - build the binary
var Default = Build

// Build builds the shipdoc binary
func Build() error {
	ldflags := fmt.Sprintf("-s -w -X main.version=%s", version())
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/shipdoc")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm("bin")
}

// QA runs format, vet, lint and tests
func QA() {
	mg.SerialDeps(Lint.Format, Lint.Vet, Lint.Golangci, Test.All)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// Format fails when gofmt would change a file
func (Lint) Format() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// Vet runs go vet
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Golangci runs golangci-lint when it is installed
func (Lint) Golangci() error {
	err := sh.RunV("golangci-lint", "run", "--timeout=5m", "./...")
	if isCommandNotFound(err) {
		fmt.Fprintln(os.Stderr, "golangci-lint not found, skipping")
		return nil
	}
	return err
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs tests with the race detector
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Coverage writes coverage.out and prints the per-function summary
func (Test) Coverage() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Schema regenerates config.schema.json from the config types
func Schema() error {
	mg.Deps(Build)
	out, err := sh.Output(binPath, "schema")
	if err != nil {
		return err
	}
	return os.WriteFile("config.schema.json", []byte(out+"\n"), 0o644)
}

func version() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil || out == "" {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func isCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) ||
		strings.Contains(err.Error(), "executable file not found")
}
