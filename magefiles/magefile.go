//go:build mage

// Package main contains Mage build targets for coauthor-graph developer tooling.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"data",
	"data/graphs/open_alex",
	"data/graphs/csindex",
	"data/metrics",
	".secrets",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "coauthor-graph"
	cmdPkg  = "./cmd/coauthor-graph"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Check vets the module and runs the tests.
func Check() error {
	mg.Deps(Vet)
	mg.Deps(Test)
	return nil
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Stats reports the pipeline artifacts: datasets under data/ and exported
// graphs under data/graphs, grouped by extension.
func Stats() error {
	type tally struct {
		files int
		bytes int64
	}
	byExt := map[string]*tally{}
	err := filepath.WalkDir("data", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		key := strings.TrimPrefix(filepath.Ext(path), ".")
		if strings.HasPrefix(path, filepath.Join("data", "graphs")+string(filepath.Separator)) {
			key = "graph ." + key
		}
		t, ok := byExt[key]
		if !ok {
			t = &tally{}
			byExt[key] = t
		}
		t.files++
		t.bytes += info.Size()
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking data: %w", err)
	}
	if len(byExt) == 0 {
		fmt.Println("No artifacts under data/. Run mage pipeline:collect first.")
		return nil
	}

	keys := make([]string, 0, len(byExt))
	for k := range byExt {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-16s %5d files  %10d bytes\n", k, byExt[k].files, byExt[k].bytes)
	}
	return nil
}
