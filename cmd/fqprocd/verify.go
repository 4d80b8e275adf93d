package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// compareDirs checks that every regular file under want is present
// under got with byte-identical content, and that got contains nothing
// extra — the "verify" subcommand's job (§6.4): confirm a fresh run's
// output matches a known-good fixture directory exactly, which also
// exercises the dual SHA-256 hash sidecars output/hash.go writes
// (any divergence there is a content mismatch here too).
func compareDirs(want, got string) error {
	wantFiles, err := listFiles(want)
	if err != nil {
		return err
	}
	gotFiles, err := listFiles(got)
	if err != nil {
		return err
	}

	gotSet := make(map[string]bool, len(gotFiles))
	for _, f := range gotFiles {
		gotSet[f] = true
	}

	var mismatches []string
	for _, rel := range wantFiles {
		if !gotSet[rel] {
			mismatches = append(mismatches, fmt.Sprintf("missing: %s", rel))
			continue
		}
		delete(gotSet, rel)
		a, err := os.ReadFile(filepath.Join(want, rel))
		if err != nil {
			return err
		}
		b, err := os.ReadFile(filepath.Join(got, rel))
		if err != nil {
			return err
		}
		if !bytes.Equal(a, b) {
			mismatches = append(mismatches, fmt.Sprintf("content differs: %s", rel))
		}
	}
	for rel := range gotSet {
		mismatches = append(mismatches, fmt.Sprintf("unexpected extra file: %s", rel))
	}

	if len(mismatches) == 0 {
		return nil
	}
	sort.Strings(mismatches)
	return fmt.Errorf("output verification failed against %s:\n%s", want, joinLines(mismatches))
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func listFiles(root string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	return out, err
}
