// Package testutil provides golden-file helpers for output-format tests.
//
// Golden files pin the output writer's JSON and status-mark formatting so
// changes show up as reviewable diffs instead of silent drift.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// update rewrites golden files instead of comparing against them.
// Usage: go test ./... -update
var update = flag.Bool("update", false, "update golden files")

// GoldenPath returns the path of a golden file under testdata.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", filename)
}

// AssertGolden compares got against the named golden file, creating or
// rewriting the file when the -update flag is set.
func AssertGolden(t *testing.T, got, goldenFile string) {
	t.Helper()

	goldenPath := GoldenPath(goldenFile)

	if *update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("create testdata directory: %v", err)
		}

		if err := os.WriteFile(goldenPath, []byte(got), 0o644); err != nil {
			t.Fatalf("update golden file %s: %v", goldenPath, err)
		}

		t.Logf("updated golden file: %s", goldenPath)

		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist; run with -update to create it", goldenPath)
		}

		t.Fatalf("read golden file %s: %v", goldenPath, err)
	}

	if got != string(want) {
		t.Errorf("output mismatch for %s\n\ngot:\n%s\n\nwant:\n%s\n\nrun with -update to refresh golden files", goldenPath, got, string(want))
	}
}

// ReadGolden reads a golden file, returning "" when it does not exist.
func ReadGolden(t *testing.T, goldenFile string) string {
	t.Helper()

	data, err := os.ReadFile(GoldenPath(goldenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}

		t.Fatalf("read golden file %s: %v", goldenFile, err)
	}

	return string(data)
}
