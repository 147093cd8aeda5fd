package testutil

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"testing"
)

// Use: go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// MarshalGolden renders v the way golden files store it.
func MarshalGolden(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal golden data: %v", err)
	}
	return append(data, '\n')
}

// CompareGolden compares got against the golden file, failing with a diff on
// mismatch. With -update the golden file is rewritten instead.
func CompareGolden(t *testing.T, fixture *FixtureContext, name string, got any) {
	t.Helper()

	data := MarshalGolden(t, got)
	goldenPath := fixture.ExpectedPath(name)

	if *updateGolden {
		if err := os.MkdirAll(fixture.ExpectedDir, 0o755); err != nil {
			t.Fatalf("Failed to create expected directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\nRun with -update to create it.", goldenPath, data)
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if !bytes.Equal(data, expected) {
		t.Fatalf("Golden mismatch for %s:\n%s\nRun with -update to refresh:\n  go test ./... -run %s -update",
			name, lineDiff(string(expected), string(data), goldenPath), t.Name())
	}
}

// lineDiff reports differing lines position by position with a little
// leading context. It is not a minimal diff.
func lineDiff(expected, got, path string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s (expected)\n+++ %s (got)\n", path, path)

	exp := strings.Split(expected, "\n")
	act := strings.Split(got, "\n")
	lastShown := -1
	for i := 0; i < max(len(exp), len(act)); i++ {
		e, a := lineAt(exp, i), lineAt(act, i)
		if e == a {
			continue
		}
		for j := max(lastShown+1, i-2); j < i; j++ {
			fmt.Fprintf(&buf, " %s\n", lineAt(exp, j))
		}
		if i < len(exp) {
			fmt.Fprintf(&buf, "-%s\n", e)
		}
		if i < len(act) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
		lastShown = i
	}
	return buf.String()
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
