// Package testutil provides fixtures and golden-file comparison for tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// FixtureContext describes one fixture project under testdata/fixtures.
type FixtureContext struct {
	// Name is the fixture directory name, e.g. "rust"
	Name string

	// Root is the absolute path to the fixture directory
	Root string

	// ExpectedDir holds the golden files
	ExpectedDir string
}

// LoadFixture loads a fixture project, failing the test if it is missing.
func LoadFixture(t *testing.T, name string) *FixtureContext {
	t.Helper()

	fixtureDir := filepath.Join(fixturesRoot(t), name)
	if _, err := os.Stat(fixtureDir); os.IsNotExist(err) {
		t.Fatalf("Fixture directory not found: %s", fixtureDir)
	}

	return &FixtureContext{
		Name:        name,
		Root:        fixtureDir,
		ExpectedDir: filepath.Join(fixtureDir, "expected"),
	}
}

// ExpectedPath returns the path to a golden file within the fixture.
// The name should not include the .json extension.
func (f *FixtureContext) ExpectedPath(name string) string {
	return filepath.Join(f.ExpectedDir, name+".json")
}

// SourceFiles returns the fixture-relative, slash-separated paths of every
// file with extension ext, sorted.
func (f *FixtureContext) SourceFiles(t *testing.T, ext string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(f.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != f.Root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			rel, relErr := filepath.Rel(f.Root, path)
			if relErr != nil {
				return relErr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to list fixture files: %v", err)
	}
	sort.Strings(files)
	return files
}

// fixturesRoot returns the absolute path to testdata/fixtures/.
func fixturesRoot(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// internal/testutil -> project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	root := filepath.Join(projectRoot, "testdata", "fixtures")
	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("Fixtures root not found: %s", root)
	}
	return root
}
