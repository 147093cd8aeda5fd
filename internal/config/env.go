package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from <repoRoot>/.env into the process
// environment. Variables already set are left alone, and a missing file is
// not an error. It returns the path that was loaded, or "" if none.
func LoadDotEnv(repoRoot string) (string, error) {
	path := filepath.Join(repoRoot, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", path, err)
	}
	return path, nil
}
