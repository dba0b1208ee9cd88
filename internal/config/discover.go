package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// maxDiscoveryDepth limits how many ancestors the upward search visits.
const maxDiscoveryDepth = 10

// ErrNotFound signals that discovery hit a search limit before finding a
// project config file.
var ErrNotFound = errors.New("no project config found")

// Discover walks upward from startDir looking for pythinfer.yaml. The walk
// stops at the filesystem root, above $HOME, or after maxDiscoveryDepth
// ancestors.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	home, _ := os.UserHomeDir()

	for depth := 0; ; depth++ {
		for _, name := range []string{FileName, altFileName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		if depth >= maxDiscoveryDepth {
			return "", fmt.Errorf("%w: reached maximum search depth (%d)", ErrNotFound, depth)
		}
		if home != "" && dir == home {
			return "", fmt.Errorf("%w: reached $HOME", ErrNotFound)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: reached filesystem root", ErrNotFound)
		}
		dir = parent
	}
}
