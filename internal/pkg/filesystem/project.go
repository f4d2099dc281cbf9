package filesystem

import (
	"os"
	"path/filepath"
)

// FindProjectRoot walks up from startDir and returns the nearest ancestor
// (startDir included) containing one of the markers. The filesystem root is
// never reported as a project root.
func FindProjectRoot(startDir string, markers []string) (string, bool) {
	if startDir == "" || len(markers) == 0 {
		return "", false
	}
	current := filepath.Clean(startDir)
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current, true
			}
		}
		current = parent
	}
}
