//go:build darwin

package provision

import (
	"os"
	"path/filepath"
)

// getDefaultModelsDir returns the default models directory for macOS:
// ~/Library/Application Support/<appName>/models/
func getDefaultModelsDir(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", appName, "models"), nil
}
