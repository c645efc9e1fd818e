//go:build windows

package provision

import (
	"errors"
	"os"
	"path/filepath"
)

// getDefaultModelsDir returns the default models directory for Windows:
// %APPDATA%\<appName>\models\
func getDefaultModelsDir(appName string) (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		return "", errors.New("APPDATA environment variable is not set")
	}
	return filepath.Join(appData, appName, "models"), nil
}
