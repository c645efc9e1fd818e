package provision

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultLockTimeout is the default timeout for acquiring file locks.
const DefaultLockTimeout = 30 * time.Second

// stagingSuffix is appended to a destination path to name its staging area.
// Exactly one in-flight install owns a given staging path.
const stagingSuffix = ".staging"

// storage handles all local filesystem operations below the models
// directory.
type storage struct {
	// baseDir is the models directory all artifacts live under.
	baseDir string

	// appName is the application name, used for the env var override.
	appName string

	// lockTimeout is the maximum duration to wait for file lock acquisition.
	lockTimeout time.Duration

	// ledgerMu protects concurrent in-process access to installed.json.
	ledgerMu sync.RWMutex
}

// envVarName constructs an environment variable name from the app name.
// Converts appName to uppercase and appends "_MODELS_DIR".
// Example: envVarName("voipglot") returns "VOIPGLOT_MODELS_DIR".
func envVarName(appName string) string {
	return strings.ToUpper(appName) + "_MODELS_DIR"
}

// newStorage creates a new storage instance for the given configuration.
func newStorage(cfg Config) (*storage, error) {
	var baseDir string

	// Priority: env var > Config.ModelsDir > platform default
	if envDir := os.Getenv(envVarName(cfg.AppName)); envDir != "" {
		baseDir = envDir
	} else if cfg.ModelsDir != "" {
		baseDir = cfg.ModelsDir
	} else {
		defaultDir, err := getDefaultModelsDir(cfg.AppName)
		if err != nil {
			return nil, fmt.Errorf("failed to get default models dir: %w", err)
		}
		baseDir = defaultDir
	}

	return &storage{baseDir: baseDir, appName: cfg.AppName, lockTimeout: DefaultLockTimeout}, nil
}

// artifactPath returns the absolute destination path for an artifact.
func (s *storage) artifactPath(name string) string {
	return filepath.Join(s.baseDir, name)
}

// stagingPath returns the staging area path for an artifact, derived
// deterministically from the destination path.
func (s *storage) stagingPath(name string) string {
	return s.artifactPath(name) + stagingSuffix
}

// ensureDir creates a directory and all parent directories if they don't exist.
func (s *storage) ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrStorage, path, err)
	}
	return nil
}

// atomicWrite writes data to a file using write-then-rename for atomicity.
func (s *storage) atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrStorage, err)
	}

	// Write to temp file first
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", ErrStorage, err)
	}

	// Atomic rename
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // cleanup on failure
		return fmt.Errorf("%w: failed to rename temp file: %v", ErrStorage, err)
	}

	return nil
}

// removeArtifactDir removes an artifact's directory and all its contents.
func (s *storage) removeArtifactDir(name string) error {
	if err := os.RemoveAll(s.artifactPath(name)); err != nil {
		return fmt.Errorf("%w: failed to remove artifact directory: %v", ErrStorage, err)
	}
	return nil
}

// dirStats walks a directory tree and returns the total size and count of
// regular files in it.
func dirStats(root string) (size int64, files int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		files++
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return size, files, nil
}
