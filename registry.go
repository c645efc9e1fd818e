package provision

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ledgerFile is the name of the installed-artifact ledger within the models
// directory. The ledger is advisory metadata for listing: presence of the
// artifact directory, not the ledger, decides whether an artifact is
// installed.
const ledgerFile = "installed.json"

// installLedger maps artifact names to their install records.
type installLedger map[string]ledgerEntry

// ledgerEntry records how and when an artifact was installed.
type ledgerEntry struct {
	// Source is the locator the artifact was installed from.
	Source string `json:"source"`

	// Kind is the acquisition strategy used.
	Kind SourceKind `json:"kind"`

	// TotalSize is the total size of all artifact files in bytes.
	TotalSize int64 `json:"total_size"`

	// FileCount is the number of files in the artifact.
	FileCount int `json:"file_count"`

	// InstalledAt is when the artifact was installed.
	InstalledAt time.Time `json:"installed_at"`
}

// loadLedger reads and parses the installed.json ledger.
// Returns an empty ledger if the file doesn't exist.
func (s *storage) loadLedger() (installLedger, error) {
	s.ledgerMu.RLock()
	defer s.ledgerMu.RUnlock()

	path := filepath.Join(s.baseDir, ledgerFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(installLedger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	var led installLedger
	if err := json.Unmarshal(data, &led); err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", ErrStorage, ledgerFile, err)
	}

	return led, nil
}

// saveLedger atomically writes the ledger to installed.json.
// Uses cross-process file locking to prevent concurrent writes from
// multiple processes.
func (s *storage) saveLedger(led installLedger) error {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	if err := s.ensureDir(s.baseDir); err != nil {
		return err
	}

	lockPath := filepath.Join(s.baseDir, ledgerFile+".lock")
	lock, err := newFileLock(lockPath, s.lockTimeout)
	if err != nil {
		return fmt.Errorf("%w: failed to create lock: %v", ErrStorage, err)
	}
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: failed to acquire lock: %v", ErrStorage, err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(led, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal ledger: %v", ErrStorage, err)
	}

	return s.atomicWrite(filepath.Join(s.baseDir, ledgerFile), data)
}

// recordInstall adds or replaces the ledger entry for an artifact.
func (s *storage) recordInstall(name string, entry ledgerEntry) error {
	led, err := s.loadLedger()
	if err != nil {
		return err
	}
	led[name] = entry
	return s.saveLedger(led)
}

// forgetInstall removes an artifact's ledger entry, if present.
func (s *storage) forgetInstall(name string) error {
	led, err := s.loadLedger()
	if err != nil {
		return err
	}
	if _, ok := led[name]; !ok {
		return nil
	}
	delete(led, name)
	return s.saveLedger(led)
}
