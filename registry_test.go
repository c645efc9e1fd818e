package provision

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *storage {
	t.Helper()
	s, err := newStorage(Config{AppName: "provtest", ModelsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("newStorage() error = %v", err)
	}
	return s
}

func TestLedger(t *testing.T) {
	t.Run("absent ledger loads empty", func(t *testing.T) {
		s := newTestStorage(t)
		led, err := s.loadLedger()
		if err != nil {
			t.Fatalf("loadLedger() error = %v", err)
		}
		if len(led) != 0 {
			t.Errorf("loadLedger() = %v, want empty", led)
		}
	})

	t.Run("record then load round-trips", func(t *testing.T) {
		s := newTestStorage(t)
		entry := ledgerEntry{
			Source:      "https://example.com/model.zip",
			Kind:        SourceArchive,
			TotalSize:   1024,
			FileCount:   3,
			InstalledAt: time.Now().Truncate(time.Second),
		}
		if err := s.recordInstall("model", entry); err != nil {
			t.Fatalf("recordInstall() error = %v", err)
		}

		led, err := s.loadLedger()
		if err != nil {
			t.Fatalf("loadLedger() error = %v", err)
		}
		got, ok := led["model"]
		if !ok {
			t.Fatal("recorded entry not found")
		}
		if got.Source != entry.Source || got.Kind != entry.Kind ||
			got.TotalSize != entry.TotalSize || got.FileCount != entry.FileCount {
			t.Errorf("loaded entry = %+v, want %+v", got, entry)
		}
		if !got.InstalledAt.Equal(entry.InstalledAt) {
			t.Errorf("InstalledAt = %v, want %v", got.InstalledAt, entry.InstalledAt)
		}
	})

	t.Run("recording preserves other entries", func(t *testing.T) {
		s := newTestStorage(t)
		if err := s.recordInstall("first", ledgerEntry{Source: "a"}); err != nil {
			t.Fatalf("recordInstall() error = %v", err)
		}
		if err := s.recordInstall("second", ledgerEntry{Source: "b"}); err != nil {
			t.Fatalf("recordInstall() error = %v", err)
		}

		led, err := s.loadLedger()
		if err != nil {
			t.Fatalf("loadLedger() error = %v", err)
		}
		if len(led) != 2 {
			t.Errorf("ledger has %d entries, want 2", len(led))
		}
	})

	t.Run("forget removes only the named entry", func(t *testing.T) {
		s := newTestStorage(t)
		if err := s.recordInstall("keep", ledgerEntry{Source: "a"}); err != nil {
			t.Fatalf("recordInstall() error = %v", err)
		}
		if err := s.recordInstall("drop", ledgerEntry{Source: "b"}); err != nil {
			t.Fatalf("recordInstall() error = %v", err)
		}

		if err := s.forgetInstall("drop"); err != nil {
			t.Fatalf("forgetInstall() error = %v", err)
		}

		led, _ := s.loadLedger()
		if _, ok := led["drop"]; ok {
			t.Error("forgotten entry still present")
		}
		if _, ok := led["keep"]; !ok {
			t.Error("unrelated entry removed")
		}
	})

	t.Run("forgetting an unknown entry is a no-op", func(t *testing.T) {
		s := newTestStorage(t)
		if err := s.forgetInstall("never-installed"); err != nil {
			t.Fatalf("forgetInstall() error = %v", err)
		}
		// No ledger file should have been created for a no-op.
		if _, err := os.Stat(filepath.Join(s.baseDir, ledgerFile)); !os.IsNotExist(err) {
			t.Error("ledger file created by no-op forget")
		}
	})

	t.Run("corrupt ledger is an error", func(t *testing.T) {
		s := newTestStorage(t)
		if err := os.WriteFile(filepath.Join(s.baseDir, ledgerFile), []byte("{broken"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := s.loadLedger(); err == nil {
			t.Fatal("loadLedger() error = nil, want parse error")
		}
	})
}
