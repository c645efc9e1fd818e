package provision

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnvVarName(t *testing.T) {
	tests := []struct {
		appName string
		want    string
	}{
		{"voipglot", "VOIPGLOT_MODELS_DIR"},
		{"MyApp", "MYAPP_MODELS_DIR"},
	}
	for _, tt := range tests {
		if got := envVarName(tt.appName); got != tt.want {
			t.Errorf("envVarName(%q) = %q, want %q", tt.appName, got, tt.want)
		}
	}
}

func TestNewStorageDirPriority(t *testing.T) {
	t.Run("env var wins over config", func(t *testing.T) {
		envDir := t.TempDir()
		t.Setenv("PROVTEST_MODELS_DIR", envDir)

		s, err := newStorage(Config{AppName: "provtest", ModelsDir: t.TempDir()})
		if err != nil {
			t.Fatalf("newStorage() error = %v", err)
		}
		if s.baseDir != envDir {
			t.Errorf("baseDir = %q, want %q", s.baseDir, envDir)
		}
	})

	t.Run("config wins over platform default", func(t *testing.T) {
		cfgDir := t.TempDir()
		s, err := newStorage(Config{AppName: "provtest", ModelsDir: cfgDir})
		if err != nil {
			t.Fatalf("newStorage() error = %v", err)
		}
		if s.baseDir != cfgDir {
			t.Errorf("baseDir = %q, want %q", s.baseDir, cfgDir)
		}
	})
}

func TestArtifactPaths(t *testing.T) {
	s := newTestStorage(t)

	dest := s.artifactPath("vosk-model")
	if dest != filepath.Join(s.baseDir, "vosk-model") {
		t.Errorf("artifactPath() = %q", dest)
	}
	if got := s.stagingPath("vosk-model"); got != dest+stagingSuffix {
		t.Errorf("stagingPath() = %q, want %q", got, dest+stagingSuffix)
	}
}

func TestAtomicWrite(t *testing.T) {
	s := newTestStorage(t)

	t.Run("writes file and removes temp", func(t *testing.T) {
		path := filepath.Join(s.baseDir, "sub", "file.json")
		if err := s.atomicWrite(path, []byte(`{"ok":true}`)); err != nil {
			t.Fatalf("atomicWrite() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != `{"ok":true}` {
			t.Errorf("content = %q", data)
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Error("temp file remains after write")
		}
	})

	t.Run("overwrites existing content", func(t *testing.T) {
		path := filepath.Join(s.baseDir, "file")
		if err := s.atomicWrite(path, []byte("old")); err != nil {
			t.Fatalf("atomicWrite() error = %v", err)
		}
		if err := s.atomicWrite(path, []byte("new")); err != nil {
			t.Fatalf("atomicWrite() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "new" {
			t.Errorf("content = %q, want new", data)
		}
	})
}

func TestDirStats(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a"), []byte("12345"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "b"), []byte("123"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	size, files, err := dirStats(dir)
	if err != nil {
		t.Fatalf("dirStats() error = %v", err)
	}
	if size != 8 {
		t.Errorf("size = %d, want 8", size)
	}
	if files != 2 {
		t.Errorf("files = %d, want 2", files)
	}
}

func TestFileLock(t *testing.T) {
	t.Run("lock and unlock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.lock")
		lock, err := newFileLock(path, DefaultLockTimeout)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		if err := lock.Lock(); err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		if err := lock.Unlock(); err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
	})

	t.Run("relock after unlock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.lock")

		first, err := newFileLock(path, DefaultLockTimeout)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		if err := first.Lock(); err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		if err := first.Unlock(); err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}

		second, err := newFileLock(path, DefaultLockTimeout)
		if err != nil {
			t.Fatalf("newFileLock() error = %v", err)
		}
		if err := second.Lock(); err != nil {
			t.Fatalf("second Lock() error = %v", err)
		}
		second.Unlock()
	})
}
