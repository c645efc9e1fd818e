package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// manager is the concrete implementation of the Manager interface.
type manager struct {
	// cfg holds the module configuration.
	cfg Config

	// httpClient is used for archive downloads.
	httpClient HTTPClient

	// logger receives diagnostic messages. May be nil.
	logger Logger

	// runner executes external toolchain commands.
	runner CommandRunner

	// storage handles local filesystem operations.
	storage *storage
}

// Install runs the provisioning pipeline for one artifact. Stages execute
// strictly in order; each may short-circuit the rest:
//
//	preflight -> presence -> acquire (+convert) -> atomic commit -> ledger
//
// Two concurrent installs of the same artifact are not coordinated: both
// may pass the presence check and race on the final rename, last mover
// wins. This tool targets single-operator setup flows.
func (m *manager) Install(ctx context.Context, ref ArtifactRef, opts ...InstallOption) error {
	if ref.Name == "" || ref.Locator == "" {
		return fmt.Errorf("%w: name and locator are required", ErrInvalidRef)
	}

	icfg := &installConfig{}
	for _, opt := range opts {
		opt(icfg)
	}

	src, err := m.sourceFor(ref)
	if err != nil {
		return err
	}

	// Preflight: capability verification happens exactly once, before any
	// network or filesystem side effect.
	if icfg.progressFn != nil {
		icfg.progressFn(InstallProgress{Phase: PhasePreflight})
	}
	if err := src.preflight(ctx, icfg); err != nil {
		return err
	}

	// Presence: the destination existing is conclusive proof of a
	// completed prior install. The parent directory is created first so
	// the check (and the later rename) have somewhere to live.
	dest := m.storage.artifactPath(ref.Name)
	if err := m.storage.ensureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	if _, err := os.Stat(dest); err == nil {
		if m.logger != nil {
			m.logger.Info("artifact already installed", "artifact", ref.Name, "path", dest)
		}
		return fmt.Errorf("%w: %s", ErrAlreadyInstalled, dest)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: stat %s: %v", ErrStorage, dest, err)
	}

	// Acquisition (and, for toolchain sources, fused transformation) into
	// a fresh staging area. Any failure removes the staging area; the
	// destination is never touched.
	stage := newStagingArea(dest, m.logger)
	if err := stage.create(); err != nil {
		return err
	}
	if err := src.acquire(ctx, stage, icfg); err != nil {
		stage.cleanup()
		return err
	}

	// Atomic commit: one rename publishes the whole artifact. On failure
	// the staging area is retained for manual recovery (see commit).
	if icfg.progressFn != nil {
		icfg.progressFn(InstallProgress{Phase: PhaseCommit})
	}
	if err := stage.commit(); err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Info("artifact installed", "artifact", ref.Name, "path", dest)
	}

	// Ledger record is advisory; presence is the source of truth, so a
	// failure here is a warning, not a failed install.
	if err := m.recordInstalled(ref, dest); err != nil && m.logger != nil {
		m.logger.Warn("failed to record install", "artifact", ref.Name, "error", err)
	}

	return nil
}

// recordInstalled writes the ledger entry for a freshly committed artifact.
func (m *manager) recordInstalled(ref ArtifactRef, dest string) error {
	size, files, err := dirStats(dest)
	if err != nil {
		return err
	}
	return m.storage.recordInstall(ref.Name, ledgerEntry{
		Source:      ref.Locator,
		Kind:        ref.Kind,
		TotalSize:   size,
		FileCount:   files,
		InstalledAt: time.Now(),
	})
}

// IsInstalled reports whether the artifact's destination directory exists.
func (m *manager) IsInstalled(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrInvalidRef
	}
	_, err := os.Stat(m.storage.artifactPath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrStorage, err)
}

// ListInstalled scans the models directory and returns one entry per
// artifact directory, enriched with ledger metadata when recorded.
func (m *manager) ListInstalled(ctx context.Context) ([]InstalledArtifact, error) {
	entries, err := os.ReadDir(m.storage.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	led, err := m.storage.loadLedger()
	if err != nil {
		return nil, err
	}

	var artifacts []InstalledArtifact
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, stagingSuffix) {
			continue
		}

		artifact := InstalledArtifact{
			Name: name,
			Path: m.storage.artifactPath(name),
		}
		if rec, ok := led[name]; ok {
			artifact.Source = rec.Source
			artifact.Kind = rec.Kind
			artifact.SizeBytes = rec.TotalSize
			artifact.FileCount = rec.FileCount
			artifact.InstalledAt = rec.InstalledAt
		} else if size, files, err := dirStats(artifact.Path); err == nil {
			artifact.SizeBytes = size
			artifact.FileCount = files
		}
		artifacts = append(artifacts, artifact)
	}

	return artifacts, nil
}

// Path returns the absolute path to an installed artifact's directory.
func (m *manager) Path(ctx context.Context, name string) (string, error) {
	installed, err := m.IsInstalled(ctx, name)
	if err != nil {
		return "", err
	}
	if !installed {
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}
	return m.storage.artifactPath(name), nil
}

// Remove deletes a locally installed artifact and its ledger entry.
func (m *manager) Remove(ctx context.Context, name string) error {
	installed, err := m.IsInstalled(ctx, name)
	if err != nil {
		return err
	}
	if !installed {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}

	if err := m.storage.removeArtifactDir(name); err != nil {
		return err
	}
	return m.storage.forgetInstall(name)
}

// CheckEnvironment inspects the converter toolchain without side effects.
func (m *manager) CheckEnvironment(ctx context.Context) (CapabilityReport, error) {
	return inspectToolchain(ctx, m.cfg.Toolchain, m.runner), nil
}
