package provision

import (
	"context"
	"errors"
)

// Manager provides programmatic access to model artifact provisioning.
// All methods are safe for concurrent use.
// For CLI integration, use NewCommand instead.
type Manager interface {
	// Install provisions an artifact: verify capabilities, short-circuit
	// if the destination exists, acquire into a staging area, and publish
	// atomically. Returns ErrAlreadyInstalled if the destination already
	// exists; callers treat that as success.
	Install(ctx context.Context, ref ArtifactRef, opts ...InstallOption) error

	// IsInstalled reports whether the artifact's destination directory
	// exists. Existence alone is the install criterion; contents are not
	// validated.
	IsInstalled(ctx context.Context, name string) (bool, error)

	// ListInstalled returns all locally installed artifacts, merging
	// directory presence with ledger metadata where available.
	ListInstalled(ctx context.Context) ([]InstalledArtifact, error)

	// Path returns the absolute path to an installed artifact's directory.
	// Returns ErrNotInstalled if the artifact is not installed.
	Path(ctx context.Context, name string) (string, error)

	// Remove deletes a locally installed artifact.
	// Returns ErrNotInstalled if the artifact is not installed.
	Remove(ctx context.Context, name string) error

	// CheckEnvironment inspects the converter toolchain and reports which
	// capabilities, if any, are missing. It never attempts remediation.
	CheckEnvironment(ctx context.Context) (CapabilityReport, error)
}

// Ensure manager implements Manager interface.
var _ Manager = (*manager)(nil)

// NewManager creates a new Manager with the given configuration.
// Returns an error if the configuration is invalid (empty AppName).
func NewManager(cfg Config, opts ...ManagerOption) (Manager, error) {
	if cfg.AppName == "" {
		return nil, errors.New("provision: AppName is required")
	}

	mcfg := newManagerConfig()
	for _, opt := range opts {
		opt(mcfg)
	}

	storage, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return &manager{
		cfg:        cfg,
		httpClient: mcfg.httpClient,
		logger:     mcfg.logger,
		runner:     mcfg.runner,
		storage:    storage,
	}, nil
}
