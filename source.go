package provision

import (
	"context"
	"fmt"
)

// source is the sealed acquisition strategy set, selected by
// ArtifactRef.Kind. Implemented by archiveSource and toolchainSource.
type source interface {
	// preflight verifies the environment capabilities this source needs.
	// Runs before any network or filesystem side effect.
	preflight(ctx context.Context, icfg *installConfig) error

	// acquire materializes the artifact inside the staging area. Side
	// effects are confined to the staging area and its contents; on error
	// the caller removes the staging area.
	acquire(ctx context.Context, stage *stagingArea, icfg *installConfig) error
}

// sourceFor selects the acquisition strategy for an artifact reference.
func (m *manager) sourceFor(ref ArtifactRef) (source, error) {
	switch ref.Kind {
	case SourceArchive:
		return &archiveSource{ref: ref, httpClient: m.httpClient, logger: m.logger}, nil
	case SourceToolchain:
		return &toolchainSource{ref: ref, toolchain: m.cfg.Toolchain, runner: m.runner, logger: m.logger}, nil
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", ErrInvalidRef, ref.Kind)
	}
}
