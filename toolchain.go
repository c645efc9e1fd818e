package provision

import (
	"context"
	"fmt"
	"strings"
)

// toolchainSource acquires an artifact by delegating to an external
// converter toolchain that fetches a named model and writes its converted
// representation into the staging area in one call. Acquisition and
// transformation are fused: the tool performs both.
type toolchainSource struct {
	// ref is the artifact being provisioned. ref.Locator is the model
	// identifier the toolchain understands.
	ref ArtifactRef

	// toolchain configures the converter invocation.
	toolchain ToolchainConfig

	// runner executes the converter.
	runner CommandRunner

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// Ensure toolchainSource implements source.
var _ source = (*toolchainSource)(nil)

// preflight verifies the converter binary is available and recent enough
// before any network or filesystem side effect occurs.
func (s *toolchainSource) preflight(ctx context.Context, icfg *installConfig) error {
	return checkToolchain(ctx, s.toolchain, s.runner, s.logger, icfg.autoInstall)
}

// acquire runs the converter, which downloads the model and writes the
// converted weights, tokenizer, and configuration into the staging area.
// The invocation carries its configuration explicitly; no process-global
// environment is mutated. Failures wrap ErrConversion; the caller removes
// the staging area.
func (s *toolchainSource) acquire(ctx context.Context, stage *stagingArea, icfg *installConfig) error {
	converter := converterName(s.toolchain)

	if icfg.progressFn != nil {
		icfg.progressFn(InstallProgress{Phase: PhaseConvert, Tool: converter})
	}
	if s.logger != nil {
		s.logger.Info("converting model", "model", s.ref.Locator, "tool", converter)
	}

	args := []string{"--model", s.ref.Locator, "--output_dir", stage.dir, "--force"}
	if s.toolchain.Quantization != "" {
		args = append(args, "--quantization", s.toolchain.Quantization)
	}

	out, err := s.runner.Run(ctx, converter, args, s.toolchain.Env)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v: %s", ErrConversion, converter, s.ref.Locator, err, trimOutput(out))
	}

	if s.logger != nil {
		s.logger.Debug("conversion complete", "model", s.ref.Locator)
	}
	return nil
}

// trimOutput reduces tool output to its tail for error messages.
func trimOutput(out []byte) string {
	const maxLen = 400
	s := strings.TrimSpace(string(out))
	if len(s) > maxLen {
		s = "..." + s[len(s)-maxLen:]
	}
	return s
}
