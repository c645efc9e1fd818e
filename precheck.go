package provision

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/mod/semver"
)

// converterName returns the configured converter binary, falling back to
// DefaultConverter.
func converterName(tc ToolchainConfig) string {
	if tc.Converter != "" {
		return tc.Converter
	}
	return DefaultConverter
}

// CapabilityReport describes the state of the converter toolchain on this
// machine. Returned by Manager.CheckEnvironment.
type CapabilityReport struct {
	// Converter is the converter binary name that was checked.
	Converter string

	// Path is the resolved binary path, or "" if the binary is missing.
	Path string

	// Version is the version the binary reported, or "" if unknown.
	Version string

	// MinVersion is the configured minimum version, or "" if none.
	MinVersion string

	// Missing lists the unmet capabilities, one message each.
	// Empty means the environment is ready.
	Missing []string
}

// OK reports whether every required capability is met.
func (r CapabilityReport) OK() bool {
	return len(r.Missing) == 0
}

// inspectToolchain checks the converter binary and version without side
// effects and returns what it found.
func inspectToolchain(ctx context.Context, tc ToolchainConfig, runner CommandRunner) CapabilityReport {
	report := CapabilityReport{
		Converter:  converterName(tc),
		MinVersion: tc.MinVersion,
	}

	path, err := runner.LookPath(report.Converter)
	if err != nil {
		msg := fmt.Sprintf("converter %q not found in PATH", report.Converter)
		if len(tc.InstallCommand) > 0 {
			msg += fmt.Sprintf(" (install with: %s)", strings.Join(tc.InstallCommand, " "))
		}
		report.Missing = append(report.Missing, msg)
		return report
	}
	report.Path = path

	if tc.MinVersion == "" {
		return report
	}

	out, err := runner.Run(ctx, report.Converter, []string{"--version"}, tc.Env)
	if err != nil {
		report.Missing = append(report.Missing,
			fmt.Sprintf("converter %q did not report a version: %v", report.Converter, err))
		return report
	}

	version := parseToolVersion(out)
	report.Version = version

	required := canonVersion(tc.MinVersion)
	actual := canonVersion(version)
	switch {
	case required == "":
		report.Missing = append(report.Missing,
			fmt.Sprintf("configured minimum version %q is not a valid version", tc.MinVersion))
	case actual == "":
		report.Missing = append(report.Missing,
			fmt.Sprintf("converter %q reported unrecognized version %q (require >= %s)",
				report.Converter, strings.TrimSpace(string(out)), tc.MinVersion))
	case semver.Compare(actual, required) < 0:
		report.Missing = append(report.Missing,
			fmt.Sprintf("converter %q version %s is below required %s",
				report.Converter, version, tc.MinVersion))
	}

	return report
}

// checkToolchain verifies the converter capability set once, before any
// side-effecting stage runs. With autoInstall, a missing binary triggers a
// single logged run of the configured install command followed by
// re-verification. A version shortfall is always fatal.
func checkToolchain(ctx context.Context, tc ToolchainConfig, runner CommandRunner, logger Logger, autoInstall bool) error {
	report := inspectToolchain(ctx, tc, runner)
	if report.OK() {
		return nil
	}

	if report.Path == "" && autoInstall && len(tc.InstallCommand) > 0 {
		if logger != nil {
			logger.Info("converter missing, attempting install",
				"converter", report.Converter,
				"command", strings.Join(tc.InstallCommand, " "))
		}
		out, err := runner.Run(ctx, tc.InstallCommand[0], tc.InstallCommand[1:], tc.Env)
		if err != nil {
			return fmt.Errorf("%w: installing %s: %v: %s",
				ErrPrecondition, report.Converter, err, trimOutput(out))
		}

		report = inspectToolchain(ctx, tc, runner)
		if report.OK() {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrPrecondition, strings.Join(report.Missing, "; "))
}

// parseToolVersion extracts a version number from tool output such as
// "ct2-transformers-converter 3.24.0" or "version v1.2". Returns "" if no
// version-like token is found on the first line.
func parseToolVersion(out []byte) string {
	line := string(out)
	if idx := strings.IndexByte(line, '\n'); idx != -1 {
		line = line[:idx]
	}
	for _, field := range strings.Fields(line) {
		candidate := strings.TrimPrefix(field, "v")
		if candidate == "" || !unicode.IsDigit(rune(candidate[0])) {
			continue
		}
		if canonVersion(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// canonVersion converts a version string to the canonical "vX.Y.Z" form
// understood by semver. Returns "" if the string is not a valid version.
func canonVersion(v string) string {
	v = "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
