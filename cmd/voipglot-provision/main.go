// Command voipglot-provision installs the speech-recognition and
// translation model artifacts VoipGlot needs for offline use.
//
// Configuration is loaded from environment variables:
//   - VOIPGLOT_MODELS_DIR: Override for the models directory (optional)
//   - VOIPGLOT_CONVERTER: Converter toolchain binary (optional)
//   - VOIPGLOT_CONVERTER_MIN_VERSION: Minimum converter version (optional)
//   - VOIPGLOT_QUANTIZATION: Quantization passed to the converter (optional)
//   - VOIPGLOT_DEBUG: Set to "1" for debug logging
package main

import (
	"errors"
	"log/slog"
	"os"

	provision "github.com/irakr/voipglot-provision"
)

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully,
	// including the already-installed short-circuit.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitInvalidArgs indicates invalid command line arguments.
	ExitInvalidArgs = 2

	// ExitPrecondition indicates a missing or outdated converter toolchain.
	ExitPrecondition = 3

	// ExitTransfer indicates a download or extraction failure.
	ExitTransfer = 4

	// ExitConversion indicates the converter toolchain failed.
	ExitConversion = 5

	// ExitCommit indicates the final move into place failed.
	ExitCommit = 6

	// ExitStorage indicates a filesystem operation failed.
	ExitStorage = 7

	// ExitNotInstalled indicates the artifact is not installed locally.
	ExitNotInstalled = 8
)

func main() {
	cfg := provision.Config{
		AppName: "voipglot",
		// ModelsDir can be set via VOIPGLOT_MODELS_DIR (handled by storage layer)
		Toolchain: provision.ToolchainConfig{
			Converter:    os.Getenv("VOIPGLOT_CONVERTER"),
			MinVersion:   os.Getenv("VOIPGLOT_CONVERTER_MIN_VERSION"),
			Quantization: os.Getenv("VOIPGLOT_QUANTIZATION"),
			InstallCommand: []string{
				"python", "-m", "pip", "install",
				"ctranslate2", "transformers", "torch", "huggingface_hub", "sentencepiece",
			},
		},
	}

	level := slog.LevelWarn
	if os.Getenv("VOIPGLOT_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	logger := slogAdapter{slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}

	cmd := provision.NewCommand(cfg, provision.WithLogger(logger))
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCodeFromError(err))
	}
}

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, provision.ErrAlreadyInstalled):
		return ExitSuccess
	case errors.Is(err, provision.ErrInvalidRef):
		return ExitInvalidArgs
	case errors.Is(err, provision.ErrPrecondition):
		return ExitPrecondition
	case errors.Is(err, provision.ErrTransfer):
		return ExitTransfer
	case errors.Is(err, provision.ErrConversion):
		return ExitConversion
	case errors.Is(err, provision.ErrCommit):
		return ExitCommit
	case errors.Is(err, provision.ErrStorage):
		return ExitStorage
	case errors.Is(err, provision.ErrNotInstalled):
		return ExitNotInstalled
	default:
		return ExitGeneralError
	}
}

// slogAdapter exposes a *slog.Logger through the provision.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a slogAdapter) Debug(msg string, keysAndValues ...any) { a.l.Debug(msg, keysAndValues...) }
func (a slogAdapter) Info(msg string, keysAndValues ...any)  { a.l.Info(msg, keysAndValues...) }
func (a slogAdapter) Warn(msg string, keysAndValues ...any)  { a.l.Warn(msg, keysAndValues...) }
func (a slogAdapter) Error(msg string, keysAndValues ...any) { a.l.Error(msg, keysAndValues...) }
