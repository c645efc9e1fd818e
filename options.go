package provision

import (
	"context"
	"net/http"
	"os"
	"os/exec"
)

// InstallOption configures an install operation.
type InstallOption func(*installConfig)

// installConfig holds configuration for an install operation.
type installConfig struct {
	// autoInstall enables best-effort installation of a missing converter.
	autoInstall bool

	// progressFn is called with progress updates during the install.
	progressFn func(InstallProgress)
}

// WithAutoInstall enables a single best-effort run of the configured
// ToolchainConfig.InstallCommand when the converter binary is missing,
// followed by re-verification. The remediation attempt is logged. Without
// this option a missing converter is a fatal precondition failure.
func WithAutoInstall() InstallOption {
	return func(c *installConfig) {
		c.autoInstall = true
	}
}

// WithProgress sets a callback for progress updates during the install.
// The callback is invoked synchronously from the installing goroutine.
func WithProgress(fn func(InstallProgress)) InstallOption {
	return func(c *installConfig) {
		c.progressFn = fn
	}
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

// managerConfig holds configuration for Manager construction.
type managerConfig struct {
	// httpClient is used for archive downloads.
	httpClient HTTPClient

	// logger receives diagnostic log messages.
	logger Logger

	// runner executes external toolchain commands.
	runner CommandRunner
}

// newManagerConfig returns a managerConfig with default values.
func newManagerConfig() *managerConfig {
	return &managerConfig{
		httpClient: http.DefaultClient,
		runner:     execRunner{},
	}
}

// WithHTTPClient sets a custom HTTP client for archive downloads.
// Useful for testing with mock servers or customizing timeouts.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client HTTPClient) ManagerOption {
	return func(c *managerConfig) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for diagnostic output.
// If not set, logging is disabled.
func WithLogger(logger Logger) ManagerOption {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithCommandRunner sets a custom runner for external toolchain commands.
// Useful for testing without a real converter installed.
// If not set, commands run via os/exec.
func WithCommandRunner(runner CommandRunner) ManagerOption {
	return func(c *managerConfig) {
		c.runner = runner
	}
}

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the interface for diagnostic logging.
// Compatible with slog, zap, logrus, and other structured loggers.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
}

// CommandRunner is the interface for locating and running external
// toolchain commands.
type CommandRunner interface {
	// LookPath searches for an executable in the directories named by the
	// PATH environment variable.
	LookPath(name string) (string, error)

	// Run executes the named command with the given arguments and extra
	// environment entries, blocking until it exits. It returns the
	// combined stdout and stderr output.
	Run(ctx context.Context, name string, args []string, env []string) ([]byte, error)
}

// execRunner implements CommandRunner using os/exec.
type execRunner struct{}

// Ensure execRunner implements CommandRunner.
var _ CommandRunner = execRunner{}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes the command with the extra environment appended to the
// current process environment. The process environment itself is never
// mutated.
func (execRunner) Run(ctx context.Context, name string, args []string, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.CombinedOutput()
}
