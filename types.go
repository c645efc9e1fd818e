package provision

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultConverter is the converter toolchain binary used when
// ToolchainConfig.Converter is empty.
const DefaultConverter = "ct2-transformers-converter"

// SourceKind identifies how an artifact is acquired.
type SourceKind string

const (
	// SourceArchive retrieves a compressed archive over HTTP and unpacks it.
	SourceArchive SourceKind = "archive"

	// SourceToolchain delegates to an external converter toolchain that
	// fetches and converts a named model in one call.
	SourceToolchain SourceKind = "toolchain"
)

// Config configures the provision module.
type Config struct {
	// AppName determines the storage directory name.
	// Example: "voipglot" → ~/.local/share/voipglot/models/ on Linux
	AppName string

	// ModelsDir overrides the default models directory.
	// If empty, uses platform-appropriate default.
	// Can also be set via environment variable: <APPNAME>_MODELS_DIR
	ModelsDir string

	// Toolchain configures the external converter used for
	// SourceToolchain artifacts.
	Toolchain ToolchainConfig
}

// ToolchainConfig describes the external converter toolchain. All state is
// passed explicitly into each invocation; the package never mutates the
// process environment.
type ToolchainConfig struct {
	// Converter is the name or path of the converter binary.
	// Defaults to DefaultConverter if empty.
	Converter string

	// MinVersion is the minimum required converter version, e.g. "3.10.0".
	// Empty disables the version check.
	MinVersion string

	// Quantization is an optional quantization passed to the converter,
	// e.g. "int8".
	Quantization string

	// InstallCommand is the command suggested (or, with WithAutoInstall,
	// run) to install a missing converter.
	// Example: {"python", "-m", "pip", "install", "ctranslate2"}
	InstallCommand []string

	// Env holds additional KEY=VALUE entries for converter invocations,
	// appended to the current process environment per call.
	Env []string
}

// ArtifactRef identifies what to provision. Immutable once constructed.
type ArtifactRef struct {
	// Kind selects the acquisition strategy.
	Kind SourceKind

	// Locator is the archive URL or the toolchain model identifier.
	Locator string

	// Name is the human-readable artifact name derived from the locator.
	// It is also the destination directory name.
	Name string
}

// String returns the locator, the canonical way to spell the reference.
func (r ArtifactRef) String() string {
	return r.Locator
}

// archiveSuffixes are the archive extensions recognized in URL paths,
// longest first so ".tar.gz" wins over ".gz".
var archiveSuffixes = []string{".tar.gz", ".tgz", ".zip"}

// ParseArtifactRef parses a source locator into an ArtifactRef. Locators
// with an http or https scheme become SourceArchive references named after
// the URL basename with the archive suffix stripped; anything else becomes a
// SourceToolchain model identifier named after the identifier with "/"
// replaced by "--". Returns ErrInvalidRef if the locator is empty or
// malformed.
func ParseArtifactRef(s string) (ArtifactRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ArtifactRef{}, ErrInvalidRef
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return ArtifactRef{}, fmt.Errorf("%w: %v", ErrInvalidRef, err)
		}
		name := archiveName(u.Path)
		if name == "" {
			return ArtifactRef{}, fmt.Errorf("%w: no artifact name in URL path %q", ErrInvalidRef, u.Path)
		}
		return ArtifactRef{Kind: SourceArchive, Locator: s, Name: name}, nil
	}

	if strings.ContainsAny(s, " \t") {
		return ArtifactRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	return ArtifactRef{
		Kind:    SourceToolchain,
		Locator: s,
		Name:    strings.ReplaceAll(s, "/", "--"),
	}, nil
}

// archiveName derives an artifact name from a URL path: the basename with a
// recognized archive suffix stripped. Returns "" if no name remains.
func archiveName(urlPath string) string {
	base := urlPath
	if idx := strings.LastIndex(base, "/"); idx != -1 {
		base = base[idx+1:]
	}
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	return base
}

// Install progress phases, in pipeline order.
const (
	PhasePreflight = "preflight"
	PhaseDownload  = "download"
	PhaseExtract   = "extract"
	PhaseConvert   = "convert"
	PhaseCommit    = "commit"
)

// InstallProgress reports progress during an install operation.
type InstallProgress struct {
	// Phase indicates the current pipeline phase.
	Phase string

	// BytesTotal is the total bytes to download, or 0 if unknown.
	// Only set during the download phase.
	BytesTotal int64

	// BytesCompleted is the bytes downloaded so far.
	// Only set during the download phase.
	BytesCompleted int64

	// Tool is the converter binary being invoked.
	// Only set during the convert phase.
	Tool string

	// CurrentFile is the file being written.
	// Only set during the extract phase.
	CurrentFile string
}

// InstalledArtifact contains information about a locally installed artifact.
type InstalledArtifact struct {
	// Name is the artifact (and destination directory) name.
	Name string

	// Source is the locator the artifact was installed from, if recorded.
	Source string

	// Kind is the acquisition strategy used, if recorded.
	Kind SourceKind

	// SizeBytes is the total size of all artifact files.
	SizeBytes int64

	// FileCount is the number of files in the artifact.
	FileCount int

	// InstalledAt is when the artifact was installed, if recorded.
	InstalledAt time.Time

	// Path is the absolute path to the artifact directory.
	Path string
}
