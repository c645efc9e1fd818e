// Package provision turns a remote model reference (an archive URL or a
// model identifier handled by an external converter toolchain) into a
// ready-to-use local artifact directory for offline use by VoipGlot.
//
// The package serves two primary use cases:
//
//  1. Programmatic API via the Manager interface - Applications can use
//     NewManager to create a Manager that provides methods for installing,
//     listing, and removing model artifacts.
//
//  2. Embeddable CLI via NewCommand - Parent CLI tools can attach a complete
//     "models" subcommand tree to their Cobra root command, providing
//     commands like "mytool models install", "mytool models list", etc.
//
// # Pipeline
//
// Every install runs the same pipeline: verify environment capabilities,
// short-circuit if the destination directory already exists, acquire the
// artifact into a staging area next to the destination, then publish the
// staging area with a single atomic rename. A destination directory is only
// ever observable as absent or fully populated.
//
// # Idempotency
//
// Presence of the destination directory is conclusive proof of a completed
// prior install. Installs never re-validate or refresh existing artifacts;
// remove the directory to force a reinstall.
//
// # Storage
//
// Artifacts are stored in platform-appropriate directories:
//   - Linux: $XDG_DATA_HOME/<app>/models/ or ~/.local/share/<app>/models/
//   - macOS: ~/Library/Application Support/<app>/models/
//   - Windows: %APPDATA%\<app>\models\
//
// The storage location can be overridden via Config.ModelsDir or the
// <APPNAME>_MODELS_DIR environment variable.
package provision
