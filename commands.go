package provision

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCommand creates a Cobra command tree for model provisioning.
// The returned command can run standalone or be added to a parent CLI's
// root command.
//
// Commands provided:
//   - models install <source> [--auto-install]
//   - models check
//   - models list
//   - models path <name>
//   - models remove <name> [--yes]
//   - models catalog
//
// Global flags: --json, --quiet
func NewCommand(cfg Config, opts ...ManagerOption) *cobra.Command {
	var (
		jsonOutput bool
		quiet      bool
	)

	// Manager will be created in PersistentPreRunE
	var mgr Manager

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Provision ML model artifacts",
		Long:  "Download, convert, and install the model artifacts VoipGlot uses for offline speech recognition and translation.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip manager creation for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			var err error
			mgr, err = NewManager(cfg, opts...)
			if err != nil {
				return fmt.Errorf("failed to initialize manager: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	cmd.AddCommand(installCmd(&mgr, &quiet))
	cmd.AddCommand(checkCmd(&mgr, &jsonOutput))
	cmd.AddCommand(listCmd(&mgr, &jsonOutput))
	cmd.AddCommand(pathCmd(&mgr))
	cmd.AddCommand(removeCmd(&mgr, &quiet))
	cmd.AddCommand(catalogCmd())

	return cmd
}

func installCmd(mgr *Manager, quiet *bool) *cobra.Command {
	var autoInstall bool

	cmd := &cobra.Command{
		Use:   "install <source>",
		Short: "Download and install a model artifact",
		Long: "Install a model artifact from a catalog name, an archive URL, or a model identifier\n" +
			"handled by the converter toolchain. Installing an already-installed artifact is a no-op.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ref, err := ResolveRef(args[0])
			if err != nil {
				return err
			}

			var opts []InstallOption
			if autoInstall {
				opts = append(opts, WithAutoInstall())
			}
			if !*quiet {
				opts = append(opts, WithProgress(progressPrinter(cmd.OutOrStdout())))
			}

			err = (*mgr).Install(ctx, ref, opts...)
			if err != nil {
				if errors.Is(err, ErrAlreadyInstalled) {
					if !*quiet {
						fmt.Fprintf(cmd.OutOrStdout(), "Artifact %s is already installed (remove it to reinstall)\n", ref.Name)
					}
					return nil
				}
				return err
			}

			if !*quiet {
				path, perr := (*mgr).Path(ctx, ref.Name)
				if perr != nil {
					path = ref.Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully installed %s at %s\n", ref.Name, path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoInstall, "auto-install", false, "Attempt to install a missing converter toolchain before failing")
	return cmd
}

func checkCmd(mgr *Manager, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check converter toolchain availability",
		Long:  "Verify the converter toolchain is installed and meets the minimum version, without installing anything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := (*mgr).CheckEnvironment(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if *jsonOutput {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(w, "Converter: %s\n", report.Converter)
				if report.Path != "" {
					fmt.Fprintf(w, "Path:      %s\n", report.Path)
				}
				if report.Version != "" {
					fmt.Fprintf(w, "Version:   %s\n", report.Version)
				}
				if report.MinVersion != "" {
					fmt.Fprintf(w, "Required:  >= %s\n", report.MinVersion)
				}
				for _, msg := range report.Missing {
					fmt.Fprintf(w, "Missing:   %s\n", msg)
				}
			}

			if !report.OK() {
				return fmt.Errorf("%w: %s", ErrPrecondition, strings.Join(report.Missing, "; "))
			}
			if !*jsonOutput {
				fmt.Fprintln(w, "Environment is ready.")
			}
			return nil
		},
	}
}

func listCmd(mgr *Manager, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			artifacts, err := (*mgr).ListInstalled(cmd.Context())
			if err != nil {
				return err
			}
			return outputInstalledArtifacts(cmd.OutOrStdout(), artifacts, *jsonOutput)
		},
	}
}

func pathCmd(mgr *Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "path <name>",
		Short: "Print the path of an installed artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := (*mgr).Path(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func removeCmd(mgr *Manager, quiet *bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an installed artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Remove %s? [y/N]: ", name)
				if !confirmPrompt(cmd.InOrStdin()) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			if err := (*mgr).Remove(cmd.Context(), name); err != nil {
				return err
			}

			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List well-known artifacts installable by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tSOURCE")
			for _, entry := range Catalog() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Alias, entry.Ref.Kind, entry.Ref.Locator)
			}
			return w.Flush()
		},
	}
}

// progressPrinter renders line-oriented progress at stage boundaries, with
// a carriage-return byte counter during the download phase.
func progressPrinter(w io.Writer) func(InstallProgress) {
	var downloading, extracting bool

	endDownload := func() {
		if downloading {
			fmt.Fprintln(w)
			downloading = false
		}
	}

	return func(p InstallProgress) {
		switch p.Phase {
		case PhasePreflight:
			fmt.Fprintln(w, "Checking environment...")
		case PhaseDownload:
			if p.BytesTotal > 0 {
				pct := float64(p.BytesCompleted) / float64(p.BytesTotal) * 100
				fmt.Fprintf(w, "\rDownloading... %s / %s (%.0f%%)",
					formatBytes(p.BytesCompleted), formatBytes(p.BytesTotal), pct)
			} else {
				fmt.Fprintf(w, "\rDownloading... %s", formatBytes(p.BytesCompleted))
			}
			downloading = true
		case PhaseExtract:
			endDownload()
			if !extracting {
				fmt.Fprintln(w, "Extracting...")
				extracting = true
			}
		case PhaseConvert:
			fmt.Fprintf(w, "Fetching and converting with %s (this may take a while)...\n", p.Tool)
		case PhaseCommit:
			endDownload()
			fmt.Fprintln(w, "Installing...")
		}
	}
}

// outputInstalledArtifacts writes artifacts as JSON or a text table.
func outputInstalledArtifacts(w io.Writer, artifacts []InstalledArtifact, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(artifacts)
	}

	if len(artifacts) == 0 {
		fmt.Fprintln(w, "No artifacts installed.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tFILES\tINSTALLED\tSOURCE")
	for _, a := range artifacts {
		installed := ""
		if !a.InstalledAt.IsZero() {
			installed = a.InstalledAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			a.Name, formatBytes(a.SizeBytes), a.FileCount, installed, a.Source)
	}
	return tw.Flush()
}

// confirmPrompt reads a line and reports whether it is an affirmative answer.
func confirmPrompt(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// formatBytes renders a byte count in human-readable units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
