// Package main provides the contacts CLI entry point.
// contacts scans PDF text dumps for emails and phone numbers and writes what
// it finds to a JSON file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/contacts-cli/cmd"
	"github.com/otherjamesbrown/contacts-cli/config"
	"github.com/otherjamesbrown/contacts-cli/pkg/buildinfo"
)

// Global flags and state.
var (
	cfgFile      string
	outputFormat string
	logFormat    string
	debug        bool

	// cfg holds the loaded configuration.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Extract contact details from PDF text dumps",
	Long: `contacts scans a folder of PDF text dumps (*.pdf.txt) for email addresses,
mobile numbers and landlines, and writes one record per file to a JSON file.

COMMON WORKFLOWS:
  Extract a folder:   contacts extract ./dumps --out contacts.json
  Check one file:     contacts inspect ./dumps/invoice.pdf.txt
  Address fragments:  contacts extract ./dumps --mode entities

CONFIGURATION:
  Settings come from ~/.contacts/config.yaml, then a .env file in the
  current folder, then CONTACTS_* environment variables, then flags.
  Run 'contacts config show' to see the effective values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != "" && !config.OutputFormat(outputFormat).IsValid() {
			return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", outputFormat)
		}
		return nil
	},
}

// loadConfig loads the configuration once and applies the global flags.
func loadConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	loaded, err := config.LoadConfigFrom(cfgFile, config.DefaultEnvFile)
	if err != nil {
		return nil, err
	}

	// Override with command-line flags.
	if outputFormat != "" {
		loaded.OutputFormat = config.OutputFormat(outputFormat)
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}
	if debug {
		loaded.Debug = true
	}
	loaded.Resolve()

	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	cfg = loaded
	return cfg, nil
}

// configPath returns the config file in use.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build time of the contacts CLI.

Use --output json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout(), config.OutputFormat(outputFormat))
	},
}

func printVersion(w io.Writer, format config.OutputFormat) error {
	info := buildinfo.Get("contacts")

	switch format {
	case config.OutputFormatJSON, config.OutputFormatYAML:
		return cmd.WriteStructured(w, format, info)
	}

	fmt.Fprintf(w, "contacts version %s\n", info.Version)
	fmt.Fprintf(w, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  Built:      %s\n", info.BuildTime)
	fmt.Fprintf(w, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "  Platform:   %s\n", info.Platform)
	return nil
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for contacts.

To load completions:

Bash:
  $ source <(contacts completion bash)

Zsh:
  $ contacts completion zsh > "${fpath[1]}/_contacts"

Fish:
  $ contacts completion fish | source

PowerShell:
  PS> contacts completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.contacts/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: auto, json, console")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	deps := cmd.DefaultDeps()
	deps.LoadConfig = loadConfig
	deps.ConfigPath = configPath
	deps.SaveConfig = config.SaveConfig

	rootCmd.AddGroup(
		&cobra.Group{ID: "extract", Title: "Extraction:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	extractCmd := cmd.NewExtractCommand(deps)
	extractCmd.GroupID = "extract"
	rootCmd.AddCommand(extractCmd)

	inspectCmd := cmd.NewInspectCommand(deps)
	inspectCmd.GroupID = "extract"
	rootCmd.AddCommand(inspectCmd)

	configCmd := cmd.NewConfigCommand(deps)
	configCmd.GroupID = "setup"
	rootCmd.AddCommand(configCmd)

	completionCmd.GroupID = "setup"
	rootCmd.AddCommand(completionCmd)

	versionCmd.GroupID = "setup"
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Cancel the run on SIGINT/SIGTERM; the extraction loop stops between files.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
