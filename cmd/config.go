package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/contacts-cli/config"
)

// configKeys lists the keys accepted by config set.
var configKeys = map[string]func(cfg *config.Config, value string) error{
	"input_dir":       func(c *config.Config, v string) error { c.InputDir = v; return nil },
	"output_file":     func(c *config.Config, v string) error { c.OutputFile = v; return nil },
	"file_pattern":    func(c *config.Config, v string) error { c.FilePattern = v; return nil },
	"mode":            func(c *config.Config, v string) error { c.Mode = v; return nil },
	"on_read_error":   func(c *config.Config, v string) error { c.OnReadError = v; return nil },
	"person_match":    func(c *config.Config, v string) error { c.Attribution.PersonMatch = v; return nil },
	"company_keyword": func(c *config.Config, v string) error { c.Attribution.CompanyKeyword = v; return nil },
	"tagger":          func(c *config.Config, v string) error { c.Tagger.Backend = v; return nil },
	"log_level":       func(c *config.Config, v string) error { c.Log.Level = v; return nil },
	"log_format":      func(c *config.Config, v string) error { c.Log.Format = v; return nil },
	"output_format": func(c *config.Config, v string) error {
		c.OutputFormat = config.OutputFormat(v)
		return nil
	},
	"read_retries": func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid read_retries value: %w", err)
		}
		c.ReadRetries = n
		return nil
	},
	"min_token_length": func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid min_token_length value: %w", err)
		}
		c.Attribution.MinTokenLength = n
		return nil
	},
	"events_timeout": func(c *config.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid events_timeout value: %w", err)
		}
		c.Events.Timeout = d
		return nil
	},
	"debug": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid debug value: %w", err)
		}
		c.Debug = b
		return nil
	},
}

// NewConfigCommand creates the config command and its subcommands.
func NewConfigCommand(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `View and modify the contacts CLI configuration settings.`,
	}

	cmd.AddCommand(newConfigShowCommand(deps))
	cmd.AddCommand(newConfigInitCommand(deps))
	cmd.AddCommand(newConfigSetCommand(deps))
	cmd.AddCommand(newConfigPathCommand(deps))

	return cmd
}

func newConfigShowCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the effective configuration: defaults, then the config file,
then .env and CONTACTS_* environment variables. Credentials are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			redacted := cfg.Redacted()

			switch cfg.OutputFormat {
			case config.OutputFormatJSON:
				return writeJSON(deps.Stdout, redacted)
			case config.OutputFormatYAML:
				return writeYAML(deps.Stdout, redacted)
			}

			path, _ := deps.ConfigPath()
			data, err := redacted.YAML()
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "# Config file: %s\n", path)
			_, err = deps.Stdout.Write(data)
			return err
		},
	}
}

func newConfigInitCommand(deps *CommandDeps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  `Create a new configuration file with default values if one doesn't exist.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := deps.ConfigPath()
			if err != nil {
				return fmt.Errorf("getting config path: %w", err)
			}

			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(deps.Stdout, "Configuration file already exists: %s\n", path)
				fmt.Fprintln(deps.Stdout, "Use 'contacts config show' to view current settings, or --force to overwrite.")
				return nil
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking config file: %w", err)
			}

			defaults := config.DefaultConfig()
			if err := deps.SaveConfig(defaults, path); err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			fmt.Fprintf(deps.Stdout, "Created configuration file: %s\n", path)
			fmt.Fprintln(deps.Stdout, "\nDefault settings:")
			fmt.Fprintf(deps.Stdout, "  Input dir:     %s\n", defaults.InputDir)
			fmt.Fprintf(deps.Stdout, "  Output file:   %s\n", defaults.OutputFile)
			fmt.Fprintf(deps.Stdout, "  Mode:          %s\n", defaults.Mode)
			fmt.Fprintf(deps.Stdout, "  Output format: %s\n", defaults.OutputFormat)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigSetCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file.

Available keys:
  input_dir         - Folder (or single file) to scan
  output_file       - Where the JSON results are written
  file_pattern      - File name glob, e.g. *.pdf.txt
  mode              - Extraction mode (heuristic, entities)
  on_read_error     - Unreadable files (skip, abort)
  person_match      - Person name matching (exact, compact)
  company_keyword   - Company keyword (first-label, registrable)
  min_token_length  - Shortest name token that may match
  tagger            - Entity tagger (prose, rules)
  read_retries      - Extra read attempts after a failure
  events_timeout    - Redis connect timeout (e.g., 5s)
  log_level         - Log level (debug, info, warn, error)
  log_format        - Log format (auto, json, console)
  output_format     - Default output format (text, json, yaml)
  debug             - Enable debug mode (true/false)

Examples:
  contacts config set mode entities
  contacts config set output_file ~/contacts.json
  contacts config set read_retries 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			setter, ok := configKeys[key]
			if !ok {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			current, err := deps.LoadConfig()
			if err != nil {
				// If config doesn't exist, start with defaults.
				current = config.DefaultConfig()
			}
			updated := *current
			if err := setter(&updated, value); err != nil {
				return err
			}
			if err := updated.Validate(); err != nil {
				return err
			}

			path, err := deps.ConfigPath()
			if err != nil {
				return fmt.Errorf("getting config path: %w", err)
			}
			if err := deps.SaveConfig(&updated, path); err != nil {
				return fmt.Errorf("saving configuration: %w", err)
			}

			fmt.Fprintf(deps.Stdout, "Set %s = %s\n", key, value)
			return nil
		},
	}
}

func newConfigPathCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := deps.ConfigPath()
			if err != nil {
				return fmt.Errorf("getting config path: %w", err)
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	}
}
