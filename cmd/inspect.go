package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/contacts-cli/config"
	pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
	"github.com/otherjamesbrown/contacts-cli/pkg/source"
)

const stdinName = "stdin"

// NewInspectCommand creates the inspect command.
func NewInspectCommand(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()
	flags := &strategyFlags{}
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the record extracted from a single document",
		Long: `Run one extraction strategy over a single document and print the record
it produces, without writing the output file.

Examples:
  contacts inspect ./dumps/invoice.pdf.txt
  contacts inspect ./dumps/invoice.pdf.txt --mode entities --tagger rules
  pdftotext invoice.pdf - | contacts inspect --stdin`,
		Args: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			cfg := *base
			flags.apply(cmd, &cfg)
			cfg.Resolve()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			var src source.Source
			if fromStdin {
				raw, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				src = source.NewMemory(map[string]string{stdinName: string(raw)})
			} else {
				src = source.NewFS(source.FSConfig{
					Root:         args[0],
					MaxFileBytes: cfg.MaxFileBytes,
					ReadRetries:  cfg.ReadRetries,
				})
			}
			return runInspect(cmd, deps, &cfg, src)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the document from standard input")

	return cmd
}

func runInspect(cmd *cobra.Command, deps *CommandDeps, cfg *config.Config, src source.Source) error {
	ctx := cmd.Context()
	strat, err := newStrategy(cfg, deps)
	if err != nil {
		return err
	}

	entries, err := src.Discover(ctx)
	if err != nil {
		return withSuggestion(deps.Stderr, "inspect failed", pferrors.ClassifyError(err, pferrors.StageDiscover, ""))
	}
	if len(entries) != 1 {
		return fmt.Errorf("expected a single document, found %d", len(entries))
	}
	entry := entries[0]

	doc, err := src.Read(ctx, entry)
	if err != nil {
		return withSuggestion(deps.Stderr, "inspect failed", pferrors.ClassifyError(err, pferrors.StageRead, entry.RelPath))
	}
	rec, err := strat.Extract(ctx, doc)
	if err != nil {
		return withSuggestion(deps.Stderr, "inspect failed", pferrors.ClassifyError(err, pferrors.StageExtract, entry.RelPath))
	}

	if rec == nil {
		switch cfg.OutputFormat {
		case config.OutputFormatJSON:
			return writeJSON(deps.Stdout, nil)
		case config.OutputFormatYAML:
			return writeYAML(deps.Stdout, nil)
		default:
			fmt.Fprintf(deps.Stdout, "No contact details found in %s\n", filepath.ToSlash(entry.RelPath))
			return nil
		}
	}

	rec.Stamp(1, entry.Name, entry.RelPath)
	if cfg.OutputFormat == config.OutputFormatYAML {
		return writeYAML(deps.Stdout, rec)
	}
	return writeJSON(deps.Stdout, rec)
}
