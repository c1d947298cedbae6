package cmd

import (
	"context"
	"fmt"

	"projdump/pkg/clipboard"
	"projdump/pkg/dump"
	"projdump/pkg/logging"
	"projdump/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appName = "projdump"

// NewRootCommand builds the projdump command. copier receives the document
// when --copy is set.
func NewRootCommand(copier clipboard.Copier) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "projdump [root]",
		Short: "Dump a project's text files into one annotated document",
		Long: `projdump walks a project directory, filters out excluded directories, binary
and oversized files and paths matched by the root .gitignore, and writes a
single document with a header, a directory tree, a manifest and the contents of
every selected file. The result is meant to be pasted into an LLM or a review.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runDump(cmd, root, copier)
		},
	}

	flags := rootCmd.Flags()
	flags.StringP(flagOutput, "o", "", "Output file path (default <root name>-dump-<YYYYMMDD-HHMM>.txt)")
	flags.StringSlice(flagIncludeExt, nil, "Only include files with these extensions, e.g. --include-ext .go,.md")
	flags.StringSlice(flagExcludeDir, nil, "Additional directory names to exclude")
	flags.StringSlice(flagExcludeExt, nil, "Additional file extensions to exclude")
	flags.Int64(flagMaxBytes, dump.DefaultMaxBytes, "Skip files larger than this many bytes")
	flags.Bool(flagNoTree, false, "Do not include the directory tree")
	flags.Bool(flagLineNumbers, false, "Prefix each content line with its line number")
	flags.Bool(flagNoGitignore, false, "Ignore the root .gitignore")
	flags.Int(flagWorkers, 0, "Number of concurrent file reads (default number of CPUs)")
	flags.Bool(flagTokens, false, "Add an estimated token count to the header")
	flags.String(flagModel, dump.DefaultTokenModel, "Model whose tokenizer is used for --tokens")
	flags.Bool(flagCopy, false, "Copy the document to the system clipboard")
	flags.BoolP(flagVerbose, "v", false, "Enable debug logging")
	flags.String(flagConfig, "", "Configuration file (default ./"+configFileName+" when present)")

	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the root command with the system clipboard.
func Execute(ctx context.Context) error {
	return NewRootCommand(clipboard.NewService()).ExecuteContext(ctx)
}

func runDump(cmd *cobra.Command, root string, copier clipboard.Copier) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(settings.GetBool(flagVerbose), appName, version.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := dump.NewSelectionConfig(argumentsFromSettings(settings, root))
	if err != nil {
		return err
	}

	var opts []dump.Option
	if settings.GetBool(flagTokens) {
		counter, counterErr := dump.NewTokenCounter(settings.GetString(flagModel))
		if counterErr != nil {
			logger.Warn("Token estimation unavailable", zap.Error(counterErr))
		} else {
			opts = append(opts, dump.WithTokenCounter(counter))
		}
	}

	result, err := dump.Run(cmd.Context(), cfg, logger, opts...)
	if err != nil {
		return err
	}

	if settings.GetBool(flagCopy) && copier != nil {
		if copyErr := copier.Copy(result.Text); copyErr != nil {
			logger.Warn("Failed to copy dump to clipboard", zap.Error(copyErr))
		} else {
			logger.Info("Copied dump to clipboard")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote dump for %d files to %s\n", result.FileCount, result.OutputPath)
	return nil
}
