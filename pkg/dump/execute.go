package dump

import (
	"context"
	"fmt"
	"time"

	"projdump/pkg/ignore"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option customizes Assemble and Run.
type Option func(*runOptions)

type runOptions struct {
	clock        func() time.Time
	tokenCounter TokenCounter
	fs           afero.Fs
}

// WithClock sets the source of the header's generation timestamp.
func WithClock(clock func() time.Time) Option {
	return func(options *runOptions) {
		options.clock = clock
	}
}

// WithTokenCounter adds a token estimate for the file contents to the header.
func WithTokenCounter(counter TokenCounter) Option {
	return func(options *runOptions) {
		options.tokenCounter = counter
	}
}

// WithFs sets the filesystem the output is persisted to.
func WithFs(fsys afero.Fs) Option {
	return func(options *runOptions) {
		options.fs = fsys
	}
}

func newRunOptions(opts []Option) runOptions {
	options := runOptions{clock: time.Now, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Assemble selects, orders and reads the files under cfg.Root and builds the
// document. The selection walk and the tree walk are separate traversals with
// different pruning: see Select and RenderTree.
func Assemble(ctx context.Context, cfg SelectionConfig, logger *zap.Logger, opts ...Option) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	options := newRunOptions(opts)
	startTime := time.Now()
	logger.Info("Starting dump", zap.String("root", cfg.Root))

	var rules *ignore.RuleSet
	if cfg.UseGitignore {
		rules = ignore.Load(cfg.Root, logger)
	}

	records, err := Select(ctx, cfg, rules, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}
	SortRecords(records)

	var tree string
	if cfg.RenderTree {
		tree = RenderTree(cfg.Root, cfg.ExcludeDirs, logger)
	}

	contents, err := ProcessFilesConcurrently(ctx, records, cfg.Workers, cfg.LineNumbers, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to process files: %w", err)
	}

	info := headerInfo{
		GeneratedAt:      options.clock(),
		Config:           cfg,
		GitignoreApplied: rules != nil,
		GitignoreRules:   rules.Len(),
		FileCount:        len(contents),
	}
	if options.tokenCounter != nil {
		tokens, tokenErr := countTokens(options.tokenCounter, contents)
		if tokenErr != nil {
			logger.Warn("Failed to estimate tokens, omitting estimate", zap.Error(tokenErr))
		} else {
			info.Tokens = tokens
			info.TokenModel = options.tokenCounter.Name()
		}
	}

	logger.Info("Assembled dump",
		zap.Int("totalFiles", len(contents)),
		zap.Duration("elapsed", time.Since(startTime)))
	return &Document{
		Header: renderHeader(info),
		Tree:   tree,
		Files:  contents,
	}, nil
}

// Run assembles the document and writes it to cfg.OutputPath.
func Run(ctx context.Context, cfg SelectionConfig, logger *zap.Logger, opts ...Option) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := Assemble(ctx, cfg, logger, opts...)
	if err != nil {
		return Result{}, err
	}

	text := doc.String()
	if err := Persist(newRunOptions(opts).fs, text, cfg.OutputPath, logger); err != nil {
		return Result{}, fmt.Errorf("error writing output file %s: %w", cfg.OutputPath, err)
	}

	logger.Info("Successfully wrote dump",
		zap.String("outputFile", cfg.OutputPath),
		zap.Int("totalFiles", len(doc.Files)))
	return Result{OutputPath: cfg.OutputPath, FileCount: len(doc.Files), Text: text}, nil
}
