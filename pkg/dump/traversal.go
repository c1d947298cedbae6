package dump

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"projdump/pkg/ignore"

	"go.uber.org/zap"
)

// Rejection reasons reported at debug level.
const (
	reasonNotAllowed   = "extension not in allow-list"
	reasonExtExcluded  = "extension excluded"
	reasonStatFailed   = "stat failed"
	reasonNotRegular   = "not a regular file"
	reasonTooLarge     = "exceeds size limit"
	reasonBinary       = "binary content"
	reasonIgnoreRule   = "matched ignore rule"
	reasonIgnoreFile   = "ignore rule file"
	reasonOutputTarget = "output file"
)

// Select walks cfg.Root top-down and returns the files that pass every filter,
// in traversal order. Excluded directories are pruned before they are read.
// Per-file failures are logged and skipped; only context cancellation aborts the walk.
func Select(ctx context.Context, cfg SelectionConfig, rules *ignore.RuleSet, logger *zap.Logger) ([]FileRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Starting file selection", zap.String("root", cfg.Root), zap.Int64("maxBytes", cfg.MaxBytes))

	var records []FileRecord
	err := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			logger.Warn("Error accessing path during selection", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == cfg.Root {
			return nil
		}

		relPath := relativePath(cfg.Root, path)
		if d.IsDir() {
			if _, excluded := cfg.ExcludeDirs[d.Name()]; excluded {
				logger.Debug("Pruning excluded directory", zap.String("directory", relPath))
				return filepath.SkipDir
			}
			if matched, rule := rules.MatchesWithRule(relPath, true); matched {
				logger.Debug("Pruning ignored directory", zap.String("directory", relPath), zap.String("rule", rule.Line))
				return filepath.SkipDir
			}
			return nil
		}

		if reason := rejectFile(cfg, rules, path, relPath, d); reason != "" {
			logger.Debug("Skipping file", zap.String("file", relPath), zap.String("reason", reason))
			return nil
		}
		records = append(records, FileRecord{AbsPath: path, RelPath: relPath})
		return nil
	})
	if err != nil {
		logger.Error("File selection aborted", zap.Error(err))
		return nil, err
	}

	logger.Debug("Completed file selection", zap.Int("selectedFiles", len(records)))
	return records, nil
}

// rejectFile applies the per-file filters in order and returns the first
// failing reason, or "" when the file is selected.
func rejectFile(cfg SelectionConfig, rules *ignore.RuleSet, path, relPath string, d fs.DirEntry) string {
	ext := ExtOf(d.Name())
	if cfg.IncludeExts != nil {
		if _, allowed := cfg.IncludeExts[ext]; !allowed {
			return reasonNotAllowed
		}
	}
	if _, denied := cfg.ExcludeExts[ext]; denied {
		return reasonExtExcluded
	}

	// os.Stat follows symlinks: broken links fail here, links to directories
	// and special files are not regular.
	info, err := os.Stat(path)
	if err != nil {
		return reasonStatFailed
	}
	if !info.Mode().IsRegular() {
		return reasonNotRegular
	}
	if info.Size() > cfg.MaxBytes {
		return reasonTooLarge
	}

	if IsBinary(path) {
		return reasonBinary
	}
	if rules.Matches(relPath, false) {
		return reasonIgnoreRule
	}
	if d.Name() == ignore.FileName {
		return reasonIgnoreFile
	}
	if path == cfg.OutputPath {
		return reasonOutputTarget
	}
	return ""
}

// SortRecords orders records by relative path, independent of traversal order.
func SortRecords(records []FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].RelPath < records[j].RelPath
	})
}

// relativePath returns path relative to root with forward slashes.
func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
