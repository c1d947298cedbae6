package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// DefaultMaxBytes is the default size ceiling for included files.
const DefaultMaxBytes int64 = 2_000_000

// DefaultExcludeDirs lists directory names never descended into.
var DefaultExcludeDirs = []string{
	".git",
	".hg",
	".svn",
	".idea",
	".vscode",
	"__pycache__",
	".mypy_cache",
	".pytest_cache",
	"node_modules",
	"vendor",
	"dist",
	"build",
	".venv",
	"venv",
}

// DefaultExcludeExts lists extensions that are usually binary or not useful as context.
var DefaultExcludeExts = []string{
	".pyc", ".pyo",
	".so", ".dll", ".dylib", ".exe", ".bin", ".obj", ".o",
	".pdf",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
	".ttf", ".otf", ".woff", ".woff2",
	".zip", ".tar", ".gz", ".xz", ".7z",
	".mp3", ".mp4", ".mov", ".avi", ".mkv",
}

// Arguments holds the user-facing options for one dump run.
type Arguments struct {
	Root        string   // Directory to dump.
	Output      string   // Output file path; empty selects DefaultOutputName.
	IncludeExts []string // Extension allow-list; nil means no allow-list.
	ExcludeDirs []string // Directory names added to DefaultExcludeDirs.
	ExcludeExts []string // Extensions added to DefaultExcludeExts.
	MaxBytes    int64    // Files larger than this are skipped.
	NoTree      bool     // Omit the directory tree block.
	LineNumbers bool     // Prefix content lines with line numbers.
	NoGitignore bool     // Do not load .gitignore rules.
	Workers     int      // Concurrent file reads; <= 0 uses runtime.NumCPU().
}

// SelectionConfig is the resolved, read-only configuration shared by every
// component during a run.
type SelectionConfig struct {
	Root         string
	OutputPath   string
	ExcludeDirs  map[string]struct{}
	ExcludeExts  map[string]struct{}
	IncludeExts  map[string]struct{} // nil when no allow-list is configured.
	MaxBytes     int64
	UseGitignore bool
	RenderTree   bool
	LineNumbers  bool
	Workers      int
}

// NewSelectionConfig validates args and resolves them into a SelectionConfig.
func NewSelectionConfig(args Arguments) (SelectionConfig, error) {
	rootArg := args.Root
	if rootArg == "" {
		rootArg = "."
	}
	root, err := filepath.Abs(rootArg)
	if err != nil {
		return SelectionConfig{}, fmt.Errorf("failed to get absolute path for %s: %w", rootArg, err)
	}
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return SelectionConfig{}, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}

	if args.MaxBytes < 0 {
		return SelectionConfig{}, fmt.Errorf("max bytes must not be negative, got %d", args.MaxBytes)
	}

	output := args.Output
	if output == "" {
		output = DefaultOutputName(root, time.Now())
	}
	outputPath, err := filepath.Abs(output)
	if err != nil {
		return SelectionConfig{}, fmt.Errorf("failed to get absolute path for %s: %w", output, err)
	}

	workers := args.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cfg := SelectionConfig{
		Root:         root,
		OutputPath:   outputPath,
		ExcludeDirs:  make(map[string]struct{}),
		ExcludeExts:  make(map[string]struct{}),
		MaxBytes:     args.MaxBytes,
		UseGitignore: !args.NoGitignore,
		RenderTree:   !args.NoTree,
		LineNumbers:  args.LineNumbers,
		Workers:      workers,
	}
	for _, name := range append(append([]string{}, DefaultExcludeDirs...), args.ExcludeDirs...) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.ExcludeDirs[name] = struct{}{}
		}
	}
	for _, ext := range append(append([]string{}, DefaultExcludeExts...), args.ExcludeExts...) {
		cfg.ExcludeExts[NormalizeExt(ext)] = struct{}{}
	}
	if args.IncludeExts != nil {
		cfg.IncludeExts = make(map[string]struct{}, len(args.IncludeExts))
		for _, ext := range args.IncludeExts {
			cfg.IncludeExts[NormalizeExt(ext)] = struct{}{}
		}
	}
	return cfg, nil
}

// DefaultOutputName returns "<project>-dump-<YYYYMMDD-HHMM>.txt" for root.
func DefaultOutputName(root string, now time.Time) string {
	project := filepath.Base(root)
	if project == string(filepath.Separator) || project == "." || project == "" {
		project = "project"
	}
	return fmt.Sprintf("%s-dump-%s.txt", project, now.Format("20060102-1504"))
}

// NormalizeExt lowercases ext and ensures a leading dot. The empty string
// stays empty and stands for files without an extension.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// ExtOf returns the lowercased extension of name including the dot, or "".
// Leading dots belong to the name, so ".bashrc" has no extension, and a
// trailing dot is not an extension either.
func ExtOf(name string) string {
	ext := filepath.Ext(strings.TrimLeft(name, "."))
	if ext == "." {
		return ""
	}
	return strings.ToLower(ext)
}

// sortedKeys returns the members of set in ascending order.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
