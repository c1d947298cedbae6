package dump

import (
	"fmt"
	"strings"
	"time"
)

const (
	documentTitle       = "# PROJECT DUMP FOR LLM / CODE REVIEW"
	fileDelimiterFormat = "==== FILE: %s ===="
	timestampLayout     = "2006-01-02T15:04:05Z"
	ruleWidth           = 80
)

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)
)

// Document is the assembled output: header, optional tree, manifest and one
// block per selected file, in manifest order.
type Document struct {
	Header string
	Tree   string // Empty when tree rendering is disabled.
	Files  []FileContent
}

// Manifest returns the relative paths of the included files in document order.
func (doc *Document) Manifest() []string {
	paths := make([]string, len(doc.Files))
	for i, file := range doc.Files {
		paths[i] = file.Path
	}
	return paths
}

// String renders the document as written to disk.
func (doc *Document) String() string {
	parts := []string{doc.Header}
	if doc.Tree != "" {
		parts = append(parts, "DIRECTORY TREE\n"+lightRule+"\n"+doc.Tree+"\n\n"+heavyRule+"\n")
	}

	parts = append(parts, "FILES INCLUDED", lightRule)
	parts = append(parts, doc.Manifest()...)
	parts = append(parts, "", heavyRule, "")

	for _, file := range doc.Files {
		parts = append(parts, fmt.Sprintf(fileDelimiterFormat, file.Path), "", file.Content, "")
	}
	return strings.Join(parts, "\n")
}

// headerInfo carries everything the header reports about a run.
type headerInfo struct {
	GeneratedAt      time.Time
	Config           SelectionConfig
	GitignoreApplied bool
	GitignoreRules   int
	FileCount        int
	TokenModel       string // Empty when no estimate was made.
	Tokens           int
}

// renderHeader builds the top-of-file explanation and filter summary.
func renderHeader(info headerInfo) string {
	cfg := info.Config
	lines := []string{
		documentTitle,
		"",
		"Generated at: " + info.GeneratedAt.UTC().Format(timestampLayout),
		"Project root: " + cfg.Root,
		"",
		"Document structure:",
		"1. This header section (what you are reading now).",
		"2. A directory tree of the project (if enabled).",
		"3. A manifest listing every included file, in sorted order.",
		"4. The contents of each included file, in the same order.",
		"",
		"Conventions:",
		"- Each file starts with a header line like:",
		"    " + fmt.Sprintf(fileDelimiterFormat, "relative/path/to/file.py"),
		"- File contents follow after one blank line.",
	}
	if cfg.LineNumbers {
		lines = append(lines, `- Lines are prefixed with "<number> | ".`)
	}
	lines = append(lines,
		"- The directory tree shows structure; only files in the manifest have contents below.",
		"",
		"LLM instructions (suggested):",
		"- Treat this as a *read-only* snapshot of the project.",
		"- When referencing code, mention the file path and line(s) if possible.",
		"- If you propose changes, explain them in terms of specific files/sections.",
		"",
		"Filtering applied:",
		"- Excluded directory names: "+strings.Join(sortedKeys(cfg.ExcludeDirs), ", "),
		"- Excluded file extensions: "+strings.Join(sortedKeys(cfg.ExcludeExts), ", "),
	)
	if cfg.IncludeExts == nil {
		lines = append(lines, "- Included extensions: ALL non-binary files (minus excluded ext).")
	} else {
		lines = append(lines, "- Included extensions (whitelist): "+strings.Join(sortedKeys(cfg.IncludeExts), ", "))
	}
	lines = append(lines, fmt.Sprintf("- Maximum file size: %d bytes", cfg.MaxBytes))
	switch {
	case !cfg.UseGitignore:
		lines = append(lines, "- .gitignore rules: not applied (disabled)")
	case info.GitignoreApplied:
		lines = append(lines, fmt.Sprintf("- .gitignore rules: applied (%d rules)", info.GitignoreRules))
	default:
		lines = append(lines, "- .gitignore rules: not applied (no readable .gitignore at root)")
	}

	lines = append(lines, "", fmt.Sprintf("Files included: %d", info.FileCount))
	if info.TokenModel != "" {
		lines = append(lines, fmt.Sprintf("Estimated tokens (file contents): %d (%s)", info.Tokens, info.TokenModel))
	}
	lines = append(lines, "", heavyRule, "")
	return strings.Join(lines, "\n")
}
