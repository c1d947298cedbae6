// Package ignore evaluates .gitignore-style rules against paths relative to a project root.
package ignore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FileName is the ignore-rule file read from the project root.
const FileName = ".gitignore"

// Rule is one compiled line of an ignore file.
type Rule struct {
	Pattern *regexp.Regexp // Compiled expression matched against a slash-separated relative path.
	Negate  bool           // Line started with '!' and re-includes matching paths.
	DirOnly bool           // Line ended with '/' and only matches directories.
	LineNo  int            // Line number in the source (1-based).
	Line    string         // Pattern line as written.
}

// RuleSet is an ordered list of rules. A nil *RuleSet matches nothing.
type RuleSet struct {
	rules  []*Rule
	logger *zap.Logger
}

// NewRuleSet returns an empty RuleSet.
func NewRuleSet(logger *zap.Logger) *RuleSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleSet{logger: logger}
}

// Parse compiles the given lines into a new RuleSet.
func Parse(lines []string, logger *zap.Logger) *RuleSet {
	rs := NewRuleSet(logger)
	rs.CompileLines(lines...)
	return rs
}

// Load reads FileName from root. It returns nil when the file is missing or
// cannot be read, so callers proceed as if no rules apply.
func Load(root string, logger *zap.Logger) *RuleSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	path := filepath.Join(root, FileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No ignore file found", zap.String("filePath", path))
		} else {
			logger.Warn("Failed to read ignore file, continuing without it", zap.String("filePath", path), zap.Error(err))
		}
		return nil
	}

	rs := Parse(strings.Split(string(content), "\n"), logger)
	logger.Debug("Loaded ignore file", zap.String("filePath", path), zap.Int("ruleCount", rs.Len()))
	return rs
}

// CompileLines appends the rules found in lines. Blank lines, comments and
// patterns that fail to compile are skipped.
func (rs *RuleSet) CompileLines(lines ...string) {
	for i, line := range lines {
		rule, err := parsePatternLine(line)
		if err != nil {
			rs.logger.Warn("Skipping invalid ignore pattern", zap.Int("lineNo", i+1), zap.String("pattern", line), zap.Error(err))
			continue
		}
		if rule == nil {
			continue
		}
		rule.LineNo = i + 1
		rs.rules = append(rs.rules, rule)
		rs.logger.Debug("Compiled ignore pattern",
			zap.Int("lineNo", rule.LineNo),
			zap.String("pattern", rule.Line),
			zap.Bool("negate", rule.Negate),
			zap.Bool("dirOnly", rule.DirOnly))
	}
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Matches reports whether relPath is excluded by the rule set.
func (rs *RuleSet) Matches(relPath string, isDir bool) bool {
	ignored, _ := rs.MatchesWithRule(relPath, isDir)
	return ignored
}

// MatchesWithRule reports whether relPath is excluded and returns the rule that
// decided it. A path inside an excluded directory is excluded even when a later
// negation matches the path itself.
func (rs *RuleSet) MatchesWithRule(relPath string, isDir bool) (bool, *Rule) {
	if rs == nil || len(rs.rules) == 0 {
		return false, nil
	}
	normalized := normalizePath(relPath)
	if normalized == "" {
		return false, nil
	}

	segments := strings.Split(normalized, "/")
	for i := 1; i < len(segments); i++ {
		parent := strings.Join(segments[:i], "/")
		if ignored, rule := rs.evaluate(parent, true); ignored {
			return true, rule
		}
	}
	return rs.evaluate(normalized, isDir)
}

// evaluate applies every rule in order; the last match wins.
func (rs *RuleSet) evaluate(path string, isDir bool) (bool, *Rule) {
	ignored := false
	var decided *Rule
	for _, rule := range rs.rules {
		if rule.DirOnly && !isDir {
			continue
		}
		if !rule.Pattern.MatchString(path) {
			continue
		}
		ignored = !rule.Negate
		decided = rule
	}
	return ignored, decided
}

// normalizePath converts path to the slash-separated form rules are matched against.
func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.Trim(path, "/")
	if path == "." {
		return ""
	}
	return path
}
