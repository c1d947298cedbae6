package ignore

import (
	"regexp"
	"strings"
)

// parsePatternLine turns one ignore-file line into a Rule.
// It returns nil for blank lines and comments.
func parsePatternLine(line string) (*Rule, error) {
	pattern := trimTrailingSpace(line)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return nil, nil
	}

	rule := &Rule{Line: line}
	if strings.HasPrefix(pattern, "!") {
		rule.Negate = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		rule.DirOnly = true
		pattern = strings.TrimRight(pattern, "/")
	}
	if pattern == "" {
		return nil, nil
	}

	// A slash anywhere but the end anchors the pattern to the root.
	anchored := strings.Contains(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	expression := translatePattern(pattern)
	if anchored {
		expression = "^" + expression + "$"
	} else {
		expression = "^(?:.*/)?" + expression + "$"
	}

	compiled, err := regexp.Compile(expression)
	if err != nil {
		return nil, err
	}
	rule.Pattern = compiled
	return rule, nil
}

// trimTrailingSpace drops the line ending and unescaped trailing blanks.
func trimTrailingSpace(line string) string {
	line = strings.TrimRight(line, "\r\n")
	for strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		if strings.HasSuffix(line, `\ `) {
			break
		}
		line = line[:len(line)-1]
	}
	return line
}

// translatePattern converts a glob body into an unanchored regular expression.
func translatePattern(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			b.WriteString(regexp.QuoteMeta(pattern[i+1 : i+2]))
			i += 2
		case c == '*':
			if strings.HasPrefix(pattern[i:], "**") && (i == 0 || pattern[i-1] == '/') {
				next := i + 2
				if next == len(pattern) {
					b.WriteString(".*")
					i = next
					continue
				}
				if pattern[next] == '/' {
					b.WriteString("(?:.*/)?")
					i = next + 1
					continue
				}
			}
			b.WriteString("[^/]*")
			i++
		case c == '?':
			b.WriteString("[^/]")
			i++
		case c == '[':
			class, width, ok := translateClass(pattern[i:])
			if !ok {
				b.WriteString(`\[`)
				i++
				continue
			}
			b.WriteString(class)
			i += width
		default:
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
			i++
		}
	}
	return b.String()
}

// translateClass converts a bracket expression at the start of s.
// It reports false when the bracket is never closed.
func translateClass(s string) (string, int, bool) {
	j := 1
	negate := false
	if j < len(s) && (s[j] == '!' || s[j] == '^') {
		negate = true
		j++
	}
	start := j
	if j < len(s) && s[j] == ']' {
		j++
	}
	for j < len(s) && s[j] != ']' {
		j++
	}
	if j >= len(s) {
		return "", 0, false
	}

	body := s[start:j]
	body = strings.ReplaceAll(body, `\`, `\\`)
	body = strings.ReplaceAll(body, "[", `\[`)
	body = strings.ReplaceAll(body, "]", `\]`)

	if negate {
		return "[^/" + body + "]", j + 1, true
	}
	return "[" + body + "]", j + 1, true
}
