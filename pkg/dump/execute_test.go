package dump

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap/zaptest"
)

var fixedClock = func() time.Time {
	return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
}

type fakeTokenCounter struct {
	err error
}

func (counter fakeTokenCounter) Name() string { return "fake-model" }

func (counter fakeTokenCounter) CountString(input string) (int, error) {
	if counter.err != nil {
		return 0, counter.err
	}
	return len(strings.Fields(input)), nil
}

// fileHeaderLines returns the document lines that open a file block.
func fileHeaderLines(text string) []string {
	var headers []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "==== FILE: ") {
			headers = append(headers, line)
		}
	}
	return headers
}

func TestRunSmallProject(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/a.py":    "print(1)\n",
		"src/b.png":   "png",
		"vendor/c.py": "print(3)\n",
	})
	cfg := newTestConfig(t, root, nil)
	fsys := afero.NewMemMapFs()

	result, err := Run(context.Background(), cfg, zaptest.NewLogger(t), WithFs(fsys), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.FileCount != 1 || result.OutputPath != cfg.OutputPath {
		t.Fatalf("unexpected result: %+v", result)
	}

	written, err := afero.ReadFile(fsys, cfg.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(written)
	if text != result.Text {
		t.Fatal("persisted text differs from the returned text")
	}

	manifest := "FILES INCLUDED\n" + lightRule + "\nsrc/a.py\n\n" + heavyRule + "\n"
	if !strings.Contains(text, manifest) {
		t.Errorf("manifest section missing or wrong:\n%s", text)
	}
	if headers := fileHeaderLines(text); len(headers) != 1 || headers[0] != "==== FILE: src/a.py ====" {
		t.Errorf("file blocks = %v", headers)
	}
	if !strings.Contains(text, "==== FILE: src/a.py ====\n\nprint(1)\n\n") {
		t.Errorf("file block content missing:\n%s", text)
	}
	for _, want := range []string{
		"Generated at: 2024-01-02T03:04:05Z",
		"Project root: " + root,
		"DIRECTORY TREE\n" + lightRule + "\n" + filepath.Base(root) + "\n",
		"Files included: 1",
		"- Included extensions: ALL non-binary files (minus excluded ext).",
		"- Maximum file size: 2000000 bytes",
		"- .gitignore rules: not applied (no readable .gitignore at root)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(text, "Estimated tokens") {
		t.Error("token estimate present without a counter")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"b/z.go":     "package b\n",
		"a.md":       "# a\n",
		"c/d/e.txt":  "e\n",
		".gitignore": "*.tmp\n",
		"x.tmp":      "tmp",
	})
	cfg := newTestConfig(t, root, nil)
	logger := zaptest.NewLogger(t)

	first, err := Run(context.Background(), cfg, logger, WithFs(afero.NewMemMapFs()), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	second, err := Run(context.Background(), cfg, logger, WithFs(afero.NewMemMapFs()), WithClock(fixedClock))
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if first.Text != second.Text {
		t.Fatal("reruns over an unchanged tree produced different output")
	}

	want := []string{"==== FILE: a.md ====", "==== FILE: b/z.go ====", "==== FILE: c/d/e.txt ===="}
	got := fileHeaderLines(first.Text)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("file block order = %v, want %v", got, want)
	}
	if !strings.Contains(first.Text, "- .gitignore rules: applied (1 rules)") {
		t.Error("header does not report the applied .gitignore")
	}
}

func TestAssembleOptions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.go":    "package main\n\nfunc main() {}\n",
		".gitignore": "*.log\n",
	})

	t.Run("no tree and line numbers", func(t *testing.T) {
		cfg := newTestConfig(t, root, func(args *Arguments) {
			args.NoTree = true
			args.LineNumbers = true
		})
		doc, err := Assemble(context.Background(), cfg, zaptest.NewLogger(t), WithClock(fixedClock))
		if err != nil {
			t.Fatalf("Assemble error: %v", err)
		}
		text := doc.String()
		if strings.Contains(text, "DIRECTORY TREE") {
			t.Error("tree rendered although disabled")
		}
		if !strings.Contains(text, "1 | package main\n2 | \n3 | func main() {}\n") {
			t.Errorf("line numbers missing:\n%s", text)
		}
		if !strings.Contains(text, `- Lines are prefixed with "<number> | ".`) {
			t.Error("header does not mention line numbers")
		}
	})

	t.Run("gitignore disabled", func(t *testing.T) {
		cfg := newTestConfig(t, root, func(args *Arguments) {
			args.NoGitignore = true
		})
		doc, err := Assemble(context.Background(), cfg, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Assemble error: %v", err)
		}
		if !strings.Contains(doc.Header, "- .gitignore rules: not applied (disabled)") {
			t.Errorf("unexpected header:\n%s", doc.Header)
		}
		if got := strings.Join(doc.Manifest(), ","); got != "main.go" {
			t.Errorf("manifest = %s", got)
		}
	})

	t.Run("allow-list in header", func(t *testing.T) {
		cfg := newTestConfig(t, root, func(args *Arguments) {
			args.IncludeExts = []string{"go", "MD"}
		})
		doc, err := Assemble(context.Background(), cfg, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Assemble error: %v", err)
		}
		if !strings.Contains(doc.Header, "- Included extensions (whitelist): .go, .md") {
			t.Errorf("unexpected header:\n%s", doc.Header)
		}
	})

	t.Run("token estimate", func(t *testing.T) {
		cfg := newTestConfig(t, root, nil)
		doc, err := Assemble(context.Background(), cfg, zaptest.NewLogger(t), WithTokenCounter(fakeTokenCounter{}))
		if err != nil {
			t.Fatalf("Assemble error: %v", err)
		}
		if !strings.Contains(doc.Header, "Estimated tokens (file contents): 5 (fake-model)") {
			t.Errorf("unexpected header:\n%s", doc.Header)
		}
	})

	t.Run("token failure is not fatal", func(t *testing.T) {
		cfg := newTestConfig(t, root, nil)
		doc, err := Assemble(context.Background(), cfg, zaptest.NewLogger(t), WithTokenCounter(fakeTokenCounter{err: errors.New("boom")}))
		if err != nil {
			t.Fatalf("Assemble error: %v", err)
		}
		if strings.Contains(doc.Header, "Estimated tokens") {
			t.Error("failed estimate should be omitted")
		}
	})
}

func TestRunReportsWriteFailure(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "a"})
	cfg := newTestConfig(t, root, nil)

	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := Run(context.Background(), cfg, zaptest.NewLogger(t), WithFs(fsys))
	if err == nil || !strings.Contains(err.Error(), "error writing output file") {
		t.Fatalf("expected a write error, got %v", err)
	}
}
