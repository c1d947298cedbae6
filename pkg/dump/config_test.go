package dump

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestNewSelectionConfig(t *testing.T) {
	root := t.TempDir()
	regularFile := filepath.Join(root, "file.txt")
	if err := os.WriteFile(regularFile, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	t.Run("missing root", func(t *testing.T) {
		_, err := NewSelectionConfig(Arguments{Root: filepath.Join(root, "missing")})
		if !errors.Is(err, ErrInvalidRoot) {
			t.Fatalf("expected ErrInvalidRoot, got %v", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		_, err := NewSelectionConfig(Arguments{Root: regularFile})
		if !errors.Is(err, ErrInvalidRoot) {
			t.Fatalf("expected ErrInvalidRoot, got %v", err)
		}
	})

	t.Run("negative max bytes", func(t *testing.T) {
		_, err := NewSelectionConfig(Arguments{Root: root, MaxBytes: -1})
		if err == nil {
			t.Fatal("expected an error for negative max bytes")
		}
	})

	t.Run("defaults and additions", func(t *testing.T) {
		cfg, err := NewSelectionConfig(Arguments{
			Root:        root,
			Output:      filepath.Join(root, "out.txt"),
			ExcludeDirs: []string{"custom"},
			ExcludeExts: []string{"LOG"},
			MaxBytes:    DefaultMaxBytes,
		})
		if err != nil {
			t.Fatalf("NewSelectionConfig error: %v", err)
		}
		for _, name := range []string{".git", "node_modules", "vendor", "custom"} {
			if _, ok := cfg.ExcludeDirs[name]; !ok {
				t.Errorf("expected %q in excluded directories", name)
			}
		}
		for _, ext := range []string{".png", ".log"} {
			if _, ok := cfg.ExcludeExts[ext]; !ok {
				t.Errorf("expected %q in excluded extensions", ext)
			}
		}
		if cfg.IncludeExts != nil {
			t.Errorf("expected no allow-list, got %v", cfg.IncludeExts)
		}
		if !cfg.UseGitignore || !cfg.RenderTree || cfg.LineNumbers {
			t.Errorf("unexpected toggles: %+v", cfg)
		}
		if cfg.Workers != runtime.NumCPU() {
			t.Errorf("workers = %d, want %d", cfg.Workers, runtime.NumCPU())
		}
		if !filepath.IsAbs(cfg.OutputPath) {
			t.Errorf("output path %q is not absolute", cfg.OutputPath)
		}
	})

	t.Run("allow-list is normalized", func(t *testing.T) {
		cfg, err := NewSelectionConfig(Arguments{Root: root, IncludeExts: []string{"MD", ".Py"}})
		if err != nil {
			t.Fatalf("NewSelectionConfig error: %v", err)
		}
		if len(cfg.IncludeExts) != 2 {
			t.Fatalf("allow-list = %v", cfg.IncludeExts)
		}
		for _, ext := range []string{".md", ".py"} {
			if _, ok := cfg.IncludeExts[ext]; !ok {
				t.Errorf("expected %q in allow-list", ext)
			}
		}
	})

	t.Run("empty allow-list admits nothing", func(t *testing.T) {
		cfg, err := NewSelectionConfig(Arguments{Root: root, IncludeExts: []string{}})
		if err != nil {
			t.Fatalf("NewSelectionConfig error: %v", err)
		}
		if cfg.IncludeExts == nil || len(cfg.IncludeExts) != 0 {
			t.Fatalf("expected an empty non-nil allow-list, got %v", cfg.IncludeExts)
		}
	})
}

func TestExtOf(t *testing.T) {
	testCases := map[string]string{
		"main.go":        ".go",
		"README.MD":      ".md",
		"archive.tar.gz": ".gz",
		"Makefile":       "",
		".bashrc":        "",
		"trailing.":      "",
		".env.local":     ".local",
	}
	for name, want := range testCases {
		if got := ExtOf(name); got != want {
			t.Errorf("ExtOf(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNormalizeExt(t *testing.T) {
	testCases := map[string]string{
		"py":     ".py",
		".Md":    ".md",
		" TXT  ": ".txt",
		"":       "",
	}
	for input, want := range testCases {
		if got := NormalizeExt(input); got != want {
			t.Errorf("NormalizeExt(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDefaultOutputName(t *testing.T) {
	now := time.Date(2024, time.March, 5, 14, 7, 59, 0, time.UTC)
	if got, want := DefaultOutputName(filepath.Join(string(filepath.Separator), "work", "proj"), now), "proj-dump-20240305-1407.txt"; got != want {
		t.Errorf("DefaultOutputName = %q, want %q", got, want)
	}
	if got, want := DefaultOutputName(string(filepath.Separator), now), "project-dump-20240305-1407.txt"; got != want {
		t.Errorf("DefaultOutputName(root) = %q, want %q", got, want)
	}
}
