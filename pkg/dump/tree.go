package dump

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// treeEntry is one child listed at a tree level.
type treeEntry struct {
	name    string
	isDir   bool // Sorts with directories, including symlinks to directories.
	descend bool // Real directory that may be recursed into.
}

// RenderTree draws the directory structure under root with box-drawing
// connectors. Only excludeDirs limits recursion: ignore rules and file filters
// are not applied, so the tree can list entries the manifest leaves out.
// Excluded directories are listed but not expanded, and symlinked directories
// are never followed.
func RenderTree(root string, excludeDirs map[string]struct{}, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := filepath.Base(root)
	if name == string(filepath.Separator) || name == "." {
		name = root
	}

	lines := []string{name}
	lines = appendTreeLevel(lines, root, "", excludeDirs, logger)
	return strings.Join(lines, "\n")
}

// appendTreeLevel appends the entries of directory, recursing with prefix
// extended by the continuation bar of the parent's position.
func appendTreeLevel(lines []string, directory, prefix string, excludeDirs map[string]struct{}, logger *zap.Logger) []string {
	dirEntries, err := os.ReadDir(directory)
	if err != nil {
		logger.Warn("Failed to read directory for tree structure", zap.String("directory", directory), zap.Error(err))
	}

	entries := make([]treeEntry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		entry := treeEntry{name: dirEntry.Name(), isDir: dirEntry.IsDir(), descend: dirEntry.IsDir()}
		if dirEntry.Type()&fs.ModeSymlink != 0 {
			if info, statErr := os.Stat(filepath.Join(directory, dirEntry.Name())); statErr == nil && info.IsDir() {
				entry.isDir = true
			}
		}
		entries = append(entries, entry)
	}

	// Directories first, then case-insensitive name.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir != entries[j].isDir {
			return entries[i].isDir
		}
		left, right := strings.ToLower(entries[i].name), strings.ToLower(entries[j].name)
		if left != right {
			return left < right
		}
		return entries[i].name < entries[j].name
	})

	for i, entry := range entries {
		connector := "├── "
		extension := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			extension = "    "
		}
		lines = append(lines, prefix+connector+entry.name)

		if !entry.descend {
			continue
		}
		if _, excluded := excludeDirs[entry.name]; excluded {
			logger.Debug("Not expanding excluded directory in tree", zap.String("directory", entry.name))
			continue
		}
		lines = appendTreeLevel(lines, filepath.Join(directory, entry.name), prefix+extension, excludeDirs, logger)
	}
	return lines
}
