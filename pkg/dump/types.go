package dump

import "errors"

// ErrInvalidRoot is returned when the root path is missing or is not a directory.
var ErrInvalidRoot = errors.New("root path does not exist or is not a directory")

// FileRecord is a selected file. RelPath uses forward slashes and is the
// identity used for sorting, display and ignore matching.
type FileRecord struct {
	AbsPath string // Absolute path on disk.
	RelPath string // Path relative to the root.
}

// FileContent holds the rendered body of one selected file.
type FileContent struct {
	Path    string // Relative file path, as in the manifest.
	Content string // Decoded, optionally line-numbered text.
}

// Result summarizes a completed run.
type Result struct {
	OutputPath string // Where the document was written.
	FileCount  int    // Number of files in the manifest.
	Text       string // The full document.
}
