package dump

import (
	"bytes"
	"io"
	"os"
)

// SampleSize is the number of leading bytes inspected by IsBinary.
const SampleSize = 8000

// IsBinary reports whether the file at path looks binary. Files that cannot be
// opened or read count as binary so they are left out rather than failing the run.
func IsBinary(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return true
	}
	defer file.Close()

	sample, err := io.ReadAll(io.LimitReader(file, SampleSize))
	if err != nil {
		return true
	}
	return LooksBinary(sample)
}

// LooksBinary reports whether sample contains a NUL byte.
func LooksBinary(sample []byte) bool {
	return bytes.IndexByte(sample, 0) != -1
}
