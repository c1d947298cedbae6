package dump

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readErrorFormat replaces the content of a file that could not be read.
const readErrorFormat = "<<ERROR: could not read file %s>>"

// ProcessSingleFile reads, decodes and optionally numbers one file. A read
// failure is contained to the returned block.
func ProcessSingleFile(record FileRecord, lineNumbers bool, logger *zap.Logger) FileContent {
	raw, err := os.ReadFile(record.AbsPath)
	if err != nil {
		logger.Warn("Failed to read file", zap.String("filePath", record.AbsPath), zap.Error(err))
		return FileContent{Path: record.RelPath, Content: fmt.Sprintf(readErrorFormat, record.AbsPath)}
	}
	logger.Debug("Read file content", zap.String("file", record.RelPath), zap.Int("sizeBytes", len(raw)))

	text := DecodeText(raw)
	if lineNumbers {
		text = NumberLines(text)
	}
	return FileContent{Path: record.RelPath, Content: text}
}

// DecodeText decodes raw as UTF-8, substituting U+FFFD for invalid sequences.
func DecodeText(raw []byte) string {
	decoded, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(decoded)
}

// NumberLines prefixes each line with its right-aligned 1-based number,
// padded to the width of the last line number. Line content and a final
// newline are kept as-is.
func NumberLines(text string) string {
	if text == "" {
		return ""
	}
	body := strings.TrimSuffix(text, "\n")
	lines := strings.Split(body, "\n")
	width := len(strconv.Itoa(len(lines)))

	var b strings.Builder
	b.Grow(len(text) + len(lines)*(width+3))
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d | %s", width, i+1, line)
	}
	if len(body) != len(text) {
		b.WriteByte('\n')
	}
	return b.String()
}
