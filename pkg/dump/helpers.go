package dump

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const outputFileMode = 0o644

// Persist writes text to outputPath in one step: the content goes to a
// temporary file next to the target, which is then renamed over it. A failed
// run leaves no partial output behind.
func Persist(fsys afero.Fs, text, outputPath string, logger *zap.Logger) error {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if err := ensureDirectory(fsys, filepath.Dir(outputPath), logger); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := afero.TempFile(fsys, filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		logger.Error("Failed to create temporary output file", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	discard := func() {
		if removeErr := fsys.Remove(tmpName); removeErr != nil {
			logger.Debug("Failed to remove temporary output file", zap.String("file", tmpName), zap.Error(removeErr))
		}
	}

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		discard()
		logger.Error("Failed to write output file", zap.String("file", tmpName), zap.Error(err))
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		discard()
		logger.Error("Failed to close output file", zap.String("file", tmpName), zap.Error(err))
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := fsys.Chmod(tmpName, outputFileMode); err != nil {
		logger.Debug("Failed to set output file mode", zap.String("file", tmpName), zap.Error(err))
	}
	if err := fsys.Rename(tmpName, outputPath); err != nil {
		discard()
		logger.Error("Failed to move output file into place", zap.String("file", outputPath), zap.Error(err))
		return fmt.Errorf("failed to replace output file: %w", err)
	}

	logger.Debug("Successfully wrote file", zap.String("path", outputPath), zap.Int("sizeBytes", len(text)))
	return nil
}

// ensureDirectory ensures a directory exists, creating it if necessary.
func ensureDirectory(fsys afero.Fs, path string, logger *zap.Logger) error {
	if err := fsys.MkdirAll(path, 0o755); err != nil {
		logger.Error("Failed to create directory", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Ensured directory exists", zap.String("path", path))
	return nil
}
