package dump

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProcessFilesConcurrently reads records with at most maxWorkers concurrent
// reads. Results keep the order of records regardless of scheduling.
func ProcessFilesConcurrently(ctx context.Context, records []FileRecord, maxWorkers int, lineNumbers bool, logger *zap.Logger) ([]FileContent, error) {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
		logger.Debug("Adjusted worker count", zap.Int("workers", maxWorkers))
	}
	logger.Debug("Reading file contents", zap.Int("files", len(records)), zap.Int("workers", maxWorkers))

	contents := make([]FileContent, len(records))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxWorkers)
	for i, record := range records {
		i, record := i, record
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			contents[i] = ProcessSingleFile(record, lineNumbers, logger)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		logger.Error("Reading file contents aborted", zap.Error(err))
		return nil, err
	}

	logger.Debug("All files processed", zap.Int("processedFiles", len(contents)))
	return contents, nil
}
