package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"projdump/cmd"
	"projdump/pkg/logging"
	"projdump/pkg/version"

	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	if _, err := logging.Setup(false, "projdump", version.Version); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runErr := cmd.Execute(ctx)
	stop()

	// Execute may have replaced the logger with a verbose one.
	logger := logging.Logger
	if runErr != nil {
		logger.Error("projdump execution failed", zap.Error(runErr))
	}
	syncLogger(logger)
	if runErr != nil {
		os.Exit(1)
	}
}

// syncLogger flushes the logger when stderr can be synced. Pipes and character
// devices other than terminals reject fsync with "invalid argument".
func syncLogger(logger *zap.Logger) {
	if !term.IsTerminal(int(os.Stderr.Fd())) && !isRegularFile(os.Stderr) {
		return
	}
	if syncErr := logger.Sync(); syncErr != nil {
		lowerErr := strings.ToLower(syncErr.Error())
		if !strings.Contains(lowerErr, "invalid argument") {
			log.Printf("Logger sync failed: %v", syncErr)
		}
	}
}

// isRegularFile checks if the given file is a regular file.
func isRegularFile(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
