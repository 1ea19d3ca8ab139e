package internal

import (
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
)

var (
	// DefaultConfigPath is the default path to the config file
	DefaultAppName    = "trio"
	DefaultConfigPath = filepath.Join(getHomeDir(), ".config", DefaultAppName)

	// Default worker offload settings
	DefaultQueueCapacity        = 128
	DefaultWatcherQueueCapacity = 64
	DefaultWatcherDebounceMs    = 50

	// DefaultFsBackend selects the filesystem backend: "os" or "memory"
	DefaultFsBackend = "os"
)

// DefaultWorkerCount returns the worker count used when none is configured.
// I/O bound work benefits from more workers than cores, within limits.
func DefaultWorkerCount() int {
	return min(max(runtime.NumCPU()*2, 4), 32)
}

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			// Last resort - use tmp directory
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
