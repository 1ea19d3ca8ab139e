package offload

import "sync"

var (
	defaultOnce   sync.Once
	defaultRunner *Runner
)

// Default returns the process-wide shared runner, creating it with default
// sizing on first use. It is never closed; facades that need an isolated
// lifecycle should construct their own runner.
func Default() *Runner {
	defaultOnce.Do(func() {
		defaultRunner = NewRunner(0, 0)
	})
	return defaultRunner
}
