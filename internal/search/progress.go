package search

import "github.com/vvka-141/flywaysum/pkg/flywaysum"

// LogProgress returns a progress callback that reports each length through logger.
func LogProgress(logger flywaysum.Logger) func(Event) {
	return func(e Event) {
		switch e.Kind {
		case EventLengthStarted:
			logger.Info("Trying comment length: %d", e.Length)
		case EventLengthExhausted:
			logger.Info("   Not found at length %d (%d ms)", e.Length, e.Elapsed.Milliseconds())
		case EventFound:
			logger.Info("Found in %d ms", e.Elapsed.Milliseconds())
		}
	}
}
