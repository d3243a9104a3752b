package logging

import (
	"log/slog"
	"time"
)

// ForRun returns the default logger tagged with a batch run's id and kind.
func ForRun(runID, kind string) *slog.Logger {
	return slog.Default().With("run_id", runID, "kind", kind)
}

// Timed runs fn and logs how long the step took. Failures are logged at
// error level.
func Timed(log *slog.Logger, step string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		log.Error(step+" failed", "duration", duration.String(), "error", err)
		return err
	}
	log.Info(step, "duration", duration.String())
	return nil
}
