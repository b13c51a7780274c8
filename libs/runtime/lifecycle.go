package runtime

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"
)

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ShutdownStep stops one component. Stop should return once ctx expires.
type ShutdownStep struct {
	Name string
	Stop func(ctx context.Context) error
}

// Shutdown runs steps in order under a single timeout. Every step runs even
// after a failure; failures are logged and joined.
func Shutdown(logger *slog.Logger, timeout time.Duration, steps ...ShutdownStep) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, s := range steps {
		if err := s.Stop(ctx); err != nil {
			logger.Error("shutdown step failed", "step", s.Name, "err", err)
			errs = append(errs, err)
			continue
		}
		logger.Debug("shutdown step done", "step", s.Name)
	}
	return errors.Join(errs...)
}
