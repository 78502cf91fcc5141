package tempd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/juanrh/tempd/internal/meter"
)

// reraiseGrace bounds how long we wait for a re-raised signal to take the
// process down before exiting explicitly.
const reraiseGrace = 2 * time.Second

func runMeasure(cmd MeasureCmd) {
	slog.SetDefault(slog.Default().With("run_id", uuid.NewString()))

	loop, err := meter.New(os.Stdout,
		meter.WithMessage(cmd.Message),
		meter.WithPeriod(cmd.Period),
	)
	if err != nil {
		slog.Error("invalid measurement configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var received os.Signal
	go func() {
		received = <-sigCh
		cancel()
	}()

	if err := loop.Run(ctx); err != nil {
		slog.Error("measurement loop failed", "error", err, "emitted", loop.Emitted())
		os.Exit(1)
	}

	// Run only returns nil after cancel, which happens after received is set.
	slog.Info("terminated by signal", "signal", received)
	signal.Stop(sigCh)
	reraise(received)
}

// reraise restores the default disposition of sig and delivers it to the
// current process so the exit status is the platform default for that signal.
func reraise(sig os.Signal) {
	signal.Reset(sig)

	if p, err := os.FindProcess(os.Getpid()); err == nil {
		if err := p.Signal(sig); err == nil {
			time.Sleep(reraiseGrace)
		} else {
			slog.Warn("failed to re-raise signal", "signal", sig, "error", err)
		}
	}

	if s, ok := sig.(syscall.Signal); ok {
		os.Exit(128 + int(s))
	}
	os.Exit(1)
}
