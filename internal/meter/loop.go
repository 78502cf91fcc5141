// Package meter implements the measurement loop: a fixed line written to an
// output once per period until the caller's context ends.
package meter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

const (
	DefaultMessage = "Measuring the temperature!"
	DefaultPeriod  = time.Second
)

var (
	ErrInvalidPeriod  = errors.New("period must be positive")
	ErrInvalidMessage = errors.New("message must be a single non-empty line")
	ErrWrite          = errors.New("failed to write measurement")
)

type Loop struct {
	w       io.Writer
	message string
	period  time.Duration
	sleeper Sleeper

	// line is message plus the trailing newline, written with a single Write.
	line    []byte
	emitted atomic.Uint64
}

type Option func(*Loop)

func WithMessage(message string) Option {
	return func(l *Loop) {
		l.message = message
	}
}

func WithPeriod(period time.Duration) Option {
	return func(l *Loop) {
		l.period = period
	}
}

func WithSleeper(s Sleeper) Option {
	return func(l *Loop) {
		l.sleeper = s
	}
}

// New returns a loop writing to w. Without options it writes DefaultMessage
// every DefaultPeriod on the real clock.
func New(w io.Writer, opts ...Option) (*Loop, error) {
	l := &Loop{
		w:       w,
		message: DefaultMessage,
		period:  DefaultPeriod,
		sleeper: TimerSleeper{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.period <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, l.period)
	}
	if l.message == "" || strings.ContainsAny(l.message, "\r\n") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMessage, l.message)
	}

	l.line = []byte(l.message + "\n")
	return l, nil
}

func (l *Loop) Message() string { return l.message }

func (l *Loop) Period() time.Duration { return l.period }

// Emitted returns the number of complete lines written so far.
func (l *Loop) Emitted() uint64 {
	return l.emitted.Load()
}

// Run emits the first line immediately and then one line per period. It only
// returns when ctx is done (nil) or when a write fails (wrapping ErrWrite).
// Cancellation is observed between emissions, never in the middle of one.
func (l *Loop) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	slog.Info("measurement loop started", "period", l.period, "message", l.message)

	for {
		if err := l.emit(); err != nil {
			return err
		}

		if err := l.sleeper.Sleep(ctx, l.period); err != nil {
			if ctx.Err() != nil {
				slog.Info("measurement loop stopped", "emitted", l.emitted.Load())
				return nil
			}
			return fmt.Errorf("failed to sleep: %w", err)
		}
	}
}

func (l *Loop) emit() error {
	n, err := l.w.Write(l.line)
	if err == nil && n != len(l.line) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("%w after %d lines: %w", ErrWrite, l.emitted.Load(), err)
	}

	count := l.emitted.Add(1)
	slog.Debug("measurement emitted", "count", count)
	return nil
}
