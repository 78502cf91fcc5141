package meter

import (
	"context"
	"time"
)

// Sleeper pauses the loop between emissions. Sleep returns ctx.Err() if the
// context ends first, nil otherwise.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper sleeps on the real clock. It never returns before d has
// elapsed unless ctx is done.
type TimerSleeper struct{}

func (s TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
