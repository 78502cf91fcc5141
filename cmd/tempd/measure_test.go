//go:build unix

package tempd

import (
	"bufio"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanrh/tempd/internal/meter"
)

const helperEnv = "TEMPD_TEST_RUN_MEASURE"

func TestMain(m *testing.M) {
	if os.Getenv(helperEnv) == "1" {
		os.Args = []string{"tempd"}
		Run(BuildInfo{Version: "test"})
		os.Exit(2)
	}
	os.Exit(m.Run())
}

func startMeasure(t *testing.T, env ...string) (*exec.Cmd, *bufio.Scanner) {
	t.Helper()

	cmd := exec.Command(os.Args[0])
	cmd.Env = append(os.Environ(), append([]string{helperEnv + "=1"}, env...)...)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	return cmd, bufio.NewScanner(stdout)
}

func TestMeasureStopsOnSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping subprocess test in short mode")
	}

	for _, sig := range []syscall.Signal{syscall.SIGTERM, syscall.SIGINT} {
		t.Run(sig.String(), func(t *testing.T) {
			cmd, lines := startMeasure(t, "TEMPD_PERIOD=100ms")

			require.True(t, lines.Scan(), "expected a first line")
			assert.Equal(t, meter.DefaultMessage, lines.Text())

			require.NoError(t, cmd.Process.Signal(sig))

			// Anything written before the signal landed must still be whole lines.
			for lines.Scan() {
				assert.Equal(t, meter.DefaultMessage, lines.Text())
			}

			err := cmd.Wait()
			var exitErr *exec.ExitError
			require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
			status, ok := exitErr.Sys().(syscall.WaitStatus)
			require.True(t, ok)
			assert.True(t, status.Signaled(), "expected termination by signal, got %v", status)
			assert.Equal(t, sig, status.Signal())
		})
	}
}

func TestMeasurePacesLines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping subprocess test in short mode")
	}

	const period = 150 * time.Millisecond
	cmd, lines := startMeasure(t, "TEMPD_PERIOD="+period.String())

	var at []time.Time
	for len(at) < 4 && lines.Scan() {
		at = append(at, time.Now())
		assert.Equal(t, meter.DefaultMessage, lines.Text())
	}
	require.Len(t, at, 4)

	// Reads can only lag writes, so allow a little scheduling slack.
	for i := 1; i < len(at); i++ {
		assert.GreaterOrEqual(t, at[i].Sub(at[i-1]), period-50*time.Millisecond)
	}

	require.NoError(t, cmd.Process.Signal(syscall.SIGTERM))
	_ = cmd.Wait()
}

func TestMeasureRejectsInvalidConfig(t *testing.T) {
	cmd, lines := startMeasure(t, "TEMPD_PERIOD=-1s")

	assert.False(t, lines.Scan(), "no measurement expected")

	err := cmd.Wait()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
	assert.Equal(t, 1, exitErr.ExitCode())
}
