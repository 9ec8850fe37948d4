package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNativeExecutorSuccess(t *testing.T) {
	n := NewNativeExecutor(nil)
	res, err := n.Execute(context.Background(), Request{
		WorkingTreePath: t.TempDir(),
		Command:         "echo hello",
	})
	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode)
	require.Contains(t, res.Stdout, "hello")
}

func TestNativeExecutorNonZeroExit(t *testing.T) {
	n := NewNativeExecutor(nil)
	res, err := n.Execute(context.Background(), Request{
		WorkingTreePath: t.TempDir(),
		Command:         "exit 3",
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.ExitCode)
}

func TestNativeExecutorTimeout(t *testing.T) {
	n := NewNativeExecutor(nil)
	res, err := n.Execute(context.Background(), Request{
		WorkingTreePath: t.TempDir(),
		Command:         "sleep 5",
		Timeout:         50 * time.Millisecond,
	})
	require.NoError(t, err)
	require.True(t, res.TimedOut())
	require.Equal(t, timeoutExitCode, res.ExitCode)
}

func TestTruncateLongStream(t *testing.T) {
	big := make([]byte, maxStreamBytes+1000)
	for i := range big {
		big[i] = 'x'
	}
	got := truncate(string(big))
	require.Len(t, got, maxStreamBytes)
}

func TestTruncateShortStreamUnaffected(t *testing.T) {
	require.Equal(t, "short", truncate("short"))
}
