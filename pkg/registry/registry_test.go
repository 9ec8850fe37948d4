package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	r := New()
	run := &runmodel.Run{ID: "r1", Status: runmodel.RunStatusRunning, StartedAt: time.Now()}
	require.NoError(t, r.Create(run))

	got, err := r.Get("r1")
	require.NoError(t, err)
	require.Equal(t, runmodel.RunStatusRunning, got.Status)
}

func TestCreateDuplicateFails(t *testing.T) {
	r := New()
	run := &runmodel.Run{ID: "dup"}
	require.NoError(t, r.Create(run))
	require.ErrorIs(t, r.Create(run), ErrAlreadyExists)
}

func TestGetUnknownReturnsNotFound(t *testing.T) {
	r := New()
	_, err := r.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMutatesInPlace(t *testing.T) {
	r := New()
	require.NoError(t, r.Create(&runmodel.Run{ID: "r1", Status: runmodel.RunStatusRunning}))

	require.NoError(t, r.Update("r1", func(run *runmodel.Run) {
		run.Status = runmodel.RunStatusCompleted
	}))

	got, err := r.Get("r1")
	require.NoError(t, err)
	require.Equal(t, runmodel.RunStatusCompleted, got.Status)
}

func TestListReturnsAllRuns(t *testing.T) {
	r := New()
	require.NoError(t, r.Create(&runmodel.Run{ID: "a"}))
	require.NoError(t, r.Create(&runmodel.Run{ID: "b"}))
	require.Len(t, r.List(), 2)
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	r := New()
	require.NoError(t, r.Create(&runmodel.Run{ID: "r1"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = r.Get("r1")
		}()
		go func() {
			defer wg.Done()
			_ = r.Update("r1", func(run *runmodel.Run) {
				run.Status = runmodel.RunStatusRunning
			})
		}()
	}
	wg.Wait()
}
