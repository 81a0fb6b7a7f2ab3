package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/common"
)

func TestRegisterRejectsDuplicatesAndBadSchedules(t *testing.T) {
	svc := NewService(common.GetLogger())

	handler := func(context.Context) error { return nil }

	require.NoError(t, svc.Register("refresh", "*/5 * * * *", handler))
	assert.Error(t, svc.Register("refresh", "*/5 * * * *", handler))
	assert.Error(t, svc.Register("broken", "not a schedule", handler))
	assert.Error(t, svc.Register("", "", nil))
}

func TestRunNowExecutesHandler(t *testing.T) {
	svc := NewService(common.GetLogger())

	done := make(chan struct{})
	require.NoError(t, svc.Register("once", "", func(context.Context) error {
		close(done)
		return nil
	}))

	require.NoError(t, svc.RunNow("once"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}

	assert.Error(t, svc.RunNow("missing"))
}

func TestOverlappingRunsAreSuppressed(t *testing.T) {
	svc := NewService(common.GetLogger())

	var running atomic.Int32
	var overlapped atomic.Bool
	block := make(chan struct{})

	require.NoError(t, svc.Register("slow", "", func(context.Context) error {
		if running.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer running.Add(-1)
		<-block
		return nil
	}))

	require.NoError(t, svc.RunNow("slow"))
	time.Sleep(50 * time.Millisecond)

	// Second trigger while the first is still blocked must be skipped
	require.NoError(t, svc.RunNow("slow"))
	time.Sleep(50 * time.Millisecond)
	close(block)
	time.Sleep(50 * time.Millisecond)

	assert.False(t, overlapped.Load(), "overlapping run should have been suppressed")
	assert.Equal(t, int32(0), running.Load())
}
