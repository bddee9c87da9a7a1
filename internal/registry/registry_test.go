package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pendingReq struct {
	Session string
}

type result struct {
	TxID string
}

func newTestRegistry(t *testing.T, pendingTTL, completedTTL time.Duration) *Registry[pendingReq, result] {
	t.Helper()
	r := New[pendingReq, result](pendingTTL, completedTTL)
	t.Cleanup(r.Stop)
	return r
}

func TestPollUnknownIDIsExpired(t *testing.T) {
	r := newTestRegistry(t, time.Minute, time.Minute)

	status, _ := r.Poll("never-created")
	assert.Equal(t, StatusExpired, status)
}

func TestPollPendingThenCompleted(t *testing.T) {
	r := newTestRegistry(t, time.Minute, time.Minute)

	r.Begin("req-1", pendingReq{Session: "s1"})

	status, _ := r.Poll("req-1")
	assert.Equal(t, StatusPending, status)

	p, ok := r.Pending("req-1")
	require.True(t, ok)
	assert.Equal(t, "s1", p.Session)

	r.Complete("req-1", result{TxID: "deadbeef"})

	status, res := r.Poll("req-1")
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, "deadbeef", res.TxID)

	// Completion removed the pending entry.
	_, ok = r.Pending("req-1")
	assert.False(t, ok)
}

func TestPendingExpiresOnRead(t *testing.T) {
	r := newTestRegistry(t, 30*time.Millisecond, time.Minute)

	r.Begin("req-1", pendingReq{})

	status, _ := r.Poll("req-1")
	assert.Equal(t, StatusPending, status)

	time.Sleep(60 * time.Millisecond)

	status, _ = r.Poll("req-1")
	assert.Equal(t, StatusExpired, status)

	_, ok := r.Pending("req-1")
	assert.False(t, ok)
}

func TestCompletedResultExpires(t *testing.T) {
	r := newTestRegistry(t, time.Minute, 30*time.Millisecond)

	r.Begin("req-1", pendingReq{})
	r.Complete("req-1", result{TxID: "abc"})

	time.Sleep(60 * time.Millisecond)

	status, _ := r.Poll("req-1")
	assert.Equal(t, StatusExpired, status)
}

func TestCompleteIsIdempotent(t *testing.T) {
	r := newTestRegistry(t, time.Minute, time.Minute)

	r.Begin("req-1", pendingReq{})
	r.Complete("req-1", result{TxID: "first"})
	r.Complete("req-1", result{TxID: "second"})

	status, res := r.Poll("req-1")
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, "second", res.TxID)
}

func TestPollNeverObservesHalfUpdatedEntry(t *testing.T) {
	r := newTestRegistry(t, time.Minute, time.Minute)

	const n = 50
	for i := 0; i < n; i++ {
		r.Begin(fmt.Sprintf("req-%d", i), pendingReq{})
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("req-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Complete(id, result{TxID: id})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A live entry is either pending or completed, never absent.
			status, _ := r.Poll(id)
			assert.NotEqual(t, StatusExpired, status)
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		status, res := r.Poll(fmt.Sprintf("req-%d", i))
		assert.Equal(t, StatusCompleted, status)
		assert.Equal(t, fmt.Sprintf("req-%d", i), res.TxID)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "completed", StatusCompleted.String())
	assert.Equal(t, "expired", StatusExpired.String())
}
