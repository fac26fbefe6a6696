package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(timeout time.Duration, codeMin, codeMax int) *Store {
	return NewStore(timeout, codeMin, codeMax, zerolog.Nop())
}

// backdate pretends the session has been idle for the given duration.
func backdate(st *Store, code string, idle time.Duration) {
	st.mu.RLock()
	s := st.sessions[code]
	st.mu.RUnlock()
	s.mu.Lock()
	s.lastActive = time.Now().Add(-idle)
	s.mu.Unlock()
}

func TestCreateReturnsUniqueCodes(t *testing.T) {
	st := newTestStore(time.Minute, 10, 19)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		code, err := st.Create("prompt", "the seed answer here")
		require.NoError(t, err)
		require.False(t, seen[code], "code %s handed out twice", code)
		seen[code] = true
	}

	// Code space is now exhausted.
	_, err := st.Create("prompt", "the seed answer here")
	require.ErrorIs(t, err, ErrCodeSpaceFull)
}

func TestCreateConcurrentUniqueness(t *testing.T) {
	st := newTestStore(time.Minute, 1000, 9999)

	var mu sync.Mutex
	codes := make(map[string]int)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := st.Create("prompt", "the seed answer here")
			assert.NoError(t, err)
			mu.Lock()
			codes[code]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, codes, 50)
	for code, n := range codes {
		assert.Equal(t, 1, n, "code %s", code)
	}
}

func TestTouchAndDelete(t *testing.T) {
	st := newTestStore(time.Minute, 1000, 9999)
	code, err := st.Create("prompt", "the seed answer here")
	require.NoError(t, err)

	assert.True(t, st.Touch(code))
	assert.False(t, st.Touch("0000"))

	st.Delete(code)
	assert.False(t, st.Touch(code))
	st.Delete(code) // deleting again is a no-op
	assert.Equal(t, 0, st.Len())
}

func TestListLiveEvictsIdleSessions(t *testing.T) {
	st := newTestStore(time.Minute, 1000, 9999)
	stale, err := st.Create("stale prompt", "the seed answer here")
	require.NoError(t, err)
	fresh, err := st.Create("fresh prompt", "the seed answer here")
	require.NoError(t, err)

	backdate(st, stale, 2*time.Minute)

	live := st.ListLive(time.Now())
	require.Len(t, live, 1)
	assert.Equal(t, fresh, live[0].ID)
	assert.Equal(t, "fresh prompt", live[0].Name)

	// The evicted session is really gone, not just hidden.
	assert.False(t, st.Touch(stale))
}

func TestListLiveSkipsFinalizedSessions(t *testing.T) {
	st := newTestStore(time.Minute, 1000, 9999)
	code, err := st.Create("prompt", "the seed answer here")
	require.NoError(t, err)

	require.NoError(t, st.with(code, func(s *Session) error {
		s.finalized = true
		return nil
	}))

	assert.Empty(t, st.ListLive(time.Now()))
	// Finalized sessions stay in the store until idle or restarted.
	assert.True(t, st.Touch(code))
}

func TestHeartbeatPreventsEviction(t *testing.T) {
	st := newTestStore(time.Minute, 1000, 9999)
	code, err := st.Create("prompt", "the seed answer here")
	require.NoError(t, err)

	// Simulate a 45s-old session being polled before the sweep runs.
	backdate(st, code, 45*time.Second)
	require.True(t, st.Touch(code))

	live := st.ListLive(time.Now())
	require.Len(t, live, 1)
	assert.Equal(t, code, live[0].ID)
}

func TestEvictedCodeCannotBeWritten(t *testing.T) {
	st := newTestStore(time.Minute, 1000, 9999)
	code, err := st.Create("prompt", "the seed answer here")
	require.NoError(t, err)

	backdate(st, code, 2*time.Minute)
	st.ListLive(time.Now())

	err = st.with(code, func(s *Session) error {
		s.contributions = append(s.contributions, Contribution{Text: "too late now friend"})
		return nil
	})
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestBackgroundSweep(t *testing.T) {
	st := newTestStore(20*time.Millisecond, 1000, 9999)
	code, err := st.Create("prompt", "the seed answer here")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go st.Sweep(ctx, 10*time.Millisecond)

	// Checking Len does not touch the session, so the sweep must reclaim it.
	require.Eventually(t, func() bool { return st.Len() == 0 },
		time.Second, 10*time.Millisecond)
	assert.False(t, st.Touch(code))
}
