package game

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameFinalized  = errors.New("game already finalized")
	ErrSentenceLength = errors.New("sentence must be 3 to 5 words")
	ErrNotModerator   = errors.New("moderator required")
	ErrCodeSpaceFull  = errors.New("no free game codes")
)

// maxCodeAttempts bounds the collision retry loop in Create.
const maxCodeAttempts = 64

// Store owns every live Session. Codes are unique among live sessions only;
// once a session is evicted its code may be handed out again.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	timeout time.Duration
	codeMin int
	codeMax int

	log zerolog.Logger
}

func NewStore(timeout time.Duration, codeMin, codeMax int, log zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		codeMin:  codeMin,
		codeMax:  codeMax,
		log:      log,
	}
}

// Create inserts a new session seeded with the reference answer and returns
// its code. Candidate codes are drawn from the configured numeric range and
// retried on collision with a live code; a full code space surfaces
// ErrCodeSpaceFull instead of looping forever.
func (st *Store) Create(prompt, seedAnswer string) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	span := st.codeMax - st.codeMin + 1
	for i := 0; i < maxCodeAttempts; i++ {
		code := strconv.Itoa(st.codeMin + rand.Intn(span))
		if _, taken := st.sessions[code]; taken {
			continue
		}
		now := time.Now()
		st.sessions[code] = &Session{
			Code:          code,
			Prompt:        prompt,
			CreatedAt:     now,
			lastActive:    now,
			contributions: []Contribution{{Text: seedAnswer, IsReference: true, seq: 0}},
			nextSeq:       1,
		}
		return code, nil
	}
	return "", ErrCodeSpaceFull
}

// with runs fn against the locked session, refreshing its heartbeat first.
// The store read lock is held for the whole call, so a concurrent sweep
// (which takes the write lock) can neither evict the session mid-mutation nor
// observe a half-applied one. A lookup after eviction fails here with
// ErrGameNotFound; nothing can write an evicted session back.
func (st *Store) with(code string, fn func(*Session) error) error {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s := st.sessions[code]
	if s == nil {
		return ErrGameNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return fn(s)
}

// Touch refreshes the session heartbeat and reports whether it exists.
func (st *Store) Touch(code string) bool {
	return st.with(code, func(*Session) error { return nil }) == nil
}

// Delete removes the session. Removing an absent code is a no-op.
func (st *Store) Delete(code string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, code)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// ListLive evicts every session idle past the timeout, then returns the
// remaining non-finalized sessions sorted by code.
func (st *Store) ListLive(now time.Time) []Summary {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictExpired(now)

	out := make([]Summary, 0, len(st.sessions))
	for code, s := range st.sessions {
		s.mu.Lock()
		final := s.finalized
		s.mu.Unlock()
		if !final {
			out = append(out, Summary{ID: code, Name: s.Prompt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// evictExpired removes sessions idle past the timeout. Caller holds the
// write lock; iteration runs over a snapshot of the codes so deletion cannot
// corrupt it.
func (st *Store) evictExpired(now time.Time) {
	codes := make([]string, 0, len(st.sessions))
	for code := range st.sessions {
		codes = append(codes, code)
	}
	for _, code := range codes {
		s := st.sessions[code]
		s.mu.Lock()
		idle := now.Sub(s.lastActive)
		s.mu.Unlock()
		if idle > st.timeout {
			delete(st.sessions, code)
			st.log.Info().Str("code", code).Dur("idle", idle).Msg("evicted idle game")
		}
	}
}

// Sweep runs the eviction policy every interval until ctx is cancelled. The
// lazy sweep in ListLive makes this strictly optional, but it keeps memory
// bounded when nobody is polling the listing.
func (st *Store) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			st.log.Info().Msg("session sweep stopped")
			return
		case <-ticker.C:
			st.mu.Lock()
			st.evictExpired(time.Now())
			st.mu.Unlock()
		}
	}
}
