package game

import (
	"sync"
	"time"
)

// Role is the self-declared role carried on each request. It is not backed by
// any credential; moderators are whoever claims to be one.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleModerator   Role = "moderator"
)

func RoleFromAdmin(isAdmin bool) Role {
	if isAdmin {
		return RoleModerator
	}
	return RoleParticipant
}

// Contribution is one submitted sentence. IsReference marks a sentence known
// to be a genuine answer: the seed answer, plus anything a moderator submits.
type Contribution struct {
	Text        string `json:"text"`
	IsReference bool   `json:"isReference"`

	// seq preserves insertion order across the finalize shuffle.
	seq int
}

// Session is one running game. Mutable fields are guarded by mu; the Store
// additionally holds its read lock around every session access so the sweep
// can never interleave with an in-flight mutation.
type Session struct {
	Code      string
	Prompt    string
	CreatedAt time.Time

	contributions []Contribution
	finalized     bool
	lastActive    time.Time
	nextSeq       int

	mu sync.Mutex
}

// Summary is one row of the live game listing.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status is the lightweight poll response. Requesting it refreshes the
// session heartbeat.
type Status struct {
	Exists        bool `json:"exists"`
	SentenceCount int  `json:"sentence_count"`
	IsFinal       bool `json:"is_final"`
}

// State is the full observable state of a game, echoed by generate and
// refresh.
type State struct {
	Code          string         `json:"code"`
	Prompt        string         `json:"prompt"`
	Contributions []Contribution `json:"contributions"`
	Finalized     bool           `json:"finalized"`
}
