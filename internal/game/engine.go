package game

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sentence-dash/server/internal/catalog"
)

// Auditor receives fire-and-forget notifications about noteworthy events.
// Implementations must never block the caller; delivery failures are theirs
// to log and swallow.
type Auditor interface {
	Prompt(prompt, answer string)
	Submission(prompt, sentence string)
	Guess(prompt string, correct bool)
}

// NopAuditor discards every event.
type NopAuditor struct{}

func (NopAuditor) Prompt(string, string)     {}
func (NopAuditor) Submission(string, string) {}
func (NopAuditor) Guess(string, bool)        {}

// Shown instead of a prompt when a generate request finds the pool empty and
// carries no custom prompt. The game still gets created so the group isn't
// left staring at an error.
const (
	placeholderPrompt = "No prompts are available right now, make up your own!"
	placeholderAnswer = "the prompt pool ran dry"
)

const (
	minSentenceWords = 3
	maxSentenceWords = 5
)

// Engine applies game actions against the store. It is safe for concurrent
// use; all session state lives in the Store.
type Engine struct {
	store   *Store
	catalog *catalog.Catalog
	audit   Auditor
	log     zerolog.Logger
}

func NewEngine(store *Store, cat *catalog.Catalog, audit Auditor, log zerolog.Logger) *Engine {
	if audit == nil {
		audit = NopAuditor{}
	}
	return &Engine{store: store, catalog: cat, audit: audit, log: log}
}

// Generate creates a new game. With custom set the supplied prompt/answer
// pair seeds the game and is forwarded to the auditor for persistence;
// otherwise a pair is drawn from the catalog, degrading to an explanatory
// placeholder when the pool is empty.
func (e *Engine) Generate(custom bool, customPrompt, customAnswer string) (State, error) {
	var prompt, answer string
	switch {
	case custom:
		prompt, answer = customPrompt, customAnswer
	default:
		pair, ok := e.catalog.Draw()
		if !ok {
			prompt, answer = placeholderPrompt, placeholderAnswer
			e.log.Warn().Msg("prompt pool empty, creating degraded game")
		} else {
			prompt, answer = pair.Prompt, pair.Answer
		}
	}

	code, err := e.store.Create(prompt, answer)
	if err != nil {
		return State{}, err
	}
	if custom {
		e.audit.Prompt(prompt, answer)
	}
	state, _ := e.State(code)
	e.log.Info().Str("code", code).Bool("custom", custom).Msg("game created")
	return state, nil
}

// SetCode validates that an entered code refers to a live game.
func (e *Engine) SetCode(code string) error {
	if !e.store.Touch(code) {
		return ErrGameNotFound
	}
	return nil
}

// Submit appends a sentence to a running game. A moderator submission is
// flagged as a reference answer, exactly like the seed; only participant
// sentences are audited.
func (e *Engine) Submit(code, sentence string, role Role) (string, error) {
	var prompt string
	err := e.store.with(code, func(s *Session) error {
		if s.finalized {
			return ErrGameFinalized
		}
		if n := len(strings.Fields(sentence)); n < minSentenceWords || n > maxSentenceWords {
			return ErrSentenceLength
		}
		s.contributions = append(s.contributions, Contribution{
			Text:        sentence,
			IsReference: role == RoleModerator,
			seq:         s.nextSeq,
		})
		s.nextSeq++
		prompt = s.Prompt
		return nil
	})
	if err != nil {
		return "", err
	}
	if role != RoleModerator {
		e.audit.Submission(prompt, sentence)
	}
	return "Sentence submitted!", nil
}

// Guess records a one-shot claim about whether the contributions look
// genuine. A wrong claim reveals every reference answer, joined in the order
// they were originally added, regardless of any finalize shuffle.
func (e *Engine) Guess(code string, claim bool) (message string, revealed []string, err error) {
	var prompt string
	err = e.store.with(code, func(s *Session) error {
		prompt = s.Prompt
		if claim {
			return nil
		}
		refs := make([]Contribution, 0, len(s.contributions))
		for _, c := range s.contributions {
			if c.IsReference {
				refs = append(refs, c)
			}
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].seq < refs[j].seq })
		revealed = make([]string, len(refs))
		for i, c := range refs {
			revealed[i] = c.Text
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	e.audit.Guess(prompt, claim)
	if claim {
		return "Correct!", nil, nil
	}
	return fmt.Sprintf("Wrong! The real answer was: %s", strings.Join(revealed, ", ")), revealed, nil
}

// Finalize shuffles the contributions once and locks the game against
// further submissions. Only moderators may finalize; repeating it is
// idempotent and never re-shuffles.
func (e *Engine) Finalize(code string, role Role) (State, error) {
	if role != RoleModerator {
		return State{}, ErrNotModerator
	}
	err := e.store.with(code, func(s *Session) error {
		if s.finalized {
			return nil
		}
		rand.Shuffle(len(s.contributions), func(i, j int) {
			s.contributions[i], s.contributions[j] = s.contributions[j], s.contributions[i]
		})
		s.finalized = true
		return nil
	})
	if err != nil {
		return State{}, err
	}
	state, _ := e.State(code)
	return state, nil
}

// Restart deletes the game outright so the group can start over. Deleting an
// already-absent code is a no-op, matching what a stale client would expect.
func (e *Engine) Restart(code string, role Role) error {
	if role != RoleModerator {
		return ErrNotModerator
	}
	e.store.Delete(code)
	e.log.Info().Str("code", code).Msg("game restarted")
	return nil
}

// Status answers the lightweight poll. The heartbeat side effect is the
// point: polling this is what keeps a game alive.
func (e *Engine) Status(code string) Status {
	var st Status
	err := e.store.with(code, func(s *Session) error {
		st = Status{Exists: true, SentenceCount: len(s.contributions), IsFinal: s.finalized}
		return nil
	})
	if err != nil {
		return Status{}
	}
	return st
}

// State echoes the full observable game state without mutating anything
// beyond the heartbeat.
func (e *Engine) State(code string) (State, bool) {
	var out State
	err := e.store.with(code, func(s *Session) error {
		out = State{
			Code:          s.Code,
			Prompt:        s.Prompt,
			Contributions: append([]Contribution(nil), s.contributions...),
			Finalized:     s.finalized,
		}
		return nil
	})
	return out, err == nil
}

// List evicts idle games and returns the remaining joinable ones.
func (e *Engine) List() []Summary {
	return e.store.ListLive(time.Now())
}
