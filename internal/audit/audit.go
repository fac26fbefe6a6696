// Package audit delivers best-effort event notifications to a persistence
// sink. Delivery is fire-and-forget: a slow or broken sink costs the game
// path nothing, and failures only ever show up in the log.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Kind string

const (
	KindPrompt     Kind = "prompt"
	KindSubmission Kind = "submission"
	KindGuess      Kind = "guess"
)

// Event is one recorded occurrence. Sentence doubles as the custom answer
// for prompt events.
type Event struct {
	ID       string
	Kind     Kind
	Prompt   string
	Sentence string
	Correct  bool
	At       time.Time
}

// Sink persists events. Implementations may block; the Dispatcher shields
// callers from that.
type Sink interface {
	RecordPrompt(ctx context.Context, prompt, answer string) error
	RecordSubmission(ctx context.Context, prompt, sentence string) error
	RecordGuess(ctx context.Context, prompt string, correct bool) error
}

const deliverTimeout = 5 * time.Second

// Dispatcher queues events onto a buffered channel drained by a single
// worker goroutine. A full buffer drops the event with a warning rather than
// blocking the request that produced it.
type Dispatcher struct {
	sink   Sink
	events chan Event
	done   chan struct{}
	log    zerolog.Logger
}

func NewDispatcher(sink Sink, buffer int, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:   sink,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		log:    log,
	}
	go d.run()
	return d
}

func (d *Dispatcher) Prompt(prompt, answer string) {
	d.enqueue(Event{Kind: KindPrompt, Prompt: prompt, Sentence: answer})
}

func (d *Dispatcher) Submission(prompt, sentence string) {
	d.enqueue(Event{Kind: KindSubmission, Prompt: prompt, Sentence: sentence})
}

func (d *Dispatcher) Guess(prompt string, correct bool) {
	d.enqueue(Event{Kind: KindGuess, Prompt: prompt, Correct: correct})
}

func (d *Dispatcher) enqueue(ev Event) {
	ev.ID = uuid.NewString()
	ev.At = time.Now()
	select {
	case d.events <- ev:
	default:
		d.log.Warn().Str("event_id", ev.ID).Str("kind", string(ev.Kind)).Msg("audit buffer full, event dropped")
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	var err error
	switch ev.Kind {
	case KindPrompt:
		err = d.sink.RecordPrompt(ctx, ev.Prompt, ev.Sentence)
	case KindSubmission:
		err = d.sink.RecordSubmission(ctx, ev.Prompt, ev.Sentence)
	case KindGuess:
		err = d.sink.RecordGuess(ctx, ev.Prompt, ev.Correct)
	}
	if err != nil {
		d.log.Error().Err(err).Str("event_id", ev.ID).Str("kind", string(ev.Kind)).Msg("audit write failed")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	close(d.events)
	<-d.done
}
