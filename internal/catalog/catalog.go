// Package catalog holds the pool of sentence-completion prompts games are
// seeded from.
package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// Pair is one prompt together with its genuine reference answer.
type Pair struct {
	Prompt string
	Answer string
}

// Fallback seeds the pool when the prompt source is unreachable at startup.
var Fallback = Pair{
	Prompt: "Two astronauts are standing on the moon",
	Answer: "they plant a tiny flag",
}

// Source supplies the persisted prompt pool.
type Source interface {
	Prompts(ctx context.Context) ([]Pair, error)
}

// Catalog is a read-mostly in-memory pool. Load is called once at startup;
// Draw may be called from any number of request goroutines.
type Catalog struct {
	mu    sync.RWMutex
	pairs []Pair

	source Source
	log    zerolog.Logger
}

func New(source Source, log zerolog.Logger) *Catalog {
	return &Catalog{source: source, log: log}
}

// Load fills the pool from the source. When the source is missing or failing
// the pool degrades to the single fallback pair and the error is returned
// for logging; the caller keeps running either way.
func (c *Catalog) Load(ctx context.Context) error {
	if c.source == nil {
		c.setPairs([]Pair{Fallback})
		return fmt.Errorf("no prompt source configured")
	}
	pairs, err := c.source.Prompts(ctx)
	if err != nil {
		c.setPairs([]Pair{Fallback})
		return fmt.Errorf("load prompts: %w", err)
	}
	c.setPairs(pairs)
	c.log.Info().Int("count", len(pairs)).Msg("prompt pool loaded")
	return nil
}

func (c *Catalog) setPairs(pairs []Pair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs = pairs
}

// Draw returns a uniformly random pair, or false when the pool is empty.
func (c *Catalog) Draw() (Pair, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.pairs) == 0 {
		return Pair{}, false
	}
	return c.pairs[rand.Intn(len(c.pairs))], true
}

// Len reports the pool size.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pairs)
}
