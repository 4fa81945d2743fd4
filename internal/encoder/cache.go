package encoder

import (
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Rule identifies the derivation that produced a cache entry.
type Rule string

const (
	RuleDigit      Rule = "digit"
	RuleStructural Rule = "structural"
	RuleRadix      Rule = "radix"
	RuleDynamic    Rule = "dynamic"
	RuleFallback   Rule = "fallback"
)

// Entry is one character of the cache and the fragment that evaluates to it.
type Entry struct {
	Char     rune
	Fragment string
	Rule     Rule
}

// charCache is append-only: a key is written once and never replaced, so a
// fragment handed out earlier stays valid for the encoder's lifetime.
type charCache struct {
	mu      sync.RWMutex
	entries map[rune]Entry
	order   []rune
	flight  singleflight.Group
}

func newCharCache() *charCache {
	return &charCache{entries: make(map[rune]Entry, 128)}
}

func (c *charCache) get(r rune) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[r]
	return e, ok
}

// put stores e unless its character is already present, and returns the
// entry that ends up cached.
func (c *charCache) put(e Entry) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[e.Char]; ok {
		return existing
	}
	c.entries[e.Char] = e
	c.order = append(c.order, e.Char)
	return e
}

// resolve returns the entry for r, running derive on a miss. Concurrent
// misses on the same character share one derivation. derive runs without
// the lock held, so it may resolve other characters.
func (c *charCache) resolve(r rune, derive func() (Entry, error)) (Entry, error) {
	if e, ok := c.get(r); ok {
		return e, nil
	}
	v, err, _ := c.flight.Do(string(r), func() (interface{}, error) {
		if e, ok := c.get(r); ok {
			return e, nil
		}
		e, err := derive()
		if err != nil {
			return Entry{}, err
		}
		return c.put(e), nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

func (c *charCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// snapshot copies the entries sorted by code point.
func (c *charCache) snapshot() []Entry {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// derivationOrder lists characters in the order they were cached.
func (c *charCache) derivationOrder() []rune {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]rune, len(c.order))
	copy(out, c.order)
	return out
}
