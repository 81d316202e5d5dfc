package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/systomic777/alex-workout/guide"
	"github.com/systomic777/alex-workout/guide/engines"
)

// Cache couples the audio store to a synthesis engine. Reads that miss
// trigger generation; store failures degrade to regeneration instead
// of failing the cue, since a spoken countdown must not stop over a
// broken disk.
type Cache struct {
	store  *Store
	engine engines.Engine
}

// New creates a guidance cache over a store and a synthesis engine.
func New(store *Store, engine engines.Engine) *Cache {
	return &Cache{store: store, engine: engine}
}

// Close closes the underlying store.
func (c *Cache) Close() error { return c.store.Close() }

// GetOrGenerate returns the audio for a cue, synthesizing and storing
// it on a miss. The fingerprint binds the entry to the exact script
// text, so a hit never plays stale or mismatched audio.
func (c *Cache) GetOrGenerate(ctx context.Context, spec guide.CueSpec, exercises []guide.Exercise) (guide.Audio, error) {
	key := guide.Fingerprint(spec, exercises)
	audio, err := c.store.Get(key)
	if err == nil {
		return audio, nil
	}
	if !errors.Is(err, guide.ErrNotCached) {
		log.Warn("cache read failed, regenerating", "cue", spec.Token(), "err", err)
	}

	text, err := guide.Script(spec, exercises)
	if err != nil {
		return guide.Audio{}, err
	}
	audio, err = c.engine.Synthesize(ctx, text)
	if err != nil {
		return guide.Audio{}, fmt.Errorf("generate %s: %w", spec.Token(), err)
	}
	if err := c.store.Put(key, audio); err != nil {
		// Non-fatal: the clip still plays this session.
		log.Warn("cache write failed", "cue", spec.Token(), "err", err)
	}
	return audio, nil
}

// Status describes cache coverage for an exercise sequence.
type Status struct {
	// Total is the number of distinct cues the sequence needs.
	Total int
	// Cached is how many of those are already stored.
	Cached int
	// Missing lists the cues that would be generated, in order.
	Missing []guide.CueSpec
	// SizeBytes is the compressed size of the whole store, including
	// entries for other sequences.
	SizeBytes int64
	// Entries is the total number of stored entries.
	Entries int
}

// Complete reports whether every expected cue is cached.
func (s Status) Complete() bool { return s.Cached == s.Total }

// Status computes coverage of the expected cue set without triggering
// any generation.
func (c *Cache) Status(exercises []guide.Exercise) (Status, error) {
	keys, err := c.store.Keys()
	if err != nil {
		return Status{}, fmt.Errorf("list cache keys: %w", err)
	}
	var st Status
	seen := make(map[string]bool)
	for _, spec := range guide.ExpectedCues(exercises) {
		key := guide.Fingerprint(spec, exercises)
		if seen[key] {
			continue
		}
		seen[key] = true
		st.Total++
		if keys[key] {
			st.Cached++
		} else {
			st.Missing = append(st.Missing, spec)
		}
	}
	if st.SizeBytes, err = c.store.TotalSize(); err != nil {
		return Status{}, fmt.Errorf("read cache size: %w", err)
	}
	if st.Entries, err = c.store.Len(); err != nil {
		return Status{}, fmt.Errorf("count cache entries: %w", err)
	}
	return st, nil
}

// GenerateStats summarizes a bulk population run.
type GenerateStats struct {
	Generated int
	Skipped   int
	Failed    int
}

// GenerateAll populates the cache for an exercise sequence. Cues
// already stored are skipped; individual failures are logged and
// counted so one bad cue does not abort the run. Cancellation stops
// between cues and returns the context error.
func (c *Cache) GenerateAll(ctx context.Context, exercises []guide.Exercise, progress func(done, total int, spec guide.CueSpec)) (GenerateStats, error) {
	st, err := c.Status(exercises)
	if err != nil {
		return GenerateStats{}, err
	}
	stats := GenerateStats{Skipped: st.Cached}
	for i, spec := range st.Missing {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if progress != nil {
			progress(st.Cached+i, st.Total, spec)
		}
		if _, err := c.GetOrGenerate(ctx, spec, exercises); err != nil {
			if ctx.Err() != nil {
				return stats, err
			}
			log.Error("cue generation failed", "cue", spec.Token(), "err", err)
			stats.Failed++
			continue
		}
		stats.Generated++
	}
	return stats, nil
}

// Clear removes every stored entry.
func (c *Cache) Clear() error { return c.store.Clear() }
