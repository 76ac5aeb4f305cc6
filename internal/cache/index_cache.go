// Package cache keeps the most recently built similarity index keyed by a
// hash of the table it was built from.
package cache

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/pierrec/xxHash/xxHash64"
	"github.com/sirupsen/logrus"

	"github.com/cuisine-engine/backend/internal/cleaning"
	"github.com/cuisine-engine/backend/internal/metrics"
	"github.com/cuisine-engine/backend/internal/search"
)

// IndexCache holds at most one index. It is rebuilt only when the clean
// table's content changes or after Invalidate.
type IndexCache struct {
	logger *logrus.Entry
	opts   []search.Option

	mu    sync.Mutex
	key   uint64
	index *search.Index
}

// NewIndexCache creates an empty cache. opts are passed to search.Build.
func NewIndexCache(logger *logrus.Entry, opts ...search.Option) *IndexCache {
	if logger == nil {
		logger = logrus.WithField("component", "index_cache")
	}
	return &IndexCache{
		logger: logger,
		opts:   opts,
	}
}

// GetOrBuild returns the cached index when records hash to the cached key
// and builds a fresh one otherwise. hit reports whether the cache was used.
func (c *IndexCache) GetOrBuild(records []cleaning.CleanRecord) (idx *search.Index, hit bool, err error) {
	key := ContentKey(records)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil && c.key == key {
		metrics.RecordCacheLookup(true)
		c.logger.WithField("key", key).Debug("Reusing cached similarity index")
		return c.index, true, nil
	}
	metrics.RecordCacheLookup(false)

	start := time.Now()
	idx, err = search.Build(records, c.opts...)
	if err != nil {
		return nil, false, err
	}
	elapsed := time.Since(start)
	metrics.RecordIndexBuild(elapsed)

	c.logger.WithFields(logrus.Fields{
		"key":        key,
		"rows":       idx.Len(),
		"vocabulary": idx.VocabularySize(),
		"elapsed":    elapsed,
	}).Info("Built similarity index")

	c.key = key
	c.index = idx
	return idx, false, nil
}

// Invalidate drops the cached index.
func (c *IndexCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = nil
	c.key = 0
}

// Cached reports whether an index is held.
func (c *IndexCache) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index != nil
}

// ContentKey hashes every field of every record in order.
func ContentKey(records []cleaning.CleanRecord) uint64 {
	h := xxHash64.New(0)
	var buf [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}

	binary.LittleEndian.PutUint64(buf[:], uint64(len(records)))
	h.Write(buf[:])
	for _, rec := range records {
		writeString(rec.CanonicalName)
		writeString(rec.DisplayName)
		writeString(rec.CleanCuisines)
		writeString(rec.CleanReviews)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(rec.Rating))
		h.Write(buf[:])
	}
	return h.Sum64()
}
