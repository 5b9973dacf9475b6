package repositories

import (
	"sync"
	"time"

	"taskflow/backend/models"
)

// DefaultAnalysisTTL is used when SaveTaskAnalysis is called with ttl 0.
const DefaultAnalysisTTL = 3600 * time.Second

// AnalysisCache is an in-memory store mapping task ids to their most recent
// analysis result. Entries expire after their TTL and are dropped lazily on
// the next read. State is ephemeral; it lives only for the process lifetime.
type AnalysisCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	defaultTTL time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

type cacheEntry struct {
	analysis  *models.TaskAnalysis
	expiresAt time.Time
}

// NewAnalysisCache creates an empty cache. A non-positive defaultTTL falls
// back to DefaultAnalysisTTL.
func NewAnalysisCache(defaultTTL time.Duration) *AnalysisCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultAnalysisTTL
	}
	return &AnalysisCache{
		entries:    make(map[string]cacheEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// GetTaskAnalysis returns the cached analysis for a task, or nil when absent
// or expired. Expired entries are removed.
func (c *AnalysisCache) GetTaskAnalysis(taskID string) *models.TaskAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[taskID]
	if !ok {
		return nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, taskID)
		return nil
	}
	return entry.analysis
}

// SaveTaskAnalysis stores an analysis for a task, overwriting any previous
// entry. A zero ttl uses the cache default.
func (c *AnalysisCache) SaveTaskAnalysis(taskID string, analysis *models.TaskAnalysis, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[taskID] = cacheEntry{
		analysis:  analysis,
		expiresAt: c.now().Add(ttl),
	}
}

// Len returns the number of entries currently held, including not yet
// collected expired ones.
func (c *AnalysisCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
