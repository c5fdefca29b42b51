package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/jobsearch"
)

type historyLister interface {
	ListHistory(ctx context.Context) ([]jobsearch.HistoryRecord, error)
}

// HistoryCache keeps past searches for the lifetime of a session.
type HistoryCache struct {
	mu      sync.RWMutex
	loaded  bool
	records []jobsearch.HistoryRecord
}

func NewHistoryCache() *HistoryCache {
	return &HistoryCache{}
}

// Load fetches the records on the first call only. A failure leaves the cache empty.
func (h *HistoryCache) Load(ctx context.Context, lister historyLister, logger *zap.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return
	}
	h.fetch(ctx, lister, logger)
}

// Reload fetches the records again. A failure keeps the records from the last successful load.
func (h *HistoryCache) Reload(ctx context.Context, lister historyLister, logger *zap.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.fetch(ctx, lister, logger)
}

// fetch must be called with the mutex held.
func (h *HistoryCache) fetch(ctx context.Context, lister historyLister, logger *zap.Logger) {
	h.loaded = true

	records, err := lister.ListHistory(ctx)
	if err != nil {
		logger.Warn("failed to load search history", zap.Error(err))
		return
	}

	h.records = records
	logger.Debug("search history loaded", zap.Int("records", len(records)))
}

func (h *HistoryCache) Records() []jobsearch.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]jobsearch.HistoryRecord(nil), h.records...)
}

func (h *HistoryCache) Find(id int) (jobsearch.HistoryRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, record := range h.records {
		if record.ID == id {
			return record, true
		}
	}
	return jobsearch.HistoryRecord{}, false
}

func (h *HistoryCache) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
