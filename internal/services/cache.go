package services

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"basket-dashboard/internal/mining"
	"basket-dashboard/internal/models"
)

// itemsetKey identifies a miner output. Confidence and lift are not part of
// it, so changing only those reuses the itemsets and recomputes rules.
type itemsetKey struct {
	version    uint64
	minSupport float64
	maxLength  int
}

// resultKey carries the full threshold triple so a cached rule set is never
// paired with itemsets from other thresholds.
type resultKey struct {
	version    uint64
	maxLength  int
	thresholds mining.Thresholds
}

type sessionCache struct {
	itemsets *lru.Cache[itemsetKey, []models.Itemset]
	results  *lru.Cache[resultKey, *Result]
}

// newSessionCache keeps the size most recent entries per stage. With size 1 a
// threshold change evicts the previous entry.
func newSessionCache(size int) (*sessionCache, error) {
	size = max(size, 1)

	itemsets, err := lru.New[itemsetKey, []models.Itemset](size)
	if err != nil {
		return nil, err
	}
	results, err := lru.New[resultKey, *Result](size)
	if err != nil {
		return nil, err
	}

	return &sessionCache{itemsets: itemsets, results: results}, nil
}

func (c *sessionCache) purge() {
	c.itemsets.Purge()
	c.results.Purge()
}
