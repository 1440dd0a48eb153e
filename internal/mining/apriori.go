package mining

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"basket-dashboard/internal/models"
)

type options struct {
	maxLength int
}

// Option tunes a Mine call.
type Option func(*options)

// WithMaxLength stops the search after itemsets of n items. Zero or a negative
// value means no bound.
func WithMaxLength(n int) Option {
	return func(o *options) { o.maxLength = n }
}

// frequentSet is an itemset of column indexes together with the rows that
// contain all of its items.
type frequentSet struct {
	items []int
	tids  bitset
	count int
}

// Mine returns every itemset whose support is at least minSupport, ordered by
// size and then lexicographically.
//
// The search is level-wise. Level k+1 candidates are built only by joining two
// frequent k-itemsets that share their first k-1 items, and a candidate is
// counted only when all of its k-subsets are frequent. Support is counted by
// intersecting the parents' row bitsets.
//
// An empty matrix, or one where no item reaches minSupport, yields an empty
// slice and a nil error. When ctx is done the search stops and no partial
// result is returned.
func Mine(ctx context.Context, m *Matrix, minSupport float64, opts ...Option) ([]models.Itemset, error) {
	if err := validateSupport(minSupport); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	result := make([]models.Itemset, 0)
	n := m.NumTransactions()
	if n == 0 || m.NumItems() == 0 {
		return result, nil
	}

	level := make([]frequentSet, 0)
	for col := range m.items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("mine level 1: %w", err)
		}
		c := m.columns[col].count()
		if isFrequent(c, n, minSupport) {
			level = append(level, frequentSet{items: []int{col}, tids: m.columns[col], count: c})
		}
	}

	for k := 1; len(level) > 0; k++ {
		result = appendItemsets(result, m, level, n)
		if o.maxLength > 0 && k >= o.maxLength {
			break
		}

		next, err := nextLevel(ctx, level, n, minSupport)
		if err != nil {
			return nil, err
		}
		level = next
	}

	return result, nil
}

func nextLevel(ctx context.Context, level []frequentSet, n int, minSupport float64) ([]frequentSet, error) {
	known := make(map[string]struct{}, len(level))
	for _, fs := range level {
		known[indexKey(fs.items)] = struct{}{}
	}

	next := make([]frequentSet, 0)
	for i := range level {
		a := level[i]
		for j := i + 1; j < len(level); j++ {
			b := level[j]
			// level is sorted, so itemsets sharing a's prefix are contiguous
			if !sharesPrefix(a.items, b.items) {
				break
			}
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("mine level %d: %w", len(a.items)+1, err)
			}

			candidate := append(slices.Clone(a.items), b.items[len(b.items)-1])
			if !subsetsFrequent(candidate, known) {
				continue
			}

			tids := a.tids.and(b.tids)
			c := tids.count()
			if isFrequent(c, n, minSupport) {
				next = append(next, frequentSet{items: candidate, tids: tids, count: c})
			}
		}
	}

	return next, nil
}

func sharesPrefix(a, b []int) bool {
	k := len(a) - 1
	return slices.Equal(a[:k], b[:k])
}

// subsetsFrequent checks the subsets that drop one of the first len-2 items.
// The two remaining subsets are the joined parents.
func subsetsFrequent(candidate []int, known map[string]struct{}) bool {
	subset := make([]int, 0, len(candidate)-1)
	for drop := 0; drop < len(candidate)-2; drop++ {
		subset = subset[:0]
		subset = append(subset, candidate[:drop]...)
		subset = append(subset, candidate[drop+1:]...)
		if _, ok := known[indexKey(subset)]; !ok {
			return false
		}
	}
	return true
}

func isFrequent(count, n int, minSupport float64) bool {
	return count > 0 && float64(count)/float64(n) >= minSupport
}

func appendItemsets(dst []models.Itemset, m *Matrix, level []frequentSet, n int) []models.Itemset {
	for _, fs := range level {
		items := make([]string, len(fs.items))
		for i, col := range fs.items {
			items[i] = m.items[col]
		}
		dst = append(dst, models.Itemset{
			Items:   items,
			Support: float64(fs.count) / float64(n),
			Count:   fs.count,
		})
	}
	return dst
}

func indexKey(items []int) string {
	var b strings.Builder
	for i, v := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
