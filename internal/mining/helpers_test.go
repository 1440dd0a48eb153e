package mining

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"basket-dashboard/internal/models"
)

func recordsFrom(baskets map[string][]string) []models.Transaction {
	records := make([]models.Transaction, 0)
	for tx, items := range baskets {
		for _, item := range items {
			records = append(records, models.Transaction{TransactionID: tx, ItemName: item, Quantity: 1})
		}
	}
	return records
}

func matrixFrom(t testing.TB, baskets map[string][]string) *Matrix {
	t.Helper()
	m, err := BuildMatrix(recordsFrom(baskets))
	require.NoError(t, err)
	return m
}

// milkBread is the four-transaction example used across the package tests.
func milkBread(t testing.TB) *Matrix {
	return matrixFrom(t, map[string][]string{
		"T1": {"milk", "bread"},
		"T2": {"milk", "bread"},
		"T3": {"milk"},
		"T4": {"bread"},
	})
}

func randomBaskets(seed uint64, transactions, items int, density float64) map[string][]string {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	baskets := make(map[string][]string, transactions)
	for t := 0; t < transactions; t++ {
		tx := fmt.Sprintf("T%03d", t)
		basket := make([]string, 0)
		for i := 0; i < items; i++ {
			if rng.Float64() < density {
				basket = append(basket, fmt.Sprintf("item-%02d", i))
			}
		}
		baskets[tx] = basket
	}
	return baskets
}

// bruteForceSupports computes the support of every non-empty item combination
// directly from the baskets.
func bruteForceSupports(baskets map[string][]string, items []string) map[string]float64 {
	supports := make(map[string]float64)
	n := len(baskets)
	for mask := 1; mask < 1<<len(items); mask++ {
		subset := make([]string, 0)
		for i, item := range items {
			if mask&(1<<i) != 0 {
				subset = append(subset, item)
			}
		}
		count := 0
		for _, basket := range baskets {
			all := true
			for _, item := range subset {
				if !slices.Contains(basket, item) {
					all = false
					break
				}
			}
			if all {
				count++
			}
		}
		supports[itemsetKey(subset)] = float64(count) / float64(n)
	}
	return supports
}

func supportTable(itemsets []models.Itemset) map[string]float64 {
	table := make(map[string]float64, len(itemsets))
	for _, s := range itemsets {
		table[itemsetKey(s.Items)] = s.Support
	}
	return table
}
