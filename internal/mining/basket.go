package mining

import (
	"fmt"
	"slices"

	"basket-dashboard/internal/models"
)

// Matrix is the boolean transaction x item presence table. Rows and columns
// are kept in sorted order and each column is stored as a bitset over rows.
type Matrix struct {
	transactions []string
	items        []string
	txIndex      map[string]int
	itemIndex    map[string]int
	columns      []bitset
}

type cellKey struct {
	tx   string
	item string
}

// BuildMatrix groups records by (transaction, item) and marks an item present
// in a transaction when the quantities of its records sum to a positive value.
// Quantities are non-negative, so that holds exactly when one record is
// positive and no sum is computed. Every transaction id seen becomes a row,
// even when none of its items end up present, so it still counts towards the
// support denominator.
func BuildMatrix(records []models.Transaction) (*Matrix, error) {
	present := make(map[cellKey]bool, len(records))
	txSeen := make(map[string]struct{})
	itemSeen := make(map[string]struct{})

	for i, r := range records {
		if r.Quantity < 0 {
			return nil, fmt.Errorf("%w: record %d (%q, %q) has negative quantity %d",
				ErrDataFormat, i, r.TransactionID, r.ItemName, r.Quantity)
		}
		if r.Quantity > 0 {
			present[cellKey{tx: r.TransactionID, item: r.ItemName}] = true
		}
		txSeen[r.TransactionID] = struct{}{}
		itemSeen[r.ItemName] = struct{}{}
	}

	m := &Matrix{
		transactions: sortedKeys(txSeen),
		items:        sortedKeys(itemSeen),
	}
	m.txIndex = indexOf(m.transactions)
	m.itemIndex = indexOf(m.items)

	m.columns = make([]bitset, len(m.items))
	for i := range m.columns {
		m.columns[i] = newBitset(len(m.transactions))
	}

	for k := range present {
		m.columns[m.itemIndex[k.item]].set(m.txIndex[k.tx])
	}

	return m, nil
}

// EmptyMatrix returns a matrix with no rows and no columns.
func EmptyMatrix() *Matrix {
	m, _ := BuildMatrix(nil)
	return m
}

func (m *Matrix) NumTransactions() int {
	return len(m.transactions)
}

func (m *Matrix) NumItems() int {
	return len(m.items)
}

// Shape returns (rows, columns).
func (m *Matrix) Shape() (int, int) {
	return len(m.transactions), len(m.items)
}

func (m *Matrix) Transactions() []string {
	return slices.Clone(m.transactions)
}

func (m *Matrix) Items() []string {
	return slices.Clone(m.items)
}

func (m *Matrix) Contains(tx, item string) bool {
	row, ok := m.txIndex[tx]
	if !ok {
		return false
	}
	col, ok := m.itemIndex[item]
	if !ok {
		return false
	}
	return m.columns[col].has(row)
}

// Basket returns the items present in tx, sorted.
func (m *Matrix) Basket(tx string) []string {
	row, ok := m.txIndex[tx]
	if !ok {
		return nil
	}
	basket := make([]string, 0)
	for col, item := range m.items {
		if m.columns[col].has(row) {
			basket = append(basket, item)
		}
	}
	return basket
}

// ItemCount returns the number of transactions containing item.
func (m *Matrix) ItemCount(item string) int {
	col, ok := m.itemIndex[item]
	if !ok {
		return 0
	}
	return m.columns[col].count()
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}
