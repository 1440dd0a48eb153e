package mining

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basket-dashboard/internal/models"
)

func TestBuildMatrix_PresenceFollowsQuantitySum(t *testing.T) {
	records := []models.Transaction{
		{TransactionID: "536365", ItemName: "WHITE METAL LANTERN", Quantity: 6},
		{TransactionID: "536365", ItemName: "WHITE METAL LANTERN", Quantity: 2},
		{TransactionID: "536365", ItemName: "CREAM CUPID HEARTS COAT HANGER", Quantity: 0},
		{TransactionID: "536366", ItemName: "HAND WARMER UNION JACK", Quantity: 0},
		{TransactionID: "536366", ItemName: "HAND WARMER UNION JACK", Quantity: 3},
		{TransactionID: "536367", ItemName: "WHITE METAL LANTERN", Quantity: 0},
	}

	m, err := BuildMatrix(records)
	require.NoError(t, err)

	rows, cols := m.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)

	tests := []struct {
		tx, item string
		want     bool
	}{
		{"536365", "WHITE METAL LANTERN", true},
		{"536365", "CREAM CUPID HEARTS COAT HANGER", false},
		{"536366", "HAND WARMER UNION JACK", true},
		{"536367", "WHITE METAL LANTERN", false},
		{"536367", "HAND WARMER UNION JACK", false},
		{"missing", "WHITE METAL LANTERN", false},
		{"536365", "missing", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Contains(tt.tx, tt.item), "%s/%s", tt.tx, tt.item)
	}
}

func TestBuildMatrix_LargeQuantitiesStayPresent(t *testing.T) {
	m, err := BuildMatrix([]models.Transaction{
		{TransactionID: "T1", ItemName: "milk", Quantity: math.MaxInt},
		{TransactionID: "T1", ItemName: "milk", Quantity: 1},
		{TransactionID: "T2", ItemName: "bread", Quantity: math.MaxInt},
		{TransactionID: "T2", ItemName: "bread", Quantity: math.MaxInt},
		{TransactionID: "T2", ItemName: "milk", Quantity: 0},
	})
	require.NoError(t, err)

	assert.True(t, m.Contains("T1", "milk"))
	assert.True(t, m.Contains("T2", "bread"))
	assert.False(t, m.Contains("T2", "milk"))
	assert.Equal(t, 1, m.ItemCount("milk"))
}

func TestBuildMatrix_CanonicalOrder(t *testing.T) {
	m := matrixFrom(t, map[string][]string{
		"T3": {"tea", "apple"},
		"T1": {"milk"},
		"T2": {"bread", "milk"},
	})

	assert.Equal(t, []string{"T1", "T2", "T3"}, m.Transactions())
	assert.Equal(t, []string{"apple", "bread", "milk", "tea"}, m.Items())
	assert.Equal(t, []string{"apple", "tea"}, m.Basket("T3"))
	assert.Nil(t, m.Basket("T9"))
	assert.Equal(t, 2, m.ItemCount("milk"))
	assert.Equal(t, 0, m.ItemCount("coffee"))
}

func TestBuildMatrix_RowWithoutPresentItemsStillCounts(t *testing.T) {
	m, err := BuildMatrix([]models.Transaction{
		{TransactionID: "T1", ItemName: "milk", Quantity: 1},
		{TransactionID: "T2", ItemName: "milk", Quantity: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, m.NumTransactions())
	assert.Empty(t, m.Basket("T2"))
}

func TestBuildMatrix_NegativeQuantity(t *testing.T) {
	_, err := BuildMatrix([]models.Transaction{
		{TransactionID: "T1", ItemName: "milk", Quantity: -1},
	})
	require.ErrorIs(t, err, ErrDataFormat)
}

func TestBuildMatrix_Empty(t *testing.T) {
	m, err := BuildMatrix(nil)
	require.NoError(t, err)

	rows, cols := m.Shape()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
	assert.Equal(t, 0, EmptyMatrix().NumItems())
}

func TestBitset(t *testing.T) {
	b := newBitset(130)
	assert.Len(t, b, 3)

	for _, i := range []int{0, 63, 64, 129} {
		b.set(i)
	}
	assert.True(t, b.has(63))
	assert.True(t, b.has(129))
	assert.False(t, b.has(1))
	assert.Equal(t, 4, b.count())

	o := newBitset(130)
	o.set(64)
	o.set(5)
	assert.Equal(t, 1, b.and(o).count())
}
