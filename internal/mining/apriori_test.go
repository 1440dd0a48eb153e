package mining

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basket-dashboard/internal/models"
)

func TestMine_MilkBread(t *testing.T) {
	got, err := Mine(context.Background(), milkBread(t), 0.5)
	require.NoError(t, err)

	want := []models.Itemset{
		{Items: []string{"bread"}, Support: 0.75, Count: 3},
		{Items: []string{"milk"}, Support: 0.75, Count: 3},
		{Items: []string{"bread", "milk"}, Support: 0.5, Count: 2},
	}
	assert.Equal(t, want, got)
}

func TestMine_EmptyInputs(t *testing.T) {
	got, err := Mine(context.Background(), EmptyMatrix(), 0.5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = Mine(context.Background(), milkBread(t), 1.0)
	require.NoError(t, err)
	assert.Empty(t, got, "no item is in every basket")
}

func TestMine_InvalidSupport(t *testing.T) {
	for _, v := range []float64{0, -0.1, 1.1, math.NaN()} {
		_, err := Mine(context.Background(), milkBread(t), v)
		assert.ErrorIs(t, err, ErrInvalidThreshold, "min_support=%v", v)
	}
}

func TestMine_MatchesBruteForce(t *testing.T) {
	baskets := randomBaskets(7, 60, 9, 0.35)
	m := matrixFrom(t, baskets)
	oracle := bruteForceSupports(baskets, m.Items())

	for _, minSupport := range []float64{0.05, 0.1, 0.2, 0.4} {
		got, err := Mine(context.Background(), m, minSupport)
		require.NoError(t, err)

		mined := supportTable(got)
		for key, support := range oracle {
			if support >= minSupport && support > 0 {
				assert.Contains(t, mined, key, "min_support=%v", minSupport)
				assert.InDelta(t, support, mined[key], 1e-12)
			} else {
				assert.NotContains(t, mined, key, "min_support=%v", minSupport)
			}
		}
	}
}

func TestMine_AntiMonotone(t *testing.T) {
	m := matrixFrom(t, randomBaskets(11, 80, 8, 0.45))
	got, err := Mine(context.Background(), m, 0.1)
	require.NoError(t, err)

	table := supportTable(got)
	for _, s := range got {
		if s.Len() < 2 {
			continue
		}
		for drop := range s.Items {
			subset := append(append([]string{}, s.Items[:drop]...), s.Items[drop+1:]...)
			sub, ok := table[itemsetKey(subset)]
			require.True(t, ok, "subset %v of %v missing", subset, s.Items)
			assert.GreaterOrEqual(t, sub, s.Support)
		}
	}
}

func TestMine_Deterministic(t *testing.T) {
	baskets := randomBaskets(3, 50, 10, 0.3)

	first, err := Mine(context.Background(), matrixFrom(t, baskets), 0.08)
	require.NoError(t, err)
	second, err := Mine(context.Background(), matrixFrom(t, baskets), 0.08)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMine_MaxLength(t *testing.T) {
	got, err := Mine(context.Background(), milkBread(t), 0.5, WithMaxLength(1))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, 1, s.Len())
	}
}

func TestMine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Mine(ctx, matrixFrom(t, randomBaskets(5, 40, 6, 0.5)), 0.1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func BenchmarkMine(b *testing.B) {
	m := matrixFrom(b, randomBaskets(42, 2000, 40, 0.15))
	b.ResetTimer()
	for b.Loop() {
		if _, err := Mine(context.Background(), m, 0.02); err != nil {
			b.Fatal(err)
		}
	}
}
