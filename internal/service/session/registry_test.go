package session

import (
	"context"
	"testing"
	"time"

	"PairView/internal/domain/models"
	"PairView/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noFetch struct{}

func (noFetch) Fetch(context.Context, models.SymbolPair, models.DateRange) (*models.ChartPayload, *models.ViewError) {
	return nil, models.NewViewError(models.NoData, nil)
}

func newTestRegistry(ttl time.Duration, now *time.Time, sizes *[]int) *Registry {
	factory := func() *usecase.ChartViewController {
		return usecase.NewChartViewController(usecase.NewValidator(), noFetch{})
	}
	return NewRegistry(ttl, factory,
		WithClock(func() time.Time { return *now }),
		WithSizeObserver(func(n int) { *sizes = append(*sizes, n) }),
	)
}

func TestRegistry_CreateAndReuse(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var sizes []int
	r := newTestRegistry(time.Minute, &now, &sizes)

	id, c1 := r.GetOrCreate("")
	require.NotEmpty(t, id)
	require.NotNil(t, c1)

	id2, c2 := r.GetOrCreate(id)
	assert.Equal(t, id, id2)
	assert.Same(t, c1, c2)

	id3, c3 := r.GetOrCreate("unknown")
	assert.NotEqual(t, "unknown", id3)
	assert.NotSame(t, c1, c3)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []int{1, 2}, sizes)
}

func TestRegistry_IdleExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var sizes []int
	r := newTestRegistry(time.Minute, &now, &sizes)

	id, _ := r.GetOrCreate("")
	now = now.Add(50 * time.Second)
	_, ok := r.Get(id)
	require.True(t, ok, "access refreshes idle timer")

	now = now.Add(50 * time.Second)
	_, ok = r.Get(id)
	require.True(t, ok)

	now = now.Add(61 * time.Second)
	_, ok = r.Get(id)
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestRegistry_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var sizes []int
	r := newTestRegistry(time.Minute, &now, &sizes)

	old, _ := r.GetOrCreate("")
	now = now.Add(45 * time.Second)
	fresh, _ := r.GetOrCreate("")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	_, ok := r.Get(old)
	assert.False(t, ok)
	_, ok = r.Get(fresh)
	assert.True(t, ok)
	assert.Equal(t, 1, sizes[len(sizes)-1])
}
