package interaction

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/domain/filter"
	"github.com/turtacn/facetmap/pkg/errors"
)

type mockSignaler struct {
	mock.Mock
}

func (m *mockSignaler) Signal(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type failingStore struct {
	filter.Store
}

func (failingStore) Append(context.Context, filter.Filter) error {
	return stderrors.New("store down")
}

func TestClick_ZeroCountIsNoop(t *testing.T) {
	store := filter.NewMemoryStore()
	sig := new(mockSignaler)
	c := NewController(store, sig, nil)

	mutated, err := c.Click(context.Background(), "country_code", Event{Category: "US", Count: 0})
	require.NoError(t, err)
	assert.False(t, mutated)

	set, _ := store.List(context.Background())
	assert.Empty(t, set.Filters)
	sig.AssertNotCalled(t, "Signal", mock.Anything)
}

func TestClick_NegativeCountIsNoop(t *testing.T) {
	store := filter.NewMemoryStore()
	sig := new(mockSignaler)
	c := NewController(store, sig, nil)

	mutated, err := c.Click(context.Background(), "country_code", Event{Category: "US", Count: -3})
	require.NoError(t, err)
	assert.False(t, mutated)

	set, _ := store.List(context.Background())
	assert.Empty(t, set.Filters)
	sig.AssertNotCalled(t, "Signal", mock.Anything)
}

func TestClick_AppendsMustFilterAndSignalsOnce(t *testing.T) {
	ctx := context.Background()
	store := filter.NewMemoryStore()
	sig := new(mockSignaler)
	sig.On("Signal", mock.Anything).Return(nil).Once()
	c := NewController(store, sig, nil)

	mutated, err := c.Click(ctx, "country_code", Event{Category: "US", Count: 5})
	require.NoError(t, err)
	assert.True(t, mutated)

	set, _ := store.List(ctx)
	require.Len(t, set.Filters, 1)
	got := set.Filters[0]
	assert.Equal(t, "country_code", got.Field)
	assert.Equal(t, "US", got.Value)
	assert.Equal(t, filter.MandateMust, got.Mandate)
	assert.True(t, got.Active)

	sig.AssertNumberOfCalls(t, "Signal", 1)
}

func TestClick_StoreFailureDoesNotSignal(t *testing.T) {
	sig := new(mockSignaler)
	c := NewController(failingStore{}, sig, nil)

	mutated, err := c.Click(context.Background(), "country_code", Event{Category: "US", Count: 5})
	require.Error(t, err)
	assert.False(t, mutated)
	sig.AssertNotCalled(t, "Signal", mock.Anything)
}

func TestClick_SignalFailureReported(t *testing.T) {
	store := filter.NewMemoryStore()
	c := NewController(store, SignalFunc(func(context.Context) error { return stderrors.New("bus down") }), nil)

	mutated, err := c.Click(context.Background(), "country_code", Event{Category: "US", Count: 5})
	assert.True(t, mutated)
	assert.ErrorContains(t, err, "bus down")
}

func TestClick_MissingField(t *testing.T) {
	c := NewController(filter.NewMemoryStore(), new(mockSignaler), nil)
	_, err := c.Click(context.Background(), "", Event{Category: "US", Count: 5})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMissingTargetField))
}

func TestClickCategory_ResolvesCount(t *testing.T) {
	ctx := context.Background()
	store := filter.NewMemoryStore()
	signals := 0
	c := NewController(store, SignalFunc(func(context.Context) error { signals++; return nil }), nil)
	counts := aggregate.CategoryCounts{"US": 5}

	mutated, err := c.ClickCategory(ctx, "country_code", "FR", counts)
	require.NoError(t, err)
	assert.False(t, mutated, "absent category counts as zero")

	mutated, err = c.ClickCategory(ctx, "country_code", "US", counts)
	require.NoError(t, err)
	assert.True(t, mutated)
	assert.Equal(t, 1, signals)
}

//Personal.AI order the ending
