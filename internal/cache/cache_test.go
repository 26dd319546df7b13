package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type payload struct {
	IsRelevant bool     `json:"is_relevant"`
	Topics     []string `json:"suggested_topics"`
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args []string
		want string
	}{
		{"single arg", "content", []string{"Ley de Senos"}, "gemini-cache:content:ley de senos"},
		{"trimmed", "validation", []string{"  Radianes \n"}, "gemini-cache:validation:radianes"},
		{"multiple args", "clarification", []string{"¿Cuánto es SEN(30°)?", " Por qué "}, "gemini-cache:clarification:¿cuánto es sen(30°)?:por qué"},
		{"no args", "ping", nil, "gemini-cache:ping:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.op, tt.args...))
		})
	}

	assert.Equal(t, Key("content", "Ley de Senos"), Key("content", "  ley de senos  "))
}

func TestExactKey(t *testing.T) {
	assert.Equal(t, "gemini-cache:clarification:SEN(x):por qué", ExactKey("clarification", "SEN(x)", Normalize(" Por qué ")))
	assert.NotEqual(t, ExactKey("clarification", "SEN(x)"), ExactKey("clarification", "sen(x)"))
}

func TestCache_SetThenGet(t *testing.T) {
	c := New(NewMemoryStore())
	ctx := t.Context()

	want := payload{IsRelevant: true, Topics: []string{}}
	c.Set(ctx, "k", want)

	var got payload
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, want, got)
	assert.Equal(t, Stats{Hits: 1}, c.Stats())
}

func TestCache_Miss(t *testing.T) {
	c := New(NewMemoryStore())
	var got payload
	assert.False(t, c.Get(t.Context(), "absent", &got))
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestCache_TTL(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	c := New(store, WithClock(clock.Now))
	ctx := t.Context()

	c.Set(ctx, "k", "value")

	clock.Advance(59 * time.Minute)
	var got string
	require.True(t, c.Get(ctx, "k", &got), "entry should be live before TTL")

	clock.Advance(time.Hour)
	assert.False(t, c.Get(ctx, "k", &got), "entry should be expired after TTL")
	assert.Equal(t, int64(1), c.Stats().Expired)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss, "expired entry should be deleted on read")
}

func TestCache_ExactlyTTLIsLive(t *testing.T) {
	clock := newFakeClock()
	c := New(NewMemoryStore(), WithClock(clock.Now), WithTTL(10*time.Minute))
	ctx := t.Context()

	c.Set(ctx, "k", 1)
	clock.Advance(10 * time.Minute)

	var got int
	assert.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 10*time.Minute, c.TTL())
}

func TestCache_StoredFormat(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	c := New(store, WithClock(clock.Now))

	c.Set(t.Context(), "k", payload{IsRelevant: false, Topics: []string{"a"}})

	raw, err := store.Get(t.Context(), "k")
	require.NoError(t, err)
	want := fmt.Sprintf(`{"timestamp":%d,"data":{"is_relevant":false,"suggested_topics":["a"]}}`, clock.Now().UnixMilli())
	assert.JSONEq(t, want, string(raw))
}

func TestCache_CorruptEntryIsDeleted(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := NewMemoryStore()
	c := New(store, WithLogger(zap.New(core)))
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, "k", []byte(`not json`)))

	var got payload
	assert.False(t, c.Get(ctx, "k", &got))
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 1, logs.FilterMessage("discarding corrupt cache entry").Len())
}

type failingStore struct {
	MemoryStore
	getErr error
	setErr error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func TestCache_WriteFailureIsSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &failingStore{MemoryStore: *NewMemoryStore(), setErr: errors.New("quota exceeded")}
	c := New(store, WithLogger(zap.New(core)))

	assert.NotPanics(t, func() { c.Set(t.Context(), "k", "v") })
	assert.Equal(t, int64(1), c.Stats().WriteErrors)
	assert.Equal(t, 1, logs.FilterMessage("cache write failed").Len())
}

func TestCache_UnserializableValue(t *testing.T) {
	c := New(NewMemoryStore())
	c.Set(t.Context(), "k", make(chan int))
	assert.Equal(t, int64(1), c.Stats().WriteErrors)
}

func TestCache_ReadFailureIsMiss(t *testing.T) {
	store := &failingStore{MemoryStore: *NewMemoryStore(), getErr: errors.New("connection reset")}
	c := New(store)

	var got string
	assert.False(t, c.Get(t.Context(), "k", &got))
}

func TestCache_LastWriteWins(t *testing.T) {
	c := New(NewMemoryStore())
	ctx := t.Context()

	c.Set(ctx, "k", "first")
	c.Set(ctx, "k", "second")

	var got string
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "second", got)
}

func TestCache_SweepAndClear(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	c := New(store, WithClock(clock.Now))
	ctx := t.Context()

	c.Set(ctx, Key("content", "old"), "x")
	clock.Advance(2 * time.Hour)
	c.Set(ctx, Key("content", "fresh"), "y")
	require.NoError(t, store.Set(ctx, Key("content", "broken"), []byte(`{`)))
	require.NoError(t, store.Set(ctx, "unrelated", []byte(`keep`)))

	removed, err := c.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cleared, err := c.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)

	_, err = store.Get(ctx, "unrelated")
	assert.NoError(t, err, "keys outside the cache prefix are untouched")
}

type plainStore struct{ Store }

func TestCache_SweepNeedsLister(t *testing.T) {
	c := New(plainStore{NewMemoryStore()})
	_, err := c.Sweep(t.Context())
	assert.Error(t, err)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(NewMemoryStore())
	ctx := t.Context()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key("content", fmt.Sprint(i%5))
			c.Set(ctx, key, i)
			var got int
			c.Get(ctx, key, &got)
		}(i)
	}
	wg.Wait()

	s := c.Stats()
	assert.Equal(t, int64(20), s.Hits+s.Misses)
}
