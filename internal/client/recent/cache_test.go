package recent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/client/migrations"
	"github.com/dmitrijs2005/jobmarket/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type memStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	sets    int
	deletes int
}

func newMemStorage() *memStorage { return &memStorage{data: map[string][]byte{}} }

func (m *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.JobID
	}
	return out
}

func TestRecord_ReviewMovesToFrontWithoutDuplicate(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := New(newMemStorage(), WithClock(clk.now))

	c.Record(ctx, "job1", nil)
	clk.advance(time.Minute)
	c.Record(ctx, "job2", nil)
	clk.advance(time.Minute)
	c.Record(ctx, "job1", &Summary{Title: "Go developer"})

	got := c.List(ctx)
	require.Equal(t, []string{"job1", "job2"}, ids(got))
	assert.True(t, got[0].ViewedAt.Equal(clk.now()))
	assert.Equal(t, "Go developer", got[0].Summary.Title)
}

func TestRecord_CapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := New(newMemStorage(), WithClock(clk.now))

	for i := 1; i <= 11; i++ {
		c.Record(ctx, fmt.Sprintf("job%d", i), nil)
		clk.advance(time.Second)
	}

	got := ids(c.List(ctx))
	require.Len(t, got, Capacity)
	assert.Equal(t, "job11", got[0])
	assert.Equal(t, "job2", got[Capacity-1])
	assert.False(t, c.Contains(ctx, "job1"))
}

func TestRecord_SameInstantKeepsInsertOrder(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := New(newMemStorage(), WithClock(clk.now))

	c.Record(ctx, "a", nil)
	c.Record(ctx, "b", nil)

	assert.Equal(t, []string{"b", "a"}, ids(c.List(ctx)))
}

func TestRecord_EmptyIDIgnored(t *testing.T) {
	ctx := context.Background()
	c := New(newMemStorage())

	c.Record(ctx, "", nil)
	assert.Empty(t, c.List(ctx))
}

func TestList_ExpiredEntriesNeverSurfaced(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	c := New(newMemStorage(), WithClock(clk.now))

	c.Record(ctx, "old", nil)
	clk.advance(Horizon)
	// exactly at the horizon counts as expired
	assert.Empty(t, c.List(ctx))
	assert.False(t, c.Contains(ctx, "old"))
}

func TestLoad_PrunesStaleRawEntryAndRepersists(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	st := newMemStorage()

	raw, err := json.Marshal([]Entry{
		{JobID: "fresh", ViewedAt: clk.now().Add(-time.Hour)},
		{JobID: "stale", ViewedAt: clk.now().Add(-31 * 24 * time.Hour)},
	})
	require.NoError(t, err)
	st.data[StorageKey] = raw

	c := New(st, WithClock(clk.now))
	assert.Equal(t, []string{"fresh"}, ids(c.List(ctx)))

	var persisted []Entry
	require.NoError(t, json.Unmarshal(st.data[StorageKey], &persisted))
	assert.Equal(t, []string{"fresh"}, ids(persisted))
}

func TestLoad_NoPruneNoWrite(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	st := newMemStorage()

	raw, err := json.Marshal([]Entry{{JobID: "a", ViewedAt: clk.now().Add(-time.Hour)}})
	require.NoError(t, err)
	st.data[StorageKey] = raw

	c := New(st, WithClock(clk.now))
	assert.Equal(t, []string{"a"}, ids(c.List(ctx)))
	assert.Zero(t, st.sets)
}

func TestLoad_SortsAndDedupsStoredData(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	st := newMemStorage()

	raw, err := json.Marshal([]Entry{
		{JobID: "a", ViewedAt: clk.now().Add(-3 * time.Hour)},
		{JobID: "b", ViewedAt: clk.now().Add(-time.Hour)},
		{JobID: "a", ViewedAt: clk.now().Add(-2 * time.Hour)},
	})
	require.NoError(t, err)
	st.data[StorageKey] = raw

	c := New(st, WithClock(clk.now))
	got := c.List(ctx)
	assert.Equal(t, []string{"b", "a"}, ids(got))
	assert.True(t, got[1].ViewedAt.Equal(clk.now().Add(-2*time.Hour)))
}

func TestLoad_ReadFailuresDegradeToEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("corrupt data", func(t *testing.T) {
		st := newMemStorage()
		st.data[StorageKey] = []byte("{not json")
		c := New(st)
		assert.Empty(t, c.List(ctx))

		c.Record(ctx, "job1", nil)
		assert.Equal(t, []string{"job1"}, ids(c.List(ctx)))
	})

	t.Run("store unavailable", func(t *testing.T) {
		st := newMemStorage()
		st.getErr = errors.New("disk gone")
		c := New(st)
		assert.Empty(t, c.List(ctx))
	})

	t.Run("no storage", func(t *testing.T) {
		c := New(nil)
		c.Record(ctx, "job1", nil)
		assert.True(t, c.Contains(ctx, "job1"))
	})
}

func TestPersistFailure_KeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	st.setErr = errors.New("read-only")
	c := New(st)

	c.Record(ctx, "job1", nil)
	c.Record(ctx, "job2", nil)

	assert.Equal(t, []string{"job2", "job1"}, ids(c.List(ctx)))
	assert.Equal(t, 2, st.sets)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	st := newMemStorage()
	c := New(st, WithClock(clk.now))

	c.Record(ctx, "a", nil)
	clk.advance(time.Second)
	c.Record(ctx, "b", nil)

	c.Remove(ctx, "a")
	c.Remove(ctx, "missing")
	assert.Equal(t, []string{"b"}, ids(c.List(ctx)))

	c.Clear(ctx)
	assert.Empty(t, c.List(ctx))
	assert.NotContains(t, st.data, StorageKey)
	assert.Equal(t, 1, st.deletes)
}

func TestList_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := New(newMemStorage())
	c.Record(ctx, "a", nil)

	got := c.List(ctx)
	got[0].JobID = "mutated"

	assert.True(t, c.Contains(ctx, "a"))
}

func TestConcurrentRecords_StayBounded(t *testing.T) {
	ctx := context.Background()
	c := New(newMemStorage())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Record(ctx, fmt.Sprintf("job%d", i%15), nil)
		}(i)
	}
	wg.Wait()

	got := ids(c.List(ctx))
	assert.Len(t, got, Capacity)
	seen := map[string]bool{}
	for _, id := range got {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}

func TestSurvivesRestart_SQLite(t *testing.T) {
	ctx := context.Background()
	clk := newClock()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(ctx, db, "."))

	store := metadata.NewSQLiteRepository(db, "visitor@example.com")

	first := New(store, WithClock(clk.now))
	first.Record(ctx, "job1", &Summary{Title: "Backend engineer", City: "Riga", Tier: "gold"})
	clk.advance(time.Minute)
	first.Record(ctx, "job2", nil)

	clk.advance(24 * time.Hour)
	second := New(store, WithClock(clk.now))
	got := second.List(ctx)
	require.Equal(t, []string{"job2", "job1"}, ids(got))
	assert.Equal(t, "Riga", got[1].Summary.City)

	// a month later nothing survives, and the pruned list is written back
	clk.advance(Horizon)
	third := New(store, WithClock(clk.now))
	assert.Empty(t, third.List(ctx))

	raw, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
