package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvyanru/weather-apiserver/internal/domain"
	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

// fakeClock is a settable Clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

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

func newTestStore(t *testing.T, ttl time.Duration, clock Clock) *Store {
	t.Helper()
	s := NewStore(Config{TTL: ttl}, clock, nil)
	t.Cleanup(s.Close)
	return s
}

func TestGetOrCreate(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, 30*time.Minute, clock)

	created, err := store.GetOrCreate("s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", created.SessionID)
	assert.Equal(t, "u1", created.UserID)

	again, err := store.GetOrCreate("s1", "someone-else")
	require.NoError(t, err)
	assert.Equal(t, created, again, "existing live session must win")

	_, err = store.GetOrCreate("", "")
	assert.True(t, domain.IsInvalidInput(err))
}

func TestGetOrCreateConcurrentSameID(t *testing.T) {
	store := newTestStore(t, time.Hour, nil)

	const workers = 32
	results := make([]entity.Session, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := store.GetOrCreate("shared", "")
			require.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	// At most one creation wins; every caller observes the same session.
	for i := 1; i < workers; i++ {
		assert.Equal(t, results[0].CreatedAt, results[i].CreatedAt)
	}
	assert.Equal(t, 1, store.Len())
}

func TestGetMissingOrExpired(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, 30*time.Minute, clock)

	_, err := store.Get("nope")
	assert.True(t, domain.IsNotFound(err))

	_, err = store.GetOrCreate("s1", "")
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	_, err = store.Get("s1")
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = store.Get("s1")
	assert.True(t, domain.IsNotFound(err), "expired session reads as absent")
}

func TestExpiredSessionIsReplacedOnGetOrCreate(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, 30*time.Minute, clock)

	first, err := store.GetOrCreate("s1", "")
	require.NoError(t, err)
	require.NoError(t, store.AppendHistory("s1", mustMessage(t, "m1", "s1", clock.Now())))

	clock.Advance(31 * time.Minute)

	second, err := store.GetOrCreate("s1", "")
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	// A replaced session starts with a clean history.
	history, err := store.History("s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUpdateSerializesAndPreservesIdentity(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, time.Hour, clock)

	created, err := store.GetOrCreate("s1", "")
	require.NoError(t, err)

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := store.Update("s1", func(s entity.Session) entity.Session {
					n, _ := s.Context.Extension["counter"].(int)
					return s.WithContext(s.Context.WithExtension("counter", n+1), clock.Now())
				})
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	final, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, final.Context.Extension["counter"], "no lost updates")
	assert.Equal(t, created.SessionID, final.SessionID)
	assert.Equal(t, created.CreatedAt, final.CreatedAt)
}

func TestUpdateCannotRewindActivity(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, time.Hour, clock)

	_, err := store.GetOrCreate("s1", "")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	touched, err := store.Update("s1", func(s entity.Session) entity.Session {
		return s.Touch(clock.Now())
	})
	require.NoError(t, err)

	rewound, err := store.Update("s1", func(s entity.Session) entity.Session {
		s.LastActivity = s.LastActivity.Add(-time.Hour)
		return s
	})
	require.NoError(t, err)
	assert.Equal(t, touched.LastActivity, rewound.LastActivity)
}

func TestHistoryAppendOrder(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, time.Hour, clock)

	_, err := store.GetOrCreate("s1", "")
	require.NoError(t, err)

	history, err := store.History("s1")
	require.NoError(t, err)
	assert.Empty(t, history, "no turns yet yields empty history")

	user := mustMessage(t, "m1", "s1", clock.Now())
	assistant := mustAssistant(t, "m2", "s1", clock.Now())
	require.NoError(t, store.AppendHistory("s1", user, assistant))

	history, err = store.History("s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.MessageTypeUser, history[0].Type)
	assert.Equal(t, entity.MessageTypeAssistant, history[1].Type)

	_, err = store.History("unknown")
	assert.True(t, domain.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t, time.Hour, nil)

	_, err := store.GetOrCreate("s1", "")
	require.NoError(t, err)

	assert.True(t, store.Delete("s1"))
	assert.False(t, store.Delete("s1"), "second delete reports nothing existed")

	_, err = store.Get("s1")
	assert.True(t, domain.IsNotFound(err))
}

func TestEvictExpired(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, 30*time.Minute, clock)

	_, err := store.GetOrCreate("old", "")
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = store.GetOrCreate("young", "")
	require.NoError(t, err)

	clock.Advance(15 * time.Minute) // old at 35m idle, young at 15m

	assert.Equal(t, 1, store.EvictExpired())
	assert.Equal(t, 1, store.Len())

	_, err = store.Get("young")
	assert.NoError(t, err)
}

func mustMessage(t *testing.T, id, sessionID string, now time.Time) entity.Message {
	t.Helper()
	m, err := entity.NewMessage(id, sessionID, entity.MessageTypeUser, "hello", now)
	require.NoError(t, err)
	return m
}

func mustAssistant(t *testing.T, id, sessionID string, now time.Time) entity.Message {
	t.Helper()
	m, err := entity.NewMessage(id, sessionID, entity.MessageTypeAssistant, "hi there", now)
	require.NoError(t, err)
	return m
}
