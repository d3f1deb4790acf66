package collection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recorder collects the events delivered to a subscription.
type recorder struct {
	mu     sync.Mutex
	events []SearchEvent
}

func (r *recorder) callback(ctx context.Context, event SearchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) snapshot() []SearchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SearchEvent(nil), r.events...)
}

func TestNew(t *testing.T) {
	records := []user{{Name: "alice"}}
	c, err := New("users", records)
	require.NoError(t, err)

	assert.Equal(t, "users", c.Name())
	assert.Equal(t, 1, c.Len())

	records[0].Name = "changed"
	assert.Equal(t, "alice", c.All()[0].Name)
}

func TestCollection_Search(t *testing.T) {
	c, err := New("users", users, WithConcurrency(2))
	require.NoError(t, err)

	got, err := c.Search(context.Background(), "age>=18;tags==x")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names(got))

	c.Add(user{Name: "dan", Age: 60, Tags: []string{"x"}})
	assert.Equal(t, 4, c.Len())

	got, err = c.Search(context.Background(), "age>=18;tags==x")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "dan"}, names(got))
}

func TestCollection_SearchEvents(t *testing.T) {
	c, err := New("users", users)
	require.NoError(t, err)

	var started, succeeded, failed recorder
	label := "audit"
	c.RegisterSubscription(RegisterSubscriptionOptions{Event: SearchStart, Label: &label, Callback: started.callback})
	c.RegisterSubscription(RegisterSubscriptionOptions{Event: SearchSuccess, Callback: succeeded.callback})
	c.RegisterSubscription(RegisterSubscriptionOptions{Event: SearchFailed, Callback: failed.callback})

	_, err = c.Search(context.Background(), "name==al*")
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "name=~al")
	require.Error(t, err)

	assert.Eventually(t, func() bool {
		return len(started.snapshot()) == 2 && len(succeeded.snapshot()) == 1 && len(failed.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	success := succeeded.snapshot()[0]
	assert.Equal(t, SearchSuccess, success.Type)
	assert.Equal(t, "search", success.Operation)
	assert.Equal(t, "users", success.Collection)
	require.NotNil(t, success.Filter)
	assert.Equal(t, "name==al*", *success.Filter)
	require.NotNil(t, success.Count)
	assert.Equal(t, 1, *success.Count)
	assert.NotNil(t, success.Duration)
	assert.Nil(t, success.Error)

	failure := failed.snapshot()[0]
	require.NotNil(t, failure.Error)
	assert.Contains(t, *failure.Error, "name=~al")
	assert.Nil(t, failure.Count)

	ids := map[string]bool{}
	for _, e := range started.snapshot() {
		require.NotNil(t, e.SearchID)
		ids[*e.SearchID] = true
	}
	assert.True(t, ids[*success.SearchID])
	assert.True(t, ids[*failure.SearchID])
	assert.NotEqual(t, *success.SearchID, *failure.SearchID)
}

func TestCollection_AddEvent(t *testing.T) {
	c, err := New[user]("users", nil)
	require.NoError(t, err)

	var added recorder
	c.RegisterSubscription(RegisterSubscriptionOptions{Event: RecordsAdded, Callback: added.callback})
	c.Add()
	c.Add(user{Name: "x"}, user{Name: "y"})

	assert.Eventually(t, func() bool { return len(added.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	event := added.snapshot()[0]
	require.NotNil(t, event.Count)
	assert.Equal(t, 2, *event.Count)
	assert.Nil(t, event.SearchID)

	c.Add()
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, added.snapshot(), 1)
	assert.Equal(t, 2, c.Len())
}

func TestCollection_Subscriptions(t *testing.T) {
	c, err := New("users", users)
	require.NoError(t, err)

	var rec recorder
	id := c.RegisterSubscription(RegisterSubscriptionOptions{Event: SearchSuccess, Callback: rec.callback})
	other := c.RegisterSubscription(RegisterSubscriptionOptions{Event: SearchFailed, Callback: rec.callback})
	assert.NotEqual(t, id, other)

	subs := c.Subscriptions()
	require.Len(t, subs, 2)
	for _, s := range subs {
		require.NotNil(t, s.Id)
		assert.Contains(t, []string{id, other}, *s.Id)
	}

	c.UnregisterSubscription(id)
	c.UnregisterSubscription("unknown")
	subs = c.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, other, *subs[0].Id)

	_, err = c.Search(context.Background(), "age>=18")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestCollection_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c, err := New("users", users, WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "age=gt=old")
	require.Error(t, err)

	entries := logs.FilterMessage("Search failed").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "users", entries[0].ContextMap()["collection"])
	assert.Equal(t, "age=gt=old", entries[0].ContextMap()["filter"])
}
