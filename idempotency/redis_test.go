package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScripter models the accept script against an in-memory map. Scripts
// run one at a time, like Redis executes Lua, so the mutex is held for the
// whole compare-and-set.
type fakeScripter struct {
	mu     sync.Mutex
	nonces map[string]uint64
	keys   []string
	err    error
}

func newFakeScripter() *fakeScripter {
	return &fakeScripter{nonces: make(map[string]uint64)}
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewCmdResult(nil, f.err)
	}

	key := keys[0]
	f.keys = append(f.keys, key)

	nonce, err := strconv.ParseUint(fmt.Sprint(args[0]), 10, 64)
	if err != nil {
		return redis.NewCmdResult(nil, err)
	}

	last, found := f.nonces[key]
	if found && nonce <= last {
		return redis.NewCmdResult(int64(0), nil)
	}
	f.nonces[key] = nonce
	return redis.NewCmdResult(int64(1), nil)
}

func TestRedisStore_Accept(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(newFakeScripter())

	ok, err := store.Accept(ctx, "a", 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Accept(ctx, "a", 5)
	require.NoError(t, err)
	assert.False(t, ok, "replayed nonce must be rejected")

	ok, err = store.Accept(ctx, "a", 4)
	require.NoError(t, err)
	assert.False(t, ok, "lower nonce must be rejected")

	ok, err = store.Accept(ctx, "a", 6)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Accept(ctx, "b", 1)
	require.NoError(t, err)
	assert.True(t, ok, "senders tracked independently")
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeScripter()

	store := NewRedisStore(fake)
	_, err := store.Accept(ctx, "sender", 1)
	require.NoError(t, err)
	assert.Equal(t, defaultKeyPrefix+"sender", fake.keys[0])

	tenant := NewRedisStore(newFakeScripter()).WithKeyPrefix("tenant42:nonce:")
	fake2 := tenant.client.(*fakeScripter)
	_, err = tenant.Accept(ctx, "sender", 1)
	require.NoError(t, err)
	assert.Equal(t, "tenant42:nonce:sender", fake2.keys[0])
}

func TestRedisStore_ErrorPropagation(t *testing.T) {
	fake := newFakeScripter()
	fake.err = errors.New("connection refused")

	store := NewRedisStore(fake)
	_, err := store.Accept(context.Background(), "a", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis accept nonce")
}

func TestRedisStore_ConcurrentSamePayment(t *testing.T) {
	const workers = 32

	check := Predicate(NewRedisStore(newFakeScripter()))

	var wg sync.WaitGroup
	results := make(chan bool, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			fresh, err := check(context.Background(), txFrom(senderA, 3))
			assert.NoError(t, err)
			results <- fresh
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	accepted := 0
	for fresh := range results {
		if fresh {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted, "script execution admits exactly one accept")
}
