package idempotency

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "payverify:nonce:"

// acceptScript compares and records the nonce server-side, so concurrent
// accepts across processes still admit exactly one.
const acceptScript = `
local last = redis.call('GET', KEYS[1])
if last and tonumber(ARGV[1]) <= tonumber(last) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`

// scripter is the slice of the go-redis API the store needs; *redis.Client
// satisfies it.
type scripter interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

var _ Store = (*RedisStore)(nil)

// RedisStore keeps last-accepted nonces in Redis so multiple processes can
// share one idempotency view.
type RedisStore struct {
	client    scripter
	keyPrefix string
}

func NewRedisStore(client scripter) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
}

// WithKeyPrefix overrides the default key prefix, e.g. to partition tenants.
func (s *RedisStore) WithKeyPrefix(prefix string) *RedisStore {
	s.keyPrefix = prefix
	return s
}

func (s *RedisStore) Accept(ctx context.Context, sender string, nonce uint64) (bool, error) {
	res, err := s.client.Eval(ctx, acceptScript, []string{s.key(sender)}, nonce).Int()
	if err != nil {
		return false, fmt.Errorf("redis accept nonce for %s: %w", sender, err)
	}
	return res == 1, nil
}

func (s *RedisStore) key(sender string) string {
	return s.keyPrefix + sender
}
