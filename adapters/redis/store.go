package redis

import (
	"context"
	"fmt"
	"time"

	"goldpawn/adapters/session"

	"github.com/redis/go-redis/v9"
)

// Store keeps each session in a Redis hash.
type Store struct {
	client  redis.UniversalClient
	options StoreOptions
}

type StoreOptions struct {
	Prefix string
	// TTL is refreshed on every save. Zero keeps keys forever.
	TTL time.Duration
}

type StoreOption func(*StoreOptions)

func WithStorePrefix(prefix string) StoreOption {
	return func(o *StoreOptions) {
		o.Prefix = prefix
	}
}

func WithStoreTTL(ttl time.Duration) StoreOption {
	return func(o *StoreOptions) {
		o.TTL = ttl
	}
}

func NewStore(client redis.UniversalClient, opts ...StoreOption) session.IStore {
	options := StoreOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return &Store{
		client:  client,
		options: options,
	}
}

// Load returns the hash stored under name, an empty map when it does not exist.
func (s *Store) Load(ctx context.Context, name string) (map[string]string, error) {
	const op = "redis.Store.Load"
	result, err := s.client.HGetAll(ctx, s.options.Prefix+name).Result()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to get hash, err=%w", op, err)
	}
	return result, nil
}

// saveScript replaces the whole hash atomically. ARGV[1] is the ttl in
// milliseconds, the rest are field/value pairs.
var saveScript = redis.NewScript(`
local key = KEYS[1]
local ttl = tonumber(ARGV[1])
redis.call('DEL', key)
if #ARGV > 1 then
    redis.call('HSET', key, unpack(ARGV, 2))
    if ttl > 0 then
        redis.call('PEXPIRE', key, ttl)
    end
end
return 1
`)

// Save replaces the stored hash with data. An empty map deletes the session.
func (s *Store) Save(ctx context.Context, name string, data map[string]string) error {
	const op = "redis.Store.Save"
	args := make([]any, 0, len(data)*2+1)
	args = append(args, s.options.TTL.Milliseconds())
	for k, v := range data {
		args = append(args, k, v)
	}
	if err := saveScript.Run(ctx, s.client, []string{s.options.Prefix + name}, args...).Err(); err != nil {
		return fmt.Errorf("[%s] Fail to execute save script, err=%w", op, err)
	}
	return nil
}
