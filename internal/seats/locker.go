package seats

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/class-schedule/internal/logger"
)

// ErrLockTimeout is returned when a lock could not be acquired in time.
var ErrLockTimeout = errors.New("lock wait timed out")

// Locker serializes work per key.  The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LocalLocker is an in-process keyed mutex.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker returns a LocalLocker that gives up after wait.  A zero
// wait only honours ctx.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{locks: map[string]*keyLock{}, wait: wait}
}

// Lock blocks until key is free, ctx is done or the wait elapses.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if l.wait > 0 {
		t := time.NewTimer(l.wait)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case kl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.sem
				l.release(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	case <-timeout:
		l.release(key, kl)
		return nil, ErrLockTimeout
	}
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker holds locks across processes with SET NX PX.  When Redis is
// unreachable it falls back to an in-process lock.
type RedisLocker struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	retry    time.Duration
	fallback *LocalLocker
	log      zerolog.Logger
}

// NewRedisLocker returns a RedisLocker.  ttl bounds both how long a lock
// is held and how long Lock waits for it.
func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		rdb:      rdb,
		prefix:   prefix,
		ttl:      ttl,
		retry:    50 * time.Millisecond,
		fallback: NewLocalLocker(ttl),
		log:      logger.With("seats"),
	}
}

// Lock implements Locker.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if l.rdb == nil {
		return l.fallback.Lock(ctx, key)
	}
	k := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.log.Warn().Err(err).Str("key", k).Msg("redis lock unavailable, using local lock")
			return l.fallback.Lock(ctx, key)
		}
		if ok {
			return func() {
				// release with a fresh context: the caller's may be done
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := unlockScript.Run(rctx, l.rdb, []string{k}, token).Err(); err != nil {
					l.log.Warn().Err(err).Str("key", k).Msg("redis unlock failed")
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
