package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/campushq/college-portal-api/pkg/errors"
)

const batchLockPrefix = "grading:batch-lock:"

// releaseLockScript deletes the lock only while it still holds the
// caller's token, so a run that outlived the TTL cannot drop a lock a
// later run has since acquired.
const releaseLockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

type redisLockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// BatchLock serialises grading operations per batch through a Redis
// advisory lock, so two concurrent recalculations cannot read stale
// aggregates and overwrite each other's writes.
type BatchLock struct {
	client redisLockClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewBatchLock constructs the lock service.
func NewBatchLock(client redisLockClient, ttl time.Duration, logger *zap.Logger) *BatchLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchLock{client: client, ttl: ttl, logger: logger}
}

// Acquire takes the per-batch lock and returns its release func. The TTL
// bounds how long a crashed holder can block the batch.
func (l *BatchLock) Acquire(ctx context.Context, batchID string) (func(), error) {
	key := batchLockPrefix + batchID
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire batch lock")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrBatchLocked, "")
	}
	release := func() {
		deleted, err := l.client.Eval(context.Background(), releaseLockScript, []string{key}, token).Int()
		if err != nil {
			l.logger.Sugar().Warnw("failed to release batch lock", "batch_id", batchID, "error", err)
			return
		}
		if deleted == 0 {
			l.logger.Sugar().Warnw("batch lock expired before release", "batch_id", batchID)
		}
	}
	return release, nil
}
