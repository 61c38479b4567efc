package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campushq/college-portal-api/pkg/errors"
)

type fakeLockClient struct {
	setNXResult bool
	setNXErr    error
	setKeys     []string
	evalKeys    []string
	values      map[string]string
}

func (f *fakeLockClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.setKeys = append(f.setKeys, key)
	if f.setNXErr != nil {
		cmd := redis.NewBoolCmd(ctx)
		cmd.SetErr(f.setNXErr)
		return cmd
	}
	if f.setNXResult {
		if f.values == nil {
			f.values = make(map[string]string)
		}
		f.values[key] = fmt.Sprint(value)
	}
	return redis.NewBoolResult(f.setNXResult, nil)
}

func (f *fakeLockClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.evalKeys = append(f.evalKeys, keys...)
	key := keys[0]
	if f.values[key] == fmt.Sprint(args[0]) {
		delete(f.values, key)
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestBatchLockAcquireAndRelease(t *testing.T) {
	client := &fakeLockClient{setNXResult: true}
	lock := NewBatchLock(client, time.Minute, nil)

	release, err := lock.Acquire(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, client.setKeys, 1)
	assert.Equal(t, "grading:batch-lock:batch-1", client.setKeys[0])
	require.Contains(t, client.values, "grading:batch-lock:batch-1")

	release()
	require.Len(t, client.evalKeys, 1)
	assert.Equal(t, "grading:batch-lock:batch-1", client.evalKeys[0])
	assert.NotContains(t, client.values, "grading:batch-lock:batch-1")
}

func TestBatchLockReleaseKeepsForeignToken(t *testing.T) {
	client := &fakeLockClient{setNXResult: true}
	lock := NewBatchLock(client, time.Minute, nil)

	release, err := lock.Acquire(context.Background(), "batch-1")
	require.NoError(t, err)

	// simulate the TTL expiring and a second run re-acquiring the key
	client.values["grading:batch-lock:batch-1"] = "other-holder"

	release()
	assert.Equal(t, "other-holder", client.values["grading:batch-lock:batch-1"])
}

func TestBatchLockHeldByAnotherRun(t *testing.T) {
	client := &fakeLockClient{setNXResult: false}
	lock := NewBatchLock(client, time.Minute, nil)

	_, err := lock.Acquire(context.Background(), "batch-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrBatchLocked.Code, appErr.Code)
	assert.Empty(t, client.evalKeys)
}

func TestBatchLockRedisError(t *testing.T) {
	client := &fakeLockClient{setNXErr: assert.AnError}
	lock := NewBatchLock(client, time.Minute, nil)

	_, err := lock.Acquire(context.Background(), "batch-1")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
