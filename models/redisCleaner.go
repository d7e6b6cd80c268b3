package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

type RedisCleaner interface {
	RemoveAllRedis(ctx context.Context) error // remove cached lists containing the object
}

// items embed their units, so both lists go stale together
func (obj Item) RemoveAllRedis(ctx context.Context) error {
	if err := utils.RemoveRedisList[Item](ctx, ""); err != nil {
		return err
	}
	return utils.RemoveRedisList[Unit](ctx, "")
}

func (obj Unit) RemoveAllRedis(ctx context.Context) error {
	if err := utils.RemoveRedisList[Unit](ctx, ""); err != nil {
		return err
	}
	return utils.RemoveRedisList[Item](ctx, "")
}

func (obj State) RemoveAllRedis(ctx context.Context) error {
	return utils.RemoveRedisList[State](ctx, "")
}

func (obj City) RemoveAllRedis(ctx context.Context) error {
	return utils.RemoveRedisList[City](ctx, fmt.Sprint(obj.StateId))
}

func (obj Market) RemoveAllRedis(ctx context.Context) error {
	return utils.RemoveRedisList[Market](ctx, fmt.Sprint(obj.CityId))
}

func clearRedis[T RedisCleaner](ctx context.Context, funcName string, obj T) {
	if err := obj.RemoveAllRedis(ctx); err != nil {
		logCacheError(funcName, err)
	}
}

// The cache is optional: failures are logged and the caller falls back to the database.
func logCacheError(funcName string, err error) {
	config.GetLogger().WithFields(logrus.Fields{
		"module":   "models",
		"funcName": funcName,
	}).Warn("redis cache unavailable: " + err.Error())
}

const catalogLockTTL = 5 * time.Second

// obtainCatalogLock serializes find-or-create of one catalog name across API instances.
// Best effort: correctness comes from the unique index, so a missing redis or a lock
// that cannot be obtained only costs an extra conflict round-trip.
func obtainCatalogLock(ctx context.Context, key string) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}
	lock, err := locker.Obtain(ctx, "lock:catalog:"+key, catalogLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
	})
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{
			"module": "models",
			"key":    key,
		}).Warn("could not obtain catalog lock; proceeding without it: " + err.Error())
		return func() {}
	}
	return func() {
		if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			config.GetLogger().WithFields(logrus.Fields{
				"module": "models",
				"key":    key,
			}).Warn("failed to release catalog lock: " + releaseErr.Error())
		}
	}
}
