package utils

import (
	"context"
	"os"
	"reflect"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil || lifespan <= 0 {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

// TypeList or TypeList:$scope
func listKey[T any](scope string) string {
	if scope == "" {
		return GetTypeName[T]() + "List"
	}
	return GetTypeName[T]() + "List:" + scope
}

// store a list
func StoreRedisList[T any](ctx context.Context, list []*T, scope string) error {
	return config.SetRedisObject(ctx, listKey[T](scope), list, GetCacheLifespan())
}

// retrieve a list.
// returns nil, nil when not cached (or redis is not configured)
func RetrieveRedisList[T any](ctx context.Context, scope string) ([]*T, error) {
	var result []*T
	exists, err := config.GetRedisObject(ctx, listKey[T](scope), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	if result == nil {
		result = []*T{}
	}
	return result, nil
}

// clear list, TypeList:$scope
func RemoveRedisList[T any](ctx context.Context, scope string) error {
	return config.RemoveRedisKey(ctx, listKey[T](scope))
}
