package stream

import (
	"context"
	"fmt"

	"github.com/shpandrak/shpanzip"
)

// CollectToMap collects the elements of the stream into a map, kvFactory splits every element to a key and a value.
// A duplicate key fails the collection.
func CollectToMap[T any, K comparable, V any](
	ctx context.Context,
	s Stream[T],
	kvFactory func(T) (K, V),
) (map[K]V, error) {
	result := make(map[K]V)
	err := s.ConsumeWithErr(ctx, func(src T) error {
		k, v := kvFactory(src)
		if existingValue, ok := result[k]; ok {
			return fmt.Errorf("duplicate key %v for source values %v and %v", k, v, existingValue)
		}
		result[k] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CollectToSet collects the elements of the stream into a set. Duplicates are collapsed.
func CollectToSet[K comparable](ctx context.Context, s Stream[K]) (map[K]struct{}, error) {
	result := make(map[K]struct{})
	err := s.Consume(ctx, func(k K) {
		result[k] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MustCollectToSet is CollectToSet that panics on error, use it in tests or with static data.
func MustCollectToSet[K comparable](s Stream[K]) map[K]struct{} {
	result, err := CollectToSet[K](context.Background(), s)
	if err != nil {
		panic(fmt.Sprintf("error collecting to set: %v", err))
	}
	return result
}

// CollectCountGroupedBy counts the elements of the stream per group, as classified by grouper.
func CollectCountGroupedBy[K comparable, T any](
	ctx context.Context,
	s Stream[T],
	grouper shpanzip.Mapper[T, K],
) (map[K]uint64, error) {
	result := make(map[K]uint64)
	err := s.Consume(ctx, func(v T) {
		result[grouper(v)]++
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
