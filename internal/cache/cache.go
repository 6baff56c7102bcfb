package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
}

const keyPrefix = "imaging"

// StudyKey is the key of a cached study description
func StudyKey(studyID string) string {
	return Key("study", studyID)
}

// SeriesKey is the key of a cached series description
func SeriesKey(studyID, seriesID string) string {
	return Key("study", studyID, "series", seriesID)
}

// ThumbnailKey is the key of a rendered thumbnail of one image slot
func ThumbnailKey(studyID, seriesID, imageType string, size int) string {
	return Key("study", studyID, "series", seriesID, "thumb", imageType, fmt.Sprint(size))
}

// StudyPattern matches every key belonging to studyID
func StudyPattern(studyID string) string {
	return StudyKey(studyID) + "*"
}

// Key joins parts under the service prefix. Empty parts are skipped.
func Key(parts ...string) string {
	b := strings.Builder{}
	b.WriteString(keyPrefix)
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// GetJSON reads key and unmarshals it into v
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals v and stores it under key
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
