package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/assetscan/internal/core/domain"
)

// DefaultPrefix namespaces every key written by AssetSink.
const DefaultPrefix = "assetscan"

// AssetSink stores the latest scan in Redis.
//
// Layout:
//
//	<prefix>:asset:<pos>  JSON encoded AssetRecord at scan position pos
//	<prefix>:assets       list of positions in scan order
//	<prefix>:scan         hash with id, count and saved_at
//
// Names are not unique upstream, so records are keyed by position.
type AssetSink struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewAssetSink creates a sink on top of client. A zero ttl keeps keys forever.
func NewAssetSink(client *Client, prefix string, ttl time.Duration) *AssetSink {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &AssetSink{rdb: client.rdb, prefix: prefix, ttl: ttl}
}

func (s *AssetSink) Name() string { return "redis" }

// Key helpers
func (s *AssetSink) assetKey(pos string) string {
	return fmt.Sprintf("%s:asset:%s", s.prefix, pos)
}

func (s *AssetSink) listKey() string {
	return s.prefix + ":assets"
}

func (s *AssetSink) scanKey() string {
	return s.prefix + ":scan"
}

// Save replaces the stored scan with records in a single transaction.
func (s *AssetSink) Save(ctx context.Context, records []domain.AssetRecord) error {
	previous, err := s.rdb.LRange(ctx, s.listKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("lrange failed: %w", err)
	}

	scanID, _ := domain.ScanIDFrom(ctx)

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, pos := range previous {
			pipe.Del(ctx, s.assetKey(pos))
		}
		pipe.Del(ctx, s.listKey())

		positions := make([]any, 0, len(records))
		for i, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", r.Name, err)
			}
			pos := strconv.Itoa(i)
			pipe.Set(ctx, s.assetKey(pos), data, s.ttl)
			positions = append(positions, pos)
		}
		if len(positions) > 0 {
			pipe.RPush(ctx, s.listKey(), positions...)
		}

		pipe.HSet(ctx, s.scanKey(),
			"id", scanID,
			"count", len(records),
			"saved_at", time.Now().UTC().Format(time.RFC3339),
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.listKey(), s.ttl)
			pipe.Expire(ctx, s.scanKey(), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

// Load returns the stored scan in its original order.
// Positions whose record has expired are skipped.
func (s *AssetSink) Load(ctx context.Context) ([]domain.AssetRecord, error) {
	positions, err := s.rdb.LRange(ctx, s.listKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}
	if len(positions) == 0 {
		return nil, nil
	}

	keys := make([]string, len(positions))
	for i, pos := range positions {
		keys[i] = s.assetKey(pos)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget failed: %w", err)
	}

	records := make([]domain.AssetRecord, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var r domain.AssetRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		records = append(records, r)
	}
	return records, nil
}

// ScanID returns the identifier of the stored scan, or "" if none.
func (s *AssetSink) ScanID(ctx context.Context) (string, error) {
	id, err := s.rdb.HGet(ctx, s.scanKey(), "id").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("hget failed: %w", err)
	}
	return id, nil
}
