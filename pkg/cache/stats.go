package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

const STATS_CACHE_KEY = "waitlist:stats"
const DEFAULT_STATS_CACHE_TTL = time.Second * 30

// StatsCache keeps the last computed waitlist stats in redis for TTL. A join
// that creates a signup invalidates it, so the total is only stale across
// writes that bypass this process.
type StatsCache struct {
	RedisClient *redis.Client
	TTL         time.Duration
}

func NewStatsCache(r *redis.Client, ttl time.Duration) StatsCache {
	if ttl <= 0 {
		ttl = DEFAULT_STATS_CACHE_TTL
	}
	return StatsCache{
		RedisClient: r,
		TTL:         ttl,
	}
}

func (sc StatsCache) Set(ctx context.Context, stats waitlist.Stats) error {
	b, err := encodeStats(stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}

	return sc.RedisClient.SetEX(ctx, STATS_CACHE_KEY, b, sc.TTL).Err()
}

// Get returns nil without an error on a cache miss.
func (sc StatsCache) Get(ctx context.Context) (*waitlist.Stats, error) {
	b, err := sc.RedisClient.Get(ctx, STATS_CACHE_KEY).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	stats, err := decodeStats(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize cached stats: %w", err)
	}
	return stats, nil
}

func (sc StatsCache) Invalidate(ctx context.Context) error {
	return sc.RedisClient.Del(ctx, STATS_CACHE_KEY).Err()
}

func encodeStats(stats waitlist.Stats) ([]byte, error) {
	leaders := make([]any, 0, len(stats.ReferralLeaders))
	for _, l := range stats.ReferralLeaders {
		leaders = append(leaders, map[string]any{
			"email":          l.Email,
			"referral_count": l.ReferralCount,
		})
	}

	msg, err := structpb.NewStruct(map[string]any{
		"total_signups":    stats.TotalSignups,
		"referral_leaders": leaders,
	})
	if err != nil {
		return nil, err
	}
	return protobuf.Marshal(msg)
}

func decodeStats(b []byte) (*waitlist.Stats, error) {
	var msg structpb.Struct
	if err := protobuf.Unmarshal(b, &msg); err != nil {
		return nil, err
	}

	fields := msg.GetFields()
	values := fields["referral_leaders"].GetListValue().GetValues()

	stats := &waitlist.Stats{
		TotalSignups:    int64(fields["total_signups"].GetNumberValue()),
		ReferralLeaders: make([]waitlist.Leader, 0, len(values)),
	}
	for _, v := range values {
		leader := v.GetStructValue().GetFields()
		stats.ReferralLeaders = append(stats.ReferralLeaders, waitlist.Leader{
			Email:         leader["email"].GetStringValue(),
			ReferralCount: int64(leader["referral_count"].GetNumberValue()),
		})
	}
	return stats, nil
}
