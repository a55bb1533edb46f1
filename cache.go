package protect

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/NES-Digital-Service/protect-scotland/internal/types"
	"github.com/NES-Digital-Service/protect-scotland/storage"
)

// Cache keys used by the built-in cached loads. Kept as the literal keys
// the mobile app has always written so existing installs keep their cache.
const (
	CacheKeySettings = "scot.settings"
	CacheKeyStats    = "scot.statsData"
)

// CachedResponse carries the outcome of a cache-backed load. Data is nil
// when the load failed and no cached value existed; Err is the load
// failure, set even when stale data was served.
type CachedResponse[T any] struct {
	Data *T
	Err  error
}

// WithCache decorates an idempotent read with best-effort caching. On
// success the result is persisted under key; on failure the last persisted
// value is served instead. Storage errors never change the outcome: a
// failed write is logged and the fresh result returned, a failed read
// degrades to Data == nil. WithCache itself never fails.
func WithCache[T any](ctx context.Context, store storage.Store, key string, load func(context.Context) (T, error)) CachedResponse[T] {
	data, err := load(ctx)
	if err == nil {
		if raw, merr := json.Marshal(data); merr != nil {
			log.Warn().Err(merr).Str("key", key).Msg("error encoding cache value")
		} else if serr := store.Set(ctx, key, string(raw)); serr != nil {
			log.Warn().Err(serr).Str("key", key).Msg("error writing cache")
		}
		return CachedResponse[T]{Data: &data}
	}

	log.Warn().Err(err).Str("key", key).Msg("load failed, trying cache")

	raw, gerr := store.Get(ctx, key)
	if gerr != nil {
		if gerr != storage.ErrNotFound {
			log.Warn().Err(gerr).Str("key", key).Msg("error reading cache")
		}
		return CachedResponse[T]{Err: err}
	}

	var cached T
	if uerr := json.Unmarshal([]byte(raw), &cached); uerr != nil {
		log.Warn().Err(uerr).Str("key", key).Msg("error decoding cached value")
		return CachedResponse[T]{Err: err}
	}
	cacheFallbacksTotal.WithLabelValues(key).Inc()
	return CachedResponse[T]{Data: &cached, Err: err}
}

// SettingsWithCache loads remote settings with cache fallback and merges
// them over the baked-in defaults. It always produces usable settings:
// with neither network nor cache the defaults apply unchanged.
func (c *Client) SettingsWithCache(ctx context.Context) (types.Settings, error) {
	res := WithCache(ctx, c.store, CacheKeySettings, func(ctx context.Context) (types.RemoteSettings, error) {
		rs, err := c.LoadSettings(ctx)
		if err != nil {
			return types.RemoteSettings{}, err
		}
		return *rs, nil
	})
	return types.DefaultSettings().Merge(res.Data), res.Err
}

// StatsWithCache loads install statistics with cache fallback.
func (c *Client) StatsWithCache(ctx context.Context) CachedResponse[types.StatsData] {
	return WithCache(ctx, c.store, CacheKeyStats, func(ctx context.Context) (types.StatsData, error) {
		sd, err := c.LoadData(ctx)
		if err != nil {
			return types.StatsData{}, err
		}
		return *sd, nil
	})
}
