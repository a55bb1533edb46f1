package protect

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/NES-Digital-Service/protect-scotland/internal/api"
	"github.com/NES-Digital-Service/protect-scotland/internal/types"
	"github.com/NES-Digital-Service/protect-scotland/storage"
)

// Register performs the two-phase device registration: obtain a nonce,
// produce a device-attestation proof bound to it, and exchange both for a
// credential pair, which is persisted before returning. Failures carry a
// RegisterErrorCode naming the phase; a server-reported "Invalid
// timestamp" gets its own code so the UI can tell the user to fix their
// clock.
func (c *Client) Register(ctx context.Context) (*types.Registration, error) {
	nonce, err := api.FetchNonce(ctx, c, c.baseURL)
	if err != nil {
		return nil, &RegisterError{Code: RegisterCodeNonce, Err: err}
	}

	proof, err := c.attest.Verify(ctx, nonce)
	if err != nil {
		return nil, &RegisterError{Code: RegisterCodeAttestation, Err: err}
	}

	reg, err := api.VerifyRegistration(ctx, c, c.baseURL, nonce, proof)
	if err != nil {
		var he *api.HTTPError
		if errors.As(err, &he) && he.ServerMessage() == "Invalid timestamp" {
			return nil, &RegisterError{Code: RegisterCodeInvalidTimestamp, Err: err}
		}
		return nil, &RegisterError{Code: RegisterCodeVerify, Err: err}
	}

	if err := c.store.Set(ctx, storage.KeyToken, reg.Token); err != nil {
		log.Warn().Err(err).Msg("failed to persist access token")
	}
	if err := c.store.Set(ctx, storage.KeyRefreshToken, reg.RefreshToken); err != nil {
		log.Warn().Err(err).Msg("failed to persist refresh token")
	}
	return reg, nil
}

// Forget deletes the registration server-side and clears local
// credentials. A best-effort FORGET metric is fired first, while the
// credentials still exist. Never returns an error: logout cleanup is
// non-critical, so failure only reports false.
func (c *Client) Forget(ctx context.Context) bool {
	_ = c.SaveMetric(ctx, types.MetricForget)

	if err := api.DeleteRegistration(ctx, c, c.baseURL); err != nil {
		log.Warn().Err(err).Msg("error forgetting user")
		return false
	}

	for _, key := range []string{storage.KeyToken, storage.KeyRefreshToken} {
		if err := c.store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to clear credential")
		}
	}
	return true
}

// LoadSettings fetches remote settings, retried with backoff. Callers
// normally go through SettingsWithCache.
func (c *Client) LoadSettings(ctx context.Context) (*types.RemoteSettings, error) {
	return api.LoadSettings(ctx, c, c.baseURL)
}

// LoadData fetches install statistics, retried with backoff. Callers
// normally go through StatsWithCache.
func (c *Client) LoadData(ctx context.Context) (*types.StatsData, error) {
	return api.LoadStats(ctx, c, c.baseURL)
}

// SaveMetric posts an analytics event if, and only if, the user has opted
// in (stored analyticsConsent is literally "true"). It never returns an
// error: analytics are fire-and-forget, so any failure just reports false.
func (c *Client) SaveMetric(ctx context.Context, event types.MetricEvent) bool {
	consent, err := c.store.Get(ctx, storage.KeyAnalyticsConsent)
	if err != nil || consent != "true" {
		return false
	}

	ok, err := api.SaveMetric(ctx, c, c.baseURL, types.MetricPayload{
		OS:      c.platform,
		Version: c.appVersion,
		Event:   event,
	})
	if err != nil {
		log.Warn().Err(err).Str("event", string(event)).Msg("error saving metric")
		return false
	}
	return ok
}

// CreateNotice issues an isolation notice for the given end date via the
// nonce-attested two-phase flow and returns the notice key.
func (c *Client) CreateNotice(ctx context.Context, endDate string) (string, error) {
	nonce, err := api.FetchNoticeNonce(ctx, c, c.baseURL)
	if err != nil {
		return "", err
	}
	proof, err := c.attest.Verify(ctx, nonce)
	if err != nil {
		return "", err
	}
	return api.CreateNotice(ctx, c, c.baseURL, nonce, proof, endDate)
}

// ValidateNoticeKey checks a previously issued notice key.
func (c *Client) ValidateNoticeKey(ctx context.Context, key string) (bool, error) {
	return api.ValidateNoticeKey(ctx, c, c.baseURL, key)
}
