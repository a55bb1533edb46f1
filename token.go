package protect

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/NES-Digital-Service/protect-scotland/internal/api"
	"github.com/NES-Digital-Service/protect-scotland/internal/types"
	"github.com/NES-Digital-Service/protect-scotland/storage"
)

// createToken rotates the access token using the stored refresh token and
// persists the result. It fails closed: any error yields an empty string,
// and a 401 from the refresh endpoint additionally signals the navigation
// layer to restart onboarding, since the refresh token itself is dead.
//
// stale is the token the caller saw rejected ("" when none was stored).
// Refreshes are serialised under refreshMu, and a caller that waited on
// the lock while another refresh completed picks up the fresh token
// instead of issuing a second rotation.
func (c *Client) createToken(ctx context.Context, stale string) string {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current, err := c.store.Get(ctx, storage.KeyToken); err == nil && current != "" && current != stale {
		return current
	}

	refreshToken, err := c.store.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		refreshToken = ""
	}

	token, err := api.Refresh(ctx, c, c.baseURL, refreshToken)
	if err != nil {
		tokenRenewalFailuresTotal.Inc()
		log.Warn().Err(err).Msg("token refresh failed")

		var he *api.HTTPError
		if errors.As(err, &he) && he.StatusCode == http.StatusUnauthorized {
			c.signalReOnboarding()
		}
		return ""
	}

	if err := c.store.Set(ctx, storage.KeyToken, token); err != nil {
		log.Warn().Err(err).Msg("failed to persist refreshed token")
	}
	tokenRenewalsTotal.Inc()

	// Fire-and-forget; consent gating and error swallowing happen inside
	// SaveMetric. Runs outside the refresh lock.
	go func() {
		_ = c.SaveMetric(context.Background(), types.MetricTokenRenewal)
	}()

	return token
}

// signalReOnboarding asks the UI to reset to the onboarding screen. The
// signal is idempotent: nothing happens when no navigator is configured or
// the user is already onboarding.
func (c *Client) signalReOnboarding() {
	if c.nav == nil {
		return
	}
	if c.nav.CurrentRoute() == RouteOnboarding {
		return
	}
	log.Info().Msg("refresh token rejected, resetting to onboarding")
	c.nav.ResetToOnboarding()
}
