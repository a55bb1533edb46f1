package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/NES-Digital-Service/protect-scotland/internal/types"
)

// settingsRetryAttempts bounds the idempotent-read retry for remote
// settings and stats loads.
const settingsRetryAttempts = 3

// LoadSettings fetches remote copy and configuration overrides. The call
// is unauthenticated and retried: settings are a non-blocking enhancement,
// so transient failures are worth a couple of backoff rounds.
func LoadSettings(ctx context.Context, d Doer, baseURL string) (*types.RemoteSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := d.RequestRetry(ctx, baseURL+"/settings/language", Config{
		Method: http.MethodGet,
		Header: jsonHeader(),
	}, settingsRetryAttempts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, newHTTPError("load settings", resp)
	}

	var rs types.RemoteSettings
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadStats fetches the install statistics time series.
func LoadStats(ctx context.Context, d Doer, baseURL string) (*types.StatsData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := d.RequestRetry(ctx, baseURL+"/stats", Config{
		Method:     http.MethodGet,
		Header:     jsonHeader(),
		Authorized: true,
	}, settingsRetryAttempts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, newHTTPError("load stats", resp)
	}

	var sd types.StatsData
	if err := json.NewDecoder(resp.Body).Decode(&sd); err != nil {
		return nil, err
	}
	return &sd, nil
}
