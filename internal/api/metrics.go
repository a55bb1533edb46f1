package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/NES-Digital-Service/protect-scotland/internal/types"
)

// SaveMetric posts a single analytics event. The backend acknowledges with
// 204 No Content; anything else is reported as failure. Mutating calls are
// never retried, so a lost event stays lost.
func SaveMetric(ctx context.Context, d Doer, baseURL string, payload types.MetricPayload) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	resp, err := d.Request(ctx, baseURL+"/metrics", Config{
		Method:     http.MethodPost,
		Header:     jsonHeader(),
		Body:       body,
		Authorized: true,
	})
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusNoContent, nil
}
