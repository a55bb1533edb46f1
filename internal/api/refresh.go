package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NES-Digital-Service/protect-scotland/internal/types"
)

// Refresh rotates the access token. The refresh token itself is the bearer
// credential on this call; a 401 here means it is missing, invalid or
// expired and the device must re-register.
func Refresh(ctx context.Context, d Doer, baseURL, refreshToken string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := jsonHeader()
	h.Set("Authorization", "Bearer "+refreshToken)

	resp, err := d.Request(ctx, baseURL+"/refresh", Config{
		Method: http.MethodPost,
		Header: h,
		Body:   emptyJSONBody,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", newHTTPError("refresh token", resp)
	}

	var rr types.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", err
	}
	if rr.Token == "" {
		return "", fmt.Errorf("refresh token: empty token in response")
	}
	return rr.Token, nil
}
