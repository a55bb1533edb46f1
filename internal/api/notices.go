package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NES-Digital-Service/protect-scotland/attest"
	"github.com/NES-Digital-Service/protect-scotland/internal/types"
)

// FetchNoticeNonce starts the two-phase notice creation, mirroring the
// registration handshake: an empty POST yields a nonce the attestation
// proof must be bound to.
func FetchNoticeNonce(ctx context.Context, d Doer, baseURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := d.Request(ctx, baseURL+"/notices/create", Config{
		Method:     http.MethodPost,
		Header:     jsonHeader(),
		Body:       emptyJSONBody,
		Authorized: true,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", newHTTPError("fetch notice nonce", resp)
	}

	var nr types.NonceResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return "", err
	}
	if nr.Nonce == "" {
		return "", fmt.Errorf("fetch notice nonce: empty nonce in response")
	}
	return nr.Nonce, nil
}

// CreateNotice completes notice creation, submitting the nonce, the
// attestation proof and the isolation end date, and returns the issued key.
func CreateNotice(ctx context.Context, d Doer, baseURL, nonce string, proof attest.Payload, endDate string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := json.Marshal(struct {
		Nonce string `json:"nonce"`
		attest.Payload
		SelfIsolationEndDate string `json:"selfIsolationEndDate"`
	}{Nonce: nonce, Payload: proof, SelfIsolationEndDate: endDate})
	if err != nil {
		return "", err
	}

	resp, err := d.Request(ctx, baseURL+"/notices/create", Config{
		Method:     http.MethodPut,
		Header:     jsonHeader(),
		Body:       body,
		Authorized: true,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", newHTTPError("create notice", resp)
	}

	var nk types.NoticeKey
	if err := json.NewDecoder(resp.Body).Decode(&nk); err != nil {
		return "", err
	}
	if nk.Key == "" {
		return "", fmt.Errorf("create notice: empty key in response")
	}
	return nk.Key, nil
}

// ValidateNoticeKey checks whether a previously issued notice key is still
// valid.
func ValidateNoticeKey(ctx context.Context, d Doer, baseURL, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	body, err := json.Marshal(types.NoticeKey{Key: key})
	if err != nil {
		return false, err
	}

	resp, err := d.Request(ctx, baseURL+"/notices/validate", Config{
		Method:     http.MethodPost,
		Header:     jsonHeader(),
		Body:       body,
		Authorized: true,
	})
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, newHTTPError("validate notice key", resp)
	}

	var nv types.NoticeValidation
	if err := json.NewDecoder(resp.Body).Decode(&nv); err != nil {
		return false, err
	}
	return nv.Valid, nil
}
