package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/NES-Digital-Service/protect-scotland/attest"
	"github.com/NES-Digital-Service/protect-scotland/internal/types"
)

// errorBodyLimit bounds how much of an error response is retained for
// inspection and logging.
const errorBodyLimit = 4 << 10

// FetchNonce performs the first registration phase: an empty POST that
// yields a one-time nonce to bind the device attestation to.
func FetchNonce(ctx context.Context, d Doer, baseURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := d.Request(ctx, baseURL+"/register", Config{
		Method: http.MethodPost,
		Header: jsonHeader(),
		Body:   emptyJSONBody,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", newHTTPError("fetch nonce", resp)
	}

	var nr types.NonceResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return "", err
	}
	if nr.Nonce == "" {
		return "", fmt.Errorf("fetch nonce: empty nonce in response")
	}
	return nr.Nonce, nil
}

// VerifyRegistration performs the second phase: submitting the nonce with
// the device-attestation proof in exchange for the credential pair.
func VerifyRegistration(ctx context.Context, d Doer, baseURL, nonce string, proof attest.Payload) (*types.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(struct {
		Nonce string `json:"nonce"`
		attest.Payload
	}{Nonce: nonce, Payload: proof})
	if err != nil {
		return nil, err
	}

	resp, err := d.Request(ctx, baseURL+"/register", Config{
		Method: http.MethodPut,
		Header: jsonHeader(),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, newHTTPError("verify registration", resp)
	}

	var reg types.Registration
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return nil, err
	}
	if reg.Token == "" || reg.RefreshToken == "" {
		return nil, fmt.Errorf("verify registration: incomplete credentials in response")
	}
	return &reg, nil
}

// DeleteRegistration removes the registered device and its data.
func DeleteRegistration(ctx context.Context, d Doer, baseURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := d.Request(ctx, baseURL+"/register", Config{
		Method:     http.MethodDelete,
		Authorized: true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return newHTTPError("delete registration", resp)
	}
	return nil
}

func newHTTPError(op string, resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: body}
}
