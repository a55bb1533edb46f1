// Package types holds the wire-facing request and response shapes shared by
// the API layer and the public SDK surface.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Registration is the credential pair issued when a device completes the
// nonce/attestation handshake. Both values are opaque bearer strings.
type Registration struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// NonceResponse is the first-phase register response.
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// RefreshResponse carries a rotated access token.
type RefreshResponse struct {
	Token string `json:"token"`
}

// NoticeKey is issued when an isolation notice is created.
type NoticeKey struct {
	Key string `json:"key"`
}

// NoticeValidation is the result of checking a previously issued key.
type NoticeValidation struct {
	Valid bool `json:"valid"`
}

// MetricEvent identifies an analytics event type.
type MetricEvent string

const (
	MetricContactUpload MetricEvent = "CONTACT_UPLOAD"
	MetricForget        MetricEvent = "FORGET"
	MetricTokenRenewal  MetricEvent = "TOKEN_RENEWAL"
)

// MetricPayload is the fire-and-forget analytics event body.
type MetricPayload struct {
	OS      string      `json:"os"`
	Version string      `json:"version"`
	Event   MetricEvent `json:"event"`
}

// InstallCount is one point of the install time series. The backend encodes
// it as a two-element [date, count] tuple.
type InstallCount struct {
	Date  time.Time
	Count int64
}

func (ic *InstallCount) UnmarshalJSON(b []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return fmt.Errorf("install count: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &ic.Date); err != nil {
		return fmt.Errorf("install count date: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &ic.Count); err != nil {
		return fmt.Errorf("install count value: %w", err)
	}
	return nil
}

func (ic InstallCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{ic.Date, ic.Count})
}

// StatsData is the /stats response.
type StatsData struct {
	Installs []InstallCount `json:"installs"`
}
