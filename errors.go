package protect

import (
	"errors"
	"fmt"
)

// ErrNetworkUnavailable is returned when the connectivity gate fails after
// its single delayed re-probe.
var ErrNetworkUnavailable = errors.New("network unavailable")

// ErrCertificateNotPinned is returned by the pinned transport when no
// certificate in the presented chain matches the configured allow-list.
var ErrCertificateNotPinned = errors.New("server certificate not in pinned set")

// IsNetworkUnavailable reports whether err is the connectivity-gate error.
func IsNetworkUnavailable(err error) bool { return errors.Is(err, ErrNetworkUnavailable) }

// RegisterErrorCode distinguishes the phase of registration that failed.
type RegisterErrorCode int

const (
	// RegisterCodeNonce: the initial nonce POST failed.
	RegisterCodeNonce RegisterErrorCode = iota + 1
	// RegisterCodeAttestation: the device-attestation proof could not be
	// produced.
	RegisterCodeAttestation
	// RegisterCodeVerify: the verify PUT failed.
	RegisterCodeVerify
	// RegisterCodeInvalidTimestamp: the server rejected the attestation
	// timestamp, which almost always means the device clock is skewed. The
	// UI shows a clock-specific message for this code.
	RegisterCodeInvalidTimestamp
)

// RegisterError wraps a registration failure with the phase it occurred in.
type RegisterError struct {
	Code RegisterErrorCode
	Err  error
}

func (e *RegisterError) Error() string {
	return fmt.Sprintf("register (code %d): %v", e.Code, e.Err)
}

func (e *RegisterError) Unwrap() error { return e.Err }

// IsInvalidTimestamp reports whether err is a registration failure caused
// by device clock skew.
func IsInvalidTimestamp(err error) bool {
	var re *RegisterError
	return errors.As(err, &re) && re.Code == RegisterCodeInvalidTimestamp
}
