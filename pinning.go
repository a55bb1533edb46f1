package protect

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// newPinnedTransport returns an http.Transport whose TLS handshake rejects
// any chain that contains no certificate matching one of the given
// hex-encoded SHA-256 fingerprints. Pinning runs in addition to standard
// chain verification, never instead of it. The fingerprint set is injected
// configuration; it is deployment-specific and rotates with the backend's
// certificates.
func newPinnedTransport(fingerprints []string) (*http.Transport, error) {
	if len(fingerprints) == 0 {
		return nil, fmt.Errorf("pinning: empty fingerprint set")
	}
	pinned := make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		norm := strings.ToLower(strings.ReplaceAll(fp, ":", ""))
		if _, err := hex.DecodeString(norm); err != nil || len(norm) != sha256.Size*2 {
			return nil, fmt.Errorf("pinning: invalid sha256 fingerprint %q", fp)
		}
		pinned[norm] = struct{}{}
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("pinning: unexpected default transport type")
	}
	tr := base.Clone()
	tr.TLSClientConfig = &tls.Config{
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			for _, raw := range rawCerts {
				sum := sha256.Sum256(raw)
				if _, ok := pinned[hex.EncodeToString(sum[:])]; ok {
					return nil
				}
			}
			return ErrCertificateNotPinned
		},
	}
	return tr, nil
}
