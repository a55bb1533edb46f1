package protect

import (
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// debugTransport dumps every exchange to the debug log. It is only
// installed when debug logging was requested, so RoundTrip dumps
// unconditionally. The bearer credential is masked in the request dump;
// response bodies are logged as-is, so keep this off outside development.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("dump", redactBearer(string(dump))).Msg("api request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("api request failed")
		return nil, err
	}

	if dump, derr := httputil.DumpResponse(resp, true); derr == nil {
		log.Debug().Int("status", resp.StatusCode).Str("url", req.URL.String()).Str("dump", string(dump)).Msg("api response")
	}
	return resp, nil
}

// redactBearer masks the Authorization header in a wire dump.
func redactBearer(dump string) string {
	lines := strings.Split(dump, "\r\n")
	for i, ln := range lines {
		if strings.HasPrefix(strings.ToLower(ln), "authorization:") {
			lines[i] = "Authorization: Bearer [redacted]"
		}
	}
	return strings.Join(lines, "\r\n")
}

// debugLoggingRequested checks PROTECT_DEBUG=true or DEBUG=true.
func debugLoggingRequested() bool {
	return os.Getenv("PROTECT_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
