package entity

import (
	"fmt"
	"net/url"
	"strings"

	"wallet-aggregator/internal/pkg/apperrors"
)

// RPCURL represents a typed URL for an RPC endpoint.
type RPCURL string

// NewRPCURL creates a new RPCURL instance.
func NewRPCURL(rawURL string) (RPCURL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("rpc url cannot be empty")
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid rpc url format '%s': %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https", "ws", "wss":
	default:
		return "", fmt.Errorf("rpc url '%s' has unsupported scheme: '%s'", rawURL, scheme)
	}

	return RPCURL(rawURL), nil
}

// String returns the string representation of the RPCURL.
func (r RPCURL) String() string {
	return string(r)
}

// IsHTTP reports whether the URL uses the http or https scheme.
func (r RPCURL) IsHTTP() bool {
	s := strings.ToLower(string(r))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsTemplated reports whether the URL still contains a placeholder such as {API_KEY}.
func IsTemplated(rawURL string) bool {
	return strings.ContainsAny(rawURL, "{}") || strings.Contains(rawURL, "${")
}

// SelectRPCURL returns the first candidate, in list order, that is a plain
// http(s) URL without template placeholders.
func SelectRPCURL(candidates []string) (RPCURL, error) {
	for _, raw := range candidates {
		if IsTemplated(raw) {
			continue
		}
		u, err := NewRPCURL(raw)
		if err != nil || !u.IsHTTP() {
			continue
		}
		return u, nil
	}
	return "", fmt.Errorf("%w: no usable http(s) rpc url among %d candidates", apperrors.ErrConfig, len(candidates))
}
