package entity

import "strings"

// Protocol defines the type for RPC protocols.
type Protocol string

// Constants for known protocols.
const (
	ProtocolHTTP    Protocol = "http"
	ProtocolHTTPS   Protocol = "https"
	ProtocolWS      Protocol = "ws"
	ProtocolWSS     Protocol = "wss"
	ProtocolUnknown Protocol = "unknown"
)

// ProtocolOf derives the protocol from the URL scheme.
func ProtocolOf(rawURL string) Protocol {
	scheme, _, _ := strings.Cut(rawURL, "://")
	switch strings.ToLower(scheme) {
	case "http":
		return ProtocolHTTP
	case "https":
		return ProtocolHTTPS
	case "ws":
		return ProtocolWS
	case "wss":
		return ProtocolWSS
	default:
		return ProtocolUnknown
	}
}

// RPCDetail holds information about a specific RPC endpoint after checking.
type RPCDetail struct {
	URL       string   `json:"url"`
	Protocol  Protocol `json:"protocol"`
	Templated bool     `json:"templated,omitempty"`
	IsWorking *bool    `json:"isWorking"`
	LatencyMs *int64   `json:"latencyMs,omitempty"`
}
