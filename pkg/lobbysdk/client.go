package lobbysdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Breakroom lobby service.
// It covers the HTTP read API and opens websocket Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Origin is sent on websocket handshakes. The server checks it against
	// its allow-list; leave empty for non-browser callers.
	Origin string
}

// NewSDKClient creates a new lobby service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// socketURL rewrites the base URL scheme for websocket dialing.
func (c *SDKClient) socketURL(path string) string {
	switch {
	case strings.HasPrefix(c.BaseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.BaseURL, "https://") + path
	case strings.HasPrefix(c.BaseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.BaseURL, "http://") + path
	default:
		return c.BaseURL + path
	}
}
