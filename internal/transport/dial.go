package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// DialOptions carries everything needed to establish one outbound
// connection. Header may include Origin, Authorization and a Host
// override; gorilla lifts Host out of the map onto the request.
type DialOptions struct {
	URL          string
	Header       http.Header
	Subprotocols []string
	TLS          *tls.Config
}

// Dial establishes one outbound connection. A non-nil Conn means the
// connection is open and its event stream is live.
func Dial(opts DialOptions) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
		Subprotocols:     opts.Subprotocols,
		TLSClientConfig:  opts.TLS,
	}

	conn, resp, err := dialer.Dial(opts.URL, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (HTTP %d)", opts.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", opts.URL, err)
	}
	return newEndpoint(conn), nil
}
