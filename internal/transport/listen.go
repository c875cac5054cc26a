package transport

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// Listener accepts inbound WebSocket upgrades on one port and hands
// each established connection to the session over Conns. Whether a
// connection is kept or rejected is the session's call; the listener
// itself has no connection limit.
type Listener struct {
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	conns    chan Conn
	errs     chan error
	done     chan struct{}
}

// Listen binds the port and starts serving upgrades. A bind failure
// surfaces here synchronously; later serve failures arrive on Errs.
func Listen(port int) (*Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind port %d: %w", port, err)
	}

	l := &Listener{
		ln:    ln,
		conns: make(chan Conn),
		errs:  make(chan error, 1),
		done:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	l.srv = &http.Server{Handler: http.HandlerFunc(l.handle)}

	go func() {
		if err := l.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.errs <- err
		}
	}()
	return l, nil
}

func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ep := newEndpoint(conn)
	select {
	case l.conns <- ep:
	case <-l.done:
		ep.Shutdown()
	}
}

// Conns delivers established connections in arrival order.
func (l *Listener) Conns() <-chan Conn { return l.conns }

// Errs delivers at most one fatal serve error.
func (l *Listener) Errs() <-chan error { return l.errs }

// Port reports the bound port, useful when 0 was requested.
func (l *Listener) Port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

// Close stops accepting and tears down the server.
func (l *Listener) Close() error {
	close(l.done)
	return l.srv.Close()
}
