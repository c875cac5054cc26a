// Package transport wraps gorilla/websocket into the small endpoint
// surface the session works against: send text, send control frames,
// and consume an ordered stream of connection events. Framing and
// handshake stay inside gorilla.
package transport

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Time allowed to flush a control frame to the peer.
const writeWait = 10 * time.Second

// EventKind discriminates connection events.
type EventKind int

const (
	// Message is a data message from the peer.
	Message EventKind = iota
	// Ping and Pong are control frames received from the peer. The
	// pong reply to a ping is sent here in the transport, not by the
	// session.
	Ping
	Pong
	// Closed means the connection is gone; Code carries the close code.
	Closed
	// Err is a transport failure. A Closed event with code 1006
	// follows it, so consumers that survive errors still observe the
	// teardown.
	Err
)

// Event is one connection event. Events are delivered in the order
// the connection produced them.
type Event struct {
	Kind EventKind
	Text string
	Code int
	Err  error
}

// Conn is one established WebSocket connection as seen by a session.
type Conn interface {
	Send(text string) error
	Ping() error
	Pong() error
	// Close sends a close frame; the connection stays readable until
	// the peer's close reply surfaces as a Closed event.
	Close(code int, reason string) error
	// Shutdown tears down the underlying socket.
	Shutdown() error
	Events() <-chan Event
}

// Endpoint implements Conn over a gorilla connection. gorilla does
// not allow concurrent writes, so data writes hold a mutex; control
// frames go through WriteControl, which is safe on its own.
type Endpoint struct {
	conn   *websocket.Conn
	wmu    sync.Mutex
	events chan Event
	once   sync.Once
}

func newEndpoint(conn *websocket.Conn) *Endpoint {
	ep := &Endpoint{
		conn:   conn,
		events: make(chan Event, 16),
	}

	// Surface peer control frames as events. The ping handler keeps
	// the default reply behavior: the pong goes out from here.
	conn.SetPingHandler(func(appData string) error {
		ep.events <- Event{Kind: Ping, Text: appData}
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		if e, ok := err.(net.Error); ok && e.Timeout() {
			return nil
		}
		return err
	})
	conn.SetPongHandler(func(appData string) error {
		ep.events <- Event{Kind: Pong, Text: appData}
		return nil
	})

	go ep.run()
	return ep
}

// run is the read loop. Handlers above fire inside ReadMessage, so
// every event lands on the channel from this one goroutine and order
// is preserved.
func (ep *Endpoint) run() {
	defer close(ep.events)
	for {
		_, data, err := ep.conn.ReadMessage()
		if err != nil {
			if ce, ok := err.(*websocket.CloseError); ok {
				ep.events <- Event{Kind: Closed, Code: ce.Code}
			} else {
				ep.events <- Event{Kind: Err, Err: err}
				ep.events <- Event{Kind: Closed, Code: websocket.CloseAbnormalClosure}
			}
			return
		}
		ep.events <- Event{Kind: Message, Text: string(data)}
	}
}

func (ep *Endpoint) Send(text string) error {
	ep.wmu.Lock()
	defer ep.wmu.Unlock()
	return ep.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (ep *Endpoint) Ping() error {
	return ep.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (ep *Endpoint) Pong() error {
	return ep.conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(writeWait))
}

func (ep *Endpoint) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	return ep.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func (ep *Endpoint) Shutdown() error {
	var err error
	ep.once.Do(func() {
		err = ep.conn.Close()
	})
	return err
}

func (ep *Endpoint) Events() <-chan Event { return ep.events }
