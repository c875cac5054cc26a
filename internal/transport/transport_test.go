package transport

import (
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event stream closed unexpectedly")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestDialEchoAndClose(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		sc := <-ln.Conns()
		defer sc.Shutdown()
		for ev := range sc.Events() {
			switch ev.Kind {
			case Message:
				_ = sc.Send(ev.Text)
			case Closed:
				return
			}
		}
	}()

	client, err := Dial(DialOptions{URL: fmt.Sprintf("ws://127.0.0.1:%d/", ln.Port())})
	require.NoError(t, err)
	defer client.Shutdown()

	require.NoError(t, client.Send("hello"))
	ev := nextEvent(t, client.Events())
	assert.Equal(t, Message, ev.Kind)
	assert.Equal(t, "hello", ev.Text)

	require.NoError(t, client.Close(websocket.CloseNormalClosure, "done"))
	ev = nextEvent(t, client.Events())
	assert.Equal(t, Closed, ev.Kind)
	assert.Equal(t, websocket.CloseNormalClosure, ev.Code)

	select {
	case <-serverDone:
	case <-time.After(3 * time.Second):
		t.Fatal("server side never observed the close")
	}
}

func TestPeerControlFramesSurfaceAsEvents(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	defer ln.Close()

	connCh := make(chan Conn, 1)
	go func() { connCh <- <-ln.Conns() }()

	client, err := Dial(DialOptions{URL: fmt.Sprintf("ws://127.0.0.1:%d/", ln.Port())})
	require.NoError(t, err)
	defer client.Shutdown()

	var server Conn
	select {
	case server = <-connCh:
	case <-time.After(3 * time.Second):
		t.Fatal("listener never delivered the connection")
	}
	defer server.Shutdown()

	require.NoError(t, client.Ping())

	// The ping surfaces server-side; the transport's automatic pong
	// reply surfaces client-side.
	ev := nextEvent(t, server.Events())
	assert.Equal(t, Ping, ev.Kind)

	ev = nextEvent(t, client.Events())
	assert.Equal(t, Pong, ev.Kind)
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(DialOptions{URL: "ws://127.0.0.1:1/"})
	assert.Error(t, err)
}

func TestSubprotocolNegotiation(t *testing.T) {
	ln, err := Listen(0)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		sc := <-ln.Conns()
		sc.Shutdown()
	}()

	client, err := Dial(DialOptions{
		URL:          fmt.Sprintf("ws://127.0.0.1:%d/", ln.Port()),
		Subprotocols: []string{"chat.v1"},
	})
	require.NoError(t, err)
	client.Shutdown()
}
