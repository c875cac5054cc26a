// Package session is the lifecycle manager: it owns the single active
// connection, routes transport events to the console, and routes
// console lines to outgoing sends or the slash-command interpreter.
// All state changes happen on the one goroutine running the event
// loop, so the active connection is never touched concurrently.
package session

import (
	"context"
	"fmt"

	"wsline/internal/command"
	"wsline/internal/config"
	"wsline/internal/console"
	"wsline/internal/transport"
)

// Listener is the acceptor surface the listening mode needs; satisfied
// by transport.Listener and by test fakes.
type Listener interface {
	Conns() <-chan transport.Conn
	Errs() <-chan error
	Port() int
	Close() error
}

// Session drives one process lifetime: either a listening acceptor or
// a dialing client, never both.
type Session struct {
	cfg    *config.Config
	cons   *console.Console
	active transport.Conn
}

func New(cfg *config.Config, cons *console.Console) *Session {
	return &Session{cfg: cfg, cons: cons}
}

// RunListen serves inbound connections one at a time. A second
// inbound attempt while one is active is terminated without touching
// the active connection or producing output. Connection-level errors
// are reported but not fatal; the listener keeps serving. Returns nil
// on user-initiated shutdown.
func (s *Session) RunListen(ctx context.Context) error {
	ln, err := transport.Listen(s.cfg.ListenPort)
	if err != nil {
		return err
	}
	defer ln.Close()
	return s.serve(ctx, ln)
}

func (s *Session) serve(ctx context.Context, ln Listener) error {
	go s.cons.Run()
	s.cons.Print(console.Event{Kind: console.Control, Text: fmt.Sprintf("Listening on port %d (press CTRL+C to quit)", ln.Port())})
	s.cons.Pause()
	lines := s.cons.Lines()

	for {
		// A nil channel blocks forever, so with no active connection
		// the select just ignores that arm.
		var events <-chan transport.Event
		if s.active != nil {
			events = s.active.Events()
		}

		select {
		case <-ctx.Done():
			s.dropActive()
			return nil

		case line, ok := <-lines:
			if !ok {
				s.dropActive()
				return nil
			}
			if s.active == nil {
				continue
			}
			if err := s.active.Send(line); err != nil {
				s.cons.Print(console.Event{Kind: console.Error, Text: err.Error()})
			}
			s.cons.Prompt()

		case conn := <-ln.Conns():
			if s.active != nil {
				// Single-connection invariant: terminate the newcomer,
				// leave the active connection alone.
				conn.Shutdown()
				continue
			}
			s.active = conn
			s.cons.Print(console.Event{Kind: console.Control, Text: "Client connected"})
			s.cons.Resume()

		case err := <-ln.Errs():
			return fmt.Errorf("listener: %w", err)

		case ev, ok := <-events:
			if !ok {
				s.disconnect(0)
				continue
			}
			switch ev.Kind {
			case transport.Message:
				s.cons.Print(console.Event{Kind: console.Incoming, Text: ev.Text})
			case transport.Ping:
				s.cons.Print(console.Event{Kind: console.Incoming, Text: "Received ping"})
			case transport.Pong:
				s.cons.Print(console.Event{Kind: console.Incoming, Text: "Received pong"})
			case transport.Err:
				s.cons.Print(console.Event{Kind: console.Error, Text: ev.Err.Error()})
			case transport.Closed:
				s.disconnect(ev.Code)
			}
		}
	}
}

// RunConnect drives one outbound connection to completion. Any
// transport error is fatal: with the single connection broken there
// is nothing left to do. Returns nil on a clean close.
func (s *Session) RunConnect(ctx context.Context, conn transport.Conn) error {
	s.active = conn
	if len(s.cfg.Execute) > 0 {
		return s.runBatch(ctx, conn)
	}

	go s.cons.Run()
	s.cons.Print(console.Event{Kind: console.Control, Text: "Connected (press CTRL+C to quit)"})
	s.cons.Resume()
	lines := s.cons.Lines()

	for {
		select {
		case <-ctx.Done():
			s.hangup(conn)
			return nil

		case line, ok := <-lines:
			if !ok {
				s.hangup(conn)
				return nil
			}
			s.handleLine(conn, line)
			s.cons.Prompt()

		case ev, ok := <-conn.Events():
			if !ok {
				return nil
			}
			switch ev.Kind {
			case transport.Message:
				s.cons.Print(console.Event{Kind: console.Incoming, Text: ev.Text})
			case transport.Ping:
				s.cons.Print(console.Event{Kind: console.Incoming, Text: "Received ping"})
			case transport.Pong:
				s.cons.Print(console.Event{Kind: console.Incoming, Text: "Received pong"})
			case transport.Err:
				s.cons.Print(console.Event{Kind: console.Error, Text: ev.Err.Error()})
				conn.Shutdown()
				return ev.Err
			case transport.Closed:
				s.cons.Print(console.Event{Kind: console.Control, Text: fmt.Sprintf("Disconnected (code: %d)", ev.Code)})
				conn.Shutdown()
				return nil
			}
		}
	}
}

// handleLine forwards a console line: through the interpreter when
// slash commands are enabled and the line starts with "/", verbatim
// otherwise.
func (s *Session) handleLine(conn transport.Conn, line string) {
	if s.cfg.Slash && command.IsSlash(line) {
		var err error
		switch cmd := command.Parse(line); cmd.Kind {
		case command.Ping:
			err = conn.Ping()
		case command.Pong:
			err = conn.Pong()
		case command.Close:
			err = conn.Close(cmd.Code, cmd.Reason)
		default:
			s.cons.Print(console.Event{Kind: console.Error, Text: "Unrecognized slash command."})
		}
		if err != nil {
			s.cons.Print(console.Event{Kind: console.Error, Text: err.Error()})
		}
		return
	}
	if err := conn.Send(line); err != nil {
		s.cons.Print(console.Event{Kind: console.Error, Text: err.Error()})
	}
}

// disconnect clears the active connection in listening mode and
// re-pauses the console until the next client arrives.
func (s *Session) disconnect(code int) {
	if s.active == nil {
		return
	}
	if code != 0 {
		s.cons.Print(console.Event{Kind: console.Control, Text: fmt.Sprintf("Disconnected (code: %d)", code)})
	}
	s.active.Shutdown()
	s.active = nil
	s.cons.Pause()
}

// dropActive closes whatever connection is active on the way out.
func (s *Session) dropActive() {
	if s.active == nil {
		return
	}
	s.active.Close(command.DefaultCloseCode, "")
	s.active.Shutdown()
	s.active = nil
}

// hangup closes the outbound connection on user-initiated teardown.
func (s *Session) hangup(conn transport.Conn) {
	conn.Close(command.DefaultCloseCode, "")
	conn.Shutdown()
	s.active = nil
}
