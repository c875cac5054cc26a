package session

import (
	"context"
	"fmt"
	"time"

	"wsline/internal/command"
	"wsline/internal/config"
	"wsline/internal/console"
	"wsline/internal/transport"
)

// How long after sending our close frame we wait for the peer's reply
// before tearing the socket down anyway.
const closeGrace = 5 * time.Second

// runBatch sends the execute queue in order, waits the configured
// time for responses, then closes. Interactive input is never wired
// and the connected/disconnected banners are suppressed, so a
// scripted run produces nothing but payload.
func (s *Session) runBatch(ctx context.Context, conn transport.Conn) error {
	for _, cmd := range s.cfg.Execute {
		if err := conn.Send(cmd); err != nil {
			conn.Shutdown()
			return fmt.Errorf("send %q: %w", cmd, err)
		}
	}

	wait := s.cfg.Wait
	if wait <= 0 {
		wait = config.DefaultWait
	}
	closeTimer := time.NewTimer(wait)
	defer closeTimer.Stop()

	// Armed once we have sent our close frame and are only draining.
	var grace <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			s.hangup(conn)
			return nil

		case <-closeTimer.C:
			if err := conn.Close(command.DefaultCloseCode, ""); err != nil {
				conn.Shutdown()
				return nil
			}
			t := time.NewTimer(closeGrace)
			defer t.Stop()
			grace = t.C

		case <-grace:
			// Peer never answered our close.
			conn.Shutdown()
			return nil

		case ev, ok := <-conn.Events():
			if !ok {
				return nil
			}
			switch ev.Kind {
			case transport.Message:
				s.cons.Print(console.Event{Kind: console.Incoming, Text: ev.Text})
			case transport.Err:
				conn.Shutdown()
				return ev.Err
			case transport.Closed:
				conn.Shutdown()
				return nil
			}
		}
	}
}
