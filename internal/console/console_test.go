package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A bytes.Buffer is not a terminal, so these tests exercise the
// redirected-output contract: payload passes through, chrome does not.

func TestNonInteractiveOnlyIncomingReachesOutput(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.Print(Event{Kind: Control, Text: "Connected (press CTRL+C to quit)"})
	c.Print(Event{Kind: Incoming, Text: "payload one"})
	c.Print(Event{Kind: Error, Text: "boom"})
	c.Print(Event{Kind: Incoming, Text: "payload two"})

	assert.Equal(t, "payload one\npayload two\n", out.String())
}

func TestNonInteractiveNoPromptOrColor(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.Resume()
	c.Prompt()
	c.Print(Event{Kind: Incoming, Text: "data"})
	c.Pause()

	assert.Equal(t, "data\n", out.String())
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestPreservesArrivalOrder(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	for _, msg := range []string{"a", "b", "c", "d"} {
		c.Print(Event{Kind: Incoming, Text: msg})
	}
	assert.Equal(t, "a\nb\nc\nd\n", out.String())
}

func TestRunDeliversLinesAndClosesOnEOF(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("first\nsecond\n"), &out)
	go c.Run()

	var got []string
	for {
		select {
		case line, ok := <-c.Lines():
			if !ok {
				require.Equal(t, []string{"first", "second"}, got)
				return
			}
			got = append(got, line)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for console lines")
		}
	}
}
