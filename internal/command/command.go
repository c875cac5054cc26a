// Package command parses slash commands typed at the terminal while a
// connection is active. A slash command is a line beginning with "/";
// everything else is plain payload and never reaches this package.
package command

import (
	"strconv"
	"strings"
)

// Kind discriminates parsed slash commands.
type Kind int

const (
	Unrecognized Kind = iota
	Ping
	Pong
	Close
)

// DefaultCloseCode is used when /close is given without a code.
const DefaultCloseCode = 1000

// Command is one parsed slash command. Code and Reason are only
// meaningful for Kind == Close.
type Command struct {
	Kind   Kind
	Code   int
	Reason string
}

// IsSlash reports whether line should be routed through Parse.
func IsSlash(line string) bool {
	return strings.HasPrefix(line, "/")
}

// Parse interprets a slash line. Tokens are split on runs of
// whitespace; the command name is the first token with its leading
// "/" stripped. For /close the second token is an optional numeric
// close code and any remaining tokens are space-joined into the
// reason. A non-numeric second token counts as the start of the
// reason.
func Parse(line string) Command {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{Kind: Unrecognized}
	}

	switch strings.TrimPrefix(tokens[0], "/") {
	case "ping":
		return Command{Kind: Ping}
	case "pong":
		return Command{Kind: Pong}
	case "close":
		cmd := Command{Kind: Close, Code: DefaultCloseCode}
		rest := tokens[1:]
		if len(rest) > 0 {
			if code, err := strconv.Atoi(rest[0]); err == nil {
				cmd.Code = code
				rest = rest[1:]
			}
		}
		cmd.Reason = strings.Join(rest, " ")
		return cmd
	default:
		return Command{Kind: Unrecognized}
	}
}
