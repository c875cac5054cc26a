package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAndConnectConflict(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--listen", "8080", "--connect", "ws://localhost:9000"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestNoModeShowsHelp(t *testing.T) {
	flags.listen = 0
	flags.connect = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{})

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestUnsupportedProtocolVersion(t *testing.T) {
	flags.listen = 0
	flags.connect = ""

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--connect", "ws://localhost:9000", "--protocol", "8"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol version")
}
