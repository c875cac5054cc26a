package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wsline/internal/config"
	"wsline/internal/console"
	"wsline/internal/session"
	"wsline/internal/transport"
)

// version is set by the build via -ldflags.
var version = "dev"

// Sentinel for a bare --passphrase, which means "prompt for it".
const passphrasePrompt = "\x00prompt"

var flags struct {
	listen       int
	connect      string
	protocol     int
	origin       string
	execute      []string
	wait         float64
	host         string
	subprotocols []string
	noCheck      bool
	headers      []string
	auth         string
	ca           string
	cert         string
	key          string
	passphrase   string
	noColor      bool
	slash        bool
}

var rootCmd = &cobra.Command{
	Use:           "wsline",
	Short:         "WebSocket cat: bridge a terminal and a single WebSocket connection",
	Long:          "wsline either listens for one inbound WebSocket client or dials one endpoint,\nthen bridges terminal lines with the connection's message stream.",
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&flags.listen, "listen", "l", 0, "listen on port")
	f.StringVarP(&flags.connect, "connect", "c", "", "connect to a WebSocket server")
	f.IntVarP(&flags.protocol, "protocol", "p", 0, "optional protocol version")
	f.StringVarP(&flags.origin, "origin", "o", "", "optional origin")
	f.StringArrayVarP(&flags.execute, "execute", "x", nil, "execute command after connecting (repeatable)")
	f.Float64VarP(&flags.wait, "wait", "w", 2, "wait given seconds after executing command")
	f.StringVar(&flags.host, "host", "", "optional host header")
	f.StringArrayVarP(&flags.subprotocols, "subprotocol", "s", nil, "optional subprotocol (repeatable)")
	f.BoolVarP(&flags.noCheck, "no-check", "n", false, "do not check for unauthorized certificates")
	f.StringArrayVarP(&flags.headers, "header", "H", nil, "set an HTTP header (key:value, repeatable)")
	f.StringVar(&flags.auth, "auth", "", "add basic HTTP authentication header (username:password)")
	f.StringVar(&flags.ca, "ca", "", "specify a certificate authority file")
	f.StringVar(&flags.cert, "cert", "", "specify a client certificate file")
	f.StringVar(&flags.key, "key", "", "specify a client certificate's key file")
	f.StringVar(&flags.passphrase, "passphrase", "", "certificate key passphrase as --passphrase=<value>; prompted silently if given without a value")
	f.Lookup("passphrase").NoOptDefVal = passphrasePrompt
	f.BoolVar(&flags.noColor, "no-color", false, "run without color")
	f.BoolVar(&flags.slash, "slash", false, "enable slash commands (/ping, /pong, /close [code [reason]])")
}

func run(cmd *cobra.Command, args []string) error {
	if flags.listen != 0 && flags.connect != "" {
		return errors.New("either --listen or --connect can be provided, not both")
	}
	if flags.listen == 0 && flags.connect == "" {
		return cmd.Help()
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var consOpts []console.Option
	if cfg.NoColor {
		consOpts = append(consOpts, console.WithNoColor())
	}
	if cfg.ConnectURL != "" && len(cfg.Execute) > 0 {
		consOpts = append(consOpts, console.WithPlainOutput())
	}
	cons := console.New(os.Stdin, os.Stdout, consOpts...)
	sess := session.New(cfg, cons)

	if cfg.ListenPort != 0 {
		return sess.RunListen(ctx)
	}

	opts, err := dialOptions(cfg)
	if err != nil {
		return err
	}
	conn, err := transport.Dial(opts)
	if err != nil {
		return err
	}
	return sess.RunConnect(ctx, conn)
}

// buildConfig layers flag values over environment defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	cfg.ListenPort = flags.listen
	cfg.ConnectURL = flags.connect
	cfg.Protocol = flags.protocol
	cfg.Host = flags.host
	cfg.Subprotocols = flags.subprotocols
	cfg.Headers = flags.headers
	cfg.Auth = flags.auth
	cfg.Execute = flags.execute
	cfg.CA = flags.ca
	cfg.Cert = flags.cert
	cfg.Key = flags.key
	cfg.NoCheck = flags.noCheck
	cfg.NoColor = flags.noColor
	cfg.Slash = flags.slash

	if flags.origin != "" {
		cfg.Origin = flags.origin
	}
	if cmd.Flags().Changed("wait") {
		cfg.Wait = time.Duration(flags.wait * float64(time.Second))
	}

	if cfg.Protocol != 0 && cfg.Protocol != 13 {
		return nil, fmt.Errorf("unsupported protocol version %d (only RFC 6455 version 13 is supported)", cfg.Protocol)
	}

	if flags.passphrase == passphrasePrompt {
		secret, err := config.ReadPassphrase()
		if err != nil {
			return nil, err
		}
		cfg.Passphrase = secret
	} else {
		cfg.Passphrase = flags.passphrase
	}

	return cfg, nil
}

// dialOptions assembles the outbound handshake material.
func dialOptions(cfg *config.Config) (transport.DialOptions, error) {
	header, err := config.ParseHeaders(cfg.Headers)
	if err != nil {
		return transport.DialOptions{}, err
	}
	if cfg.Auth != "" {
		header.Set("Authorization", config.BasicAuth(cfg.Auth))
	}
	if cfg.Origin != "" {
		header.Set("Origin", cfg.Origin)
	}
	if cfg.Host != "" {
		header.Set("Host", cfg.Host)
	}

	tlsCfg, err := cfg.TLSConfig()
	if err != nil {
		return transport.DialOptions{}, err
	}

	return transport.DialOptions{
		URL:          config.NormalizeURL(cfg.ConnectURL),
		Header:       header,
		Subprotocols: cfg.Subprotocols,
		TLS:          tlsCfg,
	}, nil
}
