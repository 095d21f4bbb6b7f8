package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default configuration values
const (
	DefaultPort                 = 10000
	DefaultMaxMessagesPerSecond = 50
	DefaultShutdownTimeout      = 5 * time.Second

	DefaultRelayURL = "ws://localhost:10000/ws"
	DefaultSTUN     = "stun:stun.l.google.com:19302"
)

// Environment variables read by the server and the CLI.
const (
	EnvPort                 = "PORT"
	EnvMaxMessagesPerSecond = "RELAY_MAX_MESSAGES_PER_SECOND"
	EnvRelayURL             = "RELAY_URL"
	EnvSTUNServer           = "STUN_SERVER"
	EnvTURNServer           = "TURN_SERVER"
	EnvTURNUser             = "TURN_USERNAME"
	EnvTURNPass             = "TURN_PASSWORD"
)

// Server holds the relay server configuration.
type Server struct {
	// Port is the TCP port the relay listens on.
	Port int

	// MaxMessagesPerSecond caps inbound frames per connection. Zero
	// disables the limit.
	MaxMessagesPerSecond int

	ShutdownTimeout time.Duration
}

// ListenAddr returns the address passed to net.Listen.
func (s *Server) ListenAddr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// LoadServer reads the server configuration from the environment, falling
// back to the defaults for anything unset.
func LoadServer() (*Server, error) {
	return loadServer(os.LookupEnv)
}

func loadServer(lookup func(string) (string, bool)) (*Server, error) {
	cfg := &Server{
		Port:                 DefaultPort,
		MaxMessagesPerSecond: DefaultMaxMessagesPerSecond,
		ShutdownTimeout:      DefaultShutdownTimeout,
	}

	if v, ok := lookup(EnvPort); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s %q: must be a port number between 1 and 65535", EnvPort, v)
		}
		cfg.Port = port
	}

	if v, ok := lookup(EnvMaxMessagesPerSecond); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q: must be a non-negative integer", EnvMaxMessagesPerSecond, v)
		}
		cfg.MaxMessagesPerSecond = n
	}

	return cfg, nil
}

// Client holds the relayctl configuration.
type Client struct {
	// RelayURL is the websocket endpoint of the relay.
	RelayURL string

	// HTTPBaseURL is derived from RelayURL and used for the operator
	// endpoints.
	HTTPBaseURL string

	STUNServer string

	// TURN is optional. TURNServer is a bare host such as turn:turn.example.com.
	TURNServer string
	TURNUser   string
	TURNPass   string

	// RelayOnly restricts ICE to TURN relay candidates.
	RelayOnly bool
}

// Options for loading config with CLI flag overrides
type Options struct {
	RelayURL   string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	RelayOnly  bool
}

// LoadClient reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func LoadClient(opts Options) (*Client, error) {
	return loadClient(opts, os.Getenv)
}

func loadClient(opts Options, getenv func(string) string) (*Client, error) {
	relayURL := opts.RelayURL
	if relayURL == "" {
		relayURL = getenv(EnvRelayURL)
	}
	if relayURL == "" {
		relayURL = DefaultRelayURL
	}

	stunServer := opts.STUNServer
	if stunServer == "" {
		stunServer = getenv(EnvSTUNServer)
	}
	if stunServer == "" {
		stunServer = DefaultSTUN
	}

	turnServer := opts.TURNServer
	if turnServer == "" {
		turnServer = getenv(EnvTURNServer)
	}
	turnUser := opts.TURNUser
	if turnUser == "" {
		turnUser = getenv(EnvTURNUser)
	}
	turnPass := opts.TURNPass
	if turnPass == "" {
		turnPass = getenv(EnvTURNPass)
	}

	if opts.RelayOnly && turnServer == "" {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}

	httpBase, err := httpBaseURL(relayURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		RelayURL:    relayURL,
		HTTPBaseURL: httpBase,
		STUNServer:  stunServer,
		TURNServer:  turnServer,
		TURNUser:    turnUser,
		TURNPass:    turnPass,
		RelayOnly:   opts.RelayOnly,
	}, nil
}

// httpBaseURL turns ws://host:port/ws into http://host:port.
func httpBaseURL(relayURL string) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", fmt.Errorf("invalid relay URL: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("invalid relay URL %q: scheme must be ws or wss", relayURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid relay URL %q: missing host", relayURL)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String(), nil
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Client) GetSTUNServers() []string {
	if c.STUNServer == "" || c.STUNServer == "none" {
		return nil
	}
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Client) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	host := strings.TrimPrefix(strings.TrimPrefix(c.TURNServer, "turns:"), "turn:")
	return []string{
		fmt.Sprintf("turn:%s:3478?transport=udp", host),
		fmt.Sprintf("turn:%s:3478?transport=tcp", host),
		fmt.Sprintf("turns:%s:5349?transport=tcp", host),
	}
}

// Endpoint joins an operator path onto the relay's HTTP base URL.
func (c *Client) Endpoint(path string) string {
	return c.HTTPBaseURL + "/" + strings.TrimPrefix(path, "/")
}
