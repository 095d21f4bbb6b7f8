package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := loadServer(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, ":10000", cfg.ListenAddr())
	assert.Equal(t, DefaultMaxMessagesPerSecond, cfg.MaxMessagesPerSecond)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoadServer_FromEnv(t *testing.T) {
	cfg, err := loadServer(envMap(map[string]string{
		EnvPort:                 " 8080 ",
		EnvMaxMessagesPerSecond: "0",
	}))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0, cfg.MaxMessagesPerSecond)
}

func TestLoadServer_EmptyPortFallsBack(t *testing.T) {
	cfg, err := loadServer(envMap(map[string]string{EnvPort: ""}))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadServer_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"port not a number": {EnvPort: "http"},
		"port zero":         {EnvPort: "0"},
		"port too large":    {EnvPort: "70000"},
		"negative rate":     {EnvMaxMessagesPerSecond: "-1"},
		"rate not a number": {EnvMaxMessagesPerSecond: "fast"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadServer(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadServer_UsesProcessEnv(t *testing.T) {
	t.Setenv(EnvPort, "9999")
	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
}

func TestLoadClient_Priority(t *testing.T) {
	env := map[string]string{
		EnvRelayURL:   "wss://relay.example.com/ws",
		EnvSTUNServer: "stun:env.example.com:3478",
	}
	getenv := func(k string) string { return env[k] }

	cfg, err := loadClient(Options{}, getenv)
	require.NoError(t, err)
	assert.Equal(t, "wss://relay.example.com/ws", cfg.RelayURL)
	assert.Equal(t, "https://relay.example.com", cfg.HTTPBaseURL)
	assert.Equal(t, []string{"stun:env.example.com:3478"}, cfg.GetSTUNServers())

	cfg, err = loadClient(Options{RelayURL: "ws://127.0.0.1:4000/ws", STUNServer: "none"}, getenv)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4000", cfg.HTTPBaseURL)
	assert.Equal(t, "http://127.0.0.1:4000/rooms", cfg.Endpoint("/rooms"))
	assert.Nil(t, cfg.GetSTUNServers())

	cfg, err = loadClient(Options{}, func(string) string { return "" })
	require.NoError(t, err)
	assert.Equal(t, DefaultRelayURL, cfg.RelayURL)
	assert.Equal(t, DefaultSTUN, cfg.STUNServer)
}

func TestLoadClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"http://example.com/ws", "ws://", "::bad"} {
		_, err := loadClient(Options{RelayURL: u}, func(string) string { return "" })
		assert.Error(t, err, u)
	}
}

func TestLoadClient_TURN(t *testing.T) {
	env := map[string]string{
		EnvTURNServer: "turn:turn.example.com",
		EnvTURNUser:   "env-user",
		EnvTURNPass:   "env-pass",
	}
	getenv := func(k string) string { return env[k] }

	cfg, err := loadClient(Options{TURNUser: "flag-user", RelayOnly: true}, getenv)
	require.NoError(t, err)
	assert.Equal(t, "flag-user", cfg.TURNUser)
	assert.Equal(t, "env-pass", cfg.TURNPass)
	assert.True(t, cfg.RelayOnly)
	assert.Equal(t, []string{
		"turn:turn.example.com:3478?transport=udp",
		"turn:turn.example.com:3478?transport=tcp",
		"turns:turn.example.com:5349?transport=tcp",
	}, cfg.GetTURNServers())

	_, err = loadClient(Options{RelayOnly: true}, func(string) string { return "" })
	assert.ErrorContains(t, err, "without TURN server")

	cfg, err = loadClient(Options{}, func(string) string { return "" })
	require.NoError(t, err)
	assert.Nil(t, cfg.GetTURNServers())
}
