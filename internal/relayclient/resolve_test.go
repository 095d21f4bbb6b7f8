package relayclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeResolver(local []string, localErr error, remote map[string][]string) *Resolver {
	servers := make([]string, 0, len(remote))
	for s := range remote {
		servers = append(servers, s)
	}
	return &Resolver{
		servers: servers,
		local: func(context.Context, string) ([]string, error) {
			return local, localErr
		},
		remote: func(_ context.Context, _, server string) ([]string, error) {
			if addrs := remote[server]; len(addrs) > 0 {
				return addrs, nil
			}
			return nil, errors.New("no such host")
		},
	}
}

func TestResolver_IPLiteral(t *testing.T) {
	r := fakeResolver(nil, errors.New("must not be called"), nil)
	ip, err := r.Lookup(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)
}

func TestResolver_PrefersIPv4(t *testing.T) {
	r := fakeResolver([]string{"::1", "10.0.0.7"}, nil, nil)
	ip, err := r.Lookup(context.Background(), "relay.test")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)
}

func TestResolver_FallsBackWhenLocalFails(t *testing.T) {
	r := fakeResolver(nil, errors.New("servfail"), map[string][]string{
		"a": nil,
		"b": {"192.0.2.10"},
	})
	ip, err := r.Lookup(context.Background(), "relay.test")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.10", ip)
}

func TestResolver_AllFail(t *testing.T) {
	r := fakeResolver(nil, errors.New("servfail"), map[string][]string{"a": nil, "b": nil})
	_, err := r.Lookup(context.Background(), "relay.test")
	assert.ErrorContains(t, err, "all 2 fallback DNS servers failed")

	r = fakeResolver(nil, errors.New("servfail"), nil)
	_, err = r.Lookup(context.Background(), "relay.test")
	assert.ErrorContains(t, err, "no fallback DNS servers")
}
