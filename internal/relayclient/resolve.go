package relayclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	localLookupTimeout  = time.Second
	remoteLookupTimeout = 2 * time.Second
)

// fallbackDNS is queried directly when the system resolver fails.
var fallbackDNS = []string{
	"1.1.1.1",
	"1.0.0.1",
	"8.8.8.8",
	"8.8.4.4",
	"9.9.9.9",
	"[2606:4700:4700::1111]",
	"[2001:4860:4860::8888]",
}

// Resolver looks up relay hosts. It tries the system resolver first, then
// races the fallback servers and keeps the first answer.
type Resolver struct {
	servers []string
	local   func(ctx context.Context, host string) ([]string, error)
	remote  func(ctx context.Context, host, server string) ([]string, error)
}

// NewResolver returns a Resolver backed by the well known public servers.
func NewResolver() *Resolver {
	return &Resolver{
		servers: fallbackDNS,
		local:   net.DefaultResolver.LookupHost,
		remote:  lookupVia,
	}
}

// Lookup resolves host to one address, preferring IPv4. IP literals are
// returned unchanged.
func (r *Resolver) Lookup(ctx context.Context, host string) (string, error) {
	if net.ParseIP(host) != nil {
		return host, nil
	}

	lctx, cancel := context.WithTimeout(ctx, localLookupTimeout)
	addrs, err := r.local(lctx, host)
	cancel()
	if err == nil {
		if ip, ok := pickAddr(addrs); ok {
			return ip, nil
		}
	}

	return r.race(ctx, host)
}

func (r *Resolver) race(ctx context.Context, host string) (string, error) {
	if len(r.servers) == 0 {
		return "", fmt.Errorf("resolve %s: no fallback DNS servers", host)
	}

	ctx, cancel := context.WithTimeout(ctx, remoteLookupTimeout)
	defer cancel()

	type result struct {
		ip  string
		err error
	}
	results := make(chan result, len(r.servers))
	for _, server := range r.servers {
		go func() {
			addrs, err := r.remote(ctx, host, server)
			if err != nil {
				results <- result{err: err}
				return
			}
			ip, ok := pickAddr(addrs)
			if !ok {
				results <- result{err: errors.New("no addresses")}
				return
			}
			results <- result{ip: ip}
		}()
	}

	for range r.servers {
		select {
		case res := <-results:
			if res.err == nil {
				return res.ip, nil
			}
		case <-ctx.Done():
			return "", fmt.Errorf("resolve %s: %w", host, ctx.Err())
		}
	}
	return "", fmt.Errorf("resolve %s: all %d fallback DNS servers failed", host, len(r.servers))
}

// DialContext resolves addr's host with r and dials the result.
func (r *Resolver) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := r.Lookup(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("dns lookup failed: %w", err)
	}
	var d net.Dialer
	return d.DialContext(ctx, network, net.JoinHostPort(ip, port))
}

func pickAddr(addrs []string) (string, bool) {
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a, true
		}
	}
	if len(addrs) > 0 {
		return addrs[0], true
	}
	return "", false
}

// lookupVia queries one DNS server over port 53.
func lookupVia(ctx context.Context, host, server string) ([]string, error) {
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, net.JoinHostPort(server, "53"))
		},
	}
	return r.LookupHost(ctx, host)
}
