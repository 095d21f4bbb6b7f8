// Package selftest checks a relay end to end: two local WebRTC peers meet
// in a fresh room, exchange offer, answer and candidates through the relay,
// and bounce a message over a data channel.
package selftest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/BioHazard786/roomrelay/internal/relayclient"
	"github.com/BioHazard786/roomrelay/internal/signaling"
	"github.com/BioHazard786/roomrelay/internal/words"
)

const (
	DefaultTimeout = 30 * time.Second

	dataChannelLabel = "selftest"
	pingText         = "ping"
	pongText         = "pong"
	roomPollInterval = 50 * time.Millisecond
)

// Options configures a self test run.
type Options struct {
	RelayURL string
	RoomsURL string

	// STUNServers is passed to both peers. Empty means host candidates only.
	STUNServers []string

	// TURNServers and credentials are optional. RelayOnly forces every
	// candidate pair through TURN.
	TURNServers []string
	TURNUser    string
	TURNPass    string
	RelayOnly   bool

	// Room defaults to a random word name.
	Room  string
	Codec signaling.Codec

	// Loopback lets the peers pair over 127.0.0.1.
	Loopback bool

	Timeout time.Duration
	Logger  *slog.Logger
}

// Result holds the timings of a successful run.
type Result struct {
	Room    string
	HostID  string
	GuestID string

	// Signaling is the time from the guest's join to the host seeing it.
	Signaling time.Duration
	// Connect is the time from sending the offer to the data channel opening.
	Connect time.Duration
	// RoundTrip is one ping and pong over the data channel.
	RoundTrip time.Duration
}

// Run performs the self test.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	room := opts.Room
	if room == "" {
		name, err := words.RoomName()
		if err != nil {
			return nil, NewError("pick room name", err)
		}
		room = name
	}
	res := &Result{Room: room}

	host, err := dial(ctx, opts, room, logger.With("side", "host"))
	if err != nil {
		return nil, err
	}
	defer host.close()

	if err := host.client.Join(room); err != nil {
		return nil, NewError("join as host", err)
	}
	if res.HostID, err = waitForHost(ctx, opts.RoomsURL, room); err != nil {
		return nil, err
	}
	logger.Debug("host joined", "room", room, "peer", res.HostID)

	guest, err := dial(ctx, opts, room, logger.With("side", "guest"))
	if err != nil {
		return nil, err
	}
	defer guest.close()

	joinedAt := time.Now()
	if err := guest.client.Join(room); err != nil {
		return nil, NewError("join as guest", err)
	}

	select {
	case id, ok := <-host.events.PeerJoined:
		if !ok {
			return nil, NewError("wait for guest", ErrRelayClosed)
		}
		res.GuestID = id
		res.Signaling = time.Since(joinedAt)
	case <-ctx.Done():
		return nil, WrapError("wait for guest", ErrTimeout, "no peer-joined from relay")
	}
	logger.Debug("guest joined", "room", room, "peer", res.GuestID)

	guest.pc.OnDataChannel(func(dc *pion.DataChannel) {
		dc.OnMessage(func(msg pion.DataChannelMessage) {
			if string(msg.Data) == pingText {
				dc.SendText(pongText)
			}
		})
	})

	opened := make(chan time.Time, 1)
	replies := make(chan string, 1)
	dc, err := host.pc.CreateDataChannel(dataChannelLabel, nil)
	if err != nil {
		return nil, NewError("create data channel", err)
	}
	dc.OnOpen(func() {
		opened <- time.Now()
		dc.SendText(pingText)
	})
	dc.OnMessage(func(msg pion.DataChannelMessage) {
		select {
		case replies <- string(msg.Data):
		default:
		}
	})

	host.setRemotePeer(res.GuestID)
	offer, err := host.createOffer()
	if err != nil {
		return nil, err
	}
	offeredAt := time.Now()
	if err := host.client.SendOffer(room, res.GuestID, offer); err != nil {
		return nil, NewError("send offer", err)
	}

	var openedAt time.Time
	for {
		select {
		case <-ctx.Done():
			if openedAt.IsZero() {
				return nil, WrapError("connect peers", ErrTimeout, "data channel did not open")
			}
			return nil, WrapError("ping", ErrTimeout, "no reply over data channel")

		case sig, ok := <-guest.events.Offer:
			if !ok {
				return nil, NewError("guest signaling", ErrRelayClosed)
			}
			offer, err := relayclient.SessionDescription(sig.Payload)
			if err != nil {
				return nil, NewError("read offer", err)
			}
			guest.setRemotePeer(sig.From)
			answer, err := guest.createAnswer(offer)
			if err != nil {
				return nil, err
			}
			if err := guest.client.SendAnswer(room, sig.From, answer); err != nil {
				return nil, NewError("send answer", err)
			}

		case sig, ok := <-host.events.Answer:
			if !ok {
				return nil, NewError("host signaling", ErrRelayClosed)
			}
			answer, err := relayclient.SessionDescription(sig.Payload)
			if err != nil {
				return nil, NewError("read answer", err)
			}
			if err := host.setRemoteDescription(answer); err != nil {
				return nil, err
			}

		case sig, ok := <-host.events.Candidate:
			if !ok {
				return nil, NewError("host signaling", ErrRelayClosed)
			}
			if err := host.addCandidate(sig.Payload); err != nil {
				return nil, err
			}

		case sig, ok := <-guest.events.Candidate:
			if !ok {
				return nil, NewError("guest signaling", ErrRelayClosed)
			}
			if err := guest.addCandidate(sig.Payload); err != nil {
				return nil, err
			}

		case id := <-host.events.PeerLeft:
			return nil, WrapError("connect peers", ErrPeerLeft, id)

		case <-host.failed:
			return nil, WrapError("connect peers", ErrConnectionFailed, "host ICE failed")

		case <-guest.failed:
			return nil, WrapError("connect peers", ErrConnectionFailed, "guest ICE failed")

		case openedAt = <-opened:
			res.Connect = openedAt.Sub(offeredAt)

		case reply := <-replies:
			if reply != pongText {
				return nil, WrapError("ping", ErrUnexpectedReply, reply)
			}
			res.RoundTrip = time.Since(openedAt)
			return res, nil
		}
	}
}

// dial connects one side to the relay and starts routing its events.
func dial(ctx context.Context, opts Options, room string, logger *slog.Logger) (*peer, error) {
	pc, err := newPeerConnection(opts)
	if err != nil {
		return nil, err
	}

	client := relayclient.NewClient(opts.RelayURL, relayclient.Options{Codec: opts.Codec, Logger: logger})
	if err := client.Connect(ctx); err != nil {
		pc.Close()
		return nil, NewError("connect to relay", err)
	}

	events := relayclient.NewHandler(client)
	go events.Start(ctx)

	return newPeer(pc, client, events, room), nil
}

// waitForHost polls the relay until room exists and returns its host. A
// room that already has other members is rejected.
func waitForHost(ctx context.Context, roomsURL, room string) (string, error) {
	ticker := time.NewTicker(roomPollInterval)
	defer ticker.Stop()

	for {
		rooms, err := relayclient.FetchRooms(ctx, roomsURL)
		if err == nil {
			if info, ok := relayclient.FindRoom(rooms, room); ok {
				if len(info.Members) != 1 {
					return "", WrapError("join as host", fmt.Errorf("room %q is in use", room), fmt.Sprintf("%d members", len(info.Members)))
				}
				return info.Host, nil
			}
		}

		select {
		case <-ctx.Done():
			if err != nil {
				return "", WrapError("wait for room", ErrTimeout, err.Error())
			}
			return "", WrapError("wait for room", ErrTimeout, "room never appeared")
		case <-ticker.C:
		}
	}
}
