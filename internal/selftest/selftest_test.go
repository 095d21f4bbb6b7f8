package selftest

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BioHazard786/roomrelay/internal/metrics"
	"github.com/BioHazard786/roomrelay/internal/relayclient"
	"github.com/BioHazard786/roomrelay/internal/server"
	"github.com/BioHazard786/roomrelay/internal/signaling"
)

func startRelay(t *testing.T) (*signaling.Hub, Options) {
	t.Helper()
	hub := signaling.NewHub(nil, metrics.New())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	ts := httptest.NewServer(server.NewMux(hub, signaling.ClientOptions{}, slog.New(slog.DiscardHandler)))
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-hub.Done()
	})

	return hub, Options{
		RelayURL: "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
		RoomsURL: ts.URL + "/rooms",
		Loopback: true,
		Timeout:  15 * time.Second,
	}
}

func TestRun(t *testing.T) {
	if testing.Short() {
		t.Skip("opens real WebRTC peer connections")
	}

	for _, codec := range []signaling.Codec{signaling.CodecJSON, signaling.CodecMsgpack} {
		t.Run(codec.String(), func(t *testing.T) {
			hub, opts := startRelay(t)
			opts.Codec = codec

			res, err := Run(context.Background(), opts)
			require.NoError(t, err)

			assert.NotEmpty(t, res.Room)
			assert.NotEmpty(t, res.HostID)
			assert.NotEmpty(t, res.GuestID)
			assert.NotEqual(t, res.HostID, res.GuestID)
			assert.Positive(t, res.Connect)
			assert.Positive(t, hub.Metrics().Get(metrics.MessagesForwarded))
		})
	}
}

func TestRun_RoomInUse(t *testing.T) {
	_, opts := startRelay(t)
	opts.Room = "busy"
	opts.Timeout = 3 * time.Second

	// Two idle members already sit in the room.
	for i := 0; i < 2; i++ {
		other, err := dial(context.Background(), opts, "busy", slog.New(slog.DiscardHandler))
		require.NoError(t, err)
		t.Cleanup(other.close)
		require.NoError(t, other.client.Join("busy"))
	}
	require.Eventually(t, func() bool {
		rooms, err := relayclient.FetchRooms(context.Background(), opts.RoomsURL)
		if err != nil {
			return false
		}
		info, ok := relayclient.FindRoom(rooms, "busy")
		return ok && len(info.Members) == 2
	}, 2*time.Second, 20*time.Millisecond)

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "join as host", se.Op)
}

func TestRun_RelayUnreachable(t *testing.T) {
	_, err := Run(context.Background(), Options{
		RelayURL: "ws://127.0.0.1:1/ws",
		RoomsURL: "http://127.0.0.1:1/rooms",
		Timeout:  time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to relay")
}

func TestErrorFormatting(t *testing.T) {
	err := WrapError("connect peers", ErrTimeout, "data channel did not open")
	assert.Equal(t, "connect peers: timeout (data channel did not open)", err.Error())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "ping: timeout", NewError("ping", ErrTimeout).Error())
}
