package signaling

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestDecode_Variants(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		want    Inbound
		wantErr error
	}{
		{
			name:  "join",
			frame: `{"type":"join","room":"r1"}`,
			want:  JoinRequest{Room: "r1"},
		},
		{
			name:  "join without room",
			frame: `{"type":"join"}`,
			want:  JoinRequest{},
		},
		{
			name:    "not json",
			frame:   `{"type":`,
			wantErr: ErrMalformed,
		},
		{
			name:    "wrong field type",
			frame:   `{"type":7}`,
			wantErr: ErrMalformed,
		},
		{
			name:    "missing type",
			frame:   `{"room":"r1"}`,
			wantErr: ErrMalformed,
		},
		{
			name:    "unknown type",
			frame:   `{"type":"kick","room":"r1"}`,
			wantErr: ErrUnknownType,
		},
		{
			name:    "offer without payload",
			frame:   `{"type":"offer","room":"r1"}`,
			wantErr: ErrMissingPayload,
		},
		{
			name:    "answer carrying an offer field",
			frame:   `{"type":"answer","offer":{"sdp":"x"}}`,
			wantErr: ErrMissingPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(CodecJSON, []byte(tc.frame))
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "got %v, want %v", err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_SignalRequest(t *testing.T) {
	in, err := Decode(CodecJSON, []byte(`{"type":"candidate","room":"r1","peerId":"p2","candidate":{"candidate":"c","sdpMLineIndex":0}}`))
	require.NoError(t, err)

	req, ok := in.(*SignalRequest)
	require.True(t, ok)
	assert.Equal(t, TypeCandidate, req.Kind)
	assert.Equal(t, "r1", req.Room)
	assert.Equal(t, "p2", req.Target)
	assert.Equal(t, map[string]any{"candidate": "c", "sdpMLineIndex": float64(0)}, req.Payload())

	out := req.forwardTo("p1", "r1")
	assert.Equal(t, "p1", out.PeerID)
	assert.Equal(t, "r1", out.Room)
	assert.Equal(t, req.Payload(), out.Candidate)
	assert.Nil(t, out.Offer)
	assert.Nil(t, out.raw, "stamped copies are re-encoded, not passed through")
}

func TestDecode_Msgpack(t *testing.T) {
	frame, err := msgpack.Marshal(map[string]any{
		"type":   "offer",
		"room":   "r1",
		"peerId": "p2",
		"offer":  map[string]any{"type": "offer", "sdp": "v=0"},
	})
	require.NoError(t, err)

	in, err := Decode(CodecMsgpack, frame)
	require.NoError(t, err)
	req, ok := in.(*SignalRequest)
	require.True(t, ok)
	assert.Equal(t, TypeOffer, req.Kind)
	assert.Equal(t, "p2", req.Target)
	assert.Equal(t, map[string]any{"type": "offer", "sdp": "v=0"}, req.Payload())
}

func TestEncode_PassThroughAndTranscode(t *testing.T) {
	frame := []byte(`{"type":"candidate","room":"r1","candidate":{"candidate":"c"},"extra":true}`)
	in, err := Decode(CodecJSON, frame)
	require.NoError(t, err)
	msg := in.(*SignalRequest).msg

	same, err := Encode(CodecJSON, msg)
	require.NoError(t, err)
	assert.Equal(t, frame, same, "same codec forwards the original bytes")

	packed, err := Encode(CodecMsgpack, msg)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, msgpack.Unmarshal(packed, &back))
	assert.Equal(t, "candidate", back["type"])
	assert.Equal(t, "r1", back["room"])
	assert.Equal(t, map[string]any{"candidate": "c"}, back["candidate"])
}

func TestEncode_ServerEvents(t *testing.T) {
	data, err := Encode(CodecJSON, &Message{Type: TypeHostChanged, NewHostID: "p2", Room: "r1"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{"type": "host-changed", "newHostId": "p2", "room": "r1"}, got)
}

func TestCodecForFrame(t *testing.T) {
	assert.Equal(t, CodecJSON, CodecForFrame(websocket.TextMessage))
	assert.Equal(t, CodecMsgpack, CodecForFrame(websocket.BinaryMessage))
	assert.Equal(t, websocket.BinaryMessage, CodecMsgpack.FrameType())
	assert.Equal(t, websocket.TextMessage, CodecJSON.FrameType())
	assert.Equal(t, "msgpack", CodecMsgpack.String())
}

func TestDecodeMessage_ServerEvent(t *testing.T) {
	msg, err := DecodeMessage(CodecJSON, []byte(`{"type":"peer-joined","peerId":"p2","room":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, TypePeerJoined, msg.Type)
	assert.Equal(t, "p2", msg.PeerID)
	assert.Nil(t, msg.raw)

	_, err = DecodeMessage(CodecJSON, []byte(`{"room":"r1"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeMessage(CodecMsgpack, []byte{0xc1})
	assert.ErrorIs(t, err, ErrMalformed)
}
