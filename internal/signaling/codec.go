package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec is the frame encoding spoken by a connection. Text frames carry
// JSON and binary frames carry MessagePack.
type Codec uint8

const (
	CodecJSON Codec = iota
	CodecMsgpack
)

func (c Codec) String() string {
	if c == CodecMsgpack {
		return "msgpack"
	}
	return "json"
}

// CodecForFrame maps a websocket frame type to its codec.
func CodecForFrame(frameType int) Codec {
	if frameType == websocket.BinaryMessage {
		return CodecMsgpack
	}
	return CodecJSON
}

// FrameType is the websocket frame type used to write this codec.
func (c Codec) FrameType() int {
	if c == CodecMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Decode parses one inbound frame into its typed variant.
func Decode(c Codec, data []byte) (Inbound, error) {
	var m Message
	var err error
	switch c {
	case CodecMsgpack:
		err = msgpack.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	m.raw = data
	m.rawCodec = c
	return classify(&m)
}

// DecodeMessage parses a frame into an envelope without classifying it.
// Peers use it to read server events.
func DecodeMessage(c Codec, data []byte) (*Message, error) {
	var m Message
	var err error
	if c == CodecMsgpack {
		err = msgpack.Unmarshal(data, &m)
	} else {
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Type == "" {
		return nil, ErrMalformed
	}
	return &m, nil
}

// Encode serializes msg for a peer speaking c. Frames received in the same
// encoding are passed through byte for byte.
func Encode(c Codec, msg *Message) ([]byte, error) {
	if msg.raw != nil && msg.rawCodec == c {
		return msg.raw, nil
	}
	if c == CodecMsgpack {
		return msgpack.Marshal(msg)
	}
	return json.Marshal(msg)
}
