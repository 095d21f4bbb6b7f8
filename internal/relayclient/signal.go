package relayclient

import (
	"encoding/json"
	"fmt"

	pion "github.com/pion/webrtc/v4"

	"github.com/BioHazard786/roomrelay/internal/signaling"
)

// SendOffer addresses an SDP offer to peer. An empty peer broadcasts it to
// the rest of the room.
func (c *Client) SendOffer(room, peer string, offer pion.SessionDescription) error {
	payload, err := toWire(offer)
	if err != nil {
		return err
	}
	return c.Send(&signaling.Message{Type: signaling.TypeOffer, Room: room, PeerID: peer, Offer: payload})
}

// SendAnswer addresses an SDP answer to peer.
func (c *Client) SendAnswer(room, peer string, answer pion.SessionDescription) error {
	payload, err := toWire(answer)
	if err != nil {
		return err
	}
	return c.Send(&signaling.Message{Type: signaling.TypeAnswer, Room: room, PeerID: peer, Answer: payload})
}

// SendCandidate addresses an ICE candidate to peer.
func (c *Client) SendCandidate(room, peer string, candidate pion.ICECandidateInit) error {
	payload, err := toWire(candidate)
	if err != nil {
		return err
	}
	return c.Send(&signaling.Message{Type: signaling.TypeCandidate, Room: room, PeerID: peer, Candidate: payload})
}

// SessionDescription reads an offer or answer payload.
func SessionDescription(payload any) (pion.SessionDescription, error) {
	var desc pion.SessionDescription
	if err := fromWire(payload, &desc); err != nil {
		return desc, fmt.Errorf("parse session description: %w", err)
	}
	return desc, nil
}

// ICECandidate reads a candidate payload.
func ICECandidate(payload any) (pion.ICECandidateInit, error) {
	var ice pion.ICECandidateInit
	if err := fromWire(payload, &ice); err != nil {
		return ice, fmt.Errorf("parse ICE candidate: %w", err)
	}
	return ice, nil
}

// toWire flattens a pion value to the generic map shape browsers send, so
// both codecs carry the same fields.
func toWire(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromWire(payload any, dst any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
