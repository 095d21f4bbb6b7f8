package selftest

import (
	"sync"

	pion "github.com/pion/webrtc/v4"

	"github.com/BioHazard786/roomrelay/internal/relayclient"
)

// peer is one side of the self test: a pion connection plus its relay
// session. Candidates that arrive before the remote description are held
// back and applied once it is set.
type peer struct {
	pc     *pion.PeerConnection
	client *relayclient.Client
	events *relayclient.Handler
	room   string

	mu      sync.Mutex
	remote  string
	pending []pion.ICECandidateInit
	failed  chan struct{}
	once    sync.Once
}

func newPeerConnection(opts Options) (*pion.PeerConnection, error) {
	var iceServers []pion.ICEServer
	if len(opts.STUNServers) > 0 {
		iceServers = append(iceServers, pion.ICEServer{URLs: opts.STUNServers})
	}
	if len(opts.TURNServers) > 0 {
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       opts.TURNServers,
			Username:   opts.TURNUser,
			Credential: opts.TURNPass,
		})
	}

	policy := pion.ICETransportPolicyAll
	if opts.RelayOnly {
		policy = pion.ICETransportPolicyRelay
	}

	var se pion.SettingEngine
	se.SetIncludeLoopbackCandidate(opts.Loopback)
	api := pion.NewAPI(pion.WithSettingEngine(se))

	pc, err := api.NewPeerConnection(pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	})
	if err != nil {
		return nil, NewError("create peer connection", err)
	}
	return pc, nil
}

func newPeer(pc *pion.PeerConnection, client *relayclient.Client, events *relayclient.Handler, room string) *peer {
	p := &peer{
		pc:     pc,
		client: client,
		events: events,
		room:   room,
		failed: make(chan struct{}),
	}

	pc.OnICEConnectionStateChange(func(state pion.ICEConnectionState) {
		if state == pion.ICEConnectionStateFailed {
			p.once.Do(func() { close(p.failed) })
		}
	})

	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		p.mu.Lock()
		remote := p.remote
		p.mu.Unlock()
		if remote == "" {
			return
		}
		p.client.SendCandidate(p.room, remote, c.ToJSON())
	})

	return p
}

// setRemotePeer records the relay id that candidates are addressed to.
func (p *peer) setRemotePeer(id string) {
	p.mu.Lock()
	p.remote = id
	p.mu.Unlock()
}

func (p *peer) createOffer() (pion.SessionDescription, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return offer, NewError("create offer", err)
	}
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return offer, NewError("set local description", err)
	}
	return *p.pc.LocalDescription(), nil
}

func (p *peer) createAnswer(offer pion.SessionDescription) (pion.SessionDescription, error) {
	if err := p.setRemoteDescription(offer); err != nil {
		return pion.SessionDescription{}, err
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return answer, NewError("create answer", err)
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return answer, NewError("set local description", err)
	}
	return *p.pc.LocalDescription(), nil
}

func (p *peer) setRemoteDescription(desc pion.SessionDescription) error {
	if err := p.pc.SetRemoteDescription(desc); err != nil {
		return NewError("set remote description", err)
	}

	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, c := range pending {
		if err := p.pc.AddICECandidate(c); err != nil {
			return NewError("add ICE candidate", err)
		}
	}
	return nil
}

func (p *peer) addCandidate(payload any) error {
	ice, err := relayclient.ICECandidate(payload)
	if err != nil {
		return NewError("parse ICE candidate", err)
	}

	p.mu.Lock()
	if p.pc.RemoteDescription() == nil {
		p.pending = append(p.pending, ice)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if err := p.pc.AddICECandidate(ice); err != nil {
		return NewError("add ICE candidate", err)
	}
	return nil
}

func (p *peer) close() {
	p.client.Close()
	p.pc.Close()
}
