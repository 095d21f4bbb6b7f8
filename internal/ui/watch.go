package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BioHazard786/roomrelay/internal/relayclient"
	"github.com/BioHazard786/roomrelay/internal/signaling"
)

const (
	maxWatchEvents  = 15
	refreshInterval = 2 * time.Second
	refreshTimeout  = 5 * time.Second
)

// RoomsFunc fetches the relay's room table.
type RoomsFunc func(ctx context.Context) ([]signaling.RoomInfo, error)

type relayMsg struct {
	msg *signaling.Message
}

type snapshotMsg struct {
	rooms []signaling.RoomInfo
	err   error
}

type refreshMsg struct{}

type watchEvent struct {
	at   time.Time
	icon string
	text string
}

// WatchModel is a live view of one room: its members and host, plus the
// relay events received by the watching connection.
type WatchModel struct {
	room     string
	incoming <-chan *signaling.Message
	fetch    RoomsFunc

	members []string
	host    string
	events  []watchEvent
	spinner spinner.Model

	err          error
	disconnected bool
	quitting     bool
}

// NewWatchModel builds the model. incoming is the watching connection's
// message channel and fetch refreshes the member list.
func NewWatchModel(room string, incoming <-chan *signaling.Message, fetch RoomsFunc) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &WatchModel{
		room:     room,
		incoming: incoming,
		fetch:    fetch,
		spinner:  s,
	}
}

func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen(), m.refresh())
}

func (m *WatchModel) listen() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.incoming
		if !ok {
			return relayMsg{}
		}
		return relayMsg{msg: msg}
	}
}

func (m *WatchModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		rooms, err := m.fetch(ctx)
		return snapshotMsg{rooms: rooms, err: err}
	}
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case relayMsg:
		if msg.msg == nil {
			m.disconnected = true
			return m, tea.Quit
		}
		m.apply(msg.msg)
		return m, m.listen()

	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			if info, ok := relayclient.FindRoom(msg.rooms, m.room); ok {
				m.members = slices.Clone(info.Members)
				m.host = info.Host
			} else {
				m.members = nil
				m.host = ""
			}
		}
		return m, tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })

	case refreshMsg:
		return m, m.refresh()
	}

	return m, nil
}

// apply folds one relay event into the view.
func (m *WatchModel) apply(msg *signaling.Message) {
	var ev watchEvent
	switch msg.Type {
	case signaling.TypePeerJoined:
		if !slices.Contains(m.members, msg.PeerID) {
			m.members = append(m.members, msg.PeerID)
		}
		ev = watchEvent{icon: IconJoin, text: fmt.Sprintf("%s joined", msg.PeerID)}
	case signaling.TypePeerLeft:
		m.members = slices.DeleteFunc(m.members, func(id string) bool { return id == msg.PeerID })
		ev = watchEvent{icon: IconLeave, text: fmt.Sprintf("%s left", msg.PeerID)}
	case signaling.TypeHostChanged:
		m.host = msg.NewHostID
		ev = watchEvent{icon: IconHost, text: fmt.Sprintf("%s is now host", msg.NewHostID)}
	case signaling.TypeOffer, signaling.TypeAnswer, signaling.TypeCandidate:
		ev = watchEvent{icon: IconSignal, text: fmt.Sprintf("%s from %s", msg.Type, msg.PeerID)}
	default:
		return
	}

	ev.at = time.Now()
	m.events = append(m.events, ev)
	if len(m.events) > maxWatchEvents {
		m.events = m.events[len(m.events)-maxWatchEvents:]
	}
}

// Disconnected reports whether the relay closed the connection.
func (m *WatchModel) Disconnected() bool {
	return m.disconnected
}

func (m *WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s Room %s", IconRoom, m.room)))
	b.WriteString("\n")

	if m.disconnected {
		b.WriteString(ErrorStyle.Render("Relay closed the connection"))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("%s Watching for relay events\n", m.spinner.View()))
	}
	if m.err != nil {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("%s %v", IconWarning, m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Members (%d)", len(m.members))))
	b.WriteString("\n")
	for _, id := range m.members {
		if id == m.host {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", IconHost, HostStyle.Render(id), MutedStyle.Render("host")))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", IconPeer, id))
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("Events"))
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(MutedStyle.Render("  none yet"))
		b.WriteString("\n")
	}
	for _, ev := range m.events {
		b.WriteString(fmt.Sprintf("  %s %s %s\n", MutedStyle.Render(ev.at.Format("15:04:05")), ev.icon, ev.text))
	}

	b.WriteString(FooterStyle.Render("Press q to quit"))
	return b.String()
}

// RunWatch runs model until the user quits or the relay disconnects.
func RunWatch(model *WatchModel) error {
	_, err := tea.NewProgram(model).Run()
	return err
}
