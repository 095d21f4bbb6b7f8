package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/BioHazard786/roomrelay/internal/selftest"
	"github.com/BioHazard786/roomrelay/internal/signaling"
)

// Output formats understood by RenderRooms.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

var roomHeaders = []string{"Room", "Host", "Members"}

func styledTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})
}

// RoomsView renders the live room list as a styled table.
func RoomsView(rooms []signaling.RoomInfo) string {
	if len(rooms) == 0 {
		return MutedStyle.Render("No active rooms")
	}

	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, []string{r.ID, r.Host, fmt.Sprintf("%d", len(r.Members))})
	}
	return styledTable(roomHeaders, rows).Render()
}

// RenderRooms writes rooms to w in format. The plain formats list every
// member so the output can be fed to other tools.
func RenderRooms(w io.Writer, rooms []signaling.RoomInfo, format string) error {
	switch format {
	case "", FormatTable:
		_, err := fmt.Fprintln(w, RoomsView(rooms))
		return err
	case FormatCSV, FormatMarkdown:
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, FormatTable, FormatCSV, FormatMarkdown)
	}

	t := prettytable.NewWriter()
	t.AppendHeader(prettytable.Row{"Room", "Host", "Members"})
	for _, r := range rooms {
		t.AppendRow(prettytable.Row{r.ID, r.Host, strings.Join(r.Members, " ")})
	}

	out := t.RenderCSV()
	if format == FormatMarkdown {
		out = t.RenderMarkdown()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

// SelftestView summarizes a successful self test.
func SelftestView(res *selftest.Result) string {
	rows := [][]string{
		{"Room", res.Room},
		{"Host", res.HostID},
		{"Guest", res.GuestID},
		{"Signaling", res.Signaling.Round(100 * time.Microsecond).String()},
		{"Connect", res.Connect.Round(100 * time.Microsecond).String()},
		{"Round trip", res.RoundTrip.Round(100 * time.Microsecond).String()},
	}
	return styledTable([]string{"Metric", "Value"}, rows).Render()
}
