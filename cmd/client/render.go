package main

import (
	"strings"

	"github.com/pterm/pterm"

	"tressette-client/internal/session"
	"tressette-client/internal/view"
)

// renderModel turns a view model into one terminal frame.
func renderModel(m view.Model) string {
	var b strings.Builder

	b.WriteString(pterm.Sprintfln("%s", pterm.LightYellow(m.Status)))
	if m.Banner != "" {
		b.WriteString(pterm.Sprintfln("%s", pterm.LightMagenta(m.Banner)))
	}

	switch m.Phase {
	case string(session.PhaseLobbyWaiting), string(session.PhaseLobbyFilled):
		if m.GameCode != "" {
			b.WriteString(pterm.Sprintfln("Game code: %s", pterm.LightCyan(m.GameCode)))
		}
		for _, p := range m.LobbyPlayers {
			b.WriteString(pterm.Sprintfln("  - %s", p))
		}
		return b.String()

	case string(session.PhaseIdle):
		return b.String()
	}

	for _, s := range m.Scores {
		label := "Red team"
		if s.TeamNumber == 2 {
			label = "Blue team"
		}
		b.WriteString(pterm.Sprintfln("%s: %s (total %d)", label, s.Round, s.Total))
	}

	for _, seat := range m.Seats {
		marker := "  "
		if seat.Turn {
			marker = pterm.LightGreen("> ")
		}
		b.WriteString(pterm.Sprintfln("%s%-15s %s", marker, seat.Name, seatLabel(seat.Seat)))
	}

	if len(m.Table) > 0 {
		b.WriteString(pterm.Sprintln("On the table:"))
		for _, tc := range m.Table {
			line := "  " + tc.Card.String()
			if tc.Winner {
				line = "  " + pterm.LightGreen(tc.Card.String()+" *")
			}
			b.WriteString(pterm.Sprintln(line))
		}
	}

	if len(m.Hand) > 0 {
		b.WriteString(pterm.Sprintln("Your hand:"))
		for _, hc := range m.Hand {
			if hc.Playable {
				b.WriteString(pterm.Sprintfln("  %s", pterm.LightCyan(hc.Card.String())))
			} else {
				b.WriteString(pterm.Sprintfln("  %s", pterm.Gray(hc.Card.String())))
			}
		}
	}
	return b.String()
}

func seatLabel(seat string) string {
	switch session.Seat(seat) {
	case session.SeatSelf:
		return "(you)"
	case session.SeatPartner:
		return "(partner)"
	case session.SeatOpponentLeft:
		return "(left)"
	case session.SeatOpponentRight:
		return "(right)"
	}
	return ""
}
