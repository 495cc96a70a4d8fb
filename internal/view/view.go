// Package view projects a session snapshot into a renderable model. The
// projection is pure: the same snapshot always yields the same model, so
// renderers and tests can compare outputs structurally.
package view

import (
	"tressette-client/internal/session"
)

type HandCard struct {
	Card     session.Card `json:"card"`
	Playable bool         `json:"playable"`
}

type TableCard struct {
	Card   session.Card `json:"card"`
	Winner bool         `json:"winner"`
}

type SeatView struct {
	Seat string `json:"seat"`
	Name string `json:"name"`
	Team int    `json:"team"`
	Turn bool   `json:"turn"`
}

type TeamScore struct {
	TeamNumber int    `json:"team_number"`
	Round      string `json:"round"`
	Total      int    `json:"total"`
}

type Diagnostics struct {
	UnknownMessages   int `json:"unknown_messages"`
	MalformedMessages int `json:"malformed_messages"`
	DroppedMessages   int `json:"dropped_messages"`
}

type Model struct {
	Phase           string      `json:"phase"`
	Status          string      `json:"status"`
	GameCode        string      `json:"game_code,omitempty"`
	LobbyPlayers    []string    `json:"lobby_players,omitempty"`
	Seats           []SeatView  `json:"seats,omitempty"`
	Hand            []HandCard  `json:"hand,omitempty"`
	Table           []TableCard `json:"table,omitempty"`
	Scores          []TeamScore `json:"scores,omitempty"`
	Banner          string      `json:"banner,omitempty"`
	DeclarationOpen bool        `json:"declaration_open"`
	Declarations    []string    `json:"declarations,omitempty"`
	PointsGoal      int         `json:"points_goal,omitempty"`
	Diagnostics     Diagnostics `json:"diagnostics"`
}

// seatOrder fixes the projection order so it never depends on map
// iteration: own seat last, the way a table is drawn.
var seatOrder = []session.Seat{
	session.SeatPartner,
	session.SeatOpponentLeft,
	session.SeatOpponentRight,
	session.SeatSelf,
}

// Project builds the view model for a snapshot.
func Project(s session.State) Model {
	m := Model{
		Phase:           string(s.Phase),
		Status:          s.Status,
		GameCode:        s.GameCode,
		Banner:          s.Banner,
		DeclarationOpen: s.CanDeclare(),
		PointsGoal:      s.PointsGoal,
		Diagnostics: Diagnostics{
			UnknownMessages:   s.Diag.UnknownMessages,
			MalformedMessages: s.Diag.MalformedMessages,
			DroppedMessages:   s.Diag.DroppedMessages,
		},
	}

	for _, p := range s.LobbyPlayers {
		name := p.Name
		if name == s.SelfName {
			name += " (You)"
		}
		m.LobbyPlayers = append(m.LobbyPlayers, name)
	}

	if s.Seats != nil {
		for _, seat := range seatOrder {
			for id, have := range s.Seats {
				if have != seat {
					continue
				}
				p := s.Players[id]
				m.Seats = append(m.Seats, SeatView{
					Seat: string(seat),
					Name: p.Name,
					Team: teamNumberOf(s.Teams, id),
					Turn: s.CurrentTurnID == id,
				})
			}
		}
	}

	legal := session.LegalMoves(s.Hand, s.Table)
	playOpen := s.PlayOpen()
	for _, c := range s.Hand {
		m.Hand = append(m.Hand, HandCard{
			Card:     c,
			Playable: playOpen && cardIn(legal, c),
		})
	}

	for _, c := range s.Table {
		m.Table = append(m.Table, TableCard{
			Card:   c,
			Winner: s.TrickPhase == session.TrickResolving && c.Same(s.LastWinner),
		})
	}

	for _, t := range s.Teams {
		m.Scores = append(m.Scores, TeamScore{
			TeamNumber: t.TeamNumber,
			Round:      session.FormatScore(t.RoundScore),
			Total:      t.TotalScore,
		})
	}

	if m.DeclarationOpen {
		for _, d := range session.Catalog() {
			m.Declarations = append(m.Declarations, d.Label)
		}
	}
	return m
}

func cardIn(cards []session.Card, c session.Card) bool {
	for _, have := range cards {
		if have.Same(c) {
			return true
		}
	}
	return false
}

func teamNumberOf(teams []session.TeamState, playerID string) int {
	for _, t := range teams {
		for _, p := range t.Players {
			if p.ID == playerID {
				return t.TeamNumber
			}
		}
	}
	return 0
}
