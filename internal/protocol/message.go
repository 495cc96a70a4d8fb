package protocol

import (
	"encoding/json"

	"tressette-client/internal/session"
)

// Message is the wire envelope both directions: a type tag plus a raw
// payload decoded lazily per type. Unknown payload fields are tolerated.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Client -> Server payloads ---

type CreateGamePayload struct {
	Name        string `json:"name"`
	DesiredTeam int    `json:"desired_team"`
	PointsGoal  int    `json:"points_goal"`
}

type JoinGamePayload struct {
	Name        string `json:"name"`
	GameCode    string `json:"game_code"`
	DesiredTeam int    `json:"desired_team"`
}

type PlayCardPayload struct {
	Suit session.Suit `json:"suit"`
	Rank string       `json:"rank"`
}

type DeclarePayload struct {
	DeclarationType string       `json:"declaration_type"`
	Suit            session.Suit `json:"suit,omitempty"`
	Rank            string       `json:"rank,omitempty"`
}

// --- Server -> Client payloads ---

type GameCreatedPayload struct {
	GameCode string `json:"game_code"`
}

type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type TeamInfo struct {
	ID         string       `json:"id"`
	Players    []PlayerInfo `json:"players"`
	Score      int          `json:"score"`
	TeamNumber int          `json:"team_number"`
}

type LobbyUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}

type GameStartPayload struct {
	GameID     string       `json:"game_id"`
	Players    []PlayerInfo `json:"players"`
	Teams      []TeamInfo   `json:"teams"`
	PointsGoal int          `json:"points_goal"`
}

type DealHandPayload struct {
	Hand []session.Card `json:"hand"`
}

type YourTurnPayload struct {
	PlayerID string `json:"player_id"`
}

type GameStatePayload struct {
	CurrentPlayerID string         `json:"current_player_id"`
	CardsOnTable    []session.Card `json:"cards_on_table"`
	Team1Score      int            `json:"team1_score"`
	Team2Score      int            `json:"team2_score"`
	GameState       string         `json:"game_state"`
}

type PlayerPlayedCardPayload struct {
	PlayerID string       `json:"player_id"`
	Card     session.Card `json:"card"`
}

// PlayedCard is the winner entry inside trick_end.
type PlayedCard struct {
	Card        session.Card `json:"card"`
	PlayerIndex int          `json:"player_index"`
}

type TrickEndPayload struct {
	Winner   PlayedCard     `json:"winner"`
	WinnerID string         `json:"winner_id"`
	Cards    []session.Card `json:"cards"`
	Points   int            `json:"points"`
}

type RoundEndPayload struct {
	Team1RoundScore int `json:"team1_round_score"`
	Team2RoundScore int `json:"team2_round_score"`
	Team1TotalScore int `json:"team1_total_score"`
	Team2TotalScore int `json:"team2_total_score"`
}

type GameOverPayload struct {
	WinningTeamID string `json:"winning_team_id"`
	FinalScoreT1  int    `json:"final_score_t1"`
	FinalScoreT2  int    `json:"final_score_t2"`
}

type DeclarationConfirmationPayload struct {
	TeamID          string `json:"team_id"`
	PlayerID        string `json:"player_id"`
	DeclarationType string `json:"declaration_type"`
	Points          int    `json:"points"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage encodes a typed payload into the envelope.
func NewMessage(msgType string, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}

// Parse decodes a raw frame into the envelope without touching the payload.
func Parse(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
