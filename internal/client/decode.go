package client

import (
	"encoding/json"

	"tressette-client/internal/protocol"
	"tressette-client/internal/session"
)

// decodeEvent maps a wire message onto a store event. Decoding is
// fail-closed: a known type with a bad payload becomes MalformedMessage,
// an unrecognised type becomes UnknownMessage; neither can corrupt the
// store.
func decodeEvent(msg protocol.Message) session.Event {
	switch msg.Type {
	case "game_created":
		var p protocol.GameCreatedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.GameCreated{GameCode: p.GameCode}

	case "lobby_update":
		var p protocol.LobbyUpdatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.LobbyUpdate{Players: toPlayers(p.Players)}

	case "join_error":
		var p protocol.JoinErrorPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.JoinError{Message: p.Message}

	case "game_start":
		var p protocol.GameStartPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.GameStart{
			GameID:     p.GameID,
			Players:    toPlayers(p.Players),
			Teams:      toTeams(p.Teams),
			PointsGoal: p.PointsGoal,
		}

	case "deal_hand":
		var p protocol.DealHandPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Hand == nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.DealHand{Hand: p.Hand}

	case "your_turn":
		var p protocol.YourTurnPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return session.MalformedMessage{MsgType: msg.Type}
			}
		}
		return session.YourTurn{PlayerID: p.PlayerID}

	case "game_state_update":
		var p protocol.GameStatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.CurrentPlayerID == "" {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.GameStateUpdate{
			CurrentPlayerID: p.CurrentPlayerID,
			CardsOnTable:    p.CardsOnTable,
			Team1Score:      p.Team1Score,
			Team2Score:      p.Team2Score,
		}

	case "you_played":
		var p protocol.PlayerPlayedCardPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.PlayerID == "" {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.YouPlayed{PlayerID: p.PlayerID, Card: p.Card}

	case "trick_end":
		var p protocol.TrickEndPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.WinnerID == "" {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.TrickEnd{WinnerID: p.WinnerID, WinnerCard: p.Winner.Card, Points: p.Points}

	case "round_end":
		var p protocol.RoundEndPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.RoundEnd{
			Team1Round: p.Team1RoundScore, Team2Round: p.Team2RoundScore,
			Team1Total: p.Team1TotalScore, Team2Total: p.Team2TotalScore,
		}

	case "game_over":
		var p protocol.GameOverPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.GameOver{WinningTeamID: p.WinningTeamID, FinalTeam1: p.FinalScoreT1, FinalTeam2: p.FinalScoreT2}

	case "declaration_confirmation":
		var p protocol.DeclarationConfirmationPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.PlayerID == "" {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.DeclarationConfirmed{
			PlayerID:        p.PlayerID,
			TeamID:          p.TeamID,
			DeclarationType: p.DeclarationType,
			Points:          p.Points,
		}

	case "error":
		var p protocol.ErrorPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return session.MalformedMessage{MsgType: msg.Type}
		}
		return session.ServerError{Message: p.Message}

	case "pong":
		return session.Pong{}

	default:
		return session.UnknownMessage{MsgType: msg.Type}
	}
}

func toPlayers(infos []protocol.PlayerInfo) []session.Player {
	players := make([]session.Player, len(infos))
	for i, p := range infos {
		players[i] = session.Player{ID: p.ID, Name: p.Name, Position: p.Position}
	}
	return players
}

func toTeams(infos []protocol.TeamInfo) []session.TeamState {
	teams := make([]session.TeamState, len(infos))
	for i, t := range infos {
		teams[i] = session.TeamState{
			ID:         t.ID,
			TeamNumber: t.TeamNumber,
			Players:    toPlayers(t.Players),
			RoundScore: t.Score,
		}
	}
	return teams
}
