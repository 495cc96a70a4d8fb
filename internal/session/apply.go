package session

import (
	"errors"
	"fmt"
)

var ErrProtocolViolation = errors.New("protocol violation")
var ErrInvariantViolation = errors.New("invariant violation")

// Apply is the single entry point for every state transition. It takes the
// current snapshot by value, returns the next one plus directives for the
// deferred-effects queue. On error the returned state is the input
// unchanged; the caller decides how to recover (a Reset event).
func Apply(s State, ev Event) (State, []Directive, error) {
	switch e := ev.(type) {
	case CreateRequested:
		s.SelfName = e.Name
		s.Phase = PhaseLobbyWaiting
		s.GameCode = ""
		s.Status = "Creating game..."
		return s, nil, nil

	case JoinRequested:
		s.SelfName = e.Name
		s.Phase = PhaseLobbyWaiting
		s.GameCode = e.GameCode
		s.Status = "Joining game..."
		return s, nil, nil

	case GameCreated:
		if s.Phase != PhaseLobbyWaiting {
			return dropped(s), nil, nil
		}
		s.GameCode = e.GameCode
		s.Status = "Waiting for other players to join..."
		return s, nil, nil

	case LobbyUpdate:
		if s.Phase != PhaseLobbyWaiting && s.Phase != PhaseLobbyFilled {
			return dropped(s), nil, nil
		}
		s.Phase = PhaseLobbyFilled
		s.LobbyPlayers = e.Players
		s.Status = fmt.Sprintf("Waiting for players (%d/4)...", len(e.Players))
		return s, nil, nil

	case JoinError:
		next := NewIdleState()
		next.Diag = s.Diag
		next.Status = "Join error: " + e.Message
		return next, []Directive{CancelAllTimers{}}, nil

	case GameStart:
		return applyGameStart(s, e)

	case DealHand:
		return applyDealHand(s, e)

	case YourTurn:
		if s.Phase == PhaseRoundSettling {
			// The new round's first turn beat the table clear. Replayed by
			// settleRound once the parked result applies.
			s.PendingTurn = true
			return s, nil, nil
		}
		if s.Phase != PhaseRoundActive {
			return dropped(s), nil, nil
		}
		s.CurrentTurnID = s.SelfID
		s.Status = "Your turn!"
		// The declaration window opens on the first turn of the round and
		// only while the hand is still untouched.
		if !s.FirstPlayDone && len(s.Hand) == CardsPerRound {
			s.DeclarationOpen = true
		}
		return s, nil, nil

	case GameStateUpdate:
		return applyGameState(s, e)

	case YouPlayed:
		return applyYouPlayed(s, e)

	case TrickEnd:
		return applyTrickEnd(s, e)

	case RoundEnd:
		return applyRoundEnd(s, e)

	case GameOver:
		return applyGameOver(s, e)

	case DeclarationConfirmed:
		return applyDeclaration(s, e)

	case ServerError:
		s.Status = "Error: " + e.Message
		return s, nil, nil

	case Pong:
		return s, nil, nil

	case UnknownMessage:
		s.Diag.UnknownMessages++
		return s, nil, nil

	case MalformedMessage:
		s.Diag.MalformedMessages++
		return s, nil, nil

	case TrickCleared:
		return applyTrickCleared(s)

	case BannerCleared:
		s.Banner = ""
		return s, nil, nil

	case SessionExpired:
		next := NewIdleState()
		next.Diag = s.Diag
		return next, []Directive{CancelAllTimers{}}, nil

	case Reset:
		next := NewIdleState()
		next.Diag = s.Diag
		next.Status = e.Reason
		return next, []Directive{CancelAllTimers{}}, nil

	default:
		s.Diag.UnknownMessages++
		return s, nil, nil
	}
}

func dropped(s State) State {
	s.Diag.DroppedMessages++
	return s
}

func applyGameStart(s State, e GameStart) (State, []Directive, error) {
	if s.Phase != PhaseLobbyFilled && s.Phase != PhaseLobbyWaiting {
		return s, nil, fmt.Errorf("%w: game_start in phase %s", ErrProtocolViolation, s.Phase)
	}

	players := make(map[string]Player, len(e.Players))
	selfID := ""
	for _, p := range e.Players {
		players[p.ID] = p
		// The server never addresses us by id before this point, so the
		// local player is recognised by name.
		if p.Name == s.SelfName {
			selfID = p.ID
		}
	}
	if selfID == "" {
		return s, nil, fmt.Errorf("%w: own name %q missing from game_start roster", ErrInvariantViolation, s.SelfName)
	}
	if len(e.Players) != 4 || len(e.Teams) != 2 {
		return s, nil, fmt.Errorf("%w: game_start with %d players, %d teams", ErrProtocolViolation, len(e.Players), len(e.Teams))
	}

	teams := make([]TeamState, len(e.Teams))
	copy(teams, e.Teams)
	for i := range teams {
		teams[i].RoundScore = 0
		teams[i].TotalScore = 0
	}

	seats := deriveSeats(players, teams, selfID)
	if seats == nil {
		return s, nil, fmt.Errorf("%w: seat map underivable from game_start payload", ErrInvariantViolation)
	}

	s.Phase = PhaseRoundActive
	s.SelfID = selfID
	s.Players = players
	s.Teams = teams
	s.Seats = seats
	s.PointsGoal = e.PointsGoal
	s.LobbyPlayers = nil
	s.Hand = nil
	s.Table = nil
	s.TrickPhase = TrickLeading
	s.CurrentTurnID = ""
	s.LastWinnerID = ""
	s.LastWinner = Card{}
	s.DeclarationOpen = false
	s.FirstPlayDone = false
	s.Banner = ""
	s.PendingRound = nil
	s.PendingGameOver = nil
	s.PendingHand = nil
	s.PendingTurn = false
	s.Result = nil
	s.Status = "Game started."
	return s, nil, nil
}

func applyDealHand(s State, e DealHand) (State, []Directive, error) {
	switch s.Phase {
	case PhaseRoundActive:
		hand := append([]Card(nil), e.Hand...)
		SortHand(hand)
		s.Hand = hand
		s.FirstPlayDone = false
		s.DeclarationOpen = false
		s.Status = "Cards dealt. Waiting for first turn."
		return s, nil, nil
	case PhaseRoundSettling:
		// The next round started before the table clear fired. Park the
		// hand; it becomes visible when the clear applies the round result.
		s.PendingHand = append([]Card(nil), e.Hand...)
		return s, nil, nil
	default:
		return dropped(s), nil, nil
	}
}

func applyGameState(s State, e GameStateUpdate) (State, []Directive, error) {
	if s.Phase != PhaseRoundActive && s.Phase != PhaseRoundSettling {
		return dropped(s), nil, nil
	}
	if _, ok := s.Players[e.CurrentPlayerID]; !ok {
		return s, nil, fmt.Errorf("%w: game_state_update for unknown player %s", ErrInvariantViolation, e.CurrentPlayerID)
	}

	var dirs []Directive
	s.CurrentTurnID = e.CurrentPlayerID

	if s.TrickPhase == TrickResolving {
		if len(e.CardsOnTable) > 0 {
			if s.PendingGameOver != nil {
				// The game is already decided; nothing after it starts a
				// new trick.
				return dropped(s), nil, nil
			}
			if s.Phase == PhaseRoundSettling && s.PendingRound != nil {
				// The new round is already underway. The parked result
				// settles now; waiting on a clear that is about to be
				// superseded would orphan it.
				s = settleRound(s, *s.PendingRound)
				s.CurrentTurnID = e.CurrentPlayerID
			}
			// The next trick is already underway; the pending clear is
			// superseded rather than left to fire against the new table.
			s.Table = append([]Card(nil), e.CardsOnTable...)
			s.TrickPhase = TrickFollowing
			s.LastWinnerID = ""
			s.LastWinner = Card{}
			dirs = append(dirs, CancelTrickClear{})
		}
		// An empty table while resolving keeps the finished trick frozen.
	} else {
		s.Table = append([]Card(nil), e.CardsOnTable...)
		if len(s.Table) == 0 {
			s.TrickPhase = TrickLeading
		} else {
			s.TrickPhase = TrickFollowing
		}
	}

	// Round scores are server-authoritative.
	if len(s.Teams) == 2 && s.Phase == PhaseRoundActive {
		teams := append([]TeamState(nil), s.Teams...)
		for i := range teams {
			switch teams[i].TeamNumber {
			case 1:
				teams[i].RoundScore = e.Team1Score
			case 2:
				teams[i].RoundScore = e.Team2Score
			}
		}
		s.Teams = teams
	}

	if e.CurrentPlayerID != s.SelfID && s.TrickPhase != TrickResolving {
		s.Status = s.playerName(e.CurrentPlayerID) + "'s turn"
	}
	return s, dirs, nil
}

func applyYouPlayed(s State, e YouPlayed) (State, []Directive, error) {
	if s.Phase != PhaseRoundActive {
		return dropped(s), nil, nil
	}
	if e.PlayerID != s.SelfID {
		return dropped(s), nil, nil
	}
	hand, ok := removeCard(s.Hand, e.Card)
	if !ok {
		return s, nil, fmt.Errorf("%w: you_played %s not in hand", ErrInvariantViolation, e.Card)
	}
	s.Hand = hand
	s.FirstPlayDone = true
	s.DeclarationOpen = false
	return s, nil, nil
}

func applyTrickEnd(s State, e TrickEnd) (State, []Directive, error) {
	if s.Phase != PhaseRoundActive {
		return dropped(s), nil, nil
	}
	ti := s.teamOf(e.WinnerID)
	if ti == -1 {
		return s, nil, fmt.Errorf("%w: trick_end winner %s not in roster", ErrInvariantViolation, e.WinnerID)
	}

	teams := append([]TeamState(nil), s.Teams...)
	teams[ti].RoundScore += e.Points
	s.Teams = teams

	s.TrickPhase = TrickResolving
	s.LastWinnerID = e.WinnerID
	s.LastWinner = e.WinnerCard
	if e.WinnerID == s.SelfID {
		s.Status = "You won the trick!"
	} else {
		s.Status = s.playerName(e.WinnerID) + " won the trick!"
	}
	// Re-arming supersedes any pending clear; at most one is ever live.
	return s, []Directive{ScheduleTrickClear{}}, nil
}

func applyRoundEnd(s State, e RoundEnd) (State, []Directive, error) {
	if s.Phase != PhaseRoundActive {
		return dropped(s), nil, nil
	}
	result := RoundResult{
		Team1Round: e.Team1Round, Team2Round: e.Team2Round,
		Team1Total: e.Team1Total, Team2Total: e.Team2Total,
	}
	if s.TrickPhase == TrickResolving {
		// The last trick is still on display. The round result waits for
		// the deferred clear; scores keep showing this round's totals.
		s.Phase = PhaseRoundSettling
		s.PendingRound = &result
		return s, nil, nil
	}
	s.CurrentTurnID = ""
	return settleRound(s, result), nil, nil
}

// settleRound applies a round result: fold round points into totals, zero
// the round accumulators and strip the finished hand. A turn id set during
// settling belongs to the new round and is kept; a parked deal or parked
// own-turn replays here.
func settleRound(s State, r RoundResult) State {
	teams := append([]TeamState(nil), s.Teams...)
	for i := range teams {
		switch teams[i].TeamNumber {
		case 1:
			teams[i].TotalScore = r.Team1Total
		case 2:
			teams[i].TotalScore = r.Team2Total
		}
		teams[i].RoundScore = 0
	}
	s.Teams = teams
	s.Phase = PhaseRoundActive
	s.PendingRound = nil
	s.Hand = nil
	s.Table = nil
	s.TrickPhase = TrickLeading
	s.FirstPlayDone = false
	s.DeclarationOpen = false
	s.Status = fmt.Sprintf("Round over. Totals - T1: %d, T2: %d", r.Team1Total, r.Team2Total)
	if s.PendingHand != nil {
		hand := s.PendingHand
		SortHand(hand)
		s.Hand = hand
		s.PendingHand = nil
		s.Status = "Cards dealt. Waiting for first turn."
	}
	if s.PendingTurn {
		s.PendingTurn = false
		s.CurrentTurnID = s.SelfID
		s.Status = "Your turn!"
		if len(s.Hand) == CardsPerRound {
			s.DeclarationOpen = true
		}
	}
	return s
}

func applyGameOver(s State, e GameOver) (State, []Directive, error) {
	if s.Phase != PhaseRoundActive && s.Phase != PhaseRoundSettling {
		return dropped(s), nil, nil
	}
	result := GameResult{WinningTeamID: e.WinningTeamID, FinalTeam1: e.FinalTeam1, FinalTeam2: e.FinalTeam2}
	if s.TrickPhase == TrickResolving {
		s.PendingGameOver = &result
		return s, nil, nil
	}
	return finishGame(s, result), []Directive{ScheduleSessionExpiry{}}, nil
}

func finishGame(s State, r GameResult) State {
	s.Phase = PhaseGameOver
	s.Result = &r
	s.PendingGameOver = nil
	s.PendingRound = nil
	s.PendingHand = nil
	s.PendingTurn = false
	s.Hand = nil
	s.Table = nil
	s.TrickPhase = TrickLeading
	s.CurrentTurnID = ""
	s.DeclarationOpen = false
	s.Status = fmt.Sprintf("Game over! Final score: T1 %d - T2 %d", r.FinalTeam1, r.FinalTeam2)
	return s
}

func applyDeclaration(s State, e DeclarationConfirmed) (State, []Directive, error) {
	if s.Phase != PhaseRoundActive {
		return dropped(s), nil, nil
	}
	ti := s.teamOf(e.PlayerID)
	if ti == -1 {
		return s, nil, fmt.Errorf("%w: declaration_confirmation for unknown player %s", ErrInvariantViolation, e.PlayerID)
	}
	teams := append([]TeamState(nil), s.Teams...)
	teams[ti].RoundScore += e.Points
	s.Teams = teams
	s.Banner = fmt.Sprintf("%s declared %s (+%s)",
		s.playerName(e.PlayerID), e.DeclarationType, FormatScore(e.Points))
	return s, []Directive{ScheduleBannerClear{}}, nil
}

func applyTrickCleared(s State) (State, []Directive, error) {
	if s.Phase != PhaseRoundActive && s.Phase != PhaseRoundSettling {
		return s, nil, nil
	}
	s.Table = nil
	s.TrickPhase = TrickLeading
	s.LastWinnerID = ""
	s.LastWinner = Card{}

	if s.Phase == PhaseRoundSettling && s.PendingRound != nil {
		s = settleRound(s, *s.PendingRound)
	}
	if s.PendingGameOver != nil {
		return finishGame(s, *s.PendingGameOver), []Directive{ScheduleSessionExpiry{}}, nil
	}
	return s, nil, nil
}
