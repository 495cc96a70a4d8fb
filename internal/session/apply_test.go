package session

import (
	"errors"
	"reflect"
	"testing"
)

// Roster used across the transition tests: the local player sits at
// position 0, partnered with position 2.
const (
	selfID    = "p-alice"
	leftID    = "p-bob"
	partnerID = "p-carol"
	rightID   = "p-dave"
)

func rosterStart() GameStart {
	alice := Player{ID: selfID, Name: "Alice", Position: 0}
	bob := Player{ID: leftID, Name: "Bob", Position: 1}
	carol := Player{ID: partnerID, Name: "Carol", Position: 2}
	dave := Player{ID: rightID, Name: "Dave", Position: 3}
	return GameStart{
		GameID:  "g-1",
		Players: []Player{alice, bob, carol, dave},
		Teams: []TeamState{
			{ID: "t-1", TeamNumber: 1, Players: []Player{alice, carol}},
			{ID: "t-2", TeamNumber: 2, Players: []Player{bob, dave}},
		},
		PointsGoal: 31,
	}
}

func hand10() []Card {
	return []Card{
		card(Bastoni, "1", 8), card(Bastoni, "4", 1), card(Bastoni, "7", 4),
		card(Kope, "3", 10), card(Kope, "11", 5),
		card(Denari, "2", 9), card(Denari, "13", 7),
		card(Spade, "1", 8), card(Spade, "5", 2), card(Spade, "6", 3),
	}
}

// freshHand is a second-round deal, distinguishable from hand10.
func freshHand() []Card {
	return []Card{
		card(Kope, "1", 8), card(Kope, "2", 9), card(Kope, "4", 1),
		card(Kope, "5", 2), card(Kope, "6", 3),
		card(Denari, "3", 10), card(Denari, "4", 1), card(Denari, "5", 2),
		card(Denari, "6", 3), card(Denari, "7", 4),
	}
}

func mustApply(t *testing.T, s State, ev Event) (State, []Directive) {
	t.Helper()
	next, dirs, err := Apply(s, ev)
	if err != nil {
		t.Fatalf("Apply(%T): unexpected error %v", ev, err)
	}
	return next, dirs
}

// startedState walks the happy path up to a dealt hand.
func startedState(t *testing.T) State {
	t.Helper()
	s := NewIdleState()
	s, _ = mustApply(t, s, CreateRequested{Name: "Alice"})
	s, _ = mustApply(t, s, GameCreated{GameCode: "ABCDE"})
	s, _ = mustApply(t, s, LobbyUpdate{Players: rosterStart().Players})
	s, _ = mustApply(t, s, rosterStart())
	s, _ = mustApply(t, s, DealHand{Hand: hand10()})
	return s
}

func hasDirective(dirs []Directive, want Directive) bool {
	for _, d := range dirs {
		if reflect.TypeOf(d) == reflect.TypeOf(want) {
			return true
		}
	}
	return false
}

func TestApply_SeatMapFromGameStart(t *testing.T) {
	s := startedState(t)

	want := map[string]Seat{
		selfID:    SeatSelf,
		partnerID: SeatPartner,
		leftID:    SeatOpponentLeft,
		rightID:   SeatOpponentRight,
	}
	if !reflect.DeepEqual(s.Seats, want) {
		t.Fatalf("seat map: got %v, want %v", s.Seats, want)
	}
}

func TestApply_GameStartOutOfPhaseIsProtocolViolation(t *testing.T) {
	cases := []struct {
		name  string
		state State
	}{
		{"idle", NewIdleState()},
		{"round active", startedState(t)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Apply(tc.state, rosterStart())
			if !errors.Is(err, ErrProtocolViolation) {
				t.Fatalf("want ErrProtocolViolation, got %v", err)
			}
		})
	}
}

func TestApply_GameStartUnknownSelfNameIsFatal(t *testing.T) {
	s := NewIdleState()
	s, _ = mustApply(t, s, CreateRequested{Name: "Nobody"})
	s, _ = mustApply(t, s, LobbyUpdate{Players: rosterStart().Players})

	_, _, err := Apply(s, rosterStart())
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("want ErrInvariantViolation, got %v", err)
	}
}

func TestApply_RoundActiveHasNoPartialDerivedState(t *testing.T) {
	s := startedState(t)
	if s.Phase != PhaseRoundActive {
		t.Fatalf("want round_active, got %s", s.Phase)
	}
	if s.SelfID == "" || s.Players == nil || s.Seats == nil || len(s.Teams) != 2 {
		t.Fatalf("derived fields partially populated: %+v", s)
	}
	if len(s.Hand) != CardsPerRound {
		t.Fatalf("hand not dealt: %d cards", len(s.Hand))
	}
}

func TestApply_UnknownMessageOnlyTouchesDiagnostics(t *testing.T) {
	s := startedState(t)

	next, dirs := mustApply(t, s, UnknownMessage{MsgType: "foo"})
	if len(dirs) != 0 {
		t.Fatalf("unexpected directives %v", dirs)
	}
	if next.Diag.UnknownMessages != s.Diag.UnknownMessages+1 {
		t.Fatalf("diagnostics counter not bumped")
	}
	next.Diag = s.Diag
	if !reflect.DeepEqual(next, s) {
		t.Fatalf("unknown message changed the snapshot:\n got %+v\nwant %+v", next, s)
	}
}

func TestApply_DeclarationWindowIsMonotonicallyRevoked(t *testing.T) {
	s := startedState(t)
	if s.CanDeclare() {
		t.Fatalf("window open before the first turn")
	}

	s, _ = mustApply(t, s, YourTurn{PlayerID: selfID})
	if !s.CanDeclare() {
		t.Fatalf("window closed on the round's first own turn")
	}

	s, _ = mustApply(t, s, YouPlayed{PlayerID: selfID, Card: card(Kope, "3", 10)})
	if s.CanDeclare() {
		t.Fatalf("window open after the first confirmed play")
	}

	// No later event before the next deal reopens it.
	s, _ = mustApply(t, s, GameStateUpdate{CurrentPlayerID: selfID})
	s, _ = mustApply(t, s, YourTurn{PlayerID: selfID})
	if s.CanDeclare() {
		t.Fatalf("window reopened within the same round")
	}
}

func TestApply_YouPlayedUnknownCardIsFatal(t *testing.T) {
	s := startedState(t)
	_, _, err := Apply(s, YouPlayed{PlayerID: selfID, Card: card(Kope, "13", 7)})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("want ErrInvariantViolation, got %v", err)
	}
}

func TestApply_YouPlayedRemovesExactlyThatCard(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, YouPlayed{PlayerID: selfID, Card: card(Spade, "1", 8)})
	if len(s.Hand) != CardsPerRound-1 {
		t.Fatalf("hand size %d after one play", len(s.Hand))
	}
	if containsCard(s.Hand, card(Spade, "1", 8)) {
		t.Fatalf("played card still in hand")
	}
}

func TestApply_TrickEndScoresWinnerAndFreezesTable(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, GameStateUpdate{
		CurrentPlayerID: selfID,
		CardsOnTable:    []Card{card(Kope, "3", 10), card(Kope, "2", 9)},
	})

	s, dirs := mustApply(t, s, TrickEnd{WinnerID: partnerID, WinnerCard: card(Kope, "3", 10), Points: 3})
	if s.TrickPhase != TrickResolving {
		t.Fatalf("want resolving, got %s", s.TrickPhase)
	}
	if !hasDirective(dirs, ScheduleTrickClear{}) {
		t.Fatalf("no trick-clear scheduled: %v", dirs)
	}
	if s.Teams[0].RoundScore != 3 {
		t.Fatalf("winner team round score %d, want 3", s.Teams[0].RoundScore)
	}
	if s.PlayOpen() {
		t.Fatalf("play must stay disabled while resolving")
	}
}

func TestApply_TrickEndUnknownWinnerIsFatal(t *testing.T) {
	s := startedState(t)
	_, _, err := Apply(s, TrickEnd{WinnerID: "p-ghost", Points: 3})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("want ErrInvariantViolation, got %v", err)
	}
}

func TestApply_RoundEndWaitsForPendingTrickClear(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, TrickEnd{WinnerID: selfID, WinnerCard: card(Bastoni, "1", 8), Points: 3})

	s, dirs := mustApply(t, s, RoundEnd{Team1Round: 7, Team2Round: 4, Team1Total: 2, Team2Total: 1})
	if len(dirs) != 0 {
		t.Fatalf("round_end must not act while the clear is pending: %v", dirs)
	}
	if s.Phase != PhaseRoundSettling {
		t.Fatalf("want round_settling, got %s", s.Phase)
	}
	// The finished round's scores keep showing until the clear fires.
	if s.Teams[0].RoundScore != 3 || s.Teams[0].TotalScore != 0 {
		t.Fatalf("scores settled early: %+v", s.Teams[0])
	}

	s, _ = mustApply(t, s, TrickCleared{})
	if s.Phase != PhaseRoundActive {
		t.Fatalf("want round_active after clear, got %s", s.Phase)
	}
	if s.Teams[0].TotalScore != 2 || s.Teams[1].TotalScore != 1 {
		t.Fatalf("totals not applied: %+v", s.Teams)
	}
	if s.Teams[0].RoundScore != 0 || s.Teams[1].RoundScore != 0 {
		t.Fatalf("round scores not reset: %+v", s.Teams)
	}
	if len(s.Table) != 0 || len(s.Hand) != 0 {
		t.Fatalf("board not cleared for the new round")
	}
}

func TestApply_RoundEndWithoutPendingClearSettlesImmediately(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, RoundEnd{Team1Total: 5, Team2Total: 3})
	if s.Phase != PhaseRoundActive || s.Teams[0].TotalScore != 5 {
		t.Fatalf("immediate settle failed: phase=%s teams=%+v", s.Phase, s.Teams)
	}
}

func TestApply_DealDuringSettlingIsParkedUntilClear(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, TrickEnd{WinnerID: rightID, WinnerCard: card(Spade, "3", 10), Points: 1})
	s, _ = mustApply(t, s, RoundEnd{Team1Total: 4, Team2Total: 6})

	s, _ = mustApply(t, s, DealHand{Hand: freshHand()})
	if containsCard(s.Hand, card(Kope, "2", 9)) {
		t.Fatalf("new hand visible before the clear fired")
	}

	s, _ = mustApply(t, s, TrickCleared{})
	if len(s.Hand) != CardsPerRound || !containsCard(s.Hand, card(Kope, "2", 9)) {
		t.Fatalf("parked hand not applied after clear: %v", s.Hand)
	}
	if s.FirstPlayDone {
		t.Fatalf("first-play flag leaked into the new round")
	}
}

func TestApply_PostRoundBurstReplaysOwnTurnAfterClear(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, TrickEnd{WinnerID: selfID, WinnerCard: card(Bastoni, "1", 8), Points: 3})
	s, _ = mustApply(t, s, RoundEnd{Team1Round: 7, Team2Round: 4, Team1Total: 2, Team2Total: 1})

	// The server opens the next round well inside the clear window.
	s, _ = mustApply(t, s, DealHand{Hand: freshHand()})
	s, _ = mustApply(t, s, GameStateUpdate{CurrentPlayerID: selfID})
	s, _ = mustApply(t, s, YourTurn{PlayerID: selfID})
	if s.Phase != PhaseRoundSettling {
		t.Fatalf("opening burst settled early: %s", s.Phase)
	}

	s, _ = mustApply(t, s, TrickCleared{})
	if s.Phase != PhaseRoundActive {
		t.Fatalf("want round_active after clear, got %s", s.Phase)
	}
	if !s.IsSelfTurn() {
		t.Fatalf("own lead of the new round lost across the clear")
	}
	if !s.CanDeclare() {
		t.Fatalf("declaration window not armed on the new round's first own turn")
	}
	if len(s.Hand) != CardsPerRound {
		t.Fatalf("parked hand not applied: %d cards", len(s.Hand))
	}
	if s.Teams[0].TotalScore != 2 || s.Teams[1].TotalScore != 1 {
		t.Fatalf("totals not applied: %+v", s.Teams)
	}
}

func TestApply_OpponentLeadIdSurvivesClear(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, TrickEnd{WinnerID: leftID, WinnerCard: card(Denari, "3", 10), Points: 1})
	s, _ = mustApply(t, s, RoundEnd{Team1Total: 1, Team2Total: 2})
	s, _ = mustApply(t, s, DealHand{Hand: freshHand()})
	s, _ = mustApply(t, s, GameStateUpdate{CurrentPlayerID: leftID})

	s, _ = mustApply(t, s, TrickCleared{})
	if s.CurrentTurnID != leftID {
		t.Fatalf("new round's leader id lost across the clear: %q", s.CurrentTurnID)
	}
	if s.CanDeclare() {
		t.Fatalf("declaration window armed without an own turn")
	}
}

func TestApply_EarlyLeadDuringSettlingSettlesParkedRound(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, TrickEnd{WinnerID: rightID, WinnerCard: card(Spade, "3", 10), Points: 1})
	s, _ = mustApply(t, s, RoundEnd{Team1Total: 4, Team2Total: 6})
	s, _ = mustApply(t, s, DealHand{Hand: freshHand()})

	// Another player leads the new round before the clear fires; the parked
	// result must not wait on a clear that is being superseded.
	s, dirs := mustApply(t, s, GameStateUpdate{
		CurrentPlayerID: leftID,
		CardsOnTable:    []Card{card(Spade, "7", 4)},
	})
	if !hasDirective(dirs, CancelTrickClear{}) {
		t.Fatalf("pending clear not cancelled: %v", dirs)
	}
	if s.Phase != PhaseRoundActive || s.PendingRound != nil {
		t.Fatalf("parked round orphaned: phase=%s pending=%v", s.Phase, s.PendingRound)
	}
	if s.Teams[0].TotalScore != 4 || s.Teams[1].TotalScore != 6 {
		t.Fatalf("totals not applied: %+v", s.Teams)
	}
	if s.Teams[0].RoundScore != 0 || s.Teams[1].RoundScore != 0 {
		t.Fatalf("round scores not reset: %+v", s.Teams)
	}
	if len(s.Table) != 1 || s.TrickPhase != TrickFollowing {
		t.Fatalf("new trick not adopted: phase=%s table=%v", s.TrickPhase, s.Table)
	}
	if len(s.Hand) != CardsPerRound {
		t.Fatalf("parked hand not applied: %d cards", len(s.Hand))
	}
	if s.CurrentTurnID != leftID {
		t.Fatalf("turn id %q, want %q", s.CurrentTurnID, leftID)
	}
}

func TestApply_GameOverWaitsForPendingClearThenExpires(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, TrickEnd{WinnerID: leftID, WinnerCard: card(Denari, "3", 10), Points: 2})

	s, dirs := mustApply(t, s, GameOver{WinningTeamID: "t-2", FinalTeam1: 24, FinalTeam2: 31})
	if len(dirs) != 0 || s.Phase == PhaseGameOver {
		t.Fatalf("game over applied before the table cleared")
	}

	s, dirs = mustApply(t, s, TrickCleared{})
	if s.Phase != PhaseGameOver || s.Result == nil {
		t.Fatalf("game over not applied after clear: %+v", s)
	}
	if !hasDirective(dirs, ScheduleSessionExpiry{}) {
		t.Fatalf("no expiry scheduled: %v", dirs)
	}

	s, _ = mustApply(t, s, SessionExpired{})
	if s.Phase != PhaseIdle {
		t.Fatalf("want idle after expiry, got %s", s.Phase)
	}
}

func TestApply_NextTrickSupersedesPendingClear(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, TrickEnd{WinnerID: partnerID, WinnerCard: card(Kope, "3", 10), Points: 1})

	s, dirs := mustApply(t, s, GameStateUpdate{
		CurrentPlayerID: leftID,
		CardsOnTable:    []Card{card(Spade, "7", 4)},
	})
	if !hasDirective(dirs, CancelTrickClear{}) {
		t.Fatalf("pending clear not cancelled: %v", dirs)
	}
	if s.TrickPhase != TrickFollowing || len(s.Table) != 1 {
		t.Fatalf("next trick not adopted: phase=%s table=%v", s.TrickPhase, s.Table)
	}
}

func TestApply_EmptyUpdateWhileResolvingKeepsTableFrozen(t *testing.T) {
	s := startedState(t)
	s, _ = mustApply(t, s, GameStateUpdate{
		CurrentPlayerID: selfID,
		CardsOnTable:    []Card{card(Kope, "3", 10), card(Kope, "2", 9)},
	})
	s, _ = mustApply(t, s, TrickEnd{WinnerID: selfID, WinnerCard: card(Kope, "3", 10), Points: 1})

	s, _ = mustApply(t, s, GameStateUpdate{CurrentPlayerID: selfID})
	if len(s.Table) != 2 || s.TrickPhase != TrickResolving {
		t.Fatalf("frozen table lost: phase=%s table=%v", s.TrickPhase, s.Table)
	}
}

func TestApply_GameStateUpdateUnknownPlayerIsFatal(t *testing.T) {
	s := startedState(t)
	_, _, err := Apply(s, GameStateUpdate{CurrentPlayerID: "p-ghost"})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("want ErrInvariantViolation, got %v", err)
	}
}

func TestApply_JoinErrorReturnsToIdle(t *testing.T) {
	s := NewIdleState()
	s, _ = mustApply(t, s, JoinRequested{Name: "Alice", GameCode: "ZZZZZ"})

	s, dirs := mustApply(t, s, JoinError{Message: "Game code not found."})
	if s.Phase != PhaseIdle {
		t.Fatalf("want idle, got %s", s.Phase)
	}
	if !hasDirective(dirs, CancelAllTimers{}) {
		t.Fatalf("timers not cancelled on join error")
	}
}

func TestApply_ResetDiscardsEverythingButDiagnostics(t *testing.T) {
	s := startedState(t)
	s.Diag.UnknownMessages = 2

	s, dirs := mustApply(t, s, Reset{Reason: "Disconnected from server."})
	if s.Phase != PhaseIdle || s.SelfID != "" || s.Hand != nil {
		t.Fatalf("reset left session state behind: %+v", s)
	}
	if s.Diag.UnknownMessages != 2 {
		t.Fatalf("diagnostics lost on reset")
	}
	if !hasDirective(dirs, CancelAllTimers{}) {
		t.Fatalf("timers must be cancelled on reset")
	}
}

func TestApply_DeclarationConfirmationScoresAndBanners(t *testing.T) {
	s := startedState(t)
	s, dirs := mustApply(t, s, DeclarationConfirmed{
		PlayerID:        partnerID,
		TeamID:          "t-1",
		DeclarationType: "napola",
		Points:          9,
	})
	if s.Teams[0].RoundScore != 9 {
		t.Fatalf("declaration points not folded in: %+v", s.Teams[0])
	}
	if s.Banner == "" {
		t.Fatalf("no banner set")
	}
	if !hasDirective(dirs, ScheduleBannerClear{}) {
		t.Fatalf("banner clear not scheduled")
	}

	s, _ = mustApply(t, s, BannerCleared{})
	if s.Banner != "" {
		t.Fatalf("banner survived its clear")
	}
}
