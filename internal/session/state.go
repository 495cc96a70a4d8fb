package session

type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseLobbyWaiting  Phase = "lobby_waiting"
	PhaseLobbyFilled   Phase = "lobby_filled"
	PhaseRoundActive   Phase = "round_active"
	PhaseRoundSettling Phase = "round_settling"
	PhaseGameOver      Phase = "game_over"
)

// TrickPhase is the per-trick sub-state inside PhaseRoundActive.
type TrickPhase string

const (
	TrickLeading   TrickPhase = "leading"
	TrickFollowing TrickPhase = "following"
	TrickResolving TrickPhase = "resolving" // table frozen until the deferred clear fires
)

type Player struct {
	ID       string
	Name     string
	Position int // seat 0..3
}

type TeamState struct {
	ID         string
	TeamNumber int // 1 or 2
	Players    []Player
	RoundScore int // raw thirds, reset each round
	TotalScore int
}

// Seat is the derived relation from a player to the local point of view.
type Seat string

const (
	SeatSelf          Seat = "self"
	SeatPartner       Seat = "partner"
	SeatOpponentLeft  Seat = "opponent_left"
	SeatOpponentRight Seat = "opponent_right"
)

// CardsPerRound is the Tressette deal: a 40-card deck over four players.
const CardsPerRound = 10

// RoundResult holds a round_end payload parked until the table clears.
type RoundResult struct {
	Team1Round, Team2Round int
	Team1Total, Team2Total int
}

// GameResult holds a game_over payload, possibly parked the same way.
type GameResult struct {
	WinningTeamID          string
	FinalTeam1, FinalTeam2 int
}

type Diagnostics struct {
	UnknownMessages   int
	MalformedMessages int
	DroppedMessages   int
}

// State is the whole session snapshot. It is a value: Apply copies it,
// mutates the copy and returns it, so callers never observe a torn state.
type State struct {
	Phase  Phase
	Status string

	// Lobby
	GameCode     string
	SelfName     string
	LobbyPlayers []Player

	// Fixed at game_start for the lifetime of the game.
	SelfID     string
	Players    map[string]Player
	Teams      []TeamState
	Seats      map[string]Seat
	PointsGoal int

	// Round / trick
	Hand          []Card
	Table         []Card
	TrickPhase    TrickPhase
	CurrentTurnID string
	LastWinnerID  string
	LastWinner    Card

	// Declaration affordance: armed once per round at the first your_turn,
	// gone for good once the first play is confirmed.
	DeclarationOpen bool
	FirstPlayDone   bool
	Banner          string

	// Events parked while a trick-clear is still pending. The server starts
	// the next round inside the clear window, so its opening burst (deal,
	// first turn) must survive until the parked result settles.
	PendingRound    *RoundResult
	PendingGameOver *GameResult
	PendingHand     []Card
	PendingTurn     bool

	Result *GameResult

	Diag Diagnostics
}

func NewIdleState() State {
	return State{
		Phase:  PhaseIdle,
		Status: "Connected. Create or join a game.",
	}
}

// teamOf returns the index into s.Teams for a player id, or -1.
func (s State) teamOf(playerID string) int {
	for i, t := range s.Teams {
		for _, p := range t.Players {
			if p.ID == playerID {
				return i
			}
		}
	}
	return -1
}

func (s State) playerName(id string) string {
	if p, ok := s.Players[id]; ok {
		return p.Name
	}
	return id
}

// IsSelfTurn reports whether the local player is expected to act.
func (s State) IsSelfTurn() bool {
	return s.Phase == PhaseRoundActive && s.CurrentTurnID == s.SelfID && s.SelfID != ""
}

// PlayOpen reports whether a card may be sent at all right now. The trick
// being in Resolving freezes play until the deferred clear has fired.
func (s State) PlayOpen() bool {
	return s.IsSelfTurn() && s.TrickPhase != TrickResolving
}

// deriveSeats maps every player id to a seat relative to the local player.
// Left/right come from seat-adjacency arithmetic: the next position
// clockwise is on the left, the previous one on the right.
func deriveSeats(players map[string]Player, teams []TeamState, selfID string) map[string]Seat {
	self, ok := players[selfID]
	if !ok {
		return nil
	}
	selfTeam := -1
	for i, t := range teams {
		for _, p := range t.Players {
			if p.ID == selfID {
				selfTeam = i
			}
		}
	}
	if selfTeam == -1 {
		return nil
	}
	seats := make(map[string]Seat, len(players))
	for id, p := range players {
		switch {
		case id == selfID:
			seats[id] = SeatSelf
		case teamIndexOf(teams, id) == selfTeam:
			seats[id] = SeatPartner
		case p.Position == (self.Position+1)%4:
			seats[id] = SeatOpponentLeft
		case p.Position == (self.Position+3)%4:
			seats[id] = SeatOpponentRight
		}
	}
	if len(seats) != len(players) {
		return nil
	}
	return seats
}

func teamIndexOf(teams []TeamState, playerID string) int {
	for i, t := range teams {
		for _, p := range t.Players {
			if p.ID == playerID {
				return i
			}
		}
	}
	return -1
}
