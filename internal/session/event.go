package session

// Event is anything the store reacts to: a decoded server message, a local
// intent the gateway already sent, or an internal timer fire. All state
// changes funnel through Apply(State, Event).
type Event interface{ isEvent() }

// --- Decoded server messages ---

type GameCreated struct{ GameCode string }

type LobbyUpdate struct{ Players []Player }

type JoinError struct{ Message string }

type GameStart struct {
	GameID     string
	Players    []Player
	Teams      []TeamState
	PointsGoal int
}

type DealHand struct{ Hand []Card }

type YourTurn struct{ PlayerID string }

type GameStateUpdate struct {
	CurrentPlayerID string
	CardsOnTable    []Card
	Team1Score      int
	Team2Score      int
}

type YouPlayed struct {
	PlayerID string
	Card     Card
}

type TrickEnd struct {
	WinnerID   string
	WinnerCard Card
	Points     int // raw thirds
}

type RoundEnd struct {
	Team1Round, Team2Round int
	Team1Total, Team2Total int
}

type GameOver struct {
	WinningTeamID          string
	FinalTeam1, FinalTeam2 int
}

type DeclarationConfirmed struct {
	PlayerID        string
	TeamID          string
	DeclarationType string
	Points          int // raw thirds
}

type ServerError struct{ Message string }

type Pong struct{}

// UnknownMessage is a type the protocol does not know. Ignored apart from
// the diagnostics counter.
type UnknownMessage struct{ MsgType string }

// MalformedMessage is a known type whose payload failed to decode. The
// message is dropped; the store stays untouched apart from diagnostics.
type MalformedMessage struct{ MsgType string }

// --- Local intents (already validated and written to the wire) ---

type CreateRequested struct{ Name string }

type JoinRequested struct {
	Name     string
	GameCode string
}

// --- Internal events ---

// TrickCleared fires when the deferred trick-clear delay elapses.
type TrickCleared struct{}

// BannerCleared fires when the declaration banner delay elapses.
type BannerCleared struct{}

// SessionExpired fires when the game-over display delay elapses.
type SessionExpired struct{}

// Reset forces the session back to Idle: channel close/error, or an
// invariant violation that makes the derived state untrustworthy.
type Reset struct{ Reason string }

func (GameCreated) isEvent()          {}
func (LobbyUpdate) isEvent()          {}
func (JoinError) isEvent()            {}
func (GameStart) isEvent()            {}
func (DealHand) isEvent()             {}
func (YourTurn) isEvent()             {}
func (GameStateUpdate) isEvent()      {}
func (YouPlayed) isEvent()            {}
func (TrickEnd) isEvent()             {}
func (RoundEnd) isEvent()             {}
func (GameOver) isEvent()             {}
func (DeclarationConfirmed) isEvent() {}
func (ServerError) isEvent()          {}
func (Pong) isEvent()                 {}
func (UnknownMessage) isEvent()       {}
func (MalformedMessage) isEvent()     {}
func (CreateRequested) isEvent()      {}
func (JoinRequested) isEvent()        {}
func (TrickCleared) isEvent()         {}
func (BannerCleared) isEvent()        {}
func (SessionExpired) isEvent()       {}
func (Reset) isEvent()                {}

// Directive is a side-effect request emitted by Apply for the caller to
// act on. The store itself never touches a timer.
type Directive interface{ isDirective() }

// ScheduleTrickClear arms (or re-arms, superseding any pending one) the
// deferred table clear.
type ScheduleTrickClear struct{}

// CancelTrickClear drops a pending table clear: the next trick moved on
// before the delay elapsed.
type CancelTrickClear struct{}

type ScheduleBannerClear struct{}

// ScheduleSessionExpiry arms the game-over auto-return to Idle.
type ScheduleSessionExpiry struct{}

// CancelAllTimers drops every pending deferred effect.
type CancelAllTimers struct{}

func (ScheduleTrickClear) isDirective()    {}
func (CancelTrickClear) isDirective()      {}
func (ScheduleBannerClear) isDirective()   {}
func (ScheduleSessionExpiry) isDirective() {}
func (CancelAllTimers) isDirective()       {}
