package client

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"tressette-client/internal/protocol"
	"tressette-client/internal/session"
)

// Gate errors surfaced to the caller before anything reaches the wire.
var ErrBadPhase = errors.New("not allowed in the current phase")
var ErrNotYourTurn = errors.New("not your turn")
var ErrIllegalCard = errors.New("card is not a legal play")
var ErrCannotDeclare = errors.New("declaration window is closed")
var ErrUnknownDeclaration = errors.New("not a declarable combination")
var ErrEmptyName = errors.New("name must not be empty")
var ErrBadTeam = errors.New("team must be 1 or 2")
var ErrEmptyGameCode = errors.New("game code must not be empty")

// actionMsg is a user intent handled inside the loop so gating always reads
// the current snapshot, never a stale one.
type actionMsg interface {
	Msg
	isAction()
}

type doCreate struct {
	Name       string
	Team       int
	PointsGoal int
	reply      chan error
}

type doJoin struct {
	Name     string
	GameCode string
	Team     int
	reply    chan error
}

type doPlay struct {
	Card  session.Card
	reply chan error
}

type doDeclare struct {
	Decl  session.Declaration
	reply chan error
}

type doPing struct{}

func (doCreate) isClientMsg()  {}
func (doJoin) isClientMsg()    {}
func (doPlay) isClientMsg()    {}
func (doDeclare) isClientMsg() {}
func (doPing) isClientMsg()    {}

func (doCreate) isAction()  {}
func (doJoin) isAction()    {}
func (doPlay) isAction()    {}
func (doDeclare) isAction() {}
func (doPing) isAction()    {}

// CreateGame asks the server for a fresh lobby.
func (c *Client) CreateGame(ctx context.Context, name string, team, pointsGoal int) error {
	return c.do(ctx, func(reply chan error) actionMsg {
		return doCreate{Name: name, Team: team, PointsGoal: pointsGoal, reply: reply}
	})
}

// JoinGame joins an existing lobby by code.
func (c *Client) JoinGame(ctx context.Context, name, gameCode string, team int) error {
	return c.do(ctx, func(reply chan error) actionMsg {
		return doJoin{Name: name, GameCode: gameCode, Team: team, reply: reply}
	})
}

// PlayCard sends a card if it is currently a legal-looking play. The server
// still has the final word; this only gates the affordance.
func (c *Client) PlayCard(ctx context.Context, card session.Card) error {
	return c.do(ctx, func(reply chan error) actionMsg {
		return doPlay{Card: card, reply: reply}
	})
}

// Declare forwards a catalog declaration while the window is open.
func (c *Client) Declare(ctx context.Context, decl session.Declaration) error {
	return c.do(ctx, func(reply chan error) actionMsg {
		return doDeclare{Decl: decl, reply: reply}
	})
}

func (c *Client) do(ctx context.Context, build func(chan error) actionMsg) error {
	reply := make(chan error, 1)
	select {
	case c.inbox <- build(reply):
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleAction validates an intent against the current state, writes the
// outbound message and records the local transition. Loop goroutine only.
func (c *Client) handleAction(m actionMsg) {
	switch a := m.(type) {
	case doCreate:
		a.reply <- c.doCreate(a)
	case doJoin:
		a.reply <- c.doJoin(a)
	case doPlay:
		a.reply <- c.doPlay(a)
	case doDeclare:
		a.reply <- c.doDeclare(a)
	case doPing:
		if err := c.send("ping", struct{}{}); err != nil {
			c.log.Warn("ping failed", zap.Error(err))
		}
	}
}

func (c *Client) doCreate(a doCreate) error {
	if c.state.Phase != session.PhaseIdle {
		return ErrBadPhase
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Team != 1 && a.Team != 2 {
		return ErrBadTeam
	}
	payload := protocol.CreateGamePayload{Name: a.Name, DesiredTeam: a.Team, PointsGoal: a.PointsGoal}
	if err := c.send("create_game", payload); err != nil {
		return err
	}
	c.apply(session.CreateRequested{Name: a.Name})
	return nil
}

func (c *Client) doJoin(a doJoin) error {
	if c.state.Phase != session.PhaseIdle {
		return ErrBadPhase
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Team != 1 && a.Team != 2 {
		return ErrBadTeam
	}
	code := strings.ToUpper(strings.TrimSpace(a.GameCode))
	if code == "" {
		return ErrEmptyGameCode
	}
	payload := protocol.JoinGamePayload{Name: a.Name, GameCode: code, DesiredTeam: a.Team}
	if err := c.send("join_game", payload); err != nil {
		return err
	}
	c.apply(session.JoinRequested{Name: a.Name, GameCode: code})
	return nil
}

func (c *Client) doPlay(a doPlay) error {
	if !c.state.PlayOpen() {
		if c.state.Phase != session.PhaseRoundActive {
			return ErrBadPhase
		}
		return ErrNotYourTurn
	}
	legal := session.LegalMoves(c.state.Hand, c.state.Table)
	found := false
	for _, m := range legal {
		if m.Same(a.Card) {
			found = true
			break
		}
	}
	if !found {
		return ErrIllegalCard
	}
	// The hand mutates only on the server's you_played confirmation.
	return c.send("play_card", protocol.PlayCardPayload{Suit: a.Card.Suit, Rank: a.Card.Rank})
}

func (c *Client) doDeclare(a doDeclare) error {
	if !c.state.CanDeclare() {
		return ErrCannotDeclare
	}
	if !session.InCatalog(a.Decl) {
		return ErrUnknownDeclaration
	}
	payload := protocol.DeclarePayload{
		DeclarationType: string(a.Decl.Type),
		Suit:            a.Decl.Suit,
		Rank:            a.Decl.Rank,
	}
	return c.send("declare", payload)
}
