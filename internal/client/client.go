// Package client owns the session: the websocket channel, the state store,
// the deferred-effects queue and the action gateway. Everything runs on one
// loop goroutine; the reader, the ping ticker and the timers only post
// typed messages into the inbox, so each transition runs to completion
// before the next is looked at.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"tressette-client/internal/effects"
	"tressette-client/internal/protocol"
	"tressette-client/internal/session"
	"tressette-client/internal/view"
)

const (
	trickClearDelay  = 5 * time.Second
	bannerClearDelay = 4 * time.Second
	gameOverDelay    = 10 * time.Second
	pingInterval     = 30 * time.Second
	writeTimeout     = 3 * time.Second
	readTimeout      = 90 * time.Second
)

var ErrClosed = errors.New("client closed")

// Conn is the duplex channel the client speaks over. The websocket adapter
// is the real one; tests substitute a scripted pipe.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

type wsConn struct{ c *websocket.Conn }

func (w wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.c.Read(ctx)
	return data, err
}

func (w wsConn) Write(ctx context.Context, data []byte) error {
	return w.c.Write(ctx, websocket.MessageText, data)
}

func (w wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "bye")
}

// Msg is anything the loop reacts to.
type Msg interface{ isClientMsg() }

type fromServer struct{ msg protocol.Message }

type connDown struct{ err error }

type effectFired struct{ fired effects.Fired }

type subscribe struct {
	ID     string
	Outbox chan view.Model
}

type unsubscribe struct{ ID string }

type getState struct{ reply chan view.Model }

type shutdownMsg struct{}

func (fromServer) isClientMsg()  {}
func (connDown) isClientMsg()    {}
func (effectFired) isClientMsg() {}
func (subscribe) isClientMsg()   {}
func (unsubscribe) isClientMsg() {}
func (getState) isClientMsg()    {}
func (shutdownMsg) isClientMsg() {}

type Client struct {
	inbox  chan Msg
	conn   Conn
	state  session.State
	queue  *effects.Queue
	subs   map[string]chan view.Model
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// Dial connects to the server and starts the session loop.
func Dial(ctx context.Context, url string, log *zap.Logger) (*Client, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return New(ctx, wsConn{c: ws}, log), nil
}

// New starts a client over an established channel.
func New(parent context.Context, conn Conn, log *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(parent)
	c := &Client{
		inbox:  make(chan Msg, 64),
		conn:   conn,
		state:  session.NewIdleState(),
		subs:   make(map[string]chan view.Model),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	c.queue = effects.NewQueue(func(f effects.Fired) {
		// Timer goroutine: never block. A dropped fire is rejected later
		// by generation anyway.
		select {
		case c.inbox <- effectFired{fired: f}:
		default:
		}
	})
	go c.loop()
	go c.readLoop()
	go c.pingLoop()
	return c
}

func (c *Client) Inbox() chan<- Msg { return c.inbox }

// Close tears the session down and closes the channel.
func (c *Client) Close() {
	select {
	case c.inbox <- shutdownMsg{}:
	case <-c.ctx.Done():
	}
}

// Subscribe registers a snapshot consumer. The current snapshot is
// delivered immediately; slow consumers are dropped.
func (c *Client) Subscribe(id string) <-chan view.Model {
	out := make(chan view.Model, 8)
	select {
	case c.inbox <- subscribe{ID: id, Outbox: out}:
	case <-c.ctx.Done():
		close(out)
	}
	return out
}

func (c *Client) Unsubscribe(id string) {
	select {
	case c.inbox <- unsubscribe{ID: id}:
	case <-c.ctx.Done():
	}
}

// Snapshot returns the current projected view.
func (c *Client) Snapshot(ctx context.Context) (view.Model, error) {
	reply := make(chan view.Model, 1)
	select {
	case c.inbox <- getState{reply: reply}:
	case <-ctx.Done():
		return view.Model{}, ctx.Err()
	case <-c.ctx.Done():
		return view.Model{}, ErrClosed
	}
	select {
	case m := <-reply:
		return m, nil
	case <-ctx.Done():
		return view.Model{}, ctx.Err()
	}
}

// Done is closed once the loop has exited.
func (c *Client) Done() <-chan struct{} { return c.ctx.Done() }

func (c *Client) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case fromServer:
				c.apply(decodeEvent(msg.msg))

			case connDown:
				c.log.Warn("channel down", zap.Error(msg.err))
				c.apply(session.Reset{Reason: "Disconnected from server."})
				c.shutdown()
				return

			case effectFired:
				if !c.queue.Accept(msg.fired) {
					// Superseded or cancelled while in flight.
					break
				}
				switch msg.fired.Kind {
				case effects.KindTrickClear:
					c.apply(session.TrickCleared{})
				case effects.KindBannerClear:
					c.apply(session.BannerCleared{})
				case effects.KindSessionExpiry:
					c.apply(session.SessionExpired{})
				}

			case subscribe:
				c.subs[msg.ID] = msg.Outbox
				msg.Outbox <- view.Project(c.state)

			case unsubscribe:
				delete(c.subs, msg.ID)

			case getState:
				msg.reply <- view.Project(c.state)

			case shutdownMsg:
				c.shutdown()
				return

			default:
				if a, ok := m.(actionMsg); ok {
					c.handleAction(a)
				}
			}
		}
	}
}

// apply funnels an event through the store, runs the resulting directives
// against the effects queue and broadcasts the new snapshot.
func (c *Client) apply(ev session.Event) {
	next, dirs, err := session.Apply(c.state, ev)
	if err != nil {
		// Invariant and protocol violations make the derived state
		// untrustworthy; the session is reset rather than patched.
		c.log.Error("fatal event, resetting session", zap.Error(err))
		next, dirs, _ = session.Apply(c.state, session.Reset{Reason: "Session error: " + err.Error()})
	}
	c.state = next
	for _, d := range dirs {
		switch d.(type) {
		case session.ScheduleTrickClear:
			c.queue.Schedule(effects.KindTrickClear, trickClearDelay)
		case session.CancelTrickClear:
			c.queue.Cancel(effects.KindTrickClear)
		case session.ScheduleBannerClear:
			c.queue.Schedule(effects.KindBannerClear, bannerClearDelay)
		case session.ScheduleSessionExpiry:
			c.queue.Schedule(effects.KindSessionExpiry, gameOverDelay)
		case session.CancelAllTimers:
			c.queue.CancelAll()
		}
	}
	c.broadcast()
}

func (c *Client) broadcast() {
	snap := view.Project(c.state)
	for id, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Slow consumer: drop it rather than stall the loop.
			close(ch)
			delete(c.subs, id)
		}
	}
}

func (c *Client) shutdown() {
	c.queue.CancelAll()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	_ = c.conn.Close()
	c.cancel()
}

func (c *Client) readLoop() {
	for {
		ctx, cancel := context.WithTimeout(c.ctx, readTimeout)
		data, err := c.conn.Read(ctx)
		cancel()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			select {
			case c.inbox <- connDown{err: err}:
			case <-c.ctx.Done():
			}
			return
		}
		msg, err := protocol.Parse(data)
		if err != nil {
			c.log.Warn("dropping unparseable frame", zap.Error(err))
			continue
		}
		select {
		case c.inbox <- fromServer{msg: msg}:
		case <-c.ctx.Done():
			return
		}
	}
}

// pingLoop keeps the channel alive. The pong reply is a store no-op.
func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			select {
			case c.inbox <- doPing{}:
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// send encodes and writes one message under the write timeout. Called only
// from the loop goroutine.
func (c *Client) send(msgType string, payload any) error {
	data, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, data)
}
