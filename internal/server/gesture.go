package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/flashgesture/internal/confirm"
	"github.com/ayusman/flashgesture/internal/detector"
	"github.com/ayusman/flashgesture/internal/flashcard"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
)

// Client and server message types on /api/gesture.
const (
	MsgActivate   = "activate"
	MsgDeactivate = "deactivate"
	MsgPose       = "pose"
	MsgSymbol     = "symbol"

	MsgState     = "state"
	MsgConfirmed = "confirmed"
	MsgInactive  = "inactive"
	MsgError     = "error"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	outboxSize   = 32
	maxFrameSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the extension connects from its own origin
	},
}

// ClientMessage is sent by the browser. Pose carries either Hand or the raw Landmarks triples;
// both absent means the hand was lost.
type ClientMessage struct {
	Type      string                  `json:"type"`
	CardID    string                  `json:"cardId,omitempty"`
	Hand      *detector.HandLandmarks `json:"hand,omitempty"`
	Landmarks [][]float64             `json:"landmarks,omitempty"`
	Symbol    string                  `json:"symbol,omitempty"`
}

// ServerMessage is sent to the browser.
type ServerMessage struct {
	Type   string            `json:"type"`
	State  *confirm.Snapshot `json:"state,omitempty"`
	Rating gesture.Rating    `json:"rating,omitempty"`
	Review *flashcard.Review `json:"review,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// handleGesture upgrades to a WebSocket and runs one confirmation session on it.
func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	newSession(s, conn).run()
}

// session owns one engine and one connection. Only the writer goroutine writes to conn.
type session struct {
	id         string
	conn       *websocket.Conn
	engine     *confirm.Engine
	submitter  *flashcard.GestureSubmitter
	classifier gesture.PoseClassifier
	log        logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	out    chan ServerMessage

	// activateMu covers Activate and binding its card, so a confirmation of the new window
	// cannot look up the card before it is bound.
	activateMu sync.Mutex

	stateMu sync.Mutex
	lastSeq uint64

	srv *Server
}

func newSession(s *Server, conn *websocket.Conn) *session {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	sess := &session{
		id:         id,
		conn:       conn,
		engine:     confirm.NewWithClock(s.config.Engine, s.config.Clock),
		classifier: s.classifier,
		log:        s.log.With().Str("session", id).Logger(),
		ctx:        ctx,
		cancel:     cancel,
		out:        make(chan ServerMessage, outboxSize),
		srv:        s,
	}
	if s.config.Cards != nil {
		sess.submitter = flashcard.NewGestureSubmitter(s.config.Cards)
	}

	sess.engine.OnChange(func(snap confirm.Snapshot) {
		sess.sendState(ServerMessage{Type: MsgState, State: &snap})
	})
	sess.engine.OnConfirmed(sess.confirmed)
	sess.engine.OnInactive(func() {
		sess.send(ServerMessage{Type: MsgInactive})
	})
	return sess
}

func (c *session) run() {
	c.log.Info().Msg("gesture session opened")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop()
	}()

	if a := c.srv.config.App; a != nil {
		obs, unsubscribe := a.Subscribe()
		defer unsubscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-c.ctx.Done():
					return
				case o, ok := <-obs:
					if !ok {
						return
					}
					c.engine.Observe(o.Symbol)
				}
			}
		}()
	}

	snap := c.engine.Snapshot()
	c.sendState(ServerMessage{Type: MsgState, State: &snap})

	c.readLoop()

	c.engine.Deactivate()
	c.cancel()
	wg.Wait()
	c.conn.Close()
	c.log.Info().Msg("gesture session closed")
}

func (c *session) readLoop() {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("read")
			}
			return
		}
		c.handle(msg)
	}
}

func (c *session) handle(msg ClientMessage) {
	switch msg.Type {
	case MsgActivate:
		c.activateMu.Lock()
		window := c.engine.Activate()
		if c.submitter != nil {
			c.submitter.Select(window, msg.CardID)
		}
		c.activateMu.Unlock()

	case MsgDeactivate:
		c.engine.Deactivate()

	case MsgPose:
		hand := msg.Hand
		if hand == nil && len(msg.Landmarks) > 0 {
			hand = detector.FromXYZ(msg.Landmarks)
		}
		symbol := gesture.None
		if hand != nil {
			symbol = c.classifier.Classify(hand)
		}
		c.engine.Observe(symbol)

	case MsgSymbol:
		c.engine.Observe(gesture.ParseSymbol(msg.Symbol))

	default:
		c.send(ServerMessage{Type: MsgError, Error: "unknown message type " + msg.Type})
	}
}

// confirmed submits the rating for the card of the confirmed window. Without a card the
// rating is only reported.
func (c *session) confirmed(snap confirm.Snapshot) {
	rating := snap.Confirmed
	msg := ServerMessage{Type: MsgConfirmed, Rating: rating, State: &snap}

	if c.submitter != nil {
		c.activateMu.Lock()
		review, err := c.submitter.Submit(c.ctx, snap.Window, rating)
		c.activateMu.Unlock()
		switch {
		case err == nil:
			msg.Review = review
		case errors.Is(err, flashcard.ErrNoCard):
		default:
			c.log.Warn().Err(err).Str("rating", string(rating)).Msg("submit gesture rating")
			msg.Error = err.Error()
		}
	}
	if fn := c.srv.config.OnRating; fn != nil {
		fn(rating)
	}
	c.sendState(msg)
}

// sendState queues a message carrying a snapshot unless a newer snapshot was already queued.
// Engine callbacks run on the reader, observer and timer goroutines, so they can arrive out
// of order.
func (c *session) sendState(msg ServerMessage) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if msg.State != nil {
		if msg.State.Seq < c.lastSeq {
			return
		}
		c.lastSeq = msg.State.Seq
	}
	c.send(msg)
}

// send queues msg for the writer. It drops msg once the session has ended.
func (c *session) send(msg ServerMessage) {
	select {
	case c.out <- msg:
	case <-c.ctx.Done():
	}
}

func (c *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug().Err(err).Msg("write")
				c.cancel()
				c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.cancel()
				c.conn.Close()
				return
			}
		}
	}
}
