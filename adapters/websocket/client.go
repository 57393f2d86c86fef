package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/refchat/domain"
	"github.com/satriahrh/refchat/utils/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
	turnQueueSize  = 16
)

const detailInvalidMessage = "invalid message"

// Client is one websocket connection. Every inbound frame is an independent
// chat turn; nothing is remembered between frames. Turns run one at a time in
// arrival order, so the n-th answer belongs to the n-th frame.
type Client struct {
	conn   *websocket.Conn
	svc    Replier
	send   chan []byte
	turns  chan *string
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	closed bool
}

type inbound struct {
	Message *string `json:"message"`
}

func NewClient(conn *websocket.Conn, svc Replier, requestID string) *Client {
	ctx := context.WithValue(context.Background(), log.RequestIDKey, requestID)
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		conn:   conn,
		svc:    svc,
		send:   make(chan []byte, 16),
		turns:  make(chan *string, turnQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) Run() {
	c.setupHandlers()

	go c.readPump()
	go c.writePump()
	go c.turnLoop()
}

func (c *Client) setupHandlers() {
	c.conn.SetCloseHandler(func(code int, text string) error {
		log.WithCtx(c.ctx).Debug("websocket connection closed", zap.Int("code", code), zap.String("text", text))
		c.Close()
		return nil
	})

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// Close gracefully closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.cancel()
	c.conn.Close()
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) Context() context.Context {
	return c.ctx
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithCtx(c.ctx).Error("websocket read failed", zap.Error(err))
			}
			return
		}

		// A nil turn answers with the invalid message detail, in order.
		var turn *string
		if msgType == websocket.TextMessage {
			var in inbound
			if err := json.Unmarshal(message, &in); err == nil {
				turn = in.Message
			}
		}

		select {
		case c.turns <- turn:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) turnLoop() {
	for {
		select {
		case turn := <-c.turns:
			if turn == nil {
				c.sendJSON(domain.ErrorResponse{Detail: detailInvalidMessage})
				continue
			}
			c.handle(*turn)
		case <-c.ctx.Done():
			return
		}
	}
}

// handle runs one chat turn. The turn is not cancelled if the socket closes
// first; its reply is then dropped.
func (c *Client) handle(message string) {
	ctx := context.WithoutCancel(c.ctx)

	reply, err := c.svc.Reply(ctx, message)
	if err != nil {
		log.WithCtx(ctx).Error("websocket chat turn failed", zap.Error(err))
		c.sendJSON(domain.ErrorResponse{Detail: domain.ErrorDetail(err)})
		return
	}
	c.sendJSON(domain.ChatResponse{Reply: reply})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.WithCtx(c.ctx).Error("websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.WithCtx(c.ctx).Error("websocket ping failed", zap.Error(err))
				return
			}

		case <-c.ctx.Done():
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Client) sendJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.WithCtx(c.ctx).Error("marshal websocket message", zap.Error(err))
		return
	}
	if err := c.SendMessage(payload); err != nil {
		log.WithCtx(c.ctx).Debug("dropping websocket message", zap.Error(err))
	}
}

// SendMessage queues message for the write pump.
func (c *Client) SendMessage(message []byte) error {
	if c.IsClosed() {
		return websocket.ErrCloseSent
	}

	select {
	case c.send <- message:
		return nil
	case <-c.ctx.Done():
		return websocket.ErrCloseSent
	}
}
