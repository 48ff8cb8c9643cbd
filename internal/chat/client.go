package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tandemchat/backend/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 256
)

// Client owns one websocket connection for one user. Inbound frames are
// dispatched to the pipeline by the read pump; outbound frames are queued on
// send and drained by the write pump.
type Client struct {
	user     string
	conn     *websocket.Conn
	send     chan []byte
	registry *Manager
	pipeline *Pipeline

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection. Call Run to start the pumps.
func NewClient(user string, conn *websocket.Conn, registry *Manager, pipeline *Pipeline) *Client {
	return &Client{
		user:     user,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		registry: registry,
		pipeline: pipeline,
	}
}

// SendJSON queues v for delivery. A full send buffer or a closed client
// drops the frame rather than blocking the broadcaster.
func (c *Client) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	select {
	case c.send <- data:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

// closeSend closes the outbound queue exactly once so the write pump drains
// and exits. Broadcasters racing a disconnect see closed and drop instead of
// panicking on a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run registers the client and starts both pumps. It returns when the read
// pump exits, after the client has been deregistered.
func (c *Client) Run() {
	c.registry.Connect(c.user, c)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.registry.Disconnect(c.user, c)
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logging.Error("websocket read failed", err, map[string]interface{}{
					"user": c.user,
				})
			}
			return
		}
		c.dispatch(message)
	}
}

// dispatch routes one inbound frame. Malformed or unknown frames are logged
// and dropped; no error goes back to the sender.
func (c *Client) dispatch(message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		logging.Warn("dropping malformed websocket frame", map[string]interface{}{
			"user":  c.user,
			"error": err.Error(),
		})
		return
	}
	if env.Type == "" {
		env.Type = TypeChatMessage
	}

	switch env.Type {
	case TypeChatMessage:
		if env.ConversationID == "" || env.Content == "" {
			logging.Warn("dropping incomplete chat message frame", map[string]interface{}{
				"user": c.user,
			})
			return
		}
		if err := c.pipeline.HandleChatMessage(context.Background(), c.user, env); err != nil {
			logging.Error("chat message pipeline failed", err, map[string]interface{}{
				"user":            c.user,
				"conversation_id": env.ConversationID,
			})
		}
	case TypePing:
		if err := c.SendJSON(PongFrame{Type: TypePong}); err != nil {
			logging.Warn("failed to answer ping", map[string]interface{}{
				"user": c.user,
			})
		}
	default:
		logging.Warn("dropping unknown websocket frame type", map[string]interface{}{
			"user": c.user,
			"type": env.Type,
		})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
