package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// sendBuffer is how far a client may lag before it is dropped.
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API already allows all origins via CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection. userID is fixed at upgrade time
// from the session token; zero means unauthenticated.
type Client struct {
	id     string
	userID int

	hub  *Hub
	conn *websocket.Conn
	send chan Event
}

// HandleConnection upgrades the request, registers the client, and starts
// its pumps. userID may be zero for anonymous visitors; they receive
// snapshots and broadcasts but cannot vote.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, userID int) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		id:     uuid.NewString(),
		userID: userID,
		hub:    h,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
	}
	h.Register(client)

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump reads inbound events until the connection dies, forwarding
// reaction requests to the hub. Malformed payloads are submitted with an
// empty kind so the hub answers with the usual unicast error.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client %s read error: %v", c.id, err)
			}
			return
		}

		if msg.Event != EventReaction {
			continue
		}

		var req ReactionRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.hub.CastVote(c, 0, "")
			continue
		}
		c.hub.CastVote(c, req.TutorID, req.Type)
	}
}

// writePump writes outbound events and keeps the connection alive with
// pings. The hub closes the send channel when the client is dropped.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
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
