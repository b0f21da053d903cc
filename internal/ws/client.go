package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is the per-connection session: one websocket, one buffered outbound
// queue, and the current room/display name. RoomID and Name are owned by the
// hub goroutine; the pumps never read them.
type Client struct {
	Conn *websocket.Conn
	Send chan *Envelope
	ID   string

	RoomID string
	Name   string

	done     chan struct{} // Signal for coordinating goroutine shutdown
	mu       sync.Mutex    // Mutex for connection access
	isClosed bool          // Flag to track connection state
	dropped  bool          // Hub-side flag, touched only by the hub goroutine
}

// trySend queues an event without blocking. A false return means the client
// cannot keep up and should be dropped.
func (cl *Client) trySend(env *Envelope) bool {
	select {
	case cl.Send <- env:
		return true
	default:
		return false
	}
}

func (cl *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("ws: ping error for client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *Client) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case env, ok := <-cl.Send:
			if !ok {
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteJSON(env)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("ws: error sending to client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *Client) readMessage(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ws: recovered from panic in readMessage: %v", r)
		}

		if cl.done != nil {
			close(cl.done)
		}

		hub.Unregister <- cl
		log.Printf("ws: client %s disconnected", cl.ID)
	}()

	cl.Conn.SetReadLimit(512 * 1024)

	for {
		_, message, err := cl.Conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("ws: error reading from client %s: %v", cl.ID, err)
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("ws: undecodable frame from client %s: %v", cl.ID, err)
			continue
		}
		if env.Event == "" {
			continue
		}

		hub.Inbound <- &InboundEvent{From: cl, Envelope: env}
	}
}
