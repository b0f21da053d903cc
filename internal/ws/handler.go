package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"draw-app-backend/internal/env"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler owns the relay's transport edge: websocket upgrades and, when redis
// is configured, the cross-instance bridge.
type Handler struct {
	hub         *Hub
	redisClient *redis.Client
	instanceID  string
}

func NewHandler(h *Hub) *Handler {
	handler := &Handler{
		hub:        h,
		instanceID: uuid.NewString(),
	}

	if addr := env.Get(env.RelayRedisURL); addr != "" {
		handler.redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: env.Get(env.RelayRedisPass),
			DB:       0,
		})
		h.SetPublisher(&redisPublisher{client: handler.redisClient, origin: handler.instanceID})
	}

	return handler
}

// ServeWS upgrades the request and starts the connection session. The client
// picks its room afterwards with a join event.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cl := &Client{
		Conn: conn,
		Send: make(chan *Envelope, 32),
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}

	h.hub.Register <- cl

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub)
}

// Rooms returns a point-in-time view for the HTTP listing endpoint.
func (h *Handler) Rooms() []RoomRes {
	return h.hub.Snapshot()
}

// RunBridge consumes bridged room events from the other relay instances.
// No-op when redis is not configured.
func (h *Handler) RunBridge() {
	if h.redisClient == nil {
		return
	}
	go h.consumeBridge()
}

func (h *Handler) consumeBridge() {
	subscriber := h.redisClient.PSubscribe(context.Background(), bridgeChannelPrefix+"*")
	defer subscriber.Close()

	log.Printf("ws: bridge subscribed to %s*", bridgeChannelPrefix)

	for msg := range subscriber.Channel() {
		var bridged BridgeMessage
		if err := json.Unmarshal([]byte(msg.Payload), &bridged); err != nil {
			log.Printf("ws: undecodable bridge message on %s: %v", msg.Channel, err)
			continue
		}
		if bridged.Origin == h.instanceID {
			continue
		}
		if bridged.RoomID == "" {
			bridged.RoomID = strings.TrimPrefix(msg.Channel, bridgeChannelPrefix)
		}

		h.hub.Remote <- &bridged
	}

	log.Printf("ws: bridge subscription closed")
}
