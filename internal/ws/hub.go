// Package ws implements the drawing relay: one websocket per client, room
// scoped fan-out, canvas history replay and cursor presence.
//
// All room membership changes, registry writes and broadcasts happen inside a
// single dispatch tick of the hub goroutine, so events from one connection
// reach every recipient in the order they were sent. No ordering is promised
// across different senders: relay and append share a tick per event, not a
// global sequencer.
package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"draw-app-backend/internal/canvas"
	"draw-app-backend/internal/presence"
)

type Room struct {
	ID      string
	Clients map[string]*Client
	// byName indexes connections by display name so cursor queries can be
	// directed instead of broadcast-and-filter. Names are not unique; a
	// shared name maps to every connection using it.
	byName map[string]map[string]*Client
}

type InboundEvent struct {
	From     *Client
	Envelope Envelope
}

type Config struct {
	// MaxRecordBytes caps a single drawing record. Oversized records are
	// dropped and counted, never stored or relayed.
	MaxRecordBytes int
	// RoomIdleTTL controls the janitor: rooms with no subscribers and no
	// activity for this long lose their stored history. Zero disables the
	// sweep.
	RoomIdleTTL   time.Duration
	SweepInterval time.Duration
}

const DefaultMaxRecordBytes = 64 * 1024

type Hub struct {
	// mu guards Rooms against concurrent Snapshot readers; only the Run
	// goroutine mutates membership.
	mu    sync.RWMutex
	Rooms map[string]*Room

	Register   chan *Client
	Unregister chan *Client
	Inbound    chan *InboundEvent
	Remote     chan *BridgeMessage

	store     *canvas.Store
	presence  *presence.Tracker
	publisher Publisher
	cfg       Config
}

func NewHub(store *canvas.Store, tracker *presence.Tracker, cfg Config) *Hub {
	if cfg.MaxRecordBytes <= 0 {
		cfg.MaxRecordBytes = DefaultMaxRecordBytes
	}
	return &Hub{
		Rooms:      make(map[string]*Room),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *InboundEvent, 64),
		Remote:     make(chan *BridgeMessage, 64),
		store:      store,
		presence:   tracker,
		cfg:        cfg,
	}
}

// SetPublisher wires the cross-instance bridge. Must be called before Run.
func (h *Hub) SetPublisher(p Publisher) {
	h.publisher = p
}

func (h *Hub) Run() {
	var sweep <-chan time.Time
	if h.cfg.RoomIdleTTL > 0 {
		interval := h.cfg.SweepInterval
		if interval <= 0 {
			interval = h.cfg.RoomIdleTTL / 4
		}
		if interval < time.Minute {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-h.Register:
			incConnections()

		case client := <-h.Unregister:
			h.dropClient(client)

		case ev := <-h.Inbound:
			h.dispatch(ev)

		case msg := <-h.Remote:
			h.applyRemote(msg)

		case <-sweep:
			h.sweepIdleRooms()
		}
	}
}

func (h *Hub) dispatch(ev *InboundEvent) {
	// The read pump can still have events queued after the hub dropped this
	// client; its send channel is already closed, so none of them may reach
	// a handler (a send would panic, and a join would resurrect the dead
	// connection inside the room).
	if ev.From.dropped {
		return
	}

	data := ev.Envelope.Data
	switch ev.Envelope.Event {
	case EventJoin:
		var p JoinPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("ws: bad join payload from %s: %v", ev.From.ID, err)
			return
		}
		h.handleJoin(ev.From, p)

	case EventDrawing:
		var p DrawingPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("ws: bad drawing payload from %s: %v", ev.From.ID, err)
			return
		}
		h.handleDrawing(ev.From, p)

	case EventCursorMove:
		var p CursorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("ws: bad cursor payload from %s: %v", ev.From.ID, err)
			return
		}
		h.handleCursor(ev.From, p)

	case EventRequestCursor:
		var p CursorRequestPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("ws: bad cursor request from %s: %v", ev.From.ID, err)
			return
		}
		h.handleRequestCursor(ev.From, p)

	case EventRequestCanvas:
		var p RoomPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("ws: bad canvas request from %s: %v", ev.From.ID, err)
			return
		}
		h.handleRequestCanvas(ev.From, p)

	case EventClearCanvas:
		var p RoomPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("ws: bad clear payload from %s: %v", ev.From.ID, err)
			return
		}
		h.handleClear(ev.From, p)

	default:
		log.Printf("ws: unknown event %q from %s", ev.Envelope.Event, ev.From.ID)
	}
}

func (h *Hub) handleJoin(c *Client, p JoinPayload) {
	if p.RoomID == "" || p.DisplayName == "" {
		log.Printf("ws: join from %s missing room or name", c.ID)
		return
	}
	if c.RoomID != "" {
		// Re-join over the same connection counts as leaving the old room.
		h.leaveRoom(c)
	}

	h.mu.Lock()
	room, ok := h.Rooms[p.RoomID]
	if !ok {
		room = &Room{
			ID:      p.RoomID,
			Clients: make(map[string]*Client),
			byName:  make(map[string]map[string]*Client),
		}
		h.Rooms[p.RoomID] = room
		setRooms(len(h.Rooms))
	}
	h.mu.Unlock()

	// Existing members hear about the newcomer before it can see any
	// traffic of its own.
	joined := newEnvelope(EventParticipantJoined, ParticipantPayload{DisplayName: p.DisplayName})
	h.deliver(room, joined, c)
	h.publish(p.RoomID, joined)

	h.mu.Lock()
	c.RoomID = p.RoomID
	c.Name = p.DisplayName
	room.Clients[c.ID] = c
	byName, ok := room.byName[p.DisplayName]
	if !ok {
		byName = make(map[string]*Client)
		room.byName[p.DisplayName] = byName
	}
	byName[c.ID] = c
	h.mu.Unlock()

	h.store.Ensure(p.RoomID)
	h.presence.Activate(p.RoomID, p.DisplayName)

	// Ask the newcomer for its cursor so peers can place a marker right
	// away. With the by-name index this lands only on matching connections
	// (normally just the newcomer itself).
	h.sendCursorRequest(room, p.DisplayName)

	log.Printf("ws: client %s joined room %s as %q", c.ID, p.RoomID, p.DisplayName)
}

func (h *Hub) handleDrawing(c *Client, p DrawingPayload) {
	roomID := p.RoomID
	if roomID == "" {
		roomID = c.RoomID
	}
	if roomID == "" {
		return
	}
	if len(p.Data) > h.cfg.MaxRecordBytes {
		incDroppedRecords()
		log.Printf("ws: dropping oversized record (%d bytes) from %s", len(p.Data), c.ID)
		return
	}

	h.store.Append(roomID, p.Data)

	env := newEnvelope(EventDrawingBroadcast, DrawingPayload{RoomID: roomID, Data: p.Data})
	h.deliver(h.roomByID(roomID), env, c)
	h.publish(roomID, env)
}

func (h *Hub) handleCursor(c *Client, p CursorPayload) {
	if c.RoomID == "" {
		return
	}
	name := p.DisplayName
	if name == "" {
		name = c.Name
	}

	h.presence.Touch(c.RoomID, name, p.X, p.Y)

	env := newEnvelope(EventCursorBroadcast, CursorPayload{X: p.X, Y: p.Y, DisplayName: name})
	h.deliver(h.roomByID(c.RoomID), env, c)
	h.publish(c.RoomID, env)
}

func (h *Hub) handleRequestCursor(c *Client, p CursorRequestPayload) {
	room := h.roomByID(c.RoomID)
	if room == nil || p.DisplayName == "" {
		return
	}
	h.sendCursorRequest(room, p.DisplayName)
}

// sendCursorRequest delivers a "where are you" query only to connections
// whose session name matches; the matching participant answers with a fresh
// cursorMove.
func (h *Hub) sendCursorRequest(room *Room, name string) {
	targets := room.byName[name]
	if len(targets) == 0 {
		return
	}
	env := newEnvelope(EventRequestCursor, CursorRequestPayload{DisplayName: name})
	for _, target := range targets {
		if !target.trySend(env) {
			h.dropClient(target)
		}
	}
}

func (h *Hub) handleRequestCanvas(c *Client, p RoomPayload) {
	roomID := p.RoomID
	if roomID == "" {
		roomID = c.RoomID
	}

	// Unicast reply to the requester only; unknown rooms read as empty.
	env := newEnvelope(EventCanvasState, CanvasStatePayload{Records: h.store.History(roomID)})
	if !c.trySend(env) {
		h.dropClient(c)
	}
}

func (h *Hub) handleClear(c *Client, p RoomPayload) {
	roomID := p.RoomID
	if roomID == "" {
		roomID = c.RoomID
	}
	if roomID == "" {
		return
	}

	// The stored history goes with the broadcast: late joiners after a
	// clear start from an empty canvas.
	h.store.Clear(roomID)

	env := newEnvelope(EventClearBroadcast, struct{}{})
	h.deliver(h.roomByID(roomID), env, nil)
	h.publish(roomID, env)
}

// applyRemote replays an event relayed from another instance through the
// bridge: delivered to every local subscriber, mirrored into the local store
// so replay stays consistent.
func (h *Hub) applyRemote(msg *BridgeMessage) {
	env := &Envelope{Event: msg.Event, Data: msg.Data}

	switch msg.Event {
	case EventDrawingBroadcast:
		var p DrawingPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			log.Printf("ws: bad bridged drawing payload: %v", err)
			return
		}
		h.store.Append(msg.RoomID, p.Data)

	case EventCursorBroadcast:
		var p CursorPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			log.Printf("ws: bad bridged cursor payload: %v", err)
			return
		}
		h.presence.Touch(msg.RoomID, p.DisplayName, p.X, p.Y)

	case EventClearBroadcast:
		h.store.Clear(msg.RoomID)

	case EventParticipantJoined, EventParticipantLeft:
		// Membership notices relay as-is; presence follows the bridged
		// cursor traffic, not these.

	default:
		return
	}

	h.deliver(h.roomByID(msg.RoomID), env, nil)
}

func (h *Hub) roomByID(roomID string) *Room {
	if roomID == "" {
		return nil
	}
	return h.Rooms[roomID]
}

// deliver fans an event out to every subscriber of the room except exclude.
// Clients with a full send buffer are dropped, same as a disconnect.
func (h *Hub) deliver(room *Room, env *Envelope, exclude *Client) {
	if room == nil {
		return
	}

	var stale []*Client
	delivered := 0
	for _, client := range room.Clients {
		if client == exclude {
			continue
		}
		if client.trySend(env) {
			delivered++
		} else {
			stale = append(stale, client)
		}
	}
	if delivered > 0 {
		addDelivered(delivered)
	}
	for _, client := range stale {
		h.dropClient(client)
	}
}

// leaveRoom detaches the client from its room and tells the remaining
// members. The room's drawing history is never touched here.
func (h *Hub) leaveRoom(c *Client) {
	if c.RoomID == "" {
		return
	}
	roomID, name := c.RoomID, c.Name

	h.mu.Lock()
	room, ok := h.Rooms[roomID]
	if ok {
		delete(room.Clients, c.ID)
		if byName, ok := room.byName[name]; ok {
			delete(byName, c.ID)
			if len(byName) == 0 {
				delete(room.byName, name)
			}
		}
		if len(room.Clients) == 0 {
			delete(h.Rooms, roomID)
			setRooms(len(h.Rooms))
			room = nil
		}
	}
	c.RoomID = ""
	c.Name = ""
	h.mu.Unlock()

	// Presence goes absent only when no other connection shares the name.
	if room == nil || len(room.byName[name]) == 0 {
		h.presence.Remove(roomID, name)
	}

	left := newEnvelope(EventParticipantLeft, ParticipantPayload{DisplayName: name})
	if room != nil {
		h.deliver(room, left, nil)
	}
	h.publish(roomID, left)
}

// dropClient handles both an orderly disconnect and a forced drop of a slow
// consumer. Safe to call more than once for the same client.
func (h *Hub) dropClient(c *Client) {
	if c.dropped {
		return
	}
	c.dropped = true

	h.leaveRoom(c)
	close(c.Send)
	decConnections()
}

// sweepIdleRooms discards stored history for rooms that have no subscribers
// and have been inactive past the TTL. Required so abandoned rooms do not
// grow the process without bound.
func (h *Hub) sweepIdleRooms() {
	cutoff := time.Now().Add(-h.cfg.RoomIdleTTL)
	for _, roomID := range h.store.IdleRooms(cutoff) {
		h.mu.RLock()
		room := h.Rooms[roomID]
		h.mu.RUnlock()
		if room != nil && len(room.Clients) > 0 {
			continue
		}
		h.store.Drop(roomID)
		log.Printf("ws: swept idle room %s", roomID)
	}
}

func (h *Hub) publish(roomID string, env *Envelope) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish(roomID, env.Event, env.Data)
}

// Snapshot lists rooms with participant and record counts for the HTTP
// surface.
func (h *Hub) Snapshot() []RoomRes {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]RoomRes, 0, len(h.Rooms))
	for _, room := range h.Rooms {
		rooms = append(rooms, RoomRes{
			ID:           room.ID,
			Participants: len(room.Clients),
			Records:      h.store.Len(room.ID),
		})
	}
	return rooms
}
