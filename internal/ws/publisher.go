package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
)

// Publisher mirrors room events to the other relay instances. A nil publisher
// keeps the relay single-instance.
type Publisher interface {
	Publish(roomID, event string, data json.RawMessage)
}

// BridgeMessage is the frame exchanged between instances over the redis
// channel. Origin lets an instance ignore its own publications.
type BridgeMessage struct {
	Origin string          `json:"origin"`
	RoomID string          `json:"roomId"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
}

const bridgeChannelPrefix = "relay:room:"

func bridgeChannel(roomID string) string {
	return bridgeChannelPrefix + roomID
}

type redisPublisher struct {
	client *redis.Client
	origin string
}

func (p *redisPublisher) Publish(roomID, event string, data json.RawMessage) {
	msg := BridgeMessage{
		Origin: p.origin,
		RoomID: roomID,
		Event:  event,
		Data:   data,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal bridge message: %v", err)
		return
	}

	if err := p.client.Publish(context.Background(), bridgeChannel(roomID), payload).Err(); err != nil {
		log.Printf("ws: publish to bridge channel %s: %v", bridgeChannel(roomID), err)
	}
}
