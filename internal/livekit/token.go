package livekit

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const DefaultTokenTTL = 6 * time.Hour

// VideoGrant mirrors the conferencing service's grant claim. Participant
// tokens carry the full join/publish/subscribe set; admin tokens used for
// room provisioning carry roomCreate/roomList instead.
type VideoGrant struct {
	Room         string `json:"room,omitempty"`
	RoomJoin     bool   `json:"roomJoin,omitempty"`
	RoomCreate   bool   `json:"roomCreate,omitempty"`
	RoomList     bool   `json:"roomList,omitempty"`
	CanPublish   bool   `json:"canPublish,omitempty"`
	CanSubscribe bool   `json:"canSubscribe,omitempty"`
}

// AccessToken mints a signed credential letting identity join the given
// conferencing room and publish/subscribe media. The token is pass-through:
// this server never validates it, only the collaborator does.
func (c *Client) AccessToken(room, identity string) (string, error) {
	if room == "" {
		return "", fmt.Errorf("livekit: room name required")
	}
	if identity == "" {
		return "", fmt.Errorf("livekit: identity required")
	}

	grant := VideoGrant{
		Room:         room,
		RoomJoin:     true,
		CanPublish:   true,
		CanSubscribe: true,
	}
	return c.signGrant(identity, grant)
}

func (c *Client) adminToken() (string, error) {
	return c.signGrant("relay-server", VideoGrant{RoomCreate: true, RoomList: true})
}

func (c *Client) signGrant(identity string, grant VideoGrant) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.apiKey,
		"sub":   identity,
		"jti":   identity,
		"nbf":   now.Unix(),
		"exp":   now.Add(c.tokenTTL).Unix(),
		"video": grant,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.apiSecret))
	if err != nil {
		return "", fmt.Errorf("livekit: sign token: %w", err)
	}
	return signed, nil
}
