package livekit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const createRoomPath = "/twirp/livekit.RoomService/CreateRoom"

// Client talks to the external conferencing collaborator. It covers the two
// calls this server needs: provisioning a named room and minting access
// tokens. Calls are best-effort with no retry; a failed provisioning leaves
// no partial state behind.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	tokenTTL   time.Duration
	httpClient *http.Client
}

type RoomInfo struct {
	Sid  string `json:"sid"`
	Name string `json:"name"`
}

func New(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		tokenTTL:  DefaultTokenTTL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateRoom provisions a named room on the collaborator. Room names are
// idempotent on the collaborator side; calling this for an existing room
// returns the same room.
func (c *Client) CreateRoom(ctx context.Context, name string) (*RoomInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("livekit: room name required")
	}

	token, err := c.adminToken()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("livekit: marshal create room request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createRoomPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("livekit: build create room request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("livekit: create room: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("livekit: create room: status %d: %s", res.StatusCode, strings.TrimSpace(string(detail)))
	}

	var room RoomInfo
	if err := json.NewDecoder(res.Body).Decode(&room); err != nil {
		return nil, fmt.Errorf("livekit: decode create room response: %w", err)
	}
	return &room, nil
}
