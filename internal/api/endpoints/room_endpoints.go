package endpoints

import (
	"draw-app-backend/internal/dto"
	"draw-app-backend/internal/livekit"
	"draw-app-backend/internal/ws"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RoomEndpoints covers the conferencing pass-through surface (room
// provisioning, access tokens) and the relay's own room listing and
// websocket entry point.
type RoomEndpoints interface {
	CreateRoom(http.ResponseWriter, *http.Request) error
	Token(http.ResponseWriter, *http.Request) error
	Rooms(http.ResponseWriter, *http.Request) error
	Websocket(http.ResponseWriter, *http.Request) error
}

type roomEndpoints struct {
	issuer  *livekit.Client
	handler *ws.Handler
}

func NewRoomEndpoints(issuer *livekit.Client, handler *ws.Handler) RoomEndpoints {
	return &roomEndpoints{
		issuer:  issuer,
		handler: handler,
	}
}

func (h *roomEndpoints) CreateRoom(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCreateRoom,
	})
}

func (h *roomEndpoints) Token(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleToken,
	})
}

func (h *roomEndpoints) Rooms(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListRooms,
	})
}

func (h *roomEndpoints) handleCreateRoom(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body.",
			ErrorLog:   fmt.Errorf("create room: decode body: %w", err),
		}
	}
	if strings.TrimSpace(req.RoomName) == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing roomName",
			ErrorLog:   fmt.Errorf("create room: empty room name"),
		}
	}

	room, err := h.issuer.CreateRoom(r.Context(), req.RoomName)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Room creation failed",
			ErrorLog:   err,
		}
	}

	return WriteJSON(w, http.StatusOK, dto.CreateRoomResponse{RoomID: room.Name})
}

func (h *roomEndpoints) handleToken(w http.ResponseWriter, r *http.Request) error {
	var req dto.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request body.",
			ErrorLog:   fmt.Errorf("get token: decode body: %w", err),
		}
	}
	if strings.TrimSpace(req.RoomName) == "" || strings.TrimSpace(req.Username) == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing roomName or username",
			ErrorLog:   fmt.Errorf("get token: empty room name or username"),
		}
	}

	token, err := h.issuer.AccessToken(req.RoomName, req.Username)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Failed to generate token",
			ErrorLog:   err,
		}
	}

	return WriteJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

func (h *roomEndpoints) handleListRooms(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, h.handler.Rooms())
}

// Websocket hands the connection to the relay; errors past the upgrade are
// handled on the socket itself.
func (h *roomEndpoints) Websocket(w http.ResponseWriter, r *http.Request) error {
	h.handler.ServeWS(w, r)
	return nil
}
