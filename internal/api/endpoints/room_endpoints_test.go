package endpoints

import (
	"bytes"
	"draw-app-backend/internal/api"
	"draw-app-backend/internal/canvas"
	"draw-app-backend/internal/dto"
	"draw-app-backend/internal/livekit"
	"draw-app-backend/internal/presence"
	"draw-app-backend/internal/queue"
	"draw-app-backend/internal/ws"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func setupRelayHandler(t *testing.T, issuer *livekit.Client) (http.Handler, func()) {
	t.Helper()

	hub := ws.NewHub(canvas.NewStore(0), presence.NewTracker(), ws.Config{})
	wsHandler := ws.NewHandler(hub)

	queueManager := queue.NewRequestQueueManager(10, 1)
	server := api.NewAPIServer(":0", queueManager, issuer, wsHandler)

	roomEndpoints := NewRoomEndpoints(issuer, wsHandler)
	mux := http.NewServeMux()
	mux.HandleFunc("/create-room", server.MakeHTTPHandleFunc(roomEndpoints.CreateRoom))
	mux.HandleFunc("/get-token", server.MakeHTTPHandleFunc(roomEndpoints.Token))
	mux.HandleFunc("/rooms", server.MakeHTTPHandleFunc(roomEndpoints.Rooms))

	return mux, func() {
		queueManager.Shutdown()
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestCreateRoom(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(livekit.RoomInfo{Sid: "RM_1", Name: "demo"})
	}))
	defer upstream.Close()

	handler, cleanup := setupRelayHandler(t, livekit.New(upstream.URL, "key", "secret"))
	t.Cleanup(cleanup)

	res := postJSON(t, handler, "/create-room", dto.CreateRoomRequest{RoomName: "demo"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var resp dto.CreateRoomResponse
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RoomID != "demo" {
		t.Fatalf("unexpected room id: %s", resp.RoomID)
	}
}

func TestCreateRoomMissingName(t *testing.T) {
	handler, cleanup := setupRelayHandler(t, livekit.New("http://livekit.invalid", "key", "secret"))
	t.Cleanup(cleanup)

	res := postJSON(t, handler, "/create-room", dto.CreateRoomRequest{})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
}

func TestCreateRoomDownstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "provisioning failed", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	handler, cleanup := setupRelayHandler(t, livekit.New(upstream.URL, "key", "secret"))
	t.Cleanup(cleanup)

	res := postJSON(t, handler, "/create-room", dto.CreateRoomRequest{RoomName: "demo"})
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", res.Code, res.Body.String())
	}
}

func TestGetToken(t *testing.T) {
	handler, cleanup := setupRelayHandler(t, livekit.New("http://livekit.invalid", "key", "secret"))
	t.Cleanup(cleanup)

	res := postJSON(t, handler, "/get-token", dto.TokenRequest{RoomName: "demo", Username: "alice"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var resp dto.TokenResponse
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}
}

func TestGetTokenMissingFields(t *testing.T) {
	handler, cleanup := setupRelayHandler(t, livekit.New("http://livekit.invalid", "key", "secret"))
	t.Cleanup(cleanup)

	for _, req := range []dto.TokenRequest{
		{},
		{RoomName: "demo"},
		{Username: "alice"},
	} {
		res := postJSON(t, handler, "/get-token", req)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %+v, got %d", req, res.Code)
		}
	}
}

func TestRoomsMethodNotAllowed(t *testing.T) {
	handler, cleanup := setupRelayHandler(t, livekit.New("http://livekit.invalid", "key", "secret"))
	t.Cleanup(cleanup)

	res := postJSON(t, handler, "/rooms", struct{}{})
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestRoomsListing(t *testing.T) {
	handler, cleanup := setupRelayHandler(t, livekit.New("http://livekit.invalid", "key", "secret"))
	t.Cleanup(cleanup)

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var rooms []ws.RoomRes
	if err := json.Unmarshal(res.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rooms) != 0 {
		t.Fatalf("expected no rooms yet, got %v", rooms)
	}
}
