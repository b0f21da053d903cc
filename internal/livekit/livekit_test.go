package livekit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
)

func parseClaims(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token is not valid")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	return claims
}

func TestAccessTokenGrants(t *testing.T) {
	client := New("http://livekit.local", "api-key", "api-secret")

	token, err := client.AccessToken("demo", "alice")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}

	claims := parseClaims(t, token, "api-secret")
	if claims["iss"] != "api-key" {
		t.Fatalf("unexpected issuer: %v", claims["iss"])
	}
	if claims["sub"] != "alice" {
		t.Fatalf("unexpected subject: %v", claims["sub"])
	}

	video, ok := claims["video"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing video grant: %v", claims)
	}
	if video["room"] != "demo" {
		t.Fatalf("unexpected room in grant: %v", video["room"])
	}
	for _, grant := range []string{"roomJoin", "canPublish", "canSubscribe"} {
		if video[grant] != true {
			t.Fatalf("expected %s grant, got %v", grant, video[grant])
		}
	}
}

func TestAccessTokenValidation(t *testing.T) {
	client := New("http://livekit.local", "api-key", "api-secret")

	if _, err := client.AccessToken("", "alice"); err == nil {
		t.Fatal("expected error for empty room")
	}
	if _, err := client.AccessToken("demo", ""); err == nil {
		t.Fatal("expected error for empty identity")
	}
}

func TestCreateRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != createRoomPath {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Fatal("expected bearer token")
		}

		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["name"] != "demo" {
			t.Fatalf("unexpected room name: %s", req["name"])
		}

		json.NewEncoder(w).Encode(RoomInfo{Sid: "RM_123", Name: "demo"})
	}))
	defer srv.Close()

	client := New(srv.URL, "api-key", "api-secret")
	room, err := client.CreateRoom(context.Background(), "demo")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Name != "demo" || room.Sid != "RM_123" {
		t.Fatalf("unexpected room info: %+v", room)
	}
}

func TestCreateRoomDownstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "twirp error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "api-key", "api-secret")
	if _, err := client.CreateRoom(context.Background(), "demo"); err == nil {
		t.Fatal("expected downstream failure to surface")
	}
}
