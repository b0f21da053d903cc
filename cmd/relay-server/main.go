package main

import (
	"log"
	"strconv"
	"time"

	"draw-app-backend/internal/api"
	"draw-app-backend/internal/api/router"
	"draw-app-backend/internal/canvas"
	"draw-app-backend/internal/env"
	"draw-app-backend/internal/livekit"
	"draw-app-backend/internal/presence"
	"draw-app-backend/internal/queue"
	"draw-app-backend/internal/ws"
)

func intEnv(key string, defaultVal int) int {
	raw := env.Get(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return val
}

func durationEnv(key string, defaultVal time.Duration) time.Duration {
	raw := env.Get(key)
	if raw == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return val
}

func main() {
	env.Require(env.LiveKitURL, env.LiveKitAPIKey, env.LiveKitAPISecret)

	store := canvas.NewStore(intEnv(env.RoomMaxRecords, canvas.DefaultMaxRecordsPerRoom))
	tracker := presence.NewTracker()

	hub := ws.NewHub(store, tracker, ws.Config{
		MaxRecordBytes: intEnv(env.MaxRecordBytes, ws.DefaultMaxRecordBytes),
		RoomIdleTTL:    durationEnv(env.RoomIdleTTL, time.Hour),
	})
	handler := ws.NewHandler(hub)
	go hub.Run()
	handler.RunBridge()

	issuer := livekit.New(
		env.MustGet(env.LiveKitURL),
		env.MustGet(env.LiveKitAPIKey),
		env.MustGet(env.LiveKitAPISecret),
	)

	queueManager := queue.NewRequestQueueManager(10, 10)

	server := api.NewAPIServer(
		env.GetOrDefault(env.ListenAddr, ":3001"),
		queueManager,
		issuer,
		handler,
		router.UtilsRoutes(""),
		router.RelayRoutes(""),
	)

	server.Run()
}
