package env

import (
	"os"
)

const (
	LiveKitURL       = "LIVEKIT_URL"
	LiveKitAPIKey    = "LIVEKIT_API_KEY"
	LiveKitAPISecret = "LIVEKIT_API_SECRET"
	RelayRedisURL    = "RELAY_REDIS_URL"
	RelayRedisPass   = "RELAY_REDIS_PASS"
	ListenAddr       = "RELAY_LISTEN_ADDR"
	RoomMaxRecords   = "RELAY_ROOM_MAX_RECORDS"
	RoomIdleTTL      = "RELAY_ROOM_IDLE_TTL"
	MaxRecordBytes   = "RELAY_MAX_RECORD_BYTES"
	WebUrl           = "WEB_URL"
)

// Require panics when any of the given variables is unset. The check lives
// here instead of package init so tests can import packages reading env
// without a populated environment.
func Require(keys ...string) {
	for _, key := range keys {
		if os.Getenv(key) == "" {
			panic("env: required environment variable not set: " + key)
		}
	}
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
