package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the client needs before a session starts.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	ServerURL  string // websocket endpoint
	PlayerName string // default name for the prompts
	DebugAddr  string // local debug HTTP listen address; empty disables it
}

const (
	defaultServerURL = "ws://localhost:8080/ws"
	defaultDebugAddr = ""
)

// Load reads the optional .env file and resolves the configuration. A
// missing .env is fine; the environment alone is enough.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServerURL:  getenv("TRESSETTE_SERVER_URL", defaultServerURL),
		PlayerName: getenv("TRESSETTE_PLAYER_NAME", ""),
		DebugAddr:  getenv("TRESSETTE_DEBUG_ADDR", defaultDebugAddr),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
