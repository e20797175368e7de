package app

import (
	"net/http"
	"strings"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Dir       string       // config directory, e.g. $HOME/.sotto
	ServerURL string       // server base URL, e.g. http://127.0.0.1:4000
	HTTP      *http.Client // optional; defaults to http.DefaultClient
}

// WSURL derives the signaling websocket URL from the server base URL.
func (c Config) WSURL() string {
	base := strings.TrimSuffix(c.ServerURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws"
}
