package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/fleet-dashboard-backend/internal/auth"
	"github.com/lorrc/fleet-dashboard-backend/internal/config"
)

// WebSocketHandler upgrades dashboard connections and hands them to the hub.
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	tm       *auth.TokenManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler. With a nil token
// manager connections are accepted without a token.
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	tm *auth.TokenManager,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:    hub,
		tm:     tm,
		logger: logger.With("handler", "websocket"),
	}

	allowed := cfg.WebSocket.AllowedOrigins
	permissive := cfg.IsDevelopment() && len(allowed) == 0

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || permissive || originAllowed(origin, allowed) {
				return true
			}
			h.logger.WarnContext(r.Context(), "websocket connection rejected due to origin",
				"origin", origin,
				"remote_addr", r.RemoteAddr,
			)
			return false
		},
	}

	return h
}

// originAllowed matches an Origin header against the configured patterns.
// A pattern containing "://" is compared with scheme and host, otherwise
// with the host alone. "*" matches within a host, and "*.example.com" also
// admits example.com itself.
func originAllowed(origin string, patterns []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	for _, pattern := range patterns {
		target := u.Host
		if strings.Contains(pattern, "://") {
			target = u.Scheme + "://" + u.Host
		}
		if ok, _ := path.Match(pattern, target); ok {
			return true
		}
		if strings.HasPrefix(pattern, "*.") && target == pattern[2:] {
			return true
		}
	}
	return false
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upgrade websocket connection", "error", err)
		return
	}

	client := wsAdapter.NewClient(h.hub, conn, subject, h.logger)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}

	h.logger.InfoContext(ctx, "websocket connection established",
		"client_id", client.ID,
		"remote_addr", r.RemoteAddr,
	)

	go client.WritePump()
	go client.ReadPump()
}

// authenticate validates the token query parameter when auth is enabled.
// Browsers cannot set headers on websocket upgrades.
func (h *WebSocketHandler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.tm == nil {
		return "", true
	}

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.WarnContext(r.Context(), "websocket connection rejected: missing token", "remote_addr", r.RemoteAddr)
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Missing authentication token", Code: "UNAUTHORIZED"})
		return "", false
	}

	claims, err := h.tm.ValidateToken(tokenString)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket connection rejected: invalid token",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token", Code: "UNAUTHORIZED"})
		return "", false
	}

	return claims.Subject, true
}
