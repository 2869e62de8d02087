package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/config"
	"github.com/MEKXH/achievebot/internal/version"
	"github.com/google/uuid"
)

// Channel is the channel name gateway requests carry through the engine.
const Channel = "gateway"

// CommandProcessor runs one addressed command and returns its routed reply.
type CommandProcessor interface {
	Handle(ctx context.Context, msg *bus.InboundMessage) *bus.OutboundMessage
}

// Server exposes the command engine over HTTP. Callers are already
// addressed, so the bot-name prefix is not required.
type Server struct {
	cfg        config.GatewayConfig
	processor  CommandProcessor
	httpServer *http.Server
}

func New(cfg config.GatewayConfig, processor CommandProcessor) *Server {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Port
	if port <= 0 {
		port = config.DefaultGatewayPort
	}

	cfg.Host = host
	cfg.Port = port
	return &Server{
		cfg:       cfg,
		processor: processor,
	}
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

func (s *Server) Start() error {
	mux := NewHandler(s.cfg.Token, s.processor)
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("gateway listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func NewHandler(token string, processor CommandProcessor) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r)
		if r.Method != http.MethodGet {
			writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"request_id": requestID,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r)
		if r.Method != http.MethodGet {
			writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"version":    version.Version,
			"commit":     version.Commit,
			"request_id": requestID,
		})
	})
	mux.HandleFunc("/command", func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r)
		if r.Method != http.MethodPost {
			writeError(w, requestID, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		if strings.TrimSpace(token) != "" && !isAuthorized(r, token) {
			writeError(w, requestID, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}

		var req struct {
			Sender  string `json:"sender"`
			Chat    string `json:"chat"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, requestID, http.StatusBadRequest, "bad_request", "invalid json request")
			return
		}
		sender := strings.TrimSpace(req.Sender)
		if sender == "" {
			writeError(w, requestID, http.StatusBadRequest, "bad_request", "sender is required")
			return
		}
		if processor == nil {
			writeError(w, requestID, http.StatusInternalServerError, "internal_error", "command processor is not configured")
			return
		}

		chat := strings.TrimSpace(req.Chat)
		out := processor.Handle(r.Context(), &bus.InboundMessage{
			Channel:   Channel,
			SenderID:  sender,
			ChatID:    chat,
			Private:   chat == "",
			Content:   req.Message,
			Timestamp: time.Now(),
			RequestID: requestID,
		})
		if out == nil {
			slog.Error("gateway command produced no reply", "request_id", requestID, "sender", sender)
			writeError(w, requestID, http.StatusInternalServerError, "internal_error", "failed to process command")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"mode":        out.Mode,
			"destination": out.ChatID,
			"content":     out.Content,
			"request_id":  requestID,
		})
	})
	return mux
}

func isAuthorized(r *http.Request, expected string) bool {
	got := strings.TrimSpace(r.Header.Get("Authorization"))
	if got == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(got, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(got, prefix))
	return token == expected
}

func getRequestID(r *http.Request) string {
	rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
	if rid != "" {
		return rid
	}
	return uuid.NewString()
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":       code,
		"message":    message,
		"request_id": requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
