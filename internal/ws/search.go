package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/models"
	"go.uber.org/zap"
)

// WebSocket message types for the search protocol.
const (
	MsgTypeSearch         = "search"          // Client asks for a search
	MsgTypeSearchStarted  = "search_started"  // Search accepted, carries its generation
	MsgTypeSearchResult   = "search_result"   // Result of the latest search
	MsgTypeHistoryUpdated = "history_updated" // New search history, sent to every client
	MsgTypeError          = "error"           // Error message
	MsgTypeConnected      = "connected"       // Connection confirmed
)

const (
	maxQueryRunes = 100
	searchTimeout = 2 * time.Minute
)

// WSMessage is the envelope for all messages sent over the search WebSocket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SearchRequestPayload is sent by the client to start a search. AI defaults
// to true when omitted.
type SearchRequestPayload struct {
	Query string `json:"query"`
	AI    *bool  `json:"ai,omitempty"`
}

// SearchStartedPayload acknowledges a search.
type SearchStartedPayload struct {
	Generation uint64 `json:"generation"`
	Query      string `json:"query"`
}

// SearchResultPayload carries the result of the search numbered Generation.
type SearchResultPayload struct {
	Generation uint64              `json:"generation"`
	Result     models.SearchResult `json:"result"`
}

// HistoryPayload carries the current search history.
type HistoryPayload struct {
	History []string `json:"history"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ConnectedPayload confirms a successful connection.
type ConnectedPayload struct {
	ClientID    string   `json:"client_id"`
	AIAvailable bool     `json:"ai_available"`
	History     []string `json:"history"`
}

// Searcher runs searches for the session.
type Searcher interface {
	Search(ctx context.Context, rawQuery string, aiMode bool) models.SearchResult
	AIAvailable() bool
}

// HistoryReader exposes the current history for the connected message.
type HistoryReader interface {
	Terms() []string
}

// SearchLimiter budgets searches per client IP.
type SearchLimiter interface {
	Allow(ip string) bool
}

// SearchHandler manages WebSocket search sessions. Each connection numbers
// its searches; when a newer search has been issued, the result of an older
// one is discarded instead of delivered.
type SearchHandler struct {
	Hub      *Hub
	Searcher Searcher
	History  HistoryReader
	// Limiter, when set, is consulted once per search message.
	Limiter  SearchLimiter
	upgrader websocket.Upgrader
}

// NewSearchHandler returns a new SearchHandler. allowedOrigins lists the
// browser origins that may connect; localhost is always allowed.
func NewSearchHandler(hub *Hub, searcher Searcher, history HistoryReader, allowedOrigins []string) *SearchHandler {
	return &SearchHandler{
		Hub:      hub,
		Searcher: searcher,
		History:  history,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		// Allow localhost for development
		return strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost"
	}
}

// HandleSearchSession upgrades an HTTP request to a WebSocket search session.
func (sh *SearchHandler) HandleSearchSession(c *gin.Context) {
	log := logger.Get()

	conn, err := sh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(sh.Hub, conn, uuid.New().String())
	client.IP = c.ClientIP()
	sh.Hub.Register <- client

	sh.send(client, MsgTypeConnected, ConnectedPayload{
		ClientID:    client.ID,
		AIAvailable: sh.Searcher.AIAvailable(),
		History:     sh.History.Terms(),
	})

	log.Info("search session started", zap.String("client_id", client.ID))

	go client.WritePump()
	go client.ReadPump(sh.handleMessage)
}

// handleMessage parses an incoming WebSocket message and routes it to the
// appropriate handler.
func (sh *SearchHandler) handleMessage(client *Client, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		sh.sendError(client, "invalid message format")
		return
	}

	logger.Get().Debug("received ws message",
		zap.String("type", msg.Type),
		zap.String("client_id", client.ID),
	)

	switch msg.Type {
	case MsgTypeSearch:
		sh.handleSearch(client, msg.Payload)
	default:
		sh.sendError(client, "unknown message type: "+msg.Type)
	}
}

// handleSearch starts a search in the background and returns immediately.
func (sh *SearchHandler) handleSearch(client *Client, payload json.RawMessage) {
	var req SearchRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		sh.sendError(client, "invalid search payload")
		return
	}
	if !govalidator.RuneLength(req.Query, "0", strconv.Itoa(maxQueryRunes)) {
		sh.sendError(client, "query must be at most "+strconv.Itoa(maxQueryRunes)+" characters")
		return
	}

	if sh.Limiter != nil && !sh.Limiter.Allow(client.IP) {
		sh.sendError(client, "too many searches, try again shortly")
		return
	}

	aiMode := true
	if req.AI != nil {
		aiMode = *req.AI
	}

	generation := client.generation.Add(1)
	sh.send(client, MsgTypeSearchStarted, SearchStartedPayload{
		Generation: generation,
		Query:      req.Query,
	})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		result := sh.Searcher.Search(ctx, req.Query, aiMode)

		if latest := client.generation.Load(); latest != generation {
			logger.Get().Debug("discarding superseded search result",
				zap.String("client_id", client.ID),
				zap.Uint64("generation", generation),
				zap.Uint64("latest", latest),
			)
			return
		}

		sh.send(client, MsgTypeSearchResult, SearchResultPayload{
			Generation: generation,
			Result:     result,
		})
	}()
}

func (sh *SearchHandler) send(client *Client, msgType string, payload interface{}) {
	message, err := encodeMessage(msgType, payload)
	if err != nil {
		logger.Get().Error("failed to encode ws message", zap.String("type", msgType), zap.Error(err))
		return
	}
	if !client.Enqueue(message) {
		logger.Get().Warn("ws message dropped",
			zap.String("type", msgType),
			zap.String("client_id", client.ID),
		)
	}
}

// sendError sends an error message to a single client.
func (sh *SearchHandler) sendError(client *Client, message string) {
	sh.send(client, MsgTypeError, ErrorPayload{Message: message})
}
