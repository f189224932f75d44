package websocket

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/models"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/repository"
)

const writeWait = 10 * time.Second

type projectReader interface {
	GetByID(ctx context.Context, id int64) (*models.Project, error)
}

// subscribeFunc delivers every payload published for projectID until ctx is
// cancelled.
type subscribeFunc func(ctx context.Context, projectID int64, deliver func([]byte))

// Hub fans a project's message events out to the browsers watching it. One
// pub/sub subscription is held per project while at least one client is
// connected.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64][]*websocket.Conn
	cancelFuncs map[int64]context.CancelFunc

	redisClient *redis.Client
	projects    projectReader
	upgrader    websocket.Upgrader
	subscribe   subscribeFunc
	logger      zerolog.Logger
}

func NewHub(redisClient *redis.Client, projects projectReader, frontendURL string, logger zerolog.Logger) *Hub {
	h := &Hub{
		connections: make(map[int64][]*websocket.Conn),
		cancelFuncs: make(map[int64]context.CancelFunc),
		redisClient: redisClient,
		projects:    projects,
		logger:      logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == frontendURL
		},
	}
	h.subscribe = h.subscribeToPubSub
	return h
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.redisClient == nil {
		http.Error(w, "Live updates are not enabled", http.StatusServiceUnavailable)
		return
	}

	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || projectID <= 0 {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Project not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Int64("project_id", projectID).Msg("failed to load project for websocket")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.registerConnection(projectID, conn)

	// Clients never send anything; reading only detects the disconnect.
	go func() {
		defer h.unregisterConnection(projectID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Connections reports how many clients watch projectID.
func (h *Hub) Connections(projectID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[projectID])
}

func (h *Hub) registerConnection(projectID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[projectID] = append(h.connections[projectID], conn)

	if len(h.connections[projectID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[projectID] = cancel
		go h.subscribe(ctx, projectID, func(data []byte) { h.broadcast(projectID, data) })
	}

	h.logger.Debug().Int64("project_id", projectID).Int("total", len(h.connections[projectID])).Msg("websocket connected")
}

func (h *Hub) unregisterConnection(projectID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[projectID]
	for i, c := range conns {
		if c == conn {
			h.connections[projectID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[projectID]) == 0 {
		delete(h.connections, projectID)
		if cancel, ok := h.cancelFuncs[projectID]; ok {
			cancel()
			delete(h.cancelFuncs, projectID)
		}
	}

	h.logger.Debug().Int64("project_id", projectID).Msg("websocket disconnected")
}

func (h *Hub) subscribeToPubSub(ctx context.Context, projectID int64, deliver func([]byte)) {
	pubsub := h.redisClient.Subscribe(ctx, models.ProjectChannel(projectID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			deliver([]byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(projectID int64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[projectID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug().Err(err).Int64("project_id", projectID).Msg("websocket write failed")
		}
	}
}

// Close drops every client and stops all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conns := range h.connections {
		for _, conn := range conns {
			conn.Close()
		}
		delete(h.connections, id)
	}
	for id, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, id)
	}
}
