package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/teamflow/internal/access"
	"github.com/yourusername/teamflow/internal/realtime"
	"github.com/yourusername/teamflow/pkg/auth"
	"github.com/yourusername/teamflow/pkg/cache"
	"github.com/yourusername/teamflow/pkg/logger"
)

const heartbeatInterval = 30 * time.Second

// RealtimeHandler отдает поток событий через Server-Sent Events.
// Клиент подключается к потоку и получает события своих комнат:
// личной user-{id} и комнат project-{id} запрошенных проектов.
type RealtimeHandler struct {
	BaseHandler
	hub      *realtime.Hub
	broker   *realtime.Broker
	redis    *cache.Redis
	resolver *access.Resolver
	prefix   string
}

// NewRealtimeHandler создает новый экземпляр RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub, broker *realtime.Broker, redis *cache.Redis,
	resolver *access.Resolver, channelPrefix string, jwtManager *auth.JWTManager, logger logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		BaseHandler: NewBaseHandler(logger, jwtManager),
		hub:         hub,
		broker:      broker,
		redis:       redis,
		resolver:    resolver,
		prefix:      channelPrefix,
	}
}

// Stream открывает SSE-поток событий для текущего пользователя
func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.RespondWithError(w, r, http.StatusInternalServerError, "Streaming not supported", "internal_error")
		return
	}

	connID := uuid.New().String()
	h.hub.Register(connID, actor.ID)
	defer func() {
		userID, last := h.hub.Disconnect(connID)
		if last {
			_ = h.broker.PublishPresence(r.Context(), userID, false)
		}
	}()

	scope, err := h.resolver.ResolveScope(r.Context(), actor.ID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	// Подключаем только те комнаты проектов, которые входят
	// в область доступа пользователя
	if projectsParam := r.URL.Query().Get("projects"); projectsParam != "" {
		for _, projectID := range strings.Split(projectsParam, ",") {
			projectID = strings.TrimSpace(projectID)
			if projectID == "" {
				continue
			}
			if scope.All || scope.Contains(projectID) {
				h.hub.JoinRoom(connID, realtime.ProjectRoom(projectID))
			}
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	_ = h.broker.PublishPresence(r.Context(), actor.ID, true)

	pubsub := h.redis.Subscribe(r.Context(), h.prefix+"*")
	defer pubsub.Close()

	messages := pubsub.Channel()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
			h.hub.Touch(connID)

		case redisMsg, open := <-messages:
			if !open {
				return
			}

			var msg realtime.Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				h.Logger.Warn("Failed to parse realtime message", map[string]interface{}{
					"channel": redisMsg.Channel,
					"error":   err.Error(),
				})
				continue
			}

			if !h.inRoom(connID, msg.Room) {
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, redisMsg.Payload)
			flusher.Flush()
			h.hub.Touch(connID)
		}
	}
}

// Typing транслирует событие набора текста в комнату проекта.
// События набора нигде не сохраняются.
func (h *RealtimeHandler) Typing(w http.ResponseWriter, r *http.Request) {
	actor, err := h.GetUserFromContext(r)
	if err != nil {
		h.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", "unauthorized")
		return
	}

	var req struct {
		ProjectID string `json:"project_id" validate:"required,uuid"`
		TaskID    string `json:"task_id" validate:"required,uuid"`
		IsTyping  bool   `json:"is_typing"`
	}
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	scope, err := h.resolver.ResolveScope(r.Context(), actor.ID)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if !scope.All && !scope.Contains(req.ProjectID) {
		h.RespondWithError(w, r, http.StatusForbidden, "Insufficient permissions", "forbidden")
		return
	}

	payload := realtime.TypingPayload{
		TaskID:   req.TaskID,
		UserID:   actor.ID,
		IsTyping: req.IsTyping,
	}
	if err := h.broker.PublishTyping(r.Context(), realtime.ProjectRoom(req.ProjectID), payload); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.Respond(w, r, http.StatusAccepted, nil)
}

// Online возвращает пользователей с активными подключениями
// к этому экземпляру
func (h *RealtimeHandler) Online(w http.ResponseWriter, r *http.Request) {
	h.RespondWithSuccess(w, r, map[string]interface{}{
		"users": h.hub.OnlineUsers(),
	})
}

func (h *RealtimeHandler) inRoom(connID, room string) bool {
	for _, id := range h.hub.RoomConnections(room) {
		if id == connID {
			return true
		}
	}
	return false
}
