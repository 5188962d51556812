package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/teamflow/pkg/logger"
)

// ProjectRoom возвращает имя комнаты проекта
func ProjectRoom(projectID string) string {
	return fmt.Sprintf("project-%s", projectID)
}

// UserRoom возвращает имя личной комнаты пользователя
func UserRoom(userID string) string {
	return fmt.Sprintf("user-%s", userID)
}

// Connection представляет активное подключение клиента
type Connection struct {
	ID       string
	UserID   string
	Rooms    map[string]bool
	LastSeen time.Time
}

// Hub ведет реестр активных подключений и их комнат.
// Реестр процессно-локальный; доставка между экземплярами идет
// через Redis-каналы, поэтому хаб хранит только членство.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	ttl         time.Duration
	logger      logger.Logger
}

// NewHub создает новый экземпляр Hub
func NewHub(ttl time.Duration, logger logger.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		ttl:         ttl,
		logger:      logger,
	}
}

// Register регистрирует подключение пользователя и сразу включает его
// в личную комнату user-{id}
func (h *Hub) Register(connID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[connID] = &Connection{
		ID:     connID,
		UserID: userID,
		Rooms: map[string]bool{
			UserRoom(userID): true,
		},
		LastSeen: time.Now(),
	}

	h.logger.Debug("Connection registered", map[string]interface{}{
		"conn_id": connID,
		"user_id": userID,
	})
}

// JoinRoom включает подключение в комнату
func (h *Hub) JoinRoom(connID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.connections[connID]
	if !ok {
		return false
	}
	conn.Rooms[room] = true
	conn.LastSeen = time.Now()
	return true
}

// LeaveRoom исключает подключение из комнаты
func (h *Hub) LeaveRoom(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[connID]; ok {
		delete(conn.Rooms, room)
	}
}

// Disconnect удаляет подключение из реестра.
// Возвращает ID пользователя, если подключение было последним у него:
// вызывающий рассылает user-offline.
func (h *Hub) Disconnect(connID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.connections[connID]
	if !ok {
		return "", false
	}
	delete(h.connections, connID)

	for _, other := range h.connections {
		if other.UserID == conn.UserID {
			return conn.UserID, false
		}
	}
	return conn.UserID, true
}

// Touch обновляет время активности подключения
func (h *Hub) Touch(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[connID]; ok {
		conn.LastSeen = time.Now()
	}
}

// RoomConnections возвращает ID подключений в комнате
func (h *Hub) RoomConnections(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := []string{}
	for id, conn := range h.connections {
		if conn.Rooms[room] {
			ids = append(ids, id)
		}
	}
	return ids
}

// OnlineUsers возвращает ID пользователей с активными подключениями
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := map[string]bool{}
	users := []string{}
	for _, conn := range h.connections {
		if !seen[conn.UserID] {
			seen[conn.UserID] = true
			users = append(users, conn.UserID)
		}
	}
	return users
}

// Len возвращает количество активных подключений
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Sweep удаляет подключения, простаивающие дольше TTL.
// Возвращает количество удаленных подключений.
func (h *Hub) Sweep(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for id, conn := range h.connections {
		if now.Sub(conn.LastSeen) > h.ttl {
			delete(h.connections, id)
			removed++
		}
	}
	if removed > 0 {
		h.logger.Info("Swept idle connections", map[string]interface{}{
			"removed":   removed,
			"remaining": len(h.connections),
		})
	}
	return removed
}

// StartSweepTask запускает периодическую очистку простаивающих подключений
func (h *Hub) StartSweepTask(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				h.Sweep(time.Now())
			case <-stop:
				return
			}
		}
	}()
}
