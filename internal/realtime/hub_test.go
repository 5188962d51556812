package realtime

import (
	"testing"
	"time"

	"github.com/yourusername/teamflow/pkg/logger"
)

func newTestHub() *Hub {
	return NewHub(time.Minute, logger.NewLogger("disabled", true))
}

func TestHubRegister(t *testing.T) {
	hub := newTestHub()
	hub.Register("c1", "u1")

	if hub.Len() != 1 {
		t.Errorf("Len() = %d, want 1", hub.Len())
	}

	// Регистрация сразу включает в личную комнату
	conns := hub.RoomConnections(UserRoom("u1"))
	if len(conns) != 1 || conns[0] != "c1" {
		t.Errorf("RoomConnections(user room) = %v, want [c1]", conns)
	}
}

func TestHubJoinLeaveRoom(t *testing.T) {
	hub := newTestHub()
	hub.Register("c1", "u1")

	if !hub.JoinRoom("c1", ProjectRoom("p1")) {
		t.Fatal("JoinRoom() = false, want true")
	}
	if hub.JoinRoom("ghost", ProjectRoom("p1")) {
		t.Error("JoinRoom(unknown conn) = true, want false")
	}

	conns := hub.RoomConnections(ProjectRoom("p1"))
	if len(conns) != 1 {
		t.Fatalf("RoomConnections() = %v, want one connection", conns)
	}

	hub.LeaveRoom("c1", ProjectRoom("p1"))
	if len(hub.RoomConnections(ProjectRoom("p1"))) != 0 {
		t.Error("connection still in room after LeaveRoom")
	}
}

func TestHubDisconnect(t *testing.T) {
	hub := newTestHub()
	hub.Register("c1", "u1")
	hub.Register("c2", "u1")

	userID, last := hub.Disconnect("c1")
	if userID != "u1" || last {
		t.Errorf("Disconnect(c1) = (%q, %v), want (u1, false)", userID, last)
	}

	userID, last = hub.Disconnect("c2")
	if userID != "u1" || !last {
		t.Errorf("Disconnect(c2) = (%q, %v), want (u1, true)", userID, last)
	}

	if _, ok := hub.Disconnect("ghost"); ok {
		t.Error("Disconnect(unknown) = true, want false")
	}
}

func TestHubOnlineUsers(t *testing.T) {
	hub := newTestHub()
	hub.Register("c1", "u1")
	hub.Register("c2", "u1")
	hub.Register("c3", "u2")

	users := hub.OnlineUsers()
	if len(users) != 2 {
		t.Errorf("OnlineUsers() = %v, want two users", users)
	}
}

func TestHubSweep(t *testing.T) {
	hub := newTestHub()
	hub.Register("c1", "u1")
	hub.Register("c2", "u2")
	hub.Touch("c2")

	// Подключение c1 давно простаивает
	hub.mu.Lock()
	hub.connections["c1"].LastSeen = time.Now().Add(-2 * time.Minute)
	hub.mu.Unlock()

	removed := hub.Sweep(time.Now())
	if removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if hub.Len() != 1 {
		t.Errorf("Len() = %d, want 1", hub.Len())
	}
}

func TestRoomNames(t *testing.T) {
	if got := ProjectRoom("p1"); got != "project-p1" {
		t.Errorf("ProjectRoom() = %q, want %q", got, "project-p1")
	}
	if got := UserRoom("u1"); got != "user-u1" {
		t.Errorf("UserRoom() = %q, want %q", got, "user-u1")
	}
}
