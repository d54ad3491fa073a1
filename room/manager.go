package room

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/session"
	"github.com/sakura-arcade/gameserver/timer"
)

// Manager is the process-wide room registry. It only guards the id→room
// map; each room serializes its own mutations independently, so actions
// against different rooms proceed in parallel.
type Manager struct {
	rooms    map[string]*Room
	mutex    sync.RWMutex
	sender   Sender
	timers   *timer.Manager
	archiver Archiver
	defaults Settings
}

func NewManager(sender Sender, timers *timer.Manager, archiver Archiver, defaults Settings) *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		sender:   sender,
		timers:   timers,
		archiver: archiver,
		defaults: defaults,
	}
}

// newRoomID returns a short opaque lowercase id.
func newRoomID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// CreateRoom registers a new room with the creating connection as admin.
func (m *Manager) CreateRoom(creator *session.Session, name string) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := newRoomID()
	for m.rooms[id] != nil {
		id = newRoomID()
	}
	r := NewRoom(id, creator, name, m.defaults, m.sender, m.timers, m.archiver)
	m.rooms[id] = r
	return r
}

// GetRoom looks a room up; ids match case-insensitively.
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	r, exists := m.rooms[strings.ToLower(id)]
	return r, exists
}

// RemoveRoom unregisters and closes a room.
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if r, exists := m.rooms[strings.ToLower(id)]; exists {
		r.Close()
		delete(m.rooms, strings.ToLower(id))
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// HandleDisconnect marks the session's player disconnected in its room and
// removes the room once its last connected player is gone.
func (m *Manager) HandleDisconnect(sess *session.Session) {
	roomID := sess.Room()
	if roomID == "" {
		return
	}
	r, exists := m.GetRoom(roomID)
	if !exists {
		return
	}
	if r.Disconnect(sess.GetID()) {
		logger.Log.Infof("Room %s empty, removing", r.ID)
		m.RemoveRoom(r.ID)
	}
}
