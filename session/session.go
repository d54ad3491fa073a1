package session

import (
	"sync"
	"time"

	"github.com/sakura-arcade/gameserver/logger"
	"github.com/sakura-arcade/gameserver/network"
)

const outboundQueueSize = 256

type outPacket struct {
	msgID uint16
	data  []byte
}

// Session is one live connection. Its ID doubles as the player id inside a
// room: player identity is connection-derived and opaque.
//
// Outbound messages go through a buffered queue drained by a dedicated
// writer goroutine, so Send never blocks the caller and per-connection
// ordering is preserved. When the queue is full the message is dropped;
// a stalled peer only ever loses its own updates.
type Session struct {
	ID         string
	Conn       network.Connection
	RoomID     string
	CreatedAt  time.Time
	LastActive time.Time

	out       chan outPacket
	closed    chan struct{}
	closeOnce sync.Once
	mutex     sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	s := &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
		out:        make(chan outPacket, outboundQueueSize),
		closed:     make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

func (s *Session) writeLoop() {
	for {
		select {
		case p := <-s.out:
			if err := s.Conn.Send(p.msgID, p.data); err != nil {
				logger.Log.Debugf("Session %s write failed: %v", s.ID, err)
			}
		case <-s.closed:
			return
		}
	}
}

// Send enqueues a message for delivery. It never blocks.
func (s *Session) Send(msgID uint16, data []byte) error {
	select {
	case s.out <- outPacket{msgID: msgID, data: data}:
	case <-s.closed:
	default:
		logger.Log.Warnf("Session %s outbound queue full, dropping message %d", s.ID, msgID)
	}
	return nil
}

func (s *Session) GetID() string {
	return s.ID
}

// Touch records activity; used by the heartbeat handler.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.LastActive = time.Now()
}

// SetRoom records which room this connection currently belongs to.
func (s *Session) SetRoom(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomID = roomID
}

// Room returns the id of the room this connection belongs to, or "".
func (s *Session) Room() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomID
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return s.Conn.Close()
}

// Manager tracks all live sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
