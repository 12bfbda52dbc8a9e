package nudge

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Session is one live documentation-assistance session for a physician
// working on an encounter.
type Session struct {
	ID          string    `json:"session_id"`
	EncounterID string    `json:"encounter_id"`
	PhysicianID string    `json:"physician_id"`
	StartedAt   time.Time `json:"session_start"`

	conn    *websocket.Conn
	writeMu sync.Mutex
}

// send marshals and writes one message. Writes are serialized because the
// underlying connection allows a single concurrent writer.
func (s *Session) send(message any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(message)
}

// SessionManager tracks live websocket sessions and pushes nudges to them as
// the physician types.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *logrus.Logger
}

// NewSessionManager creates an empty session manager.
func NewSessionManager(logger *logrus.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Connect registers a new session over an accepted websocket connection and
// sends the session-started greeting. It returns the session ID the client
// uses on subsequent messages.
func (m *SessionManager) Connect(conn *websocket.Conn, encounterID, physicianID string) (*Session, error) {
	session := &Session{
		ID:          uuid.NewString(),
		EncounterID: encounterID,
		PhysicianID: physicianID,
		StartedAt:   time.Now().UTC(),
		conn:        conn,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	greeting := map[string]any{
		"type":       "session_started",
		"session_id": session.ID,
		"message":    "Documentation assistance session started.",
	}
	if err := session.send(greeting); err != nil {
		m.Disconnect(session.ID)
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"session_id":   session.ID,
		"encounter_id": encounterID,
		"physician_id": physicianID,
	}).Info("documentation session started")
	return session, nil
}

// Disconnect removes the session and closes its connection.
func (m *SessionManager) Disconnect(sessionID string) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		_ = session.conn.Close()
		m.logger.WithField("session_id", sessionID).Info("documentation session ended")
	}
}

// Push sends an analysis to the session. A failed write tears the session
// down; the client reconnects with a fresh session.
func (m *SessionManager) Push(sessionID string, analysis *Analysis) {
	m.mu.RLock()
	session, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	message := map[string]any{
		"type":                "real_time_nudges",
		"nudges":              analysis.Nudges,
		"documentation_score": analysis.DocumentationScore,
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
	}
	if err := session.send(message); err != nil {
		m.logger.WithField("session_id", sessionID).WithError(err).Warn("session write failed, disconnecting")
		m.Disconnect(sessionID)
	}
}

// ActiveSessions reports the number of live sessions.
func (m *SessionManager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
