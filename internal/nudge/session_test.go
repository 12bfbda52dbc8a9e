package nudge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialSession upgrades a test websocket pair, returning the server-side
// session and the client connection.
func dialSession(t *testing.T, manager *SessionManager) (*Session, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	sessionCh := make(chan *Session, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		session, err := manager.Connect(conn, "ENC-1", "PHY-1")
		require.NoError(t, err)
		sessionCh <- session
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case session := <-sessionCh:
		return session, client
	case <-time.After(5 * time.Second):
		t.Fatal("session was not established")
		return nil, nil
	}
}

func TestSessionManager_ConnectSendsGreeting(t *testing.T) {
	manager := NewSessionManager(testLogger())
	session, client := dialSession(t, manager)

	var greeting map[string]any
	require.NoError(t, client.ReadJSON(&greeting))
	assert.Equal(t, "session_started", greeting["type"])
	assert.Equal(t, session.ID, greeting["session_id"])
	assert.Equal(t, 1, manager.ActiveSessions())
}

func TestSessionManager_PushDeliversNudges(t *testing.T) {
	manager := NewSessionManager(testLogger())
	svc := newTestService()
	session, client := dialSession(t, manager)

	var greeting map[string]any
	require.NoError(t, client.ReadJSON(&greeting))

	manager.Push(session.ID, svc.AnalyzeDraft("Admitted with pneumonia."))

	var msg map[string]any
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, "real_time_nudges", msg["type"])
	assert.NotEmpty(t, msg["nudges"])
	assert.InDelta(t, 1.0-1.0/6.0, msg["documentation_score"].(float64), 1e-9)
}

func TestSessionManager_Disconnect(t *testing.T) {
	manager := NewSessionManager(testLogger())
	session, _ := dialSession(t, manager)

	manager.Disconnect(session.ID)
	assert.Equal(t, 0, manager.ActiveSessions())

	// Pushing to a gone session is a no-op.
	manager.Push(session.ID, &Analysis{})
}
