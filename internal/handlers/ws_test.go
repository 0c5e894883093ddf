package handlers_test

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/backend/internal/handlers"
	"github.com/tutorhub/backend/internal/models"
	"github.com/tutorhub/backend/internal/realtime"
	"github.com/tutorhub/backend/internal/store"
)

type wireEvent struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func startWSServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir(), []models.Tutor{
		{ID: 1, Name: "Ivan Ivanov"},
		{ID: 2, Name: "Maria Petrova"},
	})
	require.NoError(t, err)

	hub := realtime.NewHub(st)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", handlers.NewWSHandler(hub).Connect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func sessionToken(t *testing.T, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	require.NoError(t, err)
	return s
}

func TestWebsocketSnapshotAndVote(t *testing.T) {
	srv := startWSServer(t)

	voter := dialWS(t, srv, sessionToken(t, 1))
	watcher := dialWS(t, srv, "")

	for _, conn := range []*websocket.Conn{voter, watcher} {
		ev := readEvent(t, conn)
		assert.Equal(t, "connection_success", ev.Event)
		assert.Equal(t, "connected", ev.Data["status"])

		ev = readEvent(t, conn)
		assert.Equal(t, "reaction_update", ev.Event)
		assert.EqualValues(t, 1, ev.Data["tutor_id"])
		assert.EqualValues(t, 0, ev.Data["likes"])

		ev = readEvent(t, conn)
		assert.EqualValues(t, 2, ev.Data["tutor_id"])
	}

	err := voter.WriteJSON(map[string]any{
		"event": "reaction",
		"data":  map[string]any{"tutor_id": 1, "type": "like"},
	})
	require.NoError(t, err)

	// Both connections, including the requester, see the broadcast.
	for _, conn := range []*websocket.Conn{voter, watcher} {
		ev := readEvent(t, conn)
		assert.Equal(t, "reaction_update", ev.Event)
		assert.EqualValues(t, 1, ev.Data["tutor_id"])
		assert.EqualValues(t, 1, ev.Data["likes"])
		assert.EqualValues(t, 0, ev.Data["dislikes"])
	}
}

func TestWebsocketUnauthenticatedVote(t *testing.T) {
	srv := startWSServer(t)

	anon := dialWS(t, srv, "")
	readEvent(t, anon) // connection_success
	readEvent(t, anon) // tutor 1
	readEvent(t, anon) // tutor 2

	err := anon.WriteJSON(map[string]any{
		"event": "reaction",
		"data":  map[string]any{"tutor_id": 1, "type": "like"},
	})
	require.NoError(t, err)

	ev := readEvent(t, anon)
	assert.Equal(t, "reaction_error", ev.Event)
	assert.NotEmpty(t, ev.Data["message"])
}

func TestWebsocketMalformedPayload(t *testing.T) {
	srv := startWSServer(t)

	conn := dialWS(t, srv, sessionToken(t, 1))
	readEvent(t, conn)
	readEvent(t, conn)
	readEvent(t, conn)

	// Unknown events are ignored; a bad reaction payload gets an error back.
	require.NoError(t, conn.WriteJSON(map[string]any{"event": "ping"}))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "reaction",
		"data":  map[string]any{"tutor_id": "one", "type": 5},
	}))

	ev := readEvent(t, conn)
	assert.Equal(t, "reaction_error", ev.Event)
}
