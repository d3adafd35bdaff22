package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/huddle/internal/auth"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func newServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stream", middleware.AuthMiddleware(secret), hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID int) *websocket.Conn {
	t.Helper()
	token, err := auth.GenerateToken(userID, secret, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublishReachesEveryConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	srv := newServer(t, hub)

	first := dial(t, srv, 7)
	second := dial(t, srv, 7)
	other := dial(t, srv, 8)
	require.Eventually(t, func() bool {
		return hub.Connections(7) == 2 && hub.Connections(8) == 1
	}, time.Second, 10*time.Millisecond)

	note := models.Notification{ChannelID: 3, DmID: -1, Text: "haydensmith added you to general"}
	hub.Publish(7, note)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var ev Event
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, "notification", ev.Type)
		assert.Equal(t, note, ev.Data)
	}

	// User 8 got nothing.
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	srv := newServer(t, hub)

	conn := dial(t, srv, 1)
	require.Eventually(t, func() bool { return hub.Connections(1) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections(1) == 0 }, time.Second, 10*time.Millisecond)

	// Publishing to nobody is a no-op.
	hub.Publish(1, models.Notification{ChannelID: 1, DmID: -1, Text: "x"})
}

func TestStreamRequiresToken(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
