package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/clock"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/lalith-99/huddle/internal/repository/memory"
	"github.com/lalith-99/huddle/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	clock  *clock.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fake := clock.Fake(time.Unix(1_800_000_000, 0))
	engine := workspace.New(memory.NewSnapshotStore(), zap.NewNop(),
		workspace.WithClock(fake),
		workspace.WithPasswordCost(bcrypt.MinCost),
	)
	t.Cleanup(engine.Close)
	router := NewRouter(engine, RouterConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, zap.NewNop())
	return &testServer{t: t, router: router, clock: fake}
}

// do sends a request and decodes a JSON response into out when non-nil.
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func (s *testServer) register(first, last string) (string, int) {
	s.t.Helper()
	var resp authResponse
	code := s.do(http.MethodPost, "/v1/auth/register", "", gin.H{
		"email":      fmt.Sprintf("%s.%s@example.com", first, last),
		"password":   "password123",
		"name_first": first,
		"name_last":  last,
	}, &resp)
	require.Equal(s.t, http.StatusCreated, code)
	return resp.Token, resp.UserID
}

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/health", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/v1/users", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/v1/users", "garbage", nil, nil))

	_, uid := s.register("Hayden", "Smith")

	var login authResponse
	code := s.do(http.MethodPost, "/v1/auth/login", "", gin.H{
		"email": "Hayden.Smith@example.com", "password": "password123",
	}, &login)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uid, login.UserID)

	var me struct {
		User workspace.Profile `json:"user"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/users/me", login.Token, nil, &me))
	assert.Equal(t, "haydensmith", me.User.HandleStr)

	code = s.do(http.MethodPost, "/v1/auth/login", "", gin.H{
		"email": "Hayden.Smith@example.com", "password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = s.do(http.MethodPost, "/v1/auth/register", "", gin.H{
		"email": "Hayden.Smith@example.com", "password": "password123", "name_first": "H", "name_last": "S",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestChannelMessagingFlow(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.register("Hayden", "Smith")
	member, memberID := s.register("Jake", "Renzella")
	outsider, _ := s.register("Nick", "Patrizi")

	var created createChannelResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/v1/channels", owner, gin.H{"name": "general"}, &created))
	chPath := fmt.Sprintf("/v1/channels/%d", created.ChannelID)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodPost, chPath+"/join", member, nil, nil))
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, chPath+"/join", member, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/v1/channels/999/join", member, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/v1/channels/abc/join", member, nil, nil))

	var sent messageIDResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, chPath+"/messages", owner, gin.H{"message": "hi @jakerenzella"}, &sent))
	assert.Equal(t, 1, sent.MessageID)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, chPath+"/messages", owner, gin.H{"message": ""}, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, chPath+"/messages", outsider, gin.H{"message": "let me in"}, nil))

	var page workspace.Page
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, chPath+"/messages?start=0", member, nil, &page))
	require.Len(t, page.Messages, 1)
	assert.Equal(t, -1, page.End)
	assert.Equal(t, "hi @jakerenzella", page.Messages[0].Message)

	var feed struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/v1/notifications", member, nil, &feed))
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, "haydensmith tagged you in general: hi @jakerenzella", feed.Notifications[0].Text)

	msgPath := fmt.Sprintf("/v1/messages/%d", sent.MessageID)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodPost, msgPath+"/react", member, gin.H{"react_id": 1}, nil))
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, msgPath+"/react", member, gin.H{"react_id": 1}, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, msgPath, member, gin.H{"message": "hijack"}, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, msgPath, outsider, nil, nil))

	var located workspace.Located
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, msgPath, member, nil, &located))
	assert.Equal(t, models.ChannelRef(created.ChannelID), located.Container)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, msgPath, owner, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, msgPath, member, nil, nil))

	// The owner removes the member; the member's token stops working for
	// any action.
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", memberID), owner, nil, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/v1/channels", member, nil, nil))
}

func TestDmAndStandupRoutes(t *testing.T) {
	s := newTestServer(t)
	a, _ := s.register("Hayden", "Smith")
	b, bID := s.register("Jake", "Renzella")

	var dm struct {
		DmID int `json:"dm_id"`
	}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/v1/dms", a, gin.H{"u_ids": []int{bID}}, &dm))
	var details workspace.DmDetails
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/v1/dms/%d", dm.DmID), b, nil, &details))
	assert.Equal(t, "haydensmith, jakerenzella", details.Name)

	var created createChannelResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/v1/channels", a, gin.H{"name": "standup", "is_public": true}, &created))
	chPath := fmt.Sprintf("/v1/channels/%d", created.ChannelID)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, chPath+"/standup", a, gin.H{}, nil))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, chPath+"/standup", a, gin.H{"length": 5}, nil))
	require.Equal(t, http.StatusNoContent, s.do(http.MethodPost, chPath+"/standup/messages", a, gin.H{"message": "done"}, nil))

	var status workspace.StandupStatus
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, chPath+"/standup", a, nil, &status))
	assert.True(t, status.IsActive)

	s.clock.Advance(5 * time.Second)

	var page workspace.Page
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, chPath+"/messages", a, nil, &page))
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "haydensmith: done\n", page.Messages[0].Message)
}
