package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/huddle/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(zap.NewNop()))
	r.GET("/whoami", AuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"u_id": GetUserID(c), "request_id": GetRequestID(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()
	token, err := auth.GenerateToken(5, secret, time.Hour)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		query  string
		want   int
	}{
		"bearer header":  {header: "Bearer " + token, want: http.StatusOK},
		"lowercase":      {header: "bearer " + token, want: http.StatusOK},
		"query fallback": {query: "?token=" + token, want: http.StatusOK},
		"missing":        {want: http.StatusUnauthorized},
		"wrong scheme":   {header: "Basic " + token, want: http.StatusUnauthorized},
		"tampered":       {header: "Bearer " + token + "x", want: http.StatusUnauthorized},
		"empty bearer":   {header: "Bearer ", want: http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"u_id":5`)
			}
		})
	}
}

func TestRequestIDEchoedOrGenerated(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestGetUserIDWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetUserID(c))
}
