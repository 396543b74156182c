package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-content/internal/platform/authtoken"
	"github.com/yungbote/neurobridge-content/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

func authRouter(signer *authtoken.Signer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), signer)
	r := gin.New()
	g := r.Group("/", am.RequireAuth())
	g.GET("/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"role": rd.Role})
	})
	g.POST("/admin", am.RequirePrivileged(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequireAuth(t *testing.T) {
	signer := authtoken.NewSigner("s3cret", time.Minute)
	r := authRouter(signer)
	editor, err := signer.Issue(uuid.New(), "editor")
	require.NoError(t, err)
	admin, err := signer.Issue(uuid.New(), "admin")
	require.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"missing token", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/me", "not.a.jwt", http.StatusUnauthorized},
		{"editor reads", http.MethodGet, "/me", editor, http.StatusOK},
		{"editor privileged", http.MethodPost, "/admin", editor, http.StatusForbidden},
		{"admin privileged", http.MethodPost, "/admin", admin, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireAuthDisabledIsAnonymous(t *testing.T) {
	r := authRouter(authtoken.NewSigner("", 0))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
