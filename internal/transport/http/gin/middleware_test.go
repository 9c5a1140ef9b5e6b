package httpgin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mkadlec/theater-api/internal/domain"
	"github.com/stretchr/testify/require"
)

type verifierStub struct {
	sessions map[string]domain.Session
}

func (v *verifierStub) Lookup(_ context.Context, token string) (domain.Session, bool, error) {
	sess, ok := v.sessions[token]
	return sess, ok, nil
}

func newAuthRouter(verifier TokenVerifier, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Authenticate(verifier))

	handlers := append(guards, func(c *gin.Context) {
		sess, ok := currentSession(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": sess.Username})
	})
	r.GET("/probe", handlers...)

	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAnonymous(t *testing.T) {
	r := newAuthRouter(&verifierStub{sessions: map[string]domain.Session{}})

	w := doGet(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "anonymous")
}

func TestAuthenticateValidToken(t *testing.T) {
	r := newAuthRouter(&verifierStub{sessions: map[string]domain.Session{
		"tok123": {UserID: 1, Username: "alice"},
	}})

	w := doGet(r, "tok123")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice")
}

func TestAuthenticateInvalidToken(t *testing.T) {
	r := newAuthRouter(&verifierStub{sessions: map[string]domain.Session{}})

	w := doGet(r, "bogus")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	r := newAuthRouter(&verifierStub{sessions: map[string]domain.Session{}})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter(&verifierStub{sessions: map[string]domain.Session{
		"tok123": {UserID: 1, Username: "alice"},
	}}, RequireAuth())

	require.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	require.Equal(t, http.StatusOK, doGet(r, "tok123").Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newAuthRouter(&verifierStub{sessions: map[string]domain.Session{
		"user":  {UserID: 1, Username: "alice"},
		"admin": {UserID: 2, Username: "root", IsAdmin: true},
	}}, RequireAdmin())

	require.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	require.Equal(t, http.StatusForbidden, doGet(r, "user").Code)
	require.Equal(t, http.StatusOK, doGet(r, "admin").Code)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Token abc"))
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "", bearerToken("Basic abc"))
	require.Equal(t, "", bearerToken(""))
}
