package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creator-contest/interfaces/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(secret))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.UserIDKey))
	})
	return r
}

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	tok := sign(t, jwt.MapClaims{
		"user_id": "owner-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, secret)

	w := call(t, newRouter(), "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner-1", w.Body.String())
}

func TestAuth_FallsBackToIssuer(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"iss": "owner-2"}, secret)

	w := call(t, newRouter(), "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner-2", w.Body.String())
}

func TestAuth_Rejects(t *testing.T) {
	expired := sign(t, jwt.MapClaims{
		"user_id": "owner-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}, secret)
	wrongKey := sign(t, jwt.MapClaims{"user_id": "owner-1"}, "other-secret")
	noSubject := sign(t, jwt.MapClaims{"user_name": "someone"}, secret)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Token abc"},
		{"empty bearer", "Bearer "},
		{"malformed", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
		{"no subject", "Bearer " + noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(t, newRouter(), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"response_code":"401"`)
		})
	}
}
