package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/economy_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough"

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		operatorID, ok := middleware.GetOperatorIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		_, hasLogger := middleware.LoggerFromCtx(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"operator": operatorID, "logger": hasLogger})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{Subject: "op-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}
	expired := jwt.RegisteredClaims{Subject: "op-1", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))}
	noSubject := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + signToken(t, valid, testSecret), wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, expired, testSecret), wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, valid, "another-secret"), wantStatus: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + signToken(t, noSubject, testSecret), wantStatus: http.StatusUnauthorized},
	}

	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"operator":"op-1","logger":true}`, w.Body.String())
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	_, err := middleware.NewMemoryLimiter("not-a-rate")
	assert.Error(t, err)

	lim, err := middleware.NewMemoryLimiter("2-H")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RateLimit(lim))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
