package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := &JWTClaims{
		UserID:   "user-1",
		Username: "tester",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	r.GET("/protected", handlers...)
	return r
}

func request(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	r := protectedRouter()

	rec := request(r, "Bearer "+signToken(t, "cashier", time.Hour))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(r, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(r, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(r, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(r, "Bearer "+signToken(t, "cashier", -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "expired token")
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	r := protectedRouter()

	claims := &JWTClaims{UserID: "user-1", Role: "admin"}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rec := request(r, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter("admin", "manager")

	rec := request(r, "Bearer "+signToken(t, "manager", time.Hour))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(r, "Bearer "+signToken(t, "cashier", time.Hour))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
