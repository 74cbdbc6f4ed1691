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

	"github.com/islandtrails/experience-booking-backend/pkg/jwt"
)

func newTestRouter(jwtService *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	authed := router.Group("/")
	authed.Use(AuthMiddleware(jwtService))
	{
		authed.GET("/me", func(c *gin.Context) {
			userCtx, _ := GetUserContext(c)
			c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID})
		})
		authed.GET("/host-only", RequireRole(RoleHost), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	}
	return router
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	router := newTestRouter(jwtService)

	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID, "Nimal Perera", []string{RoleTourist})
	require.NoError(t, err)

	t.Run("Valid Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("Missing Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/me", nil)

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
	})

	t.Run("Malformed Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token "+token)

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
	})

	t.Run("Invalid Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("Expired Token", func(t *testing.T) {
		expiredService := jwt.NewService("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
		expired, err := expiredService.GenerateAccessToken(userID, "Nimal Perera", []string{RoleTourist})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+expired)

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	router := newTestRouter(jwtService)

	t.Run("Role Granted", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(uuid.New(), "Nimal Perera", []string{RoleHost})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/host-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Role Denied", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(uuid.New(), "Nimal Perera", []string{RoleTourist})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/host-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUserContextHasRole(t *testing.T) {
	userCtx := UserContext{
		UserID: uuid.New(),
		Name:   "Nimal Perera",
		Roles:  []string{RoleHost, RoleTourist},
	}

	assert.True(t, userCtx.HasRole(RoleHost))
	assert.True(t, userCtx.HasRole(RoleTourist))
	assert.False(t, userCtx.HasRole("admin"))
}
