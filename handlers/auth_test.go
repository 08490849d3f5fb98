package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const userQuery = `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`

var userCols = []string{"id", "username", "password_hash", "role", "created_at"}

func expectUser(t *testing.T, mock sqlmock.Sqlmock, username, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(userQuery)).
		WithArgs(username).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(uuid.NewString(), username, string(hash), role, time.Now()))
}

func authRouter() *gin.Engine {
	router := gin.New()
	router.POST("/api/admin/login", AdminLogin)
	return router
}

func TestAdminLogin(t *testing.T) {
	mock := setup(t)
	expectUser(t, mock, "admin", "correct horse", "admin")

	w := doJSON(authRouter(), http.MethodPost, "/api/admin/login", gin.H{
		"username": "admin",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	mock := setup(t)
	expectUser(t, mock, "admin", "correct horse", "admin")

	w := doJSON(authRouter(), http.MethodPost, "/api/admin/login", gin.H{
		"username": "admin",
		"password": "battery staple",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLoginUnknownUser(t *testing.T) {
	mock := setup(t)
	mock.ExpectQuery(regexp.QuoteMeta(userQuery)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	w := doJSON(authRouter(), http.MethodPost, "/api/admin/login", gin.H{
		"username": "ghost",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLoginNonAdminRole(t *testing.T) {
	mock := setup(t)
	expectUser(t, mock, "viewer", "correct horse", "viewer")

	w := doJSON(authRouter(), http.MethodPost, "/api/admin/login", gin.H{
		"username": "viewer",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminLoginMissingFields(t *testing.T) {
	setup(t)

	w := doJSON(authRouter(), http.MethodPost, "/api/admin/login", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	setup(t)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := generateJWT(uuid.NewString(), "admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin")
	})
}
