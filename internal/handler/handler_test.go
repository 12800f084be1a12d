package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/coachlog/api/internal/auth"
	"github.com/coachlog/api/internal/handler"
	"github.com/coachlog/api/internal/middleware"
	"github.com/coachlog/api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// newTestDB opens an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.TimeSlot{},
		&model.Session{},
		&model.RefreshToken{},
	))

	return db
}

// newTestRouter mirrors the route table in cmd/server, without Redis.
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authHandler := handler.NewAuthHandler(db, testSecret)
	sessionHandler := handler.NewSessionHandler(db, nil)
	timeSlotHandler := handler.NewTimeSlotHandler(db, nil)

	requireAuth := middleware.RequireAuth(testSecret)

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/refresh", authHandler.Refresh)
		api.POST("/logout", authHandler.Logout)
		api.GET("/user", requireAuth, authHandler.Me)

		api.GET("/sessions", sessionHandler.List)
		api.POST("/sessions", requireAuth, sessionHandler.Create)
		api.PUT("/sessions/:id", requireAuth, sessionHandler.Update)
		api.DELETE("/sessions/:id", requireAuth, sessionHandler.Delete)

		api.GET("/time-slots", timeSlotHandler.ListAvailable)
		api.GET("/time-slots/coach", requireAuth, timeSlotHandler.ListMine)
		api.POST("/time-slots", requireAuth, timeSlotHandler.Create)
		api.PUT("/time-slots/:id", requireAuth, timeSlotHandler.Update)
		api.DELETE("/time-slots/:id", requireAuth, timeSlotHandler.Delete)
	}

	return r
}

// createCoach inserts a coach and returns it with a valid access token.
func createCoach(t *testing.T, db *gorm.DB, username string) (model.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("chess123"), bcrypt.MinCost)
	require.NoError(t, err)

	coach := model.User{Username: username, Password: string(hashed)}
	require.NoError(t, db.Create(&coach).Error)

	token, err := auth.GenerateAccessToken(&coach, testSecret)
	require.NoError(t, err)

	return coach, token
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
