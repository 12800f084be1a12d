package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/coachlog/api/internal/cache"
	"github.com/coachlog/api/internal/middleware"
	"github.com/coachlog/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SessionHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewSessionHandler(db *gorm.DB, redisCache *cache.RedisCache) *SessionHandler {
	return &SessionHandler{db: db, cache: redisCache}
}

type createSessionRequest struct {
	SessionNumber int        `json:"sessionNumber"`
	SessionDate   model.Date `json:"sessionDate"`
	Attendance    string     `json:"attendance"`
	Topics        string     `json:"topics"`
	Homework      string     `json:"homework"`
	GameAnalysis  string     `json:"gameAnalysis"`
	TimeSlotID    *int64     `json:"timeSlotId"`
	// Accepted but ignored; the coach is always the caller.
	CoachID *int64 `json:"coachId"`
}

// optionalInt64 distinguishes the three update cases for a nullable column:
// field absent (leave alone), explicit null (clear), and a value (set).
type optionalInt64 struct {
	set   bool
	value *int64
}

func (o *optionalInt64) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = nil
		return nil
	}
	return json.Unmarshal(b, &o.value)
}

// updateSessionRequest is an explicit partial update: only fields present in
// the payload are applied. Identity, coach and timestamps are not settable.
type updateSessionRequest struct {
	SessionNumber *int          `json:"sessionNumber"`
	SessionDate   *model.Date   `json:"sessionDate"`
	Attendance    *string       `json:"attendance"`
	Topics        *string       `json:"topics"`
	Homework      *string       `json:"homework"`
	GameAnalysis  *string       `json:"gameAnalysis"`
	TimeSlotID    optionalInt64 `json:"timeSlotId"`
}

// parseID returns 0 for malformed ids. Id 0 matches no row, so downstream
// ownership checks answer Not authorized rather than a format error.
func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// List returns every session from every coach, newest session date first.
func (h *SessionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if b, err := h.cache.Get(ctx, cache.KeySessions); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	sessions := make([]model.Session, 0)
	if err := h.db.Order("session_date DESC").Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	h.cacheList(ctx, sessions)
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) Create(c *gin.Context) {
	coach, ok := middleware.CurrentCoach(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session := model.Session{
		SessionNumber: req.SessionNumber,
		SessionDate:   req.SessionDate,
		Attendance:    req.Attendance,
		Topics:        req.Topics,
		Homework:      req.Homework,
		GameAnalysis:  req.GameAnalysis,
		TimeSlotID:    req.TimeSlotID,
		CoachID:       coach.ID,
	}

	if err := h.db.Create(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	h.invalidate(c.Request.Context())
	middleware.RecordMutation("session", "create")
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) Update(c *gin.Context) {
	coach, ok := middleware.CurrentCoach(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Not authenticated")
		return
	}

	id := parseID(c.Param("id"))

	// Ownership is a read-then-compare two-step; it is not atomic with the
	// write below, so a concurrent update or delete can interleave.
	var session model.Session
	err := h.db.First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && session.CoachID != coach.ID) {
		c.String(http.StatusForbidden, "Not authorized")
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}

	var req updateSessionRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.SessionNumber != nil {
		session.SessionNumber = *req.SessionNumber
	}
	if req.SessionDate != nil {
		session.SessionDate = *req.SessionDate
	}
	if req.Attendance != nil {
		session.Attendance = *req.Attendance
	}
	if req.Topics != nil {
		session.Topics = *req.Topics
	}
	if req.Homework != nil {
		session.Homework = *req.Homework
	}
	if req.GameAnalysis != nil {
		session.GameAnalysis = *req.GameAnalysis
	}
	// An explicit null unlinks the slot; an absent field keeps the link.
	if req.TimeSlotID.set {
		session.TimeSlotID = req.TimeSlotID.value
	}
	session.UpdatedAt = time.Now()

	if err := h.db.Save(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}

	h.invalidate(c.Request.Context())
	middleware.RecordMutation("session", "update")
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	coach, ok := middleware.CurrentCoach(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Not authenticated")
		return
	}

	id := parseID(c.Param("id"))

	var session model.Session
	err := h.db.First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && session.CoachID != coach.ID) {
		c.String(http.StatusForbidden, "Not authorized")
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	if err := h.db.Delete(&model.Session{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	h.invalidate(c.Request.Context())
	middleware.RecordMutation("session", "delete")
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *SessionHandler) cacheList(ctx context.Context, sessions []model.Session) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, cache.KeySessions, b); err != nil {
		log.Printf("Failed to cache session list: %v", err)
	}
}

func (h *SessionHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, cache.KeySessions); err != nil {
		log.Printf("Failed to invalidate session list cache: %v", err)
	}
}
