package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/coachlog/api/internal/cache"
	"github.com/coachlog/api/internal/middleware"
	"github.com/coachlog/api/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TimeSlotHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewTimeSlotHandler(db *gorm.DB, redisCache *cache.RedisCache) *TimeSlotHandler {
	return &TimeSlotHandler{db: db, cache: redisCache}
}

type createTimeSlotRequest struct {
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	DayOfWeek   int       `json:"dayOfWeek"`
	IsRecurring *bool     `json:"isRecurring"`
	IsBooked    *bool     `json:"isBooked"`
	// Accepted but ignored; the coach is always the caller.
	CoachID *int64 `json:"coachId"`
}

type updateTimeSlotRequest struct {
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	DayOfWeek   *int       `json:"dayOfWeek"`
	IsRecurring *bool      `json:"isRecurring"`
	IsBooked    *bool      `json:"isBooked"`
}

// ListAvailable returns unbooked future slots from every coach, earliest
// first. This is the only server-side business filter in the system.
func (h *TimeSlotHandler) ListAvailable(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if b, err := h.cache.Get(ctx, cache.KeyAvailableSlots); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	slots := make([]model.TimeSlot, 0)
	err := h.db.
		Where("is_booked = ? AND start_time >= ?", false, time.Now()).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch time slots"})
		return
	}

	h.cacheList(ctx, slots)
	c.JSON(http.StatusOK, slots)
}

// ListMine returns all of the caller's slots, booked or not, past or future.
func (h *TimeSlotHandler) ListMine(c *gin.Context) {
	coach, ok := middleware.CurrentCoach(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Not authenticated")
		return
	}

	slots := make([]model.TimeSlot, 0)
	err := h.db.
		Where("coach_id = ?", coach.ID).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coach time slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}

func (h *TimeSlotHandler) Create(c *gin.Context) {
	coach, ok := middleware.CurrentCoach(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req createTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	slot := model.TimeSlot{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DayOfWeek:   req.DayOfWeek,
		IsRecurring: true,
		IsBooked:    false,
		CoachID:     coach.ID,
	}
	if req.IsRecurring != nil {
		slot.IsRecurring = *req.IsRecurring
	}
	if req.IsBooked != nil {
		slot.IsBooked = *req.IsBooked
	}

	if err := h.db.Create(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create time slot"})
		return
	}

	h.invalidate(c.Request.Context())
	middleware.RecordMutation("time_slot", "create")
	c.JSON(http.StatusCreated, slot)
}

func (h *TimeSlotHandler) Update(c *gin.Context) {
	coach, ok := middleware.CurrentCoach(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Not authenticated")
		return
	}

	id := parseID(c.Param("id"))

	// Same non-atomic read-then-compare ownership check as sessions.
	var slot model.TimeSlot
	err := h.db.First(&slot, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && slot.CoachID != coach.ID) {
		c.String(http.StatusForbidden, "Not authorized")
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update time slot"})
		return
	}

	var req updateTimeSlotRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.DayOfWeek != nil {
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.IsRecurring != nil {
		slot.IsRecurring = *req.IsRecurring
	}
	if req.IsBooked != nil {
		slot.IsBooked = *req.IsBooked
	}
	slot.UpdatedAt = time.Now()

	if err := h.db.Save(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update time slot"})
		return
	}

	h.invalidate(c.Request.Context())
	middleware.RecordMutation("time_slot", "update")
	c.JSON(http.StatusOK, slot)
}

func (h *TimeSlotHandler) Delete(c *gin.Context) {
	coach, ok := middleware.CurrentCoach(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Not authenticated")
		return
	}

	id := parseID(c.Param("id"))

	var slot model.TimeSlot
	err := h.db.First(&slot, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && slot.CoachID != coach.ID) {
		c.String(http.StatusForbidden, "Not authorized")
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete time slot"})
		return
	}

	if err := h.db.Delete(&model.TimeSlot{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete time slot"})
		return
	}

	h.invalidate(c.Request.Context())
	middleware.RecordMutation("time_slot", "delete")
	c.JSON(http.StatusOK, gin.H{"message": "Time slot deleted successfully"})
}

func (h *TimeSlotHandler) cacheList(ctx context.Context, slots []model.TimeSlot) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, cache.KeyAvailableSlots, b); err != nil {
		log.Printf("Failed to cache time slot list: %v", err)
	}
}

func (h *TimeSlotHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, cache.KeyAvailableSlots); err != nil {
		log.Printf("Failed to invalidate time slot cache: %v", err)
	}
}
