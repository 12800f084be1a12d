package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/coachlog/api/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionUsesCallerAsCoach(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	coachA, tokenA := createCoach(t, db, "coach-a")
	coachB, _ := createCoach(t, db, "coach-b")

	// A coachId in the payload must be ignored in favor of the caller.
	w := doJSON(t, r, http.MethodPost, "/api/sessions", tokenA, map[string]interface{}{
		"sessionNumber": 3,
		"sessionDate":   "2024-05-10",
		"attendance":    "Alice, Ben",
		"topics":        "Forks and pins",
		"homework":      "Puzzle set 4",
		"gameAnalysis":  "Reviewed two blitz games",
		"coachId":       coachB.ID,
	})
	mustStatus(t, w, http.StatusCreated)

	created := decode[model.Session](t, w)
	require.NotZero(t, created.ID)
	require.Equal(t, coachA.ID, created.CoachID)
	require.Equal(t, 3, created.SessionNumber)
	require.Equal(t, model.Date("2024-05-10"), created.SessionDate)

	var stored model.Session
	require.NoError(t, db.First(&stored, created.ID).Error)
	require.Equal(t, coachA.ID, stored.CoachID)
}

func TestCreateSessionRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/sessions", "", map[string]interface{}{
		"sessionNumber": 1,
		"sessionDate":   "2024-05-10",
	})
	mustStatus(t, w, http.StatusUnauthorized)
	require.Equal(t, "Not authenticated", w.Body.String())
}

func TestListSessionsPublicSortedByDateDesc(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	coachA, _ := createCoach(t, db, "coach-a")
	coachB, _ := createCoach(t, db, "coach-b")

	// Insertion order deliberately out of date order, across both coaches.
	for _, s := range []model.Session{
		{SessionNumber: 1, SessionDate: "2024-03-01", CoachID: coachA.ID},
		{SessionNumber: 2, SessionDate: "2024-06-15", CoachID: coachB.ID},
		{SessionNumber: 3, SessionDate: "2024-01-20", CoachID: coachA.ID},
	} {
		require.NoError(t, db.Create(&s).Error)
	}

	// No token: the session log is public.
	w := doJSON(t, r, http.MethodGet, "/api/sessions", "", nil)
	mustStatus(t, w, http.StatusOK)

	sessions := decode[[]model.Session](t, w)
	require.Len(t, sessions, 3)
	require.Equal(t, model.Date("2024-06-15"), sessions[0].SessionDate)
	require.Equal(t, model.Date("2024-03-01"), sessions[1].SessionDate)
	require.Equal(t, model.Date("2024-01-20"), sessions[2].SessionDate)
}

func TestListSessionsEmpty(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodGet, "/api/sessions", "", nil)
	mustStatus(t, w, http.StatusOK)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestUpdateSessionPartialPreservesOtherFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, tokenA := createCoach(t, db, "coach-a")

	w := doJSON(t, r, http.MethodPost, "/api/sessions", tokenA, map[string]interface{}{
		"sessionNumber": 1,
		"sessionDate":   "2024-05-10",
		"attendance":    "Alice, Ben, Chloe",
		"topics":        "Opening principles",
		"homework":      "20 puzzles",
		"gameAnalysis":  "Sicilian review",
	})
	mustStatus(t, w, http.StatusCreated)
	created := decode[model.Session](t, w)

	time.Sleep(10 * time.Millisecond)

	w = doJSON(t, r, http.MethodPut, "/api/sessions/1", tokenA, map[string]interface{}{
		"topics": "Rook endgames",
	})
	mustStatus(t, w, http.StatusOK)
	updated := decode[model.Session](t, w)

	require.Equal(t, "Rook endgames", updated.Topics)
	require.Equal(t, created.Attendance, updated.Attendance)
	require.Equal(t, created.Homework, updated.Homework)
	require.Equal(t, created.GameAnalysis, updated.GameAnalysis)
	require.Equal(t, created.SessionNumber, updated.SessionNumber)
	require.Equal(t, created.SessionDate, updated.SessionDate)
	require.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateSessionTimeSlotLinkTriState(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	coachA, tokenA := createCoach(t, db, "coach-a")

	start := time.Now().Add(24 * time.Hour)
	slot := model.TimeSlot{StartTime: start, EndTime: start.Add(time.Hour), DayOfWeek: 1, CoachID: coachA.ID}
	require.NoError(t, db.Create(&slot).Error)

	session := model.Session{
		SessionNumber: 1,
		SessionDate:   "2024-05-10",
		CoachID:       coachA.ID,
		TimeSlotID:    &slot.ID,
	}
	require.NoError(t, db.Create(&session).Error)

	// An update that doesn't mention timeSlotId keeps the link.
	w := doJSON(t, r, http.MethodPut, "/api/sessions/1", tokenA, map[string]interface{}{
		"topics": "Rook endgames",
	})
	mustStatus(t, w, http.StatusOK)
	updated := decode[model.Session](t, w)
	require.NotNil(t, updated.TimeSlotID)
	require.Equal(t, slot.ID, *updated.TimeSlotID)

	// An explicit null unlinks the slot.
	w = doJSON(t, r, http.MethodPut, "/api/sessions/1", tokenA, map[string]interface{}{
		"timeSlotId": nil,
	})
	mustStatus(t, w, http.StatusOK)
	updated = decode[model.Session](t, w)
	require.Nil(t, updated.TimeSlotID)

	var stored model.Session
	require.NoError(t, db.First(&stored, session.ID).Error)
	require.Nil(t, stored.TimeSlotID)

	// And a value relinks it.
	w = doJSON(t, r, http.MethodPut, "/api/sessions/1", tokenA, map[string]interface{}{
		"timeSlotId": slot.ID,
	})
	mustStatus(t, w, http.StatusOK)
	updated = decode[model.Session](t, w)
	require.NotNil(t, updated.TimeSlotID)
	require.Equal(t, slot.ID, *updated.TimeSlotID)
}

func TestUpdateSessionRejectsUnknownFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	coachA, tokenA := createCoach(t, db, "coach-a")

	session := model.Session{SessionNumber: 1, SessionDate: "2024-05-10", CoachID: coachA.ID}
	require.NoError(t, db.Create(&session).Error)

	w := doJSON(t, r, http.MethodPut, "/api/sessions/1", tokenA, map[string]interface{}{
		"topics":  "Rook endgames",
		"bogus":   "field",
		"coachId": 99,
	})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestUpdateSessionOtherCoachForbidden(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	coachA, _ := createCoach(t, db, "coach-a")
	_, tokenB := createCoach(t, db, "coach-b")

	session := model.Session{
		SessionNumber: 1,
		SessionDate:   "2024-05-10",
		Topics:        "Opening principles",
		CoachID:       coachA.ID,
	}
	require.NoError(t, db.Create(&session).Error)

	w := doJSON(t, r, http.MethodPut, "/api/sessions/1", tokenB, map[string]interface{}{
		"topics": "Hijacked",
	})
	mustStatus(t, w, http.StatusForbidden)
	require.Equal(t, "Not authorized", w.Body.String())

	var stored model.Session
	require.NoError(t, db.First(&stored, session.ID).Error)
	require.Equal(t, "Opening principles", stored.Topics)
}

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	coachA, tokenA := createCoach(t, db, "coach-a")

	session := model.Session{SessionNumber: 1, SessionDate: "2024-05-10", CoachID: coachA.ID}
	require.NoError(t, db.Create(&session).Error)

	w := doJSON(t, r, http.MethodDelete, "/api/sessions/1", tokenA, nil)
	mustStatus(t, w, http.StatusOK)
	require.JSONEq(t, `{"message": "Session deleted successfully"}`, w.Body.String())

	var count int64
	db.Model(&model.Session{}).Count(&count)
	require.Zero(t, count)

	// Deleting again is deterministic: the id no longer matches a row.
	w = doJSON(t, r, http.MethodDelete, "/api/sessions/1", tokenA, nil)
	mustStatus(t, w, http.StatusForbidden)
	require.Equal(t, "Not authorized", w.Body.String())
}

func TestSessionMalformedIDMasksAsForbidden(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	_, tokenA := createCoach(t, db, "coach-a")

	w := doJSON(t, r, http.MethodPut, "/api/sessions/not-a-number", tokenA, map[string]interface{}{
		"topics": "anything",
	})
	mustStatus(t, w, http.StatusForbidden)
	require.Equal(t, "Not authorized", w.Body.String())

	w = doJSON(t, r, http.MethodDelete, "/api/sessions/not-a-number", tokenA, nil)
	mustStatus(t, w, http.StatusForbidden)
}
