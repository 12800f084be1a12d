package model

import (
	"time"
)

// Session is one logged class meeting. Attendance, topics, homework and
// game analysis are free text; attendance is a comma-separated name list.
// SessionDate is a calendar date in YYYY-MM-DD form.
type Session struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionNumber int       `gorm:"not null" json:"sessionNumber"`
	SessionDate   Date      `gorm:"type:date;not null" json:"sessionDate"`
	Attendance    string    `gorm:"type:text;not null" json:"attendance"`
	Topics        string    `gorm:"type:text;not null" json:"topics"`
	Homework      string    `gorm:"type:text;not null" json:"homework"`
	GameAnalysis  string    `gorm:"type:text;not null" json:"gameAnalysis"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CoachID       int64     `gorm:"not null;index" json:"coachId"`
	TimeSlotID    *int64    `json:"timeSlotId"`
	Coach         User      `gorm:"foreignKey:CoachID" json:"-"`
	TimeSlot      *TimeSlot `gorm:"foreignKey:TimeSlotID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}
