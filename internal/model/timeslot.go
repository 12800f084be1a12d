package model

import "time"

// TimeSlot is a coach-defined availability window. A recurring slot is a
// single start/end pair plus the flag; it is never expanded into instances.
// DayOfWeek is 0 (Sunday) through 6 and is informational only.
type TimeSlot struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StartTime   time.Time `gorm:"not null" json:"startTime"`
	EndTime     time.Time `gorm:"not null" json:"endTime"`
	DayOfWeek   int       `gorm:"not null" json:"dayOfWeek"`
	IsRecurring bool      `gorm:"not null" json:"isRecurring"`
	IsBooked    bool      `gorm:"not null" json:"isBooked"`
	CoachID     int64     `gorm:"not null;index" json:"coachId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Coach       User      `gorm:"foreignKey:CoachID" json:"-"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}
