// audit scans the store for the consistency gaps the API deliberately does
// not enforce: sessions pointing at another coach's slot, sessions pointing
// at missing slots, and booked slots no session refers to. It reports and
// never repairs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/coachlog/api/internal/config"
	"github.com/coachlog/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Issue struct {
	Kind      string `json:"kind"`
	SessionID int64  `json:"sessionId,omitempty"`
	SlotID    int64  `json:"slotId,omitempty"`
	Details   string `json:"details"`
}

func main() {
	outputFile := flag.String("output", "", "Write issues as JSON to this file")
	flag.Parse()

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var issues []Issue
	issues = append(issues, auditSessionSlots(db)...)
	issues = append(issues, auditBookedSlots(db)...)

	for _, issue := range issues {
		fmt.Printf("[%s] %s\n", issue.Kind, issue.Details)
	}
	fmt.Printf("Audit complete: %d issues\n", len(issues))

	if *outputFile != "" {
		b, err := json.MarshalIndent(issues, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode issues: %v", err)
		}
		if err := os.WriteFile(*outputFile, b, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", *outputFile, err)
		}
	}
}

// auditSessionSlots flags sessions whose slot link is dangling or crosses
// coach ownership.
func auditSessionSlots(db *gorm.DB) []Issue {
	var sessions []model.Session
	if err := db.Where("time_slot_id IS NOT NULL").Find(&sessions).Error; err != nil {
		log.Fatalf("Failed to load sessions: %v", err)
	}

	var issues []Issue
	for _, s := range sessions {
		var slot model.TimeSlot
		err := db.First(&slot, *s.TimeSlotID).Error
		if err != nil {
			issues = append(issues, Issue{
				Kind:      "dangling-slot",
				SessionID: s.ID,
				SlotID:    *s.TimeSlotID,
				Details:   fmt.Sprintf("session %d references missing time slot %d", s.ID, *s.TimeSlotID),
			})
			continue
		}
		if slot.CoachID != s.CoachID {
			issues = append(issues, Issue{
				Kind:      "cross-coach-slot",
				SessionID: s.ID,
				SlotID:    slot.ID,
				Details:   fmt.Sprintf("session %d (coach %d) references slot %d owned by coach %d", s.ID, s.CoachID, slot.ID, slot.CoachID),
			})
		}
	}
	return issues
}

// auditBookedSlots flags slots marked booked that no session points at.
func auditBookedSlots(db *gorm.DB) []Issue {
	var slots []model.TimeSlot
	if err := db.Where("is_booked = ?", true).Find(&slots).Error; err != nil {
		log.Fatalf("Failed to load time slots: %v", err)
	}

	var issues []Issue
	for _, slot := range slots {
		var count int64
		db.Model(&model.Session{}).Where("time_slot_id = ?", slot.ID).Count(&count)
		if count == 0 {
			issues = append(issues, Issue{
				Kind:    "booked-without-session",
				SlotID:  slot.ID,
				Details: fmt.Sprintf("slot %d is booked but no session references it", slot.ID),
			})
		}
	}
	return issues
}
