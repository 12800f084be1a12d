package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/coachlog/api/internal/config"
	"github.com/coachlog/api/internal/database"
	"github.com/coachlog/api/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// Parse command line flags
	username := flag.String("username", "coach", "Username for the demo coach")
	password := flag.String("password", "chess123", "Password for the demo coach")
	sessionCount := flag.Int("sessions", 5, "Number of sample sessions to create")
	slotCount := flag.Int("slots", 4, "Number of future time slots to create")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migration
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	coach, err := findOrCreateCoach(db, *username, *password)
	if err != nil {
		log.Fatalf("Failed to create coach: %v", err)
	}
	log.Printf("Coach %q ready (id=%d)", coach.Username, coach.ID)

	inserted := seedSessions(db, coach, *sessionCount)
	log.Printf("Inserted %d sessions", inserted)

	inserted = seedTimeSlots(db, coach, *slotCount)
	log.Printf("Inserted %d time slots", inserted)

	log.Println("Seeding complete")
}

func findOrCreateCoach(db *gorm.DB, username, password string) (*model.User, error) {
	var coach model.User
	if err := db.Where("username = ?", username).First(&coach).Error; err == nil {
		return &coach, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	coach = model.User{Username: username, Password: string(hashed)}
	if err := db.Create(&coach).Error; err != nil {
		return nil, err
	}
	return &coach, nil
}

var sampleTopics = []string{
	"Opening principles and center control",
	"Knight forks and discovered attacks",
	"Rook endgames: Lucena and Philidor",
	"Pawn structure in the Sicilian",
	"Attacking the castled king",
}

func seedSessions(db *gorm.DB, coach *model.User, count int) int {
	inserted := 0
	for i := 0; i < count; i++ {
		date := time.Now().AddDate(0, 0, -7*(count-i)).Format("2006-01-02")
		session := model.Session{
			SessionNumber: i + 1,
			SessionDate:   model.Date(date),
			Attendance:    "Alice, Ben, Chloe",
			Topics:        sampleTopics[i%len(sampleTopics)],
			Homework:      fmt.Sprintf("Tactics set %d, 20 puzzles", i+1),
			GameAnalysis:  "Reviewed last week's tournament games",
			CoachID:       coach.ID,
		}
		if err := db.Create(&session).Error; err != nil {
			log.Printf("Error inserting session %d: %v", i+1, err)
			continue
		}
		inserted++
	}
	return inserted
}

func seedTimeSlots(db *gorm.DB, coach *model.User, count int) int {
	inserted := 0
	for i := 0; i < count; i++ {
		start := time.Now().AddDate(0, 0, i+1).Truncate(time.Hour)
		slot := model.TimeSlot{
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
			DayOfWeek:   int(start.Weekday()),
			IsRecurring: true,
			IsBooked:    false,
			CoachID:     coach.ID,
		}
		if err := db.Create(&slot).Error; err != nil {
			log.Printf("Error inserting time slot %d: %v", i+1, err)
			continue
		}
		inserted++
	}
	return inserted
}
