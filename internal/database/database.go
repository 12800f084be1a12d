package database

import (
	"github.com/coachlog/api/internal/config"
	"github.com/coachlog/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.TimeSlot{},
		&model.Session{},
		&model.RefreshToken{},
	)
	if err != nil {
		return err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_time_slots_booked_start ON time_slots(is_booked, start_time)")

	return nil
}
