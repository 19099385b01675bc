package database

import (
	"github.com/chachabrian/uniride-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.JoinRequest{},
		&models.ChatMessage{},
	)
	if err != nil {
		return err
	}

	statements := []string{
		// one pending request per ride per user
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_join_requests_one_pending
			ON join_requests (ride_id, requester_id) WHERE state = 'pending'`,
		`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_capacity_check`,
		`ALTER TABLE rides ADD CONSTRAINT rides_capacity_check
			CHECK (current_capacity >= 1 AND current_capacity <= max_capacity)`,
		`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`,
		`ALTER TABLE rides ADD CONSTRAINT rides_status_check
			CHECK (status IN ('open', 'started', 'completed'))`,
		`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_distinct_locations_check`,
		`ALTER TABLE rides ADD CONSTRAINT rides_distinct_locations_check
			CHECK (lower(from_location) <> lower(to_location))`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_ride_time
			ON chat_messages (ride_id, created_at, id)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
