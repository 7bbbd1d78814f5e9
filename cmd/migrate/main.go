package main

import (
	"log"

	"summarizer-session-be/internal/config"
	"summarizer-session-be/internal/model"
	"summarizer-session-be/pkg/database"
)

func main() {
	// 1. Load configuration (.env is optional)
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// 3. Extensions needed by column defaults
	log.Println("Step 1: Setting up extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. Tables
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.AssignmentTemplate{},
		&model.Assignment{},
		&model.Iteration{},
		&model.Interaction{},
		&model.Snapshot{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Constraints AutoMigrate cannot express
	log.Println("Step 3: Creating partial indexes...")

	postMigrationSQL := []string{
		// At most one active assignment per user.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_one_active_per_user ON assignments (user_id) WHERE is_active;`,
		`CREATE INDEX IF NOT EXISTS idx_assignment_templates_topic_created ON assignment_templates (topic, created_at);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
