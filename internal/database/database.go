package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cogui/internal/config"
	logging "cogui/internal/logging"
	"cogui/internal/models"
)

var DB *gorm.DB

// Init opens the database connection and runs migrations. A failure is not
// fatal: the caller is expected to continue without persistence, so errors
// are returned rather than aborting.
func Init(log *zap.Logger) error {
	dbConf := config.Conf.Database
	if dbConf.Host == "" {
		return fmt.Errorf("no database host configured")
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		DB = nil
		return fmt.Errorf("connecting to database: %w", err)
	}

	log.Info("Database connection established successfully.")
	return runMigrations(log)
}

func runMigrations(log *zap.Logger) error {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	err := DB.AutoMigrate(
		&models.PreferenceRecord{},
		&models.AdaptationEvent{},
	)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")

	eventsIndex := `CREATE INDEX IF NOT EXISTS idx_adaptation_events_query ON adaptation_events (session_id, created_at DESC);`
	if err := DB.Exec(eventsIndex).Error; err != nil {
		return fmt.Errorf("creating index on adaptation_events: %w", err)
	}
	log.Info("Custom indexes ensured successfully.")
	return nil
}
