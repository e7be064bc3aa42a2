package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/svdpmukherjee/wordgame-analysis/internal/config"
	logger "github.com/svdpmukherjee/wordgame-analysis/internal/logging"
	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// DB is the global database handle, set by Init.
var DB *gorm.DB

const slowQueryThreshold = 200 * time.Millisecond

// Init connects to the study database and migrates the analyzer's result
// tables. The events table belongs to the ingestion service and is only
// read, so it is deliberately not part of the migration.
func Init(log *zap.Logger) error {
	c := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port)

	gormLogger := logger.NewGormZapLogger(log, slowQueryThreshold)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	return migrate(log)
}

func migrate(log *zap.Logger) error {
	err := DB.AutoMigrate(
		&models.SessionMetricsRecord{},
		&models.WordVerdictRecord{},
		&models.SuspiciousIntervalRecord{},
	)
	if err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	// Audit queries always slice by run and participant together.
	err = DB.Exec(`CREATE INDEX IF NOT EXISTS idx_word_verdicts_run_participant
		ON word_verdict_records (run_id, participant_id, phase)`).Error
	if err != nil {
		return fmt.Errorf("failed to create verdict index: %w", err)
	}

	log.Info("Database schema migrated")
	return nil
}
