package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/stockwatch/backend/internal/domain/watch"
)

// checkpointRecord is the GORM model for a persisted checkpoint. The
// checkpoint itself is an opaque JSON blob; the table only indexes by job.
type checkpointRecord struct {
	JobID     string    `gorm:"primaryKey;size:36"`
	Data      []byte    `gorm:"type:bytes"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for checkpoint records
func (checkpointRecord) TableName() string {
	return "watch_checkpoints"
}

// GormStore implements watch.CheckpointStore on a relational database via
// GORM. Works with both the sqlite and postgres drivers.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a checkpoint store over an open GORM connection and
// migrates its table
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&checkpointRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate checkpoint table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// OpenSQLite opens a SQLite-backed checkpoint store at the given path.
// Suitable for single-instance deployments that need checkpoints to survive
// restarts without an external database. A nil gormLogger silences SQL logs.
func OpenSQLite(path string, gormLogger logger.Interface) (*GormStore, error) {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return NewGormStore(db)
}

// OpenPostgres opens a Postgres-backed checkpoint store from a DSN
func OpenPostgres(dsn string, gormLogger logger.Interface) (*GormStore, error) {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewGormStore(db)
}

// Load returns the stored checkpoint for a job, or a zero-value checkpoint
// for a job that was never saved
func (s *GormStore) Load(ctx context.Context, jobID uuid.UUID) (watch.Checkpoint, error) {
	var rec checkpointRecord
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID.String()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return watch.Checkpoint{}, nil
	}
	if err != nil {
		return watch.Checkpoint{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var cp watch.Checkpoint
	if err := json.Unmarshal(rec.Data, &cp); err != nil {
		return watch.Checkpoint{}, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return cp, nil
}

// Save upserts the checkpoint for a job
func (s *GormStore) Save(ctx context.Context, jobID uuid.UUID, cp watch.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	rec := checkpointRecord{
		JobID: jobID.String(),
		Data:  data,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Delete removes a job's checkpoint
func (s *GormStore) Delete(ctx context.Context, jobID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID.String()).
		Delete(&checkpointRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// DB returns the underlying GORM handle (for tracing plugins and tests)
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Ensure GormStore implements CheckpointStore
var _ watch.CheckpointStore = (*GormStore)(nil)
