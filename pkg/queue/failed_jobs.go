package queue

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FailedJobRecord is the row written for every job that exhausted its retries.
// The table is created by the failed_jobs migration.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null;index"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// GormFailedStore persists failed jobs to the relational store.
type GormFailedStore struct {
	db *gorm.DB
}

func NewGormFailedStore(db *gorm.DB) *GormFailedStore {
	return &GormFailedStore{db: db}
}

func (s *GormFailedStore) Record(ctx context.Context, f FailedJob) error {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	rec := FailedJobRecord{
		JobType:  f.JobType,
		Payload:  string(f.Payload),
		Error:    msg,
		Attempts: f.Attempts,
		FailedAt: f.FailedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("queue: record failed job %s: %w", f.JobType, err)
	}
	return nil
}

// List returns the most recent failures first.
func (s *GormFailedStore) List(ctx context.Context, limit int) ([]FailedJobRecord, error) {
	var out []FailedJobRecord
	err := s.db.WithContext(ctx).Order("failed_at desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("queue: list failed jobs: %w", err)
	}
	return out, nil
}
