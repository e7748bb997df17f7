package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hallpass-backend/internal/model"
	"hallpass-backend/internal/pass"
	"hallpass-backend/internal/policy"
)

// gormHistoryStore archives completed passes to the pass_archives table.
type gormHistoryStore struct {
	db *gorm.DB
}

// NewGormHistoryStore creates a database-backed archive.
func NewGormHistoryStore(db *gorm.DB) pass.HistoryStore {
	return &gormHistoryStore{db: db}
}

func (s *gormHistoryStore) Append(ctx context.Context, rec pass.HistoryRecord) error {
	row := model.PassArchive{
		PassID:          rec.PassID,
		StudentID:       rec.StudentID,
		IssuerID:        rec.IssuerID,
		PassType:        string(rec.Type),
		Destination:     rec.Destination,
		StartTime:       rec.StartTime,
		CompletedAt:     rec.CompletedAt,
		ExpectedSeconds: int(rec.ExpectedDuration.Seconds()),
		ActualSeconds:   int(rec.ActualDuration.Seconds()),
		ViolationCount:  len(rec.Violations),
		Route:           strings.Join(rec.Route, "\n"),
		Violations:      strings.Join(rec.Violations, "\n"),
	}
	// Idempotent per pass id: a completion retried after a transient
	// failure must not double-insert.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pass_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to archive pass %s: %w", rec.PassID, err)
	}
	return nil
}

func (s *gormHistoryStore) ListByStudent(ctx context.Context, studentID string) ([]pass.HistoryRecord, error) {
	var rows []model.PassArchive
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list archived passes for student %s: %w", studentID, err)
	}

	records := make([]pass.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toHistoryRecord(row))
	}
	return records, nil
}

func (s *gormHistoryStore) CountSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.PassArchive{}).
		Where("student_id = ? AND start_time >= ?", studentID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recent passes for student %s: %w", studentID, err)
	}
	return int(count), nil
}

func toHistoryRecord(row model.PassArchive) pass.HistoryRecord {
	var violations, route []string
	if row.Violations != "" {
		violations = strings.Split(row.Violations, "\n")
	}
	if row.Route != "" {
		route = strings.Split(row.Route, "\n")
	}
	return pass.HistoryRecord{
		PassID:           row.PassID,
		StudentID:        row.StudentID,
		IssuerID:         row.IssuerID,
		Type:             policy.Type(row.PassType),
		Destination:      row.Destination,
		StartTime:        row.StartTime,
		CompletedAt:      row.CompletedAt,
		ExpectedDuration: time.Duration(row.ExpectedSeconds) * time.Second,
		ActualDuration:   time.Duration(row.ActualSeconds) * time.Second,
		Route:            route,
		Violations:       violations,
	}
}
