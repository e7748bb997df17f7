package model

import "time"

// PassArchive is the historical log of completed hall passes (cold table).
// Rows are written exactly once, at completion, and never updated.
type PassArchive struct {
	ID              int64     `gorm:"autoIncrement;primaryKey"`
	PassID          string    `gorm:"size:36;uniqueIndex;not null"`
	StudentID       string    `gorm:"size:64;index:idx_pass_archives_student_start;not null"`
	IssuerID        string    `gorm:"size:64;not null"`
	PassType        string    `gorm:"size:16;not null"`
	Destination     string    `gorm:"size:128;not null"`
	StartTime       time.Time `gorm:"index:idx_pass_archives_student_start;not null"`
	CompletedAt     time.Time `gorm:"not null"`
	ExpectedSeconds int       `gorm:"not null"`
	ActualSeconds   int       `gorm:"not null"`
	ViolationCount  int       `gorm:"not null"`
	Route           string    // newline-joined location updates
	Violations      string    // newline-joined, empty when clean
}
