package model

import "time"

// Destination represents a location students can be granted a pass to
// (restroom, nurse's office, library, ...).
type Destination struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"uniqueIndex;size:128;not null"`
	DisplayName string    `gorm:"size:256"`
	Building    string    `gorm:"size:64"`
	Floor       int
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
