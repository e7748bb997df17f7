package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hallpass-backend/internal/model"
)

// defaultDestinations is the baseline destination registry for a school.
// Additional rows can be added directly in the database; names are the
// normalized form used for matching and subscription routing.
var defaultDestinations = []model.Destination{
	{Name: "restroom", DisplayName: "Restroom"},
	{Name: "nurse office", DisplayName: "Nurse's Office"},
	{Name: "main office", DisplayName: "Main Office"},
	{Name: "library", DisplayName: "Library"},
	{Name: "counselor office", DisplayName: "Counselor's Office"},
}

// SeedDestinations upserts the baseline destination registry.
func SeedDestinations(db *gorm.DB) error {
	destinations := make([]model.Destination, len(defaultDestinations))
	copy(destinations, defaultDestinations)

	log.Printf("Seeding %d destinations...", len(destinations))
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name"}),
	}).Create(&destinations).Error; err != nil {
		return fmt.Errorf("seed destinations failed: %w", err)
	}
	return nil
}
