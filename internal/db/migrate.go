package db

import (
	"fmt"

	"github.com/raheva/mirror/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.RelationType{},
		&models.Guest{},
		&models.VideoRecording{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedRelationTypes upserts the standard relation type rows.
func SeedRelationTypes(db *gorm.DB) error {
	names := []string{"Bride's Family", "Groom's Family", "Friend", "Colleague", "Other"}
	for _, name := range names {
		rt := models.RelationType{Name: name}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&rt)
		if result.Error != nil {
			return fmt.Errorf("db: seed relation type %q: %w", name, result.Error)
		}
	}
	return nil
}

// SeedGuests inserts guest rows, skipping any whose first+last name already
// exists. Insertion order fixes the directory iteration order used by the
// resolver tie-break.
func SeedGuests(db *gorm.DB, guests []models.Guest) (int, error) {
	inserted := 0
	for _, g := range guests {
		var count int64
		if err := db.Model(&models.Guest{}).
			Where("first_name = ? AND last_name = ?", g.FirstName, g.LastName).
			Count(&count).Error; err != nil {
			return inserted, fmt.Errorf("db: seed guest %q %q: %w", g.FirstName, g.LastName, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&g).Error; err != nil {
			return inserted, fmt.Errorf("db: seed guest %q %q: %w", g.FirstName, g.LastName, err)
		}
		inserted++
	}
	return inserted, nil
}
