package guest

import (
	"context"
	"fmt"

	"github.com/raheva/mirror/internal/models"
	"gorm.io/gorm"
)

// GormDirectory reads the guest directory from the database.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a directory over the given database.
func NewGormDirectory(db *gorm.DB) (*GormDirectory, error) {
	if db == nil {
		return nil, fmt.Errorf("guest: directory: db is required")
	}
	return &GormDirectory{db: db}, nil
}

// Snapshot returns all guests ordered by primary key ascending. The order is
// stable across calls, which makes resolution deterministic for duplicate
// names.
func (d *GormDirectory) Snapshot(ctx context.Context) ([]Record, error) {
	var guests []models.Guest
	if err := d.db.WithContext(ctx).Order("id ASC").Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("guest: list guests: %w", err)
	}

	records := make([]Record, 0, len(guests))
	for _, g := range guests {
		records = append(records, Record{
			FirstName:   g.FirstName,
			LastName:    g.LastName,
			Phone:       g.Phone,
			TableNumber: g.TableNumber,
			Relation:    g.Relation,
			Message:     g.Message,
			Story:       g.Story,
			About:       g.About,
		})
	}
	return records, nil
}
