package models

import "time"

// RelationType categorizes guests (e.g. "Bride's Family", "Friend").
type RelationType struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:50;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time

	Guests []Guest `gorm:"foreignKey:RelationTypeID"`
}

// Guest is one invited guest in the wedding directory.
type Guest struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	FirstName      string `gorm:"size:100;not null;index"`
	LastName       string `gorm:"size:100;not null;index"`
	Phone          string `gorm:"size:20"`
	TableNumber    string `gorm:"size:10"`
	Relation       string `gorm:"size:100"`
	RelationTypeID *uint
	Message        string `gorm:"type:text"`
	Story          string `gorm:"type:text"`
	About          string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	RelationType *RelationType `gorm:"foreignKey:RelationTypeID"`
}

// FullName returns "First Last" with single-name guests handled.
func (g *Guest) FullName() string {
	if g.FirstName == "" {
		return g.LastName
	}
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}
