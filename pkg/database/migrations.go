package database

import (
	"gorm.io/gorm"

	"homestash/internal/catalog"
)

// AutoMigrate creates the catalog schema. The unique indexes declared on the
// models are the write-time guard behind every find-or-create natural key:
// tag and group names, (name, parent_id) for locations and the full battery
// spec.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&catalog.Tag{},
		&catalog.Battery{},
		&catalog.ItemGroup{},
		&catalog.Location{},
		&catalog.Item{},
	)
	if err != nil {
		return err
	}

	return createLookupIndexes(db)
}

// createLookupIndexes backs the case-insensitive name lookups.
func createLookupIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_tags_name_lower ON tags (LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS idx_item_groups_name_lower ON item_groups (LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS idx_locations_name_lower ON locations (LOWER(name))`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
