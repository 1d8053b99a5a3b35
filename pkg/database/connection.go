package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the shared transactional store. TranslateError surfaces
// unique-key violations as gorm.ErrDuplicatedKey, which the find-or-create
// resolvers rely on to retry their lookup instead of failing the request.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
