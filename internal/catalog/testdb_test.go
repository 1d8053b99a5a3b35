package catalog

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homestash/internal/config"
)

// newTestDB opens a per-test in-memory database. cache=shared keeps every
// pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Tag{}, &Battery{}, &ItemGroup{}, &Location{}, &Item{}))
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(newTestDB(t), testConfig())
}

func testConfig() *config.Config {
	return &config.Config{
		AdminUser:        "admin",
		RestrictedMarker: "+18",
	}
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }
