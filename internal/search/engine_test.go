package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homestash/internal/auth"
	"homestash/internal/catalog"
	"homestash/internal/config"
)

var (
	anonymous = auth.Principal{}
	admin     = auth.Principal{Name: "admin", Privileged: true, Elevated: true}
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.Tag{}, &catalog.Battery{}, &catalog.ItemGroup{}, &catalog.Location{}, &catalog.Item{},
	))

	cfg := &config.Config{AdminUser: "admin", RestrictedMarker: "+18"}
	return NewEngine(db, cfg), db
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

// seedCatalog stores one restricted and one open item:
//   - "Vibrator X" (+18, silicone; 5V 1A 2000mAh USB-C) in Bedroom > Drawer,
//     price 49.99, last seen 2025-06-01
//   - "Flashlight" (outdoor; 3.7V 1A 3000mAh USB-A) in Garage,
//     price 19.9, last seen 2025-02-10
func seedCatalog(t *testing.T, db *gorm.DB) (restricted, open catalog.Item) {
	t.Helper()

	adult := catalog.ItemGroup{
		Name: "Vibrator X",
		Battery: &catalog.Battery{
			Voltage: floatPtr(5), Current: floatPtr(1),
			Capacity: floatPtr(2000), ChargingType: strPtr("USB-C"),
		},
		Tags: []catalog.Tag{{Name: "+18"}, {Name: "silicone"}},
	}
	require.NoError(t, db.Create(&adult).Error)

	torch := catalog.ItemGroup{
		Name: "Flashlight",
		Battery: &catalog.Battery{
			Voltage: floatPtr(3.7), Current: floatPtr(1),
			Capacity: floatPtr(3000), ChargingType: strPtr("USB-A"),
		},
		Tags: []catalog.Tag{{Name: "outdoor"}},
	}
	require.NoError(t, db.Create(&torch).Error)

	bedroom := catalog.Location{Name: "Bedroom"}
	require.NoError(t, db.Create(&bedroom).Error)
	drawer := catalog.Location{Name: "Drawer", ParentID: &bedroom.ID}
	require.NoError(t, db.Create(&drawer).Error)
	garage := catalog.Location{Name: "Garage"}
	require.NoError(t, db.Create(&garage).Error)

	restricted = catalog.Item{
		GroupID: adult.ID, LocationID: drawer.ID,
		Price: floatPtr(49.99), LastSeenDate: date("2025-06-01"),
		Color: strPtr("Purple"),
	}
	require.NoError(t, db.Create(&restricted).Error)

	open = catalog.Item{
		GroupID: torch.ID, LocationID: garage.ID,
		Price: floatPtr(19.9), LastSeenDate: date("2025-02-10"),
		BoughtPlace: strPtr("Café del Mar"), Status: strPtr("working"),
	}
	require.NoError(t, db.Create(&open).Error)
	return restricted, open
}

func TestVisibilityFilterOnTagSearch(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	hidden, err := engine.SearchAttribute("tag", "silicone", anonymous)
	require.NoError(t, err)
	assert.Empty(t, hidden)

	// privileged identity without the elevated signal stays blind
	privilegedOnly := auth.Principal{Name: "admin", Privileged: true}
	hidden, err = engine.SearchAttribute("tag", "silicone", privilegedOnly)
	require.NoError(t, err)
	assert.Empty(t, hidden)

	shown, err := engine.SearchAttribute("tag", "silicone", admin)
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, "Vibrator X", shown[0].Group)
}

func TestPriceSearchAssemblesBreadcrumb(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	none, err := engine.SearchAttribute("price", "49.99", anonymous)
	require.NoError(t, err)
	assert.Empty(t, none)

	records, err := engine.SearchAttribute("price", "49.99", admin)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bedroom > Drawer", records[0].Location)
	assert.ElementsMatch(t, []string{"+18", "silicone"}, records[0].Tags)
	require.NotNil(t, records[0].Battery)
	assert.Equal(t, 5.0, *records[0].Battery.Voltage)
	assert.Equal(t, strPtr("2025-06-01"), records[0].LastSeenDate)
}

func TestVoltageAutocomplete(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	values, err := engine.AttributeValues("voltage", "5", admin)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, 5.0, values[0].ID)
	assert.Equal(t, "5.0", values[0].Label)

	// the restricted group's battery is invisible without privilege
	values, err = engine.AttributeValues("voltage", "", anonymous)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "3.7", values[0].Label)
}

func TestDateValuesSortDescending(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	values, err := engine.AttributeValues("last-seen", "2025", admin)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "2025-06-01", values[0].Label)
	assert.Equal(t, "2025-02-10", values[1].Label)
}

func TestNormalizedSubstringMatching(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	records, err := engine.SearchAttribute("bought-place", "cafe", anonymous)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Flashlight", records[0].Group)
}

func TestBlankQueryReturnsNothingInRecordMode(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	records, err := engine.SearchAttribute("status", "  ", anonymous)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIDLookupIsExact(t *testing.T) {
	engine, db := newTestEngine(t)
	_, open := seedCatalog(t, db)

	records, err := engine.SearchAttribute("id", fmt.Sprint(open.ID), anonymous)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, open.ID, records[0].ID)

	// substring of an id must not match
	records, err = engine.SearchAttribute("group-id", "999", anonymous)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUnknownAttribute(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.SearchAttribute("serial", "x", anonymous)
	require.Error(t, err)
}

func TestAdvancedNoPredicatesReturnsAllVisible(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	records, err := engine.Advanced(AdvancedQuery{}, anonymous)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = engine.Advanced(AdvancedQuery{}, admin)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAdvancedRangePredicates(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	records, err := engine.Advanced(AdvancedQuery{PriceMin: floatPtr(30)}, admin)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Vibrator X", records[0].Group)

	records, err = engine.Advanced(AdvancedQuery{PriceMax: floatPtr(30)}, admin)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Flashlight", records[0].Group)

	records, err = engine.Advanced(AdvancedQuery{
		After:  date("2025-01-01"),
		Before: date("2025-03-01"),
	}, admin)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Flashlight", records[0].Group)
}

func TestAdvancedTagPartial(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	records, err := engine.Advanced(AdvancedQuery{TagPartial: "sili"}, admin)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Vibrator X", records[0].Group)

	records, err = engine.Advanced(AdvancedQuery{TagPartial: "sili"}, anonymous)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAdvancedCombinedPredicates(t *testing.T) {
	engine, db := newTestEngine(t)
	seedCatalog(t, db)

	records, err := engine.Advanced(AdvancedQuery{
		PriceMin:   floatPtr(10),
		PriceMax:   floatPtr(60),
		After:      date("2025-05-01"),
		TagPartial: "18",
	}, admin)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Vibrator X", records[0].Group)
}
