package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestash/internal/common"
)

func TestCreateTagIdempotent(t *testing.T) {
	service := newTestService(t)

	first, created, err := service.CreateTag("  USB-C ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "USB-C", first.Name)

	// case and whitespace differences resolve to the same entity
	second, created, err := service.CreateTag("usb-c")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateTagRejectsBlank(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.CreateTag("   ")
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestResolveTagsSkipsBlanksAndDuplicates(t *testing.T) {
	service := newTestService(t)

	tags, err := service.ResolveTags(service.DB(), []string{"outdoor", "", "  ", "Outdoor", "camping"})
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestBatteryAllNullNeverPersists(t *testing.T) {
	service := newTestService(t)

	for i := 0; i < 2; i++ {
		battery, err := service.FindOrCreateBattery(service.DB(), BatterySpec{})
		require.NoError(t, err)
		assert.Nil(t, battery)
	}

	var count int64
	require.NoError(t, service.DB().Model(&Battery{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBatteryStructuralIdentity(t *testing.T) {
	service := newTestService(t)

	spec := BatterySpec{
		Voltage:      floatPtr(5),
		Current:      floatPtr(1),
		Capacity:     floatPtr(2000),
		ChargingType: strPtr("USB-C"),
	}

	first, err := service.FindOrCreateBattery(service.DB(), spec)
	require.NoError(t, err)
	second, err := service.FindOrCreateBattery(service.DB(), spec)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// null fields are part of the identity
	partial, err := service.FindOrCreateBattery(service.DB(), BatterySpec{Voltage: floatPtr(5)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, partial.ID)
}

func TestLocationUniquenessPerParent(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.FindOrCreateLocation("Room A", "")
	require.NoError(t, err)
	_, _, err = service.FindOrCreateLocation("Room B", "")
	require.NoError(t, err)

	inA, created, err := service.FindOrCreateLocation("Drawer", "Room A")
	require.NoError(t, err)
	assert.True(t, created)

	inB, created, err := service.FindOrCreateLocation("Drawer", "Room B")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, inA.ID, inB.ID)

	again, created, err := service.FindOrCreateLocation("Drawer", "Room A")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, inA.ID, again.ID)
}

func TestLocationBreadcrumbInput(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.FindOrCreateLocation("Bedroom", "")
	require.NoError(t, err)

	// name given as a display path: only the terminal segment matters
	drawer, created, err := service.FindOrCreateLocation("Bedroom > Drawer", "Bedroom")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Drawer", drawer.Name)
}

func TestLocationUnresolvedParentFallsBackToRoot(t *testing.T) {
	service := newTestService(t)

	loc, created, err := service.FindOrCreateLocation("Drawer", "No Such Room")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, loc.ParentID)
}

func TestLocationUnresolvedParentStrictMode(t *testing.T) {
	cfg := testConfig()
	cfg.StrictLocationParent = true
	service := NewService(newTestDB(t), cfg)

	_, _, err := service.FindOrCreateLocation("Drawer", "No Such Room")
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestResolveLocationByPath(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.FindOrCreateLocation("Bedroom", "")
	require.NoError(t, err)
	drawer, _, err := service.FindOrCreateLocation("Drawer", "Bedroom")
	require.NoError(t, err)

	resolved, err := service.ResolveLocationByPath("drawer", "bedroom")
	require.NoError(t, err)
	assert.Equal(t, drawer.ID, resolved.ID)

	// without a parent only root-level locations match
	_, err = service.ResolveLocationByPath("Drawer", "")
	require.Error(t, err)

	_, err = service.ResolveLocationByPath("Attic", "")
	require.Error(t, err)
}

func TestAssignLocationParentRejectsCycle(t *testing.T) {
	service := newTestService(t)

	house, _, err := service.FindOrCreateLocation("House", "")
	require.NoError(t, err)
	room, _, err := service.FindOrCreateLocation("Room", "House")
	require.NoError(t, err)

	err = service.AssignLocationParent(house.ID, &room.ID)
	require.Error(t, err)
	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)

	err = service.AssignLocationParent(house.ID, &house.ID)
	require.Error(t, err)
}

func TestUpsertGroupCreateThenUpdate(t *testing.T) {
	service := newTestService(t)

	id, created, err := service.UpsertGroup(UpsertGroupRequest{
		Name:         "Vibrator X",
		Voltage:      floatPtr(5),
		Current:      floatPtr(1),
		Capacity:     floatPtr(2000),
		ChargingType: strPtr("USB-C"),
		Tags:         []string{"+18", "silicone"},
	})
	require.NoError(t, err)
	assert.True(t, created)

	var group ItemGroup
	require.NoError(t, service.DB().Preload("Tags").Preload("Battery").First(&group, id).Error)
	assert.Len(t, group.Tags, 2)
	require.NotNil(t, group.Battery)
	assert.Equal(t, 5.0, *group.Battery.Voltage)

	// update by id replaces tags and battery wholesale
	updatedID, created, err := service.UpsertGroup(UpsertGroupRequest{
		ID:   &id,
		Name: "Vibrator X",
		Tags: []string{"silicone"},
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, updatedID)

	group = ItemGroup{}
	require.NoError(t, service.DB().Preload("Tags").First(&group, id).Error)
	assert.Len(t, group.Tags, 1)
	assert.Nil(t, group.BatteryID)
}

func TestUpsertGroupByNameIsFindOrCreate(t *testing.T) {
	service := newTestService(t)

	id, created, err := service.UpsertGroup(UpsertGroupRequest{Name: "Flashlight"})
	require.NoError(t, err)
	assert.True(t, created)

	sameID, created, err := service.UpsertGroup(UpsertGroupRequest{Name: "flashlight"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, sameID)
}

func TestUpsertGroupUnknownID(t *testing.T) {
	service := newTestService(t)

	missing := uint(4711)
	_, _, err := service.UpsertGroup(UpsertGroupRequest{ID: &missing, Name: "Ghost"})
	require.Error(t, err)
	var notFound *common.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSearchTagsNormalized(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.CreateTag("Café Gear")
	require.NoError(t, err)
	_, _, err = service.CreateTag("outdoor")
	require.NoError(t, err)

	results, err := service.SearchTags("cafe")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Café Gear", results[0].Name)
}

func TestSearchLocationsMatchesBreadcrumb(t *testing.T) {
	service := newTestService(t)

	_, _, err := service.FindOrCreateLocation("House", "")
	require.NoError(t, err)
	drawer, _, err := service.FindOrCreateLocation("Drawer", "House")
	require.NoError(t, err)

	results, err := service.SearchLocations("house > dra")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, drawer.ID, results[0].ID)
	assert.Equal(t, "House > Drawer", results[0].Name)
}
