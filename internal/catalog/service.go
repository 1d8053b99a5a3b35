package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"homestash/internal/auth"
	"homestash/internal/common"
	"homestash/internal/config"
	"homestash/pkg/textnorm"
)

const searchResultCap = 10

// Service handles catalog business logic: find-or-create resolution for
// tags, batteries, locations and item groups, plus the name search
// endpoints backing client autocomplete.
type Service struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// DB exposes the underlying handle for collaborating services.
func (s *Service) DB() *gorm.DB { return s.db }

// isDuplicate recognizes a unique-constraint violation from a concurrent
// create of the same logical entity. The application retries the lookup
// instead of failing the request.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}

// ----- Tags -----

// FindOrCreateTag resolves a tag by case-insensitive exact name, creating it
// when absent. Runs inside the caller's transaction.
func (s *Service) FindOrCreateTag(tx *gorm.DB, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("tag name must not be blank")
	}

	var tag Tag
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up tag: %w", err)
	}

	tag = Tag{Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		if isDuplicate(err) {
			var existing Tag
			if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error; err != nil {
				return nil, fmt.Errorf("failed to re-read tag after duplicate: %w", err)
			}
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// ResolveTags maps a batch of client-supplied names to tags, skipping blanks.
// Order is irrelevant; duplicates collapse onto the same row.
func (s *Service) ResolveTags(tx *gorm.DB, names []string) ([]Tag, error) {
	var tags []Tag
	seen := make(map[uint]bool)

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tag, err := s.FindOrCreateTag(tx, name)
		if err != nil {
			return nil, err
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tags = append(tags, *tag)
		}
	}
	return tags, nil
}

// CreateTag is the transactional entry behind POST /api/tags.
func (s *Service) CreateTag(name string) (*Tag, bool, error) {
	var tag *Tag
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return common.NewValidationError("tag name must not be blank")
		}

		var existing Tag
		err := tx.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
		if err == nil {
			tag = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		resolved, err := s.FindOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		tag = resolved
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return tag, created, nil
}

// ----- Batteries -----

// FindOrCreateBattery resolves a battery by structural identity: exact match
// on all four fields, null matching null. An all-empty spec is "no battery"
// and never persists a row.
func (s *Service) FindOrCreateBattery(tx *gorm.DB, spec BatterySpec) (*Battery, error) {
	if spec.IsEmpty() {
		return nil, nil
	}

	lookup := func() (*Battery, error) {
		var battery Battery
		query := tx.Model(&Battery{})
		query = whereNullable(query, "voltage", spec.Voltage)
		// "current" needs quoting, it is a keyword in some dialects
		query = whereNullable(query, `"current"`, spec.Current)
		query = whereNullable(query, "capacity", spec.Capacity)
		query = whereNullableString(query, "charging_type", spec.ChargingType)

		err := query.First(&battery).Error
		if err != nil {
			return nil, err
		}
		return &battery, nil
	}

	battery, err := lookup()
	if err == nil {
		return battery, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up battery: %w", err)
	}

	fresh := Battery{
		Voltage:      spec.Voltage,
		Current:      spec.Current,
		Capacity:     spec.Capacity,
		ChargingType: spec.ChargingType,
	}
	if err := tx.Create(&fresh).Error; err != nil {
		if isDuplicate(err) {
			return lookup()
		}
		return nil, fmt.Errorf("failed to create battery: %w", err)
	}
	return &fresh, nil
}

// CreateBattery is the transactional entry behind POST /api/batteries.
func (s *Service) CreateBattery(spec BatterySpec) (*Battery, error) {
	if spec.IsEmpty() {
		return nil, common.NewValidationError("battery must carry at least one field")
	}

	var battery *Battery
	err := s.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := s.FindOrCreateBattery(tx, spec)
		if err != nil {
			return err
		}
		battery = resolved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return battery, nil
}

func whereNullable(query *gorm.DB, column string, value *float64) *gorm.DB {
	if value == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *value)
}

func whereNullableString(query *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *value)
}

// ----- Locations -----

// ResolveLocationByPath finds a location by case-insensitive terminal name.
// With a parent name the parent resolves first and scopes the match; without
// one the match is a root-level location (parent_id null).
func (s *Service) ResolveLocationByPath(name, parentName string) (*Location, error) {
	name = TerminalName(name)
	if name == "" {
		return nil, common.NewValidationError("location name must not be blank")
	}

	var location Location
	query := s.db.Where("LOWER(name) = LOWER(?)", name)

	if parentName = strings.TrimSpace(parentName); parentName != "" {
		var parent Location
		if err := s.db.Where("LOWER(name) = LOWER(?)", TerminalName(parentName)).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, common.NewValidationError("unknown location %q", parentName+PathSeparator+name)
			}
			return nil, err
		}
		query = query.Where("parent_id = ?", parent.ID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	if err := query.First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewValidationError("unknown location %q", name)
		}
		return nil, err
	}
	return &location, nil
}

// FindOrCreateLocation resolves or creates a (name, parent) location. The
// name is taken as the terminal segment of a possibly breadcrumb path. An
// unresolvable parent name historically degraded to "no parent"; strict mode
// turns that into a validation error instead.
func (s *Service) FindOrCreateLocation(name, parentName string) (*Location, bool, error) {
	name = TerminalName(name)
	if name == "" {
		return nil, false, common.NewValidationError("location name must not be blank")
	}

	var location *Location
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var parentID *uint
		if parentName = strings.TrimSpace(parentName); parentName != "" {
			var parent Location
			err := tx.Where("LOWER(name) = LOWER(?)", TerminalName(parentName)).First(&parent).Error
			switch {
			case err == nil:
				parentID = &parent.ID
			case errors.Is(err, gorm.ErrRecordNotFound):
				if s.cfg.StrictLocationParent {
					return common.NewValidationError("unknown parent location %q", parentName)
				}
				// historical behavior: typo'd parent silently yields a
				// root-level location
			default:
				return err
			}
		}

		lookup := func() (*Location, error) {
			var existing Location
			query := tx.Where("LOWER(name) = LOWER(?)", name)
			if parentID == nil {
				query = query.Where("parent_id IS NULL")
			} else {
				query = query.Where("parent_id = ?", *parentID)
			}
			if err := query.First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}

		existing, err := lookup()
		if err == nil {
			location = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up location: %w", err)
		}

		fresh := Location{Name: name, ParentID: parentID}
		if err := tx.Create(&fresh).Error; err != nil {
			if isDuplicate(err) {
				existing, err := lookup()
				if err != nil {
					return fmt.Errorf("failed to re-read location after duplicate: %w", err)
				}
				location = existing
				return nil
			}
			return fmt.Errorf("failed to create location: %w", err)
		}
		location = &fresh
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return location, created, nil
}

// AssignLocationParent re-parents a location, rejecting assignments that
// would make a location its own ancestor.
func (s *Service) AssignLocationParent(id uint, parentID *uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var location Location
		if err := tx.First(&location, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NewNotFoundError("location %d not found", id)
			}
			return err
		}

		if parentID != nil {
			ix, err := LoadLocationIndex(tx)
			if err != nil {
				return err
			}
			if *parentID == id || ix.IsAncestor(id, *parentID) {
				return common.NewValidationError("location cannot become its own ancestor")
			}
		}

		return tx.Model(&location).Update("parent_id", parentID).Error
	})
}

// ----- Item groups -----

// UpsertGroup creates or updates an item group. An explicit id selects
// update; otherwise the name resolves find-or-create style. Battery and tag
// associations are replaced wholesale on both paths.
func (s *Service) UpsertGroup(req UpsertGroupRequest) (uint, bool, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return 0, false, common.NewValidationError("item group name must not be blank")
	}

	spec := BatterySpec{
		Voltage:      req.Voltage,
		Current:      req.Current,
		Capacity:     req.Capacity,
		ChargingType: req.ChargingType,
	}

	var groupID uint
	created := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		battery, err := s.FindOrCreateBattery(tx, spec)
		if err != nil {
			return err
		}
		tags, err := s.ResolveTags(tx, req.Tags)
		if err != nil {
			return err
		}

		var group ItemGroup
		switch {
		case req.ID != nil:
			if err := tx.First(&group, *req.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return common.NewNotFoundError("item group %d not found", *req.ID)
				}
				return err
			}
		default:
			err := tx.Where("LOWER(name) = LOWER(?)", name).First(&group).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				group = ItemGroup{Name: name}
				if err := tx.Create(&group).Error; err != nil {
					if isDuplicate(err) {
						if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&group).Error; err != nil {
							return fmt.Errorf("failed to re-read item group after duplicate: %w", err)
						}
					} else {
						return fmt.Errorf("failed to create item group: %w", err)
					}
				} else {
					created = true
				}
			} else if err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"name":        name,
			"instruction": req.Instruction,
		}
		if battery != nil {
			updates["battery_id"] = battery.ID
		} else {
			updates["battery_id"] = nil
		}
		if err := tx.Model(&group).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update item group: %w", err)
		}

		if err := tx.Model(&group).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("failed to replace tag set: %w", err)
		}

		groupID = group.ID
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return groupID, created, nil
}

// ResolveGroupByName finds an item group by case-insensitive exact name.
func (s *Service) ResolveGroupByName(name string) (*ItemGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("item group is required")
	}

	var group ItemGroup
	if err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewValidationError("unknown item group %q", name)
		}
		return nil, err
	}
	return &group, nil
}

// ----- Name search -----

// SearchTags returns up to 10 tags whose name contains the query under
// normalization.
func (s *Service) SearchTags(query string) ([]NameResult, error) {
	var tags []Tag
	if err := s.db.Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	results := []NameResult{}
	for _, tag := range tags {
		if textnorm.Contains(tag.Name, query) {
			results = append(results, NameResult{ID: tag.ID, Name: tag.Name})
			if len(results) == searchResultCap {
				break
			}
		}
	}
	return results, nil
}

// SearchGroups returns up to 10 item groups by normalized name match,
// visibility-filtered for the caller.
func (s *Service) SearchGroups(query string, principal auth.Principal) ([]NameResult, error) {
	var groups []ItemGroup
	if err := s.db.Preload("Tags").Order("name").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list item groups: %w", err)
	}

	results := []NameResult{}
	for i := range groups {
		if !GroupVisible(&groups[i], s.cfg.RestrictedMarker, principal) {
			continue
		}
		if textnorm.Contains(groups[i].Name, query) {
			results = append(results, NameResult{ID: groups[i].ID, Name: groups[i].Name})
			if len(results) == searchResultCap {
				break
			}
		}
	}
	return results, nil
}

// SearchLocations returns up to 10 locations whose breadcrumb path contains
// the query under normalization.
func (s *Service) SearchLocations(query string) ([]NameResult, error) {
	ix, err := LoadLocationIndex(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	results := []NameResult{}
	for id := range ix {
		path := ix.Path(id)
		if textnorm.Contains(path, query) {
			results = append(results, NameResult{ID: id, Name: path})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	if len(results) > searchResultCap {
		results = results[:searchResultCap]
	}
	return results, nil
}

// Meta returns the client bootstrap payload: visible groups and the battery
// dropdown.
func (s *Service) Meta(principal auth.Principal) (*MetaResponse, error) {
	var groups []ItemGroup
	if err := s.db.Preload("Tags").Order("name").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list item groups: %w", err)
	}

	resp := &MetaResponse{Groups: []NameResult{}, Batteries: []BatteryMeta{}}
	for i := range groups {
		if GroupVisible(&groups[i], s.cfg.RestrictedMarker, principal) {
			resp.Groups = append(resp.Groups, NameResult{ID: groups[i].ID, Name: groups[i].Name})
		}
	}

	var batteries []Battery
	if err := s.db.Order("id").Find(&batteries).Error; err != nil {
		return nil, fmt.Errorf("failed to list batteries: %w", err)
	}
	for _, battery := range batteries {
		resp.Batteries = append(resp.Batteries, BatteryMeta{
			ID:           battery.ID,
			Label:        batteryLabel(battery),
			ChargingType: battery.ChargingType,
		})
	}
	return resp, nil
}

func batteryLabel(b Battery) string {
	voltage := "?"
	if b.Voltage != nil {
		voltage = common.FormatFloat(*b.Voltage)
	}
	capacity := "?"
	if b.Capacity != nil {
		capacity = common.FormatFloat(*b.Capacity)
	}
	return fmt.Sprintf("%sV %smAh", voltage, capacity)
}
