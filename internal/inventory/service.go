package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"homestash/internal/catalog"
	"homestash/internal/common"
)

// UpsertItemRequest creates an item, or updates one when ID is present.
// Group and location arrive by name; location accepts a breadcrumb path and
// the terminal segment is what gets matched.
type UpsertItemRequest struct {
	ID                *uint    `json:"id"`
	Group             string   `json:"group"`
	Location          string   `json:"location"`
	LastSeenDate      *string  `json:"last_seen_date"`
	LastChargeDate    *string  `json:"last_charge_date"`
	AcquiredDate      *string  `json:"acquired_date"`
	HasDedicatedCable *bool    `json:"has_dedicated_cable"`
	BoughtPlace       *string  `json:"bought_place"`
	Variant           *string  `json:"variant"`
	Color             *string  `json:"color"`
	Status            *string  `json:"status"`
	Price             *float64 `json:"price"`
}

// Service handles item create/update/delete business logic
type Service struct {
	db      *gorm.DB
	catalog *catalog.Service
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, catalogService *catalog.Service) *Service {
	return &Service{db: db, catalog: catalogService}
}

// UpsertItem resolves the group and location references and writes the item.
// Unresolvable references are validation failures, not silent defaults.
func (s *Service) UpsertItem(req UpsertItemRequest) (uint, bool, error) {
	group, err := s.catalog.ResolveGroupByName(req.Group)
	if err != nil {
		return 0, false, err
	}

	location, err := s.catalog.ResolveLocationByPath(
		catalog.TerminalName(req.Location),
		catalog.ParentSegment(req.Location),
	)
	if err != nil {
		return 0, false, err
	}

	lastSeen, err := common.ParseDate(req.LastSeenDate)
	if err != nil {
		return 0, false, common.NewValidationError("last_seen_date must be a %s date", common.DateLayout)
	}
	lastCharge, err := common.ParseDate(req.LastChargeDate)
	if err != nil {
		return 0, false, common.NewValidationError("last_charge_date must be a %s date", common.DateLayout)
	}
	acquired, err := common.ParseDate(req.AcquiredDate)
	if err != nil {
		return 0, false, common.NewValidationError("acquired_date must be a %s date", common.DateLayout)
	}

	var itemID uint
	created := false

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var item catalog.Item
		if req.ID != nil {
			if err := tx.First(&item, *req.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return common.NewNotFoundError("item %d not found", *req.ID)
				}
				return err
			}
		}

		item.GroupID = group.ID
		item.LocationID = location.ID
		item.LastSeenDate = lastSeen
		item.LastChargeDate = lastCharge
		item.AcquiredDate = acquired
		item.HasDedicatedCable = req.HasDedicatedCable
		item.BoughtPlace = req.BoughtPlace
		item.Variant = req.Variant
		item.Color = req.Color
		item.Status = req.Status
		item.Price = req.Price

		if req.ID == nil {
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}
			created = true
		} else {
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("failed to update item: %w", err)
			}
		}

		itemID = item.ID
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return itemID, created, nil
}

// DeleteItem removes an item by id.
func (s *Service) DeleteItem(id uint) error {
	result := s.db.Delete(&catalog.Item{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.NewNotFoundError("item %d not found", id)
	}
	return nil
}
