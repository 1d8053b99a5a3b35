package catalog

import (
	"time"

	"homestash/internal/common"
)

// Tag is a free-form label attached to item groups. Names are unique,
// compared case-insensitively; tags are created on demand and never deleted.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }

// Battery is a power specification shared between item groups. Identity is
// structural: the same four field values always resolve to the same row, and
// a spec with all fields absent is "no battery", never an empty row.
type Battery struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Voltage      *float64 `json:"voltage" gorm:"uniqueIndex:uq_battery_spec"`
	Current      *float64 `json:"current" gorm:"uniqueIndex:uq_battery_spec"`
	Capacity     *float64 `json:"capacity" gorm:"uniqueIndex:uq_battery_spec"`
	ChargingType *string  `json:"charging_type" gorm:"size:50;uniqueIndex:uq_battery_spec"`
}

func (Battery) TableName() string { return "batteries" }

// IsEmpty reports whether the spec carries no fields at all.
func (b Battery) IsEmpty() bool {
	return b.Voltage == nil && b.Current == nil && b.Capacity == nil && b.ChargingType == nil
}

// ItemGroup is a named category of items: shared instructions, an optional
// battery spec and a tag set. Updates replace battery and tags wholesale.
type ItemGroup struct {
	common.BaseModel
	Name        string   `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Instruction *string  `json:"instruction"`
	BatteryID   *uint    `json:"battery_id"`
	Battery     *Battery `json:"battery,omitempty" gorm:"foreignKey:BatteryID"`
	Tags        []Tag    `json:"tags" gorm:"many2many:item_group_tags"`
}

func (ItemGroup) TableName() string { return "item_groups" }

// Location is a node in the placement tree. (name, parent_id) is unique;
// the parent reference is lookup-only and never cascades deletes.
type Location struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Name     string    `json:"name" gorm:"size:100;not null;uniqueIndex:uq_location_name_parent"`
	ParentID *uint     `json:"parent_id" gorm:"uniqueIndex:uq_location_name_parent"`
	Parent   *Location `json:"-" gorm:"foreignKey:ParentID"`
}

func (Location) TableName() string { return "locations" }

// Item is one physical object in the catalog.
type Item struct {
	common.BaseModel
	GroupID    uint      `json:"group_id" gorm:"not null;index"`
	Group      ItemGroup `json:"group" gorm:"foreignKey:GroupID"`
	LocationID uint      `json:"location_id" gorm:"not null;index"`
	Location   Location  `json:"location" gorm:"foreignKey:LocationID"`

	LastSeenDate      *time.Time `json:"last_seen_date" gorm:"type:date"`
	LastChargeDate    *time.Time `json:"last_charge_date" gorm:"type:date"`
	AcquiredDate      *time.Time `json:"acquired_date" gorm:"type:date"`
	HasDedicatedCable *bool      `json:"has_dedicated_cable"`
	BoughtPlace       *string    `json:"bought_place" gorm:"size:200"`
	Variant           *string    `json:"variant" gorm:"size:200"`
	Color             *string    `json:"color" gorm:"size:100"`
	Status            *string    `json:"status" gorm:"size:100"`
	Price             *float64   `json:"price"`
	PhotoKey          *string    `json:"-" gorm:"size:300"`
}

func (Item) TableName() string { return "items" }

// Request/Response Models

// BatterySpec is the client-facing battery shape used on group upserts.
type BatterySpec struct {
	Voltage      *float64 `json:"voltage"`
	Current      *float64 `json:"current"`
	Capacity     *float64 `json:"capacity"`
	ChargingType *string  `json:"charging_type"`
}

// IsEmpty reports whether all four fields are absent.
func (s BatterySpec) IsEmpty() bool {
	return s.Voltage == nil && s.Current == nil && s.Capacity == nil && s.ChargingType == nil
}

// CreateLocationRequest represents the find-or-create location payload.
// Parent is a name, breadcrumb paths accepted.
type CreateLocationRequest struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// CreateTagRequest represents the find-or-create tag payload.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// UpsertGroupRequest creates a group, or updates one when ID is present.
type UpsertGroupRequest struct {
	ID           *uint    `json:"id"`
	Name         string   `json:"name"`
	Instruction  *string  `json:"instruction"`
	Voltage      *float64 `json:"voltage"`
	Current      *float64 `json:"current"`
	Capacity     *float64 `json:"capacity"`
	ChargingType *string  `json:"charging_type"`
	Tags         []string `json:"tags"`
}

// NameResult is the {id, name} shape returned by the search endpoints.
type NameResult struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MetaResponse backs the client bootstrap endpoint.
type MetaResponse struct {
	Groups    []NameResult  `json:"types"`
	Batteries []BatteryMeta `json:"batteries"`
}

// BatteryMeta is the battery dropdown entry: "5V 2000mAh" style label.
type BatteryMeta struct {
	ID           uint    `json:"id"`
	Label        string  `json:"label"`
	ChargingType *string `json:"charging_type"`
}
