package search

import (
	"fmt"

	"homestash/internal/catalog"
	"homestash/internal/common"
)

// BatteryView is the battery sub-object of an assembled item.
type BatteryView struct {
	ID           uint     `json:"id"`
	Voltage      *float64 `json:"voltage"`
	Current      *float64 `json:"current"`
	Capacity     *float64 `json:"capacity"`
	ChargingType *string  `json:"charging_type"`
}

// ItemView is the flat external projection of an item aggregate: group and
// battery folded in, tags as names, location as a full breadcrumb, dates ISO.
type ItemView struct {
	ID                uint         `json:"id"`
	Group             string       `json:"group"`
	GroupID           uint         `json:"group_id"`
	Instruction       *string      `json:"instruction"`
	Battery           *BatteryView `json:"battery"`
	Tags              []string     `json:"tags"`
	Location          string       `json:"location"`
	LastSeenDate      *string      `json:"last_seen_date"`
	LastChargeDate    *string      `json:"last_charge_date"`
	AcquiredDate      *string      `json:"acquired_date"`
	HasDedicatedCable *bool        `json:"has_dedicated_cable"`
	BoughtPlace       *string      `json:"bought_place"`
	Variant           *string      `json:"variant"`
	Color             *string      `json:"color"`
	Status            *string      `json:"status"`
	Price             *float64     `json:"price"`
	PhotoURL          *string      `json:"photo_url,omitempty"`
}

// AssembleItem projects a fully loaded item. Pure and total: no queries, no
// side effects.
func AssembleItem(item *catalog.Item, ix catalog.Index) ItemView {
	view := ItemView{
		ID:                item.ID,
		Group:             item.Group.Name,
		GroupID:           item.GroupID,
		Instruction:       item.Group.Instruction,
		Tags:              []string{},
		Location:          ix.Path(item.LocationID),
		LastSeenDate:      common.FormatDate(item.LastSeenDate),
		LastChargeDate:    common.FormatDate(item.LastChargeDate),
		AcquiredDate:      common.FormatDate(item.AcquiredDate),
		HasDedicatedCable: item.HasDedicatedCable,
		BoughtPlace:       item.BoughtPlace,
		Variant:           item.Variant,
		Color:             item.Color,
		Status:            item.Status,
		Price:             item.Price,
	}

	for _, tag := range item.Group.Tags {
		view.Tags = append(view.Tags, tag.Name)
	}

	if item.Group.Battery != nil {
		view.Battery = &BatteryView{
			ID:           item.Group.Battery.ID,
			Voltage:      item.Group.Battery.Voltage,
			Current:      item.Group.Battery.Current,
			Capacity:     item.Group.Battery.Capacity,
			ChargingType: item.Group.Battery.ChargingType,
		}
	}

	if item.PhotoKey != nil {
		url := fmt.Sprintf("/api/items/%d/photo", item.ID)
		view.PhotoURL = &url
	}

	return view
}
