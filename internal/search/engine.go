package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"homestash/internal/auth"
	"homestash/internal/catalog"
	"homestash/internal/common"
	"homestash/internal/config"
	"homestash/pkg/textnorm"
)

const (
	maxValues  = 10
	maxRecords = 50
)

// Engine answers the per-attribute search endpoints and the advanced
// multi-predicate query. Every path filters for visibility before matching.
type Engine struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewEngine creates a new search engine
func NewEngine(db *gorm.DB, cfg *config.Config) *Engine {
	return &Engine{db: db, cfg: cfg}
}

// Value is one autocomplete entry: the raw value as id, its display label.
type Value struct {
	ID    interface{} `json:"id"`
	Label string      `json:"label"`
}

type fieldKind int

const (
	// kindString matches by normalized substring and sorts by label.
	kindString fieldKind = iota
	// kindNumber matches by string-representation substring (ranges only
	// exist on the advanced endpoint) and sorts numerically ascending.
	kindNumber
	// kindDate matches by ISO-string substring and sorts descending, most
	// recent first.
	kindDate
	// kindExact matches the whole label, used for ids.
	kindExact
)

type attribute struct {
	kind   fieldKind
	values func(ix catalog.Index, item *catalog.Item) []Value
}

// attributeOrder fixes route registration order.
var attributeOrder = []string{
	"tag", "location", "group",
	"voltage", "current", "capacity", "charging-type",
	"bought-place", "variant", "color", "status", "price",
	"last-seen", "last-use", "last-charge", "acquired",
	"id", "group-id",
}

var attributes = map[string]attribute{
	"tag": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		var values []Value
		for _, tag := range item.Group.Tags {
			values = append(values, Value{ID: tag.ID, Label: tag.Name})
		}
		return values
	}},
	"location": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return []Value{{ID: item.LocationID, Label: ix.Path(item.LocationID)}}
	}},
	"group": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return []Value{{ID: item.GroupID, Label: item.Group.Name}}
	}},
	"voltage": {kind: kindNumber, values: func(ix catalog.Index, item *catalog.Item) []Value {
		if item.Group.Battery == nil {
			return nil
		}
		return numberValue(item.Group.Battery.Voltage)
	}},
	"current": {kind: kindNumber, values: func(ix catalog.Index, item *catalog.Item) []Value {
		if item.Group.Battery == nil {
			return nil
		}
		return numberValue(item.Group.Battery.Current)
	}},
	"capacity": {kind: kindNumber, values: func(ix catalog.Index, item *catalog.Item) []Value {
		if item.Group.Battery == nil {
			return nil
		}
		return numberValue(item.Group.Battery.Capacity)
	}},
	"charging-type": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		if item.Group.Battery == nil {
			return nil
		}
		return stringValue(item.Group.Battery.ChargingType)
	}},
	"bought-place": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return stringValue(item.BoughtPlace)
	}},
	"variant": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return stringValue(item.Variant)
	}},
	"color": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return stringValue(item.Color)
	}},
	"status": {kind: kindString, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return stringValue(item.Status)
	}},
	"price": {kind: kindNumber, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return numberValue(item.Price)
	}},
	"last-seen": {kind: kindDate, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return dateValue(item.LastSeenDate)
	}},
	// last-use and last-charge are two route names over the one column
	"last-use": {kind: kindDate, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return dateValue(item.LastChargeDate)
	}},
	"last-charge": {kind: kindDate, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return dateValue(item.LastChargeDate)
	}},
	"acquired": {kind: kindDate, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return dateValue(item.AcquiredDate)
	}},
	"id": {kind: kindExact, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return []Value{{ID: item.ID, Label: strconv.FormatUint(uint64(item.ID), 10)}}
	}},
	"group-id": {kind: kindExact, values: func(ix catalog.Index, item *catalog.Item) []Value {
		return []Value{{ID: item.GroupID, Label: strconv.FormatUint(uint64(item.GroupID), 10)}}
	}},
}

// AttributeNames lists the supported attribute endpoints in route order.
func AttributeNames() []string {
	return attributeOrder
}

func stringValue(s *string) []Value {
	if s == nil || *s == "" {
		return nil
	}
	return []Value{{ID: *s, Label: *s}}
}

func numberValue(v *float64) []Value {
	if v == nil {
		return nil
	}
	return []Value{{ID: *v, Label: common.FormatFloat(*v)}}
}

func dateValue(t *time.Time) []Value {
	if t == nil {
		return nil
	}
	label := t.Format(common.DateLayout)
	return []Value{{ID: label, Label: label}}
}

// visibleItems loads every item aggregate and drops the ones the caller may
// not see. The location index rides along for breadcrumb assembly.
func (e *Engine) visibleItems(principal auth.Principal) ([]catalog.Item, catalog.Index, error) {
	var items []catalog.Item
	err := e.db.
		Preload("Group.Battery").
		Preload("Group.Tags").
		Preload("Location").
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load items: %w", err)
	}

	ix, err := catalog.LoadLocationIndex(e.db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load locations: %w", err)
	}

	visible := make([]catalog.Item, 0, len(items))
	for i := range items {
		if catalog.GroupVisible(&items[i].Group, e.cfg.RestrictedMarker, principal) {
			visible = append(visible, items[i])
		}
	}
	return visible, ix, nil
}

func valueMatches(kind fieldKind, value Value, query string) bool {
	if kind == kindExact {
		return value.Label == query
	}
	return textnorm.Contains(value.Label, query)
}

// SearchAttribute returns assembled items whose attribute matches the query.
// A blank query matches nothing here; listing everything is the advanced
// endpoint's job.
func (e *Engine) SearchAttribute(name, query string, principal auth.Principal) ([]ItemView, error) {
	attr, ok := attributes[name]
	if !ok {
		return nil, common.NewValidationError("unknown search attribute %q", name)
	}

	results := []ItemView{}
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	items, ix, err := e.visibleItems(principal)
	if err != nil {
		return nil, err
	}

	for i := range items {
		matched := false
		for _, value := range attr.values(ix, &items[i]) {
			if valueMatches(attr.kind, value, query) {
				matched = true
				break
			}
		}
		if matched {
			results = append(results, AssembleItem(&items[i], ix))
			if len(results) == maxRecords {
				break
			}
		}
	}
	return results, nil
}

// AttributeValues returns the distinct value set of one attribute across
// visible (and query-filtered) records, capped for type-ahead.
func (e *Engine) AttributeValues(name, query string, principal auth.Principal) ([]Value, error) {
	attr, ok := attributes[name]
	if !ok {
		return nil, common.NewValidationError("unknown search attribute %q", name)
	}

	items, ix, err := e.visibleItems(principal)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	distinct := []Value{}
	seen := make(map[string]bool)

	for i := range items {
		for _, value := range attr.values(ix, &items[i]) {
			if query != "" && !valueMatches(attr.kind, value, query) {
				continue
			}
			if seen[value.Label] {
				continue
			}
			seen[value.Label] = true
			distinct = append(distinct, value)
		}
	}

	sortValues(attr.kind, distinct)
	if len(distinct) > maxValues {
		distinct = distinct[:maxValues]
	}
	return distinct, nil
}

func sortValues(kind fieldKind, values []Value) {
	switch kind {
	case kindNumber, kindExact:
		sort.Slice(values, func(i, j int) bool { return numericOf(values[i]) < numericOf(values[j]) })
	case kindDate:
		// most recent first; ISO strings order lexically
		sort.Slice(values, func(i, j int) bool { return values[i].Label > values[j].Label })
	default:
		sort.Slice(values, func(i, j int) bool {
			return textnorm.Fold(values[i].Label) < textnorm.Fold(values[j].Label)
		})
	}
}

func numericOf(value Value) float64 {
	switch n := value.ID.(type) {
	case float64:
		return n
	case uint:
		return float64(n)
	default:
		parsed, _ := strconv.ParseFloat(value.Label, 64)
		return parsed
	}
}

// AdvancedQuery is the one place with genuine range predicates: price bounds
// and a last-seen date window, plus a partial tag match. All optional; no
// predicates at all returns every visible item.
type AdvancedQuery struct {
	PriceMin   *float64
	PriceMax   *float64
	After      *time.Time
	Before     *time.Time
	TagPartial string
}

// Advanced applies the combined predicates over visible items.
func (e *Engine) Advanced(query AdvancedQuery, principal auth.Principal) ([]ItemView, error) {
	items, ix, err := e.visibleItems(principal)
	if err != nil {
		return nil, err
	}

	results := []ItemView{}
	for i := range items {
		if !advancedMatch(&items[i], query) {
			continue
		}
		results = append(results, AssembleItem(&items[i], ix))
		if len(results) == maxRecords {
			break
		}
	}
	return results, nil
}

func advancedMatch(item *catalog.Item, query AdvancedQuery) bool {
	if query.PriceMin != nil && (item.Price == nil || *item.Price < *query.PriceMin) {
		return false
	}
	if query.PriceMax != nil && (item.Price == nil || *item.Price > *query.PriceMax) {
		return false
	}
	if query.After != nil && (item.LastSeenDate == nil || item.LastSeenDate.Before(*query.After)) {
		return false
	}
	if query.Before != nil && (item.LastSeenDate == nil || item.LastSeenDate.After(*query.Before)) {
		return false
	}
	if partial := strings.TrimSpace(query.TagPartial); partial != "" {
		matched := false
		for _, tag := range item.Group.Tags {
			if textnorm.Contains(tag.Name, partial) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
