package catalog

import (
	"strings"

	"gorm.io/gorm"
)

// PathSeparator joins location names into breadcrumb paths, root first:
// "House > Room > Drawer".
const PathSeparator = " > "

// TerminalName returns the last segment of a possibly breadcrumb-formatted
// location input, trimmed. A plain name passes through unchanged.
func TerminalName(path string) string {
	segments := strings.Split(path, ">")
	return strings.TrimSpace(segments[len(segments)-1])
}

// ParentSegment returns the second-to-last segment of a breadcrumb path, or
// "" when the input has a single segment. Used to disambiguate a terminal
// name supplied as a display path.
func ParentSegment(path string) string {
	segments := strings.Split(path, ">")
	if len(segments) < 2 {
		return ""
	}
	return strings.TrimSpace(segments[len(segments)-2])
}

// Index holds the whole location tree keyed by id so ancestor walks are
// explicit loops over parent ids rather than per-row queries.
type Index map[uint]*Location

// LoadLocationIndex reads every location into an Index.
func LoadLocationIndex(db *gorm.DB) (Index, error) {
	var locations []Location
	if err := db.Find(&locations).Error; err != nil {
		return nil, err
	}

	ix := make(Index, len(locations))
	for i := range locations {
		ix[locations[i].ID] = &locations[i]
	}
	return ix, nil
}

// Path formats the breadcrumb for a location id, walking the parent chain to
// the root. The visited set bounds the walk even if stored data ever carried
// a cycle.
func (ix Index) Path(id uint) string {
	var names []string
	visited := make(map[uint]bool)

	for loc := ix[id]; loc != nil; {
		if visited[loc.ID] {
			break
		}
		visited[loc.ID] = true
		names = append(names, loc.Name)

		if loc.ParentID == nil {
			break
		}
		loc = ix[*loc.ParentID]
	}

	// collected leaf-to-root, breadcrumbs read root-to-leaf
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, PathSeparator)
}

// IsAncestor reports whether ancestorID appears in the parent chain of id.
// Used to reject parent assignments that would close a cycle.
func (ix Index) IsAncestor(ancestorID, id uint) bool {
	visited := make(map[uint]bool)
	for loc := ix[id]; loc != nil; {
		if loc.ID == ancestorID {
			return true
		}
		if visited[loc.ID] {
			break
		}
		visited[loc.ID] = true
		if loc.ParentID == nil {
			break
		}
		loc = ix[*loc.ParentID]
	}
	return false
}
