package catalog

import (
	"homestash/internal/auth"
	"homestash/pkg/textnorm"
)

// TagsRestricted reports whether any tag carries the restricted marker as a
// normalized substring.
func TagsRestricted(tags []Tag, marker string) bool {
	if marker == "" {
		return false
	}
	for _, tag := range tags {
		if textnorm.Contains(tag.Name, marker) {
			return true
		}
	}
	return false
}

// GroupVisible decides whether a group (and by extension its items) is shown
// to the caller. Restricted content needs both the privileged principal and
// the elevated request signal; everything else is public.
func GroupVisible(group *ItemGroup, marker string, principal auth.Principal) bool {
	if !TagsRestricted(group.Tags, marker) {
		return true
	}
	return principal.CanSeeRestricted()
}
