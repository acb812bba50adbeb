package models

import "time"

// Viewable is anything guarded by the visibility policy.
type Viewable interface {
	Owner() string
	Level() Visibility
}

// CanView reports whether viewer may see e. PUBLIC content is visible to
// everyone; PRIVATE and SHARED content only to its owner. A nil viewer is
// anonymous.
func CanView(e Viewable, viewer *User) bool {
	if e.Level() == VisibilityPublic {
		return true
	}
	return viewer != nil && viewer.Username != "" && viewer.Username == e.Owner()
}

// PublishedAt returns the date_published value a save with visibility v
// must persist. It is set once, on the first PUBLIC save, and never cleared.
func PublishedAt(v Visibility, current *time.Time, now time.Time) *time.Time {
	if current != nil || v != VisibilityPublic {
		return current
	}
	t := now
	return &t
}
