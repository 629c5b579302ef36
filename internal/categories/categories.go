// Package categories defines the closed set of artwork category
// identifiers and the normalization applied to free-text category input.
package categories

import "strings"

// Category pairs a stable identifier (safe for queries) with a display label.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// All is the closed category vocabulary. IDs contain no spaces; note that
// "scifi" has no hyphen while "slice-of-life" does.
var All = []Category{
	{ID: "comics", Label: "Comics"},
	{ID: "fantasy", Label: "Fantasy"},
	{ID: "scifi", Label: "Sci-Fi"},
	{ID: "horror", Label: "Horror"},
	{ID: "comedy", Label: "Comedy"},
	{ID: "slice-of-life", Label: "Slice of Life"},
	{ID: "erotic-18", Label: "Erotic (18+)"},
	{ID: "concept-art", Label: "Concept Art"},
	{ID: "digital-art", Label: "Digital Art"},
	{ID: "traditional-art", Label: "Traditional Art"},
	{ID: "3d", Label: "3D"},
	{ID: "photography", Label: "Photography"},
	{ID: "painting", Label: "Painting"},
}

// AgeRestrictedID is the category forced onto age-restricted artworks.
const AgeRestrictedID = "erotic-18"

var validIDs = func() map[string]struct{} {
	ids := make(map[string]struct{}, len(All))
	for _, c := range All {
		ids[c.ID] = struct{}{}
	}
	return ids
}()

// IsValid reports whether id is a member of the closed set.
func IsValid(id string) bool {
	_, ok := validIDs[id]
	return ok
}

// NormalizeID converts a free-text category name into id form: trimmed,
// lowercased, stripped of characters outside [a-z0-9 -], whitespace
// collapsed to hyphens. The result is not guaranteed to be a valid id.
func NormalizeID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}

// Normalize parses comma-separated free-text input into a deduplicated list
// of valid category ids. Entries that do not normalize into the closed set
// are dropped silently.
func Normalize(input string) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, 4)
	for _, part := range strings.Split(input, ",") {
		id := NormalizeID(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if IsValid(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// WithAgeRestriction appends the age-restricted category when flagged,
// keeping the list deduplicated.
func WithAgeRestriction(ids []string, ageRestricted bool) []string {
	if !ageRestricted {
		return ids
	}
	for _, id := range ids {
		if id == AgeRestrictedID {
			return ids
		}
	}
	return append(ids, AgeRestrictedID)
}
