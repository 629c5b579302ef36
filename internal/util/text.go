package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a title into a URL-safe slug: lowercase, diacritics
// stripped, anything outside [a-z0-9 -] removed, whitespace collapsed to
// hyphens, capped at 60 characters.
func Slugify(s string) string {
	s = strings.ToLower(s)

	// Strip combining marks after canonical decomposition
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = strings.TrimSpace(b.String())
	s = strings.Join(strings.Fields(s), "-")
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}

// NormalizeImageExt derives a storage extension from an uploaded filename.
// jpeg collapses to jpg; anything outside the known set falls back to jpg
// regardless of the actual content type.
func NormalizeImageExt(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return "jpg"
	}
	ext := strings.ToLower(filename[idx+1:])
	switch ext {
	case "jpeg":
		return "jpg"
	case "png", "jpg", "webp":
		return ext
	default:
		return "jpg"
	}
}

// ContentTypeForExt returns the MIME type for a normalized image extension.
func ContentTypeForExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// SplitTags parses a comma-separated tag string, trimming whitespace and
// dropping empty entries.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// DeriveUsername builds a fallback username from a display name or email
// local-part when the profile has none.
func DeriveUsername(displayName, email, uid string) string {
	if displayName != "" {
		return strings.ToLower(strings.Join(strings.Fields(displayName), ""))
	}
	if at := strings.Index(email, "@"); at > 0 {
		return strings.ToLower(email[:at])
	}
	if len(uid) >= 8 {
		return "user_" + uid[:8]
	}
	return "user"
}
