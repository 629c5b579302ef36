package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Neon Dragon":           "neon-dragon",
		"  Spaced   Out  ":      "spaced-out",
		"Café au Lait":          "cafe-au-lait",
		"100% Legit!!!":         "100-legit",
		"already-a-slug":        "already-a-slug",
		"UPPER Case Title":      "upper-case-title",
		"émigré über naïve":     "emigre-uber-naive",
		"":                      "",
		"!!!":                   "",
		"tabs\tand\nnewlines":   "tabs-and-newlines",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}

func TestSlugifyCapsAt60(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	got := Slugify(long)
	assert.LessOrEqual(t, len(got), 60)
}

func TestNormalizeImageExt(t *testing.T) {
	cases := map[string]string{
		"photo.jpeg":   "jpg",
		"photo.JPEG":   "jpg",
		"photo.jpg":    "jpg",
		"photo.png":    "png",
		"photo.webp":   "webp",
		"photo.gif":    "jpg",
		"photo.tiff":   "jpg",
		"noextension":  "jpg",
		"trailingdot.": "jpg",
		"a.b.c.PNG":    "png",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeImageExt(input), "input %q", input)
	}
}

func TestContentTypeForExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForExt("jpg"))
	assert.Equal(t, "image/png", ContentTypeForExt(".png"))
	assert.Equal(t, "image/webp", ContentTypeForExt("webp"))
	assert.Equal(t, "application/octet-stream", ContentTypeForExt("exe"))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTags(" a , b "))
	assert.Empty(t, SplitTags(" , ,, "))
	assert.Equal(t, []string{"solo"}, SplitTags("solo"))
}

func TestDeriveUsername(t *testing.T) {
	assert.Equal(t, "janedoe", DeriveUsername("Jane Doe", "jane@example.com", "uid"))
	assert.Equal(t, "jane", DeriveUsername("", "jane@example.com", "uid"))
	assert.Equal(t, "user_abcd1234", DeriveUsername("", "", "abcd1234-5678"))
	assert.Equal(t, "user", DeriveUsername("", "", "x"))
}
