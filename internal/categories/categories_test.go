package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDropsUnknownAndDedupes(t *testing.T) {
	// "Sci Fi" normalizes to "sci-fi", which is not in the vocabulary
	// (the valid id is "scifi"), so it is dropped silently.
	got := Normalize("Digital Art, Sci Fi, made-up-category")
	assert.Equal(t, []string{"digital-art"}, got)
}

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"  Digital Art ":   "digital-art",
		"Slice of Life":    "slice-of-life",
		"3D":               "3d",
		"Erotic (18+)":     "erotic-18",
		"CONCEPT   ART":    "concept-art",
		"painting!!!":      "painting",
		"":                 "",
		"???":              "",
		"trad-itional art": "trad-itional-art",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeID(input), "input %q", input)
	}
}

func TestNormalizeDedupes(t *testing.T) {
	got := Normalize("horror, Horror, HORROR, fantasy")
	assert.Equal(t, []string{"horror", "fantasy"}, got)
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(""))
	assert.Empty(t, Normalize(" , , "))
	assert.Empty(t, Normalize("nothing-valid-here"))
}

func TestWithAgeRestriction(t *testing.T) {
	got := WithAgeRestriction([]string{"horror"}, true)
	assert.Equal(t, []string{"horror", "erotic-18"}, got)

	// Already present: no duplicate
	got = WithAgeRestriction([]string{"erotic-18"}, true)
	assert.Equal(t, []string{"erotic-18"}, got)

	// Not flagged: unchanged
	got = WithAgeRestriction([]string{"horror"}, false)
	assert.Equal(t, []string{"horror"}, got)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("scifi"))
	assert.False(t, IsValid("sci-fi"))
	assert.True(t, IsValid("slice-of-life"))
	assert.False(t, IsValid("sliceoflife"))
	assert.False(t, IsValid(""))
}

func TestAllHasStableSize(t *testing.T) {
	assert.Len(t, All, 13)
	for _, c := range All {
		assert.True(t, IsValid(c.ID))
		assert.NotEmpty(t, c.Label)
	}
}
