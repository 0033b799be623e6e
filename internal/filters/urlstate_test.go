package filters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/kbsearch/internal/filters"
)

func TestParseURLState(t *testing.T) {
	s, err := filters.ParseURLState("?search=foo+bar&category=3,7")
	require.NoError(t, err)

	assert.Equal(t, "foo bar", s.Get("search"))
	assert.Equal(t, "3,7", s.Get("category"))
	assert.Equal(t, "category=3,7&search=foo+bar", s.Encode())
}

func TestParseURLState_Invalid(t *testing.T) {
	_, err := filters.ParseURLState("search=%zz")
	assert.Error(t, err)
}

func TestURLState_OnChange(t *testing.T) {
	s := filters.NewURLState()
	var seen []string
	s.OnChange(func(encoded string) { seen = append(seen, encoded) })

	s.Set("locale", "en")
	s.Set("locale", "en")
	s.Set("search", "x")
	s.Delete("missing")
	s.Set("locale", "")

	assert.Equal(t, []string{"locale=en", "locale=en&search=x", "search=x"}, seen)
}

func TestLocaleLabel(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"ru", "Русский"},
		{"", filters.UnknownLocale},
		{"not a tag", filters.UnknownLocale},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, filters.LocaleLabel(tt.code))
		})
	}
}
