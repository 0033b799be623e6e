package i18n_test

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/kbsearch/internal/i18n"
)

func TestNew_EmbeddedResources(t *testing.T) {
	b, err := i18n.New()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "ru"}, b.Languages())
	assert.Equal(t, "en", b.Language())
	assert.Equal(t, "No data", b.T("no_data"))
	assert.Equal(t, "Show highlight", b.T("highlight.open"))

	b.SetLanguage("ru")
	assert.Equal(t, "Нет данных", b.T("no_data"))
	assert.Equal(t, "Скрыть совпадения", b.T("highlight.hide"))
}

func TestBundle_EveryLocaleHasEveryKey(t *testing.T) {
	b, err := i18n.New()
	require.NoError(t, err)

	keys := []string{
		"loading", "error_loading", "no_data", "select_locale", "select_categories",
		"enter_phrase", "knowledge_base", "id", "ext_id", "rank", "status",
		"created_at", "updated_at", "published_at", "author",
		"highlight.open", "highlight.hide", i18n.LayoutKey,
	}
	for _, lang := range b.Languages() {
		b.SetLanguage(lang)
		for _, key := range keys {
			assert.NotEqual(t, key, b.T(key), "%s missing %s", lang, key)
		}
	}
}

func TestBundle_Fallback(t *testing.T) {
	fsys := fstest.MapFS{
		"en.toml": {Data: []byte("greeting = \"Hello\"\nonly_en = \"English only\"\n")},
		"de.toml": {Data: []byte("greeting = \"Hallo\"\n")},
	}
	b, err := i18n.Load(fsys)
	require.NoError(t, err)

	b.SetLanguage("de")
	assert.Equal(t, "Hallo", b.T("greeting"))
	assert.Equal(t, "English only", b.T("only_en"))
	assert.Equal(t, "missing.key", b.T("missing.key"))

	b.SetLanguage("fr")
	assert.Equal(t, "Hello", b.T("greeting"))

	b.SetLanguage("")
	assert.Equal(t, i18n.Fallback, b.Language())
}

func TestLoad_InvalidTOML(t *testing.T) {
	_, err := i18n.Load(fstest.MapFS{"en.toml": {Data: []byte("= broken")}})
	assert.Error(t, err)
}

func TestBundle_FormatDateTime(t *testing.T) {
	b, err := i18n.New()
	require.NoError(t, err)

	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	assert.Equal(t, "03/09/2024, 02:05 PM", b.FormatDateTime(ts))
	assert.Equal(t, "N/A", b.FormatOptional(nil))

	b.SetLanguage("ru")
	assert.Equal(t, "09.03.2024, 14:05", b.FormatDateTime(ts))
	assert.Equal(t, "09.03.2024, 14:05", b.FormatOptional(&ts))
	assert.Equal(t, "Н/Д", b.FormatDateTime(time.Time{}))
}

func TestBundle_Tf(t *testing.T) {
	b, err := i18n.New()
	require.NoError(t, err)
	assert.Equal(t, "Page 2", b.Tf("page", 2))
}
