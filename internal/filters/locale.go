package filters

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// UnknownLocale labels codes that do not name a language.
const UnknownLocale = "Unknown"

// LocaleLabel returns the name of a language in that language, title-cased:
// "en" is "English", "ru" is "Русский".
func LocaleLabel(code string) string {
	tag, err := language.Parse(code)
	if err != nil || tag == language.Und {
		return UnknownLocale
	}
	name := display.Self.Name(tag)
	if name == "" {
		return UnknownLocale
	}
	return cases.Title(tag).String(name)
}
