package filters

import (
	"net/url"
	"strings"
)

// Query-string parameters understood by the search view.
const (
	ParamLocale   = "locale"
	ParamCategory = "category"
	ParamSearch   = "search"
	ParamStatus   = "status"
)

// URLState is the query string the view mirrors its filters into. It plays
// the role a browser location plays for a web page: read at startup, written
// on every user change, and persisted so a later session reopens the same
// view.
type URLState struct {
	values   url.Values
	onChange func(encoded string)
}

// NewURLState returns an empty query string.
func NewURLState() *URLState {
	return &URLState{values: url.Values{}}
}

// ParseURLState parses raw, with or without a leading "?".
func ParseURLState(raw string) (*URLState, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil {
		return nil, err
	}
	return &URLState{values: values}, nil
}

// OnChange registers fn to be called with the encoded query after every
// mutation.
func (s *URLState) OnChange(fn func(encoded string)) {
	s.onChange = fn
}

// Get returns the first value of key.
func (s *URLState) Get(key string) string {
	return s.values.Get(key)
}

// Has reports whether key is present.
func (s *URLState) Has(key string) bool {
	return s.values.Has(key)
}

// Set replaces key with value. An empty value removes key.
func (s *URLState) Set(key, value string) {
	if value == "" {
		s.Delete(key)
		return
	}
	if s.values.Get(key) == value && len(s.values[key]) == 1 {
		return
	}
	s.values.Set(key, value)
	s.changed()
}

// Delete removes key.
func (s *URLState) Delete(key string) {
	if !s.values.Has(key) {
		return
	}
	s.values.Del(key)
	s.changed()
}

// Encode renders the query sorted by key. Commas are left unescaped so
// list parameters stay readable.
func (s *URLState) Encode() string {
	return strings.ReplaceAll(s.values.Encode(), "%2C", ",")
}

func (s *URLState) String() string {
	return s.Encode()
}

func (s *URLState) changed() {
	if s.onChange != nil {
		s.onChange(s.Encode())
	}
}
