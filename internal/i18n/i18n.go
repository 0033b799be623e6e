// Package i18n serves interface strings from TOML resource files, one per
// locale, embedded in the binary.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Fallback is the language consulted for keys missing from the active one.
const Fallback = "en"

// LayoutKey names the resource holding a locale's Go time layout.
const LayoutKey = "datetime_layout"

//go:embed locales/*.toml
var resources embed.FS

// Bundle holds the flattened messages of every loaded locale.
type Bundle struct {
	mu       sync.RWMutex
	lang     string
	messages map[string]map[string]string
}

// New loads the embedded resources.
func New() (*Bundle, error) {
	sub, err := fs.Sub(resources, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every <code>.toml file at the root of fsys.
func Load(fsys fs.FS) (*Bundle, error) {
	files, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return nil, err
	}

	b := &Bundle{lang: Fallback, messages: make(map[string]map[string]string)}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		flat := make(map[string]string)
		flatten("", doc, flat)
		b.messages[strings.TrimSuffix(path.Base(name), ".toml")] = flat
	}
	return b, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// SetLanguage switches the active language. Codes without resources are
// accepted; their lookups fall back.
func (b *Bundle) SetLanguage(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if code == "" {
		code = Fallback
	}
	b.lang = code
}

// Language returns the active language code.
func (b *Bundle) Language() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lang
}

// Languages lists the codes that have resources.
func (b *Bundle) Languages() []string {
	codes := make([]string, 0, len(b.messages))
	for code := range b.messages {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// T returns the message for key in the active language, then in the
// fallback language, then key itself.
func (b *Bundle) T(key string) string {
	b.mu.RLock()
	lang := b.lang
	b.mu.RUnlock()

	if msg, ok := b.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := b.messages[Fallback][key]; ok {
		return msg
	}
	return key
}

// Tf formats the message for key with args.
func (b *Bundle) Tf(key string, args ...any) string {
	return fmt.Sprintf(b.T(key), args...)
}

// FormatDateTime renders t with the active locale's layout. The zero time
// renders as "na".
func (b *Bundle) FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return b.T("na")
	}
	return t.Local().Format(b.T(LayoutKey))
}

// FormatOptional is FormatDateTime for optional timestamps.
func (b *Bundle) FormatOptional(t *time.Time) string {
	if t == nil {
		return b.T("na")
	}
	return b.FormatDateTime(*t)
}
