// Package i18n translates messages into the locale of a player.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dm-vev/hikari/dsl/text"
	"github.com/pelletier/go-toml"
	"golang.org/x/text/language"
)

//go:embed lang/*.toml
var builtin embed.FS

// Catalog maps message keys to messages. Keys of nested TOML tables are joined with dots.
type Catalog map[string]string

// Translator holds catalogs for several languages.
type Translator struct {
	log      *slog.Logger
	fallback language.Tag

	mu       sync.RWMutex
	catalogs map[language.Tag]Catalog
	tags     []language.Tag
	matcher  language.Matcher
}

// New returns a translator falling back to the fallback language. It contains the built-in catalogs.
func New(fallback language.Tag, log *slog.Logger) *Translator {
	if log == nil {
		log = slog.Default()
	}
	t := &Translator{
		log:      log.With("subsystem", "i18n"),
		fallback: fallback,
		catalogs: make(map[language.Tag]Catalog),
	}
	if err := t.loadFS(builtin, "lang"); err != nil {
		// The embedded catalogs are part of the build and always parse.
		panic(err)
	}
	return t
}

// ParseLocale parses a locale such as "en_us" or "ja-JP".
func ParseLocale(locale string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

// LocaleString formats tag the way Minecraft clients report locales, such as "en_us".
func LocaleString(tag language.Tag) string {
	return strings.ToLower(strings.ReplaceAll(tag.String(), "-", "_"))
}

// Add merges c into the catalog of tag.
func (t *Translator) Add(tag language.Tag, c Catalog) {
	t.mu.Lock()
	defer t.mu.Unlock()
	dst, ok := t.catalogs[tag]
	if !ok {
		dst = make(Catalog, len(c))
		t.catalogs[tag] = dst
	}
	for k, v := range c {
		dst[k] = v
	}
	t.rebuildLocked()
}

func (t *Translator) rebuildLocked() {
	t.tags = t.tags[:0]
	for tag := range t.catalogs {
		if tag != t.fallback {
			t.tags = append(t.tags, tag)
		}
	}
	slices.SortFunc(t.tags, func(a, b language.Tag) int { return strings.Compare(a.String(), b.String()) })
	t.tags = slices.Insert(t.tags, 0, t.fallback)
	t.matcher = language.NewMatcher(t.tags)
}

// LoadTOML parses a TOML catalog and merges it into the catalog of tag.
func (t *Translator) LoadTOML(tag language.Tag, b []byte) error {
	tree, err := toml.LoadBytes(b)
	if err != nil {
		return fmt.Errorf("decode catalog %s: %w", tag, err)
	}
	c := make(Catalog)
	flatten(c, "", tree.ToMap())
	t.Add(tag, c)
	return nil
}

// LoadDir loads every <locale>.toml file in dir. A missing directory is not an error.
func (t *Translator) LoadDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return t.loadFS(os.DirFS(dir), ".")
}

func (t *Translator) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read catalogs: %w", err)
	}
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".toml")
		if e.IsDir() || !ok {
			continue
		}
		tag, err := ParseLocale(name)
		if err != nil {
			t.log.Warn("Skipping catalog with invalid locale.", "file", e.Name(), "err", err)
			continue
		}
		b, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, e.Name())))
		if err != nil {
			return fmt.Errorf("read catalog %s: %w", e.Name(), err)
		}
		if err := t.LoadTOML(tag, b); err != nil {
			return err
		}
	}
	return nil
}

func flatten(dst Catalog, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := v.(type) {
		case map[string]any:
			flatten(dst, key, v)
		case string:
			dst[key] = v
		default:
			dst[key] = fmt.Sprint(v)
		}
	}
}

// Languages returns the languages with a catalog, starting with the fallback language.
func (t *Translator) Languages() []language.Tag {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.tags)
}

// Match returns the supported language closest to locale.
func (t *Translator) Match(locale string) language.Tag {
	tag, err := ParseLocale(locale)
	if err != nil {
		return t.fallback
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, i, conf := t.matcher.Match(tag)
	if conf == language.No {
		return t.fallback
	}
	return t.tags[i]
}

// Has reports if a catalog exists for exactly the language of locale.
func (t *Translator) Has(locale string) bool {
	tag, err := ParseLocale(locale)
	if err != nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.catalogs[tag]
	return ok
}

// T returns the message for key in the language closest to locale, with placeholders filled from kv
// and colour codes translated. Missing messages fall back to the fallback language and then to key.
func (t *Translator) T(locale, key string, kv ...any) string {
	tag := t.Match(locale)
	t.mu.RLock()
	msg, ok := t.catalogs[tag][key]
	if !ok {
		msg, ok = t.catalogs[t.fallback][key]
	}
	t.mu.RUnlock()
	if !ok {
		msg = key
	}
	return text.Fill(msg, kv...)
}
