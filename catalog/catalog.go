// Package catalog provides the localized messages of the decimal changer.
//
// Messages are read from an embedded TOML file and registered in a
// golang.org/x/text catalog; numbers are formatted according to the locale.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/etnz/moredecimal"
	"github.com/etnz/moredecimal/date"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	textcatalog "golang.org/x/text/message/catalog"
)

// DefaultLocale is used when no locale is requested.
const DefaultLocale = "en"

// ErrUnknownLocale is returned for a locale that has no messages.
var ErrUnknownLocale = errors.New("unsupported locale")

//go:embed messages.toml
var messagesTOML []byte

// locale is the content of one locale table of messages.toml.
type locale struct {
	DateLayout string            `toml:"date_layout"`
	Plural     string            `toml:"plural"`
	Messages   map[string]string `toml:"messages"`
}

// bundle holds every locale, decoded once.
type bundle struct {
	locales map[string]locale
	tags    []language.Tag
	names   []string // same order as tags
	matcher language.Matcher
	builder *textcatalog.Builder
}

var load = sync.OnceValues(func() (*bundle, error) {
	var locales map[string]locale
	if _, err := toml.Decode(string(messagesTOML), &locales); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}
	b := &bundle{
		locales: locales,
		builder: textcatalog.NewBuilder(textcatalog.Fallback(language.MustParse(DefaultLocale))),
	}
	for name := range locales {
		b.names = append(b.names, name)
	}
	slices.Sort(b.names)
	// The default locale comes first: it is the matcher's fallback.
	if i := slices.Index(b.names, DefaultLocale); i > 0 {
		b.names = slices.Delete(b.names, i, i+1)
		b.names = slices.Insert(b.names, 0, DefaultLocale)
	}
	for _, name := range b.names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", name, err)
		}
		b.tags = append(b.tags, tag)
		for key, msg := range locales[name].Messages {
			if err := b.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %q: message %q: %w", name, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
})

// Locales returns the supported locale names, default first.
func Locales() []string {
	b, err := load()
	if err != nil {
		return nil
	}
	return slices.Clone(b.names)
}

// Catalog formats the messages of one locale. It implements moredecimal.Catalog.
type Catalog struct {
	name    string
	printer *message.Printer
	loc     locale
}

// New returns the catalog for locale, like "en" or "fr-FR". An empty locale
// selects DefaultLocale.
func New(name string) (*Catalog, error) {
	b, err := load()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = DefaultLocale
	}
	tag, err := language.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", name, err)
	}
	_, i, confidence := b.matcher.Match(tag)
	if confidence == language.No {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownLocale, name, b.names)
	}
	return &Catalog{
		name:    b.names[i],
		printer: message.NewPrinter(b.tags[i], message.Catalog(b.builder)),
		loc:     b.locales[b.names[i]],
	}, nil
}

// Locale returns the name of the locale in use.
func (c *Catalog) Locale() string { return c.name }

// Sprintf formats the message registered under key. An unknown key is used as
// the format itself.
func (c *Catalog) Sprintf(key moredecimal.Key, args ...any) string {
	return c.printer.Sprintf(string(key), args...)
}

// Date formats d with the locale's medium date layout.
func (c *Catalog) Date(d date.Date) string {
	return d.Format(c.loc.DateLayout)
}

// Plural returns the plural marker for n, empty when n == 1.
func (c *Catalog) Plural(n int) string {
	if n == 1 {
		return ""
	}
	return c.loc.Plural
}

var _ moredecimal.Catalog = (*Catalog)(nil)
