package i18n

import (
	"log/slog"

	"golang.org/x/text/language"
)

// Dictionary looks up translations.
// Implementations return ok=false when bundle has no value for key in exactly
// the given locale; fallback across locales is done by the Translator.
type Dictionary interface {
	Lookup(bundle, key string, tag language.Tag) (value string, ok bool)
}

// Translator resolves Text values against a Dictionary.
// A nil *Translator, or one without a dictionary, resolves every key to its
// fallback.
type Translator struct {
	dict          Dictionary
	defaultLocale language.Tag
	logger        *slog.Logger
}

// NewTranslator returns a Translator that consults dict, trying
// defaultLocale after the requested locale's parent chain.
func NewTranslator(dict Dictionary, defaultLocale language.Tag) *Translator {
	return &Translator{
		dict:          dict,
		defaultLocale: defaultLocale,
	}
}

// WithLogger sets the logger used to report missing translations.
// If not set, slog.Default() will be used.
func (t *Translator) WithLogger(logger *slog.Logger) *Translator {
	t.logger = logger
	return t
}

// Resolve returns the text for tag.
//
// Literals are returned verbatim. Keys are looked up for tag, then for each
// parent of tag (en-GB, en-001, en), then for the default locale and its
// parents, and finally for the root locale (und). When no entry
// is found the raw string minus KeyPrefix is returned; resolution never fails.
// The result is recomputed on every call.
func (t *Translator) Resolve(text Text, tag language.Tag) string {
	bundle, key, ok := text.Key()
	if !ok {
		return text.raw
	}
	if t == nil || t.dict == nil {
		return text.Fallback()
	}

	for _, candidate := range t.chain(tag) {
		if v, found := t.dict.Lookup(bundle, key, candidate); found {
			return v
		}
	}

	t.log().Debug("missing translation",
		slog.String("bundle", bundle),
		slog.String("key", key),
		slog.String("locale", tag.String()))
	return text.Fallback()
}

// chain lists the locales tried for tag, most specific first, without
// duplicates.
func (t *Translator) chain(tag language.Tag) []language.Tag {
	var tags []language.Tag
	seen := make(map[language.Tag]bool)
	add := func(tag language.Tag) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for cur := tag; cur != language.Und; cur = cur.Parent() {
		add(cur)
	}
	for cur := t.defaultLocale; cur != language.Und; cur = cur.Parent() {
		add(cur)
	}
	add(language.Und)
	return tags
}

func (t *Translator) log() *slog.Logger {
	if t.logger == nil {
		return slog.Default()
	}
	return t.logger
}
