package i18n

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"
)

func TestText_Key(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantBundle string
		wantKey    string
		wantOK     bool
		fallback   string
	}{
		{"literal", "My Description", "", "", false, "My Description"},
		{"bundled key", "i18n:api-dictionary#description_test", "api-dictionary", "description_test", true, "api-dictionary#description_test"},
		{"bare key", "i18n:key", DefaultBundle, "key", true, "key"},
		{"empty bundle", "i18n:#key", DefaultBundle, "#key", true, "#key"},
		{"empty", "", "", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := Wrap(tt.raw)
			if text.Raw() != tt.raw {
				t.Errorf("Raw() = %q, want %q", text.Raw(), tt.raw)
			}
			bundle, key, ok := text.Key()
			if ok != tt.wantOK || bundle != tt.wantBundle || key != tt.wantKey {
				t.Errorf("Key() = (%q, %q, %v), want (%q, %q, %v)", bundle, key, ok, tt.wantBundle, tt.wantKey, tt.wantOK)
			}
			if got := text.Fallback(); got != tt.fallback {
				t.Errorf("Fallback() = %q, want %q", got, tt.fallback)
			}
		})
	}
}

func newTestCatalog() *Catalog {
	c := NewCatalog()
	c.Set(DefaultBundle, language.English, "key", "english")
	c.Set(DefaultBundle, language.French, "key", "français")
	c.Set(DefaultBundle, language.MustParse("en-GB"), "colour", "colour")
	c.Set(DefaultBundle, language.English, "colour", "color")
	c.Set(DefaultBundle, language.German, "only-de", "nur deutsch")
	c.Set(DefaultBundle, language.Und, "root-only", "root")
	return c
}

func TestTranslator_Resolve(t *testing.T) {
	tr := NewTranslator(newTestCatalog(), language.German)

	tests := []struct {
		name   string
		raw    string
		locale language.Tag
		want   string
	}{
		{"exact locale", "i18n:key", language.French, "français"},
		{"other locale", "i18n:key", language.English, "english"},
		{"parent chain", "i18n:key", language.MustParse("en-US"), "english"},
		{"most specific wins", "i18n:colour", language.MustParse("en-GB"), "colour"},
		{"parent for regional", "i18n:colour", language.MustParse("en-AU"), "color"},
		{"default locale", "i18n:only-de", language.French, "nur deutsch"},
		{"root locale", "i18n:root-only", language.Japanese, "root"},
		{"missing key falls back", "i18n:missing", language.French, "missing"},
		{"missing bundle falls back", "i18n:other#key", language.French, "other#key"},
		{"literal ignores locale", "key", language.French, "key"},
		{"literal with colon", "note: key", language.English, "note: key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Resolve(Wrap(tt.raw), tt.locale); got != tt.want {
				t.Errorf("Resolve(%q, %s) = %q, want %q", tt.raw, tt.locale, got, tt.want)
			}
		})
	}
}

func TestTranslator_ResolveIsRecomputed(t *testing.T) {
	tr := NewTranslator(newTestCatalog(), language.Und)
	text := Wrap("i18n:key")

	for i := 0; i < 2; i++ {
		if got := tr.Resolve(text, language.French); got != "français" {
			t.Fatalf("round %d: fr = %q", i, got)
		}
		if got := tr.Resolve(text, language.English); got != "english" {
			t.Fatalf("round %d: en = %q", i, got)
		}
	}
	if text.Raw() != "i18n:key" {
		t.Errorf("raw value changed: %q", text.Raw())
	}
}

func TestTranslator_Nil(t *testing.T) {
	var tr *Translator
	if got := tr.Resolve(Wrap("i18n:bundle#key"), language.English); got != "bundle#key" {
		t.Errorf("nil translator = %q", got)
	}
	if got := NewTranslator(nil, language.English).Resolve(Wrap("i18n:key"), language.English); got != "key" {
		t.Errorf("no dictionary = %q", got)
	}
}

func TestCatalog_LoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"api-dictionary.yaml": &fstest.MapFile{Data: []byte(`
en:
  description_test: If you see this it has been translated
fr:
  description_test: Si vous voyez ceci, c'est traduit
`)},
		"extra.yml":  &fstest.MapFile{Data: []byte("en:\n  hello: Hello\n")},
		"README.md":  &fstest.MapFile{Data: []byte("ignored")},
		"sub/x.yaml": &fstest.MapFile{Data: []byte("en:\n  nested: ignored\n")},
	}

	c := NewCatalog()
	if err := c.LoadFS(fsys); err != nil {
		t.Fatalf("LoadFS: %v", err)
	}

	if got := c.Bundles(); strings.Join(got, ",") != "api-dictionary,extra" {
		t.Errorf("Bundles() = %v", got)
	}

	tr := NewTranslator(c, language.English)
	got := tr.Resolve(Wrap("i18n:api-dictionary#description_test"), language.English)
	if got != "If you see this it has been translated" {
		t.Errorf("en = %q", got)
	}
	got = tr.Resolve(Wrap("i18n:api-dictionary#description_test"), language.MustParse("fr-CA"))
	if got != "Si vous voyez ceci, c'est traduit" {
		t.Errorf("fr-CA = %q", got)
	}
	if got := tr.Resolve(Wrap("i18n:extra#hello"), language.Spanish); got != "Hello" {
		t.Errorf("default locale fallback = %q", got)
	}
}

func TestCatalog_AddBundleErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"invalid yaml", "en: [unclosed", "bundle b"},
		{"invalid locale", "not a locale!:\n  k: v\n", "invalid locale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCatalog().AddBundle("b", []byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("de:\n  key: deutsch\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if v, ok := c.Lookup(DefaultBundle, "key", language.German); !ok || v != "deutsch" {
		t.Errorf("Lookup = %q, %v", v, ok)
	}

	if _, err := LoadDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
