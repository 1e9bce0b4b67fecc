package apigen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/broady/apidesc"
)

// DefaultConfigFile is the configuration file name looked up by the apidesc
// command.
const DefaultConfigFile = "apidesc.yaml"

// LocalePlaceholder is replaced by the locale tag in Config.FilePattern.
const LocalePlaceholder = "{locale}"

// Config holds the configuration for description generation.
type Config struct {
	// ID is the API description identifier. Required.
	ID string `yaml:"id" validate:"required"`

	// Version is the API version.
	Version string `yaml:"version"`

	// Description is the API description text. It may be a translation key.
	Description string `yaml:"description"`

	// Locales are the locales to render, one document each.
	// Default: [DefaultLocale]
	Locales []string `yaml:"locales" validate:"dive,required"`

	// DefaultLocale is tried after a locale's own parent chain when
	// resolving translation keys.
	// Default: "en"
	DefaultLocale string `yaml:"default_locale"`

	// BundleDir is a directory of YAML translation bundles, one file per
	// bundle. Optional.
	BundleDir string `yaml:"bundle_dir"`

	// OutDir is the directory where documents are written by ToDir.
	OutDir string `yaml:"out_dir"`

	// FilePattern names each document. It must contain {locale} when more
	// than one locale is rendered.
	// Default: "api.{locale}.json"
	FilePattern string `yaml:"file_pattern"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads a YAML configuration file. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration data.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Copy to avoid mutating the input.
	result := *cfg

	if result.DefaultLocale == "" {
		result.DefaultLocale = "en"
	}
	if len(result.Locales) == 0 {
		result.Locales = []string{result.DefaultLocale}
	}
	if result.FilePattern == "" {
		result.FilePattern = "api." + LocalePlaceholder + ".json"
	}
	return &result
}

// resolved is a validated Config with parsed locales.
type resolved struct {
	*Config
	locales       []language.Tag
	defaultLocale language.Tag
}

func (cfg *Config) resolve() (*resolved, error) {
	cfg = applyConfigDefaults(cfg)
	if err := validate.Struct(cfg); err != nil {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			return nil, apidesc.Configurationf("config: %s is %s", valErrs[0].Namespace(), valErrs[0].Tag())
		}
		return nil, err
	}

	r := &resolved{Config: cfg}
	var err error
	if r.defaultLocale, err = language.Parse(cfg.DefaultLocale); err != nil {
		return nil, apidesc.Configurationf("config: invalid default locale %q: %v", cfg.DefaultLocale, err)
	}

	seen := make(map[language.Tag]bool)
	for _, l := range cfg.Locales {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, apidesc.Configurationf("config: invalid locale %q: %v", l, err)
		}
		if seen[tag] {
			return nil, apidesc.Configurationf("config: duplicate locale %q", l)
		}
		seen[tag] = true
		r.locales = append(r.locales, tag)
	}

	if len(r.locales) > 1 && !strings.Contains(cfg.FilePattern, LocalePlaceholder) {
		return nil, apidesc.Configurationf("config: file pattern %q must contain %s when rendering %d locales",
			cfg.FilePattern, LocalePlaceholder, len(r.locales))
	}
	return r, nil
}

// fileName returns the document name for tag.
func (r *resolved) fileName(tag language.Tag) string {
	return strings.ReplaceAll(r.FilePattern, LocalePlaceholder, tag.String())
}
