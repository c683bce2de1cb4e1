// Package i18n maps message keys to localized prompt variants.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Message keys used by the skill.
const (
	KeyEntry           = "entry"
	KeyNeedName        = "need-name"
	KeyNeedDescription = "need-description"
	KeyWorking         = "working"
	KeyHelp            = "help"
	KeyError           = "error"
	KeyGenericReprompt = "generic-reprompt"
	KeyExit            = "exit"
)

//go:embed resources/*.yaml
var embedded embed.FS

// Selector picks one variant out of a non-empty list.
type Selector interface {
	Pick(variants []string) string
}

// RandomSelector picks uniformly at random.
type RandomSelector struct{}

func (RandomSelector) Pick(variants []string) string {
	return variants[rand.IntN(len(variants))]
}

// FirstSelector always picks the first variant.
type FirstSelector struct{}

func (FirstSelector) Pick(variants []string) string { return variants[0] }

// SelectorByName returns the selection strategy configured by name.
func SelectorByName(name string) (Selector, error) {
	switch name {
	case "", "random":
		return RandomSelector{}, nil
	case "first":
		return FirstSelector{}, nil
	default:
		return nil, fmt.Errorf("i18n: unknown selection strategy %q", name)
	}
}

type catalog map[string][]string

// Localizer resolves (key, locale) to one of the key's variants.
type Localizer struct {
	catalogs map[language.Tag]catalog
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
	selector Selector
	log      *zap.Logger
}

// New loads the embedded resources.
func New(fallback string, selector Selector, log *zap.Logger) (*Localizer, error) {
	return NewFromFS(embedded, "resources", fallback, selector, log)
}

// NewFromFS loads every <locale>.yaml under dir. The fallback locale must be present.
func NewFromFS(fsys fs.FS, dir, fallback string, selector Selector, log *zap.Logger) (*Localizer, error) {
	fallbackTag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("i18n: invalid fallback locale %q: %w", fallback, err)
	}
	if selector == nil {
		selector = RandomSelector{}
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read resources: %w", err)
	}

	catalogs := make(map[language.Tag]catalog)
	// The fallback goes first so the matcher returns it when nothing matches.
	tags := []language.Tag{fallbackTag}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(entry.Name(), ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("i18n: resource %s: %w", entry.Name(), err)
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}
		var c catalog
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", entry.Name(), err)
		}

		catalogs[tag] = c
		if tag != fallbackTag {
			tags = append(tags, tag)
		}
	}

	if _, ok := catalogs[fallbackTag]; !ok {
		return nil, fmt.Errorf("i18n: no resources for fallback locale %s", fallbackTag)
	}

	log.Info("Localization resources loaded",
		zap.Int("locales", len(catalogs)),
		zap.String("fallback", fallbackTag.String()),
	)

	return &Localizer{
		catalogs: catalogs,
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		fallback: fallbackTag,
		selector: selector,
		log:      log,
	}, nil
}

// T returns a variant for key in the best matching locale, falling back to
// the fallback locale and finally to the key itself.
func (l *Localizer) T(locale, key string) string {
	tag := l.resolve(locale)

	if variants := l.catalogs[tag][key]; len(variants) > 0 {
		return l.selector.Pick(variants)
	}
	if variants := l.catalogs[l.fallback][key]; len(variants) > 0 {
		return l.selector.Pick(variants)
	}

	l.log.Warn("Missing localization key",
		zap.String("key", key),
		zap.String("locale", locale),
	)
	return key
}

func (l *Localizer) resolve(locale string) language.Tag {
	if locale == "" {
		return l.fallback
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return l.fallback
	}
	_, index, confidence := l.matcher.Match(requested)
	if confidence == language.No {
		return l.fallback
	}
	return l.tags[index]
}
