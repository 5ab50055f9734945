package audit

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// Vocabulary is the per-locale wording the text heuristics match against.
type Vocabulary struct {
	GenericPhrases  []string `yaml:"generic_phrases"  json:"generic_phrases"`
	ActionWords     []string `yaml:"action_words"     json:"action_words"`
	CueWords        []string `yaml:"cue_words"        json:"cue_words"`
	NewWindow       []string `yaml:"new_window"       json:"new_window"`
	ImageRedundant  []string `yaml:"image_redundant"  json:"image_redundant"`
	RequiredMarkers []string `yaml:"required_markers" json:"required_markers"`
	PauseWords      []string `yaml:"pause_words"      json:"pause_words"`
}

// Patterns holds every heuristic table. Tables are data so that locales
// and keyword lists can be extended from configuration.
type Patterns struct {
	ColorKeywords []string              `yaml:"color_keywords" json:"color_keywords"`
	CueSymbols    []string              `yaml:"cue_symbols"    json:"cue_symbols"`
	IconClasses   []string              `yaml:"icon_classes"   json:"icon_classes"`
	StatusClasses []string              `yaml:"status_classes" json:"status_classes"`
	Locales       map[string]Vocabulary `yaml:"locales"        json:"locales"`
}

// DefaultPatterns returns the built-in tables.
func DefaultPatterns() *Patterns {
	p, err := ParsePatterns(defaultPatterns)
	if err != nil {
		panic(fmt.Sprintf("built-in patterns: %v", err))
	}
	return p
}

// ParsePatterns decodes a YAML pattern table.
func ParsePatterns(data []byte) (*Patterns, error) {
	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	p.normalize()
	return &p, nil
}

// LoadPatterns reads a YAML file and merges it over the built-in tables.
// Non-empty lists in the file replace the defaults; new locales are added.
func LoadPatterns(path string) (*Patterns, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patterns: %w", err)
	}
	override, err := ParsePatterns(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return DefaultPatterns().Merge(override), nil
}

// Merge returns a copy of p with every non-empty table of o applied.
func (p *Patterns) Merge(o *Patterns) *Patterns {
	out := *p
	out.Locales = make(map[string]Vocabulary, len(p.Locales))
	for k, v := range p.Locales {
		out.Locales[k] = v
	}
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	pick(&out.ColorKeywords, o.ColorKeywords)
	pick(&out.CueSymbols, o.CueSymbols)
	pick(&out.IconClasses, o.IconClasses)
	pick(&out.StatusClasses, o.StatusClasses)
	for name, ov := range o.Locales {
		v := out.Locales[name]
		pick(&v.GenericPhrases, ov.GenericPhrases)
		pick(&v.ActionWords, ov.ActionWords)
		pick(&v.CueWords, ov.CueWords)
		pick(&v.NewWindow, ov.NewWindow)
		pick(&v.ImageRedundant, ov.ImageRedundant)
		pick(&v.RequiredMarkers, ov.RequiredMarkers)
		pick(&v.PauseWords, ov.PauseWords)
		out.Locales[name] = v
	}
	return &out
}

// Vocabulary returns the tables for a locale tag. "de-AT" falls back to
// "de"; an empty tag means "en".
func (p *Patterns) Vocabulary(locale string) (Vocabulary, error) {
	tag := strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
	if tag == "" {
		tag = "en"
	}
	if v, ok := p.Locales[tag]; ok {
		return v, nil
	}
	if base, _, found := strings.Cut(tag, "-"); found {
		if v, ok := p.Locales[base]; ok {
			return v, nil
		}
	}
	return Vocabulary{}, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
}

// LocaleNames lists the configured locales.
func (p *Patterns) LocaleNames() []string {
	names := make([]string, 0, len(p.Locales))
	for k := range p.Locales {
		names = append(names, k)
	}
	return names
}

func (p *Patterns) normalize() {
	lower := func(list []string) {
		for i, s := range list {
			list[i] = strings.ToLower(strings.TrimSpace(s))
		}
	}
	lower(p.ColorKeywords)
	lower(p.IconClasses)
	lower(p.StatusClasses)
	for k, v := range p.Locales {
		lower(v.GenericPhrases)
		lower(v.ActionWords)
		lower(v.CueWords)
		lower(v.NewWindow)
		lower(v.ImageRedundant)
		lower(v.RequiredMarkers)
		lower(v.PauseWords)
		delete(p.Locales, k)
		p.Locales[strings.ToLower(k)] = v
	}
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments are expected lowercase.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if (!isWord(phrase[0]) || boundary(text, i-1)) && (!isWord(phrase[len(phrase)-1]) || boundary(text, end)) {
			return true
		}
		start = i + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	return !isWord(s[i])
}

func isWord(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c >= 0x80
}

// matchAny returns the first phrase in list that text contains.
func matchAny(text string, list []string) (string, bool) {
	t := strings.ToLower(text)
	for _, p := range list {
		if containsPhrase(t, p) {
			return p, true
		}
	}
	return "", false
}

// isGeneric reports whether the whole name is one of the generic phrases.
func (v Vocabulary) isGeneric(name string) bool {
	n := strings.ToLower(strings.Trim(strings.TrimSpace(name), ".!:…"))
	for _, g := range v.GenericPhrases {
		if n == g {
			return true
		}
	}
	return false
}
