// Package rules holds the terrain classification used by the world model:
// which block models can be walked on and which can be jumped onto.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultYAML []byte

type Config struct {
	DefaultTheme string      `yaml:"default_theme"`
	Themes       []ThemeSpec `yaml:"themes"`
}

type ThemeSpec struct {
	Name     string   `yaml:"name"`
	Walkable []string `yaml:"walkable"`
	Jumpable []string `yaml:"jumpable"`
	Deadly   []string `yaml:"deadly,omitempty"`
}

// Ruleset is the immutable classification for one theme. The zero value
// classifies nothing as walkable.
type Ruleset struct {
	name     string
	walkable map[string]struct{}
	jumpable map[string]struct{}
	deadly   map[string]struct{}
}

func NewRuleset(name string, walkable, jumpable, deadly []string) Ruleset {
	return Ruleset{
		name:     name,
		walkable: toSet(walkable),
		jumpable: toSet(jumpable),
		deadly:   toSet(deadly),
	}
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out[id] = struct{}{}
	}
	return out
}

func (r Ruleset) Name() string { return r.name }

func (r Ruleset) Walkable(model string) bool {
	_, ok := r.walkable[model]
	return ok
}

func (r Ruleset) Jumpable(model string) bool {
	_, ok := r.jumpable[model]
	return ok
}

// Deadly is informational; the solver never routes onto deadly models
// because they are not walkable.
func (r Ruleset) Deadly(model string) bool {
	_, ok := r.deadly[model]
	return ok
}

// Load reads a rules file. An empty path yields the embedded defaults.
func Load(path string) (Config, error) {
	raw := defaultYAML
	name := "rules.yaml"
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		raw = b
		name = path
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Defaults returns the embedded rules. It panics only if the embedded file is
// broken, which the package tests guard against.
func Defaults() Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	for i := range c.Themes {
		c.Themes[i].Name = strings.TrimSpace(c.Themes[i].Name)
	}
	if strings.TrimSpace(c.DefaultTheme) == "" && len(c.Themes) > 0 {
		c.DefaultTheme = c.Themes[0].Name
	}
}

func (c Config) Validate() error {
	if len(c.Themes) == 0 {
		return fmt.Errorf("themes must not be empty")
	}
	seen := map[string]bool{}
	for i, t := range c.Themes {
		if t.Name == "" {
			return fmt.Errorf("themes[%d] name must not be empty", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate theme: %s", t.Name)
		}
		seen[t.Name] = true
		if len(t.Walkable) == 0 {
			return fmt.Errorf("theme %s walkable must not be empty", t.Name)
		}
	}
	if !seen[c.DefaultTheme] {
		return fmt.Errorf("default_theme %q not found in themes", c.DefaultTheme)
	}
	return nil
}

// Ruleset returns the classification for theme; empty selects the default.
func (c Config) Ruleset(theme string) (Ruleset, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = c.DefaultTheme
	}
	for _, t := range c.Themes {
		if t.Name == theme {
			return NewRuleset(t.Name, t.Walkable, t.Jumpable, t.Deadly), nil
		}
	}
	return Ruleset{}, fmt.Errorf("unknown theme %q", theme)
}

func (c Config) ThemeNames() []string {
	out := make([]string, 0, len(c.Themes))
	for _, t := range c.Themes {
		out = append(out, t.Name)
	}
	sort.Strings(out)
	return out
}
