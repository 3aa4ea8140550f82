package pipeline

import (
	"fmt"

	"questsolver/internal/config"
	"questsolver/internal/sim/catalogs"
	"questsolver/internal/sim/rules"
)

// NewOptions resolves the configured theme and toolbox preset. An empty
// preset keeps each level's own toolbox.
func NewOptions(cfg config.Solver, rc rules.Config, cat *catalogs.ToolboxCatalog) (Options, error) {
	rs, err := rc.Ruleset(cfg.Theme)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Rules:         rs,
		MaxExpansions: cfg.MaxExpansions,
		Timeout:       cfg.Timeout(),
	}
	if cfg.ToolboxPreset != "" {
		if cat == nil {
			return Options{}, fmt.Errorf("toolbox preset %q: no catalog loaded", cfg.ToolboxPreset)
		}
		v, err := cat.Resolve(cfg.ToolboxPreset)
		if err != nil {
			return Options{}, err
		}
		opts.Vocabulary = v
	}
	return opts, nil
}
