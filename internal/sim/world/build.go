package world

import (
	"fmt"
	"sort"
	"strings"

	"questsolver/internal/level"
	"questsolver/internal/sim/rules"
	"questsolver/internal/sim/vocab"
)

// DefaultDirection is used when a level omits the player's facing.
const DefaultDirection = 1

// Build normalizes a level document into lookup tables. It fails fast with a
// *ConfigError; no partial world is returned.
func Build(doc *level.Document, rs rules.Ruleset) (*World, error) {
	if doc == nil {
		return nil, missing("document")
	}
	cfg := doc.GameConfig
	if len(cfg.Players) == 0 {
		return nil, missing("gameConfig.players[0]")
	}
	start := cfg.Players[0].Start
	if start == nil {
		return nil, missing("gameConfig.players[0].start")
	}
	dir := DefaultDirection
	if start.Direction != nil {
		dir = *start.Direction
		if dir < 0 || dir >= NumDirections {
			return nil, &ConfigError{Field: "gameConfig.players[0].start.direction", Reason: fmt.Sprintf("must be in [0,%d), got %d", NumDirections, dir)}
		}
	}
	if cfg.Finish == nil {
		return nil, missing("gameConfig.finish")
	}

	w := &World{
		rules:             rs,
		start:             Pos{X: start.X, Y: start.Y, Z: start.Z},
		startDir:          dir,
		finish:            PosOf(*cfg.Finish),
		models:            make(map[Pos]string, len(cfg.Blocks)),
		collectiblesByPos: make(map[Pos]Collectible, len(cfg.Collectibles)),
		collectiblesByID:  make(map[string]Collectible, len(cfg.Collectibles)),
		switches:          map[Pos]Switch{},
		portals:           map[Pos]Portal{},
		vocab:             vocab.FromToolbox(doc.BlocklyConfig.Toolbox),
	}

	for _, b := range cfg.Blocks {
		w.models[PosOf(b.Position)] = b.ModelKey
	}

	for i, c := range cfg.Collectibles {
		if strings.TrimSpace(c.ID) == "" {
			return nil, &ConfigError{Field: fmt.Sprintf("gameConfig.collectibles[%d].id", i), Reason: "empty"}
		}
		item := Collectible{ID: c.ID, Type: c.Type, Pos: PosOf(c.Position)}
		w.collectiblesByPos[item.Pos] = item
		w.collectiblesByID[item.ID] = item
	}
	for id := range w.collectiblesByID {
		w.collectibleOrder = append(w.collectibleOrder, id)
	}
	sort.Strings(w.collectibleOrder)

	w.indexInteractibles(cfg.Interactibles)
	w.goal = resolveGoal(doc.Solution, w)
	return w, nil
}

func (w *World) indexInteractibles(all []level.Interactible) {
	for _, it := range all {
		if it.Position == nil {
			continue
		}
		p := PosOf(*it.Position)
		switch it.Type {
		case "switch":
			initial := SwitchOff
			if it.InitialState == string(SwitchOn) {
				initial = SwitchOn
			}
			w.switches[p] = Switch{ID: it.ID, Pos: p, Initial: initial}
		case "portal":
			// Unpaired portals are dropped.
			for _, other := range all {
				if other.ID == it.TargetID && other.Position != nil {
					w.portals[p] = Portal{ID: it.ID, Pos: p, Target: PosOf(*other.Position)}
					break
				}
			}
		}
	}
	seen := map[string]bool{}
	for _, s := range w.switches {
		if !seen[s.ID] {
			seen[s.ID] = true
			w.switchOrder = append(w.switchOrder, s.ID)
		}
	}
	sort.Strings(w.switchOrder)
}

func resolveGoal(sol level.Solution, w *World) Goal {
	g := Goal{Type: sol.Type, Items: make(map[string]int, len(sol.ItemGoals))}
	if g.Type == "" {
		g.Type = DefaultSolutionType
	}
	for typ, count := range sol.ItemGoals {
		total := 0
		switch typ {
		case GoalSwitch:
			total = len(w.switchOrder)
		case GoalObstacle:
		default:
			for _, c := range w.collectiblesByID {
				if c.Type == typ {
					total++
				}
			}
		}
		g.Items[typ] = count.Resolve(total)
	}
	return g
}
