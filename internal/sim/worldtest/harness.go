package worldtest

import (
	"encoding/json"
	"strconv"
	"testing"

	"questsolver/internal/level"
	"questsolver/internal/sim/rules"
	"questsolver/internal/sim/vocab"
	world "questsolver/internal/sim/world"
)

// Model keys used by the classic theme.
const (
	Ground = "ground.normal"
	Brick  = "wall.brick01"
)

// Level is a small fluent builder for level documents used in tests. Agents
// stand at y=1 on ground blocks at y=0 unless a test says otherwise.
type Level struct {
	doc level.Document
}

func NewLevel() *Level {
	dir := world.DefaultDirection
	return &Level{doc: level.Document{
		ID: "test",
		GameConfig: level.GameConfig{
			Players: []level.Player{{ID: "p1", Start: &level.Start{X: 0, Y: 1, Z: 0, Direction: &dir}}},
			Finish:  &level.Vec3{X: 0, Y: 1, Z: 0},
		},
	}}
}

func (l *Level) Start(x, y, z, dir int) *Level {
	d := dir
	l.doc.GameConfig.Players[0].Start = &level.Start{X: x, Y: y, Z: z, Direction: &d}
	return l
}

func (l *Level) Finish(x, y, z int) *Level {
	l.doc.GameConfig.Finish = &level.Vec3{X: x, Y: y, Z: z}
	return l
}

func (l *Level) Block(model string, x, y, z int) *Level {
	l.doc.GameConfig.Blocks = append(l.doc.GameConfig.Blocks, level.Block{ModelKey: model, Position: level.Vec3{X: x, Y: y, Z: z}})
	return l
}

// Floor lays ground blocks at y=0 over the inclusive x/z ranges.
func (l *Level) Floor(x0, x1, z0, z1 int) *Level {
	for z := z0; z <= z1; z++ {
		for x := x0; x <= x1; x++ {
			l.Block(Ground, x, 0, z)
		}
	}
	return l
}

func (l *Level) Collectible(id, typ string, x, y, z int) *Level {
	l.doc.GameConfig.Collectibles = append(l.doc.GameConfig.Collectibles, level.Collectible{ID: id, Type: typ, Position: level.Vec3{X: x, Y: y, Z: z}})
	return l
}

func (l *Level) Switch(id, initial string, x, y, z int) *Level {
	l.doc.GameConfig.Interactibles = append(l.doc.GameConfig.Interactibles, level.Interactible{
		Type: "switch", ID: id, InitialState: initial, Position: &level.Vec3{X: x, Y: y, Z: z},
	})
	return l
}

func (l *Level) Portal(id, targetID string, x, y, z int) *Level {
	l.doc.GameConfig.Interactibles = append(l.doc.GameConfig.Interactibles, level.Interactible{
		Type: "portal", ID: id, TargetID: targetID, Position: &level.Vec3{X: x, Y: y, Z: z},
	})
	return l
}

func (l *Level) Goal(typ string, n int) *Level {
	return l.goal(typ, level.GoalCount{N: n})
}

func (l *Level) GoalAll(typ string) *Level {
	return l.goal(typ, level.GoalCount{All: true})
}

func (l *Level) goal(typ string, c level.GoalCount) *Level {
	if l.doc.Solution.ItemGoals == nil {
		l.doc.Solution.ItemGoals = map[string]level.GoalCount{}
	}
	l.doc.Solution.ItemGoals[typ] = c
	return l
}

// Toolbox sets a single-category toolbox. The vocab.Procedure token becomes a
// procedure category instead of a block.
func (l *Level) Toolbox(tokens ...string) *Level {
	blocks := level.ToolboxItem{Kind: "category", Name: "blocks"}
	items := []level.ToolboxItem{}
	for _, t := range tokens {
		if t == vocab.Procedure {
			items = append(items, level.ToolboxItem{Kind: "category", Name: "functions", Custom: vocab.Procedure})
			continue
		}
		blocks.Contents = append(blocks.Contents, level.ToolboxItem{Kind: "block", Type: t})
	}
	l.doc.BlocklyConfig.Toolbox = level.Toolbox{Kind: "categoryToolbox", Contents: append([]level.ToolboxItem{blocks}, items...)}
	return l
}

// Grid lays out a level from rows of characters, row index = z, column = x:
//
//	'.' floor   ' ' void   '#' brick on floor (y=1, jumpable)
//	'S' start   'F' finish 'c' crystal  's' switch (off)
//
// Start faces +x.
func (l *Level) Grid(rows ...string) *Level {
	crystals, switches := 0, 0
	for z, row := range rows {
		for x, ch := range row {
			if ch == ' ' {
				continue
			}
			l.Block(Ground, x, 0, z)
			switch ch {
			case '#':
				l.Block(Brick, x, 1, z)
			case 'S':
				l.Start(x, 1, z, 1)
			case 'F':
				l.Finish(x, 1, z)
			case 'c':
				crystals++
				l.Collectible("c"+strconv.Itoa(crystals), "crystal", x, 1, z)
			case 's':
				switches++
				l.Switch("s"+strconv.Itoa(switches), "off", x, 1, z)
			}
		}
	}
	return l
}

func (l *Level) Doc() *level.Document {
	d := l.doc
	return &d
}

func (l *Level) JSON(t testing.TB) []byte {
	t.Helper()
	b, err := json.Marshal(l.doc)
	if err != nil {
		t.Fatalf("marshal level: %v", err)
	}
	return b
}

// World builds the level with the given ruleset, or the default theme when
// none is passed.
func (l *Level) World(t testing.TB, rs ...rules.Ruleset) *world.World {
	t.Helper()
	var r rules.Ruleset
	if len(rs) > 0 {
		r = rs[0]
	} else {
		var err error
		r, err = rules.Defaults().Ruleset("")
		if err != nil {
			t.Fatalf("rules: %v", err)
		}
	}
	w, err := world.Build(l.Doc(), r)
	if err != nil {
		t.Fatalf("world.Build: %v", err)
	}
	return w
}

// JumpRules treats bricks as both walkable and jumpable so that a jump onto
// a brick column is legal.
func JumpRules() rules.Ruleset {
	return rules.NewRuleset("jumpy", []string{Ground, Brick}, []string{Brick}, nil)
}
