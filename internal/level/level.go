// Package level holds the raw quest level document as it is stored on disk and
// exchanged over the wire. It does not interpret the level; see sim/world.
package level

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Document struct {
	ID            string        `json:"id,omitempty"`
	GameConfig    GameConfig    `json:"gameConfig"`
	BlocklyConfig BlocklyConfig `json:"blocklyConfig"`
	Solution      Solution      `json:"solution"`
}

type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type Start struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Z         int  `json:"z"`
	Direction *int `json:"direction,omitempty"`
}

type Player struct {
	ID    string `json:"id,omitempty"`
	Start *Start `json:"start"`
}

type Block struct {
	ModelKey string `json:"modelKey"`
	Position Vec3   `json:"position"`
}

type Collectible struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Position Vec3   `json:"position"`
}

// Interactible is either a switch or a portal; Type selects which fields apply.
type Interactible struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Position     *Vec3  `json:"position,omitempty"`
	InitialState string `json:"initialState,omitempty"`
	TargetID     string `json:"targetId,omitempty"`
}

type GameConfig struct {
	Players       []Player          `json:"players"`
	Finish        *Vec3             `json:"finish"`
	Blocks        []Block           `json:"blocks,omitempty"`
	Collectibles  []Collectible     `json:"collectibles,omitempty"`
	Interactibles []Interactible    `json:"interactibles,omitempty"`
	Obstacles     []json.RawMessage `json:"obstacles,omitempty"` // reserved
}

type ToolboxItem struct {
	Kind     string        `json:"kind"`
	Type     string        `json:"type,omitempty"`
	Name     string        `json:"name,omitempty"`
	Custom   string        `json:"custom,omitempty"`
	Contents []ToolboxItem `json:"contents,omitempty"`
}

type Toolbox struct {
	Kind     string        `json:"kind,omitempty"`
	Contents []ToolboxItem `json:"contents,omitempty"`
}

type BlocklyConfig struct {
	Toolbox   Toolbox `json:"toolbox"`
	MaxBlocks int     `json:"maxBlocks,omitempty"`
}

type Solution struct {
	Type      string               `json:"type,omitempty"`
	ItemGoals map[string]GoalCount `json:"itemGoals,omitempty"`
}

// GoalCount is a required count for one goal type. Levels may write either a
// number or the string "all".
type GoalCount struct {
	All bool
	N   int
}

func (g GoalCount) MarshalJSON() ([]byte, error) {
	if g.All {
		return []byte(`"all"`), nil
	}
	return json.Marshal(g.N)
}

func (g *GoalCount) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("goal count: %w", err)
		}
		*g = GoalCount{N: int(f)}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("goal count: expected number or \"all\": %s", string(b))
	}
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		*g = GoalCount{All: true}
		return nil
	}
	return fmt.Errorf("goal count: expected number or \"all\", got %q", s)
}

// Resolve returns the numeric requirement, using total for "all".
func (g GoalCount) Resolve(total int) int {
	if g.All {
		return total
	}
	return g.N
}
