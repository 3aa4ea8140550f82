package program

// Block is the editor form of a statement as stored in a level's
// solution.structuredSolution.
type Block struct {
	Type      string  `json:"type"`
	Direction string  `json:"direction,omitempty"`
	Times     int     `json:"times,omitempty"`
	Actions   []Block `json:"actions,omitempty"`
	Name      string  `json:"name,omitempty"`
}

type Structured struct {
	Main       []Block            `json:"main"`
	Procedures map[string][]Block `json:"procedures,omitempty"`
}

const (
	BlockRepeat = "maze_repeat"
	BlockCall   = "CALL"
)

// blockTypes maps action tokens to editor block types. Unknown tokens pass
// through unchanged.
var blockTypes = map[string]Block{
	"moveForward":  {Type: "maze_moveForward"},
	"turnLeft":     {Type: "maze_turn", Direction: "turnLeft"},
	"turnRight":    {Type: "maze_turn", Direction: "turnRight"},
	"collect":      {Type: "maze_collect"},
	"toggleSwitch": {Type: "maze_toggleSwitch"},
	"jump":         {Type: "maze_jump"},
}

func BlockFor(token string) Block {
	if b, ok := blockTypes[token]; ok {
		return b
	}
	return Block{Type: token}
}

// Blockly converts the program to editor blocks.
func Blockly(p *Program) Structured {
	out := Structured{Main: toBlocks(p.Main)}
	if len(p.Procedures) > 0 {
		out.Procedures = make(map[string][]Block, len(p.Procedures))
		for name, body := range p.Procedures {
			out.Procedures[name] = toBlocks(body)
		}
	}
	return out
}

func toBlocks(nodes []Node) []Block {
	out := make([]Block, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case KindRepeat:
			out = append(out, Block{Type: BlockRepeat, Times: n.Count, Actions: toBlocks(n.Body)})
		case KindCall:
			out = append(out, Block{Type: BlockCall, Name: n.Name})
		default:
			out = append(out, BlockFor(n.Token))
		}
	}
	return out
}
