package level

import (
	"encoding/json"
	"fmt"
)

// SolutionRecord is what a solver writes back into a level's solution object.
type SolutionRecord struct {
	RawActions         []string `json:"rawActions"`
	StructuredSolution any      `json:"structuredSolution"`
	OptimalBlocks      int      `json:"optimalBlocks"`
	OptimalLines       int      `json:"optimalLines"`
}

// Annotate merges rec into the "solution" object of raw. Every other field of
// the document, known or not, is carried over unchanged.
func Annotate(raw []byte, rec SolutionRecord) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	sol := map[string]json.RawMessage{}
	if b, ok := top["solution"]; ok && len(b) > 0 && string(b) != "null" {
		if err := json.Unmarshal(b, &sol); err != nil {
			return nil, fmt.Errorf("annotate: solution: %w", err)
		}
	}

	fields := map[string]any{
		"rawActions":         rec.RawActions,
		"structuredSolution": rec.StructuredSolution,
		"optimalBlocks":      rec.OptimalBlocks,
		"optimalLines":       rec.OptimalLines,
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("annotate: %s: %w", k, err)
		}
		sol[k] = b
	}
	b, err := json.Marshal(sol)
	if err != nil {
		return nil, err
	}
	top["solution"] = b
	return json.MarshalIndent(top, "", "  ")
}
