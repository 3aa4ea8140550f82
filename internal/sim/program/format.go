package program

import (
	"fmt"
	"strings"
)

// Format renders the program as an indented listing: procedure definitions
// first, then the main body under an "On start" root.
func Format(p *Program) string {
	var b strings.Builder
	if len(p.Order) > 0 {
		for _, name := range p.Order {
			fmt.Fprintf(&b, "DEFINE %s:\n", name)
			writeNodes(&b, p.Procedures[name], 1)
		}
		b.WriteByte('\n')
	}
	b.WriteString("MAIN PROGRAM:\n  On start:\n")
	writeNodes(&b, p.Main, 2)
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []Node, indent int) {
	prefix := strings.Repeat("  ", indent)
	for _, n := range nodes {
		switch n.Kind {
		case KindRepeat:
			fmt.Fprintf(b, "%srepeat %d times:\n", prefix, n.Count)
			writeNodes(b, n.Body, indent+1)
		case KindCall:
			fmt.Fprintf(b, "%sCALL %s\n", prefix, n.Name)
		default:
			fmt.Fprintf(b, "%s%s\n", prefix, n.Token)
		}
	}
}
