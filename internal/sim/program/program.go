// Package program is the structured form of an action sequence: primitives,
// counted loops and calls to named procedures.
package program

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindPrimitive Kind = iota
	KindRepeat
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindRepeat:
		return "repeat"
	case KindCall:
		return "call"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one statement. Token is set for primitives, Count and Body for
// repeats, Name for calls.
type Node struct {
	Kind  Kind
	Token string
	Count int
	Body  []Node
	Name  string
}

func Primitive(token string) Node { return Node{Kind: KindPrimitive, Token: token} }

func Repeat(count int, body []Node) Node {
	return Node{Kind: KindRepeat, Count: count, Body: body}
}

func Call(name string) Node { return Node{Kind: KindCall, Name: name} }

// Program is a main body plus procedure definitions. Order lists procedure
// names in definition order.
type Program struct {
	Main       []Node
	Procedures map[string][]Node
	Order      []string
}

// Define registers a procedure body under name, replacing any earlier body.
func (p *Program) Define(name string, body []Node) {
	if p.Procedures == nil {
		p.Procedures = map[string][]Node{}
	}
	if _, ok := p.Procedures[name]; !ok {
		p.Order = append(p.Order, name)
	}
	p.Procedures[name] = body
}

var (
	ErrUnknownProcedure = errors.New("unknown procedure")
	ErrRecursiveCall    = errors.New("recursive procedure call")
)

// Flatten expands every repeat by its count and substitutes every call by
// its procedure body, recursively.
func (p *Program) Flatten() ([]string, error) {
	var out []string
	err := p.flatten(p.Main, map[string]bool{}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (p *Program) flatten(nodes []Node, active map[string]bool, out *[]string) error {
	for _, n := range nodes {
		switch n.Kind {
		case KindPrimitive:
			*out = append(*out, n.Token)
		case KindRepeat:
			for i := 0; i < n.Count; i++ {
				if err := p.flatten(n.Body, active, out); err != nil {
					return err
				}
			}
		case KindCall:
			body, ok := p.Procedures[n.Name]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownProcedure, n.Name)
			}
			if active[n.Name] {
				return fmt.Errorf("%w: %s", ErrRecursiveCall, n.Name)
			}
			active[n.Name] = true
			err := p.flatten(body, active, out)
			delete(active, n.Name)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown node kind %v", n.Kind)
		}
	}
	return nil
}

// BlockCount is the editor block cost: one for the program root, one per
// procedure definition, and one per statement in main and in each procedure
// body. A repeat counts as a single statement; its body is not counted.
func (p *Program) BlockCount() int {
	total := 1 + len(p.Main)
	for _, body := range p.Procedures {
		total += 1 + len(body)
	}
	return total
}

// Depth is the deepest loop nesting in the program, zero when flat.
func (p *Program) Depth() int {
	d := depth(p.Main)
	for _, body := range p.Procedures {
		if bd := depth(body); bd > d {
			d = bd
		}
	}
	return d
}

func depth(nodes []Node) int {
	d := 0
	for _, n := range nodes {
		if n.Kind == KindRepeat {
			if nd := 1 + depth(n.Body); nd > d {
				d = nd
			}
		}
	}
	return d
}
