package world

import (
	"fmt"

	"questsolver/internal/level"
	"questsolver/internal/sim/mathx"
)

type Pos struct {
	X int
	Y int
	Z int
}

func PosOf(v level.Vec3) Pos { return Pos{X: v.X, Y: v.Y, Z: v.Z} }

func (p Pos) Add(d Pos) Pos { return Pos{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z} }
func (p Pos) Below() Pos    { return Pos{X: p.X, Y: p.Y - 1, Z: p.Z} }
func (p Pos) Above() Pos    { return Pos{X: p.X, Y: p.Y + 1, Z: p.Z} }

func (p Pos) Manhattan(q Pos) int {
	return mathx.AbsInt(p.X-q.X) + mathx.AbsInt(p.Y-q.Y) + mathx.AbsInt(p.Z-q.Z)
}

func (p Pos) String() string { return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z) }

// Facing directions are quarter turns: 0 faces -z, 1 faces +x, 2 faces +z,
// 3 faces -x. Turning right adds one.
const NumDirections = 4

var facing = [NumDirections]Pos{{Z: -1}, {X: 1}, {Z: 1}, {X: -1}}

// Ahead is the neighbouring cell at the same height in direction dir.
func Ahead(p Pos, dir int) Pos {
	return p.Add(facing[mathx.Mod(dir, NumDirections)])
}
