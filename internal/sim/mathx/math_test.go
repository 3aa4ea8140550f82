package mathx

import "testing"

func TestMod(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{a: 0, b: 4, want: 0},
		{a: 5, b: 4, want: 1},
		{a: -1, b: 4, want: 3},
		{a: -4, b: 4, want: 0},
		{a: -5, b: 4, want: 3},
	}
	for _, c := range cases {
		if got := Mod(c.a, c.b); got != c.want {
			t.Fatalf("Mod(%d,%d)=%d want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestAbsInt(t *testing.T) {
	for _, c := range []struct{ in, want int }{{-3, 3}, {3, 3}, {0, 0}} {
		if got := AbsInt(c.in); got != c.want {
			t.Fatalf("AbsInt(%d)=%d want %d", c.in, got, c.want)
		}
	}
}
