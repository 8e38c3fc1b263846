package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/nine/bytecode"
	"github.com/gogpu/nine/ir"
)

func allPairs() [][2]int {
	var pairs [][2]int
	for u := bytecode.UsagePosition; u <= bytecode.UsageSample; u++ {
		for i := 0; i < 16; i++ {
			if Valid(u, i) {
				pairs = append(pairs, [2]int{int(u), i})
			}
		}
	}
	return pairs
}

func TestFromD3DIsDense(t *testing.T) {
	seen := make(map[DeclUsage]bool)
	for _, p := range allPairs() {
		u := FromD3D(bytecode.Usage(p[0]), p[1])
		assert.False(t, seen[u], "duplicate id %d for %v", u, p)
		seen[u] = true

		usage, index, ok := u.Split()
		require.True(t, ok)
		assert.Equal(t, bytecode.Usage(p[0]), usage)
		assert.Equal(t, p[1], index)
	}
	assert.Len(t, seen, Count-1)
}

func TestFromD3DLayout(t *testing.T) {
	assert.Equal(t, DeclUsage(0), FromD3D(bytecode.UsagePosition, 0))
	assert.Equal(t, DeclUsage(19), FromD3D(bytecode.UsageTexCoord, 3))
	assert.Equal(t, DeclUsage(39), FromD3D(bytecode.UsageColor, 1))
	assert.Equal(t, DeclUsage(41), FromD3D(bytecode.UsageFog, 0))
	assert.Equal(t, "TEXCOORD3", FromD3D(bytecode.UsageTexCoord, 3).String())
	assert.Equal(t, "PSIZE", PSize.String())
	assert.Equal(t, "NONE", None.String())

	_, _, ok := None.Split()
	assert.False(t, ok)
}

func TestFromD3DOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() { FromD3D(bytecode.UsageColor, 2) })
	assert.Panics(t, func() { FromD3D(bytecode.UsageTexCoord, 16) })
	assert.Panics(t, func() { FromD3D(bytecode.Usage(20), 0) })
}

// Every valid pair maps to a distinct semantic, whatever the options.
func TestAssignInjective(t *testing.T) {
	for _, opts := range []Options{{}, {Texcoord: true}, {GenericBase: 32}, {Texcoord: true, GenericBase: 40}} {
		seen := make(map[ir.Semantic][2]int)
		for _, p := range allPairs() {
			sem := Assign(bytecode.Usage(p[0]), p[1], opts)
			if prev, dup := seen[sem]; dup {
				t.Errorf("opts %+v: %v and %v both map to %s", opts, prev, p, sem)
			}
			seen[sem] = p
		}
	}
}

func TestAssignPriority(t *testing.T) {
	opts := Options{Texcoord: true}
	assert.Equal(t, ir.Semantic{Name: ir.SemPosition}, Assign(bytecode.UsagePosition, 0, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemColor, Index: 1}, Assign(bytecode.UsageColor, 1, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemPSize}, Assign(bytecode.UsagePSize, 0, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemTexcoord, Index: 7}, Assign(bytecode.UsageTexCoord, 7, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemGeneric, Index: 8}, Assign(bytecode.UsageTexCoord, 8, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemGeneric, Index: 3}, Assign(bytecode.UsageTexCoord, 3, Options{}))

	// Packed usages: base + index*12 + slot.
	assert.Equal(t, ir.Semantic{Name: ir.SemGeneric, Index: 16}, Assign(bytecode.UsageFog, 0, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemGeneric, Index: 16 + 12 + 7}, Assign(bytecode.UsageNormal, 1, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemGeneric, Index: 18}, Assign(bytecode.UsagePositionT, 0, opts))
	assert.Equal(t, ir.Semantic{Name: ir.SemGeneric, Index: 20 + 12 + 1}, Assign(bytecode.UsagePosition, 1, Options{GenericBase: 20}))
}

func TestAssignDeterministic(t *testing.T) {
	for _, p := range allPairs() {
		a := Assign(bytecode.Usage(p[0]), p[1], Options{})
		b := Assign(bytecode.Usage(p[0]), p[1], Options{})
		assert.Equal(t, a, b)
	}
}

// A pixel shader declaring two texture coordinates and two colors gets four
// distinct input semantics.
func TestAssignPixelInputs(t *testing.T) {
	decls := []struct {
		usage bytecode.Usage
		index int
	}{
		{bytecode.UsageTexCoord, 0},
		{bytecode.UsageTexCoord, 1},
		{bytecode.UsageColor, 0},
		{bytecode.UsageColor, 1},
	}
	seen := make(map[ir.Semantic]bool)
	for _, d := range decls {
		sem := Assign(d.usage, d.index, Options{})
		assert.False(t, seen[sem], "%s%d collides", d.usage, d.index)
		seen[sem] = true
	}
	assert.Len(t, seen, 4)
}

func TestAssignRejectsLowBase(t *testing.T) {
	assert.Panics(t, func() { Assign(bytecode.UsageFog, 0, Options{GenericBase: 8}) })
}
